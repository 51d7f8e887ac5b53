package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpGenerator 通过 chromedp 驱动 Chromium。allocator context 持有浏览器进程，
// 取消它即结束进程。
type ChromedpGenerator struct {
	chromePath string
	timeout    time.Duration
	page       PageSetup
}

func NewChromedpGenerator(chromePath string, timeout time.Duration) *ChromedpGenerator {
	return &ChromedpGenerator{chromePath: chromePath, timeout: timeout, page: A4}
}

func (g *ChromedpGenerator) Engine() string { return EngineChromedp }

func (g *ChromedpGenerator) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if g.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(g.chromePath))
	}
	return opts
}

func (g *ChromedpGenerator) printParams() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(g.page.PaperWidth).
		WithPaperHeight(g.page.PaperHeight).
		WithMarginTop(g.page.MarginTop).
		WithMarginBottom(g.page.MarginBottom).
		WithMarginLeft(g.page.MarginLeft).
		WithMarginRight(g.page.MarginRight)
}

func (g *ChromedpGenerator) Generate(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, g.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = g.printParams().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp print: %w", err)
	}
	return buf, nil
}
