package pdf

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodGenerator 使用 go-rod 在无头浏览器中渲染 HTML。
type RodGenerator struct {
	chromePath string
	timeout    time.Duration
	page       PageSetup
}

// NewRodGenerator 构建 go-rod 生成器，chromePath 为空时使用 launcher.LookPath。
func NewRodGenerator(chromePath string, timeout time.Duration) *RodGenerator {
	return &RodGenerator{chromePath: chromePath, timeout: timeout, page: A4}
}

func (g *RodGenerator) Engine() string { return EngineRod }

func float(v float64) *float64 { return &v }

// printOptions 将页面设置映射为 DevTools 打印请求。
func (g *RodGenerator) printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      float(g.page.PaperWidth),
		PaperHeight:     float(g.page.PaperHeight),
		MarginTop:       float(g.page.MarginTop),
		MarginBottom:    float(g.page.MarginBottom),
		MarginLeft:      float(g.page.MarginLeft),
		MarginRight:     float(g.page.MarginRight),
	}
}

// Generate 渲染 HTML 并返回 PDF 字节。
func (g *RodGenerator) Generate(ctx context.Context, htmlContent string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	launch := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)

	if g.chromePath != "" {
		launch = launch.Bin(g.chromePath)
	} else if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	defer launch.Cleanup()

	browser := rod.New().ControlURL(browserURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	if err := page.SetDocumentContent(htmlContent); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	reader, err := page.PDF(g.printOptions())
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}

	return data, nil
}
