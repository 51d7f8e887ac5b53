// Package pdf 使用无头 Chromium 将 HTML 文档转换为 PDF。
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cvbuilder/internal/config"
)

const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// DefaultTimeout 配置未设置时单次生成的超时。
const DefaultTimeout = 30 * time.Second

// Generator 将一份 HTML 文档转换为 PDF 字节。每次调用启动独立的浏览器，
// 返回前无论成败都会释放。
type Generator interface {
	Generate(ctx context.Context, html string) ([]byte, error)
	Engine() string
}

// PageSetup 纸张尺寸，单位为英寸，与 DevTools 协议一致。
type PageSetup struct {
	PaperWidth   float64
	PaperHeight  float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
}

const mmPerInch = 25.4

func mmToInch(mm float64) float64 {
	return mm / mmPerInch
}

// A4，上下边距 20mm，左右边距 15mm。
var A4 = PageSetup{
	PaperWidth:   8.27,
	PaperHeight:  11.69,
	MarginTop:    mmToInch(20),
	MarginBottom: mmToInch(20),
	MarginLeft:   mmToInch(15),
	MarginRight:  mmToInch(15),
}

// New 根据配置返回对应引擎的 Generator。
func New(cfg config.PDFConfig) (Generator, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	switch strings.ToLower(cfg.Engine) {
	case "", EngineRod:
		return NewRodGenerator(cfg.ChromePath, timeout), nil
	case EngineChromedp:
		return NewChromedpGenerator(cfg.ChromePath, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported pdf engine %q", cfg.Engine)
	}
}
