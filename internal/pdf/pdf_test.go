package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvbuilder/internal/config"
)

func TestA4Margins(t *testing.T) {
	assert.InDelta(t, 0.7874, A4.MarginTop, 0.0001)
	assert.InDelta(t, 0.7874, A4.MarginBottom, 0.0001)
	assert.InDelta(t, 0.5906, A4.MarginLeft, 0.0001)
	assert.InDelta(t, 0.5906, A4.MarginRight, 0.0001)
	assert.Equal(t, 8.27, A4.PaperWidth)
	assert.Equal(t, 11.69, A4.PaperHeight)
}

func TestNew_SelectsEngine(t *testing.T) {
	g, err := New(config.PDFConfig{Engine: "rod", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, EngineRod, g.Engine())

	g, err = New(config.PDFConfig{Engine: "ChromeDP"})
	require.NoError(t, err)
	assert.Equal(t, EngineChromedp, g.Engine())
	assert.Equal(t, DefaultTimeout, g.(*ChromedpGenerator).timeout)

	_, err = New(config.PDFConfig{Engine: "wkhtmltopdf"})
	assert.Error(t, err)
}

func TestRodPrintOptions(t *testing.T) {
	opts := NewRodGenerator("", time.Second).printOptions()
	assert.True(t, opts.PrintBackground)
	require.NotNil(t, opts.PaperWidth)
	assert.Equal(t, 8.27, *opts.PaperWidth)
	require.NotNil(t, opts.MarginLeft)
	assert.InDelta(t, 15/25.4, *opts.MarginLeft, 1e-9)
}

func TestChromedpPrintParams(t *testing.T) {
	p := NewChromedpGenerator("", time.Second).printParams()
	assert.True(t, p.PrintBackground)
	assert.Equal(t, 11.69, p.PaperHeight)
	assert.InDelta(t, 20/25.4, p.MarginTop, 1e-9)
}
