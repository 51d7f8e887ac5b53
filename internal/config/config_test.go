package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "rod", cfg.PDF.Engine)
	assert.Equal(t, 30*time.Second, cfg.PDF.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Empty(t, cfg.API.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("PDF_ENGINE", "chromedp")
	t.Setenv("PDF_TIMEOUT", "45s")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("POSTGRES_DB", "cv_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "chromedp", cfg.PDF.Engine)
	assert.Equal(t, 45*time.Second, cfg.PDF.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "cv_test", cfg.Database.Name)
	assert.Contains(t, cfg.Database.DSN(), "dbname=cv_test")
}

func TestLoad_RejectsUnknownEngine(t *testing.T) {
	t.Setenv("PDF_ENGINE", "wkhtmltopdf")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported pdf engine")
}

func TestLoad_ReportsAllProblems(t *testing.T) {
	t.Setenv("PDF_ENGINE", "wkhtmltopdf")
	t.Setenv("LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported pdf engine")
	assert.Contains(t, err.Error(), "unsupported log format")
}
