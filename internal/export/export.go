// Package export 将简历渲染为 PDF 并生成下载文件名。
package export

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"cvbuilder/internal/database"
	"cvbuilder/internal/metrics"
	"cvbuilder/internal/pdf"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/render"
	"cvbuilder/internal/storage"
)

// ErrPDFGeneration 包装所有无头浏览器错误，
// 从不表示简历不存在或不属于调用方。
var ErrPDFGeneration = errors.New("PDF generation failed")

// MaxPhotoBytes 内联到文档中的照片大小上限。
const MaxPhotoBytes = 5 << 20

// Profiles 导出依赖的简历服务子集。
type Profiles interface {
	GetFull(ctx context.Context, userID, profileID uint) (*database.Profile, error)
	RecordExport(ctx context.Context, profileID uint) (*database.Profile, error)
}

// PhotoReader 读取已存储的简历照片。
type PhotoReader interface {
	ReadObject(ctx context.Context, objectKey string, maxBytes int64) ([]byte, string, error)
}

// Exporter 负责“加载 → 渲染 HTML → 生成 PDF → 更新计数”的完整流程。
type Exporter struct {
	profiles  Profiles
	generator pdf.Generator
	photos    PhotoReader
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Exporter)

// WithPhotos 启用照片内联。
func WithPhotos(photos PhotoReader) Option {
	return func(e *Exporter) { e.photos = photos }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) { e.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New 构造 Exporter。
func New(profiles Profiles, generator pdf.Generator, opts ...Option) *Exporter {
	e := &Exporter{
		profiles:  profiles,
		generator: generator,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result 生成的文档。
type Result struct {
	PDF      []byte
	FileName string
	Profile  *database.Profile
}

// RenderHTML 加载简历并渲染，不改动计数。
func (e *Exporter) RenderHTML(ctx context.Context, userID, profileID uint) (string, *database.Profile, error) {
	p, err := e.profiles.GetFull(ctx, userID, profileID)
	if err != nil {
		return "", nil, err
	}
	meta, err := render.ResolveTemplate(p.Template)
	if err != nil {
		return "", nil, err
	}
	html, err := render.Render(render.Input{
		Profile:      p,
		Template:     meta,
		PhotoDataURI: e.photoDataURI(ctx, p),
	})
	if err != nil {
		return "", nil, err
	}
	return html, p, nil
}

// Export 渲染 PDF，仅在生成成功后更新 download_count 和 last_exported_at。
func (e *Exporter) Export(ctx context.Context, userID, profileID uint) (*Result, error) {
	res, err := e.Build(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}
	updated, err := e.profiles.RecordExport(ctx, profileID)
	if err != nil {
		return nil, err
	}
	res.Profile = updated
	metrics.CountDocument("export")
	return res, nil
}

// Preview 与 Export 渲染同样的 PDF，但不改动计数。
func (e *Exporter) Preview(ctx context.Context, userID, profileID uint) (*Result, error) {
	res, err := e.Build(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}
	metrics.CountDocument("preview")
	return res, nil
}

// Build 渲染并生成 PDF，不改动计数和文档指标。
// 文档另行投递的调用方在存储完成后自行记录导出。
func (e *Exporter) Build(ctx context.Context, userID, profileID uint) (*Result, error) {
	html, p, err := e.RenderHTML(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}
	data, err := e.Generate(ctx, html)
	if err != nil {
		return nil, err
	}
	return &Result{
		PDF:      data,
		FileName: FileName(p.Name, e.now()),
		Profile:  p,
	}, nil
}

// Generate 用配置的引擎转换 HTML 并记录指标。
func (e *Exporter) Generate(ctx context.Context, html string) ([]byte, error) {
	start := time.Now()
	data, err := e.generator.Generate(ctx, html)
	metrics.ObservePDFGeneration(e.generator.Engine(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPDFGeneration, err)
	}
	return data, nil
}

// photoDataURI 返回内联照片，无照片或读取失败时返回 ""。
func (e *Exporter) photoDataURI(ctx context.Context, p *database.Profile) string {
	if e.photos == nil || p.PersonalInfo == nil || p.PersonalInfo.PhotoKey == "" {
		return ""
	}
	key := p.PersonalInfo.PhotoKey
	data, contentType, err := e.photos.ReadObject(ctx, key, MaxPhotoBytes)
	if errors.Is(err, storage.ErrObjectNotFound) {
		e.logger.Info("profile photo missing from storage", slog.Uint64("profile_id", uint64(p.ID)), slog.String("key", key))
		return ""
	}
	if err != nil {
		e.logger.Warn("skip profile photo", slog.Uint64("profile_id", uint64(p.ID)), slog.String("key", key), slog.Any("error", err))
		return ""
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		e.logger.Warn("skip profile photo with non-image content", slog.String("key", key), slog.String("content_type", contentType))
		return ""
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// FileName 生成 CV-{name}-{unix ms}.pdf：去掉重音，丢弃其他非字母数字字符，
// 连续空白合并为单个连字符，并转为小写。
func FileName(profileName string, at time.Time) string {
	var b strings.Builder
	for _, r := range profile.StripAccents(profileName) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	slug := strings.Join(strings.Fields(b.String()), "-")
	if slug == "" {
		slug = "profile"
	}
	return fmt.Sprintf("CV-%s-%d.pdf", slug, at.UnixMilli())
}
