// Package catalog 维护渲染模板与配色方案的静态注册表。
package catalog

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrTemplateNotFound    = errors.New("template not found")
	ErrColorSchemeNotFound = errors.New("color scheme not found")
)

// DefaultTemplate 在简历未指定模板或模板未知时使用。
const DefaultTemplate = "modern"

// DefaultColorScheme 在配色 id 未知时使用。
const DefaultColorScheme = "blue"

// Palette 是模板选择器里展示的三色组合。
type Palette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// Template 描述一种版式。
type Template struct {
	Name               string   `json:"name"`
	DisplayName        string   `json:"display_name"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Preview            string   `json:"preview"`
	Colors             Palette  `json:"colors"`
	Features           []string `json:"features"`
	DefaultColorScheme string   `json:"default_color_scheme"`
}

var templates = []Template{
	{
		Name:               "modern",
		DisplayName:        "Modern",
		Description:        "Two-column layout with a colored sidebar for contact details and skills.",
		Category:           "professional",
		Preview:            "/previews/modern.png",
		Colors:             Palette{Primary: "#2563eb", Secondary: "#1e40af", Accent: "#60a5fa"},
		Features:           []string{"sidebar", "photo", "skill-bars", "two-column"},
		DefaultColorScheme: "blue",
	},
	{
		Name:               "classic",
		DisplayName:        "Classic",
		Description:        "Single-column serif layout with ruled section headings.",
		Category:           "traditional",
		Preview:            "/previews/classic.png",
		Colors:             Palette{Primary: "#1e3a5f", Secondary: "#334155", Accent: "#94a3b8"},
		Features:           []string{"single-column", "serif", "ats-friendly"},
		DefaultColorScheme: "navy",
	},
	{
		Name:               "minimal",
		DisplayName:        "Minimal",
		Description:        "Sparse typographic layout with generous whitespace.",
		Category:           "simple",
		Preview:            "/previews/minimal.png",
		Colors:             Palette{Primary: "#374151", Secondary: "#6b7280", Accent: "#d1d5db"},
		Features:           []string{"single-column", "ats-friendly", "compact"},
		DefaultColorScheme: "gray",
	},
	{
		Name:               "creative",
		DisplayName:        "Creative",
		Description:        "Bold header band, timeline experience and tag-style skills.",
		Category:           "creative",
		Preview:            "/previews/creative.png",
		Colors:             Palette{Primary: "#7c3aed", Secondary: "#5b21b6", Accent: "#f59e0b"},
		Features:           []string{"header-band", "photo", "timeline", "skill-tags"},
		DefaultColorScheme: "purple",
	},
}

// Templates 按展示顺序返回全部已注册模板。
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// Get 按名称查找模板。
func Get(name string) (Template, error) {
	for _, t := range templates {
		if t.Name == name {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// Colors 是版式使用的语义色。
type Colors struct {
	Primary    string `json:"primary"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
	HeaderBg   string `json:"headerBg"`
	HeaderText string `json:"headerText"`
}

// ColorScheme 是具名调色板，留空的色位由 GetColorsForScheme 补齐。
type ColorScheme struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Colors Colors `json:"colors"`
}

var fallbackColors = Colors{
	Primary:    "#2563eb",
	Text:       "#1f2937",
	Accent:     "#3b82f6",
	HeaderBg:   "#2563eb",
	HeaderText: "#ffffff",
}

var colorSchemes = []ColorScheme{
	{ID: "blue", Name: "Ocean Blue", Colors: Colors{Primary: "#2563eb", Text: "#1f2937", Accent: "#3b82f6", HeaderBg: "#1e40af", HeaderText: "#ffffff"}},
	{ID: "navy", Name: "Navy", Colors: Colors{Primary: "#1e3a5f", Text: "#1f2937", Accent: "#3b5998", HeaderBg: "#1e3a5f", HeaderText: "#ffffff"}},
	{ID: "gray", Name: "Graphite", Colors: Colors{Primary: "#374151", Text: "#111827", Accent: "#6b7280", HeaderBg: "#f3f4f6", HeaderText: "#111827"}},
	{ID: "purple", Name: "Royal Purple", Colors: Colors{Primary: "#7c3aed", Text: "#1f2937", Accent: "#a78bfa", HeaderBg: "#5b21b6", HeaderText: "#ffffff"}},
	{ID: "green", Name: "Forest Green", Colors: Colors{Primary: "#059669", Text: "#1f2937", Accent: "#10b981", HeaderBg: "#065f46", HeaderText: "#ffffff"}},
	{ID: "red", Name: "Crimson", Colors: Colors{Primary: "#dc2626", Text: "#1f2937", Accent: "#f87171", HeaderBg: "#991b1b", HeaderText: "#ffffff"}},
	{ID: "teal", Name: "Teal", Colors: Colors{Primary: "#0d9488", Text: "#1f2937", Accent: "#2dd4bf"}},
	{ID: "orange", Name: "Sunset Orange", Colors: Colors{Primary: "#ea580c", Accent: "#fb923c", HeaderBg: "#9a3412"}},
}

// ColorSchemes 返回全部已注册配色，色位均已补齐。
func ColorSchemes() []ColorScheme {
	out := make([]ColorScheme, 0, len(colorSchemes))
	for _, s := range colorSchemes {
		s.Colors = withFallbacks(s.Colors)
		out = append(out, s)
	}
	return out
}

// HasColorScheme 判断 id 是否为已注册配色。
func HasColorScheme(id string) bool {
	_, ok := lookupScheme(id)
	return ok
}

// ValidateColorScheme 对未注册的 id 返回 ErrColorSchemeNotFound，空 id 视为合法。
func ValidateColorScheme(id string) error {
	if id == "" || HasColorScheme(id) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrColorSchemeNotFound, id)
}

// GetColorsForScheme 不会失败：未知 id 回落到默认配色，
// 缺失的色位取该配色的主色或全局兜底色。
func GetColorsForScheme(id string) Colors {
	s, ok := lookupScheme(id)
	if !ok {
		s, _ = lookupScheme(DefaultColorScheme)
	}
	return withFallbacks(s.Colors)
}

// ResolveScheme 选出简历渲染时使用的配色 id。
func ResolveScheme(templateName, schemeID string) string {
	if schemeID != "" && HasColorScheme(schemeID) {
		return schemeID
	}
	if schemeID == "" {
		if t, err := Get(templateName); err == nil {
			return t.DefaultColorScheme
		}
	}
	return DefaultColorScheme
}

func lookupScheme(id string) (ColorScheme, bool) {
	for _, s := range colorSchemes {
		if s.ID == id {
			return s, true
		}
	}
	return ColorScheme{}, false
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func withFallbacks(c Colors) Colors {
	pick := func(v, fallback string) string {
		if hexColor.MatchString(v) {
			return v
		}
		return fallback
	}
	c.Primary = pick(c.Primary, fallbackColors.Primary)
	c.Text = pick(c.Text, fallbackColors.Text)
	c.Accent = pick(c.Accent, c.Primary)
	c.HeaderBg = pick(c.HeaderBg, c.Primary)
	c.HeaderText = pick(c.HeaderText, fallbackColors.HeaderText)
	return c
}
