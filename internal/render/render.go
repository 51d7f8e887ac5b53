// Package render 将已加载的简历转换为自包含的 HTML 文档。
package render

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"strings"

	"cvbuilder/internal/catalog"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

// Layouts 已注册的版式名称，第一个为兜底。
var Layouts = []string{"modern", "classic", "minimal", "creative"}

var funcs = template.FuncMap{
	"join": strings.Join,
	"add":  func(a, b int) int { return a + b },
}

var layouts = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(Layouts))
	for _, name := range Layouts {
		out[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templatesFS,
			"templates/partials.gohtml",
			"templates/"+name+".gohtml",
		))
	}
	return out
}()

func layoutName(name string) string {
	if _, ok := layouts[name]; ok {
		return name
	}
	return Layouts[0]
}

// ResolveTemplate 返回 name 对应的目录条目。name 为空表示默认模板，
// 未注册时返回 *ConfigError。
func ResolveTemplate(name string) (catalog.Template, error) {
	if name == "" {
		name = catalog.DefaultTemplate
	}
	t, err := catalog.Get(name)
	if err != nil {
		return catalog.Template{}, &ConfigError{Template: name, Cause: err}
	}
	return t, nil
}

// Render 生成 in 对应的 HTML 文档。输出只取决于输入，
// 同一简历渲染两次得到相同字节。
func Render(in Input) (string, error) {
	if in.Profile == nil {
		return "", &RenderError{Message: "profile is required"}
	}
	if in.Template.Name == "" {
		return "", &ConfigError{Template: in.Profile.Template, Cause: catalog.ErrTemplateNotFound}
	}

	doc := Shape(in)
	var buf bytes.Buffer
	if err := layouts[doc.Layout].ExecuteTemplate(&buf, "document", doc); err != nil {
		return "", &RenderError{Message: "execute layout " + doc.Layout, Cause: err}
	}
	return buf.String(), nil
}

// IsConfigError 判断 err 是否为模板配置错误。
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
