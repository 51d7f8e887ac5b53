package render

import "fmt"

// ConfigError 表示简历引用了目录中不存在的模板，
// 属于部署问题而非简历数据问题。
type ConfigError struct {
	Template string
	Cause    error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template configuration error: %q: %v", e.Template, e.Cause)
	}
	return fmt.Sprintf("template configuration error: %q", e.Template)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// RenderError 执行版式时的失败。
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
