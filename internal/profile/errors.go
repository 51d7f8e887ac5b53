package profile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound 同时表示“不存在”和“不属于当前用户”，调用方不应区分两者。
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	// ErrLimitReached 表示用户的简历数量已达上限。
	ErrLimitReached = errors.New("profile limit reached")
)

// ValidationError 描述一个字段级的输入错误。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// entryValidator 复用 gin 已支持的 `binding` 标签，
// 让来自 CLI 或 worker 的写入遵循相同规则。
func entryValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func validateStruct(v any) error {
	err := entryValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return invalid(fe.Field(), "is required")
		case "url":
			return invalid(fe.Field(), "must be a valid URL")
		case "email":
			return invalid(fe.Field(), "must be a valid email address")
		default:
			return invalid(fe.Field(), fmt.Sprintf("failed %q check", fe.Tag()))
		}
	}
	return fmt.Errorf("validate input: %w", err)
}
