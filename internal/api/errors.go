package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"cvbuilder/internal/api/middleware"
	"cvbuilder/internal/catalog"
	"cvbuilder/internal/export"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/render"
)

// respondError 是领域错误到 HTTP 状态码的唯一映射点。
// 5xx 的内部原因只写日志，不返回给客户端。
func respondError(c *gin.Context, err error) {
	logger := middleware.LoggerFromContext(c)

	var verr *profile.ValidationError
	var fieldErrs validator.ValidationErrors
	var cfgErr *render.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		// 必须先于 ErrTemplateNotFound 判断：渲染阶段的模板缺失是部署问题。
		logger.Error("template configuration error", slog.Any("error", err))
		Internal(c, "template configuration error")
	case errors.As(err, &verr):
		ValidationFailed(c, verr.Field, verr.Error())
	case errors.Is(err, profile.ErrNotFound):
		NotFound(c, "resource not found")
	case errors.Is(err, catalog.ErrTemplateNotFound), errors.Is(err, catalog.ErrColorSchemeNotFound):
		BadRequest(c, err.Error())
	case errors.As(err, &fieldErrs):
		respondBindingErrors(c, fieldErrs)
	case errors.Is(err, profile.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, profile.ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, profile.ErrLimitReached):
		Forbidden(c, err.Error())
	case errors.Is(err, export.ErrPDFGeneration):
		logger.Error("pdf generation failed", slog.Any("error", err))
		Internal(c, "PDF generation failed")
	default:
		var rerr *render.RenderError
		if errors.As(err, &rerr) {
			logger.Error("render failed", slog.Any("error", err))
			Internal(c, "PDF generation failed")
			return
		}
		logger.Error("request failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}

// respondBindingErrors 把 gin 绑定阶段的校验错误整理成 {field: message}。
func respondBindingErrors(c *gin.Context, errs validator.ValidationErrors) {
	fields := make(gin.H, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":  "validation failed",
		"fields": fields,
	})
}

// bindJSON 绑定请求体；失败时直接写出 400。
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			respondBindingErrors(c, fieldErrs)
		} else {
			BadRequest(c, "invalid request body")
		}
		return false
	}
	return true
}
