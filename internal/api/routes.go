package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"cvbuilder/internal/api/middleware"
	"cvbuilder/internal/auth"
	"cvbuilder/internal/config"
	"cvbuilder/internal/export"
	"cvbuilder/internal/profile"
)

// Deps 汇总路由所需的全部依赖，由 cmd/api 组装。
type Deps struct {
	Config      *config.Config
	Logger      *slog.Logger
	Users       *auth.Users
	AuthService *auth.AuthService
	Redis       redis.UniversalClient
	Profiles    *profile.Service
	Entries     *profile.Entries
	Exporter    *export.Exporter
	Storage     ObjectStore
	Queue       TaskEnqueuer
	// Scanner 为 nil 时头像上传不做病毒扫描。
	Scanner Scanner
}

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(router *gin.Engine, d Deps) {
	authHandler := NewAuthHandler(d.Users, d.AuthService, d.Redis, d.Config.Auth)
	wsHandler := NewWsHandler(d.Redis, d.AuthService, d.Logger, d.Config.API.AllowedOrigins)
	profileHandler := NewProfileHandler(d.Profiles, d.Storage)
	personalHandler := NewPersonalInfoHandler(d.Profiles, d.Storage, d.Scanner)
	exportHandler := NewExportHandler(d.Exporter, d.Profiles, d.Storage, d.Queue)
	authMiddleware := middleware.AuthMiddleware(d.AuthService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", authMiddleware, authHandler.Me)
		}

		v1.GET("/templates", ListTemplates)
		v1.GET("/templates/:name", GetTemplate)
		v1.GET("/color-schemes", ListColorSchemes)
		v1.GET("/public/profiles/:slug", profileHandler.Public)

		profiles := v1.Group("/profiles")
		profiles.Use(authMiddleware)
		{
			profiles.GET("", profileHandler.List)
			profiles.POST("", profileHandler.Create)
			profiles.GET("/:id", profileHandler.Get)
			profiles.PATCH("/:id", profileHandler.Update)
			profiles.PUT("/:id", profileHandler.Update)
			profiles.DELETE("/:id", profileHandler.Delete)
			profiles.POST("/:id/default", profileHandler.SetDefault)
			profiles.GET("/:id/completion", profileHandler.Completion)

			profiles.GET("/:id/personal-info", personalHandler.Get)
			profiles.PUT("/:id/personal-info", personalHandler.Upsert)
			profiles.GET("/:id/personal-info/completion", personalHandler.Completion)
			profiles.POST("/:id/personal-info/photo", personalHandler.UploadPhoto)
			profiles.GET("/:id/personal-info/photo", personalHandler.PhotoURL)

			profiles.GET("/:id/export", exportHandler.Export)
			profiles.GET("/:id/preview", exportHandler.Preview)
			profiles.GET("/:id/export/validate", exportHandler.Validate)
			profiles.POST("/:id/export/async", exportHandler.ExportAsync)
			profiles.GET("/:id/export/link", exportHandler.Link)
			profiles.GET("/:id/exports", exportHandler.History)

			registerEntries(profiles.Group("/:id"), d.Entries)
		}
	}
}
