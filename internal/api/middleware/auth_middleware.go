package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cvbuilder/internal/auth"
)

// UserIDKey 是已认证用户 ID 在 gin 上下文中的键。
const UserIDKey = "userID"

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware 校验 Bearer 访问令牌并将 userID 注入上下文。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, rawToken, found := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(strings.TrimSpace(rawToken), auth.TokenTypeAccess)
		if err != nil {
			LoggerFromContext(c).Debug("access token rejected", slog.Any("error", err))
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(slogLoggerKey, LoggerFromContext(c).With(slog.Uint64("user_id", uint64(claims.UserID))))
		c.Next()
	}
}

// UserID 返回 AuthMiddleware 注入的用户 ID。
func UserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok && id != 0
}
