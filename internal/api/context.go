package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cvbuilder/internal/api/middleware"
)

func userIDFromContext(c *gin.Context) (uint, bool) {
	return middleware.UserID(c)
}

// pathID 解析路径中的数字 ID；非法值按 404 处理，不区分“格式错误”和“不存在”。
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		NotFound(c, "resource not found")
		return 0, false
	}
	return uint(id), true
}

// ownerAndProfile 取出当前用户与路径中的 profile ID；失败时已写出响应。
func ownerAndProfile(c *gin.Context) (userID, profileID uint, ok bool) {
	userID, ok = userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return 0, 0, false
	}
	profileID, ok = pathID(c, "id")
	return userID, profileID, ok
}
