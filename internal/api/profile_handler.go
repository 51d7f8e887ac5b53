package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvbuilder/internal/api/middleware"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/storage"
)

// ProfileHandler 负责简历本身的增删改查、默认简历与完成度。
type ProfileHandler struct {
	profiles *profile.Service
	storage  ObjectStore
}

func NewProfileHandler(profiles *profile.Service, store ObjectStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, storage: store}
}

// List 返回当前用户的全部简历（默认简历在前）。
func (h *ProfileHandler) List(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	profiles, err := h.profiles.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": profiles})
}

// Create 新建简历。
func (h *ProfileHandler) Create(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	var req profile.CreateInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get 返回完整的简历图（个人信息与六类子集合）。
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	p, err := h.profiles.GetFull(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update 部分更新简历属性；未出现的字段保持不变。
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	var req profile.UpdateInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.Update(c.Request.Context(), userID, profileID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete 删除简历及其全部子数据，并清理对象存储中的头像与归档 PDF。
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	deleted, err := h.profiles.Delete(ctx, userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}

	// 数据库已提交，对象清理失败只记日志。
	logger := middleware.LoggerFromContext(c)
	if err := h.storage.DeletePrefix(ctx, storage.ExportPrefix(userID, profileID)); err != nil {
		logger.Warn("delete archived exports failed", slog.Any("error", err))
	}
	if deleted.PersonalInfo != nil && deleted.PersonalInfo.PhotoKey != "" {
		if err := h.storage.DeleteObject(ctx, deleted.PersonalInfo.PhotoKey); err != nil {
			logger.Warn("delete profile photo failed", slog.Any("error", err))
		}
	}
	c.Status(http.StatusNoContent)
}

// SetDefault 将指定简历设为默认。
func (h *ProfileHandler) SetDefault(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	p, err := h.profiles.SetDefault(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Completion 返回 {percentage, missingSections}。
func (h *ProfileHandler) Completion(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	completion, err := h.profiles.Completion(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, completion)
}

// Public 按 slug 返回公开简历；不存在或未公开一律 404。
func (h *ProfileHandler) Public(c *gin.Context) {
	p, err := h.profiles.Public(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
