package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cvbuilder/internal/database"
	"cvbuilder/internal/profile"
)

type reorderRequest struct {
	OrderedIDs []uint `json:"ordered_ids" binding:"required"`
	// Category 仅对技能有效；缺省时取第一个 ID 所在分类。
	Category *string `json:"category"`
}

// entryHandler 为一类可排序子集合提供 CRUD 与排序接口。
type entryHandler[T any, P interface {
	*T
	database.OrderedEntry
}] struct {
	store   *profile.EntryStore[T, P]
	reorder func(c *gin.Context, userID, profileID uint, req reorderRequest) error
}

func newEntryHandler[T any, P interface {
	*T
	database.OrderedEntry
}](store *profile.EntryStore[T, P]) *entryHandler[T, P] {
	h := &entryHandler[T, P]{store: store}
	h.reorder = func(c *gin.Context, userID, profileID uint, req reorderRequest) error {
		return store.Reorder(c.Request.Context(), userID, profileID, req.OrderedIDs, nil)
	}
	return h
}

// register 挂载 GET/POST 集合路由与 GET/PUT/PATCH/DELETE 单条路由。
func (h *entryHandler[T, P]) register(group *gin.RouterGroup, path string) {
	g := group.Group(path)
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/reorder", h.reorderEntries)
	g.GET("/:entryID", h.get)
	g.PUT("/:entryID", h.update)
	g.PATCH("/:entryID", h.update)
	g.DELETE("/:entryID", h.delete)
}

func (h *entryHandler[T, P]) list(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	items, err := h.store.List(c.Request.Context(), userID, profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *entryHandler[T, P]) get(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "entryID")
	if !ok {
		return
	}
	entry, err := h.store.Get(c.Request.Context(), userID, profileID, entryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *entryHandler[T, P]) create(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	entry := P(new(T))
	// 未显式给出 is_visible 时默认可见。
	entry.SetVisible(true)
	if err := decodeOnto(body, entry); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Create(c.Request.Context(), userID, profileID, entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *entryHandler[T, P]) update(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "entryID")
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	entry, err := h.store.Update(c.Request.Context(), userID, profileID, entryID, func(e P) error {
		return decodeOnto(body, e)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *entryHandler[T, P]) delete(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "entryID")
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), userID, profileID, entryID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *entryHandler[T, P]) reorderEntries(c *gin.Context) {
	userID, profileID, ok := ownerAndProfile(c)
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.reorder(c, userID, profileID, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reordered"})
}

// registerEntries 挂载六类子集合；技能按分类排序。
func registerEntries(group *gin.RouterGroup, entries *profile.Entries) {
	newEntryHandler(entries.Educations).register(group, "/educations")
	newEntryHandler(entries.Experiences).register(group, "/experiences")
	newEntryHandler(entries.Languages).register(group, "/languages")
	newEntryHandler(entries.Certifications).register(group, "/certifications")
	newEntryHandler(entries.SocialNetworks).register(group, "/social-networks")

	skills := newEntryHandler(entries.Skills)
	skills.reorder = func(c *gin.Context, userID, profileID uint, req reorderRequest) error {
		return entries.ReorderSkills(c.Request.Context(), userID, profileID, req.Category, req.OrderedIDs)
	}
	skills.register(group, "/skills")
}
