package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cvbuilder/internal/catalog"
)

// ListTemplates 返回全部布局模板，无副作用。
func ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": catalog.Templates()})
}

// GetTemplate 按名称返回单个模板。
func GetTemplate(c *gin.Context) {
	t, err := catalog.Get(c.Param("name"))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, t)
}

// ListColorSchemes 返回全部配色方案。
func ListColorSchemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": catalog.ColorSchemes()})
}
