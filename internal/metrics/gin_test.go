package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRouteLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen []string
	r.Use(func(c *gin.Context) {
		c.Next()
		seen = append(seen, RouteLabel(c))
	})
	r.GET("/v1/profiles/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/v1/profiles/42", "/wp-login.php"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, []string{"/v1/profiles/:id", "unmatched"}, seen)
}
