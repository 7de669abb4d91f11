package publish

import (
	"net/http"
	"strings"

	"github.com/dosym/pagebox/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Published content changes rarely but is not immutable; intermediaries may
// cache it for an hour.
const cacheControl = "public, max-age=3600"

// RegisterRoutes mounts the anonymous public-serving path.
func RegisterRoutes(router *gin.Engine, service *Service) {
	handler := &httpHandler{service: service}
	router.GET("/s/:owner/:slug", handler.serve)
	router.GET("/s/:owner/:slug/*path", handler.serve)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) serve(c *gin.Context) {
	owner := c.Param("owner")
	slug := c.Param("slug")
	subPath := strings.Split(strings.TrimPrefix(c.Param("path"), "/"), "/")

	asset, err := h.service.Resolve(c.Request.Context(), owner, slug, subPath)
	if err != nil {
		// One opaque 404 regardless of which stage missed.
		metrics.PublicRequests.WithLabelValues("miss").Inc()
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.String(http.StatusNotFound, "not found")
		return
	}

	metrics.PublicRequests.WithLabelValues("hit").Inc()
	c.Header("Cache-Control", cacheControl)
	c.Data(http.StatusOK, asset.ContentType, asset.Content)
}
