package cover

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{Resolver: resolver}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/covers/:title", h.get)
}

// get answers from the cache when possible; otherwise it reports pending
// and lets the client poll or listen on /ws for cover.resolved. Lookup
// failures never surface here; they come back as a cached "no cover".
func (h *Handler) get(c *gin.Context) {
	title := strings.TrimSpace(c.Param("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	res, err := h.Resolver.Lookup(c.Request.Context(), title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cover lookup failed"})
		return
	}

	c.JSON(http.StatusOK, res)
}
