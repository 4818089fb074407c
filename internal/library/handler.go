package library

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"backlogr/internal/sheet"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/library", h.list)
	rg.GET("/library/stats", h.stats)
	rg.POST("/library/reload", h.reload)
}

func (h *Handler) list(c *gin.Context) {
	sortBy := strings.TrimSpace(c.Query("sort"))
	switch sortBy {
	case "", "name", "price_high", "price_low":
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "sort must be one of: name, price_high, price_low",
		})
		return
	}

	q := ListQuery{
		Q:        strings.TrimSpace(c.Query("q")),
		Platform: strings.TrimSpace(c.Query("platform")),
		Status:   strings.TrimSpace(c.Query("status")),
		Sort:     sortBy,
		Limit:    parseInt(c.Query("limit"), 24),
		Offset:   parseInt(c.Query("offset"), 0),
	}

	c.JSON(http.StatusOK, h.Service.List(q))
}

func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Stats())
}

// reload re-ingests the sheet. Ingestion failures are the only
// user-visible errors in the system, so they get distinct statuses:
// an unreachable source maps to 502 and unusable content to 422.
func (h *Handler) reload(c *gin.Context) {
	if err := h.Service.Reload(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, sheet.ErrSourceUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "sheet source unreachable"})
		case errors.Is(err, sheet.ErrParse), errors.Is(err, sheet.ErrHeaderNotFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":    h.Service.RunID(),
		"count":     len(h.Service.Games()),
		"loaded_at": h.Service.LoadedAt(),
	})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
