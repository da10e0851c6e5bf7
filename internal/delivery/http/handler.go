package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/grocerlist/usdaimport/internal/usecase"
	"go.uber.org/zap"
)

// CatalogueSearcher answers keyword queries against the catalogue
type CatalogueSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]usecase.SearchResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searcher CatalogueSearcher
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher CatalogueSearcher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		searcher: searcher,
		logger:   logger.Named("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "grocerlist-catalogue",
		"version": "1.0.0",
	})
}

// SearchGroceries handles GET /api/v1/groceries/search?q=&limit=. A missing
// or unparsable limit selects the default.
func (h *Handler) SearchGroceries(c *gin.Context) {
	query := c.Query("q")
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	items, err := h.searcher.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.logger.Error("catalogue search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "USDA search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
