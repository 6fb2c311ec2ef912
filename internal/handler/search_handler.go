package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/service"
)

// SearchHandler handles artwork search requests.
type SearchHandler struct {
	artService *service.ArtService
	logger     *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(artService *service.ArtService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		artService: artService,
		logger:     logger,
	}
}

// Search runs a museum search and returns normalized artworks.
// Route: GET /api/v1/search?museum=met&q=sunflowers&highlight=1
//
// A provider failure is not a 5xx: the service degrades it to an empty
// artwork list plus a notice, and this endpoint returns 200 either way.
func (h *SearchHandler) Search(c *gin.Context) {
	museumTag := c.Query("museum")
	if !model.ValidMuseum(museumTag) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid museum: must be met or cma",
		})
		return
	}

	query := c.Query("q")
	highlight := c.Query("highlight") == "1" || c.Query("highlight") == "true"

	result, err := h.artService.Search(c.Request.Context(), model.Museum(museumTag), query, highlight)
	if err != nil {
		h.logger.Error("search failed", zap.String("museum", museumTag), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, result)
}
