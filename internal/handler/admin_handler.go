package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/session"
	"github.com/artrogue/artrogue/internal/storage"
)

// AdminHandler handles administrative endpoints.
type AdminHandler struct {
	searchRepo   storage.SearchRepository
	chatCallRepo storage.ChatCallRepository
	sessions     *session.Store
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(searchRepo storage.SearchRepository, chatCallRepo storage.ChatCallRepository, sessions *session.Store, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		searchRepo:   searchRepo,
		chatCallRepo: chatCallRepo,
		sessions:     sessions,
		logger:       logger,
	}
}

// Stats returns search and chat usage counters.
// Route: GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	totalSearches, err := h.searchRepo.Count(ctx)
	if err != nil {
		h.logger.Error("counting searches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	metSearches, err := h.searchRepo.CountByMuseum(ctx, model.MuseumMET)
	if err != nil {
		h.logger.Error("counting MET searches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	cmaSearches, err := h.searchRepo.CountByMuseum(ctx, model.MuseumCMA)
	if err != nil {
		h.logger.Error("counting CMA searches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	chatCalls, err := h.chatCallRepo.Count(ctx)
	if err != nil {
		h.logger.Error("counting chat calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	failedCalls, err := h.chatCallRepo.CountFailed(ctx)
	if err != nil {
		h.logger.Error("counting failed chat calls", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"searches": gin.H{
			"total": totalSearches,
			"met":   metSearches,
			"cma":   cmaSearches,
		},
		"chat_calls": gin.H{
			"total":  chatCalls,
			"failed": failedCalls,
		},
		"live_sessions": h.sessions.Len(),
	})
}

// RecentSearches lists the latest search history rows.
// Route: GET /api/v1/admin/searches?limit=20
func (h *AdminHandler) RecentSearches(c *gin.Context) {
	limit := 20
	recs, err := h.searchRepo.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("listing searches", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"searches": recs})
}
