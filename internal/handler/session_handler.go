package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/museum"
	"github.com/artrogue/artrogue/internal/service"
	"github.com/artrogue/artrogue/internal/session"
)

// SessionHandler manages chat sessions: create, inspect, select artwork.
type SessionHandler struct {
	chatService *service.ChatService
	artService  *service.ArtService
	logger      *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(chatService *service.ChatService, artService *service.ArtService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		chatService: chatService,
		artService:  artService,
		logger:      logger,
	}
}

type createSessionRequest struct {
	Museum string `json:"museum"`
}

// Create starts a new session for a museum.
// Route: POST /api/v1/sessions {"museum": "met"}
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !model.ValidMuseum(req.Museum) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid museum: must be met or cma"})
		return
	}

	sess := h.chatService.CreateSession(model.Museum(req.Museum))
	c.JSON(http.StatusCreated, sess)
}

// Get returns the session's current state, chat history included.
// Route: GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.chatService.GetSession(c.Param("id"))
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		h.logger.Error("getting session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

type selectArtworkRequest struct {
	// Artwork is the normalized record the UI already holds after a search.
	Artwork *model.Artwork `json:"artwork"`
	// Raw is a provider-native record; when given it is normalized against
	// the session's museum before being stored.
	Raw museum.RawArtwork `json:"raw"`
}

// Select records which artwork the user is viewing and seeds the chat
// conversation with its context.
// Route: POST /api/v1/sessions/:id/select
func (h *SessionHandler) Select(c *gin.Context) {
	id := c.Param("id")

	var req selectArtworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var art model.Artwork
	switch {
	case req.Artwork != nil:
		art = *req.Artwork
	case req.Raw != nil:
		sess, err := h.chatService.GetSession(id)
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if err != nil {
			h.logger.Error("getting session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		art, err = h.artService.Normalize(sess.Museum, req.Raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "artwork or raw record required"})
		return
	}

	if err := h.chatService.SelectArtwork(id, art); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Error("selecting artwork", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "selected", "artwork": art})
}
