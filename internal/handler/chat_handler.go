package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/service"
	"github.com/artrogue/artrogue/internal/session"
)

// ChatHandler streams assistant replies over Server-Sent Events.
type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// sseFragment is the JSON payload of each data: event. Wrapping the text in
// JSON preserves leading/trailing whitespace, which matters for token-by-token
// rendering.
type sseFragment struct {
	Fragment string `json:"fragment"`
}

// Chat appends the user's message to the session and streams the assistant's
// reply as SSE: one `data: {"fragment": "..."}` event per fragment, then a
// final `data: [DONE]` regardless of whether the stream finished cleanly.
// Route: POST /api/v1/sessions/:id/chat {"message": "..."}
func (h *ChatHandler) Chat(c *gin.Context) {
	id := c.Param("id")

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	// Fail fast on unknown sessions before committing to an SSE response.
	if _, err := h.chatService.GetSession(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Error("getting session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	onFragment := func(fragment string) error {
		payload, err := json.Marshal(sseFragment{Fragment: fragment})
		if err != nil {
			return fmt.Errorf("marshaling fragment: %w", err)
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			return fmt.Errorf("writing fragment: %w", err)
		}
		c.Writer.Flush()
		return nil
	}

	state, err := h.chatService.Stream(c.Request.Context(), id, req.Message, onFragment)
	if err != nil {
		// The session vanished between the check above and the stream; the
		// response is already committed, so all we can do is log and close.
		h.logger.Warn("chat stream aborted", zap.String("session", id), zap.Error(err))
	}

	h.logger.Debug("chat stream finished",
		zap.String("session", id),
		zap.String("state", string(state)),
	)

	fmt.Fprint(c.Writer, "data: [DONE]\n\n")
	c.Writer.Flush()
}
