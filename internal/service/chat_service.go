package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/llm"
	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/session"
)

// ChatService manages chat sessions and streams assistant replies into them.
type ChatService struct {
	sessions *session.Store
	streamer *llm.Streamer
	logger   *zap.Logger
}

// NewChatService creates a chat service over the given session store and streamer.
func NewChatService(sessions *session.Store, streamer *llm.Streamer, logger *zap.Logger) *ChatService {
	return &ChatService{
		sessions: sessions,
		streamer: streamer,
		logger:   logger,
	}
}

// CreateSession starts a new session seeded with the assistant persona.
func (c *ChatService) CreateSession(m model.Museum) *session.Session {
	return c.sessions.Create(m, llm.SystemPrompt())
}

// GetSession returns the session's current state.
func (c *ChatService) GetSession(id string) (*session.Session, error) {
	return c.sessions.Get(id)
}

// SelectArtwork records the artwork the user picked and seeds the
// conversation with its context, so follow-up questions like "who painted
// this?" resolve against the selection.
func (c *ChatService) SelectArtwork(id string, art model.Artwork) error {
	if err := c.sessions.Select(id, art); err != nil {
		return err
	}
	return c.sessions.Append(id, model.ChatMessage{
		Role:    model.RoleSystem,
		Content: artworkContext(art),
	})
}

// Stream appends the user's message to the session, streams the assistant's
// reply through onFragment, and appends the accumulated reply to the history
// when the stream ends. A Failed stream still appends whatever fragments
// were delivered — partial output is not retracted.
func (c *ChatService) Stream(ctx context.Context, id string, userMessage string, onFragment llm.FragmentHandler) (llm.State, error) {
	if err := c.sessions.Append(id, model.ChatMessage{
		Role:    model.RoleUser,
		Content: userMessage,
	}); err != nil {
		return llm.StateFailed, err
	}

	history, err := c.sessions.History(id)
	if err != nil {
		return llm.StateFailed, err
	}

	var reply strings.Builder
	state := c.streamer.Stream(ctx, id, history, func(fragment string) error {
		reply.WriteString(fragment)
		return onFragment(fragment)
	})

	if reply.Len() > 0 {
		if err := c.sessions.Append(id, model.ChatMessage{
			Role:    model.RoleAssistant,
			Content: reply.String(),
		}); err != nil {
			// Session may have expired mid-stream; the reply was delivered
			// either way, so log and move on.
			c.logger.Warn("appending assistant reply", zap.String("session", id), zap.Error(err))
		}
	}

	return state, nil
}

// artworkContext renders the selected artwork as a system note for the model.
func artworkContext(art model.Artwork) string {
	var b strings.Builder
	b.WriteString("The user is now looking at this artwork:\n")
	fmt.Fprintf(&b, "Title: %s\n", art.Title)
	if art.Artist != "" {
		fmt.Fprintf(&b, "Artist: %s\n", art.Artist)
	}
	if art.CreationDate != "" {
		fmt.Fprintf(&b, "Date: %s\n", art.CreationDate)
	}
	if art.ImageURL != "" {
		fmt.Fprintf(&b, "Image: %s\n", art.ImageURL)
	}
	b.WriteString("Answer their questions about this piece unless they change the subject.")
	return b.String()
}
