// Package llm provides a provider-agnostic interface for streaming chat
// completions about artworks. The assistant persona and the message contract
// live here; the per-backend wiring lives in openai.go and anthropic.go.
package llm

import (
	"context"

	"github.com/artrogue/artrogue/internal/model"
)

// FragmentHandler receives assistant text fragments as the backend produces
// them. Returning an error aborts the stream (e.g. the client disconnected).
type FragmentHandler func(fragment string) error

// Client is the interface for chat backends. Both OpenAI and Anthropic
// implement it, which lets the Streamer fall back from one to the other.
//
// StreamChat sends the full ordered history and delivers the reply through
// onFragment until the backend signals completion. It returns nil on a clean
// end of stream and an error otherwise.
type Client interface {
	StreamChat(ctx context.Context, messages []model.ChatMessage, onFragment FragmentHandler) error
	ProviderName() string
	ModelName() string
}

// SystemPrompt returns the assistant persona used to seed every conversation.
func SystemPrompt() string {
	return "You are ArtRogue, an art museum chatbot inspired by Waldemar Januszczak. " +
		"You respond to questions about artworks, artists, and museum collections with historical insight and cultural comparisons. " +
		"Avoid a dry academic tone - be bold and conversational. If possible, include an unexpected detail or interpretation."
}
