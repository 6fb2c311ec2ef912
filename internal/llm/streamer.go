package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/storage"
)

// State describes where a streaming pass ended up.
type State string

const (
	// StateNotConfigured means no chat backend is available (no API key).
	StateNotConfigured State = "not_configured"
	// StateStreaming is the in-flight state while fragments are delivered.
	StateStreaming State = "streaming"
	// StateDone means the backend signalled clean completion.
	StateDone State = "done"
	// StateFailed means the backend errored; a terminal fragment describing
	// the failure was delivered, and earlier fragments are not retracted.
	StateFailed State = "failed"
)

// NotConfiguredMessage is the single fragment yielded when no backend is set up.
const NotConfiguredMessage = "(No language model API key is configured. " +
	"Set OPENAI_API_KEY or ANTHROPIC_API_KEY to enable the chat assistant.)"

// Streamer turns a conversation history into a stream of assistant text
// fragments. It tries backends in configured order; a backend that fails
// before producing any output falls through to the next one. There is no
// retry beyond that, and no backpressure — one best-effort pass per call.
type Streamer struct {
	clients  []Client // Ordered list: first is primary, rest are fallbacks
	limiter  *rate.Limiter
	callRepo storage.ChatCallRepository // nil disables call tracking
	logger   *zap.Logger
}

// NewStreamer creates a streamer with an ordered list of chat clients.
// The order is configurable via config.yaml: llm.provider_order: ["openai", "anthropic"]
// An empty client list is valid — Stream then yields the not-configured notice.
func NewStreamer(clients []Client, ratePerMinute int, callRepo storage.ChatCallRepository, logger *zap.Logger) *Streamer {
	var limiter *rate.Limiter
	if ratePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), 1)
	}
	return &Streamer{
		clients:  clients,
		limiter:  limiter,
		callRepo: callRepo,
		logger:   logger,
	}
}

// Configured reports whether at least one chat backend is available.
func (s *Streamer) Configured() bool { return len(s.clients) > 0 }

// Stream delivers the assistant's reply for the given history through
// onFragment and returns the terminal state.
//
// State machine per pass: NotConfigured yields exactly one static fragment
// and completes as Done. Otherwise the pass is Streaming until the backend
// finishes (Done) or errors (Failed, after one terminal fragment describing
// the failure).
func (s *Streamer) Stream(ctx context.Context, sessionID string, messages []model.ChatMessage, onFragment FragmentHandler) State {
	state := StateStreaming
	if !s.Configured() {
		state = StateNotConfigured
	}

	if state == StateNotConfigured {
		if err := onFragment(NotConfiguredMessage); err != nil {
			s.logger.Warn("delivering not-configured notice", zap.Error(err))
			return StateFailed
		}
		return StateDone
	}

	var lastErr error
	var lastProvider string

	for i, client := range s.clients {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				lastErr = fmt.Errorf("rate limit wait: %w", err)
				lastProvider = client.ProviderName()
				break
			}
		}

		// Track whether this backend produced anything: once fragments have
		// gone out we cannot fall back to another provider mid-reply.
		delivered := false
		wrapped := func(fragment string) error {
			delivered = true
			return onFragment(fragment)
		}

		start := time.Now()
		err := client.StreamChat(ctx, messages, wrapped)
		s.recordCall(ctx, client, sessionID, err, time.Since(start).Milliseconds())

		if err == nil {
			return StateDone
		}

		lastErr = err
		lastProvider = client.ProviderName()

		if delivered {
			// Partial output already reached the caller — terminal failure.
			s.emitFailure(client.ProviderName(), err, onFragment)
			return StateFailed
		}

		if i < len(s.clients)-1 {
			s.logger.Warn("chat backend failed, trying next",
				zap.String("provider", client.ProviderName()),
				zap.Error(err),
			)
		}
	}

	s.emitFailure(lastProvider, lastErr, onFragment)
	return StateFailed
}

// emitFailure delivers the single terminal fragment for a failed stream.
func (s *Streamer) emitFailure(provider string, err error, onFragment FragmentHandler) {
	s.logger.Error("chat stream failed",
		zap.String("provider", provider),
		zap.Error(err),
	)
	if cbErr := onFragment(fmt.Sprintf("(Error streaming from %s: %v)", provider, err)); cbErr != nil {
		s.logger.Warn("delivering failure notice", zap.Error(cbErr))
	}
}

func (s *Streamer) recordCall(ctx context.Context, client Client, sessionID string, callErr error, durationMs int64) {
	if s.callRepo == nil {
		return
	}
	call := &model.ChatCall{
		SessionID: sessionID,
		Provider:  client.ProviderName(),
		Model:     client.ModelName(),
		Success:   callErr == nil,
	}
	call.DurationMs = &durationMs

	if err := s.callRepo.Create(ctx, call); err != nil {
		s.logger.Error("recording chat call", zap.Error(err))
	}
}
