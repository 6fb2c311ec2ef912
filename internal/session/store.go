// Package session holds per-browser-session state in memory: the selected
// museum and artwork plus the ordered, append-only chat history. Nothing here
// is durable — a session lives exactly as long as the user keeps interacting.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artrogue/artrogue/internal/model"
)

// ErrNotFound is returned when a session doesn't exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is one user's conversation state.
type Session struct {
	ID         string              `json:"id"`
	Museum     model.Museum        `json:"museum"`
	Selected   *model.Artwork      `json:"selected,omitempty"`
	Messages   []model.ChatMessage `json:"messages"`
	CreatedAt  time.Time           `json:"created_at"`
	LastActive time.Time           `json:"last_active"`
}

// Store is a mutex-guarded in-memory session map. Expired sessions are
// pruned lazily on access rather than by a background goroutine — the whole
// system is request-driven and this keeps it that way.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time // injectable for expiry tests
}

// NewStore creates a session store. Sessions idle longer than ttl are
// dropped; ttl <= 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session for the given museum, seeded with the provided
// system prompt as the first message of the history.
func (s *Store) Create(museum model.Museum, systemPrompt string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	now := s.now()
	sess := &Session{
		ID:     uuid.NewString(),
		Museum: museum,
		Messages: []model.ChatMessage{
			{Role: model.RoleSystem, Content: systemPrompt},
		},
		CreatedAt:  now,
		LastActive: now,
	}
	s.sessions[sess.ID] = sess
	return snapshot(sess)
}

// Get returns a copy of the session, refreshing its idle timer.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.LastActive = s.now()
	return snapshot(sess), nil
}

// Select records the artwork the user picked for this session.
func (s *Store) Select(id string, art model.Artwork) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	selected := art
	sess.Selected = &selected
	sess.LastActive = s.now()
	return nil
}

// Append adds a message to the end of the session history.
func (s *Store) Append(id string, msg model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.Messages = append(sess.Messages, msg)
	sess.LastActive = s.now()
	return nil
}

// History returns a copy of the ordered message history.
func (s *Store) History(id string) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]model.ChatMessage, len(sess.Messages))
	copy(out, sess.Messages)
	return out, nil
}

// Len reports how many live sessions the store holds.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return len(s.sessions)
}

func (s *Store) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.LastActive.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// snapshot copies a session so callers never share the store's mutable state.
func snapshot(sess *Session) *Session {
	out := *sess
	out.Messages = make([]model.ChatMessage, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	if sess.Selected != nil {
		selected := *sess.Selected
		out.Selected = &selected
	}
	return &out
}
