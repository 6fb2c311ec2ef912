package session

import (
	"errors"
	"testing"
	"time"

	"github.com/artrogue/artrogue/internal/model"
)

func TestStore_CreateSeedsSystemPrompt(t *testing.T) {
	s := NewStore(time.Hour)

	sess := s.Create(model.MuseumMET, "persona")
	if sess.ID == "" {
		t.Fatal("empty session ID")
	}
	if sess.Museum != model.MuseumMET {
		t.Errorf("museum = %s", sess.Museum)
	}
	if len(sess.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(sess.Messages))
	}
	if sess.Messages[0].Role != model.RoleSystem || sess.Messages[0].Content != "persona" {
		t.Errorf("seed message = %+v", sess.Messages[0])
	}
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.Create(model.MuseumCMA, "persona")

	msgs := []model.ChatMessage{
		{Role: model.RoleUser, Content: "who painted this?"},
		{Role: model.RoleAssistant, Content: "Church did."},
		{Role: model.RoleUser, Content: "when?"},
	}
	for _, m := range msgs {
		if err := s.Append(sess.ID, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	history, err := s.History(sess.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("got %d messages, want 4", len(history))
	}
	for i, want := range msgs {
		if history[i+1] != want {
			t.Errorf("message %d = %+v, want %+v", i+1, history[i+1], want)
		}
	}
}

func TestStore_SelectStoresArtwork(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.Create(model.MuseumMET, "persona")

	art := model.Artwork{Title: "Sunflowers", Artist: "Vincent van Gogh"}
	if err := s.Select(sess.ID, art); err != nil {
		t.Fatalf("select: %v", err)
	}

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Selected == nil || *got.Selected != art {
		t.Errorf("selected = %+v", got.Selected)
	}
}

func TestStore_UnknownSession(t *testing.T) {
	s := NewStore(time.Hour)

	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
	if err := s.Append("nope", model.ChatMessage{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Append err = %v, want ErrNotFound", err)
	}
	if err := s.Select("nope", model.Artwork{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Select err = %v, want ErrNotFound", err)
	}
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	s := NewStore(time.Minute)

	now := time.Now()
	s.now = func() time.Time { return now }

	sess := s.Create(model.MuseumMET, "persona")

	// Two minutes later the idle session is gone.
	now = now.Add(2 * time.Minute)
	if _, err := s.Get(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound after expiry", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := NewStore(time.Hour)
	sess := s.Create(model.MuseumMET, "persona")

	// Mutating the returned copy must not affect the store.
	sess.Messages[0].Content = "tampered"

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Messages[0].Content != "persona" {
		t.Error("store state mutated through a snapshot")
	}
}
