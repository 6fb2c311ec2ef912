package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/model"
)

// fakeClient scripts a backend: it emits its fragments in order, then
// returns err (nil for a clean end of stream).
type fakeClient struct {
	name      string
	fragments []string
	err       error
	calls     int
}

func (f *fakeClient) StreamChat(ctx context.Context, messages []model.ChatMessage, onFragment FragmentHandler) error {
	f.calls++
	for _, frag := range f.fragments {
		if err := onFragment(frag); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeClient) ProviderName() string { return f.name }
func (f *fakeClient) ModelName() string    { return f.name + "-model" }

// fakeCallRepo records calls in memory.
type fakeCallRepo struct {
	calls []*model.ChatCall
}

func (r *fakeCallRepo) Create(ctx context.Context, call *model.ChatCall) error {
	r.calls = append(r.calls, call)
	return nil
}
func (r *fakeCallRepo) Count(ctx context.Context) (int64, error)       { return int64(len(r.calls)), nil }
func (r *fakeCallRepo) CountFailed(ctx context.Context) (int64, error) { return 0, nil }

func history() []model.ChatMessage {
	return []model.ChatMessage{
		{Role: model.RoleSystem, Content: SystemPrompt()},
		{Role: model.RoleUser, Content: "Tell me about Sunflowers."},
	}
}

func collect(fragments *[]string) FragmentHandler {
	return func(fragment string) error {
		*fragments = append(*fragments, fragment)
		return nil
	}
}

func TestStream_NotConfigured(t *testing.T) {
	s := NewStreamer(nil, 0, nil, zap.NewNop())

	var fragments []string
	state := s.Stream(context.Background(), "sess", history(), collect(&fragments))

	if state != StateDone {
		t.Errorf("state = %s, want %s", state, StateDone)
	}
	if len(fragments) != 1 {
		t.Fatalf("got %d fragments, want exactly 1", len(fragments))
	}
	if fragments[0] != NotConfiguredMessage {
		t.Errorf("fragment = %q", fragments[0])
	}
	if s.Configured() {
		t.Error("Configured() = true for empty client list")
	}
}

func TestStream_CleanCompletion(t *testing.T) {
	client := &fakeClient{name: "openai", fragments: []string{"Van ", "Gogh ", "painted them."}}
	repo := &fakeCallRepo{}
	s := NewStreamer([]Client{client}, 0, repo, zap.NewNop())

	var fragments []string
	state := s.Stream(context.Background(), "sess", history(), collect(&fragments))

	if state != StateDone {
		t.Errorf("state = %s, want %s", state, StateDone)
	}
	reply := strings.Join(fragments, "")
	if reply != "Van Gogh painted them." {
		t.Errorf("reply = %q", reply)
	}

	if len(repo.calls) != 1 {
		t.Fatalf("got %d recorded calls, want 1", len(repo.calls))
	}
	call := repo.calls[0]
	if !call.Success || call.Provider != "openai" || call.SessionID != "sess" {
		t.Errorf("recorded call = %+v", call)
	}
}

func TestStream_MidStreamFailure(t *testing.T) {
	client := &fakeClient{
		name:      "openai",
		fragments: []string{"Van Gogh was"},
		err:       errors.New("connection reset"),
	}
	repo := &fakeCallRepo{}
	s := NewStreamer([]Client{client}, 0, repo, zap.NewNop())

	var fragments []string
	state := s.Stream(context.Background(), "sess", history(), collect(&fragments))

	if state != StateFailed {
		t.Errorf("state = %s, want %s", state, StateFailed)
	}
	// Partial output is kept, followed by exactly one terminal error fragment.
	if len(fragments) != 2 {
		t.Fatalf("got %d fragments, want 2: %v", len(fragments), fragments)
	}
	if fragments[0] != "Van Gogh was" {
		t.Errorf("partial fragment retracted: %q", fragments[0])
	}
	if !strings.Contains(fragments[1], "connection reset") {
		t.Errorf("terminal fragment = %q, want the failure description", fragments[1])
	}
	if repo.calls[0].Success {
		t.Error("failed call recorded as success")
	}
}

func TestStream_FallsBackBeforeFirstFragment(t *testing.T) {
	primary := &fakeClient{name: "openai", err: errors.New("quota exceeded")}
	fallback := &fakeClient{name: "anthropic", fragments: []string{"Gladly."}}
	s := NewStreamer([]Client{primary, fallback}, 0, nil, zap.NewNop())

	var fragments []string
	state := s.Stream(context.Background(), "sess", history(), collect(&fragments))

	if state != StateDone {
		t.Errorf("state = %s, want %s", state, StateDone)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}
	if len(fragments) != 1 || fragments[0] != "Gladly." {
		t.Errorf("fragments = %v", fragments)
	}
}

func TestStream_NoFallbackAfterOutput(t *testing.T) {
	primary := &fakeClient{
		name:      "openai",
		fragments: []string{"partial"},
		err:       errors.New("dropped"),
	}
	fallback := &fakeClient{name: "anthropic", fragments: []string{"unused"}}
	s := NewStreamer([]Client{primary, fallback}, 0, nil, zap.NewNop())

	var fragments []string
	state := s.Stream(context.Background(), "sess", history(), collect(&fragments))

	if state != StateFailed {
		t.Errorf("state = %s, want %s", state, StateFailed)
	}
	if fallback.calls != 0 {
		t.Error("fell back to second provider after partial output")
	}
}

func TestStream_AllProvidersFail(t *testing.T) {
	a := &fakeClient{name: "openai", err: errors.New("down")}
	b := &fakeClient{name: "anthropic", err: errors.New("also down")}
	s := NewStreamer([]Client{a, b}, 0, nil, zap.NewNop())

	var fragments []string
	state := s.Stream(context.Background(), "sess", history(), collect(&fragments))

	if state != StateFailed {
		t.Errorf("state = %s, want %s", state, StateFailed)
	}
	if len(fragments) != 1 {
		t.Fatalf("got %d fragments, want exactly the terminal one", len(fragments))
	}
	if !strings.Contains(fragments[0], "also down") {
		t.Errorf("terminal fragment = %q, want the last provider's error", fragments[0])
	}
}
