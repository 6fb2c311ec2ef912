package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/llm"
	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/service"
	"github.com/artrogue/artrogue/internal/session"
)

type scriptedClient struct {
	fragments []string
}

func (c *scriptedClient) StreamChat(ctx context.Context, messages []model.ChatMessage, onFragment llm.FragmentHandler) error {
	for _, frag := range c.fragments {
		if err := onFragment(frag); err != nil {
			return err
		}
	}
	return nil
}

func (c *scriptedClient) ProviderName() string { return "scripted" }
func (c *scriptedClient) ModelName() string    { return "scripted-model" }

func newChatRouter(t *testing.T, clients []llm.Client) (*gin.Engine, *service.ChatService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewStore(time.Hour)
	streamer := llm.NewStreamer(clients, 0, nil, zap.NewNop())
	chatService := service.NewChatService(store, streamer, zap.NewNop())
	h := NewChatHandler(chatService, zap.NewNop())

	router := gin.New()
	router.POST("/sessions/:id/chat", h.Chat)
	return router, chatService
}

// parseSSE extracts the data payloads from an SSE body.
func parseSSE(t *testing.T, body string) []string {
	t.Helper()
	var payloads []string
	for _, line := range strings.Split(body, "\n") {
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			payloads = append(payloads, payload)
		}
	}
	return payloads
}

func TestChat_StreamsFragmentsAsSSE(t *testing.T) {
	client := &scriptedClient{fragments: []string{"Bold ", "strokes."}}
	router, chatService := newChatRouter(t, []llm.Client{client})
	sess := chatService.CreateSession(model.MuseumMET)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.ID+"/chat",
		strings.NewReader(`{"message": "Tell me about this painting."}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	payloads := parseSSE(t, w.Body.String())
	if len(payloads) != 3 {
		t.Fatalf("got %d events, want 3: %v", len(payloads), payloads)
	}
	if payloads[len(payloads)-1] != "[DONE]" {
		t.Errorf("last event = %q, want [DONE]", payloads[len(payloads)-1])
	}

	var reply strings.Builder
	for _, payload := range payloads[:len(payloads)-1] {
		var frag struct {
			Fragment string `json:"fragment"`
		}
		if err := json.Unmarshal([]byte(payload), &frag); err != nil {
			t.Fatalf("decoding event %q: %v", payload, err)
		}
		reply.WriteString(frag.Fragment)
	}
	if reply.String() != "Bold strokes." {
		t.Errorf("reply = %q", reply.String())
	}
}

func TestChat_NotConfiguredStreamsStaticReply(t *testing.T) {
	router, chatService := newChatRouter(t, nil)
	sess := chatService.CreateSession(model.MuseumCMA)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.ID+"/chat",
		strings.NewReader(`{"message": "hello"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	payloads := parseSSE(t, w.Body.String())
	// One fragment event plus the [DONE] marker.
	if len(payloads) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(payloads), payloads)
	}
	if !strings.Contains(payloads[0], "No language model API key") {
		t.Errorf("fragment = %q, want the not-configured notice", payloads[0])
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	router, chatService := newChatRouter(t, nil)
	sess := chatService.CreateSession(model.MuseumMET)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sess.ID+"/chat",
		strings.NewReader(`{"message": ""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestChat_UnknownSession(t *testing.T) {
	router, _ := newChatRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions/nope/chat",
		strings.NewReader(`{"message": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
