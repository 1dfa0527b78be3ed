package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/omniprompt/gateway/internal/database"
	"github.com/omniprompt/gateway/internal/dispatch"
	"github.com/omniprompt/gateway/internal/providers"
)

// fakeSpeech implements Provider and VoiceCatalog for the voices endpoint.
type fakeSpeech struct {
	voices []providers.Voice
	err    error
}

func (f *fakeSpeech) Name() string                         { return providers.ElevenLabs }
func (f *fakeSpeech) Models() []string                     { return []string{"fake-tts"} }
func (f *fakeSpeech) CheckHealth(ctx context.Context) bool { return f.err == nil }

func (f *fakeSpeech) Process(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	return &providers.Response{Content: "audio"}, nil
}

func (f *fakeSpeech) Voices(ctx context.Context) ([]providers.Voice, error) {
	return f.voices, f.err
}

func newTestHandlers(t *testing.T, adapters ...providers.Provider) *Handlers {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	registry, err := providers.NewRegistry(adapters...)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	log := zap.NewNop().Sugar()
	dispatcher := dispatch.NewDispatcher(registry, dispatch.NewLimiter(db), db, log, time.Minute)
	return NewHandlers(db, registry, dispatcher, log)
}

func TestVoicesHandler(t *testing.T) {
	h := newTestHandlers(t, &fakeSpeech{
		voices: []providers.Voice{{VoiceID: "v1", Name: "Rachel"}},
	})

	rec := httptest.NewRecorder()
	h.Voices(rec, httptest.NewRequest(http.MethodGet, "/api/elevenlabs/voices", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var voices []providers.Voice
	if err := json.Unmarshal(rec.Body.Bytes(), &voices); err != nil {
		t.Fatalf("Failed to parse body: %v", err)
	}
	if len(voices) != 1 || voices[0].Name != "Rachel" {
		t.Errorf("Voices = %+v", voices)
	}
}

func TestVoicesHandlerNoSpeechProvider(t *testing.T) {
	h := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.Voices(rec, httptest.NewRequest(http.MethodGet, "/api/elevenlabs/voices", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Status = %d, want 503: %s", rec.Code, rec.Body)
	}
}

func TestVoicesHandlerUpstreamFailure(t *testing.T) {
	h := newTestHandlers(t, &fakeSpeech{
		err: &providers.ProviderError{Provider: providers.ElevenLabs, Message: "down"},
	})

	rec := httptest.NewRecorder()
	h.Voices(rec, httptest.NewRequest(http.MethodGet, "/api/elevenlabs/voices", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want 500: %s", rec.Code, rec.Body)
	}
}

func TestRequireUser(t *testing.T) {
	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = userIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireUser(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Status without header = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/user/stats", nil)
	req.Header.Set(userIDHeader, "user-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status with header = %d, want 200", rec.Code)
	}
	if seenUserID != "user-1" {
		t.Errorf("Injected user ID = %q, want user-1", seenUserID)
	}
}

func TestRecentRequestsLimitClamped(t *testing.T) {
	h := newTestHandlers(t)

	for i := 0; i < maxRecentLimit+5; i++ {
		entry := &database.RequestLog{
			Provider: "openai",
			Model:    "gpt-4o",
			Prompt:   "hello",
			Status:   database.StatusSuccess,
		}
		if err := h.db.CreateRequestLog(entry); err != nil {
			t.Fatalf("CreateRequestLog failed: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	h.RecentRequests(rec, httptest.NewRequest(http.MethodGet, "/api/requests/recent?limit=1000000", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var entries []database.RequestLog
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Failed to parse body: %v", err)
	}
	if len(entries) != maxRecentLimit {
		t.Errorf("Entries = %d, want %d", len(entries), maxRecentLimit)
	}
}

func TestProcessAIInvalidBody(t *testing.T) {
	h := newTestHandlers(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/process", nil)
	h.ProcessAI(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Status = %d, want 400: %s", rec.Code, rec.Body)
	}
	var parsed map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("Failed to parse body: %v", err)
	}
	if parsed["error"] != "invalid_request" {
		t.Errorf("Error = %s, want invalid_request", parsed["error"])
	}
}
