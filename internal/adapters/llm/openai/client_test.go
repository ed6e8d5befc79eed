package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/adapters/llm/openai"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

func testMessages() []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: "You are a tarot reader."},
		{Role: "user", Content: "Interpret this reading."},
	}
}

func testConfig(baseURL string) domain.AIModelConfig {
	return domain.AIModelConfig{
		Provider: "openrouter",
		ModelID:  "test-model",
		APIKey:   "test-key",
		BaseURL:  baseURL,
	}
}

func newClient(httpClient *http.Client) *openai.Client {
	return openai.NewClient(httpClient, "Tarots OS", "https://example.test/tarots", 0.7, slog.Default())
}

func TestGenerate_Success(t *testing.T) {
	var gotReq map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("bad auth header: %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Title") != "Tarots OS" {
			t.Errorf("bad X-Title header: %s", r.Header.Get("X-Title"))
		}
		if r.Header.Get("HTTP-Referer") != "https://example.test/tarots" {
			t.Errorf("bad HTTP-Referer header: %s", r.Header.Get("HTTP-Referer"))
		}

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "The cards suggest patience."}},
			},
		})
	}))
	defer srv.Close()

	text, err := newClient(srv.Client()).Generate(context.Background(), testMessages(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "The cards suggest patience." {
		t.Errorf("unexpected text: %q", text)
	}

	if gotReq["model"] != "test-model" {
		t.Errorf("model not forwarded: %v", gotReq["model"])
	}
	if gotReq["temperature"] != 0.7 {
		t.Errorf("temperature not forwarded: %v", gotReq["temperature"])
	}
	msgs, _ := gotReq["messages"].([]any)
	if len(msgs) != 2 {
		t.Errorf("expected 2 messages in request, got %d", len(msgs))
	}
}

func TestGenerate_MissingAPIKey_NoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = ""

	_, err := newClient(srv.Client()).Generate(context.Background(), testMessages(), cfg)
	if !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected zero network calls, got %d", calls.Load())
	}
}

func TestGenerate_UpstreamErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limit exceeded"},
		})
	}))
	defer srv.Close()

	_, err := newClient(srv.Client()).Generate(context.Background(), testMessages(), testConfig(srv.URL))
	if !errors.Is(err, domain.ErrUpstreamLLM) {
		t.Fatalf("expected ErrUpstreamLLM, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "rate limit exceeded") {
		t.Errorf("upstream message not surfaced: %q", got)
	}
}

func TestGenerate_UpstreamStatusTextFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newClient(srv.Client()).Generate(context.Background(), testMessages(), testConfig(srv.URL))
	if !errors.Is(err, domain.ErrUpstreamLLM) {
		t.Fatalf("expected ErrUpstreamLLM, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "Service Unavailable") {
		t.Errorf("status text not surfaced: %q", got)
	}
}

func TestGenerate_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused

	_, err := newClient(&http.Client{Timeout: time.Second}).Generate(context.Background(), testMessages(), testConfig(srv.URL))
	if !errors.Is(err, domain.ErrLLMTransport) {
		t.Fatalf("expected ErrLLMTransport, got %v", err)
	}
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	text, err := newClient(srv.Client()).Generate(context.Background(), testMessages(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty completion, got %q", text)
	}
}

func TestGenerate_Cancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches the connection and cancels
		// r.Context() when the client disconnects; otherwise this handler
		// never unblocks and srv.Close() deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newClient(srv.Client()).Generate(ctx, testMessages(), testConfig(srv.URL))
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}
