package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-sonnet-4-20250514",
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"question":"What is 2+3?","answer":"5"}`},
			},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  50,
				"output_tokens": 30,
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:    "You are a coding interview coach.",
		Messages:  []Message{{Role: RoleUser, Content: "Generate a question."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 50 {
		t.Fatalf("expected 50 input tokens, got %d", resp.Usage.InputTokens)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
	if resp.Text != `{"question":"What is 2+3?","answer":"5"}` {
		t.Fatalf("unexpected text: %s", resp.Text)
	}
}

func TestAnthropicProvider_SamplingParams(t *testing.T) {
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": "{}"}},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 1, "output_tokens": 1},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:    UserPrompt("go"),
		MaxTokens:   64,
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.95,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body["top_k"] != float64(40) {
		t.Fatalf("expected top_k 40, got %v", body["top_k"])
	}
	if body["top_p"] != 0.95 {
		t.Fatalf("expected top_p 0.95, got %v", body["top_p"])
	}
	if _, ok := body["system"]; ok {
		t.Fatal("expected no system prompt for a single-turn request")
	}
}

func TestAnthropicProvider_TruncatedResponse(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": `{"title":`}},
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "max_tokens",
			"usage":       map[string]any{"input_tokens": 1, "output_tokens": 4},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{Messages: UserPrompt("go"), MaxTokens: 4})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "rate_limit_error",
				"message": "Rate limit exceeded",
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    "api_error",
				"message": "Internal server error",
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_ModelID(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Fatalf("expected 'claude-sonnet-4-20250514', got %q", p.ModelID())
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, anthropicModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func newCountingAnthropicServer(t *testing.T, status int, errType string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": errType, "message": "nope"},
		})
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestAnthropicProvider_ClientErrorsAreRejected(t *testing.T) {
	tests := []struct {
		status  int
		errType string
	}{
		{http.StatusBadRequest, "invalid_request_error"},
		{http.StatusUnauthorized, "authentication_error"},
		{http.StatusForbidden, "permission_error"},
		{http.StatusNotFound, "not_found_error"},
	}
	for _, tt := range tests {
		t.Run(tt.errType, func(t *testing.T) {
			server, hits := newCountingAnthropicServer(t, tt.status, tt.errType)
			p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "bad-key", Model: "claude-haiku", BaseURL: server.URL})
			if err != nil {
				t.Fatalf("NewAnthropicProvider: %v", err)
			}

			_, err = p.Generate(context.Background(), Request{Messages: UserPrompt("test"), MaxTokens: 10})
			var rejected *ErrRequestRejected
			if !errors.As(err, &rejected) {
				t.Fatalf("expected ErrRequestRejected, got: %T (%v)", err, err)
			}
			if rejected.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", rejected.StatusCode, tt.status)
			}
			if IsTransient(err) {
				t.Fatal("client error must not be transient")
			}
			if n := hits.Load(); n != 1 {
				t.Fatalf("expected 1 request, got %d", n)
			}
		})
	}
}

func TestAnthropicProvider_SDKRetriesDisabled(t *testing.T) {
	server, hits := newCountingAnthropicServer(t, http.StatusInternalServerError, "api_error")
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-haiku", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	_, err = p.Generate(context.Background(), Request{Messages: UserPrompt("test"), MaxTokens: 10})
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got: %T (%v)", err, err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("SDK retried on its own: %d requests", n)
	}
}

func TestAnthropicProvider_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	p, err := NewAnthropicProvider(AnthropicConfig{
		APIKey:  "k",
		Model:   "claude-haiku",
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	cfg := retryConfig()
	cfg.MaxAttempts = 2

	start := time.Now()
	_, err = NewRetryProvider(p, cfg).Generate(context.Background(), Request{Messages: UserPrompt("test"), MaxTokens: 10})
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout not applied, call took %s", elapsed)
	}
	var exhausted *ErrRetriesExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected the timeout to be retried until exhausted, got: %T (%v)", err, err)
	}
}
