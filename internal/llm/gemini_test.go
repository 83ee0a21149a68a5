package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiConfig(t *testing.T) {
	config := buildGeminiConfig(Request{
		MaxTokens:   2048,
		Temperature: 0.3,
		TopK:        40,
		TopP:        0.95,
		JSONMode:    true,
	})

	if config.MaxOutputTokens != 2048 {
		t.Fatalf("expected 2048 max output tokens, got %d", config.MaxOutputTokens)
	}
	if config.Temperature == nil || *config.Temperature != float32(0.3) {
		t.Fatalf("expected temperature 0.3, got %v", config.Temperature)
	}
	if config.TopK == nil || *config.TopK != 40 {
		t.Fatalf("expected topK 40, got %v", config.TopK)
	}
	if config.TopP == nil || *config.TopP != float32(0.95) {
		t.Fatalf("expected topP 0.95, got %v", config.TopP)
	}
	if config.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON response MIME type, got %q", config.ResponseMIMEType)
	}
	if config.SystemInstruction != nil {
		t.Fatal("expected no system instruction")
	}
}

func TestBuildGeminiConfig_ZeroValuesLeaveDefaults(t *testing.T) {
	config := buildGeminiConfig(Request{System: "be brief", MaxTokens: 1024})

	if config.Temperature != nil || config.TopK != nil || config.TopP != nil {
		t.Fatal("expected sampling params to be left unset")
	}
	if config.ResponseMIMEType != "" {
		t.Fatalf("expected no response MIME type, got %q", config.ResponseMIMEType)
	}
	if config.SystemInstruction == nil || config.SystemInstruction.Parts[0].Text != "be brief" {
		t.Fatal("expected system instruction to carry the system prompt")
	}
}

func TestBuildGeminiContents(t *testing.T) {
	contents := buildGeminiContents([]Message{
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: "a"},
	})
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Fatalf("unexpected roles: %q, %q", contents[0].Role, contents[1].Role)
	}
}

func TestMapGeminiError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		rejected  bool
		transient bool
	}{
		{"unauthorized by value", genai.APIError{Code: http.StatusUnauthorized}, true, false},
		{"not found by pointer", &genai.APIError{Code: http.StatusNotFound}, true, false},
		{"rate limit", genai.APIError{Code: http.StatusTooManyRequests}, false, true},
		{"server error", genai.APIError{Code: http.StatusServiceUnavailable}, false, true},
		{"transport", errors.New("connection refused"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapGeminiError(tt.err)
			var rejected *ErrRequestRejected
			if got := errors.As(err, &rejected); got != tt.rejected {
				t.Fatalf("rejected = %v, want %v (%v)", got, tt.rejected, err)
			}
			if got := IsTransient(err); got != tt.transient {
				t.Fatalf("IsTransient = %v, want %v (%v)", got, tt.transient, err)
			}
		})
	}
}

func TestGeminiProvider_RejectedKey(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "bad", Model: "gemini-flash", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}

	_, err = NewRetryProvider(p, RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, Multiplier: 2}).
		Generate(context.Background(), Request{Messages: UserPrompt("test"), MaxTokens: 10})

	var rejected *ErrRequestRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrRequestRejected, got: %T (%v)", err, err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected 1 request, got %d", n)
	}
}

func TestGeminiHTTPOptions(t *testing.T) {
	opts := geminiHTTPOptions(GeminiConfig{BaseURL: "http://proxy", Timeout: 3 * time.Second})
	if opts.BaseURL != "http://proxy" {
		t.Fatalf("BaseURL = %q", opts.BaseURL)
	}
	if opts.Timeout == nil || *opts.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v, want 3s", opts.Timeout)
	}

	if opts := geminiHTTPOptions(GeminiConfig{}); opts.Timeout != nil {
		t.Fatalf("zero timeout should leave the SDK default, got %v", *opts.Timeout)
	}
}
