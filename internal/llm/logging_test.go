package llm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/codecoach/internal/store"
)

// recordingRepo captures LLM request events in memory.
type recordingRepo struct {
	store.EventRepo

	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, data)
	return nil
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Text:  `{"title":"Two Sum"}`,
		Usage: Usage{InputTokens: 12, OutputTokens: 7},
	})
	p := WithLogging(mock, repo, nil)

	ctx := WithInvocation(WithPurpose(context.Background(), "generate_question"), "inv-42")
	resp, err := p.Generate(ctx, Request{
		Messages:    UserPrompt("make a question"),
		MaxTokens:   1024,
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.95,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `{"title":"Two Sum"}` {
		t.Fatalf("response must pass through unchanged, got %q", resp.Text)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.InvocationID != "inv-42" || ev.Purpose != "generate_question" {
		t.Fatalf("unexpected identifiers: %+v", ev)
	}
	if !ev.Success || ev.ErrorMessage != "" {
		t.Fatalf("expected success event, got %+v", ev)
	}
	if ev.InputTokens != 12 || ev.OutputTokens != 7 || ev.Model != "mock" {
		t.Fatalf("unexpected usage: %+v", ev)
	}
	if ev.ResponseBody != `{"title":"Two Sum"}` {
		t.Fatalf("unexpected response body %q", ev.ResponseBody)
	}
	if !strings.Contains(ev.RequestBody, "[user]\nmake a question") {
		t.Fatalf("request body missing prompt: %q", ev.RequestBody)
	}
	if !strings.Contains(ev.RequestBody, "temperature=0.70 top_k=40 top_p=0.95 max_tokens=1024") {
		t.Fatalf("request body missing params: %q", ev.RequestBody)
	}
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}})
	p := WithLogging(mock, repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Success || !strings.Contains(ev.ErrorMessage, "503") || ev.Purpose != "unknown" {
		t.Fatalf("unexpected failure event: %+v", ev)
	}
}

func TestLoggingProvider_StoreFailureDoesNotFailRequest(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Text: `{}`})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	p := WithLogging(mock, repo, logger)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "failed to record LLM request event") ||
		!strings.Contains(buf.String(), "disk full") {
		t.Fatalf("expected a warning, got %q", buf.String())
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*MockProvider); !ok {
		t.Fatalf("expected *MockProvider, got %T", p)
	}

	if _, err := NewProvider(context.Background(), Config{Provider: "nope"}, nil, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProvider_WrapsWithLogging(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{
		Provider: "openai",
		OpenAI:   OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
	}, &recordingRepo{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*LoggingProvider); !ok {
		t.Fatalf("expected *LoggingProvider, got %T", p)
	}
	if p.ModelID() != "gpt-4o-mini" {
		t.Fatalf("expected model 'gpt-4o-mini', got %q", p.ModelID())
	}
}
