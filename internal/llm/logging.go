package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/codecoach/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	logger    *slog.Logger
}

// WithLogging wraps a Provider with event logging. A nil logger falls back
// to slog.Default.
func WithLogging(p Provider, repo store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, eventRepo: repo, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		InvocationID: InvocationFrom(ctx),
		Provider:     l.inner.ModelID(),
		Model:        l.inner.ModelID(),
		Purpose:      PurposeFrom(ctx),
		LatencyMs:    time.Since(start).Milliseconds(),
		Success:      err == nil,
		RequestBody:  serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = resp.Text
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// Persisting the event must not fail the request. The caller's context
	// may already be cancelled, so the write gets its own.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if logErr := l.eventRepo.AppendLLMRequest(logCtx, data); logErr != nil {
		l.logger.Warn("failed to record LLM request event",
			slog.String("invocation_id", data.InvocationID),
			slog.String("error", logErr.Error()))
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "[params] temperature=%.2f top_k=%d top_p=%.2f max_tokens=%d json_mode=%t\n",
		req.Temperature, req.TopK, req.TopP, req.MaxTokens, req.JSONMode)

	return b.String()
}
