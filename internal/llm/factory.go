package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/codecoach/internal/store"
)

// NewProvider creates a Provider from configuration.
// The result is wrapped with event logging when eventRepo is non-nil.
// Retrying is left to the caller (see RetryProvider), which owns the
// per-invocation attempt budget.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	cfg = cfg.WithTimeout()

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if eventRepo == nil {
		return base, nil
	}
	return WithLogging(base, eventRepo, logger), nil
}
