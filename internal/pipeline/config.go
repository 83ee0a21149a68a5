package pipeline

import (
	"fmt"
	"time"

	"github.com/abhisek/codecoach/internal/llm"
)

// Config tunes a Pipeline. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	// APIKey and ModelName override the selected provider's credentials
	// when non-empty. Only Open uses them.
	APIKey    string `mapstructure:"api_key"`
	ModelName string `mapstructure:"model_name"`

	// MaxRetries is the total number of model calls per invocation.
	MaxRetries int `mapstructure:"max_retries"`

	// BackoffBase is the wait after the first failed call. It doubles
	// after each further failure.
	BackoffBase time.Duration `mapstructure:"backoff_base"`

	// MaxBackoff caps one wait. Zero means no cap.
	MaxBackoff time.Duration `mapstructure:"max_backoff"`

	// Jitter is the +/- fraction applied to each wait.
	Jitter float64 `mapstructure:"jitter"`

	// AttemptTimeout bounds a single model call. Zero means no bound.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`

	// RepairJSON enables a repair pass on text that fails to parse.
	RepairJSON bool `mapstructure:"repair_json"`

	// JSONMode asks providers for their native JSON response mode.
	JSONMode bool `mapstructure:"json_mode"`

	// CacheSize enables the result cache for evaluation and complexity
	// tasks when positive.
	CacheSize int `mapstructure:"cache_size"`
}

// DefaultConfig makes three calls, waiting 1s then 2s between them.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		BackoffBase: time.Second,
	}
}

// Validate rejects settings that cannot work.
func (c Config) Validate() error {
	if c.MaxRetries < 1 {
		return fmt.Errorf("pipeline: max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.BackoffBase < 0 || c.MaxBackoff < 0 || c.AttemptTimeout < 0 {
		return fmt.Errorf("pipeline: durations must not be negative")
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		return fmt.Errorf("pipeline: jitter must be within [0, 1], got %g", c.Jitter)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("pipeline: cache_size must not be negative, got %d", c.CacheSize)
	}
	return nil
}

func (c Config) retryConfig() llm.RetryConfig {
	return llm.RetryConfig{
		MaxAttempts:    c.MaxRetries,
		InitialWait:    c.BackoffBase,
		MaxWait:        c.MaxBackoff,
		Multiplier:     2.0,
		Jitter:         c.Jitter,
		AttemptTimeout: c.AttemptTimeout,
	}
}
