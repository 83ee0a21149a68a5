package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of calls, including the first one.
	MaxAttempts int

	// InitialWait is the wait after the first failed attempt. Attempt i
	// (0-indexed) is followed by InitialWait * Multiplier^i.
	InitialWait time.Duration

	// MaxWait caps a single wait. Zero means uncapped.
	MaxWait time.Duration

	Multiplier float64

	// Jitter is the +/- fraction applied to each wait (0.2 = ±20%).
	Jitter float64

	// AttemptTimeout bounds a single call. A call that hits it while the
	// caller's context is still live counts as a transient failure.
	AttemptTimeout time.Duration

	// OnRetry, when set, is called after a failed attempt and before the
	// wait that precedes the next one.
	OnRetry func(ctx context.Context, attempt int, wait time.Duration, err error)
}

// DefaultRetryConfig waits 1s, 2s, 4s... between three attempts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryState is the per-invocation bookkeeping of a retried call.
type RetryState struct {
	Attempts int
	LastErr  error
}

// RetryProvider is a decorator that retries transient errors with
// exponential backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return NewRetryProvider(p, cfg)
}

// NewRetryProvider is WithRetry returning the concrete type, for callers
// that want the RetryState of each call.
func NewRetryProvider(p Provider, cfg RetryConfig) *RetryProvider {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, _, err := r.GenerateWithState(ctx, req)
	return resp, err
}

// GenerateWithState runs the retry loop and reports how many attempts it
// made. Non-transient errors are returned as-is after a single attempt;
// running out of attempts yields *ErrRetriesExhausted.
func (r *RetryProvider) GenerateWithState(ctx context.Context, req Request) (*Response, RetryState, error) {
	var state RetryState

	for attempt := range r.config.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, state, err
		}

		state.Attempts++
		resp, err := r.attempt(ctx, req)
		if err == nil {
			state.LastErr = nil
			return resp, state, nil
		}
		state.LastErr = err

		if ctx.Err() != nil {
			return nil, state, ctx.Err()
		}
		if !IsTransient(err) {
			return nil, state, err
		}

		// Last attempt, no sleep.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		if r.config.OnRetry != nil {
			r.config.OnRetry(ctx, attempt, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, state, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, state, &ErrRetriesExhausted{Attempts: state.Attempts, Err: state.LastErr}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// attempt makes one call, applying the per-attempt timeout. A timeout
// that fires while ctx is still live (ours or the SDK's own) comes back as
// *ErrProviderUnavailable so it is retried rather than read as the
// caller's cancellation.
func (r *RetryProvider) attempt(ctx context.Context, req Request) (*Response, error) {
	actx := ctx
	if r.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, r.config.AttemptTimeout)
		defer cancel()
	}

	resp, err := r.inner.Generate(actx, req)
	if err == nil || ctx.Err() != nil || !isTimeout(err) {
		return resp, err
	}
	if actx.Err() != nil {
		return nil, &ErrProviderUnavailable{
			Err: fmt.Errorf("attempt timed out after %s", r.config.AttemptTimeout),
		}
	}
	return nil, &ErrProviderUnavailable{
		Err: fmt.Errorf("provider call timed out: %s", err.Error()),
	}
}

// Backoff returns the wait that follows failed attempt i without jitter.
func (c RetryConfig) Backoff(attempt int) time.Duration {
	wait := float64(c.InitialWait) * math.Pow(c.Multiplier, float64(attempt))
	if c.MaxWait > 0 && wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}
	return time.Duration(wait)
}

// backoff computes the wait duration for the given attempt.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	// Respect RetryAfter for rate limits.
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.Backoff(attempt))
	if r.config.Jitter > 0 {
		wait += wait * r.config.Jitter * (2*rand.Float64() - 1)
	}

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
