package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/codecoach/internal/llm"
	"github.com/abhisek/codecoach/internal/store"
)

// recordTimeout bounds the write of a task event after an invocation ends.
const recordTimeout = 5 * time.Second

// TaskRecorder persists the outcome of each invocation.
type TaskRecorder interface {
	AppendTaskEvent(ctx context.Context, data store.TaskEventData) error
}

// RetryEvent describes a failed model call that is about to be retried.
type RetryEvent struct {
	InvocationID string
	Kind         Kind
	Attempt      int // 1-based number of the call that failed
	Wait         time.Duration
	Err          error
}

// Option customizes a Pipeline.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	metrics  *Metrics
	recorder TaskRecorder
	onRetry  func(context.Context, RetryEvent)
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics reports invocations to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithRecorder persists a task event per invocation.
func WithRecorder(r TaskRecorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithRetryObserver calls fn before each backoff wait.
func WithRetryObserver(fn func(context.Context, RetryEvent)) Option {
	return func(o *options) { o.onRetry = fn }
}

// Pipeline turns Tasks into validated Results through a model provider.
// It is safe for concurrent use.
type Pipeline struct {
	provider llm.Provider
	retry    *llm.RetryProvider
	config   Config
	cache    *resultCache
	opts     options
}

// New creates a Pipeline on top of provider. provider must not retry on
// its own; the pipeline owns the attempt budget.
func New(provider llm.Provider, cfg Config, opts ...Option) (*Pipeline, error) {
	return newPipeline(provider, cfg, applyOptions(opts))
}

// Open builds the provider described by llmCfg, recording its requests and
// every task outcome in events when non-nil, and returns a Pipeline on it.
func Open(ctx context.Context, llmCfg llm.Config, cfg Config, events store.EventRepo, opts ...Option) (*Pipeline, error) {
	o := applyOptions(opts)
	if events != nil && o.recorder == nil {
		o.recorder = events
	}

	llmCfg = llmCfg.WithCredentials(cfg.APIKey, cfg.ModelName)
	if err := llmCfg.Validate(); err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, llmCfg, events, o.logger)
	if err != nil {
		return nil, err
	}
	return newPipeline(provider, cfg, o)
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

func newPipeline(provider llm.Provider, cfg Config, o options) (*Pipeline, error) {
	if provider == nil {
		return nil, errors.New("pipeline: provider is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cache, err := newResultCache(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline: result cache: %w", err)
	}

	p := &Pipeline{
		provider: provider,
		config:   cfg,
		cache:    cache,
		opts:     o,
	}
	rc := cfg.retryConfig()
	rc.OnRetry = p.onRetry
	p.retry = llm.NewRetryProvider(provider, rc)
	return p, nil
}

// Model returns the model identifier of the underlying provider.
func (p *Pipeline) Model() string {
	return p.provider.ModelID()
}

// Execute runs task end to end. It returns a Result only when the model's
// answer parsed and passed the schema gate of the task's kind; any other
// outcome is one of the typed errors in this package.
func (p *Pipeline) Execute(ctx context.Context, task Task) (*Result, error) {
	start := time.Now()
	res := &Result{
		Kind:         task.Kind,
		InvocationID: uuid.NewString(),
		Model:        p.provider.ModelID(),
	}

	err := p.execute(ctx, task, res)
	p.finish(ctx, task, res, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) execute(ctx context.Context, task Task, res *Result) error {
	prompt, err := BuildPrompt(task)
	if err != nil {
		return err
	}
	c := contracts[task.Kind]

	var key string
	if c.cacheable && p.cache != nil {
		key = cacheKey(task.Kind, res.Model, prompt)
		if data, ok := p.cache.get(key); ok {
			if err := c.decode(data, task, res); err == nil {
				res.Cached = true
				p.opts.metrics.IncCacheHit(task.Kind)
				return nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return &ErrCancelled{Err: err}
	}

	callCtx := llm.WithInvocation(llm.WithPurpose(ctx, string(task.Kind)), res.InvocationID)
	resp, state, err := p.retry.GenerateWithState(callCtx, c.request(prompt, p.config.JSONMode))
	res.Attempts = state.Attempts
	if err != nil {
		return fromProvider(ctx, task.Kind, err)
	}

	data, err := validate(c, resp.Text, p.config.RepairJSON)
	if err != nil {
		return err
	}
	if err := c.decode(data, task, res); err != nil {
		return &ErrSchemaViolation{Kind: task.Kind, Text: string(data), Err: err}
	}
	if key != "" {
		p.cache.add(key, data)
	}
	return nil
}

// validate runs the sanitize, parse, normalize and schema steps on raw
// model text and returns the canonical JSON of the accepted object.
func validate(c *contract, raw string, repair bool) ([]byte, error) {
	text := Sanitize(raw)

	obj, err := parseObject(text, repair)
	if err != nil {
		return nil, &ErrMalformedResponse{Kind: c.kind, Text: text, Err: err}
	}

	c.normalize(obj)
	if err := c.schema.Validate(obj); err != nil {
		return nil, &ErrSchemaViolation{Kind: c.kind, Text: text, Err: err}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, &ErrMalformedResponse{Kind: c.kind, Text: text, Err: err}
	}
	return data, nil
}

func (p *Pipeline) onRetry(ctx context.Context, attempt int, wait time.Duration, err error) {
	ev := RetryEvent{
		InvocationID: llm.InvocationFrom(ctx),
		Kind:         Kind(llm.PurposeFrom(ctx)),
		Attempt:      attempt + 1,
		Wait:         wait,
		Err:          err,
	}

	p.opts.logger.Warn("model call failed, retrying",
		"invocation_id", ev.InvocationID,
		"kind", ev.Kind,
		"attempt", ev.Attempt,
		"wait", ev.Wait,
		"error", err)
	p.opts.metrics.IncRetry(ev.Kind)

	if p.opts.onRetry != nil {
		p.opts.onRetry(ctx, ev)
	}
}

// finish reports one invocation to the log, metrics and recorder.
func (p *Pipeline) finish(ctx context.Context, task Task, res *Result, err error, elapsed time.Duration) {
	class := Classify(err)
	p.opts.metrics.ObserveTask(task.Kind, class, elapsed)
	p.opts.metrics.AddAttempts(task.Kind, res.Attempts)

	outcome := OutcomeOK
	if err != nil {
		outcome = string(class)
		attrs := []any{
			"invocation_id", res.InvocationID,
			"kind", task.Kind,
			"class", class,
			"attempts", res.Attempts,
			"elapsed", elapsed,
			"error", err,
		}
		if text := responseText(err); text != "" {
			attrs = append(attrs, "response", snippet(text, 200))
		}
		p.opts.logger.Error("pipeline task failed", attrs...)
	} else {
		p.opts.logger.Debug("pipeline task succeeded",
			"invocation_id", res.InvocationID,
			"kind", task.Kind,
			"attempts", res.Attempts,
			"cached", res.Cached,
			"elapsed", elapsed,
			"result", res.headline())
	}

	if p.opts.recorder == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	data := store.TaskEventData{
		InvocationID: res.InvocationID,
		Kind:         string(task.Kind),
		Language:     task.Language,
		Outcome:      outcome,
		Attempts:     res.Attempts,
		LatencyMs:    elapsed.Milliseconds(),
		Model:        res.Model,
		Cached:       res.Cached,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}
	if rerr := p.opts.recorder.AppendTaskEvent(rctx, data); rerr != nil {
		p.opts.logger.Warn("failed to record task event",
			"invocation_id", res.InvocationID,
			"error", rerr)
	}
}

// responseText returns the sanitized model text carried by err, if any.
func responseText(err error) string {
	var malformed *ErrMalformedResponse
	if errors.As(err, &malformed) {
		return malformed.Text
	}
	var schema *ErrSchemaViolation
	if errors.As(err, &schema) {
		return schema.Text
	}
	return ""
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// GenerateQuestion asks the model for a new question.
func (p *Pipeline) GenerateQuestion(ctx context.Context, language, topic, difficulty string) (*Result, error) {
	return p.Execute(ctx, Task{
		Kind:       KindGenerateQuestion,
		Language:   language,
		Topic:      topic,
		Difficulty: difficulty,
	})
}

// EvaluateCode asks the model to judge code against testCases.
func (p *Pipeline) EvaluateCode(ctx context.Context, language, code string, testCases []TestCase) (*Result, error) {
	return p.Execute(ctx, Task{
		Kind:      KindEvaluateCode,
		Language:  language,
		Code:      code,
		TestCases: testCases,
	})
}

// AnalyzeComplexity asks the model for the time and space complexity of code.
func (p *Pipeline) AnalyzeComplexity(ctx context.Context, language, code string) (*Result, error) {
	return p.Execute(ctx, Task{
		Kind:     KindAnalyzeComplexity,
		Language: language,
		Code:     code,
	})
}

// ReviewCode asks the model to review code without test cases.
func (p *Pipeline) ReviewCode(ctx context.Context, language, code string) (*Result, error) {
	return p.Execute(ctx, Task{
		Kind:     KindReviewCode,
		Language: language,
		Code:     code,
	})
}
