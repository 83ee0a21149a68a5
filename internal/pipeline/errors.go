package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/codecoach/internal/llm"
)

// Class is the coarse failure category callers branch on.
type Class string

// OutcomeOK labels successful invocations in metrics and task events.
const OutcomeOK = "ok"

const (
	ClassNone              Class = ""
	ClassTransientFailure  Class = "transient_failure"
	ClassMalformedResponse Class = "malformed_response"
	ClassSchemaViolation   Class = "schema_violation"
	ClassExhaustedRetries  Class = "exhausted_retries"
	ClassCancelled         Class = "cancelled"
	ClassInvalidTask       Class = "invalid_task"
	ClassRequestRejected   Class = "request_rejected"
)

// ErrTransientFailure is a provider failure worth retrying: transport
// errors, rate limits, 5xx, per-attempt timeouts.
type ErrTransientFailure struct {
	Err error
}

func (e *ErrTransientFailure) Error() string {
	return fmt.Sprintf("transient model failure: %v", e.Err)
}

func (e *ErrTransientFailure) Unwrap() error { return e.Err }

// ErrMalformedResponse means the model answered but the text is not a JSON
// object. Text holds the sanitized output.
type ErrMalformedResponse struct {
	Kind Kind
	Text string
	Err  error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("%s: malformed model response: %v", e.Kind, e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }

// ErrSchemaViolation means the response parsed but misses or mistypes a
// required field.
type ErrSchemaViolation struct {
	Kind Kind
	Text string
	Err  error
}

func (e *ErrSchemaViolation) Error() string {
	return fmt.Sprintf("%s: response violates schema: %v", e.Kind, e.Err)
}

func (e *ErrSchemaViolation) Unwrap() error { return e.Err }

// ErrExhaustedRetries is returned after every attempt failed transiently.
// It wraps the last *ErrTransientFailure.
type ErrExhaustedRetries struct {
	Attempts int
	Last     *ErrTransientFailure
}

func (e *ErrExhaustedRetries) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ErrExhaustedRetries) Unwrap() error {
	if e.Last == nil {
		return nil
	}
	return e.Last
}

// ErrRequestRejected means the model service refused the request as such
// (bad credentials, unknown model, invalid parameters). It is never retried
// and points at configuration rather than at the model's output.
type ErrRequestRejected struct {
	StatusCode int
	Err        error
}

func (e *ErrRequestRejected) Error() string {
	return fmt.Sprintf("model service rejected the request: %v", e.Err)
}

func (e *ErrRequestRejected) Unwrap() error { return e.Err }

// ErrCancelled means the caller's context ended during a call or a wait.
type ErrCancelled struct {
	Err error
}

func (e *ErrCancelled) Error() string {
	return fmt.Sprintf("cancelled: %v", e.Err)
}

func (e *ErrCancelled) Unwrap() error { return e.Err }

// ErrInvalidTask rejects a task before any model call.
type ErrInvalidTask struct {
	Kind   Kind
	Reason string
}

func (e *ErrInvalidTask) Error() string {
	if e.Kind == "" {
		return "invalid task: " + e.Reason
	}
	return fmt.Sprintf("invalid %s task: %s", e.Kind, e.Reason)
}

// Classify maps an error returned by the pipeline to its Class.
// Errors from elsewhere fall back to transient_failure; a bare
// context.DeadlineExceeded is not assumed to be the caller's.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}

	var (
		invalid   *ErrInvalidTask
		cancelled *ErrCancelled
		exhausted *ErrExhaustedRetries
		schema    *ErrSchemaViolation
		malformed *ErrMalformedResponse
		transient *ErrTransientFailure
		rejected  *ErrRequestRejected
	)
	switch {
	case errors.As(err, &invalid):
		return ClassInvalidTask
	case errors.As(err, &cancelled):
		return ClassCancelled
	case errors.As(err, &exhausted):
		return ClassExhaustedRetries
	case errors.As(err, &schema):
		return ClassSchemaViolation
	case errors.As(err, &malformed):
		return ClassMalformedResponse
	case errors.As(err, &rejected):
		return ClassRequestRejected
	case errors.As(err, &transient):
		return ClassTransientFailure
	case errors.Is(err, context.Canceled):
		return ClassCancelled
	}
	return ClassTransientFailure
}

// Notice is the short, task-scoped message shown to end users. Details stay
// in the logs.
func Notice(kind Kind, err error) string {
	action := "complete the request"
	switch kind {
	case KindGenerateQuestion:
		action = "generate question"
	case KindEvaluateCode:
		action = "evaluate code"
	case KindAnalyzeComplexity:
		action = "analyze complexity"
	case KindReviewCode:
		action = "review code"
	}

	switch Classify(err) {
	case ClassInvalidTask:
		var invalid *ErrInvalidTask
		if errors.As(err, &invalid) {
			return fmt.Sprintf("could not %s: %s", action, invalid.Reason)
		}
		return fmt.Sprintf("could not %s: invalid request", action)
	case ClassCancelled:
		return fmt.Sprintf("could not %s: the request was cancelled", action)
	case ClassExhaustedRetries, ClassTransientFailure:
		return fmt.Sprintf("could not %s: the model service is unavailable, try again later", action)
	case ClassMalformedResponse:
		return fmt.Sprintf("could not %s: the model returned an unreadable response", action)
	case ClassSchemaViolation:
		return fmt.Sprintf("could not %s: the model returned an incomplete response", action)
	case ClassRequestRejected:
		return fmt.Sprintf("could not %s: the model service rejected the request, check the provider configuration", action)
	}
	return ""
}

// fromProvider converts an error from the retrying provider into the
// pipeline taxonomy. ctx is the invocation context.
func fromProvider(ctx context.Context, kind Kind, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ErrCancelled{Err: ctxErr}
	}

	var exhausted *llm.ErrRetriesExhausted
	if errors.As(err, &exhausted) {
		return &ErrExhaustedRetries{
			Attempts: exhausted.Attempts,
			Last:     &ErrTransientFailure{Err: exhausted.Err},
		}
	}

	// Answers that arrived but are unusable are an output-shape problem.
	var maxTok *llm.ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return &ErrMalformedResponse{Kind: kind, Text: maxTok.Text, Err: err}
	}
	var invResp *llm.ErrInvalidResponse
	if errors.As(err, &invResp) {
		return &ErrMalformedResponse{Kind: kind, Text: invResp.Text, Err: err}
	}

	var rejected *llm.ErrRequestRejected
	if errors.As(err, &rejected) {
		return &ErrRequestRejected{StatusCode: rejected.StatusCode, Err: err}
	}

	return &ErrTransientFailure{Err: err}
}
