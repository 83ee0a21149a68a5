package llm

import "context"

type contextKey string

const (
	purposeKey    contextKey = "llm_purpose"
	invocationKey contextKey = "llm_invocation"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithInvocation tags the context with the ID of the pipeline invocation
// that issued the request, so every attempt can be traced back to it.
func WithInvocation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationKey, id)
}

// InvocationFrom returns the invocation ID, or "" when none was attached.
func InvocationFrom(ctx context.Context) string {
	if v, ok := ctx.Value(invocationKey).(string); ok {
		return v
	}
	return ""
}
