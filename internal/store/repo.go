package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	InvocationID string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	LLMRequestEventData
	Sequence  int64
	Timestamp time.Time
}

// LLMUsage aggregates LLM request events by a grouping key
// (purpose or model).
type LLMUsage struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
}

// TaskEventData captures the outcome of one pipeline invocation.
type TaskEventData struct {
	InvocationID string
	Kind         string
	Language     string
	Outcome      string // "ok" or the failure class
	Attempts     int
	LatencyMs    int64
	Model        string
	Cached       bool
	ErrorMessage string
}

// TaskEventRecord is a stored task event.
type TaskEventRecord struct {
	TaskEventData
	Sequence  int64
	Timestamp time.Time
}

// TaskQueryOpts narrows a task event query.
type TaskQueryOpts struct {
	QueryOpts
	Kind    string // empty = any
	Outcome string // empty = any
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM request events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns the LLM request event with the given sequence
	// number, or ErrNotFound.
	GetLLMEvent(ctx context.Context, sequence int64) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates LLM request events per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates LLM request events per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendTaskEvent records the outcome of a pipeline invocation.
	AppendTaskEvent(ctx context.Context, data TaskEventData) error

	// QueryTaskEvents returns task events, newest first.
	QueryTaskEvents(ctx context.Context, opts TaskQueryOpts) ([]TaskEventRecord, error)
}
