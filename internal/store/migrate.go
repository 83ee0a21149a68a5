package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// LLMRequestEventsColumns holds the columns for the "llm_request_events" table.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "invocation_id", Type: field.TypeString, Default: ""},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LLMRequestEventsTable holds the schema information for the "llm_request_events" table.
	LLMRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LLMRequestEventsColumns[2]}},
			{Name: "llmrequestevent_invocation_id", Columns: []*schema.Column{LLMRequestEventsColumns[3]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMRequestEventsColumns[6]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{LLMRequestEventsColumns[10]}},
		},
	}
	// TaskEventsColumns holds the columns for the "task_events" table.
	TaskEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "invocation_id", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "language", Type: field.TypeString, Default: ""},
		{Name: "outcome", Type: field.TypeString},
		{Name: "attempts", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "cached", Type: field.TypeBool, Default: false},
		{Name: "error_message", Type: field.TypeString, Default: ""},
	}
	// TaskEventsTable holds the schema information for the "task_events" table.
	TaskEventsTable = &schema.Table{
		Name:       "task_events",
		Columns:    TaskEventsColumns,
		PrimaryKey: []*schema.Column{TaskEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "taskevent_timestamp", Columns: []*schema.Column{TaskEventsColumns[2]}},
			{Name: "taskevent_kind", Columns: []*schema.Column{TaskEventsColumns[4]}},
			{Name: "taskevent_outcome", Columns: []*schema.Column{TaskEventsColumns[6]}},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LLMRequestEventsTable,
		TaskEventsTable,
	}
)

// migrate creates or updates the event tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, Tables...)
}
