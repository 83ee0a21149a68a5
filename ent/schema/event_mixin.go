package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// EventMixin is shared by llm_request_events and task_events. Both tables
// draw sequence numbers from the same counter, so an invocation's model
// calls and its task outcome interleave in one order.
type EventMixin struct {
	mixin.Schema
}

func utcNow() time.Time { return time.Now().UTC() }

func (EventMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Unique().
			Immutable().
			Comment("Position in the counter shared by every event table; list queries page on it"),
		field.Time("timestamp").
			Default(utcNow).
			Immutable().
			Comment("Write time in UTC, stored as text so range filters compare lexically"),
	}
}

// Indexes covers the From/To range filters. sequence needs no entry here:
// its unique constraint already gives the newest-first listings an index.
func (EventMixin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
	}
}
