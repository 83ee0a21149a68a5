package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TaskEvent records the final outcome of one pipeline invocation.
type TaskEvent struct {
	ent.Schema
}

func (TaskEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (TaskEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("invocation_id"),
		field.String("kind"),
		field.String("language").
			Default(""),
		field.String("outcome").
			Comment(`"ok" or the failure class`),
		field.Int("attempts").
			Default(0).
			Comment("Model calls made; 0 for a cache hit"),
		field.Int64("latency_ms").
			Default(0),
		field.String("model").
			Default(""),
		field.Bool("cached").
			Default(false),
		field.String("error_message").
			Default(""),
	}
}

func (TaskEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("kind"),
		index.Fields("outcome"),
	}
}
