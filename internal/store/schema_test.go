package store

import (
	"testing"

	"entgo.io/ent"
	"entgo.io/ent/dialect/sql/schema"

	entschema "github.com/abhisek/codecoach/ent/schema"
)

type entSchema interface {
	Mixin() []ent.Mixin
	Fields() []ent.Field
}

// entColumns flattens mixin and entity fields into name -> type.
func entColumns(s entSchema) map[string]string {
	cols := make(map[string]string)
	var fields []ent.Field
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
	}
	fields = append(fields, s.Fields()...)
	for _, f := range fields {
		d := f.Descriptor()
		cols[d.Name] = d.Info.Type.String()
	}
	return cols
}

func TestMigrationTablesMatchEntSchema(t *testing.T) {
	tests := []struct {
		table  *schema.Table
		entity entSchema
	}{
		{LLMRequestEventsTable, entschema.LLMRequestEvent{}},
		{TaskEventsTable, entschema.TaskEvent{}},
	}

	for _, tt := range tests {
		t.Run(tt.table.Name, func(t *testing.T) {
			want := entColumns(tt.entity)
			got := make(map[string]string)
			for _, c := range tt.table.Columns {
				if c.Name == "id" {
					continue
				}
				got[c.Name] = c.Type.String()
			}

			for name, typ := range want {
				gotTyp, ok := got[name]
				if !ok {
					t.Errorf("column %q missing from table", name)
					continue
				}
				if gotTyp != typ {
					t.Errorf("column %q type = %s, want %s", name, gotTyp, typ)
				}
			}
			for name := range got {
				if _, ok := want[name]; !ok {
					t.Errorf("column %q not declared in ent schema", name)
				}
			}
		})
	}
}

func TestEventIndexesMatchEntSchema(t *testing.T) {
	var mixin entschema.EventMixin

	for _, f := range mixin.Fields() {
		if d := f.Descriptor(); d.Name == "sequence" && !d.Unique {
			t.Fatal("sequence must be unique so listings can page on it")
		}
	}

	var indexed []string
	for _, idx := range mixin.Indexes() {
		indexed = append(indexed, idx.Descriptor().Fields...)
	}
	if len(indexed) != 1 || indexed[0] != "timestamp" {
		t.Fatalf("mixin indexes = %v, want [timestamp]", indexed)
	}

	for _, table := range []*schema.Table{LLMRequestEventsTable, TaskEventsTable} {
		var hasTimestamp bool
		for _, idx := range table.Indexes {
			for _, c := range idx.Columns {
				switch c.Name {
				case "timestamp":
					hasTimestamp = true
				case "sequence":
					t.Errorf("%s: index %s duplicates the unique constraint on sequence", table.Name, idx.Name)
				}
			}
		}
		if !hasTimestamp {
			t.Errorf("%s: no timestamp index", table.Name)
		}
		for _, c := range table.Columns {
			if c.Name == "sequence" && !c.Unique {
				t.Errorf("%s: sequence column is not unique", table.Name)
			}
		}
	}
}
