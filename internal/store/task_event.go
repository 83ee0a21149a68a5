package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var taskEventColumns = []string{
	"sequence", "timestamp", "invocation_id", "kind", "language", "outcome",
	"attempts", "latency_ms", "model", "cached", "error_message",
}

func (r *eventRepo) AppendTaskEvent(ctx context.Context, data TaskEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder.Insert(TaskEventsTable.Name).
		Columns(taskEventColumns...).
		Values(
			seqNum, time.Now().UTC(), data.InvocationID, data.Kind, data.Language, data.Outcome,
			data.Attempts, data.LatencyMs, data.Model, data.Cached, data.ErrorMessage,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save task event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryTaskEvents(ctx context.Context, opts TaskQueryOpts) ([]TaskEventRecord, error) {
	sel := builder.Select(taskEventColumns...).
		From(builder.Table(TaskEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	applyQueryOpts(sel, opts.QueryOpts)
	if opts.Kind != "" {
		sel.Where(entsql.EQ("kind", opts.Kind))
	}
	if opts.Outcome != "" {
		sel.Where(entsql.EQ("outcome", opts.Outcome))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task events: %w", err)
	}
	defer rows.Close()

	var records []TaskEventRecord
	for rows.Next() {
		var rec TaskEventRecord
		err := rows.Scan(
			&rec.Sequence, &rec.Timestamp, &rec.InvocationID, &rec.Kind, &rec.Language, &rec.Outcome,
			&rec.Attempts, &rec.LatencyMs, &rec.Model, &rec.Cached, &rec.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan task event: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
