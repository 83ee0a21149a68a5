package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// builder renders SQL for the SQLite dialect.
var builder = entsql.Dialect(dialect.SQLite)

// eventRepo implements EventRepo on top of the ent SQL builder and the
// global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var llmEventColumns = []string{
	"sequence", "timestamp", "invocation_id", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
	"request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder.Insert(LLMRequestEventsTable.Name).
		Columns(llmEventColumns...).
		Values(
			seqNum, time.Now().UTC(), data.InvocationID, data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
			data.RequestBody, data.ResponseBody,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	sel := builder.Select(llmEventColumns...).
		From(builder.Table(LLMRequestEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var records []LLMRequestEventRecord
	for rows.Next() {
		rec, err := scanLLMEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, sequence int64) (*LLMRequestEventRecord, error) {
	query, args := builder.Select(llmEventColumns...).
		From(builder.Table(LLMRequestEventsTable.Name)).
		Where(entsql.EQ("sequence", sequence)).
		Query()

	rec, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("LLM event %d: %w", sequence, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return rec, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "model")
}

func (r *eventRepo) llmUsage(ctx context.Context, groupBy string) ([]LLMUsage, error) {
	query, args := builder.Select(
		groupBy,
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As("COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0)", "failures"),
		entsql.As("COALESCE(SUM(input_tokens), 0)", "input_tokens"),
		entsql.As("COALESCE(SUM(output_tokens), 0)", "output_tokens"),
		entsql.As("COALESCE(SUM(latency_ms), 0)", "latency_ms"),
	).
		From(builder.Table(LLMRequestEventsTable.Name)).
		GroupBy(groupBy).
		OrderBy(groupBy).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage by %s: %w", groupBy, err)
	}
	defer rows.Close()

	var usage []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Key, &u.Calls, &u.Failures, &u.InputTokens, &u.OutputTokens, &u.LatencyMs); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(row rowScanner) (*LLMRequestEventRecord, error) {
	var rec LLMRequestEventRecord
	err := row.Scan(
		&rec.Sequence, &rec.Timestamp, &rec.InvocationID, &rec.Provider, &rec.Model, &rec.Purpose,
		&rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs, &rec.Success, &rec.ErrorMessage,
		&rec.RequestBody, &rec.ResponseBody,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// applyQueryOpts adds the shared pagination and time filters to sel.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts) {
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
}
