package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ModelCallEvent records one call to a text-generation model.
type ModelCallEvent struct {
	ID           int
	Timestamp    time.Time
	Model        string
	LatencyMs    int64
	InputTokens  int
	OutputTokens int
	Success      bool
	ErrorMessage string
	Prompt       string
	Response     string
}

// GenerationEvent records the outcome of one external generation request
// after the retry loop has finished. LastOutput holds the final raw model
// output for offline diagnosis when the request failed.
type GenerationEvent struct {
	ID            int
	Timestamp     time.Time
	Category      string
	Level         string
	Age           int
	FirstLanguage string
	Attempts      int
	Success       bool
	ModelUsed     string
	LastOutput    string
}

// EventRepo appends and queries pipeline events. Appends are best-effort:
// callers log and continue on error.
type EventRepo interface {
	AppendModelCall(ctx context.Context, e ModelCallEvent) error
	AppendGeneration(ctx context.Context, e GenerationEvent) error
	RecentModelCalls(ctx context.Context, limit int) ([]ModelCallEvent, error)
	RecentGenerations(ctx context.Context, limit int) ([]GenerationEvent, error)
}

const tsFormat = time.RFC3339

type sqlEventRepo struct {
	db *sql.DB
}

func (r *sqlEventRepo) AppendModelCall(ctx context.Context, e ModelCallEvent) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO model_calls (ts, model, latency_ms, input_tokens, output_tokens, success, error, prompt, response)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(tsFormat), e.Model, e.LatencyMs, e.InputTokens, e.OutputTokens,
		boolToInt(e.Success), e.ErrorMessage, e.Prompt, e.Response)
	if err != nil {
		return fmt.Errorf("insert model call: %w", err)
	}
	return nil
}

func (r *sqlEventRepo) AppendGeneration(ctx context.Context, e GenerationEvent) error {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO generations (ts, category, level, age, first_language, attempts, success, model_used, last_output)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Format(tsFormat), e.Category, e.Level, e.Age, e.FirstLanguage,
		e.Attempts, boolToInt(e.Success), e.ModelUsed, e.LastOutput)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

func (r *sqlEventRepo) RecentModelCalls(ctx context.Context, limit int) ([]ModelCallEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ts, model, latency_ms, input_tokens, output_tokens, success, error, prompt, response
		 FROM model_calls ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query model calls: %w", err)
	}
	defer rows.Close()

	var out []ModelCallEvent
	for rows.Next() {
		var e ModelCallEvent
		var ts string
		var success int
		if err := rows.Scan(&e.ID, &ts, &e.Model, &e.LatencyMs, &e.InputTokens,
			&e.OutputTokens, &success, &e.ErrorMessage, &e.Prompt, &e.Response); err != nil {
			return nil, fmt.Errorf("scan model call: %w", err)
		}
		e.Timestamp, _ = time.Parse(tsFormat, ts)
		e.Success = success != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *sqlEventRepo) RecentGenerations(ctx context.Context, limit int) ([]GenerationEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ts, category, level, age, first_language, attempts, success, model_used, last_output
		 FROM generations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []GenerationEvent
	for rows.Next() {
		var e GenerationEvent
		var ts string
		var success int
		if err := rows.Scan(&e.ID, &ts, &e.Category, &e.Level, &e.Age,
			&e.FirstLanguage, &e.Attempts, &success, &e.ModelUsed, &e.LastOutput); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		e.Timestamp, _ = time.Parse(tsFormat, ts)
		e.Success = success != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NopEventRepo discards appends and returns empty queries. Used when no
// event database is configured.
type NopEventRepo struct{}

func (NopEventRepo) AppendModelCall(context.Context, ModelCallEvent) error { return nil }
func (NopEventRepo) AppendGeneration(context.Context, GenerationEvent) error {
	return nil
}
func (NopEventRepo) RecentModelCalls(context.Context, int) ([]ModelCallEvent, error) {
	return nil, nil
}
func (NopEventRepo) RecentGenerations(context.Context, int) ([]GenerationEvent, error) {
	return nil, nil
}
