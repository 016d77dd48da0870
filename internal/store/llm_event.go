package store

import (
	"context"
	"database/sql"
)

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) Record(ctx context.Context, ev LLMEvent) error {
	success := 0
	if ev.Success {
		success = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_events (
			provider, model, purpose, input_tokens, output_tokens,
			latency_ms, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Provider, ev.Model, ev.Purpose, ev.InputTokens, ev.OutputTokens,
		ev.LatencyMS, success, ev.ErrorMessage,
	)
	return err
}

func (r *eventRepo) RecentEvents(ctx context.Context, limit int) ([]LLMEventRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, error_message
		FROM llm_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LLMEventRow
	for rows.Next() {
		var row LLMEventRow
		var success int
		if err := rows.Scan(&row.ID, &row.CreatedAt, &row.Provider, &row.Model,
			&row.Purpose, &row.InputTokens, &row.OutputTokens, &row.LatencyMS,
			&success, &row.ErrorMessage); err != nil {
			return nil, err
		}
		row.Success = success != 0
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *eventRepo) UsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT purpose, COUNT(*), COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0), COALESCE(AVG(latency_ms), 0)
		FROM llm_events
		GROUP BY purpose
		ORDER BY purpose`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens,
			&u.OutputTokens, &u.AvgLatencyMS); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
