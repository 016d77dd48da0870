package store

import "database/sql"

// migrate creates missing tables. Statements are idempotent; there is no
// version table for a single-user local database.
func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scenario TEXT NOT NULL,
			score_overall REAL NOT NULL DEFAULT 0,
			score_pronunciation REAL NOT NULL DEFAULT 0,
			score_grammar REAL NOT NULL DEFAULT 0,
			score_fluency REAL NOT NULL DEFAULT 0,
			score_vocabulary REAL NOT NULL DEFAULT 0,
			comment TEXT NOT NULL DEFAULT '',
			duration_min REAL NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS profile (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			level INTEGER NOT NULL DEFAULT 2,
			target_cefr TEXT NOT NULL DEFAULT 'B1',
			ma_pronunciation REAL NOT NULL DEFAULT 0,
			ma_grammar REAL NOT NULL DEFAULT 0,
			ma_fluency REAL NOT NULL DEFAULT 0,
			ma_vocabulary REAL NOT NULL DEFAULT 0,
			ma_overall REAL NOT NULL DEFAULT 0,
			sessions_count INTEGER NOT NULL DEFAULT 0,
			last_objectives TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS plan_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_idx INTEGER NOT NULL DEFAULT 0,
			scenario TEXT NOT NULL,
			focus TEXT NOT NULL,
			level INTEGER NOT NULL DEFAULT 2,
			prompt TEXT NOT NULL,
			done INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS llm_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			success INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_items_done ON plan_items (done, order_idx)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
