package store

import (
	"context"
	"database/sql"
	"fmt"
)

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) SaveSession(ctx context.Context, rec SessionRecord) (SaveResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (
			scenario, score_overall, score_pronunciation, score_grammar,
			score_fluency, score_vocabulary, comment, duration_min
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Scenario, rec.Overall, rec.Pron, rec.Grammar,
		rec.Fluency, rec.Vocabulary, rec.Comment, rec.DurationMin,
	)
	if err != nil {
		return SaveResult{}, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return SaveResult{}, err
	}

	prof, err := getProfileTx(ctx, tx)
	if err != nil {
		return SaveResult{}, err
	}

	first := prof.SessionsCount == 0
	prof.MAPron = maUpdate(prof.MAPron, rec.Pron, first)
	prof.MAGrammar = maUpdate(prof.MAGrammar, rec.Grammar, first)
	prof.MAFluency = maUpdate(prof.MAFluency, rec.Fluency, first)
	prof.MAVocabulary = maUpdate(prof.MAVocabulary, rec.Vocabulary, first)
	prof.MAOverall = maUpdate(prof.MAOverall, rec.Overall, first)
	prof.SessionsCount++

	oldLevel := prof.Level
	prof.Level = adjustLevel(prof.Level, prof.MAOverall, prof.SessionsCount)

	_, err = tx.ExecContext(ctx, `
		UPDATE profile SET
			level = ?, ma_pronunciation = ?, ma_grammar = ?, ma_fluency = ?,
			ma_vocabulary = ?, ma_overall = ?, sessions_count = ?
		WHERE id = 1`,
		prof.Level, prof.MAPron, prof.MAGrammar, prof.MAFluency,
		prof.MAVocabulary, prof.MAOverall, prof.SessionsCount,
	)
	if err != nil {
		return SaveResult{}, fmt.Errorf("update profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("commit: %w", err)
	}
	return SaveResult{
		SessionID: id,
		LeveledUp: prof.Level > oldLevel,
		LeveledDn: prof.Level < oldLevel,
		NewLevel:  prof.Level,
	}, nil
}

func (r *sessionRepo) RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scenario, score_overall, score_pronunciation, score_grammar,
			   score_fluency, score_vocabulary, comment, duration_min, created_at
		FROM sessions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(
			&rec.ID, &rec.Scenario, &rec.Overall, &rec.Pron, &rec.Grammar,
			&rec.Fluency, &rec.Vocabulary, &rec.Comment, &rec.DurationMin,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sessionRepo) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			   COALESCE(SUM(duration_min), 0),
			   COALESCE(AVG(score_overall), 0),
			   COALESCE(MAX(score_overall), 0)
		FROM sessions`).Scan(&st.Sessions, &st.TotalMinutes, &st.AvgOverall, &st.BestOverall)
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}
