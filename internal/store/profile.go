package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	maAlpha = 0.5

	minLevel = 1
	maxLevel = 5

	levelUpMA       = 7.5
	levelUpMinCount = 3
	levelDnMA       = 4.0
	levelDnMinCount = 2
)

// maUpdate folds a new score into an exponential moving average. The
// first observation takes the raw value so the average is not dragged
// toward zero.
func maUpdate(prev, score float64, first bool) float64 {
	if first {
		return score
	}
	return maAlpha*score + (1-maAlpha)*prev
}

// adjustLevel moves the difficulty level one step when the overall
// moving average has settled clearly high or low.
func adjustLevel(level int, maOverall float64, sessions int) int {
	if maOverall >= levelUpMA && sessions >= levelUpMinCount && level < maxLevel {
		return level + 1
	}
	if maOverall <= levelDnMA && sessions >= levelDnMinCount && level > minLevel {
		return level - 1
	}
	return level
}

type profileRepo struct {
	db *sql.DB
}

func (r *profileRepo) Get(ctx context.Context) (Profile, error) {
	if err := ensureProfile(ctx, r.db); err != nil {
		return Profile{}, err
	}
	return scanProfile(r.db.QueryRowContext(ctx, profileSelect))
}

func (r *profileRepo) SetObjectives(ctx context.Context, objectives string) error {
	if err := ensureProfile(ctx, r.db); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE profile SET last_objectives = ? WHERE id = 1`, objectives)
	return err
}

const profileSelect = `
	SELECT level, target_cefr, ma_pronunciation, ma_grammar, ma_fluency,
		   ma_vocabulary, ma_overall, sessions_count, last_objectives
	FROM profile WHERE id = 1`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.Level, &p.TargetCEFR, &p.MAPron, &p.MAGrammar, &p.MAFluency,
		&p.MAVocabulary, &p.MAOverall, &p.SessionsCount, &p.LastObjectives,
	)
	if err != nil {
		return Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ensureProfile(ctx context.Context, q execQuerier) error {
	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO profile (id) VALUES (1)`)
	return err
}

func getProfileTx(ctx context.Context, tx *sql.Tx) (Profile, error) {
	if err := ensureProfile(ctx, tx); err != nil {
		return Profile{}, err
	}
	return scanProfile(tx.QueryRowContext(ctx, profileSelect))
}
