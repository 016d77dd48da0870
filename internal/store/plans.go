package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type planRepo struct {
	db *sql.DB
}

// FirstOpenItem returns the lowest-ordered unfinished plan item, or nil
// when the queue is empty.
func (r *planRepo) FirstOpenItem(ctx context.Context) (*PlanItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_idx, scenario, focus, level, prompt, done
		FROM plan_items WHERE done = 0
		ORDER BY order_idx ASC, id ASC LIMIT 1`)

	var it PlanItem
	var done int
	err := row.Scan(&it.ID, &it.OrderIdx, &it.Scenario, &it.Focus, &it.Level, &it.Prompt, &done)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	it.Done = done != 0
	return &it, nil
}

// AppendItems adds items after the current maximum order index,
// preserving their relative order.
func (r *planRepo) AppendItems(ctx context.Context, items []PlanItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var maxIdx sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(order_idx) FROM plan_items`).Scan(&maxIdx); err != nil {
		return err
	}
	next := int(maxIdx.Int64) + 1

	for i, it := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_items (order_idx, scenario, focus, level, prompt, done)
			VALUES (?, ?, ?, ?, ?, 0)`,
			next+i, it.Scenario, it.Focus, it.Level, it.Prompt)
		if err != nil {
			return fmt.Errorf("insert plan item: %w", err)
		}
	}
	return tx.Commit()
}

func (r *planRepo) CompleteItem(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE plan_items SET done = 1 WHERE id = ?`, id)
	return err
}

func (r *planRepo) OpenCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plan_items WHERE done = 0`).Scan(&n)
	return n, err
}
