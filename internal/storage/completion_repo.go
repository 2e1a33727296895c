package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type CompletionRepo struct {
	db DBTX
}

func NewCompletionRepo(db DBTX) *CompletionRepo {
	return &CompletionRepo{db: db}
}

const completionColumns = `id, habit_id, date, completed, difficulty, category, xp_awarded, gold_awarded, created_at`

// Insert appends a completion record. It reports false, without error, when a
// record for (habit_id, date) already exists.
func (r *CompletionRepo) Insert(ctx context.Context, c Completion) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (habit_id, date, completed, difficulty, category, xp_awarded, gold_awarded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, date) DO NOTHING
	`, c.HabitID, c.Date, boolToInt(c.Completed), c.Difficulty, c.Category, c.XPAwarded, c.GoldAwarded, c.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("completion insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("completion rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *CompletionRepo) Get(ctx context.Context, habitID int64, date string) (*Completion, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+completionColumns+` FROM completions WHERE habit_id = ? AND date = ?`, habitID, date)
	return scanCompletion(row)
}

// ListByHabit returns the habit's history ordered by date ascending.
func (r *CompletionRepo) ListByHabit(ctx context.Context, habitID int64) ([]Completion, error) {
	return r.list(ctx, `SELECT `+completionColumns+` FROM completions WHERE habit_id = ? ORDER BY date ASC`, habitID)
}

func (r *CompletionRepo) ListOnDate(ctx context.Context, date string) ([]Completion, error) {
	return r.list(ctx, `SELECT `+completionColumns+` FROM completions WHERE date = ? AND completed = 1 ORDER BY id ASC`, date)
}

func (r *CompletionRepo) list(ctx context.Context, query string, args ...any) ([]Completion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion rows: %w", err)
	}
	return out, nil
}

func (r *CompletionRepo) CountCompleted(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM completions WHERE completed = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("completion count: %w", err)
	}
	return n, nil
}

func (r *CompletionRepo) CountCompletedWithDifficulty(ctx context.Context, difficulty int) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completions WHERE completed = 1 AND difficulty = ?`, difficulty,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("completion count by difficulty: %w", err)
	}
	return n, nil
}

// CountByCategory returns completed check-ins grouped by the habit category at completion time.
func (r *CompletionRepo) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM completions WHERE completed = 1 GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("completion count by category: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			cat string
			n   int
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("completion category scan: %w", err)
		}
		out[cat] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion category rows: %w", err)
	}
	return out, nil
}

func (r *CompletionRepo) SumXPOnDate(ctx context.Context, date string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(xp_awarded), 0) FROM completions WHERE date = ?`, date,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("completion xp sum: %w", err)
	}
	return n, nil
}

func scanCompletion(row scanner) (*Completion, error) {
	var (
		c         Completion
		completed int
	)
	if err := row.Scan(
		&c.ID, &c.HabitID, &c.Date, &completed, &c.Difficulty, &c.Category,
		&c.XPAwarded, &c.GoldAwarded, &c.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("completion scan: %w", err)
	}
	c.Completed = completed != 0
	return &c, nil
}
