package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type GoalRepo struct {
	db DBTX
}

func NewGoalRepo(db DBTX) *GoalRepo {
	return &GoalRepo{db: db}
}

type GoalInsert struct {
	Title       string
	Description string
	Category    string
	Difficulty  int
	Deadline    *time.Time
	CreatedAt   time.Time
}

const goalColumns = `id, title, description, category, difficulty, progress, completed, completed_on,
	deadline, xp_awarded, gold_awarded, created_at`

func (r *GoalRepo) Insert(ctx context.Context, in GoalInsert) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (title, description, category, difficulty, deadline, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, in.Title, in.Description, in.Category, in.Difficulty, in.Deadline, in.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("goal insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal last insert id: %w", err)
	}
	return id, nil
}

func (r *GoalRepo) Get(ctx context.Context, id int64) (*Goal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	return scanGoal(row)
}

func (r *GoalRepo) ListAll(ctx context.Context) ([]Goal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY completed ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("goal list: %w", err)
	}
	defer rows.Close()

	var out []Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("goal list rows: %w", err)
	}
	return out, nil
}

func (r *GoalRepo) UpdateProgress(ctx context.Context, id int64, progress int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE goals SET progress = ? WHERE id = ?`, progress, id); err != nil {
		return fmt.Errorf("goal update progress: %w", err)
	}
	return nil
}

// MarkCompleted flips completed once; it reports false if the goal was already completed.
func (r *GoalRepo) MarkCompleted(ctx context.Context, id int64, date string, xp, gold int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET completed = 1, progress = 100, completed_on = ?, xp_awarded = ?, gold_awarded = ?
		WHERE id = ? AND completed = 0
	`, date, xp, gold, id)
	if err != nil {
		return false, fmt.Errorf("goal mark completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("goal mark completed rows: %w", err)
	}
	return n > 0, nil
}

// GoalCounts aggregates the goal table for achievement metrics.
type GoalCounts struct {
	Created        int
	Completed      int
	HardCompleted  int
	ByCategory     map[string]int
	XPCompletedOn  int64
	StepsCompleted int
}

// Counts computes GoalCounts; xpDate selects which completion date feeds XPCompletedOn.
func (r *GoalRepo) Counts(ctx context.Context, hardDifficulty int, xpDate string) (*GoalCounts, error) {
	out := &GoalCounts{ByCategory: map[string]int{}}
	row := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(completed), 0),
			COALESCE(SUM(CASE WHEN completed = 1 AND difficulty = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN completed_on = ? THEN xp_awarded ELSE 0 END), 0)
		FROM goals
	`, hardDifficulty, xpDate)
	if err := row.Scan(&out.Created, &out.Completed, &out.HardCompleted, &out.XPCompletedOn); err != nil {
		return nil, fmt.Errorf("goal counts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM goals WHERE completed = 1 GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("goal category counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cat string
			n   int
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("goal category scan: %w", err)
		}
		out.ByCategory[cat] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("goal category rows: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM goal_steps WHERE completed = 1`).Scan(&out.StepsCompleted); err != nil {
		return nil, fmt.Errorf("goal step count: %w", err)
	}
	return out, nil
}

func (r *GoalRepo) InsertStep(ctx context.Context, goalID int64, title string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO goal_steps (goal_id, title) VALUES (?, ?)`, goalID, title)
	if err != nil {
		return 0, fmt.Errorf("goal step insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("goal step last insert id: %w", err)
	}
	return id, nil
}

func (r *GoalRepo) GetStep(ctx context.Context, id int64) (*GoalStep, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, goal_id, title, completed, completed_at FROM goal_steps WHERE id = ?`, id)
	return scanGoalStep(row)
}

func (r *GoalRepo) ListSteps(ctx context.Context, goalID int64) ([]GoalStep, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, goal_id, title, completed, completed_at FROM goal_steps WHERE goal_id = ? ORDER BY id ASC
	`, goalID)
	if err != nil {
		return nil, fmt.Errorf("goal step list: %w", err)
	}
	defer rows.Close()

	var out []GoalStep
	for rows.Next() {
		s, err := scanGoalStep(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("goal step rows: %w", err)
	}
	return out, nil
}

// MarkStepDone reports false if the step was already done.
func (r *GoalRepo) MarkStepDone(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goal_steps SET completed = 1, completed_at = ? WHERE id = ? AND completed = 0
	`, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("goal step mark done: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("goal step rows affected: %w", err)
	}
	return n > 0, nil
}

func scanGoal(row scanner) (*Goal, error) {
	var (
		g           Goal
		completed   int
		completedOn sql.NullString
		deadline    sql.NullTime
	)
	if err := row.Scan(
		&g.ID, &g.Title, &g.Description, &g.Category, &g.Difficulty, &g.Progress, &completed, &completedOn,
		&deadline, &g.XPAwarded, &g.GoldAwarded, &g.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("goal scan: %w", err)
	}
	g.Completed = completed != 0
	if completedOn.Valid {
		v := completedOn.String
		g.CompletedOn = &v
	}
	if deadline.Valid {
		v := deadline.Time
		g.Deadline = &v
	}
	return &g, nil
}

func scanGoalStep(row scanner) (*GoalStep, error) {
	var (
		s           GoalStep
		completed   int
		completedAt sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.GoalID, &s.Title, &completed, &completedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("goal step scan: %w", err)
	}
	s.Completed = completed != 0
	if completedAt.Valid {
		v := completedAt.Time
		s.CompletedAt = &v
	}
	return &s, nil
}
