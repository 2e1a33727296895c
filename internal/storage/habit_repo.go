package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type HabitRepo struct {
	db DBTX
}

func NewHabitRepo(db DBTX) *HabitRepo {
	return &HabitRepo{db: db}
}

type HabitInsert struct {
	Name           string
	Description    string
	Category       string
	Difficulty     int
	Frequency      string
	FrequencyDays  []int
	CustomInterval int
	Priority       bool
	CreatedAt      time.Time
}

const habitColumns = `id, name, description, category, difficulty, frequency, frequency_days,
	custom_interval, priority, active, created_at`

func (r *HabitRepo) Insert(ctx context.Context, in HabitInsert) (int64, error) {
	var daysJSON *string
	if len(in.FrequencyDays) > 0 {
		data, err := json.Marshal(in.FrequencyDays)
		if err != nil {
			return 0, fmt.Errorf("marshal frequency days: %w", err)
		}
		s := string(data)
		daysJSON = &s
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO habits (
			name, description, category, difficulty,
			frequency, frequency_days, custom_interval,
			priority, active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
	`, in.Name, in.Description, in.Category, in.Difficulty,
		in.Frequency, daysJSON, in.CustomInterval,
		boolToInt(in.Priority), in.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("habit insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("habit last insert id: %w", err)
	}
	return id, nil
}

func (r *HabitRepo) Get(ctx context.Context, id int64) (*Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	return scanHabit(row)
}

func (r *HabitRepo) ListAll(ctx context.Context) ([]Habit, error) {
	return r.list(ctx, `SELECT `+habitColumns+` FROM habits ORDER BY id ASC`)
}

func (r *HabitRepo) ListActive(ctx context.Context) ([]Habit, error) {
	return r.list(ctx, `SELECT `+habitColumns+` FROM habits WHERE active = 1 ORDER BY id ASC`)
}

func (r *HabitRepo) list(ctx context.Context, query string, args ...any) ([]Habit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("habit list: %w", err)
	}
	defer rows.Close()

	var out []Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit list rows: %w", err)
	}
	return out, nil
}

func (r *HabitRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("habit count: %w", err)
	}
	return n, nil
}

// CountCategories returns how many distinct categories the active habits cover.
func (r *HabitRepo) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT category) FROM habits WHERE active = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("habit category count: %w", err)
	}
	return n, nil
}

func (r *HabitRepo) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE habits SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("habit set active: %w", err)
	}
	return nil
}

func (r *HabitRepo) UpdateDifficulty(ctx context.Context, id int64, difficulty int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE habits SET difficulty = ? WHERE id = ?`, difficulty, id)
	if err != nil {
		return fmt.Errorf("habit update difficulty: %w", err)
	}
	return nil
}

func scanHabit(row scanner) (*Habit, error) {
	var (
		h        Habit
		daysRaw  sql.NullString
		priority int
		active   int
	)
	if err := row.Scan(
		&h.ID, &h.Name, &h.Description, &h.Category, &h.Difficulty, &h.Frequency, &daysRaw,
		&h.CustomInterval, &priority, &active, &h.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("habit scan: %w", err)
	}
	h.Priority = priority != 0
	h.Active = active != 0

	if daysRaw.Valid && daysRaw.String != "" {
		if err := json.Unmarshal([]byte(daysRaw.String), &h.FrequencyDays); err != nil {
			return nil, fmt.Errorf("unmarshal frequency days: %w", err)
		}
	}
	return &h, nil
}
