package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const MainProgressKey = "main_user"

type ProgressRepo struct {
	db DBTX
}

func NewProgressRepo(db DBTX) *ProgressRepo {
	return &ProgressRepo{db: db}
}

func (r *ProgressRepo) Get(ctx context.Context, key string) (*Progress, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT key, level, total_xp, current_gold, lifetime_gold,
			strength, intelligence, vitality, agility, sense, willpower, last_level_up
		FROM progress WHERE key = ?
	`, key)

	var (
		p           Progress
		lastLevelUp sql.NullTime
	)
	if err := row.Scan(
		&p.Key, &p.Level, &p.TotalXP, &p.CurrentGold, &p.LifetimeGold,
		&p.Strength, &p.Intelligence, &p.Vitality, &p.Agility, &p.Sense, &p.Willpower, &lastLevelUp,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("progress get: %w", err)
	}
	if lastLevelUp.Valid {
		v := lastLevelUp.Time
		p.LastLevelUp = &v
	}
	return &p, nil
}

// GetOrCreateMain returns the singleton progress row, creating it with defaults on first access.
func (r *ProgressRepo) GetOrCreateMain(ctx context.Context) (*Progress, error) {
	p, err := r.Get(ctx, MainProgressKey)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO progress (key) VALUES (?)`, MainProgressKey); err != nil {
		return nil, fmt.Errorf("progress insert: %w", err)
	}
	return r.Get(ctx, MainProgressKey)
}

func (r *ProgressRepo) Update(ctx context.Context, p *Progress) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE progress
		SET level = ?, total_xp = ?, current_gold = ?, lifetime_gold = ?,
			strength = ?, intelligence = ?, vitality = ?, agility = ?, sense = ?, willpower = ?,
			last_level_up = ?
		WHERE key = ?
	`, p.Level, p.TotalXP, p.CurrentGold, p.LifetimeGold,
		p.Strength, p.Intelligence, p.Vitality, p.Agility, p.Sense, p.Willpower,
		p.LastLevelUp, p.Key)
	if err != nil {
		return fmt.Errorf("progress update: %w", err)
	}
	return nil
}

// Reset deletes the progress row; the next GetOrCreateMain recreates it with defaults.
func (r *ProgressRepo) Reset(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM progress WHERE key = ?`, key); err != nil {
		return fmt.Errorf("progress reset: %w", err)
	}
	return nil
}
