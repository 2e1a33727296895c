package storage

import (
	"context"
	"fmt"
	"time"
)

type AchievementRepo struct {
	db DBTX
}

func NewAchievementRepo(db DBTX) *AchievementRepo {
	return &AchievementRepo{db: db}
}

// Insert records an unlock. An existing unlock for the key is left untouched.
func (r *AchievementRepo) Insert(ctx context.Context, key string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO achievement_unlocks (key, unlocked_at) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`, key, at.UTC())
	if err != nil {
		return fmt.Errorf("achievement unlock insert: %w", err)
	}
	return nil
}

// Unlocked returns unlock times keyed by achievement key.
func (r *AchievementRepo) Unlocked(ctx context.Context) (map[string]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, unlocked_at FROM achievement_unlocks ORDER BY unlocked_at ASC, key ASC`)
	if err != nil {
		return nil, fmt.Errorf("achievement unlock list: %w", err)
	}
	defer rows.Close()

	out := map[string]time.Time{}
	for rows.Next() {
		var u AchievementUnlock
		if err := rows.Scan(&u.Key, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("achievement unlock scan: %w", err)
		}
		out[u.Key] = u.UnlockedAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement unlock rows: %w", err)
	}
	return out, nil
}
