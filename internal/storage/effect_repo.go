package storage

import (
	"context"
	"fmt"
	"time"
)

type EffectRepo struct {
	db DBTX
}

func NewEffectRepo(db DBTX) *EffectRepo {
	return &EffectRepo{db: db}
}

func (r *EffectRepo) Insert(ctx context.Context, e Effect) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO active_effects (id, kind, value, source, expires_at) VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.Kind, e.Value, e.Source, e.ExpiresAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("effect insert: %w", err)
	}
	return nil
}

// ListActive returns effects whose expiry is strictly after now, soonest first.
func (r *EffectRepo) ListActive(ctx context.Context, now time.Time) ([]Effect, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, value, source, expires_at
		FROM active_effects
		WHERE expires_at > ?
		ORDER BY expires_at ASC, id ASC
	`, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("effect list: %w", err)
	}
	defer rows.Close()

	var out []Effect
	for rows.Next() {
		var (
			e       Effect
			expires int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Value, &e.Source, &expires); err != nil {
			return nil, fmt.Errorf("effect scan: %w", err)
		}
		e.ExpiresAt = time.UnixMilli(expires).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("effect rows: %w", err)
	}
	return out, nil
}
