package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EquipmentRepo holds at most one item per slot.
type EquipmentRepo struct {
	db DBTX
}

func NewEquipmentRepo(db DBTX) *EquipmentRepo {
	return &EquipmentRepo{db: db}
}

func (r *EquipmentRepo) Get(ctx context.Context, slot string) (*Equipped, error) {
	row := r.db.QueryRowContext(ctx, `SELECT slot, item_id, equipped_at FROM equipment WHERE slot = ?`, slot)
	var e Equipped
	if err := row.Scan(&e.Slot, &e.ItemID, &e.EquippedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("equipment get: %w", err)
	}
	return &e, nil
}

func (r *EquipmentRepo) ListAll(ctx context.Context) ([]Equipped, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT slot, item_id, equipped_at FROM equipment ORDER BY slot ASC`)
	if err != nil {
		return nil, fmt.Errorf("equipment list: %w", err)
	}
	defer rows.Close()

	var out []Equipped
	for rows.Next() {
		var e Equipped
		if err := rows.Scan(&e.Slot, &e.ItemID, &e.EquippedAt); err != nil {
			return nil, fmt.Errorf("equipment scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("equipment rows: %w", err)
	}
	return out, nil
}

// Set puts itemID in slot, replacing whatever was there.
func (r *EquipmentRepo) Set(ctx context.Context, slot, itemID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO equipment (slot, item_id, equipped_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET item_id = excluded.item_id, equipped_at = excluded.equipped_at
	`, slot, itemID, at.UTC())
	if err != nil {
		return fmt.Errorf("equipment set: %w", err)
	}
	return nil
}

// Clear empties slot and reports whether anything was removed.
func (r *EquipmentRepo) Clear(ctx context.Context, slot string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE slot = ?`, slot)
	if err != nil {
		return false, fmt.Errorf("equipment clear: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("equipment clear: %w", err)
	}
	return n > 0, nil
}
