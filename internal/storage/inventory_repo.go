package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type InventoryRepo struct {
	db DBTX
}

func NewInventoryRepo(db DBTX) *InventoryRepo {
	return &InventoryRepo{db: db}
}

func (r *InventoryRepo) Get(ctx context.Context, itemID string) (*InventoryItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT item_id, quantity, updated_at FROM inventory WHERE item_id = ?`, itemID)
	var it InventoryItem
	if err := row.Scan(&it.ItemID, &it.Quantity, &it.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("inventory get: %w", err)
	}
	return &it, nil
}

func (r *InventoryRepo) ListAll(ctx context.Context) ([]InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_id, quantity, updated_at FROM inventory WHERE quantity > 0 ORDER BY item_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("inventory list: %w", err)
	}
	defer rows.Close()

	var out []InventoryItem
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.ItemID, &it.Quantity, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("inventory scan: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inventory rows: %w", err)
	}
	return out, nil
}

// Add adjusts the stored quantity by delta (negative to consume).
func (r *InventoryRepo) Add(ctx context.Context, itemID string, delta int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory (item_id, quantity, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET quantity = quantity + excluded.quantity, updated_at = excluded.updated_at
	`, itemID, delta, at.UTC())
	if err != nil {
		return fmt.Errorf("inventory add: %w", err)
	}
	return nil
}

func (r *InventoryRepo) InsertPurchase(ctx context.Context, p Purchase) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO purchases (id, item_id, quantity, gold_spent, purchased_at) VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.ItemID, p.Quantity, p.GoldSpent, p.PurchasedAt.UTC())
	if err != nil {
		return fmt.Errorf("purchase insert: %w", err)
	}
	return nil
}

func (r *InventoryRepo) CountPurchases(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&n); err != nil {
		return 0, fmt.Errorf("purchase count: %w", err)
	}
	return n, nil
}
