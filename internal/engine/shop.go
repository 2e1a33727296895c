package engine

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
)

type PurchaseResult struct {
	ItemID    string
	Quantity  int
	GoldSpent int64
	GoldLeft  int64
	Owned     int
	Unlocked  []Unlock
}

type UseResult struct {
	Effect    storage.Effect
	Remaining int
}

func normalizeItemID(id string) (string, error) {
	c := strings.TrimSpace(strings.ToLower(id))
	if c == "" {
		return "", ErrItemIDRequired
	}
	return c, nil
}

func (s *Service) shopItem(id string) (catalog.ShopItem, error) {
	if s.catalog == nil {
		return catalog.ShopItem{}, NotFoundError{Kind: "shop item", ID: id}
	}
	it, ok := s.catalog.Item(id)
	if !ok {
		return catalog.ShopItem{}, NotFoundError{Kind: "shop item", ID: id}
	}
	return it, nil
}

// purchaseCost is price*qty, or false when that does not fit in an int64.
func purchaseCost(price int64, qty int) (int64, bool) {
	if qty > 0 && price > math.MaxInt64/int64(qty) {
		return math.MaxInt64, false
	}
	return price * int64(qty), true
}

// CanBuy checks the level gate for an item.
func CanBuy(level int, it catalog.ShopItem) error {
	if level < it.LevelRequired {
		return LevelGateError{Feature: it.Name, RequiredLevel: it.LevelRequired}
	}
	return nil
}

// Buy spends current gold on qty units of an item. Lifetime gold is untouched.
func (s *Service) Buy(ctx context.Context, itemID string, qty int) (*PurchaseResult, error) {
	id, err := normalizeItemID(itemID)
	if err != nil {
		return nil, err
	}
	if qty < 1 {
		return nil, ErrBadQuantity
	}
	it, err := s.shopItem(id)
	if err != nil {
		return nil, err
	}
	if qty > it.MaxStack {
		return nil, StackLimitError{ItemID: id, MaxStack: it.MaxStack}
	}

	var res *PurchaseResult
	err = s.inTx(ctx, func(r *repos) error {
		now := s.now()
		p, err := getProgress(ctx, r)
		if err != nil {
			return err
		}
		if err := CanBuy(p.Level, it); err != nil {
			return err
		}
		owned := 0
		inv, err := r.inventory.Get(ctx, id)
		if err != nil {
			return err
		}
		if inv != nil {
			owned = inv.Quantity
		}
		if qty > it.MaxStack-owned {
			return StackLimitError{ItemID: id, MaxStack: it.MaxStack}
		}
		cost, ok := purchaseCost(it.Price, qty)
		if !ok || p.CurrentGold < cost {
			return InsufficientGoldError{Need: cost, Have: p.CurrentGold}
		}

		p.CurrentGold -= cost
		if err := r.inventory.Add(ctx, id, qty, now); err != nil {
			return err
		}
		if err := r.inventory.InsertPurchase(ctx, storage.Purchase{
			ID:          uuid.NewString(),
			ItemID:      id,
			Quantity:    qty,
			GoldSpent:   cost,
			PurchasedAt: now,
		}); err != nil {
			return err
		}
		s.logf("bought %dx %s for %d gold", qty, id, cost)

		unlocks, err := s.settle(ctx, r, p, now)
		if err != nil {
			return err
		}
		res = &PurchaseResult{
			ItemID:    id,
			Quantity:  qty,
			GoldSpent: cost,
			GoldLeft:  p.CurrentGold,
			Owned:     owned + qty,
			Unlocked:  unlocks,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Use consumes one unit of an item and starts its effect.
func (s *Service) Use(ctx context.Context, itemID string) (*UseResult, error) {
	id, err := normalizeItemID(itemID)
	if err != nil {
		return nil, err
	}
	it, err := s.shopItem(id)
	if err != nil {
		return nil, err
	}
	if it.IsGear() {
		return nil, NotConsumableError{ItemID: id}
	}

	var res *UseResult
	err = s.inTx(ctx, func(r *repos) error {
		now := s.now()
		inv, err := r.inventory.Get(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil || inv.Quantity < 1 {
			return OutOfStockError{ItemID: id}
		}
		if err := r.inventory.Add(ctx, id, -1, now); err != nil {
			return err
		}
		e := storage.Effect{
			ID:        uuid.NewString(),
			Kind:      it.Effect.Kind,
			Value:     it.Effect.Value,
			Source:    id,
			ExpiresAt: now.Add(it.Effect.Duration).UTC(),
		}
		if err := r.effects.Insert(ctx, e); err != nil {
			return err
		}
		s.logf("effect %s x%g active until %s", e.Kind, e.Value, e.ExpiresAt.Format(time.RFC3339))
		res = &UseResult{Effect: e, Remaining: inv.Quantity - 1}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ActiveEffects lists effects that have not expired at the service clock.
func (s *Service) ActiveEffects(ctx context.Context) ([]storage.Effect, error) {
	var out []storage.Effect
	err := s.read(func(r *repos) error {
		var err error
		out, err = r.effects.ListActive(ctx, s.now())
		return err
	})
	return out, err
}

func (s *Service) Inventory(ctx context.Context) ([]storage.InventoryItem, error) {
	var out []storage.InventoryItem
	err := s.read(func(r *repos) error {
		var err error
		out, err = r.inventory.ListAll(ctx)
		return err
	})
	return out, err
}
