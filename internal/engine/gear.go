package engine

import (
	"context"
	"strings"
	"time"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
)

type EquipResult struct {
	Slot   string
	ItemID string
	// Replaced is the item that was in the slot before, if any.
	Replaced string
}

// GearView is one worn item with its catalog entry.
type GearView struct {
	Slot       string
	Item       catalog.ShopItem
	EquippedAt time.Time
}

// Equip wears an owned gear item in its slot, swapping out the previous one.
func (s *Service) Equip(ctx context.Context, itemID string) (*EquipResult, error) {
	id, err := normalizeItemID(itemID)
	if err != nil {
		return nil, err
	}
	it, err := s.shopItem(id)
	if err != nil {
		return nil, err
	}
	if !it.IsGear() {
		return nil, NotGearError{ItemID: id}
	}

	var res *EquipResult
	err = s.inTx(ctx, func(r *repos) error {
		inv, err := r.inventory.Get(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil || inv.Quantity < 1 {
			return OutOfStockError{ItemID: id}
		}
		prev, err := r.equipment.Get(ctx, it.Slot)
		if err != nil {
			return err
		}
		if err := r.equipment.Set(ctx, it.Slot, id, s.now()); err != nil {
			return err
		}
		res = &EquipResult{Slot: it.Slot, ItemID: id}
		if prev != nil && prev.ItemID != id {
			res.Replaced = prev.ItemID
		}
		s.logf("equipped %s in %s", id, it.Slot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Unequip empties slot. It reports false when the slot was already empty.
func (s *Service) Unequip(ctx context.Context, slot string) (bool, error) {
	slot = strings.TrimSpace(strings.ToLower(slot))
	if !catalog.ValidSlot(slot) {
		return false, InvalidSlotError{Slot: slot}
	}
	var removed bool
	err := s.inTx(ctx, func(r *repos) error {
		var err error
		removed, err = r.equipment.Clear(ctx, slot)
		return err
	})
	return removed, err
}

// Gear lists worn items in slot order. Rows whose item left the catalog are skipped.
func (s *Service) Gear(ctx context.Context) ([]GearView, error) {
	var rows []storage.Equipped
	err := s.read(func(r *repos) error {
		var err error
		rows, err = r.equipment.ListAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	bySlot := make(map[string]storage.Equipped, len(rows))
	for _, e := range rows {
		bySlot[e.Slot] = e
	}
	var out []GearView
	for _, slot := range catalog.Slots {
		e, ok := bySlot[slot]
		if !ok {
			continue
		}
		it, err := s.shopItem(e.ItemID)
		if err != nil {
			continue
		}
		out = append(out, GearView{Slot: slot, Item: it, EquippedAt: e.EquippedAt})
	}
	return out, nil
}

func (s *Service) wornEffects(ctx context.Context, r *repos) ([]catalog.Effect, error) {
	rows, err := r.equipment.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []catalog.Effect
	for _, e := range rows {
		it, err := s.shopItem(e.ItemID)
		if err != nil || !it.IsGear() {
			continue
		}
		out = append(out, it.Effect)
	}
	return out, nil
}
