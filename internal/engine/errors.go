package engine

import (
	"errors"
	"fmt"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrItemIDRequired = errors.New("item id is required")
	ErrBadQuantity    = errors.New("quantity must be at least 1")
)

// AlreadyCompletedError means the habit already has a record for the date.
// Service.CompleteHabit turns it into a no-op result.
type AlreadyCompletedError struct {
	HabitID int64
	Date    string
}

func (e AlreadyCompletedError) Error() string {
	return fmt.Sprintf("habit %d already completed on %s", e.HabitID, e.Date)
}

// InvalidDifficultyError is only returned by strict parsing; reward code
// falls back to the easy tier instead.
type InvalidDifficultyError struct {
	Value int
	Input string
}

func (e InvalidDifficultyError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("invalid difficulty %q (want 1-3 or easy/medium/hard)", e.Input)
	}
	return fmt.Sprintf("invalid difficulty %d (want 1-3)", e.Value)
}

type InvalidScheduleError struct {
	Reason string
}

func (e InvalidScheduleError) Error() string {
	return "invalid schedule: " + e.Reason
}

type NotFoundError struct {
	Kind string
	ID   any
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

type InsufficientGoldError struct {
	Need int64
	Have int64
}

func (e InsufficientGoldError) Error() string {
	return fmt.Sprintf("not enough gold: need %d, have %d", e.Need, e.Have)
}

// LevelGateError indicates a feature is locked behind a required level.
type LevelGateError struct {
	Feature       string
	RequiredLevel int
}

func (e LevelGateError) Error() string {
	if e.RequiredLevel <= 0 {
		return fmt.Sprintf("'%s' is locked", e.Feature)
	}
	return fmt.Sprintf("'%s' unlocks at level %d", e.Feature, e.RequiredLevel)
}

type OutOfStockError struct {
	ItemID string
}

func (e OutOfStockError) Error() string {
	return fmt.Sprintf("no %s left in inventory", e.ItemID)
}

type StackLimitError struct {
	ItemID   string
	MaxStack int
}

func (e StackLimitError) Error() string {
	return fmt.Sprintf("%s stacks to at most %d", e.ItemID, e.MaxStack)
}

type HabitPausedError struct {
	HabitID int64
}

func (e HabitPausedError) Error() string {
	return fmt.Sprintf("habit %d is paused", e.HabitID)
}

// GoalCompletedError is returned when a completed goal is edited.
type GoalCompletedError struct {
	GoalID int64
}

func (e GoalCompletedError) Error() string {
	return fmt.Sprintf("goal %d is already completed", e.GoalID)
}

// NotConsumableError is returned when gear is used like a potion.
type NotConsumableError struct {
	ItemID string
}

func (e NotConsumableError) Error() string {
	return fmt.Sprintf("%s is gear; equip it instead", e.ItemID)
}

type NotGearError struct {
	ItemID string
}

func (e NotGearError) Error() string {
	return fmt.Sprintf("%s cannot be equipped", e.ItemID)
}

type InvalidSlotError struct {
	Slot string
}

func (e InvalidSlotError) Error() string {
	return fmt.Sprintf("unknown gear slot %q", e.Slot)
}
