package storage

import "time"

// Progress is the single user's cumulative game state.
type Progress struct {
	Key          string
	Level        int
	TotalXP      int64
	CurrentGold  int64
	LifetimeGold int64

	Strength     int
	Intelligence int
	Vitality     int
	Agility      int
	Sense        int
	Willpower    int

	LastLevelUp *time.Time
}

type Habit struct {
	ID             int64
	Name           string
	Description    string
	Category       string
	Difficulty     int
	Frequency      string
	FrequencyDays  []int // 0=Mon .. 6=Sun, only for the "specific" frequency
	CustomInterval int
	Priority       bool
	Active         bool
	CreatedAt      time.Time
}

// Completion is one check-in of a habit on a calendar date (YYYY-MM-DD).
type Completion struct {
	ID          int64
	HabitID     int64
	Date        string
	Completed   bool
	Difficulty  int
	Category    string
	XPAwarded   int64
	GoldAwarded int64
	CreatedAt   time.Time
}

type Goal struct {
	ID          int64
	Title       string
	Description string
	Category    string
	Difficulty  int
	Progress    int
	Completed   bool
	CompletedOn *string
	Deadline    *time.Time
	XPAwarded   int64
	GoldAwarded int64
	CreatedAt   time.Time
}

type GoalStep struct {
	ID          int64
	GoalID      int64
	Title       string
	Completed   bool
	CompletedAt *time.Time
}

type AchievementUnlock struct {
	Key        string
	UnlockedAt time.Time
}

// Effect is a time-boxed multiplier. Expired rows are simply ignored.
type Effect struct {
	ID        string
	Kind      string
	Value     float64
	Source    string
	ExpiresAt time.Time
}

type InventoryItem struct {
	ItemID    string
	Quantity  int
	UpdatedAt time.Time
}

// Equipped is the item worn in one gear slot.
type Equipped struct {
	Slot       string
	ItemID     string
	EquippedAt time.Time
}

type Purchase struct {
	ID          string
	ItemID      string
	Quantity    int
	GoldSpent   int64
	PurchasedAt time.Time
}
