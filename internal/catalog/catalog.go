// Package catalog holds the read-only achievement and shop tables.
package catalog

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed achievements.yaml
var achievementsYAML []byte

//go:embed shop.yaml
var shopYAML []byte

// Metric names understood by achievement predicates.
const (
	MetricMaxStreak               = "max_streak"
	MetricStreaksAtLeast7         = "streaks_at_least_7"
	MetricHabitCompletions        = "habit_completions"
	MetricHardHabitCompletions    = "hard_habit_completions"
	MetricCategoryCompletions     = "category_completions"
	MetricHabitsCreated           = "habits_created"
	MetricGoalsCreated            = "goals_created"
	MetricGoalsCompleted          = "goals_completed"
	MetricHardGoalsCompleted      = "hard_goals_completed"
	MetricGoalCategoryCompletions = "goal_category_completions"
	MetricGoalStepsCompleted      = "goal_steps_completed"
	MetricLevel                   = "level"
	MetricTotalXP                 = "total_xp"
	MetricDailyXP                 = "daily_xp"
	MetricLifetimeGold            = "lifetime_gold"
	MetricStat                    = "stat"
	MetricMinStat                 = "min_stat"
	MetricStatTotal               = "stat_total"
	MetricAchievementsUnlocked    = "achievements_unlocked"
	MetricDistinctCategoriesToday = "distinct_categories_today"
	MetricPerfectDay              = "perfect_day"
	MetricHabitCategories         = "habit_categories"
	MetricPurchases               = "purchases"
)

// metricsWithArg must carry a non-empty Arg.
var metricsWithArg = map[string]bool{
	MetricCategoryCompletions:     true,
	MetricGoalCategoryCompletions: true,
	MetricStat:                    true,
}

var knownMetrics = map[string]bool{
	MetricMaxStreak: true, MetricStreaksAtLeast7: true, MetricHabitCompletions: true,
	MetricHardHabitCompletions: true, MetricCategoryCompletions: true, MetricHabitsCreated: true,
	MetricGoalsCreated: true, MetricGoalsCompleted: true, MetricHardGoalsCompleted: true,
	MetricGoalCategoryCompletions: true, MetricGoalStepsCompleted: true, MetricLevel: true,
	MetricTotalXP: true, MetricDailyXP: true, MetricLifetimeGold: true, MetricStat: true,
	MetricMinStat: true, MetricStatTotal: true, MetricAchievementsUnlocked: true,
	MetricDistinctCategoriesToday: true, MetricPerfectDay: true, MetricHabitCategories: true,
	MetricPurchases: true,
}

var statNames = map[string]bool{
	"strength": true, "intelligence": true, "vitality": true,
	"agility": true, "sense": true, "willpower": true,
}

type StatBonus struct {
	Stat   string `yaml:"stat"`
	Amount int    `yaml:"amount"`
}

// Predicate unlocks an achievement once the named metric reaches Threshold.
type Predicate struct {
	Metric    string `yaml:"metric"`
	Threshold int64  `yaml:"threshold"`
	Arg       string `yaml:"arg"`
}

type Achievement struct {
	Key          string     `yaml:"key"`
	Title        string     `yaml:"title"`
	Description  string     `yaml:"description"`
	Icon         string     `yaml:"icon"`
	Category     string     `yaml:"category"`
	Tier         string     `yaml:"tier"`
	XP           int64      `yaml:"xp"`
	Gold         int64      `yaml:"gold"`
	StatBonus    *StatBonus `yaml:"stat_bonus"`
	SpecialPower string     `yaml:"special_power"`
	When         Predicate  `yaml:"when"`
}

// Effect is what an item does. Consumables carry a Duration; gear effects
// last while the item is worn and may be scoped to a habit Category.
type Effect struct {
	Kind     string        `yaml:"kind"`
	Value    float64       `yaml:"value"`
	Duration time.Duration `yaml:"duration"`
	Category string        `yaml:"category"`
}

// Gear slots, in display order.
var Slots = []string{"weapon", "armor", "ring", "amulet", "head"}

// ValidSlot reports whether s names a gear slot.
func ValidSlot(s string) bool {
	for _, v := range Slots {
		if v == s {
			return true
		}
	}
	return false
}

type ShopItem struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Icon          string `yaml:"icon"`
	Rarity        string `yaml:"rarity"`
	Price         int64  `yaml:"price"`
	Category      string `yaml:"category"`
	LevelRequired int    `yaml:"level_required"`
	MaxStack      int    `yaml:"max_stack"`
	Slot          string `yaml:"slot"`
	Effect        Effect `yaml:"effect"`
}

// IsGear reports whether the item is worn in a slot instead of consumed.
func (it ShopItem) IsGear() bool { return it.Slot != "" }

// Catalog is immutable after Load; accessors hand out copies.
type Catalog struct {
	achievements []Achievement
	byKey        map[string]int
	items        []ShopItem
	byItemID     map[string]int
}

// Load parses the embedded catalogs.
func Load() (*Catalog, error) {
	return Parse(achievementsYAML, shopYAML)
}

// MustLoad is Load for program start-up, where a broken embedded catalog is a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from raw YAML documents. Either may be nil.
func Parse(achievementsDoc, shopDoc []byte) (*Catalog, error) {
	var a struct {
		Achievements []Achievement `yaml:"achievements"`
	}
	if err := yaml.Unmarshal(achievementsDoc, &a); err != nil {
		return nil, fmt.Errorf("parse achievements: %w", err)
	}
	var s struct {
		Items []ShopItem `yaml:"items"`
	}
	if err := yaml.Unmarshal(shopDoc, &s); err != nil {
		return nil, fmt.Errorf("parse shop: %w", err)
	}
	return New(a.Achievements, s.Items)
}

// New validates and wraps the given entries.
func New(achievements []Achievement, items []ShopItem) (*Catalog, error) {
	c := &Catalog{
		achievements: make([]Achievement, len(achievements)),
		byKey:        make(map[string]int, len(achievements)),
		items:        append([]ShopItem(nil), items...),
		byItemID:     make(map[string]int, len(items)),
	}
	for i, a := range achievements {
		c.achievements[i] = a.clone()
		if err := validateAchievement(a); err != nil {
			return nil, err
		}
		if _, dup := c.byKey[a.Key]; dup {
			return nil, fmt.Errorf("achievement %q: duplicate key", a.Key)
		}
		c.byKey[a.Key] = i
	}
	for i, it := range c.items {
		if err := validateItem(it); err != nil {
			return nil, err
		}
		if _, dup := c.byItemID[it.ID]; dup {
			return nil, fmt.Errorf("shop item %q: duplicate id", it.ID)
		}
		c.byItemID[it.ID] = i
	}
	return c, nil
}

func validateAchievement(a Achievement) error {
	if a.Key == "" {
		return fmt.Errorf("achievement %q: empty key", a.Title)
	}
	if !knownMetrics[a.When.Metric] {
		return fmt.Errorf("achievement %q: unknown metric %q", a.Key, a.When.Metric)
	}
	if metricsWithArg[a.When.Metric] && a.When.Arg == "" {
		return fmt.Errorf("achievement %q: metric %q needs an arg", a.Key, a.When.Metric)
	}
	if a.When.Metric == MetricStat && !statNames[a.When.Arg] {
		return fmt.Errorf("achievement %q: unknown stat %q", a.Key, a.When.Arg)
	}
	if a.XP < 0 || a.Gold < 0 {
		return fmt.Errorf("achievement %q: negative reward", a.Key)
	}
	if a.StatBonus != nil && (!statNames[a.StatBonus.Stat] || a.StatBonus.Amount < 0) {
		return fmt.Errorf("achievement %q: bad stat bonus", a.Key)
	}
	return nil
}

func validateItem(it ShopItem) error {
	if it.ID == "" {
		return fmt.Errorf("shop item %q: empty id", it.Name)
	}
	if it.Price < 0 {
		return fmt.Errorf("shop item %q: negative price", it.ID)
	}
	if it.MaxStack < 1 {
		return fmt.Errorf("shop item %q: max_stack must be at least 1", it.ID)
	}
	if it.IsGear() {
		return validateGear(it)
	}
	switch it.Effect.Kind {
	case "xp_multiplier", "gold_multiplier":
	default:
		return fmt.Errorf("shop item %q: unsupported effect %q", it.ID, it.Effect.Kind)
	}
	if it.Effect.Value <= 0 || it.Effect.Duration <= 0 {
		return fmt.Errorf("shop item %q: effect needs a positive value and duration", it.ID)
	}
	return nil
}

func validateGear(it ShopItem) error {
	if !ValidSlot(it.Slot) {
		return fmt.Errorf("shop item %q: unknown slot %q", it.ID, it.Slot)
	}
	if it.MaxStack != 1 {
		return fmt.Errorf("shop item %q: gear max_stack must be 1", it.ID)
	}
	if it.Effect.Kind != "category_xp_boost" {
		return fmt.Errorf("shop item %q: unsupported gear effect %q", it.ID, it.Effect.Kind)
	}
	if it.Effect.Category == "" || it.Effect.Value <= 0 || it.Effect.Duration != 0 {
		return fmt.Errorf("shop item %q: gear effect needs a category, a positive value and no duration", it.ID)
	}
	return nil
}

// Achievements returns the catalog in evaluation order.
func (c *Catalog) Achievements() []Achievement {
	out := make([]Achievement, len(c.achievements))
	for i, a := range c.achievements {
		out[i] = a.clone()
	}
	return out
}

func (c *Catalog) Achievement(key string) (Achievement, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return Achievement{}, false
	}
	return c.achievements[i].clone(), true
}

func (a Achievement) clone() Achievement {
	if a.StatBonus != nil {
		b := *a.StatBonus
		a.StatBonus = &b
	}
	return a
}

func (c *Catalog) Items() []ShopItem {
	return append([]ShopItem(nil), c.items...)
}

func (c *Catalog) Item(id string) (ShopItem, bool) {
	i, ok := c.byItemID[id]
	if !ok {
		return ShopItem{}, false
	}
	return c.items[i], true
}
