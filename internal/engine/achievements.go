package engine

import (
	"time"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
)

// Stats is the aggregate snapshot achievement predicates are checked against.
// Progress is shared with the reward code, so grants made during evaluation
// are visible to later predicates.
type Stats struct {
	Progress *storage.Progress

	MaxStreak               int
	StreaksAtLeast7         int
	HabitCompletions        int
	HardHabitCompletions    int
	CategoryCompletions     map[string]int
	HabitsCreated           int
	HabitCategories         int
	GoalsCreated            int
	GoalsCompleted          int
	HardGoalsCompleted      int
	GoalCategoryCompletions map[string]int
	GoalStepsCompleted      int
	DailyXP                 int64
	PerfectDays             int
	DistinctCategoriesToday int
	Purchases               int

	Unlocked map[string]time.Time
}

// Metric returns the current value of a predicate's metric.
func (s *Stats) Metric(p catalog.Predicate) int64 {
	switch p.Metric {
	case catalog.MetricMaxStreak:
		return int64(s.MaxStreak)
	case catalog.MetricStreaksAtLeast7:
		return int64(s.StreaksAtLeast7)
	case catalog.MetricHabitCompletions:
		return int64(s.HabitCompletions)
	case catalog.MetricHardHabitCompletions:
		return int64(s.HardHabitCompletions)
	case catalog.MetricCategoryCompletions:
		return int64(s.CategoryCompletions[normalizeCategory(p.Arg)])
	case catalog.MetricHabitsCreated:
		return int64(s.HabitsCreated)
	case catalog.MetricHabitCategories:
		return int64(s.HabitCategories)
	case catalog.MetricGoalsCreated:
		return int64(s.GoalsCreated)
	case catalog.MetricGoalsCompleted:
		return int64(s.GoalsCompleted)
	case catalog.MetricHardGoalsCompleted:
		return int64(s.HardGoalsCompleted)
	case catalog.MetricGoalCategoryCompletions:
		return int64(s.GoalCategoryCompletions[normalizeCategory(p.Arg)])
	case catalog.MetricGoalStepsCompleted:
		return int64(s.GoalStepsCompleted)
	case catalog.MetricDailyXP:
		return s.DailyXP
	case catalog.MetricPerfectDay:
		return int64(s.PerfectDays)
	case catalog.MetricDistinctCategoriesToday:
		return int64(s.DistinctCategoriesToday)
	case catalog.MetricPurchases:
		return int64(s.Purchases)
	case catalog.MetricAchievementsUnlocked:
		return int64(len(s.Unlocked))
	}

	if s.Progress == nil {
		return 0
	}
	switch p.Metric {
	case catalog.MetricLevel:
		return int64(s.Progress.Level)
	case catalog.MetricTotalXP:
		return s.Progress.TotalXP
	case catalog.MetricLifetimeGold:
		return s.Progress.LifetimeGold
	case catalog.MetricStat:
		st, _ := ParseStat(p.Arg)
		return int64(StatValue(s.Progress, st))
	case catalog.MetricMinStat:
		lowest := StatValue(s.Progress, AllStats[0])
		for _, st := range AllStats[1:] {
			if v := StatValue(s.Progress, st); v < lowest {
				lowest = v
			}
		}
		return int64(lowest)
	case catalog.MetricStatTotal:
		var total int
		for _, st := range AllStats {
			total += StatValue(s.Progress, st)
		}
		return int64(total)
	}
	return 0
}

// Unlock is one achievement granted by an evaluation.
type Unlock struct {
	Achievement catalog.Achievement
	At          time.Time
	Level       LevelChange
}

// Evaluator checks locked achievements in catalog order.
type Evaluator struct {
	registry []catalog.Achievement
}

func NewEvaluator(c *catalog.Catalog) *Evaluator {
	if c == nil {
		return &Evaluator{}
	}
	return &Evaluator{registry: c.Achievements()}
}

// Evaluate unlocks every achievement whose predicate holds and grants its
// fixed reward to stats.Progress. Grants can satisfy further predicates
// (level, XP, gold, stats, unlock count), so passes repeat until one
// unlocks nothing. Already unlocked keys are never revisited.
func (e *Evaluator) Evaluate(stats *Stats, now time.Time) []Unlock {
	if stats.Unlocked == nil {
		stats.Unlocked = map[string]time.Time{}
	}
	var out []Unlock
	for {
		before := len(out)
		for _, a := range e.registry {
			if _, already := stats.Unlocked[a.Key]; already {
				continue
			}
			if stats.Metric(a.When) < a.When.Threshold {
				continue
			}
			stats.Unlocked[a.Key] = now
			out = append(out, Unlock{Achievement: a, At: now, Level: grantAchievement(stats.Progress, a, now)})
		}
		if len(out) == before {
			return out
		}
	}
}

// grantAchievement applies a fixed reward; no streak or effect multipliers.
func grantAchievement(p *storage.Progress, a catalog.Achievement, now time.Time) LevelChange {
	if p == nil {
		return LevelChange{}
	}
	ch := AwardXP(p, a.XP, now)
	AwardGold(p, a.Gold)
	if a.StatBonus != nil {
		if st, ok := ParseStat(a.StatBonus.Stat); ok {
			AddStat(p, st, a.StatBonus.Amount)
		}
	}
	return ch
}
