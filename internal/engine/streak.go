package engine

import (
	"time"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
)

// DateLayout is the calendar-date format of completion records.
const DateLayout = "2006-01-02"

// DateKey formats t's calendar date in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// civil returns t's calendar date as midnight UTC so day arithmetic ignores DST.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CurrentStreak counts consecutive completed days ending today, or ending
// yesterday when today has no check-in yet.
func CurrentStreak(history []storage.Completion, today time.Time) int {
	done := make(map[string]bool, len(history))
	for _, c := range history {
		if c.Completed {
			done[c.Date] = true
		}
	}
	if len(done) == 0 {
		return 0
	}

	day := civil(today)
	if !done[DateKey(day)] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for done[DateKey(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// StreakMultiplier is the XP bonus for a streak that already includes today.
func StreakMultiplier(streak int) float64 {
	switch {
	case streak < 7:
		return 1.0
	case streak < 14:
		return 1.1
	case streak < 30:
		return 1.2
	case streak < 60:
		return 1.3
	case streak < 90:
		return 1.5
	default:
		return 2.0
	}
}

// Effect kinds granted by shop items. The first two come from consumables,
// EffectCategoryXPBoost from worn gear.
const (
	EffectXPMultiplier    = "xp_multiplier"
	EffectGoldMultiplier  = "gold_multiplier"
	EffectCategoryXPBoost = "category_xp_boost"
)

// EffectFactors returns the multiplier values of kind that are still live at now.
func EffectFactors(effects []storage.Effect, kind string, now time.Time) []float64 {
	var out []float64
	for _, e := range effects {
		if e.Kind != kind || !e.ExpiresAt.After(now) {
			continue
		}
		out = append(out, e.Value)
	}
	return out
}

// GearFactors returns the XP factors of worn gear that apply to category.
func GearFactors(gear []catalog.Effect, category string) []float64 {
	c := normalizeCategory(category)
	var out []float64
	for _, g := range gear {
		if g.Kind == EffectCategoryXPBoost && normalizeCategory(g.Category) == c {
			out = append(out, g.Value)
		}
	}
	return out
}
