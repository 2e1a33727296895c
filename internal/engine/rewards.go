package engine

import (
	"math"
	"math/big"
	"strconv"
	"time"

	"goalquest/internal/storage"
)

var (
	habitXP   = map[Difficulty]int64{DifficultyEasy: 50, DifficultyMedium: 100, DifficultyHard: 300}
	habitGold = map[Difficulty]int64{DifficultyEasy: 5, DifficultyMedium: 10, DifficultyHard: 25}
	goalXP    = map[Difficulty]int64{DifficultyEasy: 1000, DifficultyMedium: 2000, DifficultyHard: 3000}
	goalGold  = map[Difficulty]int64{DifficultyEasy: 50, DifficultyMedium: 100, DifficultyHard: 200}
)

// HabitXP is the base XP for a habit check-in. Unknown tiers pay the easy rate.
func HabitXP(d Difficulty) int64 { return habitXP[d.OrDefault()] }

func HabitGold(d Difficulty) int64 { return habitGold[d.OrDefault()] }

func GoalXP(d Difficulty) int64 { return goalXP[d.OrDefault()] }

func GoalGold(d Difficulty) int64 { return goalGold[d.OrDefault()] }

// ApplyMultipliers returns floor(base * f1 * f2 * ...).
//
// Factors are taken at their shortest decimal representation and multiplied
// as exact rationals, so 100 * 1.1 is 110 and not 109. Truncation happens once.
// Results past the int64 range saturate at math.MaxInt64.
func ApplyMultipliers(base int64, factors ...float64) int64 {
	if base <= 0 {
		return 0
	}
	r := new(big.Rat).SetInt64(base)
	for _, f := range factors {
		if f == 1 {
			continue
		}
		if f <= 0 {
			return 0
		}
		fr, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'f', -1, 64))
		if !ok {
			fr = new(big.Rat).SetFloat64(f)
		}
		r.Mul(r, fr)
	}
	q := new(big.Int).Div(r.Num(), r.Denom())
	if !q.IsInt64() {
		return math.MaxInt64
	}
	return q.Int64()
}

// LevelChange reports how an award moved the cached level.
type LevelChange struct {
	Before    int
	After     int
	LeveledUp bool
}

// AwardXP adds xp to the running total and recomputes the cached level.
// A single award may cross several levels.
func AwardXP(p *storage.Progress, xp int64, now time.Time) LevelChange {
	before := p.Level
	if xp > 0 {
		p.TotalXP = addSat(p.TotalXP, xp)
	}
	p.Level = LevelForTotalXP(p.TotalXP)
	ch := LevelChange{Before: before, After: p.Level, LeveledUp: p.Level > before}
	if ch.LeveledUp {
		t := now.UTC()
		p.LastLevelUp = &t
	}
	return ch
}

// AwardGold credits spendable and lifetime gold.
func AwardGold(p *storage.Progress, gold int64) {
	if gold <= 0 {
		return
	}
	p.CurrentGold = addSat(p.CurrentGold, gold)
	p.LifetimeGold = addSat(p.LifetimeGold, gold)
}

// addSat adds a non-negative b to a, stopping at math.MaxInt64.
func addSat(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// SyncLevel repairs a cached level that drifted from total XP.
func SyncLevel(p *storage.Progress) bool {
	want := LevelForTotalXP(p.TotalXP)
	if p.Level == want {
		return false
	}
	p.Level = want
	return true
}

// BaseStat is the starting value of every stat.
const BaseStat = 10
