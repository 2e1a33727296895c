package engine

import (
	"strings"

	"goalquest/internal/storage"
)

type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

func (d Difficulty) IsValid() bool {
	return d >= DifficultyEasy && d <= DifficultyHard
}

// OrDefault returns d, or DifficultyEasy when d is out of range.
func (d Difficulty) OrDefault() Difficulty {
	if !d.IsValid() {
		return DifficultyEasy
	}
	return d
}

func (d Difficulty) String() string {
	switch d.OrDefault() {
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	default:
		return "Easy"
	}
}

// Stat is one of the six character attributes raised by completions.
type Stat int

const (
	StatStrength Stat = iota
	StatIntelligence
	StatVitality
	StatAgility
	StatSense
	StatWillpower
)

// AllStats lists the stats in display order.
var AllStats = []Stat{StatStrength, StatIntelligence, StatVitality, StatAgility, StatSense, StatWillpower}

func (s Stat) String() string {
	switch s {
	case StatStrength:
		return "strength"
	case StatIntelligence:
		return "intelligence"
	case StatVitality:
		return "vitality"
	case StatAgility:
		return "agility"
	case StatSense:
		return "sense"
	default:
		return "willpower"
	}
}

// DefaultStat receives completions from categories with no mapping.
const DefaultStat = StatWillpower

var categoryStats = map[string]Stat{
	"fitness":      StatStrength,
	"learning":     StatIntelligence,
	"work":         StatIntelligence,
	"creative":     StatIntelligence,
	"health":       StatVitality,
	"productivity": StatAgility,
	"social":       StatAgility,
	"mindfulness":  StatSense,
	"finance":      StatSense,
	"personal":     StatWillpower,
}

// Categories lists the known habit/goal categories.
var Categories = []string{
	"fitness", "health", "learning", "mindfulness", "productivity",
	"social", "work", "creative", "finance", "personal",
}

// StatForCategory maps a category to its governing stat.
func StatForCategory(category string) Stat {
	if s, ok := categoryStats[normalizeCategory(category)]; ok {
		return s
	}
	return DefaultStat
}

func normalizeCategory(category string) string {
	return strings.TrimSpace(strings.ToLower(category))
}

// StatValue reads one stat off the progress record.
func StatValue(p *storage.Progress, s Stat) int {
	switch s {
	case StatStrength:
		return p.Strength
	case StatIntelligence:
		return p.Intelligence
	case StatVitality:
		return p.Vitality
	case StatAgility:
		return p.Agility
	case StatSense:
		return p.Sense
	default:
		return p.Willpower
	}
}

// AddStat raises one stat. Negative amounts are ignored.
func AddStat(p *storage.Progress, s Stat, amount int) {
	if amount <= 0 {
		return
	}
	switch s {
	case StatStrength:
		p.Strength += amount
	case StatIntelligence:
		p.Intelligence += amount
	case StatVitality:
		p.Vitality += amount
	case StatAgility:
		p.Agility += amount
	case StatSense:
		p.Sense += amount
	default:
		p.Willpower += amount
	}
}
