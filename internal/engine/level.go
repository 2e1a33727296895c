package engine

import "math"

const (
	// BaseXP is the scale of the level curve.
	BaseXP = 1000.0

	// GrowthRate compounds the per-level XP requirement.
	GrowthRate = 1.05

	// MaxLevel caps the displayed level; total XP keeps growing past it.
	MaxLevel = 100
)

// ExperienceForLevel returns the XP needed to advance from level-1 to level.
// Levels 1 and below cost nothing.
func ExperienceForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(math.Floor(BaseXP * math.Pow(GrowthRate, float64(level-1))))
}

// TotalExperienceForLevel is the cumulative XP at which level is reached.
func TotalExperienceForLevel(level int) int64 {
	var total int64
	for l := 2; l <= level; l++ {
		total += ExperienceForLevel(l)
	}
	return total
}

// LevelProgress is the decomposition of a total XP value.
type LevelProgress struct {
	Level       int
	XPIntoLevel int64
	XPForNext   int64
}

// LevelFromTotalExperience walks the curve until the remainder no longer covers
// the next step. At MaxLevel it stops and leaves the surplus in XPIntoLevel.
func LevelFromTotalExperience(totalXP int64) LevelProgress {
	if totalXP < 0 {
		totalXP = 0
	}
	level := 1
	remaining := totalXP
	for level < MaxLevel {
		next := ExperienceForLevel(level + 1)
		if remaining < next {
			return LevelProgress{Level: level, XPIntoLevel: remaining, XPForNext: next}
		}
		remaining -= next
		level++
	}
	return LevelProgress{Level: MaxLevel, XPIntoLevel: remaining, XPForNext: ExperienceForLevel(MaxLevel + 1)}
}

// LevelForTotalXP is the level component of LevelFromTotalExperience.
func LevelForTotalXP(totalXP int64) int {
	return LevelFromTotalExperience(totalXP).Level
}

// Rank is a cosmetic title band over levels. MaxLevel 0 means open-ended.
type Rank struct {
	Title    string
	Color    string
	MinLevel int
	MaxLevel int
}

var ranks = []Rank{
	{Title: "Beginner", Color: "#9ca3af", MinLevel: 1, MaxLevel: 10},
	{Title: "Novice Hunter", Color: "#22c55e", MinLevel: 11, MaxLevel: 25},
	{Title: "Skilled Hunter", Color: "#3b82f6", MinLevel: 26, MaxLevel: 40},
	{Title: "Elite Hunter", Color: "#a855f7", MinLevel: 41, MaxLevel: 60},
	{Title: "Master Hunter", Color: "#f97316", MinLevel: 61, MaxLevel: 80},
	{Title: "S-Rank Hunter", Color: "#ef4444", MinLevel: 81, MaxLevel: 99},
	{Title: "Shadow Monarch", Color: "#eab308", MinLevel: 100},
}

// Ranks returns every rank band, lowest first.
func Ranks() []Rank {
	return append([]Rank(nil), ranks...)
}

// RankForLevel returns the band containing level. Levels below 1 map to the first band.
func RankForLevel(level int) Rank {
	for _, r := range ranks {
		if level <= r.MaxLevel || r.MaxLevel == 0 {
			return r
		}
	}
	return ranks[len(ranks)-1]
}
