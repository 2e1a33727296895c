package engine

import (
	"strconv"
	"strings"
)

// ParseDifficulty accepts 1-3 or easy/medium/hard.
func ParseDifficulty(input string) (Difficulty, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "", "easy", "e":
		return DifficultyEasy, nil
	case "medium", "med", "m":
		return DifficultyMedium, nil
	case "hard", "h":
		return DifficultyHard, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, InvalidDifficultyError{Input: input}
	}
	d := Difficulty(n)
	if !d.IsValid() {
		return 0, InvalidDifficultyError{Value: n, Input: input}
	}
	return d, nil
}

// ParseStat parses a stat name. Unknown names fall back to DefaultStat.
func ParseStat(input string) (Stat, bool) {
	s := strings.TrimSpace(strings.ToLower(input))
	for _, st := range AllStats {
		if st.String() == s {
			return st, true
		}
	}
	switch s {
	case "str":
		return StatStrength, true
	case "int":
		return StatIntelligence, true
	case "vit":
		return StatVitality, true
	case "agi":
		return StatAgility, true
	case "sen":
		return StatSense, true
	case "wil":
		return StatWillpower, true
	}
	return DefaultStat, false
}

// ParseFrequencyDays parses "mon,wed,fri" or "0,2,4" into weekday indexes (0=Mon).
func ParseFrequencyDays(input string) ([]int, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	names := map[string]int{"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6}
	seen := map[int]bool{}
	var out []int
	for _, part := range strings.Split(input, ",") {
		p := strings.TrimSpace(strings.ToLower(part))
		if len(p) > 3 {
			p = p[:3]
		}
		d, ok := names[p]
		if !ok {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 || n > 6 {
				return nil, InvalidScheduleError{Reason: "unknown weekday " + strconv.Quote(strings.TrimSpace(part))}
			}
			d = n
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out, nil
}
