package engine

import "testing"

func TestExperienceForLevel(t *testing.T) {
	if got := ExperienceForLevel(1); got != 0 {
		t.Fatalf("ExperienceForLevel(1)=%d, want 0", got)
	}
	if got := ExperienceForLevel(0); got != 0 {
		t.Fatalf("ExperienceForLevel(0)=%d, want 0", got)
	}
	if got := ExperienceForLevel(2); got != 1050 {
		t.Fatalf("ExperienceForLevel(2)=%d, want 1050", got)
	}
	if got := ExperienceForLevel(3); got != 1102 {
		t.Fatalf("ExperienceForLevel(3)=%d, want 1102", got)
	}
	for n := 1; n <= 150; n++ {
		if ExperienceForLevel(n+1) <= ExperienceForLevel(n) {
			t.Fatalf("curve not increasing at %d", n)
		}
	}
}

func TestLevelFromZero(t *testing.T) {
	got := LevelFromTotalExperience(0)
	want := LevelProgress{Level: 1, XPIntoLevel: 0, XPForNext: ExperienceForLevel(2)}
	if got != want {
		t.Fatalf("LevelFromTotalExperience(0)=%+v, want %+v", got, want)
	}
}

func TestLevelThresholds(t *testing.T) {
	for l := 1; l <= MaxLevel; l++ {
		total := TotalExperienceForLevel(l)
		got := LevelFromTotalExperience(total)
		want := LevelProgress{Level: l, XPIntoLevel: 0, XPForNext: ExperienceForLevel(l + 1)}
		if got != want {
			t.Fatalf("level %d at %d xp: got %+v, want %+v", l, total, got, want)
		}
		if l > 1 {
			if below := LevelForTotalXP(total - 1); below != l-1 {
				t.Fatalf("LevelForTotalXP(%d)=%d, want %d", total-1, below, l-1)
			}
		}
	}
}

func TestLevelCap(t *testing.T) {
	got := LevelFromTotalExperience(TotalExperienceForLevel(250))
	if got.Level != MaxLevel {
		t.Fatalf("level=%d, want %d", got.Level, MaxLevel)
	}
	if got.XPForNext != ExperienceForLevel(101) {
		t.Fatalf("XPForNext=%d, want %d", got.XPForNext, ExperienceForLevel(101))
	}
	want := TotalExperienceForLevel(250) - TotalExperienceForLevel(MaxLevel)
	if got.XPIntoLevel != want {
		t.Fatalf("XPIntoLevel=%d, want %d", got.XPIntoLevel, want)
	}
	if l := LevelForTotalXP(1 << 50); l != MaxLevel {
		t.Fatalf("huge xp level=%d", l)
	}
}

func TestRankForLevel(t *testing.T) {
	cases := map[int]string{
		1: "Beginner", 10: "Beginner", 11: "Novice Hunter", 25: "Novice Hunter",
		26: "Skilled Hunter", 41: "Elite Hunter", 61: "Master Hunter",
		81: "S-Rank Hunter", 99: "S-Rank Hunter", 100: "Shadow Monarch", 500: "Shadow Monarch",
	}
	for level, title := range cases {
		if got := RankForLevel(level).Title; got != title {
			t.Fatalf("RankForLevel(%d)=%q, want %q", level, got, title)
		}
	}

	for level := 1; level <= 1000; level++ {
		matches := 0
		for _, r := range Ranks() {
			if level >= r.MinLevel && (r.MaxLevel == 0 || level <= r.MaxLevel) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("level %d matches %d rank bands", level, matches)
		}
	}
}
