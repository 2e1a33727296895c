package engine

import (
	"context"
	"time"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
)

// read runs fn against the plain connection while holding the write lock,
// so a read never observes half of an operation. fn must not write.
func (s *Service) read(fn func(r *repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(newRepos(s.db))
}

type Status struct {
	Progress       storage.Progress
	Level          LevelProgress
	Rank           Rank
	Effects        []storage.Effect
	XPMultiplier   float64
	GoldMultiplier float64
	Unlocked       int
	Achievements   int
}

// Status creates the progress row on first use and repairs a stale cached
// level, so it runs in a transaction like the other writers.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	var st *Status
	err := s.inTx(ctx, func(r *repos) error {
		now := s.now()
		p, err := getProgress(ctx, r)
		if err != nil {
			return err
		}
		effects, err := r.effects.ListActive(ctx, now)
		if err != nil {
			return err
		}
		unlocked, err := r.unlocks.Unlocked(ctx)
		if err != nil {
			return err
		}
		total := 0
		if s.catalog != nil {
			total = len(s.catalog.Achievements())
		}
		st = &Status{
			Progress:       *p,
			Level:          LevelFromTotalExperience(p.TotalXP),
			Rank:           RankForLevel(p.Level),
			Effects:        effects,
			XPMultiplier:   product(EffectFactors(effects, EffectXPMultiplier, now)),
			GoldMultiplier: product(EffectFactors(effects, EffectGoldMultiplier, now)),
			Unlocked:       len(unlocked),
			Achievements:   total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func product(fs []float64) float64 {
	out := 1.0
	for _, f := range fs {
		out *= f
	}
	return out
}

type HabitView struct {
	storage.Habit
	Streak    int
	DoneToday bool
	DueToday  bool
}

// Habits lists every habit with its streak and today's state.
func (s *Service) Habits(ctx context.Context) ([]HabitView, error) {
	var out []HabitView
	err := s.read(func(r *repos) error {
		today := s.today()
		todayKey := DateKey(today)
		habits, err := r.habits.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, h := range habits {
			history, err := r.completions.ListByHabit(ctx, h.ID)
			if err != nil {
				return err
			}
			v := HabitView{Habit: h, Streak: CurrentStreak(history, today), DueToday: ScheduledOn(h, today)}
			for _, c := range history {
				if c.Date == todayKey && c.Completed {
					v.DoneToday = true
				}
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type GoalView struct {
	storage.Goal
	Steps []storage.GoalStep
}

func (s *Service) Goals(ctx context.Context) ([]GoalView, error) {
	var out []GoalView
	err := s.read(func(r *repos) error {
		goals, err := r.goals.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, g := range goals {
			steps, err := r.goals.ListSteps(ctx, g.ID)
			if err != nil {
				return err
			}
			out = append(out, GoalView{Goal: g, Steps: steps})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type AchievementView struct {
	catalog.Achievement
	Unlocked   bool
	UnlockedAt *time.Time
}

// Achievements lists the catalog in order with unlock state.
func (s *Service) Achievements(ctx context.Context) ([]AchievementView, error) {
	if s.catalog == nil {
		return nil, nil
	}
	var unlocked map[string]time.Time
	err := s.read(func(r *repos) error {
		var err error
		unlocked, err = r.unlocks.Unlocked(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	var out []AchievementView
	for _, a := range s.catalog.Achievements() {
		v := AchievementView{Achievement: a}
		if at, ok := unlocked[a.Key]; ok {
			t := at
			v.Unlocked = true
			v.UnlockedAt = &t
		}
		out = append(out, v)
	}
	return out, nil
}
