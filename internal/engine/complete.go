package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
)

// HabitCompletion is everything CompleteHabit reads.
type HabitCompletion struct {
	Habit   storage.Habit
	History []storage.Completion
	Effects []storage.Effect
	// Gear holds the effects of worn items.
	Gear []catalog.Effect
	// Today is the current instant in the user's timezone; its date keys the record.
	Today time.Time
}

// HabitReward is what one check-in paid out.
type HabitReward struct {
	Record           storage.Completion
	Streak           int
	StreakMultiplier float64
	GearMultiplier   float64
	XP               int64
	Gold             int64
	Stat             Stat
	Level            LevelChange
}

// CompleteHabit applies one habit check-in to p. It fails with
// AlreadyCompletedError, leaving p untouched, if History already holds a
// record for today's date.
//
// XP is floor(base * streak multiplier * live xp effects * matching gear);
// gold is floor(base * live gold effects). The streak includes today.
func CompleteHabit(p *storage.Progress, in HabitCompletion) (*HabitReward, error) {
	date := DateKey(in.Today)
	for _, c := range in.History {
		if c.Date == date {
			return nil, AlreadyCompletedError{HabitID: in.Habit.ID, Date: date}
		}
	}

	d := Difficulty(in.Habit.Difficulty).OrDefault()
	rec := storage.Completion{
		HabitID:    in.Habit.ID,
		Date:       date,
		Completed:  true,
		Difficulty: int(d),
		Category:   normalizeCategory(in.Habit.Category),
		CreatedAt:  in.Today.UTC(),
	}

	history := make([]storage.Completion, 0, len(in.History)+1)
	history = append(history, in.History...)
	history = append(history, rec)
	streak := CurrentStreak(history, in.Today)
	mult := StreakMultiplier(streak)

	gear := GearFactors(in.Gear, in.Habit.Category)
	xpFactors := append([]float64{mult}, EffectFactors(in.Effects, EffectXPMultiplier, in.Today)...)
	xpFactors = append(xpFactors, gear...)
	xp := ApplyMultipliers(HabitXP(d), xpFactors...)
	gold := ApplyMultipliers(HabitGold(d), EffectFactors(in.Effects, EffectGoldMultiplier, in.Today)...)

	level := AwardXP(p, xp, in.Today)
	AwardGold(p, gold)
	stat := StatForCategory(in.Habit.Category)
	AddStat(p, stat, 1)

	rec.XPAwarded = xp
	rec.GoldAwarded = gold
	return &HabitReward{
		Record:           rec,
		Streak:           streak,
		StreakMultiplier: mult,
		GearMultiplier:   product(gear),
		XP:               xp,
		Gold:             gold,
		Stat:             stat,
		Level:            level,
	}, nil
}

// GoalOutcome is the effect of one progress update.
type GoalOutcome struct {
	Progress      int
	JustCompleted bool
	XP            int64
	Gold          int64
	Level         LevelChange
}

// ClampProgress bounds a goal percentage to [0, 100].
func ClampProgress(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// ApplyGoalProgress sets g's progress. Reaching 100 completes the goal and
// pays floor(base * live effects) once; completed goals are terminal and
// later updates change nothing.
func ApplyGoalProgress(p *storage.Progress, g *storage.Goal, progress int, effects []storage.Effect, now time.Time) GoalOutcome {
	if g.Completed {
		return GoalOutcome{Progress: g.Progress, Level: LevelChange{Before: p.Level, After: p.Level}}
	}

	g.Progress = ClampProgress(progress)
	if g.Progress < 100 {
		return GoalOutcome{Progress: g.Progress, Level: LevelChange{Before: p.Level, After: p.Level}}
	}

	d := Difficulty(g.Difficulty).OrDefault()
	xp := ApplyMultipliers(GoalXP(d), EffectFactors(effects, EffectXPMultiplier, now)...)
	gold := ApplyMultipliers(GoalGold(d), EffectFactors(effects, EffectGoldMultiplier, now)...)
	level := AwardXP(p, xp, now)
	AwardGold(p, gold)

	date := DateKey(now)
	g.Completed = true
	g.CompletedOn = &date
	g.XPAwarded = xp
	g.GoldAwarded = gold
	return GoalOutcome{Progress: 100, JustCompleted: true, XP: xp, Gold: gold, Level: level}
}

type CompleteResult struct {
	HabitID          int64
	Date             string
	XPAwarded        int64
	GoldAwarded      int64
	Streak           int
	StreakMultiplier float64
	GearMultiplier   float64
	Stat             Stat
	LevelBefore      int
	NewLevel         int
	LeveledUp        bool
	// AlreadyDone is set when the habit was already checked in today; nothing changed.
	AlreadyDone bool
	Unlocked    []Unlock
}

// CompleteHabit checks a habit in for today.
func (s *Service) CompleteHabit(ctx context.Context, habitID int64) (*CompleteResult, error) {
	var res *CompleteResult
	err := s.inTx(ctx, func(r *repos) error {
		today := s.today()
		p, err := getProgress(ctx, r)
		if err != nil {
			return err
		}
		levelBefore := p.Level

		h, err := r.habits.Get(ctx, habitID)
		if err != nil {
			return err
		}
		if h == nil {
			return NotFoundError{Kind: "habit", ID: habitID}
		}
		if !h.Active {
			return HabitPausedError{HabitID: habitID}
		}

		history, err := r.completions.ListByHabit(ctx, habitID)
		if err != nil {
			return err
		}
		effects, err := r.effects.ListActive(ctx, today)
		if err != nil {
			return err
		}
		gear, err := s.wornEffects(ctx, r)
		if err != nil {
			return err
		}

		reward, err := CompleteHabit(p, HabitCompletion{Habit: *h, History: history, Effects: effects, Gear: gear, Today: today})
		var dup AlreadyCompletedError
		if errors.As(err, &dup) {
			s.logf("habit %d already completed on %s; ignoring", habitID, dup.Date)
			res = &CompleteResult{
				HabitID:     habitID,
				Date:        dup.Date,
				Streak:      CurrentStreak(history, today),
				Stat:        StatForCategory(h.Category),
				LevelBefore: levelBefore,
				NewLevel:    levelBefore,
				AlreadyDone: true,
			}
			return nil
		}
		if err != nil {
			return err
		}

		inserted, err := r.completions.Insert(ctx, reward.Record)
		if err != nil {
			return err
		}
		if !inserted {
			return AlreadyCompletedError{HabitID: habitID, Date: reward.Record.Date}
		}

		unlocks, err := s.settle(ctx, r, p, today)
		if err != nil {
			return err
		}
		if p.Level > levelBefore {
			s.logf("level up: %d -> %d", levelBefore, p.Level)
		}

		res = &CompleteResult{
			HabitID:          habitID,
			Date:             reward.Record.Date,
			XPAwarded:        reward.XP,
			GoldAwarded:      reward.Gold,
			Streak:           reward.Streak,
			StreakMultiplier: reward.StreakMultiplier,
			GearMultiplier:   reward.GearMultiplier,
			Stat:             reward.Stat,
			LevelBefore:      levelBefore,
			NewLevel:         p.Level,
			LeveledUp:        p.Level > levelBefore,
			Unlocked:         unlocks,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

type GoalResult struct {
	GoalID        int64
	Progress      int
	Completed     bool
	JustCompleted bool
	XPAwarded     int64
	GoldAwarded   int64
	LevelBefore   int
	NewLevel      int
	LeveledUp     bool
	Unlocked      []Unlock
}

// UpdateGoalProgress sets a goal's progress, clamped to 0-100.
func (s *Service) UpdateGoalProgress(ctx context.Context, goalID int64, progress int) (*GoalResult, error) {
	var res *GoalResult
	err := s.inTx(ctx, func(r *repos) error {
		var err error
		res, err = s.updateGoal(ctx, r, goalID, func(*storage.Goal) (int, error) { return progress, nil })
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CompleteGoalStep marks a step done and moves its goal to
// floor(done*100/total). Finishing the last step completes the goal.
func (s *Service) CompleteGoalStep(ctx context.Context, stepID int64) (*GoalResult, error) {
	var res *GoalResult
	err := s.inTx(ctx, func(r *repos) error {
		step, err := r.goals.GetStep(ctx, stepID)
		if err != nil {
			return err
		}
		if step == nil {
			return NotFoundError{Kind: "goal step", ID: stepID}
		}
		if _, err := r.goals.MarkStepDone(ctx, stepID, s.now()); err != nil {
			return err
		}
		res, err = s.updateGoal(ctx, r, step.GoalID, func(g *storage.Goal) (int, error) {
			steps, err := r.goals.ListSteps(ctx, g.ID)
			if err != nil {
				return 0, err
			}
			return stepProgress(steps), nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func stepProgress(steps []storage.GoalStep) int {
	if len(steps) == 0 {
		return 0
	}
	done := 0
	for _, st := range steps {
		if st.Completed {
			done++
		}
	}
	return done * 100 / len(steps)
}

func (s *Service) updateGoal(ctx context.Context, r *repos, goalID int64, target func(*storage.Goal) (int, error)) (*GoalResult, error) {
	today := s.today()
	p, err := getProgress(ctx, r)
	if err != nil {
		return nil, err
	}
	levelBefore := p.Level

	g, err := r.goals.Get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, NotFoundError{Kind: "goal", ID: goalID}
	}
	progress, err := target(g)
	if err != nil {
		return nil, err
	}
	effects, err := r.effects.ListActive(ctx, today)
	if err != nil {
		return nil, err
	}

	wasCompleted := g.Completed
	out := ApplyGoalProgress(p, g, progress, effects, today)
	if !wasCompleted {
		if err := r.goals.UpdateProgress(ctx, g.ID, out.Progress); err != nil {
			return nil, err
		}
	}
	if out.JustCompleted {
		ok, err := r.goals.MarkCompleted(ctx, g.ID, *g.CompletedOn, out.XP, out.Gold)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("goal %d completed concurrently", g.ID)
		}
		s.logf("goal %d completed (+%d xp, +%d gold)", g.ID, out.XP, out.Gold)
	}

	unlocks, err := s.settle(ctx, r, p, today)
	if err != nil {
		return nil, err
	}
	if p.Level > levelBefore {
		s.logf("level up: %d -> %d", levelBefore, p.Level)
	}
	return &GoalResult{
		GoalID:        g.ID,
		Progress:      g.Progress,
		Completed:     g.Completed,
		JustCompleted: out.JustCompleted,
		XPAwarded:     out.XP,
		GoldAwarded:   out.Gold,
		LevelBefore:   levelBefore,
		NewLevel:      p.Level,
		LeveledUp:     p.Level > levelBefore,
		Unlocked:      unlocks,
	}, nil
}
