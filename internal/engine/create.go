package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"goalquest/internal/storage"
)

var validate = validator.New()

type CreateHabitInput struct {
	Name           string     `validate:"required,max=200"`
	Description    string     `validate:"max=2000"`
	Category       string     `validate:"max=50"`
	Difficulty     Difficulty `validate:"gte=0,lte=3"`
	Frequency      Frequency  `validate:"omitempty,oneof=daily weekdays weekends specific custom"`
	FrequencyDays  []int      `validate:"required_if=Frequency specific,dive,gte=0,lte=6"`
	CustomInterval int        `validate:"required_if=Frequency custom,gte=0,lte=365"`
	Priority       bool
}

type CreateGoalInput struct {
	Title       string     `validate:"required,max=200"`
	Description string     `validate:"max=2000"`
	Category    string     `validate:"max=50"`
	Difficulty  Difficulty `validate:"gte=0,lte=3"`
	Deadline    *time.Time
	Steps       []string `validate:"dive,required,max=200"`
}

type CreateResult struct {
	ID       int64
	Unlocked []Unlock
}

func validateInput(kind string, in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid %s: %w", kind, err)
	}
	return nil
}

func (s *Service) CreateHabit(ctx context.Context, in CreateHabitInput) (*CreateResult, error) {
	name, err := normalizeTitle(in.Name)
	if err != nil {
		return nil, err
	}
	in.Name = name
	if err := validateInput("habit", in); err != nil {
		return nil, err
	}
	freq := in.Frequency
	if freq == "" {
		freq = FrequencyDaily
	}
	var days []int
	if freq == FrequencySpecific {
		if len(in.FrequencyDays) == 0 {
			return nil, InvalidScheduleError{Reason: "specific frequency needs at least one weekday"}
		}
		days = in.FrequencyDays
	}
	interval := 0
	if freq == FrequencyCustom {
		interval = in.CustomInterval
	}

	var res *CreateResult
	err = s.inTx(ctx, func(r *repos) error {
		now := s.now()
		id, err := r.habits.Insert(ctx, storage.HabitInsert{
			Name:           name,
			Description:    strings.TrimSpace(in.Description),
			Category:       categoryOrDefault(in.Category),
			Difficulty:     int(in.Difficulty.OrDefault()),
			Frequency:      string(freq),
			FrequencyDays:  days,
			CustomInterval: interval,
			Priority:       in.Priority,
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}
		p, err := getProgress(ctx, r)
		if err != nil {
			return err
		}
		unlocks, err := s.settle(ctx, r, p, now)
		if err != nil {
			return err
		}
		res = &CreateResult{ID: id, Unlocked: unlocks}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) CreateGoal(ctx context.Context, in CreateGoalInput) (*CreateResult, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	in.Title = title
	if err := validateInput("goal", in); err != nil {
		return nil, err
	}

	var res *CreateResult
	err = s.inTx(ctx, func(r *repos) error {
		now := s.now()
		id, err := r.goals.Insert(ctx, storage.GoalInsert{
			Title:       title,
			Description: strings.TrimSpace(in.Description),
			Category:    categoryOrDefault(in.Category),
			Difficulty:  int(in.Difficulty.OrDefault()),
			Deadline:    in.Deadline,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}
		for _, step := range in.Steps {
			if _, err := r.goals.InsertStep(ctx, id, strings.TrimSpace(step)); err != nil {
				return err
			}
		}
		p, err := getProgress(ctx, r)
		if err != nil {
			return err
		}
		unlocks, err := s.settle(ctx, r, p, now)
		if err != nil {
			return err
		}
		res = &CreateResult{ID: id, Unlocked: unlocks}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AddGoalStep appends a step. The goal's stored progress is left as is until
// the next step completion recomputes it.
func (s *Service) AddGoalStep(ctx context.Context, goalID int64, title string) (int64, error) {
	t, err := normalizeTitle(title)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.inTx(ctx, func(r *repos) error {
		g, err := r.goals.Get(ctx, goalID)
		if err != nil {
			return err
		}
		if g == nil {
			return NotFoundError{Kind: "goal", ID: goalID}
		}
		if g.Completed {
			return GoalCompletedError{GoalID: goalID}
		}
		id, err = r.goals.InsertStep(ctx, goalID, t)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func categoryOrDefault(category string) string {
	c := normalizeCategory(category)
	if c == "" {
		return "personal"
	}
	return c
}
