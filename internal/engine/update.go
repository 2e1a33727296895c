package engine

import (
	"context"
)

// SetHabitActive pauses or resumes a habit. Paused habits keep their history
// but do not count toward streak or perfect-day achievements.
func (s *Service) SetHabitActive(ctx context.Context, id int64, active bool) error {
	return s.inTx(ctx, func(r *repos) error {
		h, err := r.habits.Get(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return NotFoundError{Kind: "habit", ID: id}
		}
		return r.habits.SetActive(ctx, id, active)
	})
}

// ToggleHabit flips a habit's active flag and returns the new value.
func (s *Service) ToggleHabit(ctx context.Context, id int64) (bool, error) {
	var active bool
	err := s.inTx(ctx, func(r *repos) error {
		h, err := r.habits.Get(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return NotFoundError{Kind: "habit", ID: id}
		}
		active = !h.Active
		return r.habits.SetActive(ctx, id, active)
	})
	return active, err
}

// UpdateHabitDifficulty changes future rewards only; past records keep the
// difficulty they were paid at.
func (s *Service) UpdateHabitDifficulty(ctx context.Context, id int64, d Difficulty) error {
	if !d.IsValid() {
		return InvalidDifficultyError{Value: int(d)}
	}
	return s.inTx(ctx, func(r *repos) error {
		h, err := r.habits.Get(ctx, id)
		if err != nil {
			return err
		}
		if h == nil {
			return NotFoundError{Kind: "habit", ID: id}
		}
		return r.habits.UpdateDifficulty(ctx, id, int(d))
	})
}
