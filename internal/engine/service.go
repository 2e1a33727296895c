package engine

import (
	"context"
	"database/sql"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
)

// Service runs the reward core against the SQLite store. Every mutating call
// holds mu and runs in a single transaction.
type Service struct {
	db      *sql.DB
	catalog *catalog.Catalog
	eval    *Evaluator
	mu      sync.Mutex

	// Now is the clock; tests replace it.
	Now func() time.Time
	// Location decides which calendar day "today" is.
	Location *time.Location
	Logger   *log.Logger
}

func NewService(db *sql.DB, cat *catalog.Catalog) *Service {
	return &Service{
		db:       db,
		catalog:  cat,
		eval:     NewEvaluator(cat),
		Now:      time.Now,
		Location: time.Local,
		Logger:   log.New(io.Discard, "", 0),
	}
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// repos binds every repository to one connection or transaction.
type repos struct {
	progress    *storage.ProgressRepo
	habits      *storage.HabitRepo
	completions *storage.CompletionRepo
	goals       *storage.GoalRepo
	unlocks     *storage.AchievementRepo
	effects     *storage.EffectRepo
	inventory   *storage.InventoryRepo
	equipment   *storage.EquipmentRepo
}

func newRepos(db storage.DBTX) *repos {
	return &repos{
		progress:    storage.NewProgressRepo(db),
		habits:      storage.NewHabitRepo(db),
		completions: storage.NewCompletionRepo(db),
		goals:       storage.NewGoalRepo(db),
		unlocks:     storage.NewAchievementRepo(db),
		effects:     storage.NewEffectRepo(db),
		inventory:   storage.NewInventoryRepo(db),
		equipment:   storage.NewEquipmentRepo(db),
	}
}

func (s *Service) inTx(ctx context.Context, fn func(r *repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(newRepos(tx))
	})
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// today is now in the configured location.
func (s *Service) today() time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return s.now().In(loc)
}

func (s *Service) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ErrTitleRequired
	}
	return t, nil
}

// getProgress loads the singleton row and repairs a stale cached level.
func getProgress(ctx context.Context, r *repos) (*storage.Progress, error) {
	p, err := r.progress.GetOrCreateMain(ctx)
	if err != nil {
		return nil, err
	}
	if SyncLevel(p) {
		if err := r.progress.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// settle evaluates achievements against the current state, persists new
// unlocks and then the progress row.
func (s *Service) settle(ctx context.Context, r *repos, p *storage.Progress, now time.Time) ([]Unlock, error) {
	stats, err := s.gatherStats(ctx, r, p, now)
	if err != nil {
		return nil, err
	}
	unlocks := s.eval.Evaluate(stats, now)
	for _, u := range unlocks {
		if err := r.unlocks.Insert(ctx, u.Achievement.Key, u.At); err != nil {
			return nil, err
		}
		s.logf("achievement unlocked: %s (+%d xp, +%d gold)", u.Achievement.Key, u.Achievement.XP, u.Achievement.Gold)
		if u.Level.LeveledUp {
			s.logf("level up: %d -> %d", u.Level.Before, u.Level.After)
		}
	}
	if err := r.progress.Update(ctx, p); err != nil {
		return nil, err
	}
	return unlocks, nil
}

func (s *Service) gatherStats(ctx context.Context, r *repos, p *storage.Progress, now time.Time) (*Stats, error) {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc)
	todayKey := DateKey(today)

	st := &Stats{Progress: p}
	var err error
	if st.Unlocked, err = r.unlocks.Unlocked(ctx); err != nil {
		return nil, err
	}

	habits, err := r.habits.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	st.HabitsCreated = len(habits)
	if st.HabitCategories, err = r.habits.CountCategories(ctx); err != nil {
		return nil, err
	}

	completedByDate := map[string]map[int64]bool{}
	var active []storage.Habit
	for _, h := range habits {
		history, err := r.completions.ListByHabit(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range history {
			if !c.Completed {
				continue
			}
			if completedByDate[c.Date] == nil {
				completedByDate[c.Date] = map[int64]bool{}
			}
			completedByDate[c.Date][h.ID] = true
		}
		if !h.Active {
			continue
		}
		active = append(active, h)
		streak := CurrentStreak(history, today)
		if streak > st.MaxStreak {
			st.MaxStreak = streak
		}
		if streak >= 7 {
			st.StreaksAtLeast7++
		}
	}
	st.PerfectDays = countPerfectDays(active, completedByDate, loc)

	if st.HabitCompletions, err = r.completions.CountCompleted(ctx); err != nil {
		return nil, err
	}
	if st.HardHabitCompletions, err = r.completions.CountCompletedWithDifficulty(ctx, int(DifficultyHard)); err != nil {
		return nil, err
	}
	byCat, err := r.completions.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	st.CategoryCompletions = normalizeCounts(byCat)

	onToday, err := r.completions.ListOnDate(ctx, todayKey)
	if err != nil {
		return nil, err
	}
	cats := map[string]bool{}
	for _, c := range onToday {
		cats[normalizeCategory(c.Category)] = true
	}
	st.DistinctCategoriesToday = len(cats)

	habitXPToday, err := r.completions.SumXPOnDate(ctx, todayKey)
	if err != nil {
		return nil, err
	}

	gc, err := r.goals.Counts(ctx, int(DifficultyHard), todayKey)
	if err != nil {
		return nil, err
	}
	st.GoalsCreated = gc.Created
	st.GoalsCompleted = gc.Completed
	st.HardGoalsCompleted = gc.HardCompleted
	st.GoalCategoryCompletions = normalizeCounts(gc.ByCategory)
	st.GoalStepsCompleted = gc.StepsCompleted
	st.DailyXP = habitXPToday + gc.XPCompletedOn

	if st.Purchases, err = r.inventory.CountPurchases(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func normalizeCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[normalizeCategory(k)] += v
	}
	return out
}

// countPerfectDays counts dates on which every active habit that was due
// (and already existed) has a completed record.
func countPerfectDays(active []storage.Habit, completedByDate map[string]map[int64]bool, loc *time.Location) int {
	perfect := 0
	for date, done := range completedByDate {
		day, err := time.ParseInLocation(DateLayout, date, loc)
		if err != nil {
			continue
		}
		due := 0
		missed := false
		for _, h := range active {
			if civil(h.CreatedAt.In(loc)).After(civil(day)) || !ScheduledOn(h, day) {
				continue
			}
			due++
			if !done[h.ID] {
				missed = true
				break
			}
		}
		if due > 0 && !missed {
			perfect++
		}
	}
	return perfect
}

// EvaluateAchievements re-checks the catalog without any other state change.
func (s *Service) EvaluateAchievements(ctx context.Context) ([]Unlock, error) {
	var out []Unlock
	err := s.inTx(ctx, func(r *repos) error {
		p, err := getProgress(ctx, r)
		if err != nil {
			return err
		}
		out, err = s.settle(ctx, r, p, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResetProgress restores the progress row to defaults. Habits, goals,
// history and unlocks are kept.
func (s *Service) ResetProgress(ctx context.Context) error {
	return s.inTx(ctx, func(r *repos) error {
		if err := r.progress.Reset(ctx, storage.MainProgressKey); err != nil {
			return err
		}
		if _, err := r.progress.GetOrCreateMain(ctx); err != nil {
			return err
		}
		s.logf("progress reset")
		return nil
	})
}
