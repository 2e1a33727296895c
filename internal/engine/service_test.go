package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
)

func progressOf(t *testing.T, svc *Service) storage.Progress {
	t.Helper()
	st, err := svc.Status(context.Background())
	require.NoError(t, err)
	return st.Progress
}

func TestServiceCompleteHabitScenario(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	h, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Deadlifts", Category: "fitness", Difficulty: DifficultyHard})
	require.NoError(t, err)

	res, err := svc.CompleteHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyDone)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, int64(300), res.XPAwarded)
	assert.Equal(t, int64(25), res.GoldAwarded)

	p := progressOf(t, svc)
	assert.Equal(t, int64(300), p.TotalXP)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, int64(25), p.CurrentGold)
	assert.Equal(t, 11, p.Strength)
}

func TestServiceCompleteHabitIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	h, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Read", Category: "learning", Difficulty: DifficultyMedium})
	require.NoError(t, err)

	_, err = svc.CompleteHabit(ctx, h.ID)
	require.NoError(t, err)
	once := progressOf(t, svc)

	again, err := svc.CompleteHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyDone)
	assert.Zero(t, again.XPAwarded)
	assert.Equal(t, 1, again.Streak)
	assert.Equal(t, once, progressOf(t, svc))
}

func TestServiceStreakAcrossDays(t *testing.T) {
	svc, clock := newTestService(t, nil)
	ctx := context.Background()

	h, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Meditate", Category: "mindfulness", Difficulty: DifficultyMedium})
	require.NoError(t, err)

	var last *CompleteResult
	for day := 0; day < 10; day++ {
		last, err = svc.CompleteHabit(ctx, h.ID)
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}
	assert.Equal(t, 10, last.Streak)
	assert.Equal(t, int64(110), last.XPAwarded)
	assert.Equal(t, int64(10), last.GoldAwarded)

	views, err := svc.Habits(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 10, views[0].Streak)
	assert.False(t, views[0].DoneToday)

	clock.Advance(24 * time.Hour)
	res, err := svc.CompleteHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, int64(100), res.XPAwarded)
}

func TestServiceCompleteHabitErrors(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.CompleteHabit(ctx, 999)
	var nf NotFoundError
	require.True(t, errors.As(err, &nf))

	h, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Run"})
	require.NoError(t, err)
	active, err := svc.ToggleHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, active)
	_, err = svc.CompleteHabit(ctx, h.ID)
	var paused HabitPausedError
	assert.True(t, errors.As(err, &paused))
}

func TestServiceCreateHabitValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "  "})
	assert.ErrorIs(t, err, ErrTitleRequired)
	_, err = svc.CreateHabit(ctx, CreateHabitInput{Name: "x", Frequency: "hourly"})
	assert.Error(t, err)
	_, err = svc.CreateHabit(ctx, CreateHabitInput{Name: "x", Frequency: FrequencySpecific})
	assert.Error(t, err)
	_, err = svc.CreateHabit(ctx, CreateHabitInput{Name: "x", Frequency: FrequencySpecific, FrequencyDays: []int{7}})
	assert.Error(t, err)

	res, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Gym", Category: "Fitness", Frequency: FrequencySpecific, FrequencyDays: []int{0, 3}})
	require.NoError(t, err)
	views, err := svc.Habits(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, res.ID, views[0].ID)
	assert.Equal(t, "fitness", views[0].Category)
	assert.Equal(t, 1, views[0].Difficulty)
	assert.True(t, views[0].DueToday, "testNow is a Monday")
}

func TestServiceActiveEffectDoublesXP(t *testing.T) {
	svc, clock := newTestService(t, mustShop(t))
	ctx := context.Background()
	setTotalXP(t, svc, 0, 1000)

	buy, err := svc.Buy(ctx, "xp_boost_1h", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(500), buy.GoldLeft)

	use, err := svc.Use(ctx, "xp_boost_1h")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour).UTC(), use.Effect.ExpiresAt)

	h, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Stretch", Difficulty: DifficultyEasy})
	require.NoError(t, err)
	res, err := svc.CompleteHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.XPAwarded)

	p := progressOf(t, svc)
	assert.Equal(t, int64(505), p.CurrentGold)
	assert.Equal(t, int64(1005), p.LifetimeGold)

	clock.Advance(time.Hour)
	effects, err := svc.ActiveEffects(ctx)
	require.NoError(t, err)
	assert.Empty(t, effects)
}

func TestServiceShopErrors(t *testing.T) {
	svc, _ := newTestService(t, mustShop(t))
	ctx := context.Background()
	setTotalXP(t, svc, 0, 100)

	_, err := svc.Buy(ctx, "xp_boost_1h", 1)
	var poor InsufficientGoldError
	require.True(t, errors.As(err, &poor))
	assert.Equal(t, InsufficientGoldError{Need: 500, Have: 100}, poor)

	_, err = svc.Buy(ctx, "elixir", 1)
	var gate LevelGateError
	require.True(t, errors.As(err, &gate))
	assert.Equal(t, 10, gate.RequiredLevel)

	_, err = svc.Buy(ctx, "nope", 1)
	var nf NotFoundError
	require.True(t, errors.As(err, &nf))

	_, err = svc.Use(ctx, "xp_boost_1h")
	var empty OutOfStockError
	require.True(t, errors.As(err, &empty))

	setTotalXP(t, svc, 0, 5000)
	_, err = svc.Buy(ctx, "xp_boost_1h", 3)
	var stack StackLimitError
	require.True(t, errors.As(err, &stack))
	assert.Equal(t, int64(5000), progressOf(t, svc).CurrentGold)
}

func TestServiceBuyRejectsHugeQuantity(t *testing.T) {
	svc, _ := newTestService(t, mustShop(t))
	ctx := context.Background()
	setTotalXP(t, svc, 0, 500)

	_, err := svc.Buy(ctx, "xp_boost_1h", 1)
	require.NoError(t, err)

	for _, qty := range []int{math.MaxInt, math.MaxInt / 500, 2} {
		res, err := svc.Buy(ctx, "xp_boost_1h", qty)
		var stack StackLimitError
		require.True(t, errors.As(err, &stack), "qty %d: %v", qty, err)
		assert.Nil(t, res)
	}

	assert.Equal(t, int64(0), progressOf(t, svc).CurrentGold)
	inv, err := svc.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, inv, 1)
	assert.Equal(t, 1, inv[0].Quantity)
}

func TestPurchaseCost(t *testing.T) {
	cost, ok := purchaseCost(500, 2)
	assert.True(t, ok)
	assert.Equal(t, int64(1000), cost)

	_, ok = purchaseCost(math.MaxInt64/2, 3)
	assert.False(t, ok)
}

func gearShop(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(nil, []catalog.ShopItem{
		{ID: "iron_dagger", Name: "Iron Dagger", Price: 2000, MaxStack: 1, Slot: "weapon",
			Effect: catalog.Effect{Kind: EffectCategoryXPBoost, Category: "fitness", Value: 1.05}},
		{ID: "ring_focus", Name: "Ring of Focus", Price: 5000, MaxStack: 1, Slot: "ring",
			Effect: catalog.Effect{Kind: EffectCategoryXPBoost, Category: "learning", Value: 1.1}},
		{ID: "xp_boost_1h", Name: "Lesser Mana Potion", Price: 500, MaxStack: 2,
			Effect: catalog.Effect{Kind: EffectXPMultiplier, Value: 2, Duration: time.Hour}},
	})
	require.NoError(t, err)
	return c
}

func TestServiceGearBoostsMatchingHabits(t *testing.T) {
	svc, _ := newTestService(t, gearShop(t))
	ctx := context.Background()
	setTotalXP(t, svc, 0, 10000)

	lift, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Lift", Category: "fitness", Difficulty: DifficultyMedium})
	require.NoError(t, err)
	read, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Read", Category: "learning", Difficulty: DifficultyMedium})
	require.NoError(t, err)

	_, err = svc.Buy(ctx, "iron_dagger", 1)
	require.NoError(t, err)
	_, err = svc.Buy(ctx, "iron_dagger", 1)
	var stack StackLimitError
	require.True(t, errors.As(err, &stack))

	eq, err := svc.Equip(ctx, "iron_dagger")
	require.NoError(t, err)
	assert.Equal(t, EquipResult{Slot: "weapon", ItemID: "iron_dagger"}, *eq)

	res, err := svc.CompleteHabit(ctx, lift.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(105), res.XPAwarded)
	assert.Equal(t, 1.05, res.GearMultiplier)

	res, err = svc.CompleteHabit(ctx, read.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.XPAwarded)

	gear, err := svc.Gear(ctx)
	require.NoError(t, err)
	require.Len(t, gear, 1)
	assert.Equal(t, "iron_dagger", gear[0].Item.ID)

	removed, err := svc.Unequip(ctx, "Weapon")
	require.NoError(t, err)
	assert.True(t, removed)
	gear, err = svc.Gear(ctx)
	require.NoError(t, err)
	assert.Empty(t, gear)
}

func TestServiceGearErrors(t *testing.T) {
	svc, _ := newTestService(t, gearShop(t))
	ctx := context.Background()
	setTotalXP(t, svc, 0, 10000)

	_, err := svc.Equip(ctx, "ring_focus")
	var empty OutOfStockError
	require.True(t, errors.As(err, &empty))

	_, err = svc.Buy(ctx, "xp_boost_1h", 1)
	require.NoError(t, err)
	_, err = svc.Equip(ctx, "xp_boost_1h")
	var notGear NotGearError
	require.True(t, errors.As(err, &notGear))

	_, err = svc.Buy(ctx, "ring_focus", 1)
	require.NoError(t, err)
	_, err = svc.Use(ctx, "ring_focus")
	var notConsumable NotConsumableError
	require.True(t, errors.As(err, &notConsumable))

	_, err = svc.Unequip(ctx, "boots")
	var badSlot InvalidSlotError
	require.True(t, errors.As(err, &badSlot))

	removed, err := svc.Unequip(ctx, "ring")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestServiceGoalStepsCompleteOnce(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, CreateGoalInput{Title: "Ship side project", Category: "work", Difficulty: DifficultyMedium, Steps: []string{"design", "build"}})
	require.NoError(t, err)
	third, err := svc.AddGoalStep(ctx, g.ID, "launch")
	require.NoError(t, err)

	goals, err := svc.Goals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	require.Len(t, goals[0].Steps, 3)

	res, err := svc.CompleteGoalStep(ctx, goals[0].Steps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 33, res.Progress)
	assert.False(t, res.Completed)

	res, err = svc.CompleteGoalStep(ctx, goals[0].Steps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 33, res.Progress)

	_, err = svc.CompleteGoalStep(ctx, goals[0].Steps[1].ID)
	require.NoError(t, err)
	res, err = svc.CompleteGoalStep(ctx, third)
	require.NoError(t, err)
	assert.True(t, res.JustCompleted)
	assert.Equal(t, int64(2000), res.XPAwarded)
	assert.Equal(t, int64(100), res.GoldAwarded)
	assert.True(t, res.LeveledUp)

	res, err = svc.UpdateGoalProgress(ctx, g.ID, 100)
	require.NoError(t, err)
	assert.False(t, res.JustCompleted)
	assert.Zero(t, res.XPAwarded)

	p := progressOf(t, svc)
	assert.Equal(t, int64(2000), p.TotalXP)
	assert.Equal(t, int64(100), p.LifetimeGold)
	assert.Equal(t, BaseStat, p.Intelligence)

	_, err = svc.AddGoalStep(ctx, g.ID, "celebrate")
	var done GoalCompletedError
	assert.True(t, errors.As(err, &done))
}

func TestServiceUpdateGoalProgressClamps(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	g, err := svc.CreateGoal(ctx, CreateGoalInput{Title: "Save money", Category: "finance"})
	require.NoError(t, err)

	res, err := svc.UpdateGoalProgress(ctx, g.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Progress)

	res, err = svc.UpdateGoalProgress(ctx, g.ID, 140)
	require.NoError(t, err)
	assert.True(t, res.JustCompleted)
	assert.Equal(t, int64(1000), res.XPAwarded)
	assert.Equal(t, int64(50), res.GoldAwarded)

	_, err = svc.UpdateGoalProgress(ctx, 404, 10)
	var nf NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestServiceAchievementsUnlockOnce(t *testing.T) {
	c := mustCatalog(t,
		catalog.Achievement{Key: "first_habit", XP: 100, Gold: 10, When: catalog.Predicate{Metric: catalog.MetricHabitsCreated, Threshold: 1}},
		catalog.Achievement{Key: "first_complete", XP: 50, Gold: 5, When: catalog.Predicate{Metric: catalog.MetricHabitCompletions, Threshold: 1}},
		catalog.Achievement{Key: "diversity_2", When: catalog.Predicate{Metric: catalog.MetricDistinctCategoriesToday, Threshold: 2}},
		catalog.Achievement{Key: "perfect_day", When: catalog.Predicate{Metric: catalog.MetricPerfectDay, Threshold: 1}},
		catalog.Achievement{Key: "shopper", When: catalog.Predicate{Metric: catalog.MetricPurchases, Threshold: 1}},
	)
	svc, _ := newTestService(t, c)
	ctx := context.Background()

	a, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Run", Category: "fitness"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first_habit"}, keys(a.Unlocked))

	b, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "Read", Category: "learning"})
	require.NoError(t, err)
	assert.Empty(t, b.Unlocked)

	res, err := svc.CompleteHabit(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_complete"}, keys(res.Unlocked))

	res, err = svc.CompleteHabit(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"diversity_2", "perfect_day"}, keys(res.Unlocked))

	p := progressOf(t, svc)
	assert.Equal(t, int64(100+50+50+50), p.TotalXP)
	assert.Equal(t, int64(10+5+5+5), p.LifetimeGold)

	more, err := svc.EvaluateAchievements(ctx)
	require.NoError(t, err)
	assert.Empty(t, more)

	views, err := svc.Achievements(ctx)
	require.NoError(t, err)
	require.Len(t, views, 5)
	assert.True(t, views[0].Unlocked)
	assert.False(t, views[4].Unlocked)
}

func TestServiceResetProgress(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	setTotalXP(t, svc, 50000, 700)

	require.NoError(t, svc.ResetProgress(ctx))
	p := progressOf(t, svc)
	assert.Equal(t, 1, p.Level)
	assert.Zero(t, p.TotalXP)
	assert.Zero(t, p.LifetimeGold)
	assert.Equal(t, BaseStat, p.Strength)
}

func TestServiceStatus(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	setTotalXP(t, svc, TotalExperienceForLevel(12)+5, 0)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, st.Progress.Level)
	assert.Equal(t, int64(5), st.Level.XPIntoLevel)
	assert.Equal(t, "Novice Hunter", st.Rank.Title)
	assert.Equal(t, 1.0, st.XPMultiplier)
}

func TestServiceStatusRepairsStaleLevel(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	repo := storage.NewProgressRepo(svc.db)
	p, err := repo.GetOrCreateMain(ctx)
	require.NoError(t, err)
	p.TotalXP = TotalExperienceForLevel(3)
	p.Level = 9
	require.NoError(t, repo.Update(ctx, p))

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Progress.Level)

	stored, err := repo.Get(ctx, storage.MainProgressKey)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Level)
}

func TestServiceStatusOnEmptyDatabase(t *testing.T) {
	svc, _ := newTestService(t, nil)
	st, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Progress.Level)
	assert.Equal(t, BaseStat, st.Progress.Strength)
}

func mustShop(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(nil, []catalog.ShopItem{
		{ID: "xp_boost_1h", Name: "Lesser Mana Potion", Price: 500, MaxStack: 2,
			Effect: catalog.Effect{Kind: EffectXPMultiplier, Value: 2, Duration: time.Hour}},
		{ID: "elixir", Name: "Elixir", Price: 10, MaxStack: 5, LevelRequired: 10,
			Effect: catalog.Effect{Kind: EffectXPMultiplier, Value: 3, Duration: time.Hour}},
	})
	require.NoError(t, err)
	return c
}
