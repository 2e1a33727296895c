package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(context.Background(), db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestUpSection(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE TABLE a (x);\n-- +migrate Down\nDROP TABLE a;\n")
	assert.Contains(t, got, "CREATE TABLE a")
	assert.NotContains(t, got, "DROP TABLE")
}

func TestProgressDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepo(openTestDB(t))

	p, err := repo.GetOrCreateMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Zero(t, p.TotalXP)
	assert.Equal(t, 10, p.Strength)
	assert.Equal(t, 10, p.Willpower)
	assert.Nil(t, p.LastLevelUp)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p.TotalXP = 1500
	p.Level = 2
	p.CurrentGold = 40
	p.LifetimeGold = 40
	p.LastLevelUp = &now
	require.NoError(t, repo.Update(ctx, p))

	again, err := repo.GetOrCreateMain(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), again.TotalXP)
	assert.Equal(t, 2, again.Level)
	require.NotNil(t, again.LastLevelUp)
	assert.True(t, again.LastLevelUp.Equal(now))

	require.NoError(t, repo.Reset(ctx, MainProgressKey))
	missing, err := repo.Get(ctx, MainProgressKey)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHabitRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewHabitRepo(openTestDB(t))

	id, err := repo.Insert(ctx, HabitInsert{
		Name:          "Run",
		Category:      "fitness",
		Difficulty:    2,
		Frequency:     "specific",
		FrequencyDays: []int{0, 2, 4},
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)

	h, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, []int{0, 2, 4}, h.FrequencyDays)
	assert.True(t, h.Active)

	require.NoError(t, repo.SetActive(ctx, id, false))
	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	none, err := repo.Get(ctx, id+100)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCompletionUniquePerDay(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)

	id, err := habits.Insert(ctx, HabitInsert{Name: "Read", Category: "learning", Difficulty: 1, Frequency: "daily", CreatedAt: time.Now()})
	require.NoError(t, err)

	c := Completion{HabitID: id, Date: "2025-01-10", Completed: true, Difficulty: 1, Category: "learning", XPAwarded: 50, GoldAwarded: 5, CreatedAt: time.Now()}
	inserted, err := completions.Insert(ctx, c)
	require.NoError(t, err)
	assert.True(t, inserted)

	c.XPAwarded = 999
	inserted, err = completions.Insert(ctx, c)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := completions.Get(ctx, id, "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.XPAwarded)

	n, err := completions.CountCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	byCat, err := completions.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"learning": 1}, byCat)

	sum, err := completions.SumXPOnDate(ctx, "2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, int64(50), sum)
}

func TestGoalCompletedOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewGoalRepo(openTestDB(t))

	id, err := repo.Insert(ctx, GoalInsert{Title: "Marathon", Category: "fitness", Difficulty: 3, CreatedAt: time.Now()})
	require.NoError(t, err)

	ok, err := repo.MarkCompleted(ctx, id, "2025-02-01", 3000, 200)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkCompleted(ctx, id, "2025-02-02", 3000, 200)
	require.NoError(t, err)
	assert.False(t, ok)

	g, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, g.CompletedOn)
	assert.Equal(t, "2025-02-01", *g.CompletedOn)

	counts, err := repo.Counts(ctx, 3, "2025-02-01")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Completed)
	assert.Equal(t, 1, counts.HardCompleted)
	assert.Equal(t, int64(3000), counts.XPCompletedOn)
	assert.Equal(t, 1, counts.ByCategory["fitness"])
}

func TestGoalSteps(t *testing.T) {
	ctx := context.Background()
	repo := NewGoalRepo(openTestDB(t))

	goalID, err := repo.Insert(ctx, GoalInsert{Title: "Book", Category: "creative", Difficulty: 2, CreatedAt: time.Now()})
	require.NoError(t, err)
	stepID, err := repo.InsertStep(ctx, goalID, "Outline")
	require.NoError(t, err)
	_, err = repo.InsertStep(ctx, goalID, "Draft")
	require.NoError(t, err)

	done, err := repo.MarkStepDone(ctx, stepID, time.Now())
	require.NoError(t, err)
	assert.True(t, done)
	done, err = repo.MarkStepDone(ctx, stepID, time.Now())
	require.NoError(t, err)
	assert.False(t, done)

	steps, err := repo.ListSteps(ctx, goalID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.True(t, steps[0].Completed)
	assert.False(t, steps[1].Completed)
}

func TestAchievementUnlockKeepsFirstTime(t *testing.T) {
	ctx := context.Background()
	repo := NewAchievementRepo(openTestDB(t))

	first := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, "streak_3", first))
	require.NoError(t, repo.Insert(ctx, "streak_3", first.Add(time.Hour)))

	got, err := repo.Unlocked(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got["streak_3"].Equal(first))
}

func TestEffectsFilteredByExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewEffectRepo(openTestDB(t))

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, Effect{ID: "a", Kind: "xp_multiplier", Value: 2, Source: "test", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Insert(ctx, Effect{ID: "b", Kind: "xp_multiplier", Value: 3, Source: "test", ExpiresAt: now}))

	active, err := repo.ListActive(ctx, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, 2.0, active[0].Value)
}

func TestInventoryAddAndConsume(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepo(openTestDB(t))
	now := time.Now()

	require.NoError(t, repo.Add(ctx, "xp_boost_1h", 2, now))
	require.NoError(t, repo.Add(ctx, "xp_boost_1h", -1, now))

	it, err := repo.Get(ctx, "xp_boost_1h")
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, 1, it.Quantity)

	require.NoError(t, repo.InsertPurchase(ctx, Purchase{ID: "p1", ItemID: "xp_boost_1h", Quantity: 2, GoldSpent: 1000, PurchasedAt: now}))
	n, err := repo.CountPurchases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEquipmentSlots(t *testing.T) {
	ctx := context.Background()
	repo := NewEquipmentRepo(openTestDB(t))
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	got, err := repo.Get(ctx, "weapon")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Set(ctx, "weapon", "iron_dagger", now))
	require.NoError(t, repo.Set(ctx, "ring", "ring_focus", now))
	require.NoError(t, repo.Set(ctx, "weapon", "knights_sword", now.Add(time.Hour)))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ring", all[0].Slot)
	assert.Equal(t, "knights_sword", all[1].ItemID)
	assert.True(t, all[1].EquippedAt.Equal(now.Add(time.Hour)))

	cleared, err := repo.Clear(ctx, "weapon")
	require.NoError(t, err)
	assert.True(t, cleared)
	cleared, err = repo.Clear(ctx, "weapon")
	require.NoError(t, err)
	assert.False(t, cleared)
}
