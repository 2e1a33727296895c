package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"goalquest/internal/catalog"
	"goalquest/internal/storage"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, cat *catalog.Catalog) (*Service, *testClock) {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if cat == nil {
		cat, err = catalog.New(nil, nil)
		if err != nil {
			t.Fatalf("empty catalog: %v", err)
		}
	}
	clock := &testClock{t: testNow}
	svc := NewService(db, cat)
	svc.Now = clock.Now
	svc.Location = time.UTC
	return svc, clock
}

func newProgress() *storage.Progress {
	return &storage.Progress{
		Key: storage.MainProgressKey, Level: 1,
		Strength: BaseStat, Intelligence: BaseStat, Vitality: BaseStat,
		Agility: BaseStat, Sense: BaseStat, Willpower: BaseStat,
	}
}

// history returns completed records for the given day offsets from testNow.
func history(habitID int64, offsets ...int) []storage.Completion {
	var out []storage.Completion
	for _, off := range offsets {
		out = append(out, storage.Completion{
			HabitID:   habitID,
			Date:      DateKey(testNow.AddDate(0, 0, off)),
			Completed: true,
		})
	}
	return out
}

func setTotalXP(t *testing.T, svc *Service, totalXP int64, gold int64) {
	t.Helper()
	ctx := context.Background()
	repo := storage.NewProgressRepo(svc.db)
	p, err := repo.GetOrCreateMain(ctx)
	require.NoError(t, err)
	p.TotalXP = totalXP
	p.Level = LevelForTotalXP(totalXP)
	p.CurrentGold = gold
	p.LifetimeGold = gold
	require.NoError(t, repo.Update(ctx, p))
}
