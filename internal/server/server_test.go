package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goalquest/internal/catalog"
	"goalquest/internal/engine"
	"goalquest/internal/storage"
)

func newTestServer(t *testing.T) (http.Handler, *engine.Service) {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cat, err := catalog.New(
		[]catalog.Achievement{{Key: "first_complete", Title: "First Steps", Tier: "bronze", XP: 50, Gold: 5,
			When: catalog.Predicate{Metric: catalog.MetricHabitCompletions, Threshold: 1}}},
		[]catalog.ShopItem{{ID: "xp_boost_1h", Name: "Lesser Mana Potion", Price: 20, MaxStack: 5,
			Effect: catalog.Effect{Kind: engine.EffectXPMultiplier, Value: 2, Duration: time.Hour}}},
	)
	require.NoError(t, err)

	svc := engine.NewService(db, cat)
	svc.Now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	svc.Location = time.UTC
	return New(svc, nil).Handler(io.Discard), svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(v), rec.Body.String())
}

func TestHabitFlow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/habits", `{"name":"Deadlifts","category":"fitness","difficulty":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created createdBody
	decodeInto(t, rec, &created)
	assert.Equal(t, int64(1), created.ID)

	rec = do(t, h, http.MethodPost, "/api/habits/1/complete", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var done completeBody
	decodeInto(t, rec, &done)
	assert.Equal(t, int64(300), done.XPAwarded)
	assert.Equal(t, int64(25), done.GoldAwarded)
	assert.Equal(t, "strength", done.Stat)
	require.Len(t, done.Unlocked, 1)
	assert.Equal(t, "first_complete", done.Unlocked[0].Key)

	rec = do(t, h, http.MethodPost, "/api/habits/1/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &done)
	assert.True(t, done.AlreadyDone)
	assert.Zero(t, done.XPAwarded)

	rec = do(t, h, http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p progressBody
	decodeInto(t, rec, &p)
	assert.Equal(t, int64(350), p.TotalXP)
	assert.Equal(t, int64(30), p.CurrentGold)
	assert.Equal(t, 11, p.Stats.Strength)
	assert.Equal(t, "Beginner", p.Rank)

	rec = do(t, h, http.MethodGet, "/api/habits", "")
	var habits []habitBody
	decodeInto(t, rec, &habits)
	require.Len(t, habits, 1)
	assert.True(t, habits[0].DoneToday)
	assert.Equal(t, 1, habits[0].Streak)

	rec = do(t, h, http.MethodPut, "/api/habits/1/active", `{"active":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodGet, "/api/habits", "")
	decodeInto(t, rec, &habits)
	assert.False(t, habits[0].Active)

	rec = do(t, h, http.MethodPut, "/api/habits/9/active", `{"active":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoalFlow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/goals", `{"title":"Learn Go","category":"learning","difficulty":2,"steps":["tour","book"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/goals", "")
	var goals []goalBody
	decodeInto(t, rec, &goals)
	require.Len(t, goals, 1)
	require.Len(t, goals[0].Steps, 2)

	rec = do(t, h, http.MethodPost, "/api/goal-steps/1/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res goalResultBody
	decodeInto(t, rec, &res)
	assert.Equal(t, 50, res.Progress)

	rec = do(t, h, http.MethodPut, "/api/goals/1/progress", `{"progress":150}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &res)
	assert.True(t, res.JustCompleted)
	assert.Equal(t, 100, res.Progress)
	assert.Equal(t, int64(2000), res.XPAwarded)

	rec = do(t, h, http.MethodPost, "/api/goals/1/steps", `{"title":"more"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/goals/1/progress", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShopFlow(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/shop/xp_boost_1h/buy", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "no gold yet")

	do(t, h, http.MethodPost, "/api/habits", `{"name":"Run","difficulty":3}`)
	do(t, h, http.MethodPost, "/api/habits/1/complete", "")

	rec = do(t, h, http.MethodPost, "/api/shop/xp_boost_1h/buy", `{"quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var bought purchaseBody
	decodeInto(t, rec, &bought)
	assert.Equal(t, int64(10), bought.GoldLeft)

	rec = do(t, h, http.MethodPost, "/api/shop/xp_boost_1h/buy", `{"quantity":9223372036854775807}`)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodGet, "/api/inventory", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var inv []inventoryBody
	decodeInto(t, rec, &inv)
	require.Len(t, inv, 1)
	assert.Equal(t, 1, inv[0].Quantity)

	rec = do(t, h, http.MethodPost, "/api/inventory/xp_boost_1h/use", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var used useBody
	decodeInto(t, rec, &used)
	assert.Equal(t, 0, used.Remaining)
	assert.Equal(t, 2.0, used.Effect.Value)

	rec = do(t, h, http.MethodGet, "/api/effects", "")
	var effects []effectBody
	decodeInto(t, rec, &effects)
	assert.Len(t, effects, 1)

	rec = do(t, h, http.MethodPost, "/api/inventory/xp_boost_1h/use", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/shop/unknown/buy", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown habit", http.MethodPost, "/api/habits/42/complete", "", http.StatusNotFound},
		{"empty name", http.MethodPost, "/api/habits", `{"name":" "}`, http.StatusBadRequest},
		{"bad frequency", http.MethodPost, "/api/habits", `{"name":"x","frequency":"hourly"}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/habits", `{"nom":"x"}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/goals", `{`, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/habits", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestListAchievementsAndShop(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/achievements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var achs []achievementBody
	decodeInto(t, rec, &achs)
	require.Len(t, achs, 1)
	assert.False(t, achs[0].Unlocked)

	rec = do(t, h, http.MethodGet, "/api/shop", "")
	var items []shopItemBody
	decodeInto(t, rec, &items)
	require.Len(t, items, 2)
	assert.Equal(t, int64(3600), items[0].DurationSec)
	assert.Equal(t, "weapon", items[1].Slot)
	assert.Equal(t, "fitness", items[1].EffectTarget)
}

func TestGearFlow(t *testing.T) {
	h, _ := newTestServer(t)

	do(t, h, http.MethodPost, "/api/habits", `{"name":"Run","category":"fitness","difficulty":3}`)
	do(t, h, http.MethodPost, "/api/habits", `{"name":"Squats","category":"fitness","difficulty":2}`)
	do(t, h, http.MethodPost, "/api/habits/1/complete", "")

	rec := do(t, h, http.MethodPost, "/api/inventory/iron_dagger/equip", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "not owned yet")

	rec = do(t, h, http.MethodPost, "/api/shop/iron_dagger/buy", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/api/inventory/iron_dagger/use", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/inventory/iron_dagger/equip", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var eq equipBody
	decodeInto(t, rec, &eq)
	assert.Equal(t, "weapon", eq.Slot)

	rec = do(t, h, http.MethodPost, "/api/habits/2/complete", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var done completeBody
	decodeInto(t, rec, &done)
	assert.Equal(t, int64(105), done.XPAwarded)
	assert.Equal(t, 1.05, done.GearMultiplier)

	rec = do(t, h, http.MethodGet, "/api/gear", "")
	var gear []gearBody
	decodeInto(t, rec, &gear)
	require.Len(t, gear, 1)
	assert.Equal(t, "iron_dagger", gear[0].Item.ID)

	rec = do(t, h, http.MethodDelete, "/api/gear/weapon", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/gear/weapon", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/gear/boots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
