package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"goalquest/internal/catalog"
	"goalquest/internal/engine"
	"goalquest/internal/storage"
)

type statsBody struct {
	Strength     int `json:"strength"`
	Intelligence int `json:"intelligence"`
	Vitality     int `json:"vitality"`
	Agility      int `json:"agility"`
	Sense        int `json:"sense"`
	Willpower    int `json:"willpower"`
}

type progressBody struct {
	Level          int        `json:"level"`
	TotalXP        int64      `json:"total_xp"`
	XPIntoLevel    int64      `json:"xp_into_level"`
	XPForNext      int64      `json:"xp_for_next"`
	CurrentGold    int64      `json:"current_gold"`
	LifetimeGold   int64      `json:"lifetime_gold"`
	Rank           string     `json:"rank"`
	RankColor      string     `json:"rank_color"`
	Stats          statsBody  `json:"stats"`
	XPMultiplier   float64    `json:"xp_multiplier"`
	GoldMultiplier float64    `json:"gold_multiplier"`
	Unlocked       int        `json:"achievements_unlocked"`
	Achievements   int        `json:"achievements_total"`
	LastLevelUp    *time.Time `json:"last_level_up,omitempty"`
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Status(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p := st.Progress
	writeJSON(w, http.StatusOK, progressBody{
		Level:        p.Level,
		TotalXP:      p.TotalXP,
		XPIntoLevel:  st.Level.XPIntoLevel,
		XPForNext:    st.Level.XPForNext,
		CurrentGold:  p.CurrentGold,
		LifetimeGold: p.LifetimeGold,
		Rank:         st.Rank.Title,
		RankColor:    st.Rank.Color,
		Stats: statsBody{
			Strength: p.Strength, Intelligence: p.Intelligence, Vitality: p.Vitality,
			Agility: p.Agility, Sense: p.Sense, Willpower: p.Willpower,
		},
		XPMultiplier:   st.XPMultiplier,
		GoldMultiplier: st.GoldMultiplier,
		Unlocked:       st.Unlocked,
		Achievements:   st.Achievements,
		LastLevelUp:    p.LastLevelUp,
	})
}

type habitBody struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category"`
	Difficulty     int       `json:"difficulty"`
	Frequency      string    `json:"frequency"`
	FrequencyDays  []int     `json:"frequency_days,omitempty"`
	CustomInterval int       `json:"custom_interval,omitempty"`
	Priority       bool      `json:"priority"`
	Active         bool      `json:"active"`
	Streak         int       `json:"streak"`
	DoneToday      bool      `json:"done_today"`
	DueToday       bool      `json:"due_today"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Habits(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]habitBody, 0, len(views))
	for _, v := range views {
		out = append(out, habitBody{
			ID: v.ID, Name: v.Name, Description: v.Description, Category: v.Category,
			Difficulty: v.Difficulty, Frequency: v.Frequency, FrequencyDays: v.FrequencyDays,
			CustomInterval: v.CustomInterval, Priority: v.Priority, Active: v.Active,
			Streak: v.Streak, DoneToday: v.DoneToday, DueToday: v.DueToday, CreatedAt: v.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type createHabitRequest struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	Difficulty     int    `json:"difficulty"`
	Frequency      string `json:"frequency"`
	FrequencyDays  []int  `json:"frequency_days"`
	CustomInterval int    `json:"custom_interval"`
	Priority       bool   `json:"priority"`
}

type unlockBody struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Tier  string `json:"tier"`
	XP    int64  `json:"xp"`
	Gold  int64  `json:"gold"`
}

func unlockBodies(us []engine.Unlock) []unlockBody {
	out := make([]unlockBody, 0, len(us))
	for _, u := range us {
		a := u.Achievement
		out = append(out, unlockBody{Key: a.Key, Title: a.Title, Tier: a.Tier, XP: a.XP, Gold: a.Gold})
	}
	return out
}

type createdBody struct {
	ID       int64        `json:"id"`
	Unlocked []unlockBody `json:"unlocked"`
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.CreateHabit(r.Context(), engine.CreateHabitInput{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Difficulty:     engine.Difficulty(req.Difficulty),
		Frequency:      engine.Frequency(req.Frequency),
		FrequencyDays:  req.FrequencyDays,
		CustomInterval: req.CustomInterval,
		Priority:       req.Priority,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdBody{ID: res.ID, Unlocked: unlockBodies(res.Unlocked)})
}

type completeBody struct {
	HabitID          int64        `json:"habit_id"`
	Date             string       `json:"date"`
	XPAwarded        int64        `json:"xp_awarded"`
	GoldAwarded      int64        `json:"gold_awarded"`
	Streak           int          `json:"streak"`
	StreakMultiplier float64      `json:"streak_multiplier"`
	GearMultiplier   float64      `json:"gear_multiplier"`
	Stat             string       `json:"stat"`
	LevelBefore      int          `json:"level_before"`
	NewLevel         int          `json:"new_level"`
	LeveledUp        bool         `json:"leveled_up"`
	AlreadyDone      bool         `json:"already_done"`
	Unlocked         []unlockBody `json:"unlocked"`
}

func (s *Server) completeHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.CompleteHabit(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, completeBody{
		HabitID: res.HabitID, Date: res.Date, XPAwarded: res.XPAwarded, GoldAwarded: res.GoldAwarded,
		Streak: res.Streak, StreakMultiplier: res.StreakMultiplier, GearMultiplier: res.GearMultiplier,
		Stat: res.Stat.String(),
		LevelBefore: res.LevelBefore, NewLevel: res.NewLevel, LeveledUp: res.LeveledUp,
		AlreadyDone: res.AlreadyDone, Unlocked: unlockBodies(res.Unlocked),
	})
}

type activeRequest struct {
	Active *bool `json:"active"`
}

func (s *Server) setHabitActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req activeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "active is required")
		return
	}
	if err := s.svc.SetHabitActive(r.Context(), id, *req.Active); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": *req.Active})
}

type stepBody struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type goalBody struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Difficulty  int        `json:"difficulty"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedOn *string    `json:"completed_on,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	XPAwarded   int64      `json:"xp_awarded"`
	GoldAwarded int64      `json:"gold_awarded"`
	Steps       []stepBody `json:"steps"`
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Goals(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]goalBody, 0, len(views))
	for _, v := range views {
		steps := make([]stepBody, 0, len(v.Steps))
		for _, st := range v.Steps {
			steps = append(steps, stepBody{ID: st.ID, Title: st.Title, Completed: st.Completed, CompletedAt: st.CompletedAt})
		}
		out = append(out, goalBody{
			ID: v.ID, Title: v.Title, Description: v.Description, Category: v.Category,
			Difficulty: v.Difficulty, Progress: v.Progress, Completed: v.Completed,
			CompletedOn: v.CompletedOn, Deadline: v.Deadline,
			XPAwarded: v.XPAwarded, GoldAwarded: v.GoldAwarded, Steps: steps,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type createGoalRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Difficulty  int        `json:"difficulty"`
	Deadline    *time.Time `json:"deadline"`
	Steps       []string   `json:"steps"`
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.CreateGoal(r.Context(), engine.CreateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  engine.Difficulty(req.Difficulty),
		Deadline:    req.Deadline,
		Steps:       req.Steps,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdBody{ID: res.ID, Unlocked: unlockBodies(res.Unlocked)})
}

type goalResultBody struct {
	GoalID        int64        `json:"goal_id"`
	Progress      int          `json:"progress"`
	Completed     bool         `json:"completed"`
	JustCompleted bool         `json:"just_completed"`
	XPAwarded     int64        `json:"xp_awarded"`
	GoldAwarded   int64        `json:"gold_awarded"`
	LevelBefore   int          `json:"level_before"`
	NewLevel      int          `json:"new_level"`
	LeveledUp     bool         `json:"leveled_up"`
	Unlocked      []unlockBody `json:"unlocked"`
}

func goalResult(res *engine.GoalResult) goalResultBody {
	return goalResultBody{
		GoalID: res.GoalID, Progress: res.Progress, Completed: res.Completed,
		JustCompleted: res.JustCompleted, XPAwarded: res.XPAwarded, GoldAwarded: res.GoldAwarded,
		LevelBefore: res.LevelBefore, NewLevel: res.NewLevel, LeveledUp: res.LeveledUp,
		Unlocked: unlockBodies(res.Unlocked),
	}
}

type progressRequest struct {
	Progress *int `json:"progress"`
}

func (s *Server) updateGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req progressRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Progress == nil {
		writeError(w, http.StatusBadRequest, "progress is required")
		return
	}
	res, err := s.svc.UpdateGoalProgress(r.Context(), id, *req.Progress)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goalResult(res))
}

type stepRequest struct {
	Title string `json:"title"`
}

func (s *Server) addGoalStep(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req stepRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stepID, err := s.svc.AddGoalStep(r.Context(), id, req.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": stepID})
}

func (s *Server) completeGoalStep(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.CompleteGoalStep(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goalResult(res))
}

type achievementBody struct {
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Tier        string     `json:"tier"`
	XP          int64      `json:"xp"`
	Gold        int64      `json:"gold"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

func (s *Server) listAchievements(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Achievements(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]achievementBody, 0, len(views))
	for _, v := range views {
		out = append(out, achievementBody{
			Key: v.Key, Title: v.Title, Description: v.Description, Category: v.Category,
			Tier: v.Tier, XP: v.XP, Gold: v.Gold, Unlocked: v.Unlocked, UnlockedAt: v.UnlockedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type shopItemBody struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Rarity        string  `json:"rarity"`
	Price         int64   `json:"price"`
	LevelRequired int     `json:"level_required"`
	MaxStack      int     `json:"max_stack"`
	Slot          string  `json:"slot,omitempty"`
	EffectKind    string  `json:"effect_kind"`
	EffectValue   float64 `json:"effect_value"`
	EffectTarget  string  `json:"effect_category,omitempty"`
	DurationSec   int64   `json:"duration_seconds"`
}

func shopItem(it catalog.ShopItem) shopItemBody {
	return shopItemBody{
		ID: it.ID, Name: it.Name, Description: it.Description, Rarity: it.Rarity,
		Price: it.Price, LevelRequired: it.LevelRequired, MaxStack: it.MaxStack, Slot: it.Slot,
		EffectKind: it.Effect.Kind, EffectValue: it.Effect.Value, EffectTarget: it.Effect.Category,
		DurationSec: int64(it.Effect.Duration / time.Second),
	}
}

func (s *Server) listShop(w http.ResponseWriter, r *http.Request) {
	items := s.svc.Catalog().Items()
	out := make([]shopItemBody, 0, len(items))
	for _, it := range items {
		out = append(out, shopItem(it))
	}
	writeJSON(w, http.StatusOK, out)
}

type buyRequest struct {
	Quantity int `json:"quantity"`
}

type purchaseBody struct {
	ItemID    string       `json:"item_id"`
	Quantity  int          `json:"quantity"`
	GoldSpent int64        `json:"gold_spent"`
	GoldLeft  int64        `json:"gold_left"`
	Owned     int          `json:"owned"`
	Unlocked  []unlockBody `json:"unlocked"`
}

func (s *Server) buy(w http.ResponseWriter, r *http.Request) {
	req := buyRequest{Quantity: 1}
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	res, err := s.svc.Buy(r.Context(), mux.Vars(r)["id"], req.Quantity)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchaseBody{
		ItemID: res.ItemID, Quantity: res.Quantity, GoldSpent: res.GoldSpent,
		GoldLeft: res.GoldLeft, Owned: res.Owned, Unlocked: unlockBodies(res.Unlocked),
	})
}

type inventoryBody struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

func (s *Server) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Inventory(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]inventoryBody, 0, len(items))
	for _, it := range items {
		out = append(out, inventoryBody{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	writeJSON(w, http.StatusOK, out)
}

type effectBody struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Value     float64   `json:"value"`
	Source    string    `json:"source"`
	ExpiresAt time.Time `json:"expires_at"`
}

func effect(e storage.Effect) effectBody {
	return effectBody{ID: e.ID, Kind: e.Kind, Value: e.Value, Source: e.Source, ExpiresAt: e.ExpiresAt}
}

type useBody struct {
	Effect    effectBody `json:"effect"`
	Remaining int        `json:"remaining"`
}

func (s *Server) use(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Use(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, useBody{Effect: effect(res.Effect), Remaining: res.Remaining})
}

func (s *Server) listEffects(w http.ResponseWriter, r *http.Request) {
	effects, err := s.svc.ActiveEffects(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]effectBody, 0, len(effects))
	for _, e := range effects {
		out = append(out, effect(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type gearBody struct {
	Slot       string       `json:"slot"`
	Item       shopItemBody `json:"item"`
	EquippedAt time.Time    `json:"equipped_at"`
}

func (s *Server) listGear(w http.ResponseWriter, r *http.Request) {
	gear, err := s.svc.Gear(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]gearBody, 0, len(gear))
	for _, g := range gear {
		out = append(out, gearBody{Slot: g.Slot, Item: shopItem(g.Item), EquippedAt: g.EquippedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

type equipBody struct {
	Slot     string `json:"slot"`
	ItemID   string `json:"item_id"`
	Replaced string `json:"replaced,omitempty"`
}

func (s *Server) equip(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Equip(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, equipBody{Slot: res.Slot, ItemID: res.ItemID, Replaced: res.Replaced})
}

func (s *Server) unequip(w http.ResponseWriter, r *http.Request) {
	removed, err := s.svc.Unequip(r.Context(), mux.Vars(r)["slot"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "slot is empty")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
