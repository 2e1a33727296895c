package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"goalquest/internal/engine"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		notFound   engine.NotFoundError
		gold       engine.InsufficientGoldError
		gate       engine.LevelGateError
		stock      engine.OutOfStockError
		stack      engine.StackLimitError
		paused     engine.HabitPausedError
		goalDone   engine.GoalCompletedError
		dup        engine.AlreadyCompletedError
		badDiff    engine.InvalidDifficultyError
		badSched   engine.InvalidScheduleError
		badSlot    engine.InvalidSlotError
		notGear    engine.NotGearError
		consumable engine.NotConsumableError
		validation validator.ValidationErrors
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &gate):
		return http.StatusForbidden
	case errors.As(err, &gold), errors.As(err, &stock), errors.As(err, &stack),
		errors.As(err, &paused), errors.As(err, &goalDone), errors.As(err, &dup):
		return http.StatusConflict
	case errors.As(err, &badDiff), errors.As(err, &badSched), errors.As(err, &validation),
		errors.As(err, &badSlot), errors.As(err, &notGear), errors.As(err, &consumable),
		errors.Is(err, engine.ErrTitleRequired), errors.Is(err, engine.ErrItemIDRequired),
		errors.Is(err, engine.ErrBadQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
