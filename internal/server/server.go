package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"goalquest/internal/engine"
)

// Server exposes the engine over a small JSON API.
type Server struct {
	svc    *engine.Service
	logger *log.Logger
}

func New(svc *engine.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{svc: svc, logger: logger}
}

// Router registers every API route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/progress", s.getProgress).Methods(http.MethodGet)

	api.HandleFunc("/habits", s.listHabits).Methods(http.MethodGet)
	api.HandleFunc("/habits", s.createHabit).Methods(http.MethodPost)
	api.HandleFunc("/habits/{id:[0-9]+}/complete", s.completeHabit).Methods(http.MethodPost)
	api.HandleFunc("/habits/{id:[0-9]+}/active", s.setHabitActive).Methods(http.MethodPut)

	api.HandleFunc("/goals", s.listGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.createGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/{id:[0-9]+}/progress", s.updateGoalProgress).Methods(http.MethodPut)
	api.HandleFunc("/goals/{id:[0-9]+}/steps", s.addGoalStep).Methods(http.MethodPost)
	api.HandleFunc("/goal-steps/{id:[0-9]+}/complete", s.completeGoalStep).Methods(http.MethodPost)

	api.HandleFunc("/achievements", s.listAchievements).Methods(http.MethodGet)

	api.HandleFunc("/shop", s.listShop).Methods(http.MethodGet)
	api.HandleFunc("/shop/{id}/buy", s.buy).Methods(http.MethodPost)
	api.HandleFunc("/inventory", s.listInventory).Methods(http.MethodGet)
	api.HandleFunc("/inventory/{id}/use", s.use).Methods(http.MethodPost)
	api.HandleFunc("/inventory/{id}/equip", s.equip).Methods(http.MethodPost)
	api.HandleFunc("/effects", s.listEffects).Methods(http.MethodGet)

	api.HandleFunc("/gear", s.listGear).Methods(http.MethodGet)
	api.HandleFunc("/gear/{slot}", s.unequip).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	return r
}

// Handler wraps the router with panic recovery and access logging.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	return handlers.LoggingHandler(accessLog, s.recovery(s.Router()))
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Printf("panic recovered: %v", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves h on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
