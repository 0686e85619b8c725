// Package server exposes the tracker over HTTP: workout/session/daily-log
// CRUD, the active-session progression endpoints and the analytics views.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/claude/flextrack/internal/history"
	"github.com/claude/flextrack/internal/session"
	"github.com/claude/flextrack/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers. It owns the in-memory session
// state machine; the store holds the durable checkpoint.
type Server struct {
	store  storage.Store
	log    *slog.Logger
	apiKey string
	router chi.Router

	// mu serializes state-machine operations. The workout flow is a
	// single-user interaction but HTTP requests are not.
	mu      sync.Mutex
	machine *session.Machine
}

// New creates a Server with all routes configured.
func New(store storage.Store, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Import endpoint (API key required)
	s.router.Route("/api/v1/import", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleImport)
	})

	// Library and history CRUD (no auth — tsnet handles access)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Post("/api/v1/workouts", s.handleSaveWorkout)
	s.router.Delete("/api/v1/workouts/{id}", s.handleDeleteWorkout)
	s.router.Get("/api/v1/workouts/next", s.handleNextWorkout)

	s.router.Get("/api/v1/sessions", s.handleListSessions)
	s.router.Post("/api/v1/sessions", s.handleSaveSession)
	s.router.Delete("/api/v1/sessions/{id}", s.handleDeleteSession)
	s.router.Get("/api/v1/sessions/{id}/summary", s.handleSessionSummary)

	s.router.Get("/api/v1/logs", s.handleListDailyLogs)
	s.router.Post("/api/v1/logs", s.handleSaveDailyLog)
	s.router.Delete("/api/v1/logs/{id}", s.handleDeleteDailyLog)

	// Active session progression
	s.router.Get("/api/v1/session/active", s.handleActiveSession)
	s.router.Post("/api/v1/session/start", s.handleStartSession)
	s.router.Post("/api/v1/session/advance", s.handleAdvance)
	s.router.Post("/api/v1/session/retreat", s.handleRetreat)
	s.router.Post("/api/v1/session/jump", s.handleJump)
	s.router.Patch("/api/v1/session/set", s.handleUpdateSet)
	s.router.Post("/api/v1/session/abort", s.handleAbort)

	// Analytics
	s.router.Get("/api/v1/stats", s.handleDataStats)
	s.router.Get("/api/v1/stats/streak", s.handleStreak)
	s.router.Get("/api/v1/stats/prs", s.handlePersonalRecords)
	s.router.Get("/api/v1/stats/plateau", s.handlePlateau)
	s.router.Get("/api/v1/stats/strength", s.handleStrengthSeries)
}

// RestoreActiveSession rebuilds the state machine from a stored checkpoint,
// so an interrupted session survives a process restart. No-op when no
// checkpoint exists or its workout is gone.
func (s *Server) RestoreActiveSession(ctx context.Context) error {
	checkpoint, err := s.store.LoadActiveSession(ctx)
	if err != nil {
		return fmt.Errorf("loading checkpoint: %w", err)
	}
	if checkpoint == nil {
		return nil
	}

	workouts, err := s.store.LoadWorkouts(ctx)
	if err != nil {
		return fmt.Errorf("loading workouts: %w", err)
	}
	for _, w := range workouts {
		if w.ID == checkpoint.WorkoutID && len(w.Exercises) > 0 {
			sessions, err := s.store.LoadSessions(ctx)
			if err != nil {
				return fmt.Errorf("loading sessions: %w", err)
			}
			last := history.MostRecentSession(sessions, w.ID, "")

			s.mu.Lock()
			s.machine = session.New(w, last, checkpoint, s.store, s.log)
			s.mu.Unlock()
			s.log.Info("resumed active session", "workout", w.Name)
			return nil
		}
	}

	s.log.Warn("checkpoint references a missing workout, discarding", "workout_id", checkpoint.WorkoutID)
	return s.store.ClearActiveSession(ctx)
}
