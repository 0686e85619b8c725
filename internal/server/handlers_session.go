package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/flextrack/internal/analytics"
	"github.com/claude/flextrack/internal/history"
	"github.com/claude/flextrack/internal/models"
	"github.com/claude/flextrack/internal/session"
)

// sessionState is the wire view of the machine for the active-session
// endpoints.
type sessionState struct {
	WorkoutID    models.WorkoutID `json:"workoutId"`
	WorkoutName  string           `json:"workoutName"`
	ExIndex      int              `json:"currentExIndex"`
	StepIndex    int              `json:"currentStepIndex"`
	ExerciseName string           `json:"exerciseName"`
	StepLabel    string           `json:"stepLabel"`
	Set          models.SetData   `json:"set"`
	Goal         *models.SetData  `json:"goal,omitempty"`
	StartTime    int64            `json:"startTime"`
}

// stateLocked builds the wire view. Callers hold s.mu.
func (s *Server) stateLocked() sessionState {
	m := s.machine
	exIdx, stepIdx := m.Position()
	snap := m.Snapshot()
	return sessionState{
		WorkoutID:    snap.WorkoutID,
		WorkoutName:  m.WorkoutName(),
		ExIndex:      exIdx,
		StepIndex:    stepIdx,
		ExerciseName: m.CurrentExercise().Name,
		StepLabel:    m.CurrentStep().Label,
		Set:          m.CurrentSet(),
		Goal:         m.Goal(),
		StartTime:    snap.StartTime,
	}
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkoutID models.WorkoutID `json:"workoutId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine != nil {
		if s.machine.WorkoutID() == req.WorkoutID {
			// Resuming the workout already in progress.
			writeJSON(w, http.StatusOK, s.stateLocked())
			return
		}
		writeJSON(w, http.StatusConflict, map[string]string{"error": "another session is in progress"})
		return
	}

	workouts, err := s.store.LoadWorkouts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	var workout *models.Workout
	for i := range workouts {
		if workouts[i].ID == req.WorkoutID {
			workout = &workouts[i]
			break
		}
	}
	if workout == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if len(workout.Exercises) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout has no exercises"})
		return
	}

	sessions, err := s.store.LoadSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	last := history.MostRecentSession(sessions, workout.ID, "")

	// A matching stored checkpoint resumes; anything else starts fresh.
	checkpoint, err := s.store.LoadActiveSession(r.Context())
	if err != nil {
		s.log.Warn("loading checkpoint failed, starting fresh", "error", err)
		checkpoint = nil
	}
	if checkpoint != nil && checkpoint.WorkoutID != workout.ID {
		checkpoint = nil
	}

	s.machine = session.New(*workout, last, checkpoint, s.store, s.log)
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}

	finished := s.machine.Advance(r.Context())
	if finished == nil {
		writeJSON(w, http.StatusOK, s.stateLocked())
		return
	}

	// Terminal transition: persist and summarize.
	s.machine = nil
	sessions, loadErr := s.store.LoadSessions(r.Context())
	if loadErr != nil {
		s.log.Warn("loading sessions for summary failed", "error", loadErr)
	}
	previous := history.MostRecentSession(sessions, finished.WorkoutID, finished.ID)

	if err := s.store.SaveSession(r.Context(), *finished); err != nil {
		// The session is handed back even when the save fails so progress
		// is never silently discarded.
		s.log.Error("saving finished session failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   err.Error(),
			"session": finished,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"completed": true,
		"session":   finished,
		"summary":   analytics.Summarize(*finished, previous),
	})
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	s.machine.Retreat(r.Context())
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	s.machine.JumpToExercise(r.Context(), req.Index)
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reps      *int     `json:"reps"`
		Weight    *float64 `json:"weight"`
		Completed *bool    `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Reps != nil && *req.Reps < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps must be >= 0"})
		return
	}
	if req.Weight != nil && *req.Weight < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight must be >= 0"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	s.machine.UpdateCurrentSet(r.Context(), session.SetUpdate{
		Reps:      req.Reps,
		Weight:    req.Weight,
		Completed: req.Completed,
	})
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	s.machine.Abort(r.Context())
	s.machine = nil
	writeJSON(w, http.StatusOK, map[string]string{"status": "aborted"})
}
