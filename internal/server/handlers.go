package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/flextrack/internal/analytics"
	"github.com/claude/flextrack/internal/history"
	"github.com/claude/flextrack/internal/importer"
	"github.com/claude/flextrack/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.store.LoadWorkouts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleSaveWorkout(w http.ResponseWriter, r *http.Request) {
	var workout models.Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if workout.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if workout.ID == "" {
		workout.ID = models.WorkoutID(uuid.NewString())
	}
	for i := range workout.Exercises {
		if workout.Exercises[i].ID == "" {
			workout.Exercises[i].ID = models.ExerciseID(uuid.NewString())
		}
		if workout.Exercises[i].Sets < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "every exercise needs at least one set"})
			return
		}
	}

	if err := s.store.SaveWorkout(r.Context(), workout); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id := models.WorkoutID(chi.URLParam(r, "id"))
	if err := s.store.DeleteWorkout(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleNextWorkout suggests the workout after the most recently performed
// one, cycling through the library in order; the first workout when there is
// no history.
func (s *Server) handleNextWorkout(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.store.LoadWorkouts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if len(workouts) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workouts"})
		return
	}

	sessions, err := s.store.LoadSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	next := workouts[0]
	if len(sessions) > 0 {
		lastWorkoutID := sessions[len(sessions)-1].WorkoutID
		for i, workout := range workouts {
			if workout.ID == lastWorkoutID {
				next = workouts[(i+1)%len(workouts)]
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.LoadSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if filter := r.URL.Query().Get("workoutId"); filter != "" {
		filtered := make([]models.TrainingSession, 0, len(sessions))
		for _, session := range sessions {
			if session.WorkoutID == models.WorkoutID(filter) {
				filtered = append(filtered, session)
			}
		}
		sessions = filtered
	}
	if sessions == nil {
		sessions = []models.TrainingSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// handleSaveSession accepts a full session replacement, used by the edit
// flow outside the progression engine.
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	var session models.TrainingSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if session.ID == "" {
		session.ID = models.SessionID(uuid.NewString())
	}
	if session.WorkoutID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workoutId is required"})
		return
	}

	if err := s.store.SaveSession(r.Context(), session); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := models.SessionID(chi.URLParam(r, "id"))
	if err := s.store.DeleteSession(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	id := models.SessionID(chi.URLParam(r, "id"))

	sessions, err := s.store.LoadSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	for _, session := range sessions {
		if session.ID == id {
			previous := history.MostRecentSession(sessions, session.WorkoutID, session.ID)
			writeJSON(w, http.StatusOK, analytics.Summarize(session, previous))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
}

func (s *Server) handleListDailyLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.LoadDailyLogs(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []models.DailyLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleSaveDailyLog(w http.ResponseWriter, r *http.Request) {
	var log models.DailyLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if log.Date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	if err := s.store.SaveDailyLog(r.Context(), log); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) handleDeleteDailyLog(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteDailyLog(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dry_run") == "true"
	imp := importer.New(s.store, s.log, dryRun)
	stats, err := imp.ImportJSON(r.Context(), r.Body)
	if err != nil {
		s.log.Error("import error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
