package server

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/claude/flextrack/internal/analytics"
	"github.com/claude/flextrack/internal/models"
)

func (s *Server) handleDataStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetDataStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.LoadSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"streak": analytics.Streak(sessions, time.Now()),
	})
}

func (s *Server) handlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.LoadSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, analytics.PersonalRecords(sessions))
}

func (s *Server) handlePlateau(w http.ResponseWriter, r *http.Request) {
	workoutID := models.WorkoutID(r.URL.Query().Get("workoutId"))
	exerciseID := models.ExerciseID(r.URL.Query().Get("exerciseId"))
	if workoutID == "" || exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workoutId and exerciseId are required"})
		return
	}
	n := 3
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "n must be an integer >= 2"})
			return
		}
		n = parsed
	}

	sessions, err := s.store.LoadSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	result := analytics.DetectPlateau(sessions, workoutID, exerciseID, n)
	if result == nil {
		result = &analytics.PlateauResult{}
	}
	writeJSON(w, http.StatusOK, result)
}

// strengthPoint pairs a dated body-weight measurement with the heaviest lift
// for the same day, falling back to the most recent earlier session.
type strengthPoint struct {
	Date       string  `json:"date"`
	BodyWeight float64 `json:"bodyWeight"`
	MaxLift    float64 `json:"maxLift"`
}

func (s *Server) handleStrengthSeries(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.LoadDailyLogs(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	sessions, err := s.store.LoadSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Sessions sorted ascending by date so a binary search finds the latest
	// session at or before each log's day.
	ordered := append([]models.TrainingSession(nil), sessions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date < ordered[j].Date
	})

	points := make([]strengthPoint, 0, len(logs))
	for _, log := range logs {
		if log.Weight <= 0 {
			continue
		}
		// log.Date is YYYY-MM-DD; session dates are RFC 3339, so the day
		// prefix compares lexicographically.
		dayEnd := log.Date + "T23:59:59Z"
		idx := sort.Search(len(ordered), func(i int) bool {
			return ordered[i].Date > dayEnd
		})
		point := strengthPoint{Date: log.Date, BodyWeight: log.Weight}
		if idx > 0 {
			point.MaxLift = analytics.MaxLift(ordered[idx-1])
		}
		points = append(points, point)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	writeJSON(w, http.StatusOK, points)
}
