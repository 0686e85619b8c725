// Package history locates prior-session data used to seed targets for a new
// session and to compare a session against the one before it.
package history

import (
	"sort"
	"time"

	"github.com/claude/flextrack/internal/models"
)

// MostRecentSession returns the newest session for the given workout, or nil
// if none exists. exclude, when non-empty, skips that session id; used when
// comparing a session against its own predecessor.
func MostRecentSession(sessions []models.TrainingSession, workoutID models.WorkoutID, exclude models.SessionID) *models.TrainingSession {
	matched := make([]models.TrainingSession, 0, len(sessions))
	for _, s := range sessions {
		if s.WorkoutID == workoutID && (exclude == "" || s.ID != exclude) {
			matched = append(matched, s)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return parseDate(matched[i].Date).After(parseDate(matched[j].Date))
	})
	return &matched[0]
}

// SetAt returns the set recorded at stepIndex for an exercise in a session.
// When the index exceeds what was recorded it falls back to the last recorded
// set; nil when the session is nil or has no sets for the exercise.
func SetAt(session *models.TrainingSession, exerciseID models.ExerciseID, stepIndex int) *models.SetData {
	if session == nil {
		return nil
	}
	sets := session.ExerciseResults[exerciseID]
	if len(sets) == 0 {
		return nil
	}
	if stepIndex >= len(sets) {
		stepIndex = len(sets) - 1
	}
	if stepIndex < 0 {
		stepIndex = 0
	}
	set := sets[stepIndex]
	return &set
}

// PriorSetAt looks up the most recent session for the workout and returns its
// set at stepIndex for the exercise, with the SetAt fallbacks. Used for
// seeding defaults and for the goal display during an active session.
func PriorSetAt(sessions []models.TrainingSession, workoutID models.WorkoutID, exerciseID models.ExerciseID, stepIndex int) *models.SetData {
	return SetAt(MostRecentSession(sessions, workoutID, ""), exerciseID, stepIndex)
}

// SortByDateDesc orders sessions newest first, in place. Unparseable dates
// sort last.
func SortByDateDesc(sessions []models.TrainingSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return parseDate(sessions[i].Date).After(parseDate(sessions[j].Date))
	})
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
