package analytics

import "github.com/claude/flextrack/internal/models"

// SessionSummary is the post-workout report card: totals for one session and
// the comparison against the previous session of the same workout.
type SessionSummary struct {
	SessionID       models.SessionID              `json:"sessionId"`
	WorkoutID       models.WorkoutID              `json:"workoutId"`
	Date            string                        `json:"date"`
	DurationMin     int                           `json:"durationMin"`
	TotalVolume     float64                       `json:"totalVolume"`
	TotalSets       int                           `json:"totalSets"`
	TotalReps       int                           `json:"totalReps"`
	VolumeChangePct *float64                      `json:"volumeChangePct,omitempty"`
	ExerciseVolumes map[models.ExerciseID]float64 `json:"exerciseVolumes"`
	PreviousVolumes map[models.ExerciseID]float64 `json:"previousVolumes,omitempty"`
}

// Summarize builds the summary for a session. previous may be nil (first
// session of a workout); the change percentage is omitted in that case.
func Summarize(session models.TrainingSession, previous *models.TrainingSession) SessionSummary {
	summary := SessionSummary{
		SessionID:       session.ID,
		WorkoutID:       session.WorkoutID,
		Date:            session.Date,
		DurationMin:     Duration(session),
		TotalVolume:     TotalVolume(session),
		TotalSets:       TotalSets(session),
		TotalReps:       TotalReps(session),
		VolumeChangePct: VolumeChangePercent(session, previous),
		ExerciseVolumes: ExerciseVolumes(session),
	}
	if previous != nil {
		summary.PreviousVolumes = ExerciseVolumes(*previous)
	}
	return summary
}
