// Package analytics derives training metrics from accumulated session
// history. Every function is pure, never mutates its input, and degrades to
// zero or nil on empty data; division-by-zero cases resolve to nil rather
// than NaN or Inf.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/claude/flextrack/internal/models"
)

// TotalVolume sums weight*reps over completed non-warmup sets. Volume is the
// primary training-load metric.
func TotalVolume(session models.TrainingSession) float64 {
	var total float64
	for _, sets := range session.ExerciseResults {
		for _, set := range sets {
			if set.Completed && !set.IsWarmup {
				total += set.Weight * float64(set.Reps)
			}
		}
	}
	return total
}

// TotalSets counts completed non-warmup sets.
func TotalSets(session models.TrainingSession) int {
	total := 0
	for _, sets := range session.ExerciseResults {
		for _, set := range sets {
			if set.Completed && !set.IsWarmup {
				total++
			}
		}
	}
	return total
}

// TotalReps sums reps over completed non-warmup sets.
func TotalReps(session models.TrainingSession) int {
	total := 0
	for _, sets := range session.ExerciseResults {
		for _, set := range sets {
			if set.Completed && !set.IsWarmup {
				total += set.Reps
			}
		}
	}
	return total
}

// Duration returns the session length in whole minutes, 0 when either
// timestamp is absent.
func Duration(session models.TrainingSession) int {
	if session.StartTime == 0 || session.EndTime == 0 {
		return 0
	}
	return int(math.Round(float64(session.EndTime-session.StartTime) / 60000))
}

// VolumeChangePercent compares a session's volume against its predecessor.
// Returns nil when there is no previous session or its volume is zero.
func VolumeChangePercent(current models.TrainingSession, previous *models.TrainingSession) *float64 {
	if previous == nil {
		return nil
	}
	prevVolume := TotalVolume(*previous)
	if prevVolume == 0 {
		return nil
	}
	change := (TotalVolume(current) - prevVolume) / prevVolume * 100
	return &change
}

// ExerciseVolumes returns completed non-warmup volume per exercise.
func ExerciseVolumes(session models.TrainingSession) map[models.ExerciseID]float64 {
	volumes := make(map[models.ExerciseID]float64, len(session.ExerciseResults))
	for exID, sets := range session.ExerciseResults {
		var volume float64
		for _, set := range sets {
			if set.Completed && !set.IsWarmup {
				volume += set.Weight * float64(set.Reps)
			}
		}
		volumes[exID] = volume
	}
	return volumes
}

// MaxLift returns the heaviest non-warmup weight recorded in a session,
// 0 when there are no non-warmup sets.
func MaxLift(session models.TrainingSession) float64 {
	var max float64
	for _, sets := range session.ExerciseResults {
		for _, set := range sets {
			if !set.IsWarmup && set.Weight > max {
				max = set.Weight
			}
		}
	}
	return max
}

// Streak counts consecutive calendar days with at least one session, ending
// today, or yesterday when today has no session yet. Breaks on the first
// gap. now anchors "today" so callers control the clock.
func Streak(sessions []models.TrainingSession, now time.Time) int {
	days := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		if t, err := time.Parse(time.RFC3339, s.Date); err == nil {
			days[t.UTC().Format("2006-01-02")] = true
		}
	}

	day := now.UTC()
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// PlateauResult reports a detected lack of progression: identical rounded
// average weight/reps for an exercise across consecutive sessions.
type PlateauResult struct {
	IsPlateauing     bool    `json:"isPlateauing"`
	ConsecutiveCount int     `json:"consecutiveCount"`
	Weight           int     `json:"weight"`
	Reps             int     `json:"reps"`
}

// DetectPlateau checks the most recent requiredConsecutive sessions of a
// workout for identical average working-set weight and reps on one exercise.
// Averages cover completed sets that are neither warmup nor dropset, rounded
// to the nearest integer before comparison. A session with no working sets
// for the exercise disqualifies the plateau. Returns nil when fewer than
// requiredConsecutive sessions exist or the averages differ.
func DetectPlateau(sessions []models.TrainingSession, workoutID models.WorkoutID, exerciseID models.ExerciseID, requiredConsecutive int) *PlateauResult {
	matched := make([]models.TrainingSession, 0, len(sessions))
	for _, s := range sessions {
		if s.WorkoutID == workoutID {
			matched = append(matched, s)
		}
	}
	if len(matched) < requiredConsecutive {
		return nil
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date > matched[j].Date
	})

	refWeight, refReps := -1, -1
	for _, s := range matched[:requiredConsecutive] {
		var weightSum, repsSum float64
		count := 0
		for _, set := range s.ExerciseResults[exerciseID] {
			if set.Completed && !set.IsWarmup && !set.IsDropset {
				weightSum += set.Weight
				repsSum += float64(set.Reps)
				count++
			}
		}
		if count == 0 {
			return nil
		}
		avgWeight := int(math.Round(weightSum / float64(count)))
		avgReps := int(math.Round(repsSum / float64(count)))
		if refWeight == -1 {
			refWeight, refReps = avgWeight, avgReps
		} else if avgWeight != refWeight || avgReps != refReps {
			return nil
		}
	}

	return &PlateauResult{
		IsPlateauing:     true,
		ConsecutiveCount: requiredConsecutive,
		Weight:           refWeight,
		Reps:             refReps,
	}
}

// PersonalRecord is the heaviest completed working set ever recorded for an
// exercise.
type PersonalRecord struct {
	ExerciseID models.ExerciseID `json:"exerciseId"`
	Weight     float64           `json:"weight"`
	Reps       int               `json:"reps"`
	SessionID  models.SessionID  `json:"sessionId"`
	Date       string            `json:"date"`
}

// PersonalRecords scans all sessions in chronological order and returns the
// max-weight completed working set per exercise. Ties keep the earliest
// occurrence.
func PersonalRecords(sessions []models.TrainingSession) map[models.ExerciseID]PersonalRecord {
	ordered := append([]models.TrainingSession(nil), sessions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date < ordered[j].Date
	})

	records := make(map[models.ExerciseID]PersonalRecord)
	for _, s := range ordered {
		for _, exID := range sortedExerciseIDs(s.ExerciseResults) {
			for _, set := range s.ExerciseResults[exID] {
				if !set.Completed || set.IsWarmup || set.IsDropset {
					continue
				}
				if rec, ok := records[exID]; !ok || set.Weight > rec.Weight {
					records[exID] = PersonalRecord{
						ExerciseID: exID,
						Weight:     set.Weight,
						Reps:       set.Reps,
						SessionID:  s.ID,
						Date:       s.Date,
					}
				}
			}
		}
	}
	return records
}

// sortedExerciseIDs keeps the scan order deterministic across runs; map
// iteration order would otherwise make tie-breaking unstable.
func sortedExerciseIDs(results map[models.ExerciseID][]models.SetData) []models.ExerciseID {
	ids := make([]models.ExerciseID, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
