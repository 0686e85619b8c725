package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/claude/flextrack/internal/models"
)

func sessionWithSets(id models.SessionID, workoutID models.WorkoutID, date string, sets map[models.ExerciseID][]models.SetData) models.TrainingSession {
	return models.TrainingSession{
		ID:              id,
		WorkoutID:       workoutID,
		Date:            date,
		ExerciseResults: sets,
	}
}

func TestTotalVolume(t *testing.T) {
	// Warmup and incomplete sets never count: 10x10 + 10x10 = 200.
	session := sessionWithSets("s1", "w1", "2026-08-30T09:00:00Z", map[models.ExerciseID][]models.SetData{
		"bench": {
			{Reps: 10, Weight: 50, IsWarmup: true, Completed: true},
			{Reps: 10, Weight: 10, Completed: true},
			{Reps: 10, Weight: 10, Completed: true},
			{Reps: 10, Weight: 100, Completed: false},
		},
	})
	if got := TotalVolume(session); got != 200 {
		t.Errorf("TotalVolume = %.1f, want 200.0", got)
	}
	if got := TotalSets(session); got != 2 {
		t.Errorf("TotalSets = %d, want 2", got)
	}
	if got := TotalReps(session); got != 20 {
		t.Errorf("TotalReps = %d, want 20", got)
	}
}

func TestTotalVolumeEmptySession(t *testing.T) {
	session := sessionWithSets("s1", "w1", "2026-08-30T09:00:00Z", nil)
	if got := TotalVolume(session); got != 0 {
		t.Errorf("TotalVolume = %.1f, want 0", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name       string
		start, end int64
		want       int
	}{
		{"exact hour", 1700000000000, 1700003600000, 60},
		{"rounds up", 1700000000000, 1700000000000 + 90500, 2}, // 90.5s
		{"rounds down", 1700000000000, 1700000000000 + 89000, 1},
		{"missing end", 1700000000000, 0, 0},
		{"missing start", 0, 1700003600000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.TrainingSession{StartTime: tt.start, EndTime: tt.end}
			if got := Duration(s); got != tt.want {
				t.Errorf("Duration = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVolumeChangePercent(t *testing.T) {
	current := sessionWithSets("s2", "w1", "2026-08-30T09:00:00Z", map[models.ExerciseID][]models.SetData{
		"bench": {{Reps: 10, Weight: 33, Completed: true}},
	})
	previous := sessionWithSets("s1", "w1", "2026-08-28T09:00:00Z", map[models.ExerciseID][]models.SetData{
		"bench": {{Reps: 10, Weight: 30, Completed: true}},
	})

	got := VolumeChangePercent(current, &previous)
	if got == nil || math.Abs(*got-10.0) > 1e-9 {
		t.Errorf("VolumeChangePercent = %v, want 10.0", got)
	}

	if VolumeChangePercent(current, nil) != nil {
		t.Error("nil previous should return nil")
	}

	// Zero previous volume resolves to nil, never Inf.
	empty := sessionWithSets("s0", "w1", "2026-08-26T09:00:00Z", nil)
	if VolumeChangePercent(current, &empty) != nil {
		t.Error("zero previous volume should return nil")
	}
}

func TestExerciseVolumes(t *testing.T) {
	session := sessionWithSets("s1", "w1", "2026-08-30T09:00:00Z", map[models.ExerciseID][]models.SetData{
		"bench": {
			{Reps: 10, Weight: 20, IsWarmup: true, Completed: true},
			{Reps: 8, Weight: 60, Completed: true},
		},
		"fly": {
			{Reps: 12, Weight: 15, Completed: false},
		},
	})

	volumes := ExerciseVolumes(session)
	if volumes["bench"] != 480 {
		t.Errorf("bench volume = %.1f, want 480.0", volumes["bench"])
	}
	// An exercise with nothing completed still appears, at zero.
	if v, ok := volumes["fly"]; !ok || v != 0 {
		t.Errorf("fly volume = %.1f (present %v), want 0 present", v, ok)
	}
}

func TestMaxLift(t *testing.T) {
	// MaxLift ignores warmups but, unlike volume, counts incomplete sets.
	session := sessionWithSets("s1", "w1", "2026-08-30T09:00:00Z", map[models.ExerciseID][]models.SetData{
		"bench": {
			{Reps: 10, Weight: 120, IsWarmup: true, Completed: true},
			{Reps: 8, Weight: 80, Completed: true},
			{Reps: 1, Weight: 100, Completed: false},
		},
	})
	if got := MaxLift(session); got != 100 {
		t.Errorf("MaxLift = %.1f, want 100.0", got)
	}
}

func TestStreak(t *testing.T) {
	now := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(time.RFC3339)
	}

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"empty", nil, 0},
		{"today only", []string{day(0)}, 1},
		{"ends today", []string{day(0), day(-1), day(-2)}, 3},
		{"ends yesterday", []string{day(-1), day(-2)}, 2},
		{"gap before today", []string{day(0), day(-2), day(-3)}, 1},
		{"broken two days ago", []string{day(-2), day(-3)}, 0},
		{"double session one day", []string{day(0), day(0), day(-1)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := make([]models.TrainingSession, len(tt.dates))
			for i, d := range tt.dates {
				sessions[i] = models.TrainingSession{ID: models.SessionID(rune('a' + i)), Date: d}
			}
			if got := Streak(sessions, now); got != tt.want {
				t.Errorf("Streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func plateauSession(id models.SessionID, date string, weight float64, reps int) models.TrainingSession {
	return sessionWithSets(id, "w1", date, map[models.ExerciseID][]models.SetData{
		"bench": {
			{Reps: 10, Weight: 20, IsWarmup: true, Completed: true},
			{Reps: reps, Weight: weight, Completed: true},
			{Reps: reps, Weight: weight, Completed: true},
			{Reps: 15, Weight: weight / 2, IsDropset: true, Completed: true},
		},
	})
}

func TestDetectPlateau(t *testing.T) {
	stuck := []models.TrainingSession{
		plateauSession("s1", "2026-08-20T09:00:00Z", 60, 10),
		plateauSession("s2", "2026-08-23T09:00:00Z", 60, 10),
		plateauSession("s3", "2026-08-26T09:00:00Z", 60, 10),
	}

	got := DetectPlateau(stuck, "w1", "bench", 3)
	if got == nil || !got.IsPlateauing {
		t.Fatalf("DetectPlateau = %+v, want a plateau", got)
	}
	if got.Weight != 60 || got.Reps != 10 || got.ConsecutiveCount != 3 {
		t.Errorf("plateau = %+v, want 60kg x10 over 3", got)
	}
}

func TestDetectPlateauProgressBreaks(t *testing.T) {
	progressing := []models.TrainingSession{
		plateauSession("s1", "2026-08-20T09:00:00Z", 60, 10),
		plateauSession("s2", "2026-08-23T09:00:00Z", 60, 10),
		plateauSession("s3", "2026-08-26T09:00:00Z", 62, 10),
	}
	if got := DetectPlateau(progressing, "w1", "bench", 3); got != nil {
		t.Errorf("DetectPlateau = %+v, progress should not plateau", got)
	}
}

func TestDetectPlateauEdgeCases(t *testing.T) {
	stuck := []models.TrainingSession{
		plateauSession("s1", "2026-08-20T09:00:00Z", 60, 10),
		plateauSession("s2", "2026-08-23T09:00:00Z", 60, 10),
	}

	// Fewer sessions than required.
	if got := DetectPlateau(stuck, "w1", "bench", 3); got != nil {
		t.Errorf("DetectPlateau with 2 of 3 sessions = %+v, want nil", got)
	}

	// A session with no completed working sets disqualifies.
	noWork := sessionWithSets("s3", "w1", "2026-08-26T09:00:00Z", map[models.ExerciseID][]models.SetData{
		"bench": {{Reps: 10, Weight: 20, IsWarmup: true, Completed: true}},
	})
	if got := DetectPlateau(append(stuck, noWork), "w1", "bench", 3); got != nil {
		t.Errorf("DetectPlateau with a zero-working-set session = %+v, want nil", got)
	}

	// Only the most recent N sessions matter: an old heavier session does
	// not break a current plateau.
	old := plateauSession("s0", "2026-08-01T09:00:00Z", 80, 8)
	recent := append([]models.TrainingSession{old}, stuck...)
	recent = append(recent, plateauSession("s3", "2026-08-26T09:00:00Z", 60, 10))
	if got := DetectPlateau(recent, "w1", "bench", 3); got == nil || !got.IsPlateauing {
		t.Errorf("DetectPlateau = %+v, old sessions should be ignored", got)
	}
}

func TestPersonalRecords(t *testing.T) {
	sessions := []models.TrainingSession{
		sessionWithSets("s2", "w1", "2026-08-23T09:00:00Z", map[models.ExerciseID][]models.SetData{
			"bench": {{Reps: 5, Weight: 100, Completed: true}},
			"squat": {{Reps: 8, Weight: 120, Completed: true}},
		}),
		sessionWithSets("s1", "w1", "2026-08-20T09:00:00Z", map[models.ExerciseID][]models.SetData{
			"bench": {
				{Reps: 10, Weight: 150, IsWarmup: true, Completed: true}, // warmup, ignored
				{Reps: 5, Weight: 100, Completed: true},
				{Reps: 12, Weight: 110, Completed: false}, // incomplete, ignored
			},
		}),
	}

	records := PersonalRecords(sessions)

	// Equal weights: the chronologically first occurrence wins.
	bench := records["bench"]
	if bench.Weight != 100 || bench.SessionID != "s1" {
		t.Errorf("bench PR = %+v, want 100kg from s1", bench)
	}
	squat := records["squat"]
	if squat.Weight != 120 || squat.SessionID != "s2" {
		t.Errorf("squat PR = %+v, want 120kg from s2", squat)
	}
}

func TestPersonalRecordsStrictImprovement(t *testing.T) {
	sessions := []models.TrainingSession{
		sessionWithSets("s1", "w1", "2026-08-20T09:00:00Z", map[models.ExerciseID][]models.SetData{
			"bench": {{Reps: 5, Weight: 100, Completed: true}},
		}),
		sessionWithSets("s2", "w1", "2026-08-23T09:00:00Z", map[models.ExerciseID][]models.SetData{
			"bench": {{Reps: 3, Weight: 102.5, Completed: true}},
		}),
	}

	records := PersonalRecords(sessions)
	bench := records["bench"]
	if bench.Weight != 102.5 || bench.SessionID != "s2" || bench.Reps != 3 {
		t.Errorf("bench PR = %+v, want 102.5kg from s2", bench)
	}
}

func TestSummarize(t *testing.T) {
	session := models.TrainingSession{
		ID:        "s2",
		WorkoutID: "w1",
		Date:      "2026-08-30T09:00:00Z",
		StartTime: 1700000000000,
		EndTime:   1700003600000,
		ExerciseResults: map[models.ExerciseID][]models.SetData{
			"bench": {{Reps: 10, Weight: 55, Completed: true}},
		},
	}
	previous := sessionWithSets("s1", "w1", "2026-08-28T09:00:00Z", map[models.ExerciseID][]models.SetData{
		"bench": {{Reps: 10, Weight: 50, Completed: true}},
	})

	summary := Summarize(session, &previous)
	if summary.SessionID != "s2" || summary.TotalVolume != 550 || summary.DurationMin != 60 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.VolumeChangePct == nil || math.Abs(*summary.VolumeChangePct-10.0) > 1e-9 {
		t.Errorf("VolumeChangePct = %v, want 10.0", summary.VolumeChangePct)
	}
	if summary.PreviousVolumes["bench"] != 500 {
		t.Errorf("PreviousVolumes = %+v", summary.PreviousVolumes)
	}

	first := Summarize(session, nil)
	if first.VolumeChangePct != nil {
		t.Error("first session should omit the change percentage")
	}
	if first.PreviousVolumes != nil {
		t.Error("first session should omit previous volumes")
	}
}
