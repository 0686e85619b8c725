package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/flextrack/internal/models"
)

// memSink records checkpoint traffic in memory.
type memSink struct {
	saves    int
	clears   int
	last     *models.ActiveSessionData
	failSave bool
}

func (s *memSink) SaveActiveSession(ctx context.Context, data models.ActiveSessionData) error {
	if s.failSave {
		return errors.New("sink unavailable")
	}
	s.saves++
	s.last = &data
	return nil
}

func (s *memSink) ClearActiveSession(ctx context.Context) error {
	s.clears++
	s.last = nil
	return nil
}

func testWorkout() models.Workout {
	return models.Workout{
		ID:   "w1",
		Name: "Push Day",
		Exercises: []models.Exercise{
			{ID: "bench", Name: "Bench Press", Sets: 2, HasWarmup: true},
			{ID: "fly", Name: "Cable Fly", Sets: 2, HasDropset: true},
		},
	}
}

func newTestMachine(t *testing.T, last *models.TrainingSession, resume *models.ActiveSessionData) (*Machine, *memSink) {
	t.Helper()
	sink := &memSink{}
	m := New(testWorkout(), last, resume, sink, slog.New(slog.DiscardHandler))
	m.now = func() time.Time { return time.UnixMilli(1700000100000) }
	m.newID = func() models.SessionID { return "s-test" }
	return m, sink
}

func TestNewSeedsDefaults(t *testing.T) {
	m, _ := newTestMachine(t, nil, nil)

	exIdx, stepIdx := m.Position()
	if exIdx != 0 || stepIdx != 0 {
		t.Fatalf("position = (%d, %d), want (0, 0)", exIdx, stepIdx)
	}

	set := m.CurrentSet()
	if set.Reps != 10 || set.Weight != 20 {
		t.Errorf("seeded set = %d reps @ %.1f, want 10 @ 20.0", set.Reps, set.Weight)
	}
	if !set.IsWarmup {
		t.Error("first step of a warmup exercise should be flagged IsWarmup")
	}
	if set.Completed {
		t.Error("seeded set should not be completed")
	}

	if m.Goal() != nil {
		t.Error("Goal should be nil without a prior session")
	}
}

func TestNewSeedsFromPriorSession(t *testing.T) {
	last := &models.TrainingSession{
		ID:        "prev",
		WorkoutID: "w1",
		Date:      "2026-08-20T10:00:00Z",
		ExerciseResults: map[models.ExerciseID][]models.SetData{
			"bench": {
				{Reps: 12, Weight: 40, IsWarmup: true, Completed: true},
				{Reps: 8, Weight: 80, Completed: true},
			},
		},
	}
	m, _ := newTestMachine(t, last, nil)

	// Step 0 takes the prior warmup values.
	if set := m.CurrentSet(); set.Reps != 12 || set.Weight != 40 {
		t.Errorf("step 0 = %d reps @ %.1f, want 12 @ 40.0", set.Reps, set.Weight)
	}

	// The prior session only recorded 2 sets; step 2 falls back to its last.
	sets := m.results["bench"]
	if sets[2].Reps != 8 || sets[2].Weight != 80 {
		t.Errorf("step 2 = %d reps @ %.1f, want fallback 8 @ 80.0", sets[2].Reps, sets[2].Weight)
	}

	goal := m.Goal()
	if goal == nil || goal.Reps != 12 || goal.Weight != 40 {
		t.Errorf("Goal = %+v, want prior warmup set", goal)
	}
}

func TestAdvanceWalksStepsAndExercises(t *testing.T) {
	m, sink := newTestMachine(t, nil, nil)
	ctx := context.Background()

	// bench has 3 steps (warmup + 2 sets).
	for i := 0; i < 3; i++ {
		if finished := m.Advance(ctx); finished != nil {
			t.Fatalf("Advance %d returned a session early", i)
		}
	}

	exIdx, stepIdx := m.Position()
	if exIdx != 1 || stepIdx != 0 {
		t.Fatalf("position after bench = (%d, %d), want (1, 0)", exIdx, stepIdx)
	}
	if m.CurrentExercise().ID != "fly" {
		t.Errorf("current exercise = %s, want fly", m.CurrentExercise().ID)
	}

	// Every bench step was marked completed on the way through.
	for i, set := range m.results["bench"] {
		if !set.Completed {
			t.Errorf("bench step %d not completed", i)
		}
	}

	// Crossing the exercise boundary seeded fly with its dropset step.
	flySets := m.results["fly"]
	if len(flySets) != 3 {
		t.Fatalf("fly seeded with %d sets, want 3", len(flySets))
	}
	if !flySets[2].IsDropset {
		t.Error("last fly step should be flagged IsDropset")
	}

	if sink.saves == 0 {
		t.Error("advancing should write checkpoints")
	}
}

func TestAdvanceTerminal(t *testing.T) {
	m, sink := newTestMachine(t, nil, nil)
	ctx := context.Background()

	var finished *models.TrainingSession
	for i := 0; i < TotalSteps(m.workout); i++ {
		finished = m.Advance(ctx)
	}
	if finished == nil {
		t.Fatal("final Advance should return the session")
	}

	if finished.ID != "s-test" {
		t.Errorf("session ID = %s", finished.ID)
	}
	if finished.WorkoutID != "w1" {
		t.Errorf("session WorkoutID = %s", finished.WorkoutID)
	}
	if finished.EndTime != 1700000100000 {
		t.Errorf("EndTime = %d", finished.EndTime)
	}
	if finished.Date != time.UnixMilli(finished.StartTime).UTC().Format(time.RFC3339) {
		t.Errorf("Date = %q does not match StartTime %d", finished.Date, finished.StartTime)
	}
	if finished.WorkoutSnapshot == nil || finished.WorkoutSnapshot.Name != "Push Day" {
		t.Error("session should carry a workout snapshot")
	}
	for id, sets := range finished.ExerciseResults {
		for i, set := range sets {
			if !set.Completed {
				t.Errorf("%s step %d not completed in final session", id, i)
			}
		}
	}

	if sink.clears != 1 {
		t.Errorf("checkpoint clears = %d, want 1", sink.clears)
	}
	if !m.Done() {
		t.Error("machine should be done after the terminal transition")
	}

	// The terminal transition fires exactly once.
	if again := m.Advance(ctx); again != nil {
		t.Error("repeated Advance after completion returned a session")
	}
	if sink.clears != 1 {
		t.Errorf("repeated Advance cleared the checkpoint again (clears = %d)", sink.clears)
	}
}

func TestRetreat(t *testing.T) {
	m, sink := newTestMachine(t, nil, nil)
	ctx := context.Background()

	// At the origin Retreat is a no-op and writes no checkpoint.
	before := sink.saves
	m.Retreat(ctx)
	if exIdx, stepIdx := m.Position(); exIdx != 0 || stepIdx != 0 {
		t.Errorf("position after origin retreat = (%d, %d), want (0, 0)", exIdx, stepIdx)
	}
	if sink.saves != before {
		t.Error("origin retreat should not checkpoint")
	}

	// Move to the second exercise, then retreat across the boundary: the
	// target is the previous exercise's last step, dropset included.
	for i := 0; i < 3; i++ {
		m.Advance(ctx)
	}
	m.Advance(ctx) // fly step 0 -> 1
	m.Retreat(ctx)
	m.Retreat(ctx)
	exIdx, stepIdx := m.Position()
	if exIdx != 0 || stepIdx != 2 {
		t.Errorf("position after boundary retreat = (%d, %d), want (0, 2)", exIdx, stepIdx)
	}

	// Retreat does not undo completion.
	if !m.CurrentSet().Completed {
		t.Error("retreat should leave the completion flag alone")
	}
}

func TestJumpToExercise(t *testing.T) {
	m, _ := newTestMachine(t, nil, nil)
	ctx := context.Background()

	// Jumping to an unseeded exercise lands on step 0 and seeds it.
	m.JumpToExercise(ctx, 1)
	if exIdx, stepIdx := m.Position(); exIdx != 1 || stepIdx != 0 {
		t.Fatalf("position = (%d, %d), want (1, 0)", exIdx, stepIdx)
	}
	if len(m.results["fly"]) != 3 {
		t.Error("jump target was not seeded")
	}

	// Complete fly entirely without triggering the terminal transition
	// (fly is the last exercise), then jump back: lands on the last step.
	done := true
	m.Advance(ctx)
	m.Advance(ctx)
	m.UpdateCurrentSet(ctx, SetUpdate{Completed: &done})
	m.JumpToExercise(ctx, 0)
	m.JumpToExercise(ctx, 1)
	if _, stepIdx := m.Position(); stepIdx != 2 {
		t.Errorf("jump to fully completed exercise landed on step %d, want 2", stepIdx)
	}

	// Partially completed: lands on the first incomplete step.
	m.results["bench"][0].Completed = true
	m.JumpToExercise(ctx, 0)
	if exIdx, stepIdx := m.Position(); exIdx != 0 || stepIdx != 1 {
		t.Errorf("position = (%d, %d), want (0, 1)", exIdx, stepIdx)
	}

	// Out-of-range indexes are ignored.
	m.JumpToExercise(ctx, 5)
	m.JumpToExercise(ctx, -1)
	if exIdx, _ := m.Position(); exIdx != 0 {
		t.Errorf("out-of-range jump moved the machine to exercise %d", exIdx)
	}
}

func TestUpdateCurrentSet(t *testing.T) {
	m, sink := newTestMachine(t, nil, nil)
	ctx := context.Background()

	reps := 15
	m.UpdateCurrentSet(ctx, SetUpdate{Reps: &reps})
	set := m.CurrentSet()
	if set.Reps != 15 {
		t.Errorf("Reps = %d, want 15", set.Reps)
	}
	if set.Weight != 20 {
		t.Errorf("Weight = %.1f, partial update should not touch it", set.Weight)
	}

	weight := 42.5
	done := true
	m.UpdateCurrentSet(ctx, SetUpdate{Weight: &weight, Completed: &done})
	set = m.CurrentSet()
	if set.Weight != 42.5 || !set.Completed {
		t.Errorf("set = %+v after full update", set)
	}

	if sink.saves != 2 {
		t.Errorf("checkpoint saves = %d, want 2", sink.saves)
	}
}

func TestAbort(t *testing.T) {
	m, sink := newTestMachine(t, nil, nil)
	ctx := context.Background()

	m.Advance(ctx)
	m.Abort(ctx)

	if !m.Done() {
		t.Error("machine should be done after abort")
	}
	if sink.clears != 1 {
		t.Errorf("checkpoint clears = %d, want 1", sink.clears)
	}

	// All operations are no-ops afterwards.
	saves := sink.saves
	m.Advance(ctx)
	m.Retreat(ctx)
	m.JumpToExercise(ctx, 1)
	reps := 1
	m.UpdateCurrentSet(ctx, SetUpdate{Reps: &reps})
	if sink.saves != saves {
		t.Error("operations after abort still wrote checkpoints")
	}
}

func TestResumeFromCheckpoint(t *testing.T) {
	resume := &models.ActiveSessionData{
		WorkoutID: "w1",
		StartTime: 1699999000000,
		ExerciseResults: map[models.ExerciseID][]models.SetData{
			"bench": {
				{Reps: 10, Weight: 20, IsWarmup: true, Completed: true},
				{Reps: 8, Weight: 60, Completed: true},
				{Reps: 8, Weight: 60},
			},
		},
		CurrentExIndex:   0,
		CurrentStepIndex: 2,
	}
	m, _ := newTestMachine(t, nil, resume)

	if m.startTime != 1699999000000 {
		t.Errorf("startTime = %d, resume should keep the original", m.startTime)
	}
	if exIdx, stepIdx := m.Position(); exIdx != 0 || stepIdx != 2 {
		t.Errorf("position = (%d, %d), want (0, 2)", exIdx, stepIdx)
	}
	if !m.results["bench"][1].Completed {
		t.Error("restored results lost a completion flag")
	}
}

func TestResumeClampsOutOfRangeIndexes(t *testing.T) {
	resume := &models.ActiveSessionData{
		WorkoutID:        "w1",
		StartTime:        1699999000000,
		CurrentExIndex:   9,
		CurrentStepIndex: 9,
	}
	m, _ := newTestMachine(t, nil, resume)

	exIdx, stepIdx := m.Position()
	if exIdx != 1 {
		t.Errorf("exIdx = %d, want clamped to 1", exIdx)
	}
	if stepIdx != 2 {
		t.Errorf("stepIdx = %d, want clamped to 2", stepIdx)
	}
}

func TestResumeReconcilesEditedWorkout(t *testing.T) {
	resume := &models.ActiveSessionData{
		WorkoutID: "w1",
		StartTime: 1699999000000,
		ExerciseResults: map[models.ExerciseID][]models.SetData{
			"bench": {
				{Reps: 10, Weight: 20, IsWarmup: true, Completed: true},
				{Reps: 8, Weight: 60, Completed: true},
				{Reps: 8, Weight: 60},
			},
		},
		CurrentExIndex:   0,
		CurrentStepIndex: 2,
	}

	// Bench was edited from 2 to 4 sets while the checkpoint was on disk.
	grown := testWorkout()
	grown.Exercises[0].Sets = 4
	sink := &memSink{}
	m := New(grown, nil, resume, sink, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	sets := m.results["bench"]
	if len(sets) != 5 {
		t.Fatalf("len(results) = %d, want 5 after reconciling with the edited exercise", len(sets))
	}
	if !sets[1].Completed || sets[1].Weight != 60 {
		t.Error("recorded entries should survive reconciliation")
	}
	if sets[4].Reps != 10 || sets[4].Weight != 20 {
		t.Errorf("tail entry = %d reps @ %.1f, want seeded defaults", sets[4].Reps, sets[4].Weight)
	}
	if sets[4].IsWarmup || sets[4].IsDropset {
		t.Error("seeded tail entry should be a plain working set")
	}

	// Walking the rest of the exercise must stay in range.
	for i := 0; i < 3; i++ {
		if finished := m.Advance(ctx); finished != nil {
			t.Fatalf("Advance %d finished the session early", i)
		}
	}
	if exIdx, stepIdx := m.Position(); exIdx != 1 || stepIdx != 0 {
		t.Errorf("position = (%d, %d), want (1, 0) after finishing bench", exIdx, stepIdx)
	}

	// The opposite edit: bench shrunk to a single plain set.
	shrunk := testWorkout()
	shrunk.Exercises[0].Sets = 1
	shrunk.Exercises[0].HasWarmup = false
	m = New(shrunk, nil, resume, sink, slog.New(slog.DiscardHandler))

	if got := len(m.results["bench"]); got != 1 {
		t.Fatalf("len(results) = %d, want truncated to 1", got)
	}
	if _, stepIdx := m.Position(); stepIdx != 0 {
		t.Errorf("stepIdx = %d, want clamped to 0", stepIdx)
	}
	if m.results["bench"][0].IsWarmup {
		t.Error("warmup flag should follow the current step list")
	}
}

func TestResumeIgnoresMismatchedWorkout(t *testing.T) {
	resume := &models.ActiveSessionData{
		WorkoutID:        "other",
		StartTime:        1699999000000,
		CurrentExIndex:   1,
		CurrentStepIndex: 1,
	}
	m, _ := newTestMachine(t, nil, resume)

	if exIdx, stepIdx := m.Position(); exIdx != 0 || stepIdx != 0 {
		t.Errorf("position = (%d, %d), mismatched checkpoint should start fresh", exIdx, stepIdx)
	}
	if m.startTime == 1699999000000 {
		t.Error("mismatched checkpoint should not keep the old start time")
	}
}

func TestCheckpointFailureIsNonFatal(t *testing.T) {
	sink := &memSink{failSave: true}
	m := New(testWorkout(), nil, nil, sink, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	m.Advance(ctx)
	if exIdx, stepIdx := m.Position(); exIdx != 0 || stepIdx != 1 {
		t.Errorf("position = (%d, %d), failed checkpoint should not block progression", exIdx, stepIdx)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m, _ := newTestMachine(t, nil, nil)

	snap := m.Snapshot()
	snap.ExerciseResults["bench"][0].Reps = 999
	if m.CurrentSet().Reps == 999 {
		t.Error("mutating a snapshot leaked into the machine")
	}
}
