// Package session implements the in-workout progression engine: the step
// sequencer and the state machine that walks a user through warmup, working
// sets and drop sets across an ordered exercise list. The machine is a plain
// constructible value owned by its caller; the only stored state is the
// checkpoint it writes through the CheckpointSink after every mutation.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/flextrack/internal/history"
	"github.com/claude/flextrack/internal/models"
	"github.com/google/uuid"
)

// Default targets for an exercise with no prior session.
const (
	defaultReps   = 10
	defaultWeight = 20
)

// CheckpointSink receives the active-session snapshot after every mutation.
// Both storage implementations satisfy it. Save failures are non-fatal: the
// in-memory machine stays the source of truth and the next mutation retries.
type CheckpointSink interface {
	SaveActiveSession(ctx context.Context, data models.ActiveSessionData) error
	ClearActiveSession(ctx context.Context) error
}

// SetUpdate is a partial update merged into the current set. Nil fields are
// left untouched. Warmup/dropset classification is fixed at seeding time and
// cannot be changed here.
type SetUpdate struct {
	Reps      *int
	Weight    *float64
	Completed *bool
}

// Machine is the session state machine. Not safe for concurrent use; the
// caller serializes operations (a workout is a single-user interaction).
type Machine struct {
	workout   models.Workout
	last      *models.TrainingSession
	startTime int64 // epoch ms
	exIdx     int
	stepIdx   int
	results   map[models.ExerciseID][]models.SetData
	done      bool

	sink CheckpointSink
	log  *slog.Logger

	now   func() time.Time
	newID func() models.SessionID
}

// New creates a machine for the given workout. last, when non-nil, is the
// most recent prior session for the workout and seeds target values. resume,
// when non-nil and matching the workout, restores a checkpointed session;
// otherwise the machine starts fresh at the first step.
func New(workout models.Workout, last *models.TrainingSession, resume *models.ActiveSessionData, sink CheckpointSink, log *slog.Logger) *Machine {
	m := &Machine{
		workout: workout,
		last:    last,
		results: make(map[models.ExerciseID][]models.SetData),
		sink:    sink,
		log:     log,
		now:     time.Now,
		newID:   func() models.SessionID { return models.SessionID(uuid.NewString()) },
	}
	if resume != nil && resume.WorkoutID == workout.ID {
		m.startTime = resume.StartTime
		m.exIdx = clamp(resume.CurrentExIndex, 0, len(workout.Exercises)-1)
		for _, ex := range workout.Exercises {
			if old, ok := resume.ExerciseResults[ex.ID]; ok {
				m.results[ex.ID] = m.reconcile(ex, old)
			}
		}
		steps := StepCount(workout.Exercises[m.exIdx])
		m.stepIdx = clamp(resume.CurrentStepIndex, 0, steps-1)
	} else {
		m.startTime = m.now().UnixMilli()
	}
	m.seedCurrent()
	return m
}

// Position returns the current (exercise index, step index) pair.
func (m *Machine) Position() (exIdx, stepIdx int) {
	return m.exIdx, m.stepIdx
}

// Done reports whether the machine has reached the terminal transition or
// been aborted. All operations are no-ops afterwards.
func (m *Machine) Done() bool {
	return m.done
}

// WorkoutID returns the id of the workout being performed.
func (m *Machine) WorkoutID() models.WorkoutID {
	return m.workout.ID
}

// WorkoutName returns the name of the workout being performed.
func (m *Machine) WorkoutName() string {
	return m.workout.Name
}

// CurrentExercise returns the exercise the machine is positioned on.
func (m *Machine) CurrentExercise() models.Exercise {
	return m.workout.Exercises[m.exIdx]
}

// CurrentStep returns the step the machine is positioned on.
func (m *Machine) CurrentStep() Step {
	return BuildSteps(m.CurrentExercise())[m.stepIdx]
}

// CurrentSet returns the in-progress set data at the current position.
func (m *Machine) CurrentSet() models.SetData {
	return m.results[m.CurrentExercise().ID][m.stepIdx]
}

// Goal returns what the prior session recorded at the current position, or
// nil when there is no prior session.
func (m *Machine) Goal() *models.SetData {
	return history.SetAt(m.last, m.CurrentExercise().ID, m.stepIdx)
}

// Snapshot returns the checkpoint value for the current state.
func (m *Machine) Snapshot() models.ActiveSessionData {
	results := make(map[models.ExerciseID][]models.SetData, len(m.results))
	for id, sets := range m.results {
		results[id] = append([]models.SetData(nil), sets...)
	}
	return models.ActiveSessionData{
		WorkoutID:        m.workout.ID,
		StartTime:        m.startTime,
		ExerciseResults:  results,
		CurrentExIndex:   m.exIdx,
		CurrentStepIndex: m.stepIdx,
	}
}

// UpdateCurrentSet merges a partial update into the current set and writes
// the checkpoint through.
func (m *Machine) UpdateCurrentSet(ctx context.Context, upd SetUpdate) {
	if m.done {
		return
	}
	sets := m.results[m.CurrentExercise().ID]
	if upd.Reps != nil {
		sets[m.stepIdx].Reps = *upd.Reps
	}
	if upd.Weight != nil {
		sets[m.stepIdx].Weight = *upd.Weight
	}
	if upd.Completed != nil {
		sets[m.stepIdx].Completed = *upd.Completed
	}
	m.checkpoint(ctx)
}

// Advance marks the current set completed and moves forward: next step, then
// next exercise, then the terminal transition. On the terminal transition it
// returns the finalized session exactly once (repeated calls are no-ops)
// and clears the checkpoint. Non-terminal calls return nil.
func (m *Machine) Advance(ctx context.Context) *models.TrainingSession {
	if m.done {
		return nil
	}

	exID := m.CurrentExercise().ID
	m.results[exID][m.stepIdx].Completed = true

	steps := StepCount(m.CurrentExercise())
	switch {
	case m.stepIdx < steps-1:
		m.stepIdx++
	case m.exIdx < len(m.workout.Exercises)-1:
		m.exIdx++
		m.stepIdx = 0
		m.seedCurrent()
	default:
		m.done = true
		snapshot := m.workout
		session := &models.TrainingSession{
			ID:              m.newID(),
			WorkoutID:       m.workout.ID,
			Date:            time.UnixMilli(m.startTime).UTC().Format(time.RFC3339),
			StartTime:       m.startTime,
			EndTime:         m.now().UnixMilli(),
			ExerciseResults: m.results,
			WorkoutSnapshot: &snapshot,
		}
		if err := m.sink.ClearActiveSession(ctx); err != nil {
			m.log.Warn("clearing checkpoint failed", "error", err)
		}
		return session
	}

	m.checkpoint(ctx)
	return nil
}

// Retreat moves one step back: previous step, or the last step of the
// previous exercise. A no-op at the very first step of the first exercise.
// Completion flags are left as they are; retreat is navigation, not undo.
func (m *Machine) Retreat(ctx context.Context) {
	if m.done {
		return
	}
	switch {
	case m.stepIdx > 0:
		m.stepIdx--
	case m.exIdx > 0:
		m.exIdx--
		m.stepIdx = StepCount(m.CurrentExercise()) - 1
	default:
		return
	}
	m.checkpoint(ctx)
}

// JumpToExercise positions the machine on the given exercise, at its first
// incomplete step, or its last step when every set is complete, or step 0
// when the exercise has not been seeded yet. Out-of-range indexes are
// ignored.
func (m *Machine) JumpToExercise(ctx context.Context, index int) {
	if m.done || index < 0 || index >= len(m.workout.Exercises) {
		return
	}
	m.exIdx = index

	ex := m.workout.Exercises[index]
	sets, seeded := m.results[ex.ID]
	if !seeded {
		m.stepIdx = 0
		m.seedCurrent()
		m.checkpoint(ctx)
		return
	}

	m.stepIdx = len(sets) - 1
	for i, set := range sets {
		if !set.Completed {
			m.stepIdx = i
			break
		}
	}
	m.checkpoint(ctx)
}

// Abort discards the session: the checkpoint is cleared and no training
// session is produced. The machine is done afterwards.
func (m *Machine) Abort(ctx context.Context) {
	if m.done {
		return
	}
	m.done = true
	if err := m.sink.ClearActiveSession(ctx); err != nil {
		m.log.Warn("clearing checkpoint failed", "error", err)
	}
}

// seedCurrent lazily allocates one SetData per step for the current exercise,
// with targets carried over from the prior session (same step index, falling
// back to its last recorded set) or the fixed defaults when no prior session
// exists.
func (m *Machine) seedCurrent() {
	ex := m.CurrentExercise()
	if _, ok := m.results[ex.ID]; ok {
		return
	}
	steps := BuildSteps(ex)
	sets := make([]models.SetData, len(steps))
	for i, step := range steps {
		reps, weight := defaultReps, float64(defaultWeight)
		if prev := history.SetAt(m.last, ex.ID, i); prev != nil {
			reps, weight = prev.Reps, prev.Weight
		}
		sets[i] = models.SetData{
			Reps:      reps,
			Weight:    weight,
			IsWarmup:  step.Type == StepWarmup,
			IsDropset: step.Type == StepDropset,
		}
	}
	m.results[ex.ID] = sets
}

// reconcile fits a restored result slice to the exercise's current step list.
// The workout may have been edited between checkpoint and resume: recorded
// entries are kept positionally up to the step count, a longer slice is
// truncated, missing tail entries are seeded, and warmup/dropset
// classification always follows the current steps. Keeps the one result per
// step invariant so progression never indexes past a restored slice.
func (m *Machine) reconcile(ex models.Exercise, old []models.SetData) []models.SetData {
	steps := BuildSteps(ex)
	sets := make([]models.SetData, len(steps))
	for i, step := range steps {
		if i < len(old) {
			sets[i] = old[i]
		} else {
			sets[i].Reps, sets[i].Weight = defaultReps, defaultWeight
			if prev := history.SetAt(m.last, ex.ID, i); prev != nil {
				sets[i].Reps, sets[i].Weight = prev.Reps, prev.Weight
			}
		}
		sets[i].IsWarmup = step.Type == StepWarmup
		sets[i].IsDropset = step.Type == StepDropset
	}
	return sets
}

// checkpoint writes the current snapshot through to the sink. Failures are
// logged and otherwise ignored; in-memory progression never waits on a save.
func (m *Machine) checkpoint(ctx context.Context) {
	if err := m.sink.SaveActiveSession(ctx, m.Snapshot()); err != nil {
		m.log.Warn("checkpoint save failed", "error", err)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
