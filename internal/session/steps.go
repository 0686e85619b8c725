package session

import (
	"fmt"

	"github.com/claude/flextrack/internal/models"
)

// StepType classifies a step within an exercise.
type StepType int

const (
	StepWarmup StepType = iota
	StepWorkingSet
	StepDropset
)

// Step is one position in an exercise's traversal order.
type Step struct {
	Type  StepType
	Label string
	// SetNum is the 1-based working set number; 0 for warmup and dropset.
	SetNum int
}

// BuildSteps derives the ordered step list for an exercise: one warmup step
// if configured, then the working sets numbered 1..Sets, then one drop set if
// configured. The order is fixed and is the traversal order for the session
// state machine.
func BuildSteps(ex models.Exercise) []Step {
	steps := make([]Step, 0, ex.Sets+2)
	if ex.HasWarmup {
		steps = append(steps, Step{Type: StepWarmup, Label: "Warm up"})
	}
	for i := 1; i <= ex.Sets; i++ {
		steps = append(steps, Step{Type: StepWorkingSet, Label: fmt.Sprintf("Set %d", i), SetNum: i})
	}
	if ex.HasDropset {
		steps = append(steps, Step{Type: StepDropset, Label: "Drop Set"})
	}
	return steps
}

// StepCount returns len(BuildSteps(ex)) without building the slice.
func StepCount(ex models.Exercise) int {
	n := ex.Sets
	if ex.HasWarmup {
		n++
	}
	if ex.HasDropset {
		n++
	}
	return n
}

// TotalSteps sums the step counts across all exercises of a workout.
func TotalSteps(w models.Workout) int {
	total := 0
	for _, ex := range w.Exercises {
		total += StepCount(ex)
	}
	return total
}
