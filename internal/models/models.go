package models

// WorkoutID identifies a workout routine.
type WorkoutID string

// ExerciseID identifies an exercise within a workout. Workout, exercise and
// session ids share the same wire representation (strings), so each gets its
// own type to keep them from being mixed up.
type ExerciseID string

// SessionID identifies a recorded training session.
type SessionID string

// Exercise is one entry in a workout routine. Immutable once a session
// references it; sessions carry a workout snapshot for that reason.
type Exercise struct {
	ID         ExerciseID `json:"id"`
	Name       string     `json:"name"`
	Sets       int        `json:"sets"`
	HasWarmup  bool       `json:"hasWarmup"`
	HasDropset bool       `json:"hasDropset,omitempty"`
}

// Workout is an ordered exercise routine. Exercise order defines the
// traversal order during a session.
type Workout struct {
	ID        WorkoutID  `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
	IsActive  bool       `json:"isActive"`
}

// SetData is one performed (or pending) set. IsWarmup and IsDropset are set
// once from the step type at allocation and never toggled afterward.
type SetData struct {
	Reps      int     `json:"reps"`
	Weight    float64 `json:"weight"`
	IsWarmup  bool    `json:"isWarmup"`
	IsDropset bool    `json:"isDropset,omitempty"`
	Completed bool    `json:"completed"`
}

// TrainingSession is a finished workout session. WorkoutSnapshot, when
// present, is authoritative over the live workout for interpreting the
// session: the live workout may have been edited or deleted since.
type TrainingSession struct {
	ID              SessionID                `json:"id"`
	WorkoutID       WorkoutID                `json:"workoutId"`
	Date            string                   `json:"date"`                // ISO 8601
	StartTime       int64                    `json:"startTime,omitempty"` // epoch ms
	EndTime         int64                    `json:"endTime,omitempty"`   // epoch ms
	ExerciseResults map[ExerciseID][]SetData `json:"exerciseResults"`
	WorkoutSnapshot *Workout                 `json:"workoutSnapshot,omitempty"`
}

// ActiveSessionData is the resumable checkpoint of an in-progress session.
// At most one exists at a time.
type ActiveSessionData struct {
	WorkoutID        WorkoutID                `json:"workoutId"`
	StartTime        int64                    `json:"startTime"` // epoch ms
	ExerciseResults  map[ExerciseID][]SetData `json:"exerciseResults"`
	CurrentExIndex   int                      `json:"currentExIndex"`
	CurrentStepIndex int                      `json:"currentStepIndex"`
}

// DailyLog is a body weight + calorie entry for one calendar day.
type DailyLog struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"` // YYYY-MM-DD
	Weight   float64 `json:"weight"`
	Calories int     `json:"calories"`
}
