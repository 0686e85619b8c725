// Package storage persists workouts, training sessions, daily logs and the
// single resumable active-session checkpoint. Two implementations exist:
// Postgres (DB, via pgx) for the served deployment and SQLite (Lite) for
// single-file local use.
package storage

import (
	"context"

	"github.com/claude/flextrack/internal/models"
)

// Store is the persistence port consumed by the server, the MCP tools and
// the importer. Saves are upserts keyed by id. LoadActiveSession returns
// (nil, nil) when no checkpoint exists.
type Store interface {
	LoadWorkouts(ctx context.Context) ([]models.Workout, error)
	SaveWorkout(ctx context.Context, w models.Workout) error
	DeleteWorkout(ctx context.Context, id models.WorkoutID) error

	LoadSessions(ctx context.Context) ([]models.TrainingSession, error)
	SaveSession(ctx context.Context, s models.TrainingSession) error
	DeleteSession(ctx context.Context, id models.SessionID) error

	LoadDailyLogs(ctx context.Context) ([]models.DailyLog, error)
	SaveDailyLog(ctx context.Context, l models.DailyLog) error
	DeleteDailyLog(ctx context.Context, id string) error

	LoadActiveSession(ctx context.Context) (*models.ActiveSessionData, error)
	SaveActiveSession(ctx context.Context, data models.ActiveSessionData) error
	ClearActiveSession(ctx context.Context) error

	GetDataStats(ctx context.Context) (*DataStats, error)
}
