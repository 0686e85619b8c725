package mcp

import (
	"context"

	"github.com/claude/flextrack/internal/models"
	"github.com/claude/flextrack/internal/storage"
)

// DataSource is the read surface MCP tools need from the data layer. Both
// storage backends satisfy it.
type DataSource interface {
	LoadWorkouts(ctx context.Context) ([]models.Workout, error)
	LoadSessions(ctx context.Context) ([]models.TrainingSession, error)
	LoadDailyLogs(ctx context.Context) ([]models.DailyLog, error)
	GetDataStats(ctx context.Context) (*storage.DataStats, error)
}

// Compile-time checks: both stores satisfy DataSource.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*storage.Lite)(nil)
)
