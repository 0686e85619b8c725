package storage

import (
	"context"
	"fmt"
)

// DataStats holds aggregate counts over all stored data.
type DataStats struct {
	TotalWorkouts  int64   `json:"total_workouts"`
	TotalSessions  int64   `json:"total_sessions"`
	TotalDailyLogs int64   `json:"total_daily_logs"`
	EarliestDate   *string `json:"earliest_date"`
	LatestDate     *string `json:"latest_date"`
}

// GetDataStats returns aggregate statistics for the stored data.
func (db *DB) GetDataStats(ctx context.Context) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&stats.TotalWorkouts)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM training_sessions`).Scan(&stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM daily_logs`).Scan(&stats.TotalDailyLogs)
	if err != nil {
		return nil, fmt.Errorf("counting daily logs: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(date), MAX(date) FROM training_sessions`).
		Scan(&stats.EarliestDate, &stats.LatestDate)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	return stats, nil
}
