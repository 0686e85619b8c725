package storage

import (
	"context"
	"fmt"

	"github.com/claude/flextrack/internal/models"
)

// LoadDailyLogs returns all daily logs ordered by date ascending.
func (db *DB) LoadDailyLogs(ctx context.Context) ([]models.DailyLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, date, weight, calories FROM daily_logs ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying daily logs: %w", err)
	}
	defer rows.Close()

	var result []models.DailyLog
	for rows.Next() {
		var l models.DailyLog
		if err := rows.Scan(&l.ID, &l.Date, &l.Weight, &l.Calories); err != nil {
			return nil, fmt.Errorf("scanning daily log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// SaveDailyLog upserts a daily log. One log per calendar day: a conflicting
// date replaces the existing entry, keeping its id.
func (db *DB) SaveDailyLog(ctx context.Context, l models.DailyLog) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO daily_logs (id, date, weight, calories)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (date) DO UPDATE
		 SET weight = EXCLUDED.weight, calories = EXCLUDED.calories`,
		l.ID, l.Date, l.Weight, l.Calories)
	if err != nil {
		return fmt.Errorf("saving daily log: %w", err)
	}
	return nil
}

// DeleteDailyLog removes a daily log by id.
func (db *DB) DeleteDailyLog(ctx context.Context, id string) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM daily_logs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting daily log: %w", err)
	}
	return nil
}
