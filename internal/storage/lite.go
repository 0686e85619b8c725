package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/flextrack/internal/models"
	_ "modernc.org/sqlite"
)

// Lite is the single-file SQLite Store, for local use without a Postgres
// instance. The schema is created on open.
type Lite struct {
	db *sql.DB
}

var _ Store = (*Lite)(nil)

const liteSchema = `
CREATE TABLE IF NOT EXISTS workouts (
	id        TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	exercises TEXT NOT NULL DEFAULT '[]',
	is_active INTEGER NOT NULL DEFAULT 0,
	position  INTEGER
);
CREATE TABLE IF NOT EXISTS training_sessions (
	id               TEXT PRIMARY KEY,
	workout_id       TEXT NOT NULL,
	date             TEXT NOT NULL,
	start_time_ms    INTEGER NOT NULL DEFAULT 0,
	end_time_ms      INTEGER NOT NULL DEFAULT 0,
	exercise_results TEXT NOT NULL DEFAULT '{}',
	workout_snapshot TEXT
);
CREATE TABLE IF NOT EXISTS daily_logs (
	id       TEXT PRIMARY KEY,
	date     TEXT NOT NULL UNIQUE,
	weight   REAL NOT NULL,
	calories INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS active_session (
	id                 INTEGER PRIMARY KEY CHECK (id = 1),
	workout_id         TEXT NOT NULL,
	start_time_ms      INTEGER NOT NULL,
	exercise_results   TEXT NOT NULL DEFAULT '{}',
	current_ex_index   INTEGER NOT NULL DEFAULT 0,
	current_step_index INTEGER NOT NULL DEFAULT 0
);`

// OpenLite opens (or creates) the SQLite database at dir/flextrack.db.
func OpenLite(dir string) (*Lite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "flextrack.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(liteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Lite{db: db}, nil
}

// Close closes the database.
func (l *Lite) Close() error {
	return l.db.Close()
}

// LoadWorkouts returns all workouts in library order.
func (l *Lite) LoadWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, exercises, is_active FROM workouts ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		var exercises string
		if err := rows.Scan(&w.ID, &w.Name, &exercises, &w.IsActive); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		if err := json.Unmarshal([]byte(exercises), &w.Exercises); err != nil {
			return nil, fmt.Errorf("decoding exercises for workout %s: %w", w.ID, err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// SaveWorkout upserts a workout by id, assigning a library position on first
// insert.
func (l *Lite) SaveWorkout(ctx context.Context, w models.Workout) error {
	exercises, err := json.Marshal(w.Exercises)
	if err != nil {
		return fmt.Errorf("encoding exercises: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO workouts (id, name, exercises, is_active, position)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM workouts))
		 ON CONFLICT (id) DO UPDATE
		 SET name = excluded.name, exercises = excluded.exercises, is_active = excluded.is_active`,
		w.ID, w.Name, string(exercises), w.IsActive)
	if err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout.
func (l *Lite) DeleteWorkout(ctx context.Context, id models.WorkoutID) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return nil
}

// LoadSessions returns all training sessions ordered by date ascending.
func (l *Lite) LoadSessions(ctx context.Context) ([]models.TrainingSession, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, workout_id, date, start_time_ms, end_time_ms, exercise_results, workout_snapshot
		 FROM training_sessions ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingSession
	for rows.Next() {
		var s models.TrainingSession
		var results string
		var snapshot sql.NullString
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.Date, &s.StartTime, &s.EndTime, &results, &snapshot); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if err := json.Unmarshal([]byte(results), &s.ExerciseResults); err != nil {
			return nil, fmt.Errorf("decoding results for session %s: %w", s.ID, err)
		}
		if snapshot.Valid && snapshot.String != "" {
			s.WorkoutSnapshot = &models.Workout{}
			if err := json.Unmarshal([]byte(snapshot.String), s.WorkoutSnapshot); err != nil {
				return nil, fmt.Errorf("decoding snapshot for session %s: %w", s.ID, err)
			}
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SaveSession upserts a training session by id.
func (l *Lite) SaveSession(ctx context.Context, s models.TrainingSession) error {
	results, err := json.Marshal(s.ExerciseResults)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	var snapshot sql.NullString
	if s.WorkoutSnapshot != nil {
		b, err := json.Marshal(s.WorkoutSnapshot)
		if err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		snapshot = sql.NullString{String: string(b), Valid: true}
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO training_sessions (id, workout_id, date, start_time_ms, end_time_ms, exercise_results, workout_snapshot)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET workout_id = excluded.workout_id, date = excluded.date,
		     start_time_ms = excluded.start_time_ms, end_time_ms = excluded.end_time_ms,
		     exercise_results = excluded.exercise_results, workout_snapshot = excluded.workout_snapshot`,
		s.ID, s.WorkoutID, s.Date, s.StartTime, s.EndTime, string(results), snapshot)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// DeleteSession removes a training session.
func (l *Lite) DeleteSession(ctx context.Context, id models.SessionID) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM training_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// LoadDailyLogs returns all daily logs ordered by date ascending.
func (l *Lite) LoadDailyLogs(ctx context.Context) ([]models.DailyLog, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, date, weight, calories FROM daily_logs ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying daily logs: %w", err)
	}
	defer rows.Close()

	var result []models.DailyLog
	for rows.Next() {
		var log models.DailyLog
		if err := rows.Scan(&log.ID, &log.Date, &log.Weight, &log.Calories); err != nil {
			return nil, fmt.Errorf("scanning daily log: %w", err)
		}
		result = append(result, log)
	}
	return result, rows.Err()
}

// SaveDailyLog upserts a daily log, one per calendar day.
func (l *Lite) SaveDailyLog(ctx context.Context, log models.DailyLog) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO daily_logs (id, date, weight, calories)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (date) DO UPDATE
		 SET weight = excluded.weight, calories = excluded.calories`,
		log.ID, log.Date, log.Weight, log.Calories)
	if err != nil {
		return fmt.Errorf("saving daily log: %w", err)
	}
	return nil
}

// DeleteDailyLog removes a daily log by id.
func (l *Lite) DeleteDailyLog(ctx context.Context, id string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM daily_logs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting daily log: %w", err)
	}
	return nil
}

// LoadActiveSession returns the checkpoint, or (nil, nil) when absent.
func (l *Lite) LoadActiveSession(ctx context.Context) (*models.ActiveSessionData, error) {
	var data models.ActiveSessionData
	var results string
	err := l.db.QueryRowContext(ctx,
		`SELECT workout_id, start_time_ms, exercise_results, current_ex_index, current_step_index
		 FROM active_session WHERE id = 1`).
		Scan(&data.WorkoutID, &data.StartTime, &results, &data.CurrentExIndex, &data.CurrentStepIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active session: %w", err)
	}
	if err := json.Unmarshal([]byte(results), &data.ExerciseResults); err != nil {
		return nil, fmt.Errorf("decoding active session results: %w", err)
	}
	return &data, nil
}

// SaveActiveSession overwrites the single checkpoint row.
func (l *Lite) SaveActiveSession(ctx context.Context, data models.ActiveSessionData) error {
	results, err := json.Marshal(data.ExerciseResults)
	if err != nil {
		return fmt.Errorf("encoding active session results: %w", err)
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO active_session (id, workout_id, start_time_ms, exercise_results, current_ex_index, current_step_index)
		 VALUES (1, ?, ?, ?, ?, ?)`,
		data.WorkoutID, data.StartTime, string(results), data.CurrentExIndex, data.CurrentStepIndex)
	if err != nil {
		return fmt.Errorf("saving active session: %w", err)
	}
	return nil
}

// ClearActiveSession deletes the checkpoint.
func (l *Lite) ClearActiveSession(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM active_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing active session: %w", err)
	}
	return nil
}

// GetDataStats returns aggregate statistics for the stored data.
func (l *Lite) GetDataStats(ctx context.Context) (*DataStats, error) {
	stats := &DataStats{}

	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&stats.TotalWorkouts)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_sessions`).Scan(&stats.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM daily_logs`).Scan(&stats.TotalDailyLogs)
	if err != nil {
		return nil, fmt.Errorf("counting daily logs: %w", err)
	}

	err = l.db.QueryRowContext(ctx,
		`SELECT MIN(date), MAX(date) FROM training_sessions`).
		Scan(&stats.EarliestDate, &stats.LatestDate)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	return stats, nil
}
