package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/flextrack/internal/models"
)

// LoadSessions returns all training sessions ordered by date ascending.
func (db *DB) LoadSessions(ctx context.Context) ([]models.TrainingSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, date, start_time_ms, end_time_ms, exercise_results, workout_snapshot
		 FROM training_sessions
		 ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.TrainingSession
	for rows.Next() {
		var s models.TrainingSession
		var results, snapshot []byte
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.Date, &s.StartTime, &s.EndTime, &results, &snapshot); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if err := json.Unmarshal(results, &s.ExerciseResults); err != nil {
			return nil, fmt.Errorf("decoding results for session %s: %w", s.ID, err)
		}
		if len(snapshot) > 0 {
			s.WorkoutSnapshot = &models.Workout{}
			if err := json.Unmarshal(snapshot, s.WorkoutSnapshot); err != nil {
				return nil, fmt.Errorf("decoding snapshot for session %s: %w", s.ID, err)
			}
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SaveSession upserts a training session by id.
func (db *DB) SaveSession(ctx context.Context, s models.TrainingSession) error {
	results, err := json.Marshal(s.ExerciseResults)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	var snapshot []byte
	if s.WorkoutSnapshot != nil {
		if snapshot, err = json.Marshal(s.WorkoutSnapshot); err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO training_sessions (id, workout_id, date, start_time_ms, end_time_ms, exercise_results, workout_snapshot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET workout_id = EXCLUDED.workout_id, date = EXCLUDED.date,
		     start_time_ms = EXCLUDED.start_time_ms, end_time_ms = EXCLUDED.end_time_ms,
		     exercise_results = EXCLUDED.exercise_results, workout_snapshot = EXCLUDED.workout_snapshot`,
		s.ID, s.WorkoutID, s.Date, s.StartTime, s.EndTime, results, snapshot)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// DeleteSession removes a training session.
func (db *DB) DeleteSession(ctx context.Context, id models.SessionID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM training_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
