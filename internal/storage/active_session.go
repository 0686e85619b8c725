package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/flextrack/internal/models"
	"github.com/jackc/pgx/v5"
)

// LoadActiveSession returns the stored checkpoint, or (nil, nil) when no
// session is in progress.
func (db *DB) LoadActiveSession(ctx context.Context) (*models.ActiveSessionData, error) {
	var data models.ActiveSessionData
	var results []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT workout_id, start_time_ms, exercise_results, current_ex_index, current_step_index
		 FROM active_session WHERE id = 1`).
		Scan(&data.WorkoutID, &data.StartTime, &results, &data.CurrentExIndex, &data.CurrentStepIndex)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active session: %w", err)
	}
	if err := json.Unmarshal(results, &data.ExerciseResults); err != nil {
		return nil, fmt.Errorf("decoding active session results: %w", err)
	}
	return &data, nil
}

// SaveActiveSession overwrites the single checkpoint row.
func (db *DB) SaveActiveSession(ctx context.Context, data models.ActiveSessionData) error {
	results, err := json.Marshal(data.ExerciseResults)
	if err != nil {
		return fmt.Errorf("encoding active session results: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO active_session (id, workout_id, start_time_ms, exercise_results, current_ex_index, current_step_index)
		 VALUES (1, $1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET workout_id = EXCLUDED.workout_id, start_time_ms = EXCLUDED.start_time_ms,
		     exercise_results = EXCLUDED.exercise_results,
		     current_ex_index = EXCLUDED.current_ex_index,
		     current_step_index = EXCLUDED.current_step_index`,
		data.WorkoutID, data.StartTime, results, data.CurrentExIndex, data.CurrentStepIndex)
	if err != nil {
		return fmt.Errorf("saving active session: %w", err)
	}
	return nil
}

// ClearActiveSession deletes the checkpoint. Clearing an absent checkpoint
// is not an error.
func (db *DB) ClearActiveSession(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM active_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing active session: %w", err)
	}
	return nil
}
