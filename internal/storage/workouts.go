package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/flextrack/internal/models"
)

// LoadWorkouts returns all workouts in library order.
func (db *DB) LoadWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, exercises, is_active
		 FROM workouts
		 ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		var exercises []byte
		if err := rows.Scan(&w.ID, &w.Name, &exercises, &w.IsActive); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		if err := json.Unmarshal(exercises, &w.Exercises); err != nil {
			return nil, fmt.Errorf("decoding exercises for workout %s: %w", w.ID, err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// SaveWorkout upserts a workout by id. Library position is assigned on first
// insert and preserved across updates.
func (db *DB) SaveWorkout(ctx context.Context, w models.Workout) error {
	exercises, err := json.Marshal(w.Exercises)
	if err != nil {
		return fmt.Errorf("encoding exercises: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, name, exercises, is_active)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, exercises = EXCLUDED.exercises, is_active = EXCLUDED.is_active`,
		w.ID, w.Name, exercises, w.IsActive)
	if err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout. Past sessions keep their snapshots and
// stay interpretable.
func (db *DB) DeleteWorkout(ctx context.Context, id models.WorkoutID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return nil
}
