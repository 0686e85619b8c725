// Package importer loads a JSON export of the legacy local-storage data
// (workouts, training sessions, daily logs) into a Store. Ids minted by the
// old client were not UUIDs; those are re-minted and references remapped so
// sessions keep pointing at their workouts.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/flextrack/internal/models"
	"github.com/claude/flextrack/internal/storage"
	"github.com/google/uuid"
)

// Export is the legacy client's data dump.
type Export struct {
	Workouts  []models.Workout         `json:"workouts"`
	Sessions  []models.TrainingSession `json:"trainings"`
	DailyLogs []models.DailyLog        `json:"dailyLogs"`
}

// Stats tracks import progress.
type Stats struct {
	WorkoutsImported int `json:"workouts_imported"`
	SessionsImported int `json:"sessions_imported"`
	LogsImported     int `json:"logs_imported"`
	IDsRemapped      int `json:"ids_remapped"`
}

// Importer writes a legacy export into a Store.
type Importer struct {
	store  storage.Store
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates an Importer.
func New(store storage.Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, log: log, dryRun: dryRun}
}

// ImportJSON decodes an export from r and imports it.
func (imp *Importer) ImportJSON(ctx context.Context, r io.Reader) (*Stats, error) {
	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return &imp.stats, fmt.Errorf("decoding export: %w", err)
	}
	return imp.Import(ctx, &export)
}

// Import upserts everything in the export. Workouts first, so the id map is
// complete before sessions reference it.
func (imp *Importer) Import(ctx context.Context, export *Export) (*Stats, error) {
	idMap := make(map[models.WorkoutID]models.WorkoutID)

	for _, w := range export.Workouts {
		if !validUUID(string(w.ID)) {
			newID := models.WorkoutID(uuid.NewString())
			idMap[w.ID] = newID
			w.ID = newID
			imp.stats.IDsRemapped++
		}
		for i, ex := range w.Exercises {
			if !validUUID(string(ex.ID)) {
				w.Exercises[i].ID = models.ExerciseID(uuid.NewString())
				imp.stats.IDsRemapped++
			}
		}
		if !imp.dryRun {
			if err := imp.store.SaveWorkout(ctx, w); err != nil {
				return &imp.stats, fmt.Errorf("importing workout %s: %w", w.Name, err)
			}
		}
		imp.stats.WorkoutsImported++
	}

	for _, s := range export.Sessions {
		if !validUUID(string(s.ID)) {
			s.ID = models.SessionID(uuid.NewString())
			imp.stats.IDsRemapped++
		}
		if mapped, ok := idMap[s.WorkoutID]; ok {
			s.WorkoutID = mapped
		}
		if !imp.dryRun {
			if err := imp.store.SaveSession(ctx, s); err != nil {
				return &imp.stats, fmt.Errorf("importing session %s: %w", s.ID, err)
			}
		}
		imp.stats.SessionsImported++
	}

	for _, l := range export.DailyLogs {
		if !validUUID(l.ID) {
			l.ID = uuid.NewString()
			imp.stats.IDsRemapped++
		}
		if !imp.dryRun {
			if err := imp.store.SaveDailyLog(ctx, l); err != nil {
				return &imp.stats, fmt.Errorf("importing daily log %s: %w", l.Date, err)
			}
		}
		imp.stats.LogsImported++
	}

	imp.log.Info("import finished",
		"workouts", imp.stats.WorkoutsImported,
		"sessions", imp.stats.SessionsImported,
		"logs", imp.stats.LogsImported,
		"remapped", imp.stats.IDsRemapped,
		"dry_run", imp.dryRun,
	)
	return &imp.stats, nil
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
