package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/flextrack/internal/config"
	"github.com/claude/flextrack/internal/importer"
	"github.com/claude/flextrack/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("file", "", "path to legacy JSON export (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: flextrack-import -config config.yaml -file export.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*exportPath)
	if err != nil {
		log.Error("cannot open export file", "path", *exportPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	var store storage.Store
	switch cfg.Database.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = db
	case "sqlite":
		lite, err := storage.OpenLite(cfg.Database.Path)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer lite.Close()
		store = lite
	}

	imp := importer.New(store, log, *dryRun)
	stats, err := imp.ImportJSON(ctx, f)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"workouts_imported", stats.WorkoutsImported,
		"sessions_imported", stats.SessionsImported,
		"logs_imported", stats.LogsImported,
		"ids_remapped", stats.IDsRemapped,
	)
}
