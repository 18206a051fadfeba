package main

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/fatih/color"

	"sync-notes-be/internal/config"
	"sync-notes-be/internal/engine"
	"sync-notes-be/internal/pkg/logger"
	"sync-notes-be/pkg/database"
)

// One-shot tombstone sweep for cron or manual cleanup. The REST server
// runs the same purge on its own interval; this binary exists so expired
// tombstones can be cleared without a running server.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	sweepLogger := logger.NewIsolatedLogger("logs/sweep.log")
	tombstones := engine.NewTombstoneManager(cfg.Sync.Retention, sweepLogger)

	if !tombstones.RetentionEnabled() {
		color.Yellow("Retention is disabled (API_DELETED_EXPIRY_DAYS <= 0); nothing to sweep.")
		return
	}

	counts := tombstones.Sweep(context.Background(), db, engine.SweptResources, time.Now().UTC())

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var total int64
	for _, name := range names {
		color.Cyan("%-10s %d expired tombstones removed", name, counts[name])
		total += counts[name]
	}
	color.Green("Sweep complete: %d rows removed.", total)
}
