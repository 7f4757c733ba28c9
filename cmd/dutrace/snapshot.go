package main

import (
	"database/sql"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/michaelscutari/dutrace/internal/db"
	"github.com/michaelscutari/dutrace/internal/snapshot"

	_ "modernc.org/sqlite"
)

const dbFlagUsage = "Snapshot database (default: latest.db under snapshot.out)"

// openSnapshot opens dbPath read-only. An empty dbPath means the latest
// snapshot in the configured output directory.
func openSnapshot(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		latest, err := snapshot.NewManager(cfg.Snapshot.Out, 0, logger).GetLatest()
		if err != nil {
			return nil, err
		}
		dbPath = latest
	}
	// sql.Open would quietly create an empty database.
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}

	database, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection; one connection keeps query_only in force.
	database.SetMaxOpenConns(1)
	if err := db.ApplyReadPragmas(database); err != nil {
		database.Close()
		return nil, err
	}

	logger.Debug("Opened snapshot", zap.String("path", dbPath))
	return database, nil
}
