package db

import (
	"database/sql"
	"fmt"
)

// Directory totals live on the dirs row itself; a replayed tree is
// written once and never updated, so there is nothing to keep in sync.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS dirs (
    id INTEGER PRIMARY KEY,
    path TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    parent_id INTEGER NOT NULL,
    depth INTEGER NOT NULL,
    total_size INTEGER NOT NULL,
    total_files INTEGER NOT NULL,
    total_dirs INTEGER NOT NULL
)`,
	// One row per file listing line: a file listed twice has two rows.
	`CREATE TABLE IF NOT EXISTS files (
    id INTEGER PRIMARY KEY,
    dir_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    size INTEGER NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS replay_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    source TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    event_count INTEGER NOT NULL,
    total_size INTEGER NOT NULL,
    file_count INTEGER NOT NULL,
    dir_count INTEGER NOT NULL,
    threshold INTEGER NOT NULL,
    capacity INTEGER NOT NULL,
    required INTEGER NOT NULL,
    to_free INTEGER NOT NULL,
    part1 INTEGER NOT NULL,
    part2 INTEGER NOT NULL
)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_dirs_parent_size ON dirs(parent_id, total_size DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_dirs_size ON dirs(total_size)`,
	`CREATE INDEX IF NOT EXISTS idx_files_dir_size ON files(dir_id, size DESC)`,
}

var writePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA temp_store = MEMORY",
}

var readPragmas = []string{
	"PRAGMA temp_store = MEMORY",
	"PRAGMA query_only = ON",
}

// Snapshots are shipped as one file, so WAL is dropped at the end.
var finalizePragmas = []string{
	"PRAGMA optimize",
	"PRAGMA journal_mode = DELETE",
}

func execAll(db *sql.DB, what string, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to %s (%.40s): %w", what, stmt, err)
		}
	}
	return nil
}

// InitSchema creates the snapshot tables.
func InitSchema(db *sql.DB) error {
	return execAll(db, "create table", tables)
}

// ApplyWritePragmas tunes a connection for the one-shot import.
func ApplyWritePragmas(db *sql.DB) error {
	return execAll(db, "apply pragma", writePragmas)
}

// ApplyReadPragmas makes a connection read-only.
func ApplyReadPragmas(db *sql.DB) error {
	return execAll(db, "apply pragma", readPragmas)
}

// BuildIndexes creates the browse indexes after the rows are loaded.
func BuildIndexes(db *sql.DB) error {
	return execAll(db, "create index", indexes)
}

// Finalize prepares the database for read-only access.
func Finalize(db *sql.DB) error {
	return execAll(db, "finalize", finalizePragmas)
}
