package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/michaelscutari/dutrace/internal/entry"
	"github.com/michaelscutari/dutrace/internal/pathutil"
)

// ErrNotFound is returned when a directory path is not in the snapshot.
var ErrNotFound = errors.New("path not found in snapshot")

// DisplayEntry is one child row of a directory listing. Files report
// their own size as TotalSize and count as one file.
type DisplayEntry struct {
	Path       string
	Name       string
	Kind       entry.Kind
	Size       int64
	TotalSize  int64
	TotalFiles int64
	TotalDirs  int64
}

// IsDir reports whether the entry is a directory.
func (e DisplayEntry) IsDir() bool {
	return e.Kind == entry.KindDir
}

var childOrder = map[string]string{
	"size":  "total_size DESC, name ASC",
	"name":  "name ASC",
	"files": "total_files DESC, name ASC",
}

const childrenSQL = `
SELECT path, name, kind, size, total_size, total_files, total_dirs FROM (
    SELECT path, name, %d AS kind, 0 AS size, total_size, total_files, total_dirs
    FROM dirs WHERE parent_id = ?1
    UNION ALL
    SELECT CASE WHEN p.path = '/' THEN '/' || f.name ELSE p.path || '/' || f.name END,
           f.name, %d, f.size, f.size, 1, 0
    FROM files f JOIN dirs p ON p.id = f.dir_id
    WHERE f.dir_id = ?1
)
ORDER BY %s
LIMIT ?2`

// LoadChildren lists the directories and files directly under
// parentPath. sortBy is one of size, name or files.
func LoadChildren(db *sql.DB, parentPath, sortBy string, limit int) ([]DisplayEntry, error) {
	order, ok := childOrder[sortBy]
	if !ok {
		return nil, fmt.Errorf("invalid sort %q (expected size|name|files)", sortBy)
	}

	parentID, err := dirID(db, parentPath)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(childrenSQL, entry.KindDir, entry.KindFile, order)
	rows, err := db.Query(query, parentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []DisplayEntry
	for rows.Next() {
		var e DisplayEntry
		if err := rows.Scan(&e.Path, &e.Name, &e.Kind, &e.Size, &e.TotalSize, &e.TotalFiles, &e.TotalDirs); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetRollup returns the stored totals of a directory.
func GetRollup(db *sql.DB, path string) (*entry.Rollup, error) {
	id, err := dirID(db, path)
	if err != nil {
		return nil, err
	}

	r := entry.Rollup{Path: pathutil.Normalize(path)}
	err = db.QueryRow(`SELECT total_size, total_files, total_dirs FROM dirs WHERE id = ?`, id).
		Scan(&r.TotalSize, &r.TotalFiles, &r.TotalDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to read totals for %s: %w", r.Path, err)
	}
	return &r, nil
}

// FindPart2Dir returns the shallowest directory whose size is the Part2
// answer. It returns ErrNotFound when Part2 fell back to the capacity.
func FindPart2Dir(db *sql.DB) (*DisplayEntry, error) {
	e := DisplayEntry{Kind: entry.KindDir}
	err := db.QueryRow(`
		SELECT d.path, d.name, d.total_size, d.total_files, d.total_dirs
		FROM dirs d, replay_meta m
		WHERE m.id = 1 AND d.total_size = m.part2 AND d.total_size >= m.to_free
		ORDER BY d.depth, d.path
		LIMIT 1
	`).Scan(&e.Path, &e.Name, &e.TotalSize, &e.TotalFiles, &e.TotalDirs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no directory frees enough space", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	e.Size = e.TotalSize
	return &e, nil
}

// GetReplayMeta retrieves the replay summary.
func GetReplayMeta(db *sql.DB) (*entry.ReplayMeta, error) {
	var m entry.ReplayMeta
	var createdAt int64

	err := db.QueryRow(`
		SELECT source, created_at, event_count, total_size, file_count, dir_count,
		       threshold, capacity, required, to_free, part1, part2
		FROM replay_meta WHERE id = 1
	`).Scan(&m.Source, &createdAt, &m.EventCount, &m.TotalSize, &m.FileCount, &m.DirCount,
		&m.Threshold, &m.Capacity, &m.Required, &m.ToFree, &m.Part1, &m.Part2)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay meta: %w", err)
	}

	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}

func dirID(db *sql.DB, path string) (int64, error) {
	path = pathutil.Normalize(path)
	id, err := lookupDirID(db, path)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup of %s failed: %w", path, err)
	}
	return id, nil
}
