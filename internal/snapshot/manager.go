// Package snapshot stores solved replays as SQLite files in one
// directory, with a latest.db link and a retention limit.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/michaelscutari/dutrace/internal/db"
	"github.com/michaelscutari/dutrace/internal/entry"
	"github.com/michaelscutari/dutrace/internal/rollup"
	"github.com/michaelscutari/dutrace/internal/solve"

	_ "modernc.org/sqlite"
)

const (
	snapshotPrefix = "dutrace-"
	snapshotSuffix = ".db"
	latestName     = "latest.db"
	lockName       = ".dutrace.lock"

	// Fixed width keeps lexical order chronological.
	stampLayout = "20060102-150405.000"
)

// Import stages, in order.
const (
	StageWrite    = "write"
	StageIndexes  = "indexes"
	StageFinalize = "finalize"
)

// ErrLocked is returned when another import holds the directory lock.
var ErrLocked = errors.New("another import is in progress")

// StageFunc is called when the import stage changes.
type StageFunc func(stage string)

// Manager writes replay snapshots to a directory.
type Manager struct {
	dir       string
	retention int
	onStage   StageFunc
	logger    *zap.Logger
	now       func() time.Time
}

// NewManager creates a manager for dir. A retention of 0 keeps every
// snapshot.
func NewManager(dir string, retention int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{dir: dir, retention: retention, logger: logger, now: time.Now}
}

// SetStageFunc sets a callback for import stage updates.
func (m *Manager) SetStageFunc(f StageFunc) {
	m.onStage = f
}

func (m *Manager) stage(s string) {
	if m.onStage != nil {
		m.onStage(s)
	}
}

// Import stores a solved replay as a new snapshot and returns its path.
// The database is built under a temporary name and renamed into place,
// so readers never see a partial snapshot.
func (m *Manager) Import(ctx context.Context, source string, res *solve.Result) (string, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	unlock, err := m.lock()
	if err != nil {
		return "", err
	}
	defer unlock()

	createdAt := m.now()
	tempPath := filepath.Join(m.dir, fmt.Sprintf(".dutrace-temp-%d.db", createdAt.UnixNano()))
	if err := m.build(ctx, tempPath, source, createdAt, res); err != nil {
		os.Remove(tempPath)
		return "", err
	}

	finalPath := m.freePath(createdAt)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	if err := m.pointLatest(filepath.Base(finalPath)); err != nil {
		m.logger.Warn("Failed to update latest.db", zap.Error(err))
	}
	if err := m.prune(); err != nil {
		m.logger.Warn("Failed to prune old snapshots", zap.Error(err))
	}

	m.logger.Info("Snapshot written", zap.String("path", finalPath))
	return finalPath, nil
}

// freePath names a snapshot after t, moving forward a millisecond at a
// time past names already taken.
func (m *Manager) freePath(t time.Time) string {
	for {
		p := filepath.Join(m.dir, snapshotPrefix+t.Format(stampLayout)+snapshotSuffix)
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			return p
		}
		t = t.Add(time.Millisecond)
	}
}

func (m *Manager) build(ctx context.Context, path, source string, createdAt time.Time, res *solve.Result) error {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	if err := db.InitSchema(database); err != nil {
		return err
	}
	if err := db.ApplyWritePragmas(database); err != nil {
		return err
	}

	m.stage(StageWrite)
	builder := rollup.NewBuilder(res.Tree)
	writer := db.NewWriter(database, 0, m.logger)
	if err := writer.WriteTree(ctx, res.Tree, builder); err != nil {
		return err
	}
	progress := writer.Progress()
	m.logger.Debug("Tree stored",
		zap.Int64("dirs", progress.Dirs),
		zap.Int64("files", progress.Files))

	root, err := builder.Rollup("/")
	if err != nil {
		return err
	}
	err = writer.WriteMeta(entry.ReplayMeta{
		Source:     source,
		CreatedAt:  createdAt,
		EventCount: int64(res.Events),
		TotalSize:  root.TotalSize,
		FileCount:  root.TotalFiles,
		DirCount:   root.TotalDirs,
		Threshold:  res.Threshold,
		Capacity:   res.Free.Capacity,
		Required:   res.Free.Required,
		ToFree:     res.Free.ToFree,
		Part1:      res.Part1,
		Part2:      res.Part2,
	})
	if err != nil {
		return err
	}

	m.stage(StageIndexes)
	if err := db.BuildIndexes(database); err != nil {
		return err
	}

	m.stage(StageFinalize)
	return db.Finalize(database)
}

func (m *Manager) lock() (func(), error) {
	f, err := os.OpenFile(filepath.Join(m.dir, lockName), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, ErrLocked
	}
	return func() {
		syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
	}, nil
}

// pointLatest swaps latest.db to name through a temporary link.
func (m *Manager) pointLatest(name string) error {
	tmp := filepath.Join(m.dir, ".latest.db.tmp")
	os.Remove(tmp)
	if err := os.Symlink(name, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(m.dir, latestName)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (m *Manager) prune() error {
	if m.retention <= 0 {
		return nil
	}
	snapshots, err := m.ListSnapshots()
	if err != nil {
		return err
	}
	for len(snapshots) > m.retention {
		if err := os.Remove(snapshots[0]); err != nil {
			return err
		}
		m.logger.Debug("Pruned snapshot", zap.String("path", snapshots[0]))
		snapshots = snapshots[1:]
	}
	return nil
}

// GetLatest returns the path latest.db points to.
func (m *Manager) GetLatest() (string, error) {
	resolved, err := filepath.EvalSymlinks(filepath.Join(m.dir, latestName))
	if err != nil {
		return "", fmt.Errorf("no snapshot in %s (run import first): %w", m.dir, err)
	}
	return resolved, nil
}

// ListSnapshots returns all snapshots, oldest first.
func (m *Manager) ListSnapshots() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}

	var snapshots []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, snapshotPrefix) && strings.HasSuffix(name, snapshotSuffix) {
			snapshots = append(snapshots, filepath.Join(m.dir, name))
		}
	}
	sort.Strings(snapshots)
	return snapshots, nil
}
