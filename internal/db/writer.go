package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/michaelscutari/dutrace/internal/entry"
	"github.com/michaelscutari/dutrace/internal/fstree"
	"github.com/michaelscutari/dutrace/internal/pathutil"
	"github.com/michaelscutari/dutrace/internal/rollup"
)

const insertDirSQL = `
INSERT INTO dirs (id, path, name, parent_id, depth, total_size, total_files, total_dirs)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

const insertFileSQL = `INSERT INTO files (dir_id, name, size) VALUES (?, ?, ?)`

const insertMetaSQL = `
INSERT OR REPLACE INTO replay_meta (
    id, source, created_at, event_count, total_size, file_count, dir_count,
    threshold, capacity, required, to_free, part1, part2)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const defaultBatchSize = 1000

// row is one pending insert: a directory with its rollup, or a file.
type row struct {
	dir    bool
	id     int64
	parent int64
	path   string
	name   string
	depth  int
	totals entry.Rollup
	size   int64
}

// Progress holds counts of rows written so far.
type Progress struct {
	Dirs  int64
	Files int64
}

// Writer stores a replayed tree in batched transactions.
type Writer struct {
	db        *sql.DB
	logger    *zap.Logger
	batchSize int

	batch    []row
	progress Progress
}

// NewWriter creates a writer. A non-positive batchSize uses the default.
func NewWriter(db *sql.DB, batchSize int, logger *zap.Logger) *Writer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		db:        db,
		logger:    logger,
		batchSize: batchSize,
		batch:     make([]row, 0, batchSize),
	}
}

// WriteTree stores every directory reachable from the root with its
// rollup, and one files row per file listing. Directories get ids in
// walk order, so a parent always precedes its children.
func (w *Writer) WriteTree(ctx context.Context, tree *fstree.Tree, builder *rollup.Builder) error {
	ids := make(map[string]int64)
	err := tree.Walk(func(p string, node *entry.Node, depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !node.IsDir() {
			parent := pathutil.Parent(p)
			return w.add(row{parent: ids[parent], name: node.Name, size: node.Size})
		}
		// A directory listed twice is walked twice; store it once.
		if _, seen := ids[p]; seen {
			return fstree.SkipDir
		}
		ids[p] = int64(len(ids) + 1)

		totals, err := builder.Rollup(p)
		if err != nil {
			return err
		}
		var parentID int64
		if !pathutil.IsRoot(p) {
			parentID = ids[pathutil.Parent(p)]
		}
		return w.add(row{
			dir:    true,
			id:     ids[p],
			parent: parentID,
			path:   p,
			name:   node.Name,
			depth:  depth,
			totals: *totals,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to write tree: %w", err)
	}
	return w.flush()
}

func (w *Writer) add(r row) error {
	w.batch = append(w.batch, r)
	if len(w.batch) >= w.batchSize {
		return w.flush()
	}
	return nil
}

// WriteMeta stores the replay summary row.
func (w *Writer) WriteMeta(meta entry.ReplayMeta) error {
	_, err := w.db.Exec(insertMetaSQL,
		meta.Source, meta.CreatedAt.Unix(), meta.EventCount,
		meta.TotalSize, meta.FileCount, meta.DirCount,
		meta.Threshold, meta.Capacity, meta.Required, meta.ToFree,
		meta.Part1, meta.Part2)
	if err != nil {
		return fmt.Errorf("failed to write replay meta: %w", err)
	}
	return nil
}

// Progress returns the number of rows written so far.
func (w *Writer) Progress() Progress {
	return w.progress
}

func (w *Writer) flush() error {
	if len(w.batch) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dirStmt, err := tx.Prepare(insertDirSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare dir statement: %w", err)
	}
	defer dirStmt.Close()

	fileStmt, err := tx.Prepare(insertFileSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare file statement: %w", err)
	}
	defer fileStmt.Close()

	var added Progress
	for _, r := range w.batch {
		if r.dir {
			_, err = dirStmt.Exec(r.id, r.path, r.name, r.parent, r.depth,
				r.totals.TotalSize, r.totals.TotalFiles, r.totals.TotalDirs)
			added.Dirs++
		} else {
			_, err = fileStmt.Exec(r.parent, r.name, r.size)
			added.Files++
		}
		if err != nil {
			return fmt.Errorf("failed to insert %q: %w", r.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.progress.Dirs += added.Dirs
	w.progress.Files += added.Files
	w.batch = w.batch[:0]
	w.logger.Debug("Batch committed",
		zap.Int64("dirs", w.progress.Dirs),
		zap.Int64("files", w.progress.Files))
	return nil
}
