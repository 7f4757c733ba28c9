// Package scan walks a real directory tree and records it as a terminal
// transcript that the replay engine can consume.
package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"unicode"

	"go.uber.org/zap"

	"github.com/michaelscutari/dutrace/internal/transcript"
)

// ErrTooManyErrors is returned when MaxErrors unreadable directories
// have been seen.
var ErrTooManyErrors = errors.New("too many scan errors")

// Stats summarizes a recording.
type Stats struct {
	Dirs       int64
	Files      int64
	TotalBytes int64
	Skipped    int64 // excluded, cross-device, or not representable
	Errors     int64
}

// Recorder writes a "$ cd" / "$ ls" transcript of a directory tree.
type Recorder struct {
	opts    *Options
	logger  *zap.Logger
	out     *bufio.Writer
	rootDev uint64
	stats   Stats
}

// NewRecorder creates a recorder.
func NewRecorder(opts *Options, logger *zap.Logger) *Recorder {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{opts: opts, logger: logger}
}

type listing struct {
	dirs  []string
	files []transcript.FileEntry
}

// Run records the tree under root to out. Directories are visited
// depth-first with children in name order; each directory is entered
// with "cd <name>" and left with "cd ..".
func (r *Recorder) Run(ctx context.Context, root string, out io.Writer) (Stats, error) {
	r.out = bufio.NewWriter(out)
	r.stats = Stats{}

	info, err := os.Stat(root)
	if err != nil {
		return r.stats, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return r.stats, fmt.Errorf("root %s is not a directory", root)
	}
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		r.rootDev = uint64(stat.Dev)
	}

	ls, err := r.list(root)
	if err != nil {
		return r.stats, fmt.Errorf("failed to read root: %w", err)
	}

	r.emit(transcript.ChangeDir{Target: "/"})
	if err := r.record(ctx, root, ls); err != nil {
		return r.stats, err
	}

	if err := r.out.Flush(); err != nil {
		return r.stats, fmt.Errorf("failed to write transcript: %w", err)
	}
	return r.stats, nil
}

func (r *Recorder) record(ctx context.Context, dirPath string, ls *listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.stats.Dirs++

	r.emit(transcript.List{})
	for _, name := range ls.dirs {
		r.emit(transcript.DirEntry{Name: name})
	}
	for _, f := range ls.files {
		r.emit(f)
		r.stats.Files++
		r.stats.TotalBytes += f.Size
	}

	for _, name := range ls.dirs {
		childPath := filepath.Join(dirPath, name)
		child, err := r.list(childPath)
		if err != nil {
			r.stats.Errors++
			r.logger.Warn("Skipping unreadable directory", zap.String("path", childPath), zap.Error(err))
			if r.opts.MaxErrors > 0 && r.stats.Errors >= int64(r.opts.MaxErrors) {
				return fmt.Errorf("%w: %d", ErrTooManyErrors, r.stats.Errors)
			}
			continue
		}

		r.emit(transcript.ChangeDir{Target: name})
		if err := r.record(ctx, childPath, child); err != nil {
			return err
		}
		r.emit(transcript.ChangeDir{Target: ".."})
	}
	return nil
}

func (r *Recorder) list(dirPath string) (*listing, error) {
	dirEntries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	ls := &listing{}
	for _, de := range dirEntries {
		name := de.Name()
		childPath := filepath.Join(dirPath, name)

		if r.opts.excluded(childPath) {
			r.skip(childPath, "excluded")
			continue
		}
		// The parser splits on any Unicode space, not just ASCII.
		if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
			r.skip(childPath, "name contains whitespace")
			continue
		}

		info, err := os.Lstat(childPath)
		if err != nil {
			r.skip(childPath, err.Error())
			continue
		}

		switch {
		case info.IsDir():
			if r.opts.Xdev && r.crossesDevice(info) {
				r.skip(childPath, "different filesystem")
				continue
			}
			ls.dirs = append(ls.dirs, name)
		case info.Mode().IsRegular():
			ls.files = append(ls.files, transcript.FileEntry{Size: info.Size(), Name: name})
		default:
			r.skip(childPath, "not a regular file")
		}
	}

	sort.Strings(ls.dirs)
	sort.Slice(ls.files, func(i, j int) bool { return ls.files[i].Name < ls.files[j].Name })
	return ls, nil
}

func (r *Recorder) crossesDevice(info os.FileInfo) bool {
	stat, ok := info.Sys().(*syscall.Stat_t)
	return ok && uint64(stat.Dev) != r.rootDev
}

func (r *Recorder) skip(path, reason string) {
	r.stats.Skipped++
	r.logger.Debug("Skipping entry", zap.String("path", path), zap.String("reason", reason))
}

func (r *Recorder) emit(ev transcript.Event) {
	r.out.WriteString(ev.String())
	r.out.WriteByte('\n')
}
