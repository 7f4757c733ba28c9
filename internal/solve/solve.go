// Package solve runs the full pipeline: parse a transcript, replay it
// into a tree and answer both size questions.
package solve

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/michaelscutari/dutrace/internal/config"
	"github.com/michaelscutari/dutrace/internal/fstree"
	"github.com/michaelscutari/dutrace/internal/rollup"
	"github.com/michaelscutari/dutrace/internal/transcript"
)

// Options configures a run.
type Options struct {
	Tree      fstree.Options
	Memoize   bool
	Threshold int64
	Capacity  int64
	Required  int64
}

// OptionsFromConfig maps the file config onto run options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Tree: fstree.Options{
			DedupChildren: cfg.Replay.DedupeChildren,
			Strict:        cfg.Replay.Strict,
		},
		Memoize:   cfg.Analysis.Memoize,
		Threshold: cfg.Analysis.Threshold,
		Capacity:  cfg.Disk.Capacity,
		Required:  cfg.Disk.Required,
	}
}

// Result is a replayed tree with both answers.
type Result struct {
	Tree      *fstree.Tree
	Events    int
	Threshold int64
	Free      rollup.FreeSpace
	Part1     int64
	Part2     int64
}

// File runs the pipeline over a transcript file.
func File(path string, opts Options, logger *zap.Logger) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	return Reader(f, opts, logger)
}

// Reader runs the pipeline over a transcript stream.
func Reader(r io.Reader, opts Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	events, err := transcript.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	logger.Debug("Transcript parsed", zap.Int("events", len(events)))

	tree, err := fstree.Build(events, opts.Tree)
	if err != nil {
		return nil, fmt.Errorf("failed to replay transcript: %w", err)
	}
	logger.Debug("Transcript replayed",
		zap.Int("nodes", tree.Len()),
		zap.String("cursor", tree.Cursor()))

	res, err := Tree(tree, opts)
	if err != nil {
		return nil, err
	}
	res.Events = len(events)
	logger.Debug("Analyses complete",
		zap.Int64("used", res.Free.Used),
		zap.Int64("to_free", res.Free.ToFree),
		zap.Bool("memoize", opts.Memoize))
	return res, nil
}

// Tree answers both questions for an already replayed tree.
func Tree(tree *fstree.Tree, opts Options) (*Result, error) {
	var sizer rollup.Sizer = rollup.NewTreeSizer(tree)
	if opts.Memoize {
		sizer = rollup.NewBuilder(tree)
	}

	part1, err := rollup.SumBelow(tree, sizer, opts.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to sum small directories: %w", err)
	}

	free, err := rollup.NewFreeSpace(sizer, opts.Capacity, opts.Required)
	if err != nil {
		return nil, err
	}

	part2, err := rollup.SmallestAtLeast(tree, sizer, opts.Capacity, opts.Required)
	if err != nil {
		return nil, fmt.Errorf("failed to find directory to delete: %w", err)
	}

	return &Result{Tree: tree, Threshold: opts.Threshold, Free: free, Part1: part1, Part2: part2}, nil
}

// WriteAnswers prints the two answer lines.
func (r *Result) WriteAnswers(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Part 1: %d\n", r.Part1); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Part 2: %d\n", r.Part2)
	return err
}
