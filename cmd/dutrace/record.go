package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelscutari/dutrace/internal/scan"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Write a cd/ls transcript of a real directory",
	Long: `Walk a directory tree and write the "$ cd" / "$ ls" transcript a
shell session exploring it would produce. The output can be fed back to
solve, print or import.`,
	RunE: runRecord,
}

var (
	recordRoot      string
	recordOut       string
	recordXdev      bool
	recordExclude   []string
	recordMaxErrors int
)

func init() {
	recordCmd.Flags().StringVarP(&recordRoot, "root", "r", ".", "Root directory to record")
	recordCmd.Flags().StringVarP(&recordOut, "out", "o", "-", "Transcript output file (- for stdout)")
	recordCmd.Flags().BoolVar(&recordXdev, "xdev", true, "Don't cross filesystem boundaries")
	recordCmd.Flags().StringSliceVarP(&recordExclude, "exclude", "e", nil, "Regex patterns to exclude (can be repeated)")
	recordCmd.Flags().IntVar(&recordMaxErrors, "max-errors", 0, "Stop after N unreadable directories (0 = unlimited)")
}

func runRecord(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(recordRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}

	opts, err := scan.NewOptions(recordXdev, recordMaxErrors, recordExclude...)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	var f *os.File
	if recordOut != "-" {
		f, err = os.Create(recordOut)
		if err != nil {
			return fmt.Errorf("failed to create transcript: %w", err)
		}
		defer f.Close()
		out = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := scan.NewRecorder(opts, logger).Run(ctx, root, out)
	if err != nil {
		return fmt.Errorf("record failed: %w", err)
	}
	if f != nil {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write transcript: %w", err)
		}
	}

	logger.Info("Recorded transcript",
		zap.String("root", root),
		zap.Int64("dirs", stats.Dirs),
		zap.Int64("files", stats.Files),
		zap.String("size", humanize.Bytes(uint64(stats.TotalBytes))),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("errors", stats.Errors))
	return nil
}
