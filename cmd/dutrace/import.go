package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelscutari/dutrace/internal/snapshot"
	"github.com/michaelscutari/dutrace/internal/solve"
)

var importCmd = &cobra.Command{
	Use:   "import [transcript]",
	Short: "Replay a transcript and store it as a snapshot database",
	Long: `Replay a transcript, compute directory rollups and store the result
in a SQLite snapshot for the info, query and tui commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

var (
	importOut       string
	importRetention int
)

func init() {
	importCmd.Flags().StringVarP(&importOut, "out", "o", "", "Output directory for snapshots (default from config)")
	importCmd.Flags().IntVar(&importRetention, "retention", -1, "Number of snapshots to retain, 0 = unlimited (default from config)")
}

func runImport(cmd *cobra.Command, args []string) error {
	source, err := filepath.Abs(inputPath(args))
	if err != nil {
		return fmt.Errorf("failed to resolve transcript path: %w", err)
	}

	outDir := cfg.Snapshot.Out
	if importOut != "" {
		outDir = importOut
	}
	outDir, err = filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	retention := cfg.Snapshot.Retention
	if importRetention >= 0 {
		retention = importRetention
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()
	res, err := solve.File(source, solve.OptionsFromConfig(cfg), logger)
	if err != nil {
		return err
	}

	mgr := snapshot.NewManager(outDir, retention, logger)
	stageStart := time.Now()
	mgr.SetStageFunc(func(stage string) {
		logger.Info("Import stage",
			zap.String("stage", stage),
			zap.Duration("since_start", time.Since(stageStart)))
	})
	dbPath, err := mgr.Import(ctx, source, res)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Import canceled.")
			return nil
		}
		return fmt.Errorf("import failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database: %s\n", dbPath)
	fmt.Fprintf(out, "Imported %d events in %s\n", res.Events, time.Since(startTime).Round(time.Millisecond))
	return res.WriteAnswers(out)
}
