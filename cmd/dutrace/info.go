package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dutrace/internal/db"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display snapshot metadata",
	Long: `Print what a snapshot was replayed from, its totals, the parameters both
analyses ran with, and which directory Part 2 would delete.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

var infoDB string

func init() {
	infoCmd.Flags().StringVarP(&infoDB, "db", "d", "", dbFlagUsage)
}

func runInfo(cmd *cobra.Command, args []string) error {
	database, err := openSnapshot(infoDB)
	if err != nil {
		return err
	}
	defer database.Close()

	meta, err := db.GetReplayMeta(database)
	if err != nil {
		return err
	}

	deleteDir := "none (no directory frees enough space)"
	dir, err := db.FindPart2Dir(database)
	switch {
	case err == nil:
		deleteDir = dir.Path
	case !errors.Is(err, db.ErrNotFound):
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Source:\t%s\n", meta.Source)
	fmt.Fprintf(w, "Created:\t%s\n", meta.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Events:\t%s\n", humanize.Comma(meta.EventCount))
	fmt.Fprintf(w, "Files:\t%s\n", humanize.Comma(meta.FileCount))
	fmt.Fprintf(w, "Directories:\t%s\n", humanize.Comma(meta.DirCount))
	fmt.Fprintf(w, "Used:\t%s (%d bytes)\n", humanize.Bytes(uint64(meta.TotalSize)), meta.TotalSize)
	fmt.Fprintf(w, "Capacity:\t%d, %d required free\n", meta.Capacity, meta.Required)
	fmt.Fprintf(w, "To free:\t%d\n", meta.ToFree)
	fmt.Fprintf(w, "Part 1:\t%d (directories under %d)\n", meta.Part1, meta.Threshold)
	fmt.Fprintf(w, "Part 2:\t%d\n", meta.Part2)
	fmt.Fprintf(w, "Delete:\t%s\n", deleteDir)
	return w.Flush()
}
