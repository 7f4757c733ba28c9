package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dutrace/internal/db"
	"github.com/michaelscutari/dutrace/internal/entry"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a snapshot non-interactively",
	Long: `List the children of a directory in a snapshot for scripting. The MARK
column shows p1 for directories counted in Part 1 and p2 for the
directory Part 2 picked.`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

var (
	queryDB    string
	queryPath  string
	querySort  string
	queryLimit int
	queryBytes bool
)

func init() {
	queryCmd.Flags().StringVarP(&queryDB, "db", "d", "", dbFlagUsage)
	queryCmd.Flags().StringVarP(&queryPath, "path", "p", "/", "Directory path to query")
	queryCmd.Flags().StringVarP(&querySort, "sort", "s", "size", "Sort by: size, name, files")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 20, "Maximum number of results")
	queryCmd.Flags().BoolVarP(&queryBytes, "bytes", "b", false, "Print exact byte counts")
}

func runQuery(cmd *cobra.Command, args []string) error {
	database, err := openSnapshot(queryDB)
	if err != nil {
		return err
	}
	defer database.Close()

	meta, err := db.GetReplayMeta(database)
	if err != nil {
		return err
	}
	entries, err := db.LoadChildren(database, queryPath, querySort, queryLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SIZE\tFILES\tDIRS\tMARK\tNAME\n")
	for _, e := range entries {
		size := humanize.Bytes(uint64(e.TotalSize))
		if queryBytes {
			size = fmt.Sprintf("%d", e.TotalSize)
		}
		name := e.Name
		if e.IsDir() {
			name += "/"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			size,
			humanize.Comma(e.TotalFiles),
			humanize.Comma(e.TotalDirs),
			markFor(meta, e),
			name,
		)
	}
	return w.Flush()
}

func markFor(meta *entry.ReplayMeta, e db.DisplayEntry) string {
	if !e.IsDir() {
		return "-"
	}
	switch {
	case meta.IsPart2(e.TotalSize):
		return "p2"
	case meta.CountsInPart1(e.TotalSize):
		return "p1"
	}
	return "-"
}
