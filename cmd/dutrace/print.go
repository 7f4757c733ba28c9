package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dutrace/internal/fstree"
	"github.com/michaelscutari/dutrace/internal/solve"
)

var printCmd = &cobra.Command{
	Use:   "print [transcript]",
	Short: "Print the replayed filesystem tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPrint,
}

var printHuman bool

func init() {
	printCmd.Flags().BoolVarP(&printHuman, "human", "H", false, "Show file sizes in human-readable units")
}

func runPrint(cmd *cobra.Command, args []string) error {
	res, err := solve.File(inputPath(args), solve.OptionsFromConfig(cfg), logger)
	if err != nil {
		return err
	}

	var format fstree.SizeFormatter
	if printHuman {
		format = func(size int64) string { return humanize.Bytes(uint64(size)) }
	}

	w := bufio.NewWriter(os.Stdout)
	if err := res.Tree.Print(w, format); err != nil {
		return fmt.Errorf("failed to print tree: %w", err)
	}
	return w.Flush()
}
