package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelscutari/dutrace/internal/solve"
)

const defaultInput = "input.txt"

var solveCmd = &cobra.Command{
	Use:   "solve [transcript]",
	Short: "Print both answers for a transcript",
	Long: `Replay a transcript and print two lines: the total size of all
directories under the threshold (Part 1), and the size of the smallest
directory whose deletion frees enough space (Part 2).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSolve,
}

func inputPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultInput
}

func runSolve(cmd *cobra.Command, args []string) error {
	res, err := solve.File(inputPath(args), solve.OptionsFromConfig(cfg), logger)
	if err != nil {
		return err
	}
	if err := res.WriteAnswers(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("failed to write answers: %w", err)
	}
	return nil
}
