package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/michaelscutari/dutrace/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse a snapshot interactively",
	Long: `Browse a stored replay directory by directory. Directories counted in
Part 1 and the directory chosen for Part 2 are marked.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

var tuiDB string

func init() {
	tuiCmd.Flags().StringVarP(&tuiDB, "db", "d", "", dbFlagUsage)
}

func runTUI(cmd *cobra.Command, args []string) error {
	database, err := openSnapshot(tuiDB)
	if err != nil {
		return err
	}
	defer database.Close()

	_, err = tea.NewProgram(tui.NewModel(database), tea.WithAltScreen()).Run()
	return err
}
