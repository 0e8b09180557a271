package main

import (
	"fmt"

	"github.com/michaelscutari/assetpath/internal/canon"
	"github.com/michaelscutari/assetpath/internal/db"
	"github.com/michaelscutari/assetpath/internal/tui"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse a course's assets interactively",
	Long:  `Open an interactive TUI to browse a course's assets, toggle locks and see canonical URLs.`,
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

var tuiCourse string

func init() {
	tuiCmd.Flags().StringVarP(&tuiCourse, "course", "c", "", "Course key to browse")
}

func runTUI(cmd *cobra.Command, args []string) error {
	course, err := parseCourse(tuiCourse)
	if err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	baseURL, err := db.CurrentBaseURL(database)
	if err != nil {
		return fmt.Errorf("failed to read base URL: %w", err)
	}

	model := tui.NewModel(database, course, baseURL, canon.New(db.Locks{DB: database}, canon.WithLogger(logger)))
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
