package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/objtrack/objtrack/internal/engine"
)

// Run starts the interactive report view. The runner is invoked once on
// startup and again whenever the user re-runs the report.
func Run(runner engine.Runner, projectDir, revision string) error {
	m := NewModel(runner, projectDir, revision)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
