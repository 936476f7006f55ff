package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive client against the given backend and blocks
// until the user quits.
func Run(backend Backend, log *slog.Logger) error {
	applyThemePreference()
	m := newAppModel(backend, log)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
