// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the Intone player
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI program. The caller runs the returned program and
// feeds it StatusMsg/SpectrumMsg/HistoryMsg updates via Send while
// consuming user intents from the controls channels.
func Run(controls *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(controls), tea.WithAltScreen())
	return p, nil
}
