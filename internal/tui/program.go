package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// NewProgram wraps m in a Bubble Tea program. Fullscreen models get the
// alternate screen and mouse reporting; inline models keep the terminal's
// native scrollback.
func NewProgram(m Model, opts ...tea.ProgramOption) *tea.Program {
	if m.fullscreen {
		opts = append(opts, tea.WithAltScreen(), tea.WithMouseCellMotion())
	}
	return tea.NewProgram(m, opts...)
}

// MustGetwd returns the current working directory or "." on error.
func MustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
