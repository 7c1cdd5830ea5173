// Package ui renders progress and query results for the terminal.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	ColorPrimary   = lipgloss.Color("39")  // blue
	ColorSecondary = lipgloss.Color("245") // grey
	ColorSuccess   = lipgloss.Color("42")  // green
	ColorWarning   = lipgloss.Color("214") // orange

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	faintStyle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	okStyle     = lipgloss.NewStyle().Foreground(ColorSuccess)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorWarning)

	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1)
)

// IsInteractive reports whether stdout is a terminal, so progress output can
// be suppressed when piping.
func IsInteractive() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// terminalWidth returns the usable display width, defaulting to 80.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
