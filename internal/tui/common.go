// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Common key binding constants.
const (
	KeyCtrlC = "ctrl+c"
	KeyEnter = "enter"
	KeyEsc   = "esc"
	KeyUp    = "up"
	KeyDown  = "down"
	KeyLeft  = "left"
	KeyRight = "right"
	KeySpace = " "
)

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run starts the TUI program with the given model and returns the final
// model state. If stdout is a TTY, it runs in alternate screen mode.
// Otherwise, it delegates to runFallback for non-interactive behavior.
func Run(m tea.Model) (tea.Model, error) {
	if IsTTY() {
		p := tea.NewProgram(m, tea.WithAltScreen())
		return p.Run()
	}
	return runFallback(m)
}

// runFallback handles non-TTY execution.
func runFallback(m tea.Model) (tea.Model, error) {
	fmt.Println("Non-TTY environment detected.")
	fmt.Println("The assessment chat needs an interactive terminal.")
	fmt.Println("Use 'pathway sessions' or 'pathway export <session-id>' for non-interactive access.")
	return m, nil
}
