// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/pathway-dev/pathway/internal/assessment"
	"github.com/pathway-dev/pathway/internal/config"
)

// Model holds the shared state threaded through the TUI: the session
// state machine itself plus presentation-level bookkeeping.
type Model struct {
	// Configuration
	Cfg *config.Config

	// The assessment session. All chat state (status, questions, index,
	// answers, transcript) lives here and changes only via its
	// transition methods.
	Session *assessment.Session

	// Next-step hints returned by the backend on completion.
	NextSteps []string

	// Initial-load retry bookkeeping.
	LoadAttempt int

	// Bubbles components
	Spinner spinner.Model

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool // True when waiting for second Ctrl+C press
}

// NewModel creates a new Model for the given user.
func NewModel(cfg *config.Config, userID string) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return &Model{
		Cfg:     cfg,
		Session: assessment.NewSession(userID),
		Spinner: sp,

		// Default dimensions (will be updated on WindowSizeMsg)
		Width:  80,
		Height: 24,
	}
}
