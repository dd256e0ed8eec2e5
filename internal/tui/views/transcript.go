// Package views provides TUI view components for the Pathway application.
package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pathway-dev/pathway/internal/assessment"
	"github.com/pathway-dev/pathway/internal/tui"
)

// TranscriptModel displays the append-only chat transcript in a
// scrollable viewport. It never owns chat state; the session's message
// log is pushed in via SetMessages.
type TranscriptModel struct {
	viewport viewport.Model
	messages []assessment.Message
	width    int
	height   int
}

// NewTranscriptModel creates a TranscriptModel sized to the given area.
func NewTranscriptModel(width, height int) TranscriptModel {
	vp := viewport.New(width, height)
	vp.SetContent(tui.DimStyle.Render("Connecting you with your career coach..."))

	return TranscriptModel{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetMessages replaces the displayed transcript and scrolls to the
// newest line.
func (m *TranscriptModel) SetMessages(messages []assessment.Message) {
	m.messages = messages
	m.viewport.SetContent(formatTranscript(messages))
	m.viewport.GotoBottom()
}

// Resize adjusts the viewport and re-wraps the transcript.
func (m *TranscriptModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(formatTranscript(m.messages))
	m.viewport.GotoBottom()
}

// Update handles scrolling.
func (m TranscriptModel) Update(msg tea.Msg) (TranscriptModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the transcript viewport.
func (m TranscriptModel) View() string {
	return m.viewport.View()
}

// formatTranscript formats the message log for display in the viewport.
func formatTranscript(messages []assessment.Message) string {
	if len(messages) == 0 {
		return tui.DimStyle.Render("No messages yet.")
	}

	var b strings.Builder
	for i, msg := range messages {
		switch msg.Author {
		case assessment.AuthorBot:
			b.WriteString(tui.BotStyle.Render("Coach: "))
		case assessment.AuthorUser:
			b.WriteString(tui.UserStyle.Render("You: "))
		default:
			b.WriteString(tui.DimStyle.Render(msg.Author + ": "))
		}
		b.WriteString(msg.Content)
		if i < len(messages)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
