// Package tui implements the terminal user interface using Bubble Tea.
package tui

import "github.com/pathway-dev/pathway/internal/assessment"

// ============================================================================
// Session Lifecycle Messages
// ============================================================================

// SessionReadyMsg carries the fetched question list and the backend
// session id once both startup calls have succeeded.
type SessionReadyMsg struct {
	RemoteID  string
	Questions []assessment.Question
	Total     int
}

// SessionLoadErrMsg signals that the question fetch or session start failed.
type SessionLoadErrMsg struct {
	Err error
}

// LoadRetryMsg fires a scheduled automatic retry of the initial load.
type LoadRetryMsg struct{}

// SessionCompletedMsg carries the backend's reply to session completion.
// Err is non-nil when the backend did not acknowledge; the session is
// complete locally either way.
type SessionCompletedMsg struct {
	Hints []string
	Err   error
}

// ============================================================================
// Chat Flow Messages
// ============================================================================

// AnswerMsg contains the user's confirmed answer to the current question.
type AnswerMsg struct {
	QuestionID string
	Answer     assessment.Answer
}

// AdvanceMsg fires when the post-answer pacing delay has elapsed and the
// next question (or the closing message) should appear.
type AdvanceMsg struct{}

// ============================================================================
// Utility Messages
// ============================================================================

// CtrlCResetMsg resets the Ctrl+C confirmation state after timeout.
type CtrlCResetMsg struct{}
