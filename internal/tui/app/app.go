// Package app provides the main TUI application that wires all views together.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pathway-dev/pathway/internal/api"
	"github.com/pathway-dev/pathway/internal/assessment"
	"github.com/pathway-dev/pathway/internal/config"
	"github.com/pathway-dev/pathway/internal/log"
	"github.com/pathway-dev/pathway/internal/persist"
	"github.com/pathway-dev/pathway/internal/store"
	"github.com/pathway-dev/pathway/internal/tui"
	"github.com/pathway-dev/pathway/internal/tui/commands"
	"github.com/pathway-dev/pathway/internal/tui/views"
)

// Deps are the collaborators the chat controller drives. Store and
// Logger may be nil; the chat degrades to in-memory operation.
type Deps struct {
	Client *api.Client
	Queue  *persist.Queue
	Store  *store.Store
	Logger *log.Logger

	// LocalID is the local store row for this run, when Store is set.
	LocalID string

	// OnComplete is invoked exactly once with the full question-id ->
	// answer mapping when the session completes. Local completion is
	// authoritative: the callback fires even if the backend never
	// acknowledges.
	OnComplete func(map[string]assessment.Answer)
}

// App drives a full assessment session from loading to completion.
type App struct {
	model *tui.Model
	deps  Deps

	// View models
	questionView   views.QuestionModel
	transcriptView views.TranscriptModel

	notified bool // completion callback fired
}

// New creates a new App for the given user.
func New(cfg *config.Config, userID string, deps Deps) *App {
	model := tui.NewModel(cfg, userID)

	return &App{
		model:          model,
		deps:           deps,
		transcriptView: views.NewTranscriptModel(model.Width-8, transcriptHeight(model.Height)),
	}
}

// Session exposes the session state machine, for the CLI caller and tests.
func (a *App) Session() *assessment.Session {
	return a.model.Session
}

// NextSteps returns the backend's next-step hints, if completion was
// acknowledged.
func (a *App) NextSteps() []string {
	return a.model.NextSteps
}

// Init starts the concurrent question fetch and session start.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.model.Spinner.Tick,
		commands.LoadSessionCmd(a.deps.Client, a.model.Session.UserID, a.loadTimeout()),
	)
}

// Update handles messages and advances the session state machine.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		a.transcriptView.Resize(msg.Width-8, transcriptHeight(msg.Height))
		var cmd tea.Cmd
		a.questionView, cmd = a.questionView.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if handled, cmd := a.handleGlobalKey(msg); handled {
			return a, cmd
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case spinner.TickMsg:
		status := a.model.Session.Status
		if status == assessment.StatusLoading || status == assessment.StatusProcessing {
			var cmd tea.Cmd
			a.model.Spinner, cmd = a.model.Spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tui.SessionReadyMsg:
		return a.handleSessionReady(msg)

	case tui.SessionLoadErrMsg:
		return a.handleLoadError(msg)

	case tui.LoadRetryMsg:
		return a, tea.Batch(
			a.model.Spinner.Tick,
			commands.LoadSessionCmd(a.deps.Client, a.model.Session.UserID, a.loadTimeout()),
		)

	case tui.AnswerMsg:
		return a.handleAnswer(msg)

	case tui.AdvanceMsg:
		return a.handleAdvance()

	case tui.SessionCompletedMsg:
		return a.handleCompleted(msg)
	}

	// Remaining messages go to the active input widget and the transcript.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if a.model.Session.Status == assessment.StatusAwaitingAnswer {
		a.questionView, cmd = a.questionView.Update(msg)
		cmds = append(cmds, cmd)
	}
	a.transcriptView, cmd = a.transcriptView.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// handleGlobalKey processes keys that apply regardless of session state.
// Returns true when the key was consumed.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	key := msg.String()

	if key == tui.KeyCtrlC {
		if a.model.CtrlCPending {
			return true, tea.Quit
		}
		a.model.CtrlCPending = true
		return true, tea.Tick(time.Second, func(time.Time) tea.Msg {
			return tui.CtrlCResetMsg{}
		})
	}

	switch a.model.Session.Status {
	case assessment.StatusComplete:
		// Any key exits once the closing screen is up.
		return true, tea.Quit
	case assessment.StatusFailed:
		switch key {
		case "r":
			if err := a.model.Session.Retry(); err == nil {
				a.model.LoadAttempt = 0
				return true, tea.Batch(
					a.model.Spinner.Tick,
					commands.LoadSessionCmd(a.deps.Client, a.model.Session.UserID, a.loadTimeout()),
				)
			}
			return true, nil
		case "q", tui.KeyEsc:
			return true, tea.Quit
		}
	}

	return false, nil
}

func (a *App) handleSessionReady(msg tui.SessionReadyMsg) (tea.Model, tea.Cmd) {
	sess := a.model.Session
	if err := sess.Begin(msg.RemoteID, msg.Questions); err != nil {
		// A duplicate ready message (late retry response) is ignored.
		return a, nil
	}

	started := log.LogEvent{
		Event:     log.EventSessionStarted,
		SessionID: sess.RemoteID,
		UserID:    sess.UserID,
		Total:     len(sess.Questions),
	}
	if msg.Total != len(sess.Questions) {
		// The fetched list is authoritative; a disagreeing backend count
		// is worth a trace in the log.
		started.Reason = fmt.Sprintf("backend reported %d questions, fetched %d", msg.Total, len(sess.Questions))
	}
	a.logEvent(started)
	if a.deps.Store != nil {
		_ = a.deps.Store.UpdateSession(a.deps.LocalID, sess.RemoteID, sess.Status.String())
	}
	a.recordLastMessage()
	a.transcriptView.SetMessages(sess.Messages)

	if sess.Status == assessment.StatusComplete {
		// Zero questions: complete on the spot.
		return a.finishSession()
	}

	a.logQuestionShown()
	q, _ := sess.Current()
	a.questionView = views.NewQuestionModel(q, a.model.Width, a.model.Height)
	return a, a.questionView.Init()
}

func (a *App) handleLoadError(msg tui.SessionLoadErrMsg) (tea.Model, tea.Cmd) {
	a.model.LoadAttempt++
	a.logEvent(log.LogEvent{
		Event:   log.EventFetchFailed,
		UserID:  a.model.Session.UserID,
		Attempt: a.model.LoadAttempt,
		Error:   msg.Err.Error(),
	})

	if a.model.LoadAttempt <= a.model.Cfg.Chat.LoadRetries {
		backoff := time.Duration(a.model.Cfg.Chat.LoadBackoffMs) * time.Millisecond
		return a, commands.ScheduleRetryCmd(backoff * time.Duration(a.model.LoadAttempt))
	}

	a.model.Session.Fail(msg.Err)
	if a.deps.Store != nil {
		_ = a.deps.Store.UpdateSession(a.deps.LocalID, a.model.Session.RemoteID, a.model.Session.Status.String())
	}
	return a, nil
}

func (a *App) handleAnswer(msg tui.AnswerMsg) (tea.Model, tea.Cmd) {
	sess := a.model.Session
	q, ok := sess.Current()
	if !ok || q.ID != msg.QuestionID {
		// Answer for a question that is no longer current; drop it.
		return a, nil
	}
	if err := sess.Submit(msg.Answer); err != nil {
		return a, nil
	}

	a.logEvent(log.LogEvent{
		Event:      log.EventAnswerSubmitted,
		SessionID:  sess.RemoteID,
		UserID:     sess.UserID,
		QuestionID: q.ID,
		Number:     sess.Index + 1,
		Total:      len(sess.Questions),
	})
	a.recordLastMessage()
	if a.deps.Store != nil {
		_ = a.deps.Store.SaveAnswer(a.deps.LocalID, q.ID, msg.Answer)
	}
	if a.deps.Queue != nil {
		a.deps.Queue.Enqueue(persist.Job{
			UserID:     sess.UserID,
			SessionID:  sess.RemoteID,
			QuestionID: q.ID,
			Answer:     msg.Answer,
		})
	}

	a.transcriptView.SetMessages(sess.Messages)
	delay := time.Duration(a.model.Cfg.Chat.TypingDelayMs) * time.Millisecond
	return a, tea.Batch(a.model.Spinner.Tick, commands.AdvanceCmd(delay))
}

func (a *App) handleAdvance() (tea.Model, tea.Cmd) {
	sess := a.model.Session
	done, err := sess.Advance()
	if err != nil {
		return a, nil
	}

	a.recordLastMessage()
	a.transcriptView.SetMessages(sess.Messages)

	if done {
		return a.finishSession()
	}

	a.logQuestionShown()
	q, _ := sess.Current()
	a.questionView = views.NewQuestionModel(q, a.model.Width, a.model.Height)
	return a, a.questionView.Init()
}

// finishSession handles the transition into the complete state: the
// external callback fires exactly once, local state is persisted, and
// the backend completion call is kicked off in the background.
func (a *App) finishSession() (tea.Model, tea.Cmd) {
	sess := a.model.Session

	answers := make(map[string]assessment.Answer, len(sess.Answers))
	for id, ans := range sess.Answers {
		answers[id] = ans
	}

	if !a.notified {
		a.notified = true
		if a.deps.OnComplete != nil {
			a.deps.OnComplete(answers)
		}
	}

	a.logEvent(log.LogEvent{
		Event:     log.EventSessionCompleted,
		SessionID: sess.RemoteID,
		UserID:    sess.UserID,
		Total:     len(answers),
	})
	if a.deps.Store != nil {
		_ = a.deps.Store.UpdateSession(a.deps.LocalID, sess.RemoteID, sess.Status.String())
	}

	drain := time.Duration(a.model.Cfg.Persist.DrainMs) * time.Millisecond
	return a, commands.CompleteSessionCmd(a.deps.Client, a.deps.Queue, sess.UserID, answers, drain)
}

func (a *App) handleCompleted(msg tui.SessionCompletedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// Local completion stands; the refusal is only logged.
		a.logEvent(log.LogEvent{
			Event:     log.EventCompleteFailed,
			SessionID: a.model.Session.RemoteID,
			UserID:    a.model.Session.UserID,
			Error:     msg.Err.Error(),
		})
		return a, nil
	}
	a.model.NextSteps = msg.Hints
	return a, nil
}

// ============================================================================
// Rendering
// ============================================================================

// View renders the current application state.
func (a *App) View() string {
	switch a.model.Session.Status {
	case assessment.StatusLoading:
		return a.centerContent(a.renderLoadingView())
	case assessment.StatusFailed:
		return a.centerContent(a.renderFailedView())
	case assessment.StatusComplete:
		return a.renderChrome(a.renderCompleteView())
	case assessment.StatusProcessing:
		return a.renderChrome(a.renderTypingIndicator())
	default:
		return a.renderChrome(a.questionView.View())
	}
}

// renderChrome stacks the transcript, the progress line, and the given
// bottom panel.
func (a *App) renderChrome(bottom string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.transcriptView.View(),
		"",
		a.renderProgress(),
		"",
		bottom,
	)
}

// renderProgress renders the answered-question percentage as a bar.
func (a *App) renderProgress() string {
	pct := a.model.Session.Progress()

	width := a.model.Width - 20
	if width > 50 {
		width = 50
	}
	if width < 10 {
		width = 10
	}
	filled := pct * width / 100

	var b strings.Builder
	b.WriteString(tui.ProgressFullStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(tui.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled)))
	b.WriteString(tui.DimStyle.Render(fmt.Sprintf(" %d%%", pct)))
	return b.String()
}

func (a *App) renderLoadingView() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Preparing your assessment"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s Fetching your questions...", a.model.Spinner.View()))
	b.WriteString("\n")

	if a.model.LoadAttempt > 0 {
		b.WriteString("\n")
		b.WriteString(tui.WarningStyle.Render(
			fmt.Sprintf("Connection trouble, retrying (attempt %d of %d)...",
				a.model.LoadAttempt, a.model.Cfg.Chat.LoadRetries)))
		b.WriteString("\n")
	}

	return a.boxed(b.String(), 70)
}

func (a *App) renderFailedView() string {
	var b strings.Builder

	b.WriteString(tui.ErrorStyle.Render("Could not start your assessment"))
	b.WriteString("\n\n")
	if err := a.model.Session.Err; err != nil {
		b.WriteString(tui.DimStyle.Render(err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(tui.DimStyle.Render("r: Try again · q: Quit"))

	return a.boxed(b.String(), 70)
}

func (a *App) renderTypingIndicator() string {
	line := fmt.Sprintf("%s Coach is typing...", a.model.Spinner.View())
	return a.boxed(tui.DimStyle.Render(line), maxBottomWidth(a.model.Width))
}

func (a *App) renderCompleteView() string {
	var b strings.Builder

	b.WriteString(tui.SuccessStyle.Render("Assessment complete!"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Answered %d of %d questions.\n",
		len(a.model.Session.Answers), len(a.model.Session.Questions)))

	if len(a.model.NextSteps) > 0 {
		b.WriteString("\nNext steps:\n")
		for _, step := range a.model.NextSteps {
			b.WriteString(tui.DimStyle.Render("  - " + step))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Press any key to exit..."))

	return a.boxed(b.String(), 70)
}

func (a *App) boxed(content string, maxWidth int) string {
	boxWidth := maxWidth
	if a.model.Width-4 < boxWidth {
		boxWidth = a.model.Width - 4
	}
	return tui.BoxStyle.Width(boxWidth).Render(content)
}

// centerContent centers the given content both horizontally and vertically.
func (a *App) centerContent(content string) string {
	return lipgloss.Place(
		a.model.Width,
		a.model.Height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// ============================================================================
// Helpers
// ============================================================================

func (a *App) loadTimeout() time.Duration {
	secs := a.model.Cfg.Backend.TimeoutSeconds
	if secs <= 0 {
		secs = 15
	}
	return time.Duration(secs) * time.Second
}

// recordLastMessage mirrors the newest transcript line into the local store.
func (a *App) recordLastMessage() {
	if a.deps.Store == nil {
		return
	}
	msgs := a.model.Session.Messages
	if len(msgs) == 0 {
		return
	}
	_ = a.deps.Store.AddMessage(a.deps.LocalID, msgs[len(msgs)-1])
}

func (a *App) logQuestionShown() {
	sess := a.model.Session
	q, ok := sess.Current()
	if !ok {
		return
	}
	a.logEvent(log.LogEvent{
		Event:      log.EventQuestionShown,
		SessionID:  sess.RemoteID,
		UserID:     sess.UserID,
		QuestionID: q.ID,
		Number:     sess.Index + 1,
		Total:      len(sess.Questions),
	})
}

func (a *App) logEvent(event log.LogEvent) {
	if a.deps.Logger == nil {
		return
	}
	_ = a.deps.Logger.Append(event)
}

func transcriptHeight(total int) int {
	h := total / 3
	if h < 5 {
		h = 5
	}
	return h
}

func maxBottomWidth(width int) int {
	if width-4 < 90 {
		return width - 4
	}
	return 90
}
