// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/pathway-dev/pathway/internal/api"
	"github.com/pathway-dev/pathway/internal/assessment"
	"github.com/pathway-dev/pathway/internal/persist"
	"github.com/pathway-dev/pathway/internal/tui"
)

// LoadSessionCmd fetches the ordered question list and starts a backend
// session for the user. The two calls run concurrently; either failing
// fails the load. Returns SessionReadyMsg on success, SessionLoadErrMsg
// on failure.
func LoadSessionCmd(client *api.Client, userID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var (
			questions []assessment.Question
			start     api.StartResult
		)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			questions, err = client.FetchQuestions(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			start, err = client.StartSession(ctx, userID)
			return err
		})
		if err := g.Wait(); err != nil {
			return tui.SessionLoadErrMsg{Err: err}
		}

		return tui.SessionReadyMsg{
			RemoteID:  start.SessionID,
			Questions: questions,
			Total:     start.Total,
		}
	}
}

// AdvanceCmd fires AdvanceMsg after the typing-pacing delay. The delay
// is pure UX; correctness never depends on it.
func AdvanceCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return tui.AdvanceMsg{}
	})
}

// ScheduleRetryCmd fires LoadRetryMsg after the given backoff, driving
// the automatic retry of a failed initial load.
func ScheduleRetryCmd(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return tui.LoadRetryMsg{}
	})
}

// CompleteSessionCmd drains the persistence queue (bounded by
// drainTimeout) and then sends the full answer mapping to the backend.
// A backend failure is reported in the message but never blocks local
// completion.
func CompleteSessionCmd(
	client *api.Client,
	queue *persist.Queue,
	userID string,
	answers map[string]assessment.Answer,
	drainTimeout time.Duration,
) tea.Cmd {
	return func() tea.Msg {
		if queue != nil {
			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			_ = queue.Drain(drainCtx)
			cancel()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := client.CompleteSession(ctx, userID, answers)
		if err != nil {
			return tui.SessionCompletedMsg{Err: err}
		}
		return tui.SessionCompletedMsg{Hints: result.NextSteps}
	}
}
