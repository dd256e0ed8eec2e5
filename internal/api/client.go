// Package api implements the HTTP/JSON client for the assessment backend.
// The backend is the service of record for questions, answers, and the
// downstream matching pipeline; this client only speaks its wire contract.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pathway-dev/pathway/internal/assessment"
)

// Client communicates with the assessment backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting the given backend base URL.
// timeout bounds each individual request; zero means no client timeout
// (callers still pass per-request contexts).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// StartResult is the backend's reply to starting a session.
type StartResult struct {
	SessionID  string `json:"session_id"`
	FirstIndex int    `json:"first_index"`
	Total      int    `json:"total"`
}

// SubmitResult is the backend's reply to a single persisted answer.
// The controller never applies Next to local state; question order is
// fixed by the initial fetch and stale replies are simply discarded.
type SubmitResult struct {
	Next      *assessment.Question `json:"next_question"`
	Number    int                  `json:"question_number"`
	Total     int                  `json:"total"`
	Completed bool                 `json:"completed"`
}

// CompleteResult is the backend's reply to session completion.
type CompleteResult struct {
	SessionID string   `json:"session_id"`
	NextSteps []string `json:"next_steps"`
}

// FetchQuestions returns the full ordered question list. Called once per
// session; the returned order is authoritative for the whole run.
func (c *Client) FetchQuestions(ctx context.Context) ([]assessment.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/assessment/questions", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching questions: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Questions []assessment.Question `json:"questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	return out.Questions, nil
}

// StartSession asks the backend to open a new assessment session for the
// user. Not assumed idempotent: each call may create a fresh session.
func (c *Client) StartSession(ctx context.Context, userID string) (StartResult, error) {
	body := map[string]string{"user_id": userID}

	var out StartResult
	if err := c.postJSON(ctx, "/api/assessment/sessions", body, &out); err != nil {
		return StartResult{}, fmt.Errorf("starting session: %w", err)
	}
	return out, nil
}

// SubmitAnswer persists a single answer. Best effort: the caller logs
// failures and moves on, it never retries through the UI.
func (c *Client) SubmitAnswer(ctx context.Context, userID, questionID string, a assessment.Answer) (SubmitResult, error) {
	body := struct {
		UserID     string            `json:"user_id"`
		QuestionID string            `json:"question_id"`
		Answer     assessment.Answer `json:"answer"`
	}{userID, questionID, a}

	var out SubmitResult
	if err := c.postJSON(ctx, "/api/assessment/answers", body, &out); err != nil {
		return SubmitResult{}, fmt.Errorf("submitting answer %s: %w", questionID, err)
	}
	return out, nil
}

// CompleteSession sends the full answer mapping and triggers downstream
// resume/matching generation on the backend.
func (c *Client) CompleteSession(ctx context.Context, userID string, answers map[string]assessment.Answer) (CompleteResult, error) {
	body := struct {
		UserID  string                       `json:"user_id"`
		Answers map[string]assessment.Answer `json:"answers"`
	}{userID, answers}

	var out CompleteResult
	if err := c.postJSON(ctx, "/api/assessment/sessions/complete", body, &out); err != nil {
		return CompleteResult{}, fmt.Errorf("completing session: %w", err)
	}
	return out, nil
}

// postJSON posts body as JSON to path and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
