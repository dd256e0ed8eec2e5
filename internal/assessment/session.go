package assessment

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a session.
type Status int

const (
	StatusLoading Status = iota // fetching questions / starting remote session
	StatusAwaitingAnswer
	StatusProcessing // answer stored, pacing delay before the next question
	StatusComplete
	StatusFailed
)

// String returns the status name used in logs and the local store.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAwaitingAnswer:
		return "awaiting-answer"
	case StatusProcessing:
		return "processing"
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Message authors.
const (
	AuthorBot  = "bot"
	AuthorUser = "user"
)

// Message is one append-only chat transcript entry. Display-only: the
// session's authoritative state lives in Answers, never here.
type Message struct {
	Author     string
	Time       time.Time
	Content    string
	QuestionID string
}

// closingMessage is the terminal bot line appended when the last answer
// has been submitted.
const closingMessage = "That's everything I need. Thanks! I'm matching your profile against open roles now."

// Session is the full state of one assessment run. All five pieces of
// state (status, questions, index, answers, transcript) live in this one
// value and change only through the transition methods below, so no
// partial update can be observed.
type Session struct {
	UserID   string
	RemoteID string // assigned by the backend on start
	Status   Status

	Questions []Question
	Index     int
	Answers   map[string]Answer
	Messages  []Message

	Err error // set when Status == StatusFailed
}

// NewSession creates a session in the loading state for the given user.
func NewSession(userID string) *Session {
	return &Session{
		UserID:  userID,
		Status:  StatusLoading,
		Answers: make(map[string]Answer),
	}
}

// Begin installs the fetched question list and the backend session id,
// appends the first question to the transcript, and opens the session
// for answers. An empty question list completes the session immediately.
func (s *Session) Begin(remoteID string, questions []Question) error {
	if s.Status != StatusLoading {
		return fmt.Errorf("begin: session is %s, not loading", s.Status)
	}
	s.RemoteID = remoteID
	s.Questions = questions
	s.Index = 0

	if len(questions) == 0 {
		s.appendBot(closingMessage, "")
		s.Status = StatusComplete
		return nil
	}

	s.appendBot(questions[0].Prompt, questions[0].ID)
	s.Status = StatusAwaitingAnswer
	return nil
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// Submit records the answer for the current question: it appends the
// user's transcript line, stores the answer keyed by question id
// (overwriting, never duplicating), and moves to processing. The caller
// advances separately after the pacing delay.
func (s *Session) Submit(a Answer) error {
	if s.Status != StatusAwaitingAnswer {
		return fmt.Errorf("submit: session is %s, not awaiting an answer", s.Status)
	}
	q, ok := s.Current()
	if !ok {
		return fmt.Errorf("submit: no current question at index %d", s.Index)
	}
	if !a.Matches(q) {
		return fmt.Errorf("submit: %s answer for %s question %s", a.Type, q.Type, q.ID)
	}
	if q.Required && a.Empty() {
		return fmt.Errorf("submit: question %s requires an answer", q.ID)
	}

	s.Messages = append(s.Messages, Message{
		Author:     AuthorUser,
		Time:       time.Now().UTC(),
		Content:    a.Display(q),
		QuestionID: q.ID,
	})
	s.Answers[q.ID] = a
	s.Status = StatusProcessing
	return nil
}

// Advance moves past the just-answered question. It either appends the
// next question to the transcript and reopens the session for input, or
// appends the closing message and completes. Returns true once the
// session is complete.
func (s *Session) Advance() (bool, error) {
	if s.Status != StatusProcessing {
		return false, fmt.Errorf("advance: session is %s, not processing", s.Status)
	}
	s.Index++
	if s.Index < len(s.Questions) {
		q := s.Questions[s.Index]
		s.appendBot(q.Prompt, q.ID)
		s.Status = StatusAwaitingAnswer
		return false, nil
	}
	s.appendBot(closingMessage, "")
	s.Status = StatusComplete
	return true, nil
}

// Fail puts the session into the terminal failed state. Used when the
// question list or the remote session cannot be obtained.
func (s *Session) Fail(err error) {
	s.Status = StatusFailed
	s.Err = err
}

// Retry returns a failed session to loading so initialization can be
// attempted again.
func (s *Session) Retry() error {
	if s.Status != StatusFailed {
		return fmt.Errorf("retry: session is %s, not failed", s.Status)
	}
	s.Status = StatusLoading
	s.Err = nil
	return nil
}

// Progress is the percentage of answered questions: 0 before the first
// answer, 100 only once the session is complete.
func (s *Session) Progress() int {
	total := len(s.Questions)
	if total == 0 {
		if s.Status == StatusComplete {
			return 100
		}
		return 0
	}
	answered := s.Index
	if s.Status == StatusComplete {
		answered = total
	}
	return answered * 100 / total
}

func (s *Session) appendBot(content, questionID string) {
	s.Messages = append(s.Messages, Message{
		Author:     AuthorBot,
		Time:       time.Now().UTC(),
		Content:    content,
		QuestionID: questionID,
	})
}
