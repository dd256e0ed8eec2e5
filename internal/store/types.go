// Package store provides SQLite-backed local persistence for completed
// and in-flight assessment sessions, so a finished run can be reviewed
// or exported offline.
package store

import "time"

// Session is the locally recorded view of one assessment run.
type Session struct {
	ID        string // local id, assigned on creation
	RemoteID  string // backend session id, empty until the backend responds
	UserID    string
	Status    string // loading, awaiting-answer, processing, complete, failed
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a recorded chat transcript line.
type Message struct {
	ID         int
	SessionID  string
	Author     string // bot, user
	QuestionID string
	Content    string
	Timestamp  time.Time
}

// Answer is a recorded answer, stored as the JSON wire form of the
// assessment answer union.
type Answer struct {
	ID         int
	SessionID  string
	QuestionID string
	AnswerJSON string
	Timestamp  time.Time
}

// Summary provides a high-level view of a session for listing.
type Summary struct {
	ID        string
	UserID    string
	Status    string
	Answered  int
	UpdatedAt time.Time
}
