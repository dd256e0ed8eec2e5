package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pathway-dev/pathway/internal/assessment"
)

// Store provides SQLite-backed persistence for sessions.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		remote_id TEXT NOT NULL DEFAULT '',
		user_id TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		author TEXT NOT NULL,
		question_id TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		answer TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (session_id, question_id),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateSession records a new local session for the given user.
func (s *Store) CreateSession(userID string) (*Session, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, user_id, status, created_at, updated_at)
		 VALUES (?, ?, 'loading', ?, ?)`,
		id, userID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &Session{
		ID:        id,
		UserID:    userID,
		Status:    "loading",
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetSession retrieves a session by local ID. Returns nil when absent.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, remote_id, user_id, status, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		id,
	)

	var sess Session
	err := row.Scan(&sess.ID, &sess.RemoteID, &sess.UserID, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &sess, nil
}

// UpdateSession records the backend session id and the current status.
func (s *Store) UpdateSession(id, remoteID, status string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET remote_id = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		remoteID, status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// ListSessions returns summaries of the most recent sessions.
func (s *Store) ListSessions(limit int) ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.user_id, s.status, s.updated_at,
		        COALESCE(COUNT(a.id), 0) as answered
		 FROM sessions s
		 LEFT JOIN answers a ON s.id = a.session_id
		 GROUP BY s.id
		 ORDER BY s.updated_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.UserID, &sum.Status, &sum.UpdatedAt, &sum.Answered); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return summaries, nil
}

// AddMessage records a chat transcript line for the session.
func (s *Store) AddMessage(sessionID string, msg assessment.Message) error {
	_, err := s.db.Exec(
		`INSERT INTO messages (session_id, author, question_id, content, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, msg.Author, msg.QuestionID, msg.Content, msg.Time,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// GetMessages retrieves all transcript lines for a session in order.
func (s *Store) GetMessages(sessionID string) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, author, question_id, content, timestamp
		 FROM messages
		 WHERE session_id = ?
		 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Author, &msg.QuestionID, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return messages, nil
}

// SaveAnswer records an answer in its JSON wire form. Re-submission of
// the same question overwrites rather than duplicates.
func (s *Store) SaveAnswer(sessionID, questionID string, a assessment.Answer) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO answers (session_id, question_id, answer, timestamp)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (session_id, question_id) DO UPDATE SET answer = excluded.answer, timestamp = excluded.timestamp`,
		sessionID, questionID, string(payload), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}

	return nil
}

// GetAnswers retrieves all recorded answers for a session, decoded back
// into the answer union and keyed by question id.
func (s *Store) GetAnswers(sessionID string) (map[string]assessment.Answer, error) {
	rows, err := s.db.Query(
		`SELECT question_id, answer
		 FROM answers
		 WHERE session_id = ?
		 ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	answers := make(map[string]assessment.Answer)
	for rows.Next() {
		var questionID, payload string
		if err := rows.Scan(&questionID, &payload); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		var a assessment.Answer
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decode answer %s: %w", questionID, err)
		}
		answers[questionID] = a
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return answers, nil
}
