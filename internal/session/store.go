package session

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// SQLStore keeps session state in the kv_store and submission_log tables.
type SQLStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore creates a database backed store.
func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

var (
	_ KeyValue      = (*SQLStore)(nil)
	_ SubmissionLog = (*SQLStore)(nil)
)

func (s *SQLStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	log.Debug("Stored session key", "key", key)
	return nil
}

func (s *SQLStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if _, err := s.db.Exec("DELETE FROM kv_store WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}
	return nil
}

func (s *SQLStore) RecordSubmission(rec SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO submission_log (user_id, event_id, choices, outcome, created_at)
		VALUES (?, ?, ?, ?, ?);
	`, rec.UserID, rec.EventID, rec.Choices, string(rec.Outcome), rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

func (s *SQLStore) Submissions(userID string, eventID int) ([]SubmissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT user_id, event_id, choices, outcome, created_at
		FROM submission_log
		WHERE user_id = ? AND event_id = ?
		ORDER BY id ASC;
	`, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var records []SubmissionRecord
	for rows.Next() {
		var (
			rec       SubmissionRecord
			outcome   string
			createdAt int64
		)
		if err := rows.Scan(&rec.UserID, &rec.EventID, &rec.Choices, &outcome, &createdAt); err != nil {
			return nil, err
		}
		rec.Outcome = SubmissionOutcome(outcome)
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}
