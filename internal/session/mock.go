package session

import (
	"sync"
	"time"
)

// Mock is an in-memory KeyValue and SubmissionLog for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	values      map[string][]byte
	submissions []SubmissionRecord

	// Spies for method calls
	GetFunc func(key string) ([]byte, error)
	SetFunc func(key string, value []byte) error

	// Call records
	SetCalls    []string
	DeleteCalls [][]string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{values: make(map[string][]byte)}
}

var (
	_ KeyValue      = (*Mock)(nil)
	_ SubmissionLog = (*Mock)(nil)
)

func (m *Mock) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(key)
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Mock) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls = append(m.SetCalls, key)
	if m.SetFunc != nil {
		return m.SetFunc(key, value)
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *Mock) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, keys)
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *Mock) RecordSubmission(rec SubmissionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.submissions = append(m.submissions, rec)
	return nil
}

func (m *Mock) Submissions(userID string, eventID int) ([]SubmissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SubmissionRecord
	for _, rec := range m.submissions {
		if rec.UserID == userID && rec.EventID == eventID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Value returns the raw stored value for key and whether it exists.
func (m *Mock) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return string(v), ok
}
