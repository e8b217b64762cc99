package notifier

import (
	"context"
	"sync"

	"github.com/mauv0809/quiniela-client/internal/backend"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	ResultsReleasedCalls  []ResultsSummary
	RankingsReleasedCalls []RankingsReleasedCall
	SubmissionLockedCalls []SubmissionLockedCall

	// Err, if set, is returned by every method.
	Err error
}

// RankingsReleasedCall holds the arguments for a call to RankingsReleased.
type RankingsReleasedCall struct {
	EventID int
	Top     []backend.RankingEntry
}

// SubmissionLockedCall holds the arguments for a call to SubmissionLocked.
type SubmissionLockedCall struct {
	UserID  string
	EventID int
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultsReleasedCalls = nil
	m.RankingsReleasedCalls = nil
	m.SubmissionLockedCalls = nil
}

func (m *Mock) ResultsReleased(_ context.Context, summary ResultsSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultsReleasedCalls = append(m.ResultsReleasedCalls, summary)
	return m.Err
}

func (m *Mock) RankingsReleased(_ context.Context, eventID int, top []backend.RankingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RankingsReleasedCalls = append(m.RankingsReleasedCalls, RankingsReleasedCall{EventID: eventID, Top: top})
	return m.Err
}

func (m *Mock) SubmissionLocked(_ context.Context, userID string, event backend.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmissionLockedCalls = append(m.SubmissionLockedCalls, SubmissionLockedCall{UserID: userID, EventID: event.ID})
	return m.Err
}

// Counts returns the number of results, rankings and submission notifications.
func (m *Mock) Counts() (results, rankings, submissions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ResultsReleasedCalls), len(m.RankingsReleasedCalls), len(m.SubmissionLockedCalls)
}
