package backend

import (
	"context"
	"sync"
)

// Mock is a mock implementation of the Client interface for testing.
// It is safe for concurrent use. Spies run without the lock held so they may
// block to simulate slow responses.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	RegisterFunc           func(req RegisterRequest) (string, error)
	LoginFunc              func(userID, password string) (string, error)
	UpdateProfileFunc      func(update ProfileUpdate) error
	GetTicketsFunc         func(userID string) (int, error)
	SpendTicketFunc        func(userID string, eventID int) (SpendResult, error)
	CurrentEventFunc       func(ctx context.Context) (Event, error)
	CheckParticipationFunc func(userID string, eventID int) (bool, error)
	HasSubmittedFunc       func(userID string, eventID int) (bool, error)
	SubmitPredictionsFunc  func(userID string, eventID int, predictions []Prediction) (SubmitResult, error)
	UserResultsFunc        func(ctx context.Context, userID string) (UserResults, error)
	RankingsFunc           func(ctx context.Context, eventID int) ([]RankingEntry, error)

	// Call records
	LoginCalls              []string
	SpendTicketCalls        []SpendTicketCall
	CurrentEventCalls       int
	CheckParticipationCalls int
	HasSubmittedCalls       int
	SubmitPredictionsCalls  []SubmitPredictionsCall
	UserResultsCalls        int
	RankingsCalls           []int
}

// SpendTicketCall holds the arguments for a call to SpendTicket.
type SpendTicketCall struct {
	UserID  string
	EventID int
}

// SubmitPredictionsCall holds the arguments for a call to SubmitPredictions.
type SubmitPredictionsCall struct {
	UserID      string
	EventID     int
	Predictions []Prediction
}

var _ Client = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoginCalls = nil
	m.SpendTicketCalls = nil
	m.CurrentEventCalls = 0
	m.CheckParticipationCalls = 0
	m.HasSubmittedCalls = 0
	m.SubmitPredictionsCalls = nil
	m.UserResultsCalls = 0
	m.RankingsCalls = nil
}

func (m *Mock) Register(_ context.Context, req RegisterRequest) (string, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(req)
	}
	return req.UserID, nil
}

func (m *Mock) Login(_ context.Context, userID, password string) (string, error) {
	m.mu.Lock()
	m.LoginCalls = append(m.LoginCalls, userID)
	m.mu.Unlock()
	if m.LoginFunc != nil {
		return m.LoginFunc(userID, password)
	}
	return userID, nil
}

func (m *Mock) UpdateProfile(_ context.Context, update ProfileUpdate) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(update)
	}
	return nil
}

func (m *Mock) GetTickets(_ context.Context, userID string) (int, error) {
	if m.GetTicketsFunc != nil {
		return m.GetTicketsFunc(userID)
	}
	return 0, nil
}

func (m *Mock) SpendTicket(_ context.Context, userID string, eventID int) (SpendResult, error) {
	m.mu.Lock()
	m.SpendTicketCalls = append(m.SpendTicketCalls, SpendTicketCall{UserID: userID, EventID: eventID})
	m.mu.Unlock()
	if m.SpendTicketFunc != nil {
		return m.SpendTicketFunc(userID, eventID)
	}
	return SpendResult{}, nil
}

func (m *Mock) CurrentEvent(ctx context.Context) (Event, error) {
	m.mu.Lock()
	m.CurrentEventCalls++
	m.mu.Unlock()
	if m.CurrentEventFunc != nil {
		return m.CurrentEventFunc(ctx)
	}
	return Event{}, &Error{Kind: KindNotFound, Message: "no active event"}
}

func (m *Mock) CheckParticipation(_ context.Context, userID string, eventID int) (bool, error) {
	m.mu.Lock()
	m.CheckParticipationCalls++
	m.mu.Unlock()
	if m.CheckParticipationFunc != nil {
		return m.CheckParticipationFunc(userID, eventID)
	}
	return false, nil
}

func (m *Mock) HasSubmitted(_ context.Context, userID string, eventID int) (bool, error) {
	m.mu.Lock()
	m.HasSubmittedCalls++
	m.mu.Unlock()
	if m.HasSubmittedFunc != nil {
		return m.HasSubmittedFunc(userID, eventID)
	}
	return false, nil
}

func (m *Mock) SubmitPredictions(_ context.Context, userID string, eventID int, predictions []Prediction) (SubmitResult, error) {
	m.mu.Lock()
	m.SubmitPredictionsCalls = append(m.SubmitPredictionsCalls, SubmitPredictionsCall{UserID: userID, EventID: eventID, Predictions: predictions})
	m.mu.Unlock()
	if m.SubmitPredictionsFunc != nil {
		return m.SubmitPredictionsFunc(userID, eventID, predictions)
	}
	return SubmitResult{}, nil
}

func (m *Mock) UserResults(ctx context.Context, userID string) (UserResults, error) {
	m.mu.Lock()
	m.UserResultsCalls++
	m.mu.Unlock()
	if m.UserResultsFunc != nil {
		return m.UserResultsFunc(ctx, userID)
	}
	return UserResults{}, nil
}

func (m *Mock) Rankings(ctx context.Context, eventID int) ([]RankingEntry, error) {
	m.mu.Lock()
	m.RankingsCalls = append(m.RankingsCalls, eventID)
	m.mu.Unlock()
	if m.RankingsFunc != nil {
		return m.RankingsFunc(ctx, eventID)
	}
	return nil, nil
}

// SubmitCount returns the number of SubmitPredictions calls.
func (m *Mock) SubmitCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SubmitPredictionsCalls)
}

// EventCalls returns the number of CurrentEvent calls.
func (m *Mock) EventCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CurrentEventCalls
}
