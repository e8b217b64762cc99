package backend

import "context"

// Client defines the operations the app needs from the Quiniela backend.
// This allows for mock implementations to be used in tests.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (string, error)
	Login(ctx context.Context, userID, password string) (string, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) error

	GetTickets(ctx context.Context, userID string) (int, error)
	SpendTicket(ctx context.Context, userID string, eventID int) (SpendResult, error)

	CurrentEvent(ctx context.Context) (Event, error)
	CheckParticipation(ctx context.Context, userID string, eventID int) (bool, error)
	HasSubmitted(ctx context.Context, userID string, eventID int) (bool, error)
	SubmitPredictions(ctx context.Context, userID string, eventID int, predictions []Prediction) (SubmitResult, error)

	UserResults(ctx context.Context, userID string) (UserResults, error)
	Rankings(ctx context.Context, eventID int) ([]RankingEntry, error)
}
