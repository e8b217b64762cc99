package notifier

import (
	"context"

	"github.com/mauv0809/quiniela-client/internal/backend"
)

// Notifier announces visibility changes of the live event to an outside
// channel. This decouples the watcher from the specific provider (e.g., Slack).
type Notifier interface {
	// ResultsReleased is sent when the user's results become visible.
	ResultsReleased(ctx context.Context, summary ResultsSummary) error
	// RankingsReleased is sent when the leaderboard of an event stops being hidden.
	RankingsReleased(ctx context.Context, eventID int, top []backend.RankingEntry) error
	// SubmissionLocked is sent once the user's predictions are locked in.
	SubmissionLocked(ctx context.Context, userID string, event backend.Event) error
}

// ResultsSummary is the aggregate shown in a results notification.
type ResultsSummary struct {
	UserID      string
	EventName   string
	TotalPoints int
	Correct     int
	Decided     int
	Accuracy    float64
}
