package session

import "time"

// Keys persisted by the session.
const (
	KeyUserID        = "user_id"
	KeyActiveEventID = "active_event_id"
	KeyEventSnapshot = "event_snapshot"
)

// SubmissionOutcome is the local verdict on a submit attempt.
type SubmissionOutcome string

const (
	OutcomeAccepted         SubmissionOutcome = "ACCEPTED"
	OutcomeAlreadySubmitted SubmissionOutcome = "ALREADY_SUBMITTED"
	OutcomeFailed           SubmissionOutcome = "FAILED"
)

// SubmissionRecord is one row of the local submission log.
type SubmissionRecord struct {
	UserID    string
	EventID   int
	Choices   int
	Outcome   SubmissionOutcome
	CreatedAt time.Time
}
