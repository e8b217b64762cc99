package session

import "errors"

// ErrNotFound is returned by KeyValue.Get when the key has never been set or
// has been deleted.
var ErrNotFound = errors.New("key not found")

// KeyValue is the persistence capability behind the session. Every operation
// reads or writes a single key atomically.
type KeyValue interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(keys ...string) error
}

// SubmissionLog records submit attempts so a later session can tell what this
// device last did for an event.
type SubmissionLog interface {
	RecordSubmission(rec SubmissionRecord) error
	Submissions(userID string, eventID int) ([]SubmissionRecord, error)
}
