package session

import (
	"errors"
	"fmt"
	"strconv"
)

// Session is the explicit session context handed to the subscriptions and the
// participation gate. It owns the identity token and the last active event id.
type Session struct {
	kv KeyValue
}

// New wraps a key-value store.
func New(kv KeyValue) *Session {
	return &Session{kv: kv}
}

// UserID returns the stored identity. ok is false when nobody is logged in.
func (s *Session) UserID() (userID string, ok bool, err error) {
	v, err := s.kv.Get(KeyUserID)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(v), len(v) > 0, nil
}

// RequireUserID is UserID for callers that cannot proceed anonymously.
func (s *Session) RequireUserID() (string, error) {
	id, ok, err := s.UserID()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotLoggedIn
	}
	return id, nil
}

func (s *Session) SetUserID(userID string) error {
	return s.kv.Set(KeyUserID, []byte(userID))
}

// ActiveEventID returns the id of the last event seen by the event feed.
func (s *Session) ActiveEventID() (id int, ok bool, err error) {
	v, err := s.kv.Get(KeyActiveEventID)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err = strconv.Atoi(string(v))
	if err != nil {
		return 0, false, fmt.Errorf("stored event id %q is not a number: %w", v, err)
	}
	return id, true, nil
}

func (s *Session) SetActiveEventID(id int) error {
	return s.kv.Set(KeyActiveEventID, []byte(strconv.Itoa(id)))
}

// EventSnapshot returns the raw cached event snapshot, if any.
func (s *Session) EventSnapshot() ([]byte, bool, error) {
	v, err := s.kv.Get(KeyEventSnapshot)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *Session) SetEventSnapshot(raw []byte) error {
	return s.kv.Set(KeyEventSnapshot, raw)
}

// Clear erases everything written on behalf of the logged-in user.
func (s *Session) Clear() error {
	return s.kv.Delete(KeyUserID, KeyActiveEventID, KeyEventSnapshot)
}

// ErrNotLoggedIn is returned when an authenticated call has no identity.
var ErrNotLoggedIn = errors.New("not logged in")
