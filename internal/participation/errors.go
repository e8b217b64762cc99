package participation

import "errors"

var (
	ErrLocked           = errors.New("predictions are locked: this event was already submitted")
	ErrNotParticipating = errors.New("not participating in this event")
	ErrAlreadyJoined    = errors.New("already participating in this event")
	ErrStatusUnknown    = errors.New("participation status unknown, refresh first")
	ErrNoTickets        = errors.New("no tickets available")
	ErrNoChoices        = errors.New("choose at least one prediction before submitting")
	ErrNotConfirmed     = errors.New("partial submission was not confirmed")
	ErrUnknownMatch     = errors.New("match is not part of the current event")
	ErrInvalidSide      = errors.New("invalid side")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrEventChanged     = errors.New("the active event changed")
)
