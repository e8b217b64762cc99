package participation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/session"
)

// ConfirmFunc is asked before a partial submission. Returning false aborts it.
type ConfirmFunc func(chosen, total int) bool

// Progress is the "n / m predictions" counter.
type Progress struct {
	Chosen int
	Total  int
}

// Complete reports whether every match has a choice.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Chosen >= p.Total
}

// PredictionSession collects the user's choices for one event and submits them
// once.
type PredictionSession struct {
	gate        *Gate
	submissions session.SubmissionLog

	mu         sync.Mutex
	event      backend.Event
	choices    map[int]backend.Side
	submitting bool
}

// NewPredictionSession starts an empty session for event. submissions may be
// nil.
func NewPredictionSession(gate *Gate, submissions session.SubmissionLog, event backend.Event) *PredictionSession {
	return &PredictionSession{
		gate:        gate,
		submissions: submissions,
		event:       event,
		choices:     make(map[int]backend.Side),
	}
}

// SetChoice records side for matchID, replacing any earlier choice.
func (p *PredictionSession) SetChoice(matchID int, side backend.Side) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gate.StatusFor(p.event.ID) == StatusSubmitted {
		log.Warn("Predictions already submitted, ignoring choice", "eventID", p.event.ID, "matchID", matchID)
		return ErrLocked
	}
	if !side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if _, ok := p.event.Match(matchID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMatch, matchID)
	}
	p.choices[matchID] = side
	return nil
}

// Choices returns a copy of the recorded choices.
func (p *PredictionSession) Choices() map[int]backend.Side {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[int]backend.Side, len(p.choices))
	for k, v := range p.choices {
		out[k] = v
	}
	return out
}

func (p *PredictionSession) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Progress{Chosen: len(p.choices), Total: p.event.MatchCount()}
}

// NeedsConfirmation reports whether a submit now would be partial.
func (p *PredictionSession) NeedsConfirmation() bool {
	return !p.Progress().Complete()
}

func (p *PredictionSession) Event() backend.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.event
}

// UpdateEvent swaps in a newer snapshot. Choices survive when the event id is
// the same, minus any match that disappeared; a different event starts empty.
func (p *PredictionSession) UpdateEvent(ev backend.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.ID != p.event.ID {
		p.choices = make(map[int]backend.Side)
	} else {
		for id := range p.choices {
			if _, ok := ev.Match(id); !ok {
				delete(p.choices, id)
			}
		}
	}
	p.event = ev
}

// Submit sends the recorded choices. A partial set needs confirm to agree.
// If the backend reports that a submission already exists the session is
// locked anyway and the backend error is returned.
func (p *PredictionSession) Submit(ctx context.Context, confirm ConfirmFunc) (backend.SubmitResult, error) {
	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		return backend.SubmitResult{}, ErrSubmitInProgress
	}
	eventID := p.event.ID
	switch p.gate.StatusFor(eventID) {
	case StatusSubmitted:
		p.mu.Unlock()
		return backend.SubmitResult{}, ErrLocked
	case StatusParticipatingUnsubmitted:
	default:
		p.mu.Unlock()
		return backend.SubmitResult{}, ErrNotParticipating
	}
	if len(p.choices) == 0 {
		p.mu.Unlock()
		return backend.SubmitResult{}, ErrNoChoices
	}
	predictions := p.predictionsLocked()
	total := p.event.MatchCount()
	p.submitting = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.submitting = false
		p.mu.Unlock()
	}()

	if len(predictions) < total && (confirm == nil || !confirm(len(predictions), total)) {
		return backend.SubmitResult{}, ErrNotConfirmed
	}

	userID, err := p.gate.session.RequireUserID()
	if err != nil {
		return backend.SubmitResult{}, err
	}

	log.Info("Submitting predictions", "eventID", eventID, "chosen", len(predictions), "total", total)
	res, err := p.gate.client.SubmitPredictions(ctx, userID, eventID, predictions)

	outcome := session.OutcomeAccepted
	switch {
	case err == nil:
		p.lock(eventID)
	case backend.IsAlreadySubmitted(err):
		log.Warn("Backend already holds a submission for this event, locking", "eventID", eventID)
		outcome = session.OutcomeAlreadySubmitted
		p.lock(eventID)
	default:
		outcome = session.OutcomeFailed
	}
	p.record(userID, eventID, len(predictions), outcome)

	if err != nil {
		return backend.SubmitResult{}, err
	}
	return res, nil
}

func (p *PredictionSession) lock(eventID int) {
	p.gate.markSubmitted(eventID)
	p.mu.Lock()
	p.choices = make(map[int]backend.Side)
	p.mu.Unlock()
}

func (p *PredictionSession) record(userID string, eventID, chosen int, outcome session.SubmissionOutcome) {
	if p.gate.metrics != nil {
		p.gate.metrics.IncSubmission(string(outcome))
	}
	if p.submissions == nil {
		return
	}
	err := p.submissions.RecordSubmission(session.SubmissionRecord{
		UserID:    userID,
		EventID:   eventID,
		Choices:   chosen,
		Outcome:   outcome,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Error("Failed to record submission", "eventID", eventID, "error", err)
	}
}

// predictionsLocked lists the choices in event order.
func (p *PredictionSession) predictionsLocked() []backend.Prediction {
	out := make([]backend.Prediction, 0, len(p.choices))
	for _, r := range p.event.Rounds {
		for _, m := range r.Matches {
			if side, ok := p.choices[m.ID]; ok {
				out = append(out, backend.Prediction{MatchID: m.ID, Choice: side})
			}
		}
	}
	return out
}
