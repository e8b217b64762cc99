// Package participation decides what the user may do in the live event and
// owns the one-time prediction submission.
package participation

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/metrics"
	"github.com/mauv0809/quiniela-client/internal/session"
)

// Status is the participation state of the user in one event.
type Status int

const (
	StatusUnknown Status = iota
	StatusNotParticipating
	StatusParticipatingUnsubmitted
	StatusSubmitted
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusNotParticipating:
		return "not_participating"
	case StatusParticipatingUnsubmitted:
		return "participating_unsubmitted"
	case StatusSubmitted:
		return "submitted"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// GateView is a point-in-time copy of the gate.
type GateView struct {
	EventID      int
	Status       Status
	Tickets      int
	TicketsKnown bool
	// Err is the error of the last refresh, nil if it succeeded.
	Err error
}

// Gate derives the participation status from the backend. Within one event
// the status only moves forward; a different event id starts over from
// StatusUnknown.
type Gate struct {
	client  backend.Client
	session *session.Session
	metrics metrics.Metrics

	// op serializes the operations that talk to the backend.
	op sync.Mutex

	mu           sync.RWMutex
	eventID      int
	status       Status
	tickets      int
	ticketsKnown bool
	lastErr      error
}

func NewGate(client backend.Client, sess *session.Session, m metrics.Metrics) *Gate {
	return &Gate{client: client, session: sess, metrics: m}
}

func (g *Gate) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.status
}

func (g *Gate) EventID() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.eventID
}

// StatusFor returns the status if the gate is tracking eventID, and
// StatusUnknown otherwise.
func (g *Gate) StatusFor(eventID int) Status {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.eventID != eventID {
		return StatusUnknown
	}
	return g.status
}

func (g *Gate) View() GateView {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return GateView{
		EventID:      g.eventID,
		Status:       g.status,
		Tickets:      g.tickets,
		TicketsKnown: g.ticketsKnown,
		Err:          g.lastErr,
	}
}

// Tickets returns the last known ticket balance.
func (g *Gate) Tickets() (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tickets, g.ticketsKnown
}

// Refresh re-derives the status for eventID from the backend. It must be
// called whenever the user comes back to the event, since a submission may
// have happened elsewhere. On failure the previous status is kept and the
// error returned.
func (g *Gate) Refresh(ctx context.Context, eventID int) (Status, error) {
	g.op.Lock()
	defer g.op.Unlock()

	g.mu.Lock()
	if g.eventID != eventID {
		if g.eventID != 0 {
			log.Info("Tracking a new event", "from", g.eventID, "to", eventID)
		}
		g.eventID = eventID
		g.setStatusLocked(StatusUnknown)
	}
	g.mu.Unlock()

	userID, err := g.session.RequireUserID()
	if err != nil {
		return g.fail(err)
	}

	participated, err := g.client.CheckParticipation(ctx, userID, eventID)
	if err != nil {
		return g.fail(fmt.Errorf("checking participation: %w", err))
	}

	next := StatusNotParticipating
	if participated {
		submitted, err := g.client.HasSubmitted(ctx, userID, eventID)
		if err != nil {
			return g.fail(fmt.Errorf("checking submission status: %w", err))
		}
		next = StatusParticipatingUnsubmitted
		if submitted {
			next = StatusSubmitted
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastErr = nil
	if next < g.status {
		log.Warn("Backend reported an earlier participation state, keeping the local one",
			"eventID", eventID, "local", g.status, "backend", next)
		return g.status, nil
	}
	g.setStatusLocked(next)
	return g.status, nil
}

// RefreshTickets fetches the ticket balance.
func (g *Gate) RefreshTickets(ctx context.Context) (int, error) {
	g.op.Lock()
	defer g.op.Unlock()
	return g.refreshTicketsLocked(ctx)
}

func (g *Gate) refreshTicketsLocked(ctx context.Context) (int, error) {
	userID, err := g.session.RequireUserID()
	if err != nil {
		return 0, err
	}
	n, err := g.client.GetTickets(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("fetching tickets: %w", err)
	}
	g.mu.Lock()
	g.tickets, g.ticketsKnown = n, true
	g.mu.Unlock()
	return n, nil
}

// SpendTicket enters the tracked event. The local balance is only a guard;
// a refusal from the backend leaves the status untouched.
func (g *Gate) SpendTicket(ctx context.Context) error {
	g.op.Lock()
	defer g.op.Unlock()

	g.mu.RLock()
	status, eventID, known, tickets := g.status, g.eventID, g.ticketsKnown, g.tickets
	g.mu.RUnlock()

	switch status {
	case StatusUnknown:
		return ErrStatusUnknown
	case StatusParticipatingUnsubmitted, StatusSubmitted:
		return ErrAlreadyJoined
	}

	if !known {
		n, err := g.refreshTicketsLocked(ctx)
		if err != nil {
			return err
		}
		tickets = n
	}
	if tickets <= 0 {
		return ErrNoTickets
	}

	userID, err := g.session.RequireUserID()
	if err != nil {
		return err
	}
	res, err := g.client.SpendTicket(ctx, userID, eventID)
	if err != nil {
		log.Warn("Ticket spend refused", "eventID", eventID, "error", err)
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.eventID != eventID {
		return ErrEventChanged
	}
	if res.Remaining != nil {
		g.tickets = *res.Remaining
	} else if g.tickets > 0 {
		g.tickets--
	}
	g.ticketsKnown = true
	if g.status < StatusParticipatingUnsubmitted {
		g.setStatusLocked(StatusParticipatingUnsubmitted)
	}
	return nil
}

// Reset forgets everything, for example after logout.
func (g *Gate) Reset() {
	g.op.Lock()
	defer g.op.Unlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.eventID, g.status = 0, StatusUnknown
	g.tickets, g.ticketsKnown = 0, false
	g.lastErr = nil
}

// markSubmitted is the only way besides Refresh to reach StatusSubmitted.
func (g *Gate) markSubmitted(eventID int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.eventID != eventID {
		return
	}
	g.setStatusLocked(StatusSubmitted)
}

func (g *Gate) fail(err error) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastErr = err
	return g.status, err
}

func (g *Gate) setStatusLocked(next Status) {
	if g.status == next {
		return
	}
	log.Debug("Participation status changed", "eventID", g.eventID, "from", g.status, "to", next)
	g.status = next
	if g.metrics != nil {
		g.metrics.IncGateTransition(next.String())
	}
}
