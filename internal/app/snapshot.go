package app

import (
	"context"
	"time"

	"github.com/mauv0809/quiniela-client/internal/backend"
)

// Snapshot is the JSON view of everything the watcher knows.
type Snapshot struct {
	UserID        string               `json:"user_id,omitempty"`
	Event         *EventSummary        `json:"event,omitempty"`
	EventError    string               `json:"event_error,omitempty"`
	EventStale    bool                 `json:"event_stale"`
	Participation ParticipationSummary `json:"participation"`
	Results       ResultsSummary       `json:"results"`
	Rankings      *RankingsSummary     `json:"rankings,omitempty"`
}

type EventSummary struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date,omitempty"`
	Location  string    `json:"location,omitempty"`
	Matches   int       `json:"matches"`
	Decided   int       `json:"decided"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type ParticipationSummary struct {
	EventID int    `json:"event_id,omitempty"`
	Status  string `json:"status"`
	Tickets *int   `json:"tickets,omitempty"`
	Error   string `json:"error,omitempty"`
}

type ResultsSummary struct {
	Status      string  `json:"status"`
	Entries     int     `json:"entries"`
	TotalPoints int     `json:"total_points"`
	Correct     int     `json:"correct"`
	Decided     int     `json:"decided"`
	Accuracy    float64 `json:"accuracy"`
	Error       string  `json:"error,omitempty"`
}

type RankingsSummary struct {
	EventID int                    `json:"event_id"`
	Status  string                 `json:"status"`
	Entries []backend.RankingEntry `json:"entries,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Snapshot collects the current view of every component.
func (a *App) Snapshot() Snapshot {
	var s Snapshot
	s.UserID, _, _ = a.Session.UserID()

	ev := a.Events.Current()
	if ev.Event != nil {
		s.Event = &EventSummary{
			ID:        ev.Event.ID,
			Name:      ev.Event.Name,
			Date:      ev.Event.Date,
			Location:  ev.Event.Location,
			Matches:   ev.Event.MatchCount(),
			UpdatedAt: ev.UpdatedAt,
		}
		for _, r := range ev.Event.Rounds {
			for _, m := range r.Matches {
				if m.Decided() {
					s.Event.Decided++
				}
			}
		}
	}
	s.EventError = errString(ev.Err)
	s.EventStale = ev.Stale()

	gate := a.Gate.View()
	s.Participation = ParticipationSummary{
		EventID: gate.EventID,
		Status:  gate.Status.String(),
		Error:   errString(gate.Err),
	}
	if gate.TicketsKnown {
		tickets := gate.Tickets
		s.Participation.Tickets = &tickets
	}

	res := a.Results.Current()
	s.Results = ResultsSummary{
		Status:      res.Status.String(),
		Entries:     len(res.Entries),
		TotalPoints: res.TotalPoints,
		Correct:     res.Correct,
		Decided:     res.Decided,
		Accuracy:    res.Accuracy,
		Error:       errString(res.Err),
	}

	if feed := a.CurrentRankings(); feed != nil {
		rk := feed.Current()
		s.Rankings = &RankingsSummary{
			EventID: rk.EventID,
			Status:  rk.Status.String(),
			Entries: rk.Entries,
			Error:   errString(rk.Err),
		}
	}
	return s
}

// Refresh re-fetches everything once outside the polling cadence.
func (a *App) Refresh(ctx context.Context) error {
	ev, err := a.Events.Refresh(ctx)
	if err != nil {
		return err
	}
	if _, ok, _ := a.Session.UserID(); ok {
		if _, err := a.Gate.Refresh(ctx, ev.ID); err != nil {
			return err
		}
		if _, err := a.Gate.RefreshTickets(ctx); err != nil {
			return err
		}
		a.Results.Refresh(ctx)
	}
	if feed := a.CurrentRankings(); feed != nil {
		feed.Refresh(ctx)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return backend.UserMessage(err)
}
