package app

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/live"
	"github.com/mauv0809/quiniela-client/internal/notifier"
	"github.com/mauv0809/quiniela-client/internal/participation"
)

// ErrAlreadyWatching is returned by Watch when the feeds are already running.
var ErrAlreadyWatching = errors.New("already watching")

type watchState struct {
	cancel context.CancelFunc
	unsubs []func()

	mu             sync.Mutex
	resultsStatus  live.Status
	rankingsStatus live.Status
}

// Watch runs the event, results and rankings feeds until ctx is cancelled or
// StopWatching is called. Every fresh event snapshot re-derives the
// participation gate, and the rankings feed follows the active event.
func (a *App) Watch(ctx context.Context) error {
	a.mu.Lock()
	if a.watch != nil {
		a.mu.Unlock()
		return ErrAlreadyWatching
	}
	ctx, cancel := context.WithCancel(ctx)
	w := &watchState{cancel: cancel}
	a.watch = w
	a.mu.Unlock()

	w.unsubs = append(w.unsubs,
		a.Events.Subscribe(func(v live.EventView) { a.onEvent(ctx, v) }),
		a.Results.Subscribe(func(v live.ResultsView) { a.onResults(ctx, w, v) }),
	)

	if id, ok, err := a.Session.ActiveEventID(); err != nil {
		log.Warn("Could not read the last active event", "error", err)
	} else if ok {
		a.followRankings(ctx, id)
	}

	a.Events.Start(ctx)
	a.Results.Start(ctx)
	log.Info("Watching live event",
		"event", a.Config.EventPollInterval,
		"results", a.Config.ResultsPollInterval,
		"rankings", a.Config.RankingsPollInterval)
	return nil
}

// StopWatching stops every feed. It is safe to call when not watching.
func (a *App) StopWatching() {
	a.mu.Lock()
	w := a.watch
	a.watch = nil
	a.mu.Unlock()
	if w == nil {
		return
	}

	w.cancel()
	for _, unsub := range w.unsubs {
		unsub()
	}
	a.Events.Stop()
	a.Results.Stop()

	a.mu.Lock()
	rankings := a.rankings
	a.rankings = nil
	a.mu.Unlock()
	if rankings != nil {
		rankings.Stop()
	}
}

// CurrentRankings returns the feed following the active event, if any.
func (a *App) CurrentRankings() *live.RankingsFeed {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rankings
}

func (a *App) onEvent(ctx context.Context, v live.EventView) {
	if v.Event == nil || v.Err != nil || v.FromCache {
		return
	}
	eventID := v.Event.ID
	a.followRankings(ctx, eventID)

	if _, ok, err := a.Session.UserID(); err != nil || !ok {
		return
	}
	prev := a.Gate.StatusFor(eventID)
	status, err := a.Gate.Refresh(ctx, eventID)
	if err != nil {
		log.Warn("Could not re-derive participation", "eventID", eventID, "error", err)
		return
	}
	if prev == participation.StatusParticipatingUnsubmitted && status == participation.StatusSubmitted && a.Notifier != nil {
		userID, _, _ := a.Session.UserID()
		if err := a.Notifier.SubmissionLocked(ctx, userID, *v.Event); err != nil {
			log.Warn("Submission notification failed", "error", err)
		}
	}
}

func (a *App) onResults(ctx context.Context, w *watchState, v live.ResultsView) {
	w.mu.Lock()
	prev := w.resultsStatus
	w.resultsStatus = v.Status
	w.mu.Unlock()

	if prev != live.StatusHidden || v.Status != live.StatusVisible || a.Notifier == nil {
		return
	}
	userID, _, _ := a.Session.UserID()
	summary := notifier.ResultsSummary{
		UserID:      userID,
		TotalPoints: v.TotalPoints,
		Correct:     v.Correct,
		Decided:     v.Decided,
		Accuracy:    v.Accuracy,
	}
	if ev := a.Events.Current().Event; ev != nil {
		summary.EventName = ev.Name
	}
	if err := a.Notifier.ResultsReleased(ctx, summary); err != nil {
		log.Warn("Results notification failed", "error", err)
	}
}

func (a *App) onRankings(ctx context.Context, w *watchState, v live.RankingsView) {
	w.mu.Lock()
	prev := w.rankingsStatus
	w.rankingsStatus = v.Status
	w.mu.Unlock()

	if prev != live.StatusHidden || v.Status != live.StatusVisible || a.Notifier == nil {
		return
	}
	if err := a.Notifier.RankingsReleased(ctx, v.EventID, v.Entries); err != nil {
		log.Warn("Rankings notification failed", "error", err)
	}
}

// followRankings points the rankings feed at eventID, replacing the feed of
// a previous event.
func (a *App) followRankings(ctx context.Context, eventID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w := a.watch
	if w == nil || ctx.Err() != nil {
		return
	}
	if a.rankings != nil {
		if a.rankings.EventID() == eventID {
			return
		}
		log.Info("Rankings now follow a new event", "from", a.rankings.EventID(), "to", eventID)
		a.rankings.Stop()
	}

	w.mu.Lock()
	w.rankingsStatus = live.StatusLoading
	w.mu.Unlock()

	feed := a.Rankings(eventID)
	feed.Subscribe(func(v live.RankingsView) { a.onRankings(ctx, w, v) })
	feed.Start(ctx)
	a.rankings = feed
}
