// Package app wires the client together from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/auth"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/config"
	"github.com/mauv0809/quiniela-client/internal/database"
	"github.com/mauv0809/quiniela-client/internal/live"
	"github.com/mauv0809/quiniela-client/internal/metrics"
	"github.com/mauv0809/quiniela-client/internal/notifier"
	"github.com/mauv0809/quiniela-client/internal/notifier/slack"
	"github.com/mauv0809/quiniela-client/internal/participation"
	"github.com/mauv0809/quiniela-client/internal/poller"
	"github.com/mauv0809/quiniela-client/internal/session"
)

// Store is the local persistence the app needs.
type Store interface {
	session.KeyValue
	session.SubmissionLog
}

// App holds every long-lived component of the client.
type App struct {
	Config   config.Config
	Client   backend.Client
	Session  *session.Session
	Store    Store
	Metrics  metrics.Metrics
	Notifier notifier.Notifier
	Auth     *auth.Service
	Gate     *participation.Gate
	Events   *live.EventFeed
	Results  *live.ResultsFeed

	mu       sync.Mutex
	rankings *live.RankingsFeed
	watch    *watchState
	closeDB  func()
}

// New opens the session database and builds the app from cfg.
func New(cfg config.Config, m metrics.Metrics) (*App, error) {
	db, closeDB, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	var n notifier.Notifier
	if cfg.Slack.Enabled() {
		n = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, m)
	} else {
		log.Debug("Slack notifications disabled")
	}

	client := backend.NewClient(cfg.BaseURL, cfg.RequestTimeout, m)
	a := NewWithDeps(cfg, client, session.NewStore(db), m, n)
	a.closeDB = closeDB
	return a, nil
}

// NewWithDeps builds the app around already constructed collaborators.
// n may be nil.
func NewWithDeps(cfg config.Config, client backend.Client, store Store, m metrics.Metrics, n notifier.Notifier) *App {
	sess := session.New(store)
	a := &App{
		Config:   cfg,
		Client:   client,
		Session:  sess,
		Store:    store,
		Metrics:  m,
		Notifier: n,
		Auth:     auth.NewService(client, sess),
		Gate:     participation.NewGate(client, sess, m),
	}
	a.Events = live.NewEventFeed(client, sess, cfg.EventPollInterval, a.pollerOptions()...)
	a.Results = live.NewResultsFeed(client, sess, cfg.ResultsPollInterval, a.pollerOptions()...)
	return a
}

// Close stops every feed and releases the database.
func (a *App) Close() {
	a.StopWatching()
	if a.closeDB != nil {
		a.closeDB()
	}
}

// Logout clears the session and forgets derived state.
func (a *App) Logout() error {
	if err := a.Auth.Logout(); err != nil {
		return err
	}
	a.Gate.Reset()
	return nil
}

// Rankings returns a feed for eventID. The feed is not started.
func (a *App) Rankings(eventID int) *live.RankingsFeed {
	return live.NewRankingsFeed(a.Client, eventID, a.Config.RankingsPollInterval, a.pollerOptions()...)
}

// RankingsEventID picks the event a leaderboard should show: the explicit id
// if given, otherwise the last active event persisted by the event feed.
func (a *App) RankingsEventID(explicit int) (int, error) {
	if explicit > 0 {
		return explicit, nil
	}
	id, ok, err := a.Session.ActiveEventID()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNoKnownEvent
	}
	return id, nil
}

// Focus is what a screen does when it gains focus: fetch the current event
// and re-derive participation from the backend.
func (a *App) Focus(ctx context.Context) (backend.Event, participation.Status, error) {
	ev, err := a.Events.Refresh(ctx)
	if err != nil {
		return backend.Event{}, participation.StatusUnknown, err
	}
	status, err := a.Gate.Refresh(ctx, ev.ID)
	return ev, status, err
}

// Prediction opens a prediction session for the current event. Until release
// is called the session follows every fresh snapshot of the event feed.
func (a *App) Prediction(ctx context.Context) (p *participation.PredictionSession, release func(), err error) {
	ev, status, err := a.Focus(ctx)
	if err != nil {
		return nil, nil, err
	}
	switch status {
	case participation.StatusSubmitted:
		return nil, nil, participation.ErrLocked
	case participation.StatusParticipatingUnsubmitted:
	default:
		return nil, nil, participation.ErrNotParticipating
	}

	p = participation.NewPredictionSession(a.Gate, a.Store, ev)
	release = a.Events.Subscribe(func(v live.EventView) {
		if v.Event == nil || v.Err != nil || v.FromCache {
			return
		}
		p.UpdateEvent(*v.Event)
	})
	return p, release, nil
}

// Submissions lists the submit attempts this device made for eventID, oldest
// first.
func (a *App) Submissions(eventID int) ([]session.SubmissionRecord, error) {
	userID, err := a.Session.RequireUserID()
	if err != nil {
		return nil, err
	}
	return a.Store.Submissions(userID, eventID)
}

func (a *App) pollerOptions() []poller.Option {
	return []poller.Option{poller.WithMetrics(a.Metrics), poller.WithTimeout(a.Config.RequestTimeout)}
}

// ErrNoKnownEvent is returned when no event id is given and none was seen.
var ErrNoKnownEvent = errors.New("no event id given and no active event seen yet")
