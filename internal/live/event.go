package live

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/poller"
	"github.com/mauv0809/quiniela-client/internal/session"
	"github.com/vmihailenco/msgpack/v5"
)

// EventView is what the event feed exposes. Event is nil until a snapshot is
// available; Err is the last fetch error and is cleared by the next success.
type EventView struct {
	Event     *backend.Event
	Err       error
	UpdatedAt time.Time
	// FromCache is true while the snapshot comes from a previous run.
	FromCache bool
}

// Stale reports whether the snapshot is shown despite a failed refresh.
func (v EventView) Stale() bool {
	return v.Event != nil && (v.Err != nil || v.FromCache)
}

// EventFeed polls the current event.
type EventFeed struct {
	feed[EventView]
	client   backend.Client
	session  *session.Session
	interval time.Duration
	opts     []poller.Option
	logger   *log.Logger
}

func NewEventFeed(client backend.Client, sess *session.Session, interval time.Duration, opts ...poller.Option) *EventFeed {
	return &EventFeed{
		client:   client,
		session:  sess,
		interval: interval,
		opts:     append([]poller.Option{poller.WithName("event")}, opts...),
		logger:   log.WithPrefix("event"),
	}
}

// Start restores the cached snapshot, if any, and begins polling.
func (f *EventFeed) Start(ctx context.Context) {
	f.restore()
	f.replacePoller(func() *poller.Poller {
		return poller.Start(ctx, f.client.CurrentEvent, f.apply, f.interval, f.opts...)
	})
}

// Refresh fetches the event once outside the polling cadence.
func (f *EventFeed) Refresh(ctx context.Context) (backend.Event, error) {
	ev, err := f.client.CurrentEvent(ctx)
	f.apply(poller.Result[backend.Event]{Value: ev, Err: err})
	return ev, err
}

func (f *EventFeed) apply(res poller.Result[backend.Event]) {
	if res.Err != nil {
		f.logger.Warn("Failed to fetch current event", "error", res.Err)
		f.update(func(prev EventView) EventView {
			prev.Err = res.Err
			return prev
		})
		return
	}

	ev := res.Value
	if err := SaveSnapshot(f.session, ev); err != nil {
		f.logger.Error("Failed to persist event", "eventID", ev.ID, "error", err)
	}

	f.update(func(prev EventView) EventView {
		if prev.Event != nil && prev.Event.ID != ev.ID {
			f.logger.Info("Active event changed", "from", prev.Event.ID, "to", ev.ID)
		}
		return EventView{Event: &ev, UpdatedAt: time.Now()}
	})
}

func (f *EventFeed) restore() {
	if f.Current().Event != nil {
		return
	}
	raw, ok, err := f.session.EventSnapshot()
	if err != nil {
		f.logger.Warn("Failed to read cached event snapshot", "error", err)
		return
	}
	if !ok {
		return
	}
	var ev backend.Event
	if err := msgpack.Unmarshal(raw, &ev); err != nil {
		f.logger.Warn("Discarding unreadable event snapshot", "error", err)
		return
	}
	f.logger.Debug("Restored cached event snapshot", "eventID", ev.ID)
	f.update(func(prev EventView) EventView {
		if prev.Event != nil {
			return prev
		}
		return EventView{Event: &ev, FromCache: true}
	})
}

// SaveSnapshot records ev as the active event and caches it for the next
// start.
func SaveSnapshot(sess *session.Session, ev backend.Event) error {
	if err := sess.SetActiveEventID(ev.ID); err != nil {
		return fmt.Errorf("persisting active event id: %w", err)
	}
	raw, err := msgpack.Marshal(&ev)
	if err != nil {
		return fmt.Errorf("encoding event snapshot: %w", err)
	}
	if err := sess.SetEventSnapshot(raw); err != nil {
		return fmt.Errorf("caching event snapshot: %w", err)
	}
	return nil
}
