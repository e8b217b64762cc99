package live

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/poller"
)

// RankingsView is the leaderboard of one event. Hidden is a distinct state
// from Error: the former means an administrator has not released the
// rankings yet.
type RankingsView struct {
	EventID   int
	Status    Status
	Entries   []backend.RankingEntry
	Err       error
	UpdatedAt time.Time
}

// RankingsFeed polls the leaderboard of an explicit event id.
type RankingsFeed struct {
	feed[RankingsView]
	client   backend.Client
	eventID  int
	interval time.Duration
	opts     []poller.Option
	logger   *log.Logger
}

func NewRankingsFeed(client backend.Client, eventID int, interval time.Duration, opts ...poller.Option) *RankingsFeed {
	f := &RankingsFeed{
		client:   client,
		eventID:  eventID,
		interval: interval,
		opts:     append([]poller.Option{poller.WithName("rankings")}, opts...),
		logger:   log.WithPrefix("rankings"),
	}
	f.view.EventID = eventID
	return f
}

func (f *RankingsFeed) Start(ctx context.Context) {
	f.replacePoller(func() *poller.Poller {
		return poller.Start(ctx, f.fetch, func(res poller.Result[[]backend.RankingEntry]) { f.apply(res) }, f.interval, f.opts...)
	})
}

func (f *RankingsFeed) EventID() int {
	return f.eventID
}

// Refresh fetches the leaderboard once outside the polling cadence.
func (f *RankingsFeed) Refresh(ctx context.Context) RankingsView {
	rows, err := f.fetch(ctx)
	return f.apply(poller.Result[[]backend.RankingEntry]{Value: rows, Err: err})
}

func (f *RankingsFeed) fetch(ctx context.Context) ([]backend.RankingEntry, error) {
	return f.client.Rankings(ctx, f.eventID)
}

func (f *RankingsFeed) apply(res poller.Result[[]backend.RankingEntry]) RankingsView {
	switch {
	case backend.IsRankingHidden(res.Err):
		f.logger.Debug("Rankings are hidden", "eventID", f.eventID)
	case res.Err != nil:
		f.logger.Warn("Failed to fetch rankings", "eventID", f.eventID, "error", res.Err)
	}
	return f.update(func(prev RankingsView) RankingsView {
		return nextRankingsView(prev, f.eventID, res)
	})
}

func nextRankingsView(prev RankingsView, eventID int, res poller.Result[[]backend.RankingEntry]) RankingsView {
	now := time.Now()
	switch {
	case backend.IsRankingHidden(res.Err):
		return RankingsView{EventID: eventID, Status: StatusHidden, UpdatedAt: now}
	case res.Err != nil:
		if prev.Status == StatusVisible || prev.Status == StatusHidden {
			prev.Err = res.Err
			return prev
		}
		return RankingsView{EventID: eventID, Status: StatusError, Err: res.Err, UpdatedAt: now}
	}
	return RankingsView{EventID: eventID, Status: StatusVisible, Entries: res.Value, UpdatedAt: now}
}
