package live

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/poller"
	"github.com/mauv0809/quiniela-client/internal/session"
)

// Status is the display state of a visibility-gated feed.
type Status int

const (
	StatusLoading Status = iota
	StatusHidden
	StatusVisible
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusHidden:
		return "hidden"
	case StatusVisible:
		return "visible"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// ResultsView is the user's graded predictions. Entries and the aggregates are
// only set when Status is StatusVisible.
type ResultsView struct {
	Status      Status
	Entries     []backend.ResultEntry
	TotalPoints int
	Correct     int
	Decided     int
	// Accuracy is Correct over Decided, in percent.
	Accuracy  float64
	Err       error
	UpdatedAt time.Time
}

// ResultsFeed polls the logged-in user's results.
type ResultsFeed struct {
	feed[ResultsView]
	client   backend.Client
	session  *session.Session
	interval time.Duration
	opts     []poller.Option
	logger   *log.Logger
}

func NewResultsFeed(client backend.Client, sess *session.Session, interval time.Duration, opts ...poller.Option) *ResultsFeed {
	return &ResultsFeed{
		client:   client,
		session:  sess,
		interval: interval,
		opts:     append([]poller.Option{poller.WithName("results")}, opts...),
		logger:   log.WithPrefix("results"),
	}
}

func (f *ResultsFeed) Start(ctx context.Context) {
	f.replacePoller(func() *poller.Poller {
		return poller.Start(ctx, f.fetch, func(res poller.Result[backend.UserResults]) { f.apply(res) }, f.interval, f.opts...)
	})
}

// Refresh fetches results once outside the polling cadence.
func (f *ResultsFeed) Refresh(ctx context.Context) ResultsView {
	res, err := f.fetch(ctx)
	return f.apply(poller.Result[backend.UserResults]{Value: res, Err: err})
}

func (f *ResultsFeed) fetch(ctx context.Context) (backend.UserResults, error) {
	userID, err := f.session.RequireUserID()
	if err != nil {
		return backend.UserResults{}, err
	}
	return f.client.UserResults(ctx, userID)
}

func (f *ResultsFeed) apply(res poller.Result[backend.UserResults]) ResultsView {
	if res.Err != nil {
		f.logger.Warn("Failed to fetch results", "error", res.Err)
	}
	return f.update(func(prev ResultsView) ResultsView {
		return nextResultsView(prev, res)
	})
}

func nextResultsView(prev ResultsView, res poller.Result[backend.UserResults]) ResultsView {
	if res.Err != nil {
		// Visible data and the hidden gate both survive a failed poll.
		if prev.Status == StatusVisible || prev.Status == StatusHidden {
			prev.Err = res.Err
			return prev
		}
		return ResultsView{Status: StatusError, Err: res.Err, UpdatedAt: time.Now()}
	}

	if !res.Value.Visible {
		// Anything the server sent alongside a hidden flag is discarded.
		return ResultsView{Status: StatusHidden, UpdatedAt: time.Now()}
	}

	view := ResultsView{
		Status:      StatusVisible,
		Entries:     res.Value.Entries,
		TotalPoints: res.Value.TotalPoints,
		UpdatedAt:   time.Now(),
	}
	for _, e := range view.Entries {
		if e.Outcome == "" {
			continue
		}
		view.Decided++
		if e.Correct {
			view.Correct++
		}
	}
	if view.Decided > 0 {
		view.Accuracy = float64(view.Correct) / float64(view.Decided) * 100
	}
	return view
}
