// Package poller runs a fetch function on a fixed cadence and hands every
// outcome to a callback until stopped.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mauv0809/quiniela-client/internal/metrics"
)

// Result is the outcome of one fetch. Exactly one of Value or Err is
// meaningful.
type Result[T any] struct {
	Value T
	Err   error
}

// Poller is a running fetch loop. The zero value is not usable; create one
// with Start.
type Poller struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
	once    sync.Once
}

// Start fetches immediately and then again interval after each fetch has
// been delivered. Fetches never overlap.
//
// onResult runs on the poller goroutine and is never called once Stop has
// returned. It must not call Stop on the same poller; cancel ctx instead.
func Start[T any](ctx context.Context, fetch func(context.Context) (T, error), onResult func(Result[T]), interval time.Duration, opts ...Option) *Poller {
	o := newOptions(opts)
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		defer cancel()

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				o.logger.Debug("Poller stopped", "reason", ctx.Err())
				return
			case <-timer.C:
			}
			if ctx.Err() != nil {
				return
			}

			res := runFetch(ctx, fetch, o.timeout)
			if ctx.Err() != nil {
				// Stopped mid-fetch; the result belongs to nobody.
				return
			}
			record(o, res.Err)
			if !p.deliver(func() { onResult(res) }) {
				return
			}
			timer.Reset(interval)
		}
	}()

	return p
}

// Stop cancels the loop. It is safe to call more than once and from any
// goroutine except inside onResult. After Stop returns no further results
// are delivered.
func (p *Poller) Stop() {
	p.once.Do(func() {
		p.cancel()
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
	})
}

// Done is closed when the poller goroutine has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

func (p *Poller) deliver(fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	fn()
	return true
}

func runFetch[T any](ctx context.Context, fetch func(context.Context) (T, error), timeout time.Duration) (res Result[T]) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Err: fmt.Errorf("fetch panicked: %v", r)}
		}
	}()
	v, err := fetch(ctx)
	if err != nil {
		return Result[T]{Err: err}
	}
	return Result[T]{Value: v}
}

func record(o options, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		o.logger.Debug("Fetch failed", "error", err)
	}
	if o.metrics != nil {
		o.metrics.IncPollerFetch(o.name, outcome)
	}
}
