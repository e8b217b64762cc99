// Package live keeps the latest server view of the event, the user's results
// and the leaderboard, each refreshed by its own poller.
package live

import (
	"sync"

	"github.com/mauv0809/quiniela-client/internal/poller"
)

// feed holds the current view of one subscription and fans it out to
// listeners. Updates from the poller and from out-of-cadence refreshes are
// applied one at a time and the last one applied wins. Listeners see every
// view in that same order, after it has been replaced, and must not update
// the feed they listen to.
type feed[V any] struct {
	// deliverMu spans replacing the view and notifying listeners.
	deliverMu sync.Mutex
	mu        sync.RWMutex
	view      V
	listeners map[int]func(V)
	nextID    int

	runMu  sync.Mutex
	poller *poller.Poller
}

// Current returns the latest view.
func (f *feed[V]) Current() V {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.view
}

// Subscribe registers fn for every future view and returns a function that
// removes it.
func (f *feed[V]) Subscribe(fn func(V)) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listeners == nil {
		f.listeners = make(map[int]func(V))
	}
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

// update derives the next view from the current one and notifies listeners.
func (f *feed[V]) update(next func(prev V) V) V {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	f.mu.Lock()
	f.view = next(f.view)
	view := f.view
	listeners := make([]func(V), 0, len(f.listeners))
	for _, fn := range f.listeners {
		listeners = append(listeners, fn)
	}
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(view)
	}
	return view
}

// replacePoller stops any running poller and keeps p as the active one.
func (f *feed[V]) replacePoller(start func() *poller.Poller) {
	f.runMu.Lock()
	defer f.runMu.Unlock()
	if f.poller != nil {
		f.poller.Stop()
	}
	f.poller = start()
}

// Stop halts polling. The last view stays readable.
func (f *feed[V]) Stop() {
	f.runMu.Lock()
	defer f.runMu.Unlock()
	if f.poller != nil {
		f.poller.Stop()
		f.poller = nil
	}
}
