package http

import (
	"context"
	"net/http"

	"github.com/mauv0809/quiniela-client/internal/app"
)

// Watcher is what the status server reports on.
type Watcher interface {
	Snapshot() app.Snapshot
	Refresh(ctx context.Context) error
}

type Server struct {
	Watcher        Watcher
	MetricsHandler http.Handler
	Router         *http.ServeMux
}
