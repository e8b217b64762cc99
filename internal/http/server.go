package http

import (
	"net/http"
)

func NewServer(watcher Watcher, metricsHandler http.Handler) *Server {
	server := &Server{
		Watcher:        watcher,
		MetricsHandler: metricsHandler,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/status", Chain(s.StatusHandler(), paramsMiddleware))
	s.Router.Handle("/refresh", Chain(s.RefreshHandler(), paramsMiddleware, postOnly))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
