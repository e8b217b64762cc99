package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/backend"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// StatusHandler serves the watcher snapshot as JSON.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Watcher.Snapshot())
	}
}

// RefreshHandler re-fetches everything once and returns the new snapshot.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Manual refresh requested")
		if err := s.Watcher.Refresh(r.Context()); err != nil {
			log.Warn("Manual refresh failed", "error", err)
			writeJSON(w, statusFor(err), map[string]string{"error": backend.UserMessage(err)})
			return
		}
		writeJSON(w, http.StatusOK, s.Watcher.Snapshot())
	}
}

func statusFor(err error) int {
	switch backend.KindOf(err) {
	case backend.KindNotFound:
		return http.StatusNotFound
	case backend.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
