package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/quiniela-client/internal/app"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWatcher struct {
	snapshot     app.Snapshot
	refreshErr   error
	refreshCalls int
}

func (s *stubWatcher) Snapshot() app.Snapshot { return s.snapshot }

func (s *stubWatcher) Refresh(context.Context) error {
	s.refreshCalls++
	return s.refreshErr
}

func setupTestServer(t *testing.T, w *stubWatcher) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc := metrics.NewService(reg)
	svc.IncPollerFetch("event", metrics.OutcomeOK)
	return NewServer(w, metrics.NewMetricsHandler(reg))
}

func TestHealthCheckHandler(t *testing.T) {
	server := setupTestServer(t, &stubWatcher{})

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestStatusHandler(t *testing.T) {
	tickets := 2
	w := &stubWatcher{snapshot: app.Snapshot{
		UserID: "u1",
		Event:  &app.EventSummary{ID: 7, Name: "Derby", Matches: 3},
		Participation: app.ParticipationSummary{
			EventID: 7,
			Status:  "participating_unsubmitted",
			Tickets: &tickets,
		},
		Results: app.ResultsSummary{Status: "hidden"},
		Rankings: &app.RankingsSummary{
			EventID: 7,
			Status:  "visible",
			Entries: []backend.RankingEntry{{User: "ana", Points: 9}},
		},
	}}
	server := setupTestServer(t, w)

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["user_id"])
	assert.Equal(t, "participating_unsubmitted", body["participation"].(map[string]any)["status"])
	assert.Equal(t, float64(2), body["participation"].(map[string]any)["tickets"])
	assert.Equal(t, "hidden", body["results"].(map[string]any)["status"])
	rankings := body["rankings"].(map[string]any)
	assert.Equal(t, "ana", rankings["entries"].([]any)[0].(map[string]any)["user"])
}

func TestRefreshHandler(t *testing.T) {
	t.Run("rejects GET", func(t *testing.T) {
		w := &stubWatcher{}
		server := setupTestServer(t, w)

		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/refresh", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		assert.Zero(t, w.refreshCalls)
	})

	t.Run("returns fresh snapshot", func(t *testing.T) {
		w := &stubWatcher{snapshot: app.Snapshot{UserID: "u1"}}
		server := setupTestServer(t, w)

		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/refresh", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, w.refreshCalls)
		assert.Contains(t, rr.Body.String(), `"user_id":"u1"`)
	})

	t.Run("maps backend errors", func(t *testing.T) {
		w := &stubWatcher{refreshErr: &backend.Error{Kind: backend.KindNotFound, Message: "No hay evento activo."}}
		server := setupTestServer(t, w)

		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/refresh", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "No hay evento activo.")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, &stubWatcher{})

	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `quiniela_poller_fetches_total{outcome="ok",poller="event"} 1`)
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "handler"}, order)
}
