package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiniela_backend_requests_total",
			Help: "Backend calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiniela_backend_request_duration_seconds",
			Help:    "Latency of backend calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		PollerFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiniela_poller_fetches_total",
			Help: "Fetches performed by each poller, by outcome.",
		}, []string{"poller", "outcome"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiniela_submissions_total",
			Help: "Prediction submit attempts that reached the backend, by outcome.",
		}, []string{"outcome"}),
		GateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiniela_gate_transitions_total",
			Help: "Participation gate state changes, by target state.",
		}, []string{"to"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiniela_notifications_total",
			Help: "Outgoing notifications by kind and outcome.",
		}, []string{"kind", "outcome"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiniela_startup_duration_seconds",
			Help: "The duration of the client startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.BackendRequests,
		s.BackendLatency,
		s.PollerFetches,
		s.Submissions,
		s.GateTransitions,
		s.Notifications,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) ObserveBackendRequest(endpoint, outcome string, seconds float64) {
	s.BackendRequests.WithLabelValues(endpoint, outcome).Inc()
	s.BackendLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (s *Service) IncPollerFetch(poller, outcome string) {
	s.PollerFetches.WithLabelValues(poller, outcome).Inc()
}

func (s *Service) IncSubmission(outcome string) {
	s.Submissions.WithLabelValues(outcome).Inc()
}

func (s *Service) IncGateTransition(to string) {
	s.GateTransitions.WithLabelValues(to).Inc()
}

func (s *Service) IncNotification(kind, outcome string) {
	s.Notifications.WithLabelValues(kind, outcome).Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
