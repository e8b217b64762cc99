package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the client.
type Service struct {
	BackendRequests    *prometheus.CounterVec
	BackendLatency     *prometheus.HistogramVec
	PollerFetches      *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	GateTransitions    *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	StartupTimeSeconds prometheus.Gauge
}

// Outcome labels shared by the instrumented components.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
