package metrics

// Metrics defines the interface for collecting client metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	ObserveBackendRequest(endpoint, outcome string, seconds float64)
	IncPollerFetch(poller, outcome string)
	IncSubmission(outcome string)
	IncGateTransition(to string)
	IncNotification(kind, outcome string)
	SetStartupTime(duration float64)
}
