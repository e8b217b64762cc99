package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu              sync.Mutex
	backendRequests map[string]int
	pollerFetches   map[string]int
	submissions     map[string]int
	gateTransitions map[string]int
	notifications   map[string]int
	startupTime     float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		backendRequests: make(map[string]int),
		pollerFetches:   make(map[string]int),
		submissions:     make(map[string]int),
		gateTransitions: make(map[string]int),
		notifications:   make(map[string]int),
	}
}

func (m *Mock) ObserveBackendRequest(endpoint, outcome string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backendRequests[endpoint+"/"+outcome]++
}

func (m *Mock) IncPollerFetch(poller, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollerFetches[poller+"/"+outcome]++
}

func (m *Mock) IncSubmission(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[outcome]++
}

func (m *Mock) IncGateTransition(to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gateTransitions[to]++
}

func (m *Mock) IncNotification(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[kind+"/"+outcome]++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// BackendRequests returns how many requests to endpoint ended with outcome.
func (m *Mock) BackendRequests(endpoint, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backendRequests[endpoint+"/"+outcome]
}

// PollerFetches returns how many fetches the named poller completed with outcome.
func (m *Mock) PollerFetches(poller, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pollerFetches[poller+"/"+outcome]
}

// Submissions returns the number of submit attempts recorded with outcome.
func (m *Mock) Submissions(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submissions[outcome]
}

// GateTransitions returns the number of transitions into the given state.
func (m *Mock) GateTransitions(to string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gateTransitions[to]
}

// Notifications returns how many notifications of kind ended with outcome.
func (m *Mock) Notifications(kind, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifications[kind+"/"+outcome]
}
