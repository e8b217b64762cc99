package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestService_RecordsAndServes(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.ObserveBackendRequest("current-event", OutcomeOK, 0.2)
	svc.ObserveBackendRequest("current-event", OutcomeOK, 0.3)
	svc.IncPollerFetch("rankings", OutcomeError)
	svc.IncSubmission("accepted")
	svc.IncGateTransition("SUBMITTED")
	svc.IncNotification("results_released", OutcomeOK)
	svc.SetStartupTime(1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.BackendRequests.WithLabelValues("current-event", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.PollerFetches.WithLabelValues("rankings", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Submissions.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.GateTransitions.WithLabelValues("SUBMITTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.Notifications.WithLabelValues("results_released", OutcomeOK)))
	assert.Equal(t, 1.5, testutil.ToFloat64(svc.StartupTimeSeconds))

	rec := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "quiniela_poller_fetches_total"))
}
