package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordSignup(ResultSuccess)
	m.RecordLogin(ResultFailure)
	m.RecordLogin(ResultFailure)
	m.RecordScore("walls")
	m.RecordPanic("/api/leaderboard")
	m.ObserveRequest(http.MethodGet, "/api/leaderboard", http.StatusOK, 0.01)

	assert.InDelta(t, 1, testutil.ToFloat64(m.SignupsTotal.WithLabelValues(ResultSuccess)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.LoginsTotal.WithLabelValues(ResultFailure)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ScoresTotal.WithLabelValues("walls")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PanicsTotal.WithLabelValues("/api/leaderboard")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/leaderboard", "OK")), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSignup(ResultSuccess)
		m.RecordLogin(ResultError)
		m.RecordScore("walls")
		m.RecordPanic("/")
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, 0)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)
	m.RecordScore("pass-through")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `snake_scores_submitted_total{mode="pass-through"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
