package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/snakegame-go/internal/metrics"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func statusHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("body"))
	})
}

func TestLoggingLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			logger, buf := captureLogger()
			h := Logging(logger)(statusHandler(tt.status))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
			assert.Equal(t, "/api/health", line["path"])
			assert.InDelta(t, float64(tt.status), line["status"], 0)
			assert.InDelta(t, 4, line["size"], 0)
		})
	}
}

func TestResponseWriterDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)
	_, _ = rw.Write([]byte("hi"))

	assert.Equal(t, http.StatusOK, rw.Status())
	assert.Equal(t, 2, rw.Size())
	assert.Same(t, rw, NewResponseWriter(rw))
	assert.Same(t, rec, rw.Unwrap())
}

func TestRecovery(t *testing.T) {
	logger, buf := captureLogger()
	var recovered any
	h := Recovery(logger, func(w http.ResponseWriter, _ *http.Request, err any) {
		recovered = err
		w.WriteHeader(http.StatusInternalServerError)
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/leaderboard", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", recovered)
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestRecoveryReraisesAbort(t *testing.T) {
	logger, _ := captureLogger()
	h := Recovery(logger, func(http.ResponseWriter, *http.Request, any) {})(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic(http.ErrAbortHandler)
		}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	route := func(*http.Request) string { return "/api/leaderboard" }
	h := Metrics(m, route)(statusHandler(http.StatusCreated))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/leaderboard", nil))

	counter := m.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/leaderboard", "Created")
	assert.InDelta(t, 1, testutil.ToFloat64(counter), 0)
}

func TestMetricsNilIsPassthrough(t *testing.T) {
	next := statusHandler(http.StatusOK)
	h := Metrics(nil, nil)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
