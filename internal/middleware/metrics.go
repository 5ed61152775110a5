package middleware

import (
	"net/http"
	"time"

	"github.com/mcoot/snakegame-go/internal/metrics"
)

// RouteFunc names the route a request matched, for use as a metric label
type RouteFunc func(r *http.Request) string

// Metrics records a request counter and latency histogram per route.
// The route is resolved after the handler runs so routers that match
// lazily have populated it.
func Metrics(m *metrics.Metrics, route RouteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := NewResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			m.ObserveRequest(r.Method, route(r), wrapped.Status(), time.Since(start).Seconds())
		})
	}
}
