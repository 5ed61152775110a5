package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/snakegame-go/internal/metrics"
	"github.com/mcoot/snakegame-go/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// Metrics records request counts and latencies labelled by the matched
// route template, so path parameters do not explode label cardinality
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return middleware.Metrics(m, routeTemplate)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
