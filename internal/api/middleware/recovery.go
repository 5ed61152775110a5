package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/snakegame-go/internal/api/apierr"
	"github.com/mcoot/snakegame-go/internal/metrics"
	"github.com/mcoot/snakegame-go/internal/middleware"
)

// Recovery creates panic recovery middleware for the API. A recovered panic
// is counted against its route and answered with an INTERNAL_ERROR envelope.
func Recovery(logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		m.RecordPanic(routeTemplate(r))
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
