package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/snakegame-go/internal/api/apierr"
	"github.com/mcoot/snakegame-go/internal/errutil"
	"github.com/mcoot/snakegame-go/internal/model"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// errorWriter writes API errors and logs the ones that map to a server error.
// Client errors are expected and left to the request log.
type errorWriter struct {
	logger *slog.Logger
}

func (e errorWriter) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		errutil.LogError(e.logger.With("method", r.Method, "path", r.URL.Path), "request failed", err)
	}
	apierr.WriteError(w, err)
}

// parseMode reads the optional mode query parameter. Absent means all modes.
func parseMode(r *http.Request) (*model.GameMode, error) {
	raw := r.URL.Query().Get("mode")
	if raw == "" {
		return nil, nil
	}
	mode, err := model.ParseGameMode(raw)
	if err != nil {
		return nil, err
	}
	return &mode, nil
}
