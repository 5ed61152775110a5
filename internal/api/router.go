package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/snakegame-go/internal/api/apierr"
	"github.com/mcoot/snakegame-go/internal/api/handler"
	"github.com/mcoot/snakegame-go/internal/api/middleware"
	"github.com/mcoot/snakegame-go/internal/api/response"
	"github.com/mcoot/snakegame-go/internal/metrics"
	"github.com/mcoot/snakegame-go/internal/services/auth"
	"github.com/mcoot/snakegame-go/internal/services/gamestate"
	"github.com/mcoot/snakegame-go/internal/services/leaderboard"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	LeaderboardService *leaderboard.Service
	GameStateService   *gamestate.Service
	// Metrics and Gatherer are optional. With a Gatherer, /metrics is served.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.GameStateService, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, cfg.Metrics)
	metricsMiddleware := middleware.Metrics(cfg.Metrics)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(metricsMiddleware)

	// Auth routes (no session required)
	api.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/session", authHandler.Session).Methods(http.MethodGet)

	// Leaderboard routes (public)
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard/stats", leaderboardHandler.Stats).Methods(http.MethodGet)

	// Game routes (all require auth)
	game := api.PathPrefix("/game").Subrouter()
	game.Use(authMiddleware)
	game.HandleFunc("/save", gameHandler.Save).Methods(http.MethodPost)
	game.HandleFunc("/save", gameHandler.Discard).Methods(http.MethodDelete)
	game.HandleFunc("/load", gameHandler.Load).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(cfg.Gatherer)).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.Raw(w, http.StatusOK, response.Health{Status: "ok"})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}

func methodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewMethodNotAllowedError())
}
