package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/snakegame-go/internal/api/apierr"
	"github.com/mcoot/snakegame-go/internal/api/request"
	"github.com/mcoot/snakegame-go/internal/api/response"
	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/services/leaderboard"
)

// LeaderboardHandler handles score submission and leaderboard queries
type LeaderboardHandler struct {
	errorWriter
	leaderboard *leaderboard.Service
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(service *leaderboard.Service, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		errorWriter: errorWriter{logger: logger},
		leaderboard: service,
	}
}

// Get handles GET /api/leaderboard?mode=
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	entries, err := h.leaderboard.GetLeaderboard(r.Context(), mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(entries))
}

// Submit handles POST /api/leaderboard. The response carries the recorded
// score without a rank; clients re-query the leaderboard for standings.
func (h *LeaderboardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScoreRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if req.Score == nil {
		h.writeError(w, r, apierr.NewInvalidRequestError("score is required"))
		return
	}
	if req.Username == "" {
		h.writeError(w, r, apierr.NewInvalidRequestError("username is required"))
		return
	}

	record, err := h.leaderboard.SubmitScore(r.Context(), req.Username, *req.Score, model.GameMode(req.Mode))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ScoreRecordFromModel(record, req.Username))
}

// Stats handles GET /api/leaderboard/stats?mode=
func (h *LeaderboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	mode, err := parseMode(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	stats, err := h.leaderboard.GetStats(r.Context(), mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsFromModel(stats, mode))
}
