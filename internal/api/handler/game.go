package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/snakegame-go/internal/api/apierr"
	"github.com/mcoot/snakegame-go/internal/api/middleware"
	"github.com/mcoot/snakegame-go/internal/api/request"
	"github.com/mcoot/snakegame-go/internal/api/response"
	"github.com/mcoot/snakegame-go/internal/services/gamestate"
)

// GameHandler handles saving and resuming games. All routes require auth.
type GameHandler struct {
	errorWriter
	games *gamestate.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *gamestate.Service, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		errorWriter: errorWriter{logger: logger},
		games:       games,
	}
}

// Save handles POST /api/game/save
func (h *GameHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.SaveGameRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.GameState == nil {
		h.writeError(w, r, apierr.NewInvalidRequestError("gameState is required"))
		return
	}

	saved, err := h.games.Save(r.Context(), user.ID, req.GameState.ToModel())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SavedGameFromModel(saved))
}

// Load handles GET /api/game/load. Data is null when nothing is saved.
func (h *GameHandler) Load(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	saved, ok, err := h.games.Load(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !ok {
		response.JSON(w, http.StatusOK, nil)
		return
	}

	response.JSON(w, http.StatusOK, response.SavedGameFromModel(saved))
}

// Discard handles DELETE /api/game/save
func (h *GameHandler) Discard(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	if err := h.games.Discard(r.Context(), user.ID); err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, nil)
}
