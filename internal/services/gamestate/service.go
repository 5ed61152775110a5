// Package gamestate saves and restores a user's unfinished game.
package gamestate

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcoot/snakegame-go/internal/dependencies/clock"
	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/storage"
)

// Service stores one saved game per user
type Service struct {
	storage storage.Storage
	clock   clock.Clock
}

// New creates a new gamestate Service
func New(storage storage.Storage, clock clock.Clock) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
	}
}

// Save replaces the user's saved game with state
func (s *Service) Save(ctx context.Context, userID model.UserID, state model.GameState) (*model.SavedGame, error) {
	if err := Validate(state); err != nil {
		return nil, err
	}

	game := &model.SavedGame{
		UserID:  userID,
		State:   state,
		SavedAt: s.clock.Now(),
	}
	if err := s.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// Load returns the user's saved game. ok is false if there is none.
func (s *Service) Load(ctx context.Context, userID model.UserID) (game *model.SavedGame, ok bool, err error) {
	game, err = s.storage.GetSavedGame(ctx, userID)
	if errors.Is(err, model.ErrGameStateNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return game, true, nil
}

// Discard removes the user's saved game, if any
func (s *Service) Discard(ctx context.Context, userID model.UserID) error {
	return s.storage.DeleteSavedGame(ctx, userID)
}

// Validate checks that a state is well formed
func Validate(state model.GameState) error {
	switch {
	case !state.Mode.Valid():
		return fmt.Errorf("%w: unknown mode %q", model.ErrInvalidGameState, state.Mode)
	case !state.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", model.ErrInvalidGameState, state.Status)
	case !state.Direction.Valid():
		return fmt.Errorf("%w: unknown direction %q", model.ErrInvalidGameState, state.Direction)
	case len(state.Snake) == 0:
		return fmt.Errorf("%w: snake is empty", model.ErrInvalidGameState)
	case state.Score < 0:
		return fmt.Errorf("%w: negative score", model.ErrInvalidGameState)
	case state.Speed < 0:
		return fmt.Errorf("%w: negative speed", model.ErrInvalidGameState)
	}
	return nil
}
