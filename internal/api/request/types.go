package request

import "github.com/mcoot/snakegame-go/internal/model"

// SignupRequest is the request body for creating an account
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SubmitScoreRequest is the request body for recording a score. Score is a
// pointer so a missing value is distinguishable from zero.
type SubmitScoreRequest struct {
	Score    *int   `json:"score"`
	Mode     string `json:"mode"`
	Username string `json:"username"`
}

// Position is a grid cell
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameState is a snake game snapshot sent by the client
type GameState struct {
	Snake     []Position `json:"snake"`
	Food      Position   `json:"food"`
	Direction string     `json:"direction"`
	Score     int        `json:"score"`
	Status    string     `json:"status"`
	Mode      string     `json:"mode"`
	Speed     int        `json:"speed"`
}

// ToModel converts the wire state. Enumerations are checked by the
// gamestate service.
func (g GameState) ToModel() model.GameState {
	snake := make([]model.Position, len(g.Snake))
	for i, p := range g.Snake {
		snake[i] = model.Position{X: p.X, Y: p.Y}
	}
	return model.GameState{
		Snake:     snake,
		Food:      model.Position{X: g.Food.X, Y: g.Food.Y},
		Direction: model.Direction(g.Direction),
		Score:     g.Score,
		Status:    model.GameStatus(g.Status),
		Mode:      model.GameMode(g.Mode),
		Speed:     g.Speed,
	}
}

// SaveGameRequest is the request body for saving a game
type SaveGameRequest struct {
	GameState *GameState `json:"gameState"`
}
