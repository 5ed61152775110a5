package model

import "time"

// Direction is the snake's heading
type Direction string

const (
	DirectionUp    Direction = "UP"
	DirectionDown  Direction = "DOWN"
	DirectionLeft  Direction = "LEFT"
	DirectionRight Direction = "RIGHT"
)

// Valid reports whether d is a known direction
func (d Direction) Valid() bool {
	switch d {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return true
	}
	return false
}

// GameStatus is the lifecycle state of a game in progress
type GameStatus string

const (
	StatusIdle     GameStatus = "idle"
	StatusPlaying  GameStatus = "playing"
	StatusPaused   GameStatus = "paused"
	StatusGameOver GameStatus = "game-over"
)

// Valid reports whether s is a known status
func (s GameStatus) Valid() bool {
	switch s {
	case StatusIdle, StatusPlaying, StatusPaused, StatusGameOver:
		return true
	}
	return false
}

// Position is a grid cell
type Position struct {
	X int
	Y int
}

// GameState is a snapshot of a player's game, saved so it can be resumed
type GameState struct {
	Snake     []Position // head first
	Food      Position
	Direction Direction
	Score     int
	Status    GameStatus
	Mode      GameMode
	Speed     int
}

// SavedGame is a game state stored for a user
type SavedGame struct {
	UserID  UserID
	State   GameState
	SavedAt time.Time
}
