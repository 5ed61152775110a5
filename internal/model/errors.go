package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidUsername    = errors.New("username must not be empty")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPassword    = errors.New("password must not be empty")

	// Score errors
	ErrInvalidScoreSubmission = errors.New("invalid score submission")
	ErrInvalidMode            = errors.New("invalid game mode")

	// Game state errors
	ErrGameStateNotFound = errors.New("no saved game")
	ErrInvalidGameState  = errors.New("invalid game state")
)
