package model

import (
	"fmt"
	"time"
)

// GameMode is a game-rule variant. Each mode has its own leaderboard.
type GameMode string

const (
	ModePassThrough GameMode = "pass-through"
	ModeWalls       GameMode = "walls"
)

// AllModes lists every supported mode
var AllModes = []GameMode{ModePassThrough, ModeWalls}

// Valid reports whether m is a known mode
func (m GameMode) Valid() bool {
	switch m {
	case ModePassThrough, ModeWalls:
		return true
	}
	return false
}

// ParseGameMode converts a raw string into a GameMode
func ParseGameMode(s string) (GameMode, error) {
	m := GameMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// ScoreID uniquely identifies a score record (ULID string)
type ScoreID string

// ScoreRecord is one immutable ledger entry
type ScoreRecord struct {
	ID       ScoreID
	Seq      int64 // insertion order, assigned by storage
	UserID   UserID
	Score    int
	Mode     GameMode
	PlayedAt time.Time
}

// LeaderboardEntry is a ranked view of a score record. Never stored.
type LeaderboardEntry struct {
	Rank     int
	ID       ScoreID
	Username string
	Score    int
	Mode     GameMode
	PlayedAt time.Time
}
