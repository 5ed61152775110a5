package response

import (
	"time"

	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/services/auth"
	"github.com/mcoot/snakegame-go/internal/services/ranking"
)

// Envelope wraps every successful response body
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// User is the public profile of a user in API responses
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserFromProfile converts a model.Profile to a response User
func UserFromProfile(p model.Profile) User {
	return User{
		ID:        string(p.ID),
		Username:  p.Username,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
	}
}

// AuthResponse is the response for signup and login
type AuthResponse struct {
	User         User   `json:"user"`
	SessionToken string `json:"sessionToken"`
}

// AuthResponseFromResult creates an AuthResponse from an auth result
func AuthResponseFromResult(r *auth.Result) AuthResponse {
	return AuthResponse{
		User:         UserFromProfile(r.Profile),
		SessionToken: r.Session.Token,
	}
}

// ScoreRecord is a recorded score. It carries no rank.
type ScoreRecord struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Score    int       `json:"score"`
	Mode     string    `json:"mode"`
	PlayedAt time.Time `json:"playedAt"`
}

// ScoreRecordFromModel converts a ledger record submitted by username
func ScoreRecordFromModel(r *model.ScoreRecord, username string) ScoreRecord {
	return ScoreRecord{
		ID:       string(r.ID),
		UserID:   string(r.UserID),
		Username: username,
		Score:    r.Score,
		Mode:     string(r.Mode),
		PlayedAt: r.PlayedAt,
	}
}

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	ID       string    `json:"id"`
	Rank     int       `json:"rank"`
	Username string    `json:"username"`
	Score    int       `json:"score"`
	Mode     string    `json:"mode"`
	PlayedAt time.Time `json:"playedAt"`
}

// LeaderboardFromModel converts ranked entries. The result is never nil.
func LeaderboardFromModel(entries []model.LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			ID:       string(e.ID),
			Rank:     e.Rank,
			Username: e.Username,
			Score:    e.Score,
			Mode:     string(e.Mode),
			PlayedAt: e.PlayedAt,
		}
	}
	return out
}

// Stats summarises the scores of a leaderboard
type Stats struct {
	Mode   string  `json:"mode,omitempty"`
	Count  int     `json:"count"`
	Top    int     `json:"top"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Modes  []int   `json:"modes"`
}

// StatsFromModel converts ranking stats, tagged with the queried mode if any
func StatsFromModel(s ranking.Stats, mode *model.GameMode) Stats {
	out := Stats{
		Count:  s.Count,
		Top:    s.Top,
		Mean:   s.Mean,
		Median: s.Median,
		Modes:  s.Modes,
	}
	if out.Modes == nil {
		out.Modes = []int{}
	}
	if mode != nil {
		out.Mode = string(*mode)
	}
	return out
}

// Position is a grid cell
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameState is a saved snake game
type GameState struct {
	Snake     []Position `json:"snake"`
	Food      Position   `json:"food"`
	Direction string     `json:"direction"`
	Score     int        `json:"score"`
	Status    string     `json:"status"`
	Mode      string     `json:"mode"`
	Speed     int        `json:"speed"`
}

// SavedGame is a game state along with when it was saved
type SavedGame struct {
	GameState GameState `json:"gameState"`
	SavedAt   time.Time `json:"savedAt"`
}

// SavedGameFromModel converts a model.SavedGame
func SavedGameFromModel(g *model.SavedGame) SavedGame {
	snake := make([]Position, len(g.State.Snake))
	for i, p := range g.State.Snake {
		snake[i] = Position{X: p.X, Y: p.Y}
	}
	return SavedGame{
		GameState: GameState{
			Snake:     snake,
			Food:      Position{X: g.State.Food.X, Y: g.State.Food.Y},
			Direction: string(g.State.Direction),
			Score:     g.State.Score,
			Status:    string(g.State.Status),
			Mode:      string(g.State.Mode),
			Speed:     g.State.Speed,
		},
		SavedAt: g.SavedAt,
	}
}

// Health is the health check body
type Health struct {
	Status string `json:"status"`
}
