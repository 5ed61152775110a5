package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case ScoreRecord:
		o.printScoreRecord(v)
	case []LeaderboardEntry:
		o.printLeaderboard(v)
	case Stats:
		o.printStats(v)
	case SavedGame:
		o.printSavedGame(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResult combines user and token
type AuthResult struct {
	User         User   `json:"user"`
	SessionToken string `json:"sessionToken"`
}

// ScoreRecord response type
type ScoreRecord struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Score    int       `json:"score"`
	Mode     string    `json:"mode"`
	PlayedAt time.Time `json:"playedAt"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	ID       string    `json:"id"`
	Rank     int       `json:"rank"`
	Username string    `json:"username"`
	Score    int       `json:"score"`
	Mode     string    `json:"mode"`
	PlayedAt time.Time `json:"playedAt"`
}

// Stats response type
type Stats struct {
	Mode   string  `json:"mode,omitempty"`
	Count  int     `json:"count"`
	Top    int     `json:"top"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Modes  []int   `json:"modes"`
}

// Position is a cell on the board
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameState is an in-progress game snapshot
type GameState struct {
	Snake     []Position `json:"snake"`
	Food      Position   `json:"food"`
	Direction string     `json:"direction"`
	Score     int        `json:"score"`
	Status    string     `json:"status"`
	Mode      string     `json:"mode"`
	Speed     int        `json:"speed"`
}

// SavedGame response type
type SavedGame struct {
	GameState GameState `json:"gameState"`
	SavedAt   time.Time `json:"savedAt"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	_, _ = fmt.Fprintf(o.w, "User: %s (%s)\n", u.Username, u.ID)
	_, _ = fmt.Fprintf(o.w, "Email: %s\n", u.Email)
	_, _ = fmt.Fprintf(o.w, "Joined: %s\n", u.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	_, _ = fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printScoreRecord(s ScoreRecord) {
	_, _ = fmt.Fprintf(o.w, "Recorded %d (%s) for %s\n", s.Score, s.Mode, s.Username)
	_, _ = fmt.Fprintf(o.w, "Score ID: %s\n", s.ID)
}

func (o *Output) printLeaderboard(entries []LeaderboardEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(o.w, "No scores yet")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tPLAYER\tSCORE\tMODE\tPLAYED")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			e.Rank, e.Username, e.Score, e.Mode, e.PlayedAt.Format(time.DateTime))
	}
	_ = tw.Flush()
}

func (o *Output) printStats(s Stats) {
	mode := s.Mode
	if mode == "" {
		mode = "all"
	}
	_, _ = fmt.Fprintf(o.w, "Mode: %s\n", mode)
	_, _ = fmt.Fprintf(o.w, "Games: %d\n", s.Count)
	if s.Count == 0 {
		return
	}
	_, _ = fmt.Fprintf(o.w, "Top: %d\n", s.Top)
	_, _ = fmt.Fprintf(o.w, "Mean: %.2f\n", s.Mean)
	_, _ = fmt.Fprintf(o.w, "Median: %.2f\n", s.Median)

	modes := make([]string, len(s.Modes))
	for i, m := range s.Modes {
		modes[i] = strconv.Itoa(m)
	}
	_, _ = fmt.Fprintf(o.w, "Most common: %s\n", strings.Join(modes, ", "))
}

func (o *Output) printSavedGame(g SavedGame) {
	s := g.GameState
	_, _ = fmt.Fprintf(o.w, "Saved: %s\n", g.SavedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(o.w, "Mode: %s\n", s.Mode)
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", s.Status)
	_, _ = fmt.Fprintf(o.w, "Score: %d\n", s.Score)
	_, _ = fmt.Fprintf(o.w, "Length: %d heading %s\n", len(s.Snake), s.Direction)
	if len(s.Snake) > 0 {
		_, _ = fmt.Fprintf(o.w, "Head: (%d,%d) Food: (%d,%d)\n", s.Snake[0].X, s.Snake[0].Y, s.Food.X, s.Food.Y)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
