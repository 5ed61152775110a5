// Package ranking turns ledger records into leaderboards.
package ranking

import (
	"cmp"
	"slices"

	"github.com/mcoot/snakegame-go/internal/model"
)

// DefaultLimit is the maximum number of leaderboard entries returned
const DefaultLimit = 50

// Config holds configuration for the ranker
type Config struct {
	Limit int
}

// DefaultConfig returns default ranking configuration
func DefaultConfig() Config {
	return Config{Limit: DefaultLimit}
}

// Ranker orders score records into a leaderboard
type Ranker struct {
	limit int
}

// New creates a new Ranker
func New(cfg Config) *Ranker {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	return &Ranker{limit: cfg.Limit}
}

// Limit returns the maximum entries Rank returns
func (r *Ranker) Limit() int {
	return r.limit
}

// Rank sorts records by score descending, breaking ties by earlier
// submission, and assigns ranks 1..N. Records whose user is missing from
// usernames are left out before ranks are assigned. The input is not
// modified.
func (r *Ranker) Rank(records []*model.ScoreRecord, usernames map[model.UserID]string) []model.LeaderboardEntry {
	ordered := make([]*model.ScoreRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := usernames[rec.UserID]; ok {
			ordered = append(ordered, rec)
		}
	}

	slices.SortStableFunc(ordered, compareRecords)

	n := min(len(ordered), r.limit)
	entries := make([]model.LeaderboardEntry, n)
	for i, rec := range ordered[:n] {
		entries[i] = model.LeaderboardEntry{
			Rank:     i + 1,
			ID:       rec.ID,
			Username: usernames[rec.UserID],
			Score:    rec.Score,
			Mode:     rec.Mode,
			PlayedAt: rec.PlayedAt,
		}
	}
	return entries
}

// compareRecords orders higher scores first, then lower Seq
func compareRecords(a, b *model.ScoreRecord) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}
