// Package leaderboard records submitted scores and serves ranked views.
package leaderboard

import (
	"context"
	"log/slog"

	"github.com/mcoot/snakegame-go/internal/metrics"
	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/services/credential"
	"github.com/mcoot/snakegame-go/internal/services/ledger"
	"github.com/mcoot/snakegame-go/internal/services/ranking"
)

// Service handles score submission and leaderboard queries
type Service struct {
	credentials *credential.Store
	ledger      *ledger.Ledger
	ranker      *ranking.Ranker
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New creates a new leaderboard Service. m may be nil.
func New(credentials *credential.Store, ledger *ledger.Ledger, ranker *ranking.Ranker, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		credentials: credentials,
		ledger:      ledger,
		ranker:      ranker,
		metrics:     m,
		logger:      logger,
	}
}

// SubmitScore records a score for the user named username. The submission is
// validated before the user is looked up, and nothing is recorded unless
// both succeed.
//
// The returned record carries no rank. Concurrent submissions make any rank
// computed here stale, so callers re-query the leaderboard.
func (s *Service) SubmitScore(ctx context.Context, username string, score int, mode model.GameMode) (*model.ScoreRecord, error) {
	if err := ledger.Validate(score, mode); err != nil {
		return nil, err
	}

	user, ok, err := s.credentials.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrUserNotFound
	}

	record, err := s.ledger.Append(ctx, user.ID, score, mode)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordScore(string(mode))
	s.logger.Info("score recorded",
		"score_id", record.ID,
		"user_id", user.ID,
		"score", score,
		"mode", mode,
	)
	return record, nil
}

// GetLeaderboard returns the top entries across all modes, or only mode when
// non-nil. Empty when nothing has been recorded.
func (s *Service) GetLeaderboard(ctx context.Context, mode *model.GameMode) ([]model.LeaderboardEntry, error) {
	records, err := s.ledger.AllRecords(ctx, mode)
	if err != nil {
		return nil, err
	}

	names, err := s.credentials.Usernames(ctx, userIDs(records))
	if err != nil {
		return nil, err
	}

	return s.ranker.Rank(records, names), nil
}

// GetStats summarises every recorded score, or only those of mode
func (s *Service) GetStats(ctx context.Context, mode *model.GameMode) (ranking.Stats, error) {
	records, err := s.ledger.AllRecords(ctx, mode)
	if err != nil {
		return ranking.Stats{}, err
	}
	return ranking.Summarize(records), nil
}

func userIDs(records []*model.ScoreRecord) []model.UserID {
	seen := make(map[model.UserID]bool)
	ids := make([]model.UserID, 0)
	for _, r := range records {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	return ids
}
