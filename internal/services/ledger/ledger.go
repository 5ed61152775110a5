// Package ledger is the append-only record of played games.
package ledger

import (
	"context"
	"fmt"

	"github.com/mcoot/snakegame-go/internal/dependencies/clock"
	"github.com/mcoot/snakegame-go/internal/dependencies/ids"
	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/storage"
)

// Ledger appends and lists score records
type Ledger struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
}

// New creates a new Ledger
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator) *Ledger {
	return &Ledger{
		storage: storage,
		clock:   clock,
		ids:     ids,
	}
}

// Validate checks a submission without recording it
func Validate(score int, mode model.GameMode) error {
	if score < 0 {
		return fmt.Errorf("%w: score must be non-negative, got %d", model.ErrInvalidScoreSubmission, score)
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", model.ErrInvalidScoreSubmission, mode)
	}
	return nil
}

// Append records a score. The timestamp is taken from the server clock.
func (l *Ledger) Append(ctx context.Context, userID model.UserID, score int, mode model.GameMode) (*model.ScoreRecord, error) {
	if err := Validate(score, mode); err != nil {
		return nil, err
	}

	record := &model.ScoreRecord{
		ID:       l.ids.ScoreID(),
		UserID:   userID,
		Score:    score,
		Mode:     mode,
		PlayedAt: l.clock.Now(),
	}

	if err := l.storage.AppendScore(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// AllRecords returns every record, or those of mode when non-nil. Order is
// unspecified.
func (l *Ledger) AllRecords(ctx context.Context, mode *model.GameMode) ([]*model.ScoreRecord, error) {
	return l.storage.ListScores(ctx, mode)
}
