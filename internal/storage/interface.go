package storage

import (
	"context"

	"github.com/mcoot/snakegame-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations

	// CreateUser inserts a user, failing with model.ErrDuplicateEmail or
	// model.ErrDuplicateUsername if either is taken. Email is checked first.
	// The uniqueness check and the insert happen atomically.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// GetUsers returns the users that exist among ids, keyed by id
	GetUsers(ctx context.Context, ids []model.UserID) (map[model.UserID]*model.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Score operations

	// AppendScore stores a new record and assigns its Seq
	AppendScore(ctx context.Context, record *model.ScoreRecord) error
	// ListScores returns every record, or only those of mode when non-nil
	ListScores(ctx context.Context, mode *model.GameMode) ([]*model.ScoreRecord, error)

	// Saved game operations
	SaveGame(ctx context.Context, game *model.SavedGame) error
	GetSavedGame(ctx context.Context, userID model.UserID) (*model.SavedGame, error)
	DeleteSavedGame(ctx context.Context, userID model.UserID) error
}
