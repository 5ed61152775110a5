package memory

import (
	"context"
	"sync"

	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	emailIndex    map[string]model.UserID
	usernameIndex map[string]model.UserID
	scores        []*model.ScoreRecord
	seq           int64
	savedGames    map[model.UserID]*model.SavedGame
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		emailIndex:    make(map[string]model.UserID),
		usernameIndex: make(map[string]model.UserID),
		savedGames:    make(map[model.UserID]*model.SavedGame),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emailIndex[user.Email]; ok {
		return model.ErrDuplicateEmail
	}
	if _, ok := s.usernameIndex[user.Username]; ok {
		return model.ErrDuplicateUsername
	}
	stored := *user
	s.users[user.ID] = &stored
	s.emailIndex[user.Email] = user.ID
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserByIndex(s.emailIndex, email)
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUserByIndex(s.usernameIndex, username)
}

func (s *Storage) getUserByIndex(index map[string]model.UserID, key string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := index[key]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUsers(ctx context.Context, ids []model.UserID) (map[model.UserID]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[model.UserID]*model.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			u := *user
			result[id] = &u
		}
	}
	return result, nil
}

func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// Score operations

func (s *Storage) AppendScore(ctx context.Context, record *model.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	record.Seq = s.seq
	stored := *record
	s.scores = append(s.scores, &stored)
	return nil
}

func (s *Storage) ListScores(ctx context.Context, mode *model.GameMode) ([]*model.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.ScoreRecord, 0, len(s.scores))
	for _, r := range s.scores {
		if mode != nil && r.Mode != *mode {
			continue
		}
		rec := *r
		result = append(result, &rec)
	}
	return result, nil
}

// Saved game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.SavedGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *game
	stored.State.Snake = append([]model.Position(nil), game.State.Snake...)
	s.savedGames[game.UserID] = &stored
	return nil
}

func (s *Storage) GetSavedGame(ctx context.Context, userID model.UserID) (*model.SavedGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.savedGames[userID]
	if !ok {
		return nil, model.ErrGameStateNotFound
	}
	g := *game
	g.State.Snake = append([]model.Position(nil), game.State.Snake...)
	return &g, nil
}

func (s *Storage) DeleteSavedGame(ctx context.Context, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.savedGames, userID)
	return nil
}
