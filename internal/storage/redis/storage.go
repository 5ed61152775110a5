package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/storage"
)

// createUserScript checks both uniqueness indexes and writes the user in one
// step. Returns 0 on success, 1 if the email is taken, 2 if the username is.
//
// KEYS: user, email index, username index, users set
// ARGV: user json, user id
var createUserScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
	return 1
end
if redis.call('EXISTS', KEYS[3]) == 1 then
	return 2
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
redis.call('SET', KEYS[3], ARGV[2])
redis.call('SADD', KEYS[4], ARGV[2])
return 0
`)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	keys := []string{
		userKey(user.ID),
		emailIndexKey(user.Email),
		usernameIndexKey(user.Username),
		usersSetKey(),
	}
	result, err := createUserScript.Run(ctx, s.client, keys, data, string(user.ID)).Int()
	if err != nil {
		return err
	}

	switch result {
	case 1:
		return model.ErrDuplicateEmail
	case 2:
		return model.ErrDuplicateUsername
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserByIndex(ctx, emailIndexKey(email))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUserByIndex(ctx, usernameIndexKey(username))
}

func (s *Storage) getUserByIndex(ctx context.Context, indexKey string) (*model.User, error) {
	userID, err := s.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(userID))
}

func (s *Storage) GetUsers(ctx context.Context, ids []model.UserID) (map[model.UserID]*model.User, error) {
	result := make(map[model.UserID]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // missing key
		}
		var user model.User
		if err := json.Unmarshal([]byte(str), &user); err != nil {
			return nil, err
		}
		result[user.ID] = &user
	}
	return result, nil
}

func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, usersSetKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Score operations

func (s *Storage) AppendScore(ctx context.Context, record *model.ScoreRecord) error {
	seq, err := s.client.Incr(ctx, scoreSeqKey()).Result()
	if err != nil {
		return err
	}
	record.Seq = seq

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	mode := record.Mode
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, scoreKey(record.ID), data, 0)
		pipe.RPush(ctx, scoresIndexKey(nil), string(record.ID))
		pipe.RPush(ctx, scoresIndexKey(&mode), string(record.ID))
		return nil
	})
	return err
}

func (s *Storage) ListScores(ctx context.Context, mode *model.GameMode) ([]*model.ScoreRecord, error) {
	ids, err := s.client.LRange(ctx, scoresIndexKey(mode), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*model.ScoreRecord, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = scoreKey(model.ScoreID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var record model.ScoreRecord
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}

// Saved game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.SavedGame) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, savedGameKey(game.UserID), data, s.cfg.SavedGameTTL).Err()
}

func (s *Storage) GetSavedGame(ctx context.Context, userID model.UserID) (*model.SavedGame, error) {
	data, err := s.client.Get(ctx, savedGameKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameStateNotFound
		}
		return nil, err
	}

	var game model.SavedGame
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteSavedGame(ctx context.Context, userID model.UserID) error {
	return s.client.Del(ctx, savedGameKey(userID)).Err()
}
