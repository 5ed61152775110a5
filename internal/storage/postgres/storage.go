// Package postgres is a PostgreSQL-backed implementation of the storage interface.
package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/storage"
)

// Constraint names from the initial migration
const (
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

// poolIface is the subset of *pgxpool.Pool used here. pgxmock.PgxPoolIface
// satisfies it.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage persists users, scores and saved games in PostgreSQL
type Storage struct {
	pool poolIface
}

// New connects to dsn and verifies the connection
func New(ctx context.Context, dsn string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return &Storage{pool: pool}, nil
}

// NewWithPool wraps an existing pool
func NewWithPool(pool poolIface) *Storage {
	return &Storage{pool: pool}
}

// Close closes the pool
func (s *Storage) Close() {
	s.pool.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ storage.Storage = (*Storage)(nil)

const userColumns = `id, username, email, password_hash, avatar_url, created_at`

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").With("operation", "begin").Wrap(err)
	}

	if err := insertUser(ctx, tx, user); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return oops.Code("USER_CREATE_FAILED").With("operation", "commit").Wrap(err)
	}
	return nil
}

// insertUser checks email then username so a request conflicting on both
// reports the email. The unique constraints catch concurrent inserts that
// pass the check.
func insertUser(ctx context.Context, tx pgx.Tx, user *model.User) error {
	var emailTaken, usernameTaken bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1),
		        EXISTS (SELECT 1 FROM users WHERE username = $2)`,
		user.Email, user.Username).Scan(&emailTaken, &usernameTaken)
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").With("operation", "check uniqueness").Wrap(err)
	}
	if emailTaken {
		return model.ErrDuplicateEmail
	}
	if usernameTaken {
		return model.ErrDuplicateUsername
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(user.ID), user.Username, user.Email, user.PasswordHash, user.AvatarURL, user.CreatedAt)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return oops.Code("USER_CREATE_FAILED").With("user_id", user.ID).Wrap(err)
	}
	return nil
}

// duplicateError maps a unique violation to the matching domain error
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case emailConstraint:
		return model.ErrDuplicateEmail
	case usernameConstraint:
		return model.ErrDuplicateUsername
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	var id string
	if err := row.Scan(&id, &user.Username, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.ID = model.UserID(id)
	return &user, nil
}

func (s *Storage) getUserWhere(ctx context.Context, column, value string) (*model.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").With(column, value).Wrap(err)
	}
	return user, nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.getUserWhere(ctx, "id", string(id))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserWhere(ctx, "email", email)
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUserWhere(ctx, "username", username)
}

func (s *Storage) GetUsers(ctx context.Context, ids []model.UserID) (map[model.UserID]*model.User, error) {
	result := make(map[model.UserID]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, raw)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("count", len(ids)).Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_LIST_FAILED").With("operation", "scan").Wrap(err)
		}
		result[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", "iterate").Wrap(err)
	}
	return result, nil
}

func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, oops.Code("USER_COUNT_FAILED").Wrap(err)
	}
	return n, nil
}

// Score operations

func (s *Storage) AppendScore(ctx context.Context, record *model.ScoreRecord) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO scores (id, user_id, score, mode, played_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING seq`,
		string(record.ID), string(record.UserID), record.Score, string(record.Mode), record.PlayedAt,
	).Scan(&record.Seq)
	if err != nil {
		return oops.Code("SCORE_APPEND_FAILED").
			With("score_id", record.ID).
			With("user_id", record.UserID).
			Wrap(err)
	}
	return nil
}

func (s *Storage) ListScores(ctx context.Context, mode *model.GameMode) ([]*model.ScoreRecord, error) {
	const query = `SELECT id, seq, user_id, score, mode, played_at FROM scores`

	var rows pgx.Rows
	var err error
	if mode == nil {
		rows, err = s.pool.Query(ctx, query+` ORDER BY seq`)
	} else {
		rows, err = s.pool.Query(ctx, query+` WHERE mode = $1 ORDER BY seq`, string(*mode))
	}
	if err != nil {
		return nil, oops.Code("SCORE_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	records := make([]*model.ScoreRecord, 0)
	for rows.Next() {
		var r model.ScoreRecord
		var id, userID, rawMode string
		if err := rows.Scan(&id, &r.Seq, &userID, &r.Score, &rawMode, &r.PlayedAt); err != nil {
			return nil, oops.Code("SCORE_LIST_FAILED").With("operation", "scan").Wrap(err)
		}
		r.ID = model.ScoreID(id)
		r.UserID = model.UserID(userID)
		r.Mode = model.GameMode(rawMode)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SCORE_LIST_FAILED").With("operation", "iterate").Wrap(err)
	}
	return records, nil
}

// Saved game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.SavedGame) error {
	state, err := json.Marshal(game.State)
	if err != nil {
		return oops.Code("GAME_SAVE_FAILED").With("operation", "encode").Wrap(err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO saved_games (user_id, state, saved_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET state = EXCLUDED.state, saved_at = EXCLUDED.saved_at`,
		string(game.UserID), state, game.SavedAt)
	if err != nil {
		return oops.Code("GAME_SAVE_FAILED").With("user_id", game.UserID).Wrap(err)
	}
	return nil
}

func (s *Storage) GetSavedGame(ctx context.Context, userID model.UserID) (*model.SavedGame, error) {
	game := model.SavedGame{UserID: userID}
	var state []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state, saved_at FROM saved_games WHERE user_id = $1`, string(userID),
	).Scan(&state, &game.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrGameStateNotFound
	}
	if err != nil {
		return nil, oops.Code("GAME_LOAD_FAILED").With("user_id", userID).Wrap(err)
	}

	if err := json.Unmarshal(state, &game.State); err != nil {
		return nil, oops.Code("GAME_LOAD_FAILED").With("operation", "decode").Wrap(err)
	}
	return &game, nil
}

func (s *Storage) DeleteSavedGame(ctx context.Context, userID model.UserID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM saved_games WHERE user_id = $1`, string(userID))
	if err != nil {
		return oops.Code("GAME_DELETE_FAILED").With("user_id", userID).Wrap(err)
	}
	return nil
}
