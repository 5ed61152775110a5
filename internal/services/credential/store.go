// Package credential owns user identity records and password verification.
package credential

import (
	"context"
	"errors"
	"net/mail"
	"sync"

	"github.com/mcoot/snakegame-go/internal/dependencies/clock"
	"github.com/mcoot/snakegame-go/internal/dependencies/ids"
	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/storage"
)

// Store creates and looks up user identities
type Store struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	hasher  PasswordHasher

	// dummyHash is compared against when the email is unknown so that a
	// miss costs the same as a wrong password
	dummyOnce sync.Once
	dummyHash string
}

// New creates a new credential Store
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, hasher PasswordHasher) *Store {
	return &Store{
		storage: storage,
		clock:   clock,
		ids:     ids,
		hasher:  hasher,
	}
}

// Create registers a new user. Fails with model.ErrDuplicateEmail or
// model.ErrDuplicateUsername without creating anything if either is taken.
func (s *Store) Create(ctx context.Context, username, email, password string) (*model.User, error) {
	if err := validate(username, email, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           s.ids.UserID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func validate(username, email, password string) error {
	if username == "" {
		return model.ErrInvalidUsername
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.ErrInvalidEmail
	}
	if password == "" {
		return model.ErrInvalidPassword
	}
	return nil
}

// FindByEmail looks up a user by exact email
func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, bool, error) {
	return found(s.storage.GetUserByEmail(ctx, email))
}

// FindByUsername looks up a user by exact, case-sensitive username
func (s *Store) FindByUsername(ctx context.Context, username string) (*model.User, bool, error) {
	return found(s.storage.GetUserByUsername(ctx, username))
}

// FindByID looks up a user by id
func (s *Store) FindByID(ctx context.Context, id model.UserID) (*model.User, bool, error) {
	return found(s.storage.GetUser(ctx, id))
}

func found(user *model.User, err error) (*model.User, bool, error) {
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// VerifyCredentials returns the user iff email exists and password matches
// its hash. Unknown email and wrong password both yield
// model.ErrInvalidCredentials.
func (s *Store) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, ok, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		_, _ = s.hasher.Verify(password, s.dummy())
		return nil, model.ErrInvalidCredentials
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

func (s *Store) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password")
	})
	return s.dummyHash
}

// Usernames resolves ids to usernames. Unknown ids are omitted.
func (s *Store) Usernames(ctx context.Context, ids []model.UserID) (map[model.UserID]string, error) {
	users, err := s.storage.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[model.UserID]string, len(users))
	for id, u := range users {
		names[id] = u.Username
	}
	return names, nil
}
