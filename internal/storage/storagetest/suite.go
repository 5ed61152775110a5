// Package storagetest holds behaviour tests shared by every storage backend.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/storage"
)

// Suite exercises the storage.Storage contract. Embed it and set NewStorage.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.Store = s.NewStorage()
	s.Ctx = context.Background()
}

func newUser(id, username, email string) *model.User {
	return &model.User{
		ID:           model.UserID(id),
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// User tests

func (s *Suite) TestCreateAndGetUser() {
	avatar := "https://example.com/a.png"
	u := newUser("u1", "alice", "alice@example.com")
	u.AvatarURL = &avatar
	s.Require().NoError(s.Store.CreateUser(s.Ctx, u))

	got, err := s.Store.GetUser(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)
	s.Equal("alice@example.com", got.Email)
	s.Equal("hash", got.PasswordHash)
	s.Require().NotNil(got.AvatarURL)
	s.Equal(avatar, *got.AvatarURL)
	s.True(u.CreatedAt.Equal(got.CreatedAt))

	byEmail, err := s.Store.GetUserByEmail(s.Ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), byEmail.ID)

	byName, err := s.Store.GetUserByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), byName.ID)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Store.GetUser(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.Store.GetUserByEmail(s.Ctx, "missing@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.Store.GetUserByUsername(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestLookupsAreCaseSensitive() {
	s.Require().NoError(s.Store.CreateUser(s.Ctx, newUser("u1", "Alice", "alice@example.com")))

	_, err := s.Store.GetUserByUsername(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.Store.GetUserByEmail(s.Ctx, "ALICE@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestCreateUserDuplicateEmail() {
	s.Require().NoError(s.Store.CreateUser(s.Ctx, newUser("u1", "alice", "alice@example.com")))

	err := s.Store.CreateUser(s.Ctx, newUser("u2", "bob", "alice@example.com"))
	s.ErrorIs(err, model.ErrDuplicateEmail)

	count, err := s.Store.CountUsers(s.Ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
	_, err = s.Store.GetUserByUsername(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestCreateUserDuplicateUsername() {
	s.Require().NoError(s.Store.CreateUser(s.Ctx, newUser("u1", "alice", "alice@example.com")))

	err := s.Store.CreateUser(s.Ctx, newUser("u2", "alice", "other@example.com"))
	s.ErrorIs(err, model.ErrDuplicateUsername)

	_, err = s.Store.GetUserByEmail(s.Ctx, "other@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestCreateUserBothTakenReportsEmail() {
	s.Require().NoError(s.Store.CreateUser(s.Ctx, newUser("u1", "alice", "alice@example.com")))

	err := s.Store.CreateUser(s.Ctx, newUser("u2", "alice", "alice@example.com"))
	s.ErrorIs(err, model.ErrDuplicateEmail)
}

func (s *Suite) TestConcurrentCreateSameEmail() {
	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser(fmt.Sprintf("u%d", i), fmt.Sprintf("user%d", i), "same@example.com")
			if err := s.Store.CreateUser(s.Ctx, u); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, succeeded)
	count, err := s.Store.CountUsers(s.Ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *Suite) TestGetUsers() {
	s.Require().NoError(s.Store.CreateUser(s.Ctx, newUser("u1", "alice", "alice@example.com")))
	s.Require().NoError(s.Store.CreateUser(s.Ctx, newUser("u2", "bob", "bob@example.com")))

	users, err := s.Store.GetUsers(s.Ctx, []model.UserID{"u1", "u2", "missing"})
	s.Require().NoError(err)
	s.Len(users, 2)
	s.Equal("alice", users["u1"].Username)
	s.Equal("bob", users["u2"].Username)

	empty, err := s.Store.GetUsers(s.Ctx, nil)
	s.Require().NoError(err)
	s.Empty(empty)
}

// Score tests

func (s *Suite) TestAppendScoreAssignsIncreasingSeq() {
	playedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var last int64
	for i := 0; i < 3; i++ {
		rec := &model.ScoreRecord{
			ID:       model.ScoreID(fmt.Sprintf("s%d", i)),
			UserID:   "u1",
			Score:    100 * i,
			Mode:     model.ModeWalls,
			PlayedAt: playedAt,
		}
		s.Require().NoError(s.Store.AppendScore(s.Ctx, rec))
		s.Greater(rec.Seq, last)
		last = rec.Seq
	}
}

func (s *Suite) TestListScoresFiltersByMode() {
	playedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	records := []*model.ScoreRecord{
		{ID: "s1", UserID: "u1", Score: 10, Mode: model.ModeWalls, PlayedAt: playedAt},
		{ID: "s2", UserID: "u1", Score: 20, Mode: model.ModePassThrough, PlayedAt: playedAt},
		{ID: "s3", UserID: "u2", Score: 30, Mode: model.ModeWalls, PlayedAt: playedAt},
	}
	for _, r := range records {
		s.Require().NoError(s.Store.AppendScore(s.Ctx, r))
	}

	all, err := s.Store.ListScores(s.Ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 3)

	walls := model.ModeWalls
	filtered, err := s.Store.ListScores(s.Ctx, &walls)
	s.Require().NoError(err)
	s.Len(filtered, 2)
	for _, r := range filtered {
		s.Equal(model.ModeWalls, r.Mode)
		s.NotZero(r.Seq)
	}
}

func (s *Suite) TestListScoresEmpty() {
	all, err := s.Store.ListScores(s.Ctx, nil)
	s.Require().NoError(err)
	s.Empty(all)
}

// Saved game tests

func (s *Suite) TestSaveAndGetSavedGame() {
	game := &model.SavedGame{
		UserID: "u1",
		State: model.GameState{
			Snake:     []model.Position{{X: 5, Y: 5}, {X: 4, Y: 5}},
			Food:      model.Position{X: 9, Y: 2},
			Direction: model.DirectionRight,
			Score:     30,
			Status:    model.StatusPaused,
			Mode:      model.ModeWalls,
			Speed:     150,
		},
		SavedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.Store.SaveGame(s.Ctx, game))

	got, err := s.Store.GetSavedGame(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal(game.State, got.State)

	game.State.Score = 40
	s.Require().NoError(s.Store.SaveGame(s.Ctx, game))
	got, err = s.Store.GetSavedGame(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal(40, got.State.Score)

	s.Require().NoError(s.Store.DeleteSavedGame(s.Ctx, "u1"))
	_, err = s.Store.GetSavedGame(s.Ctx, "u1")
	s.ErrorIs(err, model.ErrGameStateNotFound)
}

func (s *Suite) TestGetSavedGameNotFound() {
	_, err := s.Store.GetSavedGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameStateNotFound)
}
