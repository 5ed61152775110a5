package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"github.com/mcoot/snakegame-go/internal/dependencies/ids"
	"github.com/mcoot/snakegame-go/internal/dependencies/mocks"
	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = New(s.clock, ids.New(), DefaultConfig())
}

func (s *RegistrySuite) TestIssueAndResolve() {
	issued := s.registry.Issue("u1")
	s.NotEmpty(issued.Token)
	s.Equal(s.clock.Now(), issued.CreatedAt)
	s.Equal(s.clock.Now().Add(24*time.Hour), issued.ExpiresAt)

	resolved, ok := s.registry.Resolve(issued.Token)
	s.Require().True(ok)
	s.Equal(model.UserID("u1"), resolved.UserID)
}

func (s *RegistrySuite) TestResolveUnknownToken() {
	_, ok := s.registry.Resolve("nope")
	s.False(ok)
}

func (s *RegistrySuite) TestTokensAreDistinct() {
	a := s.registry.Issue("u1")
	b := s.registry.Issue("u1")
	s.NotEqual(a.Token, b.Token)

	// Both sessions for the same user live side by side
	_, ok := s.registry.Resolve(a.Token)
	s.True(ok)
	_, ok = s.registry.Resolve(b.Token)
	s.True(ok)
}

func (s *RegistrySuite) TestRevoke() {
	issued := s.registry.Issue("u1")
	s.registry.Revoke(issued.Token)

	_, ok := s.registry.Resolve(issued.Token)
	s.False(ok)

	// Idempotent, unknown tokens ignored
	s.registry.Revoke(issued.Token)
	s.registry.Revoke("never-issued")
}

func (s *RegistrySuite) TestRevokeOnlyAffectsOneSession() {
	a := s.registry.Issue("u1")
	b := s.registry.Issue("u1")
	s.registry.Revoke(a.Token)

	_, ok := s.registry.Resolve(b.Token)
	s.True(ok)
}

func (s *RegistrySuite) TestExpiry() {
	issued := s.registry.Issue("u1")

	s.clock.Advance(23 * time.Hour)
	_, ok := s.registry.Resolve(issued.Token)
	s.True(ok)

	s.clock.Advance(time.Hour)
	_, ok = s.registry.Resolve(issued.Token)
	s.False(ok)
	s.Zero(s.registry.Len(), "expired session removed on resolve")
}

func (s *RegistrySuite) TestCleanExpired() {
	s.registry.Issue("u1")
	s.clock.Advance(12 * time.Hour)
	fresh := s.registry.Issue("u2")
	s.clock.Advance(13 * time.Hour)

	s.Equal(1, s.registry.CleanExpired())
	s.Equal(1, s.registry.Len())
	_, ok := s.registry.Resolve(fresh.Token)
	s.True(ok)
}

func (s *RegistrySuite) TestResolveReturnsCopy() {
	issued := s.registry.Issue("u1")
	resolved, _ := s.registry.Resolve(issued.Token)
	resolved.UserID = "mallory"

	again, _ := s.registry.Resolve(issued.Token)
	s.Equal(model.UserID("u1"), again.UserID)
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	r := New(clk, mocks.NewMockIDs(), Config{TTL: time.Hour, CleanupInterval: time.Millisecond})
	r.Issue("u1")
	clk.Advance(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, testutil.NopLogger())
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, time.Millisecond)

	cancel()
	<-done
}
