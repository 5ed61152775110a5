package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/snakegame-go/internal/errutil"
	"github.com/mcoot/snakegame-go/internal/metrics"
	"github.com/mcoot/snakegame-go/internal/model"
	"github.com/mcoot/snakegame-go/internal/services/credential"
	"github.com/mcoot/snakegame-go/internal/services/session"
)

// Result is returned by a successful signup or login
type Result struct {
	Profile model.Profile
	Session *model.Session
}

// Service handles signup, login and session lookup
type Service struct {
	credentials *credential.Store
	sessions    *session.Registry
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New creates a new auth Service. m may be nil.
func New(credentials *credential.Store, sessions *session.Registry, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		credentials: credentials,
		sessions:    sessions,
		metrics:     m,
		logger:      logger,
	}
}

// Signup creates a user and an initial session for it
func (s *Service) Signup(ctx context.Context, username, email, password string) (*Result, error) {
	user, err := s.credentials.Create(ctx, username, email, password)
	if err != nil {
		s.metrics.RecordSignup(outcome(err, model.ErrDuplicateEmail, model.ErrDuplicateUsername,
			model.ErrInvalidUsername, model.ErrInvalidEmail, model.ErrInvalidPassword))
		return nil, err
	}

	sess := s.sessions.Issue(user.ID)
	s.metrics.RecordSignup(metrics.ResultSuccess)
	s.logger.Info("user signed up", "user_id", user.ID, "username", user.Username)

	return &Result{Profile: user.Profile(), Session: sess}, nil
}

// Login verifies credentials and issues a session. No session is issued on
// failure.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		s.metrics.RecordLogin(outcome(err, model.ErrInvalidCredentials))
		if errors.Is(err, model.ErrInvalidCredentials) {
			s.logger.Info("login rejected")
		}
		return nil, err
	}

	sess := s.sessions.Issue(user.ID)
	s.metrics.RecordLogin(metrics.ResultSuccess)
	s.logger.Info("user logged in", "user_id", user.ID)

	return &Result{Profile: user.Profile(), Session: sess}, nil
}

// Logout revokes the session. Always succeeds.
func (s *Service) Logout(token string) {
	s.sessions.Revoke(token)
}

// CurrentSession returns the profile bound to token. ok is false when the
// token is unknown, expired or its user no longer resolves.
func (s *Service) CurrentSession(ctx context.Context, token string) (profile *model.Profile, ok bool, err error) {
	user, _, ok, err := s.resolve(ctx, token)
	if !ok || err != nil {
		return nil, false, err
	}
	p := user.Profile()
	return &p, true, nil
}

// Authenticate returns the user and session for token or
// model.ErrInvalidSession
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, *model.Session, error) {
	user, sess, ok, err := s.resolve(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, model.ErrInvalidSession
	}
	return user, sess, nil
}

func (s *Service) resolve(ctx context.Context, token string) (*model.User, *model.Session, bool, error) {
	if token == "" {
		return nil, nil, false, nil
	}
	sess, ok := s.sessions.Resolve(token)
	if !ok {
		return nil, nil, false, nil
	}

	user, ok, err := s.credentials.FindByID(ctx, sess.UserID)
	if err != nil {
		errutil.LogError(s.logger, "session user lookup failed", err)
		return nil, nil, false, err
	}
	if !ok {
		return nil, nil, false, nil
	}
	return user, sess, true, nil
}

// outcome classifies err as a client failure if it matches any expected
// error, otherwise as an internal error
func outcome(err error, expected ...error) string {
	for _, e := range expected {
		if errors.Is(err, e) {
			return metrics.ResultFailure
		}
	}
	return metrics.ResultError
}
