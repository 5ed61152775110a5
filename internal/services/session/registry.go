// Package session maps opaque session tokens to user ids.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/snakegame-go/internal/dependencies/clock"
	"github.com/mcoot/snakegame-go/internal/dependencies/ids"
	"github.com/mcoot/snakegame-go/internal/model"
)

// Config holds configuration for the session registry
type Config struct {
	// TTL is how long a session stays valid after issue
	TTL time.Duration

	// CleanupInterval is how often Run sweeps expired sessions
	CleanupInterval time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		TTL:             24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// Registry holds live sessions in memory. Sessions do not survive a
// restart. A user may hold any number of sessions.
type Registry struct {
	clock clock.Clock
	ids   ids.Generator

	mu       sync.RWMutex
	sessions map[string]*model.Session

	cfg Config
}

// New creates a new session Registry
func New(clock clock.Clock, ids ids.Generator, cfg Config) *Registry {
	defaults := DefaultConfig()
	if cfg.TTL == 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}
	return &Registry{
		clock:    clock,
		ids:      ids,
		sessions: make(map[string]*model.Session),
		cfg:      cfg,
	}
}

// Issue creates a session for userID
func (r *Registry) Issue(userID model.UserID) *model.Session {
	now := r.clock.Now()
	session := &model.Session{
		Token:     r.ids.SessionToken(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(r.cfg.TTL),
	}

	r.mu.Lock()
	r.sessions[session.Token] = session
	r.mu.Unlock()

	s := *session
	return &s
}

// Resolve returns the live session for token
func (r *Registry) Resolve(token string) (*model.Session, bool) {
	r.mu.RLock()
	session, ok := r.sessions[token]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if session.Expired(r.clock.Now()) {
		r.Revoke(token)
		return nil, false
	}

	s := *session
	return &s, true
}

// Revoke removes a session. Unknown tokens are ignored.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Len returns the number of stored sessions, including expired ones not yet swept
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CleanExpired removes expired sessions and returns how many were removed
func (r *Registry) CleanExpired() int {
	now := r.clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every CleanupInterval until ctx is done
func (r *Registry) Run(ctx context.Context, logger *slog.Logger) {
	ticker := time.NewTicker(r.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.CleanExpired(); n > 0 {
				logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
