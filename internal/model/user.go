package model

import "time"

// UserID uniquely identifies a registered user (UUID v4 string)
type UserID string

// User is a registered identity. Users are created once and never mutated.
type User struct {
	ID           UserID
	Username     string // case-sensitive, unique
	Email        string // unique
	PasswordHash string // never leaves the credential boundary
	AvatarURL    *string
	CreatedAt    time.Time
}

// Profile is the public view of a User
type Profile struct {
	ID        UserID
	Username  string
	Email     string
	AvatarURL *string
	CreatedAt time.Time
}

// Profile strips credential material from the user
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// Session binds an opaque token to a user for a bounded time
type Session struct {
	Token     string
	UserID    UserID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
