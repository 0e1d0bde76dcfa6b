// Package session holds the explicit per-user session passed to every
// service call, and the stores that keep sessions alive between sign-in and
// sign-out.
package session

import (
	"alcyxob/coachhub/internal/domain"
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned for unknown, expired or signed-out sessions.
var ErrSessionNotFound = errors.New("session not found")

// Identity is what the identity provider vouches for.
type Identity struct {
	UserID      string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Record is the persisted part of a session.
type Record struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the resolved caller of one request: the signed-in identity and
// its profile as currently stored. Profile is nil before onboarding.
type Session struct {
	ID        string
	Identity  Identity
	Profile   *domain.User
	StartedAt time.Time
}

// New builds a Session from a stored record and the current profile.
func New(rec *Record, profile *domain.User) *Session {
	return &Session{
		ID:        rec.ID,
		Identity:  rec.Identity,
		Profile:   profile,
		StartedAt: rec.CreatedAt,
	}
}

// UserID is the identity subject.
func (s *Session) UserID() string { return s.Identity.UserID }

// Role is the profile role, or "" when onboarding is pending.
func (s *Session) Role() domain.Role {
	if s.Profile == nil {
		return ""
	}
	return s.Profile.Role
}

// NeedsOnboarding is true until the profile has a role.
func (s *Session) NeedsOnboarding() bool {
	return s.Profile == nil || s.Profile.NeedsOnboarding()
}

// DisplayName prefers the profile name over the provider's.
func (s *Session) DisplayName() string {
	if s.Profile != nil && s.Profile.DisplayName != "" {
		return s.Profile.DisplayName
	}
	if s.Identity.DisplayName != "" {
		return s.Identity.DisplayName
	}
	return "Unknown User"
}

// Store persists session records between sign-in and sign-out.
type Store interface {
	Save(ctx context.Context, rec *Record, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
}
