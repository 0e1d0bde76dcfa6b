// Package auth verifies bearer tokens issued by the configured identity
// provider and turns them into session claims.
package auth

import (
	"context"
	"errors"
	"time"

	"alcyxob/coachhub/internal/session"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Claims is what a verified token says about its bearer.
type Claims struct {
	SessionID string
	Identity  session.Identity
	Provider  string
	ExpiresAt time.Time
	// OpensSession is set by externally issued tokens, which open a session
	// on first use. Local tokens are bound to the session created at login.
	OpensSession bool
}

// Verifier checks bearer tokens for one identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
	// Revoke invalidates whatever the provider keeps for the bearer on
	// sign-out. Providers without server-side state do nothing.
	Revoke(ctx context.Context, claims *Claims) error
	Provider() string
}
