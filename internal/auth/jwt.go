package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/coachhub/internal/session"

	"github.com/golang-jwt/jwt/v4"
)

const jwtIssuer = "coachhub"

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 tokens for locally registered accounts.
type JWTIssuer struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewJWTIssuer panics on an empty secret; config validation rejects it earlier.
func NewJWTIssuer(secret string, expiration time.Duration) *JWTIssuer {
	if secret == "" {
		panic("JWT secret cannot be empty")
	}
	if expiration <= 0 {
		expiration = time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), expiration: expiration, now: time.Now}
}

func (j *JWTIssuer) Provider() string { return "local" }

// Issue creates a token bound to sessionID.
func (j *JWTIssuer) Issue(identity session.Identity, sessionID string) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.expiration)
	claims := &jwtClaims{
		UserID:    identity.UserID,
		SessionID: sessionID,
		Name:      identity.DisplayName,
		Email:     identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Expiration is the lifetime of issued tokens.
func (j *JWTIssuer) Expiration() time.Duration { return j.expiration }

func (j *JWTIssuer) Verify(_ context.Context, tokenString string) (*Claims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.SessionID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return &Claims{
		SessionID: claims.SessionID,
		Identity: session.Identity{
			UserID:      claims.UserID,
			DisplayName: claims.Name,
			Email:       claims.Email,
		},
		Provider:  j.Provider(),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke is a no-op: deleting the session record is what signs a local
// token out.
func (j *JWTIssuer) Revoke(context.Context, *Claims) error { return nil }
