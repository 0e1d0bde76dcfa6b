package auth

import (
	"context"
	"testing"
	"time"

	"alcyxob/coachhub/internal/session"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Hour)
	id := session.Identity{UserID: "u1", DisplayName: "Ana", Email: "ana@example.com"}

	token, expiresAt, err := issuer.Issue(id, "s1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := issuer.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, id, claims.Identity)
	assert.Equal(t, "local", claims.Provider)
	assert.False(t, claims.OpensSession)
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := issuer.Issue(session.Identity{UserID: "u1"}, "s1")
	require.NoError(t, err)

	_, err = issuer.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTIssuer_RejectsForeignTokens(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Hour)
	other := NewJWTIssuer("other-secret", time.Hour)

	token, _, err := other.Issue(session.Identity{UserID: "u1"}, "s1")
	require.NoError(t, err)
	_, err = issuer.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Signed correctly but without a session binding.
	unbound := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwtClaims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := unbound.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTIssuer_EmptySecretPanics(t *testing.T) {
	assert.Panics(t, func() { NewJWTIssuer("", time.Hour) })
}
