package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/coachhub/internal/session"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier accepts Firebase ID tokens minted by the client SDK.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initializes the Firebase Admin SDK from a service
// account file.
func NewFirebaseVerifier(ctx context.Context, credentialsPath string) (*FirebaseVerifier, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path is required")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (f *FirebaseVerifier) Provider() string { return "firebase" }

// Verify checks signature, expiry and revocation. One session is kept per
// sign-in, keyed by the uid and the original auth time.
func (f *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Claims, error) {
	token, err := f.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		switch {
		case fbauth.IsIDTokenRevoked(err):
			return nil, ErrTokenRevoked
		case fbauth.IsIDTokenExpired(err):
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return firebaseClaims(token), nil
}

func firebaseClaims(token *fbauth.Token) *Claims {
	name, _ := token.Claims["name"].(string)
	email, _ := token.Claims["email"].(string)
	return &Claims{
		SessionID: fmt.Sprintf("firebase:%s:%d", token.UID, token.AuthTime),
		Identity: session.Identity{
			UserID:      token.UID,
			DisplayName: name,
			Email:       email,
		},
		Provider:     "firebase",
		ExpiresAt:    time.Unix(token.Expires, 0),
		OpensSession: true,
	}
}

// Revoke invalidates the user's refresh tokens so the ID token that was
// presented stops verifying.
func (f *FirebaseVerifier) Revoke(ctx context.Context, claims *Claims) error {
	return f.client.RevokeRefreshTokens(ctx, claims.Identity.UserID)
}
