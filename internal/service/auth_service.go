package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"alcyxob/coachhub/internal/auth"
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"alcyxob/coachhub/internal/session"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrLocalAuthDisabled    = errors.New("email/password sign-in is not enabled")
	ErrSessionExpired       = errors.New("session has ended, sign in again")
)

// RegisterInput creates a local account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginResult is a signed-in local session and the token bound to it.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Session   *session.Session
}

// AuthService owns the session lifecycle: sign-in creates a session, every
// request resolves one, sign-out tears it down.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Authenticate turns a bearer token into the caller's session.
	Authenticate(ctx context.Context, token string) (*session.Session, error)
	Logout(ctx context.Context, sess *session.Session) error
}

type authService struct {
	accounts   repository.AccountRepository
	users      repository.UserRepository
	sessions   session.Store
	verifier   auth.Verifier
	issuer     *auth.JWTIssuer // nil unless the local provider is configured
	sessionTTL time.Duration
	validator  *inputValidator
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthService creates a new instance of authService. issuer may be nil
// when tokens come from an external provider.
func NewAuthService(store repository.Store, sessions session.Store, verifier auth.Verifier, issuer *auth.JWTIssuer, sessionTTL time.Duration, logger *slog.Logger) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &authService{
		accounts:   store.Accounts,
		users:      store.Users,
		sessions:   sessions,
		verifier:   verifier,
		issuer:     issuer,
		sessionTTL: sessionTTL,
		validator:  newInputValidator(),
		logger:     logger,
		now:        time.Now,
	}
}

// Register handles new local account registration. The profile is created
// later, at onboarding.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	if s.issuer == nil {
		return nil, ErrLocalAuthDisabled
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	_, err := s.accounts.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Unavailable(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	account := &domain.Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
	}
	if _, err := s.accounts.Create(ctx, account); err != nil {
		// The unique email index catches a concurrent registration.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, domain.Unavailable(err)
	}
	s.logger.Info("account registered", "accountId", account.ID)

	account.PasswordHash = ""
	return account, nil
}

// Login checks the password, opens a session and issues a token bound to it.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if s.issuer == nil {
		return nil, ErrLocalAuthDisabled
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrAuthenticationFailed
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, domain.Unavailable(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}

	rec := &session.Record{
		ID:        uuid.NewString(),
		Identity:  session.Identity{UserID: account.ID, DisplayName: account.Name, Email: account.Email},
		Provider:  s.issuer.Provider(),
		CreatedAt: s.now().UTC(),
	}
	ttl := s.sessionTTL
	if exp := s.issuer.Expiration(); exp < ttl {
		ttl = exp
	}
	if err := s.sessions.Save(ctx, rec, ttl); err != nil {
		return nil, domain.Unavailable(err)
	}

	token, expiresAt, err := s.issuer.Issue(rec.Identity, rec.ID)
	if err != nil {
		_ = s.sessions.Delete(ctx, rec.ID)
		return nil, ErrTokenGeneration
	}

	profile, err := loadUser(ctx, s.users, account.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("signed in", "userId", account.ID, "sessionId", rec.ID)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Session: session.New(rec, profile)}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	claims, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	rec, err := s.sessions.Get(ctx, claims.SessionID)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		if !claims.OpensSession {
			return nil, ErrSessionExpired
		}
		if rec, err = s.openExternal(ctx, claims); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, domain.Unavailable(err)
	}
	if rec.Identity.UserID != claims.Identity.UserID {
		return nil, auth.ErrInvalidToken
	}

	profile, err := loadUser(ctx, s.users, rec.Identity.UserID)
	if err != nil {
		return nil, err
	}
	return session.New(rec, profile), nil
}

// openExternal records a session the first time a provider token is seen.
func (s *authService) openExternal(ctx context.Context, claims *auth.Claims) (*session.Record, error) {
	ttl := s.sessionTTL
	if left := claims.ExpiresAt.Sub(s.now()); left < ttl {
		ttl = left
	}
	if ttl <= 0 {
		return nil, auth.ErrTokenExpired
	}
	rec := &session.Record{
		ID:        claims.SessionID,
		Identity:  claims.Identity,
		Provider:  claims.Provider,
		CreatedAt: s.now().UTC(),
	}
	if err := s.sessions.Save(ctx, rec, ttl); err != nil {
		return nil, domain.Unavailable(err)
	}
	s.logger.Info("session opened", "userId", rec.Identity.UserID, "provider", rec.Provider)
	return rec, nil
}

// Logout deletes the session and asks the provider to revoke the bearer's
// tokens, so the same token is refused afterwards.
func (s *authService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return domain.Unavailable(err)
	}
	if err := s.verifier.Revoke(ctx, &auth.Claims{SessionID: sess.ID, Identity: sess.Identity}); err != nil {
		s.logger.Warn("token revocation failed", "userId", sess.UserID(), "error", err)
	}
	s.logger.Info("signed out", "userId", sess.UserID(), "sessionId", sess.ID)
	return nil
}
