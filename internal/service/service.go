// Package service applies the role rules of internal/policy on top of the
// repositories. Every call takes the caller's explicit session.
package service

import (
	"context"
	"errors"
	"log/slog"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/policy"
	"alcyxob/coachhub/internal/realtime"
	"alcyxob/coachhub/internal/repository"
	"alcyxob/coachhub/internal/session"
)

// ErrNeedsOnboarding is returned to signed-in users that have not picked a
// role yet.
var ErrNeedsOnboarding = domain.NewError(domain.KindForbidden, "profile needs onboarding")

// actorOf returns the caller's profile, refusing sessions that are still
// onboarding.
func actorOf(sess *session.Session) (*domain.User, error) {
	if sess == nil || sess.NeedsOnboarding() {
		return nil, ErrNeedsOnboarding
	}
	return sess.Profile, nil
}

// translate maps repository failures onto error kinds. notFound is returned
// for repository.ErrNotFound.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		if notFound == nil {
			return domain.ErrNotFound
		}
		return notFound
	case errors.Is(err, repository.ErrDuplicate):
		return domain.ErrAlreadyExists
	}
	return domain.Unavailable(err)
}

// publisher announces successful writes. A failed notification never fails
// the write that triggered it.
type publisher struct {
	notifier realtime.Notifier
	logger   *slog.Logger
}

func (p publisher) publish(ctx context.Context, topics ...string) {
	for _, t := range topics {
		if err := p.notifier.Publish(ctx, t); err != nil {
			p.logger.Warn("change notification failed", "topic", t, "error", err)
		}
	}
}

// loadUser returns the profile, or nil when it does not exist.
func loadUser(ctx context.Context, users repository.UserRepository, id string) (*domain.User, error) {
	if id == "" {
		return nil, nil
	}
	u, err := users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return u, nil
}

// resolveTarget returns the profile whose private data the actor asks for
// and checks that the actor may see it. An empty id means the actor.
func resolveTarget(ctx context.Context, users repository.UserRepository, actor *domain.User, id string) (*domain.User, error) {
	if id == "" || id == actor.ID {
		return actor, nil
	}
	target, err := loadUser(ctx, users, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}
	if !policy.Oversees(actor, target) {
		return nil, domain.NewError(domain.KindForbidden, "not allowed to view this user's data")
	}
	return target, nil
}
