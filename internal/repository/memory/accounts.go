package memory

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"strings"
)

type accountRepo struct{ s *state }

func (r *accountRepo) Create(_ context.Context, account *domain.Account) (string, error) {
	if account.Email == "" || account.PasswordHash == "" {
		return "", errors.New("account email and password hash are required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(account.Email)
	for _, a := range r.s.accounts {
		if a.Email == email {
			return "", repository.ErrDuplicate
		}
	}
	account.ID, _ = r.s.next()
	account.Email = email
	account.CreatedAt = r.s.now()
	r.s.accounts[account.ID] = *account
	return account.ID, nil
}

func (r *accountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, a := range r.s.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}
