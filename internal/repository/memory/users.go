package memory

import (
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/repository"
	"context"
	"errors"
	"sort"
)

type userRepo struct{ s *state }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		return errors.New("user id is required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	u := *user
	u.TrainerID = cloneString(user.TrainerID)
	r.s.users[u.ID] = u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.TrainerID = cloneString(u.TrainerID)
	return &u, nil
}

func (r *userRepo) List(_ context.Context, filter domain.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []domain.User{}
	for _, u := range r.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.TrainerID != "" && u.AssignedTrainer() != filter.TrainerID {
			continue
		}
		if filter.Unassigned && (u.Role != domain.RoleTrainee || u.AssignedTrainer() != "") {
			continue
		}
		u.TrainerID = cloneString(u.TrainerID)
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].DisplayName != users[j].DisplayName {
			return users[i].DisplayName < users[j].DisplayName
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *userRepo) Update(_ context.Context, id string, patch domain.UserPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.AvatarKey != nil {
		u.AvatarKey = *patch.AvatarKey
	}
	switch {
	case patch.ClearTrainer:
		u.TrainerID = nil
	case patch.TrainerID != nil:
		u.TrainerID = cloneString(patch.TrainerID)
	}
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

func (r *userRepo) ClaimTrainee(_ context.Context, traineeID, trainerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[traineeID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Role != domain.RoleTrainee || u.AssignedTrainer() != "" {
		return repository.ErrUpdateFailed
	}
	u.TrainerID = &trainerID
	u.UpdatedAt = r.s.now()
	r.s.users[traineeID] = u
	return nil
}
