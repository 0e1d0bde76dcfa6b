package api

import (
	"time"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/session"
)

// UserResponse is a profile as the API shows it.
type UserResponse struct {
	ID          string      `json:"id"`
	Role        domain.Role `json:"role"`
	DisplayName string      `json:"displayName"`
	Email       string      `json:"email"`
	TrainerID   *string     `json:"trainerId,omitempty"`
	HasAvatar   bool        `json:"hasAvatar"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) *UserResponse {
	if user == nil {
		return nil
	}
	resp := &UserResponse{
		ID:          user.ID,
		Role:        user.Role,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		HasAvatar:   user.AvatarKey != "",
		CreatedAt:   user.CreatedAt,
	}
	if id := user.AssignedTrainer(); id != "" {
		resp.TrainerID = &id
	}
	return resp
}

// MapUsersToResponse converts a slice of domain.User to UserResponse DTOs.
func MapUsersToResponse(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = *MapUserToResponse(&users[i])
	}
	return responses
}

func mapSessionToMe(sess *session.Session) MeResponse {
	return MeResponse{
		UserID:          sess.UserID(),
		DisplayName:     sess.DisplayName(),
		Email:           sess.Identity.Email,
		Role:            sess.Role(),
		NeedsOnboarding: sess.NeedsOnboarding(),
		Profile:         MapUserToResponse(sess.Profile),
	}
}
