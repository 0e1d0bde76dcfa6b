package domain

import "time"

// Role distinguishes what a profile may see and do.
type Role string

const (
	RoleTrainee Role = "trainee"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTrainee, RoleTrainer, RoleAdmin:
		return true
	}
	return false
}

// User is a profile: the role and trainer assignment of an authenticated
// identity. The ID is the identity provider's subject.
type User struct {
	ID          string    `bson:"_id" json:"id"`
	Role        Role      `bson:"role,omitempty" json:"role,omitempty"`
	TrainerID   *string   `bson:"trainerId,omitempty" json:"trainerId,omitempty"` // only meaningful for trainees
	DisplayName string    `bson:"displayName" json:"displayName"`
	Email       string    `bson:"email" json:"email"`
	AvatarKey   string    `bson:"avatarKey,omitempty" json:"-"` // object key in file storage
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsTrainee() bool { return u.Role == RoleTrainee }
func (u *User) IsTrainer() bool { return u.Role == RoleTrainer }
func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }

// NeedsOnboarding is true until a role has been chosen.
func (u *User) NeedsOnboarding() bool { return u.Role == "" }

// AssignedTrainer returns the trainer id, or "" when unassigned.
func (u *User) AssignedTrainer() string {
	if u.TrainerID == nil {
		return ""
	}
	return *u.TrainerID
}

// UserPatch lists the profile fields an admin (or a claim) may change.
// Nil fields are left untouched.
type UserPatch struct {
	Role         *Role
	TrainerID    *string
	ClearTrainer bool
	DisplayName  *string
	AvatarKey    *string
}

// UserFilter narrows a profile listing. Zero value lists everyone.
type UserFilter struct {
	Role       Role
	TrainerID  string
	Unassigned bool // trainees with no trainerId
}
