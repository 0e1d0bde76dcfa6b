package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/policy"
	"alcyxob/coachhub/internal/realtime"
	"alcyxob/coachhub/internal/repository"
	"alcyxob/coachhub/internal/session"
	"alcyxob/coachhub/internal/storage"
)

var (
	ErrUserNotFound          = domain.NewError(domain.KindNotFound, "user not found")
	ErrAlreadyOnboarded      = domain.NewError(domain.KindAlreadyExists, "profile is already set up")
	ErrInvalidRole           = domain.NewError(domain.KindInvalidArgument, "role must be trainee or trainer")
	ErrAdminRoleForbidden    = domain.NewError(domain.KindForbidden, "admin role is not available for this account")
	ErrNotATrainer           = domain.NewError(domain.KindInvalidArgument, "trainerId must reference a trainer")
	ErrTrainerOnlyTrainee    = domain.NewError(domain.KindInvalidArgument, "only trainees can have a trainer")
	ErrTrainerHasTrainees    = domain.NewError(domain.KindInvalidArgument, "trainer still has assigned trainees")
	ErrTraineeAlreadyClaimed = domain.NewError(domain.KindAlreadyExists, "trainee already has a trainer")
	ErrNotATrainee           = domain.NewError(domain.KindInvalidArgument, "only trainees can be claimed")
	ErrUsersForbidden        = domain.NewError(domain.KindForbidden, "not allowed to manage users")
	ErrNoAvatar              = domain.NewError(domain.KindNotFound, "user has no avatar")
)

const avatarPrefix = "avatars"

// OnboardingInput is the one-time role choice.
type OnboardingInput struct {
	Role        domain.Role `json:"role"`
	TrainerID   string      `json:"trainerId"`
	DisplayName string      `json:"displayName"`
}

// AdminUserUpdate is what an admin may change on any profile. Nil fields
// stay as they are; ClearTrainer unassigns a trainee.
type AdminUserUpdate struct {
	Role         *domain.Role `json:"role"`
	TrainerID    *string      `json:"trainerId"`
	ClearTrainer bool         `json:"clearTrainer"`
	DisplayName  *string      `json:"displayName"`
}

// AvatarUpload tells the client where to PUT the image.
type AvatarUpload struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	ExpiresIn int    `json:"expiresInSeconds"`
}

// Roster is a trainer's view of trainees.
type Roster struct {
	Trainees   []domain.User `json:"trainees"`
	Unassigned []domain.User `json:"unassigned"`
}

// ProfileService manages user profiles, onboarding and trainer assignment.
type ProfileService interface {
	// Resolve returns the stored profile of identity, or nil before onboarding.
	Resolve(ctx context.Context, identity session.Identity) (*domain.User, error)
	Onboard(ctx context.Context, sess *session.Session, in OnboardingInput) (*domain.User, error)
	Get(ctx context.Context, sess *session.Session, userID string) (*domain.User, error)
	// ListTrainers is open to onboarding sessions so a trainee can pick one.
	ListTrainers(ctx context.Context, sess *session.Session) ([]domain.User, error)
	ListUsers(ctx context.Context, sess *session.Session, filter domain.UserFilter) ([]domain.User, error)
	Roster(ctx context.Context, sess *session.Session) (*Roster, error)
	ClaimTrainee(ctx context.Context, sess *session.Session, traineeID string) (*domain.User, error)
	UpdateUser(ctx context.Context, sess *session.Session, userID string, in AdminUserUpdate) (*domain.User, error)
	AvatarUploadURL(ctx context.Context, sess *session.Session, contentType string) (*AvatarUpload, error)
	AvatarURL(ctx context.Context, sess *session.Session, userID string) (string, error)
}

type profileService struct {
	users       repository.UserRepository
	files       storage.FileStorage
	adminEmails []string
	publisher
}

// NewProfileService creates a new profile service. adminEmails lists the
// accounts allowed to onboard as admin.
func NewProfileService(store repository.Store, files storage.FileStorage, adminEmails []string, notifier realtime.Notifier, logger *slog.Logger) ProfileService {
	return &profileService{
		users:       store.Users,
		files:       files,
		adminEmails: adminEmails,
		publisher:   publisher{notifier: notifier, logger: logger},
	}
}

func (s *profileService) Resolve(ctx context.Context, identity session.Identity) (*domain.User, error) {
	return loadUser(ctx, s.users, identity.UserID)
}

func (s *profileService) isAdminEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, e := range s.adminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

func (s *profileService) Onboard(ctx context.Context, sess *session.Session, in OnboardingInput) (*domain.User, error) {
	if sess == nil {
		return nil, ErrNeedsOnboarding
	}
	if !sess.NeedsOnboarding() {
		return nil, ErrAlreadyOnboarded
	}
	switch in.Role {
	case domain.RoleTrainee, domain.RoleTrainer:
	case domain.RoleAdmin:
		if !s.isAdminEmail(sess.Identity.Email) {
			return nil, ErrAdminRoleForbidden
		}
	default:
		return nil, ErrInvalidRole
	}

	var trainerID *string
	if in.TrainerID != "" {
		if in.Role != domain.RoleTrainee {
			return nil, ErrTrainerOnlyTrainee
		}
		if err := s.requireTrainer(ctx, in.TrainerID); err != nil {
			return nil, err
		}
		id := in.TrainerID
		trainerID = &id
	}

	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = sess.DisplayName()
	}

	role := in.Role
	if sess.Profile != nil {
		// A profile without a role is finished in place.
		patch := domain.UserPatch{Role: &role, TrainerID: trainerID, DisplayName: &name}
		if err := s.users.Update(ctx, sess.Profile.ID, patch); err != nil {
			return nil, translate(err, ErrUserNotFound)
		}
	} else {
		u := &domain.User{
			ID:          sess.UserID(),
			Role:        role,
			TrainerID:   trainerID,
			DisplayName: name,
			Email:       sess.Identity.Email,
		}
		if err := s.users.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ErrAlreadyOnboarded
			}
			return nil, domain.Unavailable(err)
		}
	}
	s.publish(ctx, realtime.TopicUsers)
	s.logger.Info("profile onboarded", "userId", sess.UserID(), "role", role)

	u, err := s.users.GetByID(ctx, sess.UserID())
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *profileService) requireTrainer(ctx context.Context, id string) error {
	u, err := loadUser(ctx, s.users, id)
	if err != nil {
		return err
	}
	if u == nil || !u.IsTrainer() {
		return ErrNotATrainer
	}
	return nil
}

// Get returns a profile the caller may see: their own, anyone they oversee,
// and any trainer.
func (s *profileService) Get(ctx context.Context, sess *session.Session, userID string) (*domain.User, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	u, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !policy.Oversees(actor, u) && !u.IsTrainer() {
		return nil, ErrUsersForbidden
	}
	return u, nil
}

func (s *profileService) ListTrainers(ctx context.Context, sess *session.Session) ([]domain.User, error) {
	if sess == nil {
		return nil, ErrNeedsOnboarding
	}
	list, err := s.users.List(ctx, domain.UserFilter{Role: domain.RoleTrainer})
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return list, nil
}

// ListUsers returns any listing to admins. Trainers only get their own
// trainees or the unassigned pool, whatever else the filter asks for.
func (s *profileService) ListUsers(ctx context.Context, sess *session.Session, filter domain.UserFilter) ([]domain.User, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if !policy.CanListUsers(actor) {
		return nil, ErrUsersForbidden
	}
	if actor.IsTrainer() {
		if filter.Unassigned {
			filter = domain.UserFilter{Unassigned: true}
		} else {
			filter = domain.UserFilter{Role: domain.RoleTrainee, TrainerID: actor.ID}
		}
	}
	list, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return list, nil
}

func (s *profileService) Roster(ctx context.Context, sess *session.Session) (*Roster, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if !policy.CanListUsers(actor) {
		return nil, ErrUsersForbidden
	}
	own := domain.UserFilter{Role: domain.RoleTrainee, TrainerID: actor.ID}
	if actor.IsAdmin() {
		own = domain.UserFilter{Role: domain.RoleTrainee}
	}
	trainees, err := s.users.List(ctx, own)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	unassigned, err := s.users.List(ctx, domain.UserFilter{Unassigned: true})
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return &Roster{Trainees: trainees, Unassigned: unassigned}, nil
}

// ClaimTrainee assigns an unassigned trainee to the calling trainer. When two
// trainers race, the store's conditional update lets exactly one win.
func (s *profileService) ClaimTrainee(ctx context.Context, sess *session.Session, traineeID string) (*domain.User, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if !actor.IsTrainer() {
		return nil, domain.NewError(domain.KindForbidden, "only trainers can claim trainees")
	}
	trainee, err := loadUser(ctx, s.users, traineeID)
	if err != nil {
		return nil, err
	}
	switch {
	case trainee == nil:
		return nil, ErrUserNotFound
	case !trainee.IsTrainee():
		return nil, ErrNotATrainee
	case !policy.CanClaimTrainee(actor, trainee):
		return nil, ErrTraineeAlreadyClaimed
	}

	if err := s.users.ClaimTrainee(ctx, traineeID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrUpdateFailed) {
			return nil, ErrTraineeAlreadyClaimed
		}
		return nil, translate(err, ErrUserNotFound)
	}
	s.publish(ctx, realtime.TopicUsers)
	s.logger.Info("trainee claimed", "traineeId", traineeID, "trainerId", actor.ID)

	trainee.TrainerID = &actor.ID
	return trainee, nil
}

func (s *profileService) UpdateUser(ctx context.Context, sess *session.Session, userID string, in AdminUserUpdate) (*domain.User, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if !policy.CanAdministerUsers(actor) {
		return nil, ErrUsersForbidden
	}
	target, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	patch := domain.UserPatch{ClearTrainer: in.ClearTrainer}
	role := target.Role
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.NewError(domain.KindInvalidArgument, "role must be trainee, trainer or admin")
		}
		role = *in.Role
		patch.Role = &role
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" {
			return nil, domain.NewError(domain.KindInvalidArgument, "displayName cannot be empty")
		}
		patch.DisplayName = &name
	}
	if in.TrainerID != nil && *in.TrainerID != "" && !in.ClearTrainer {
		if role != domain.RoleTrainee {
			return nil, ErrTrainerOnlyTrainee
		}
		if *in.TrainerID == target.ID {
			return nil, ErrNotATrainer
		}
		if err := s.requireTrainer(ctx, *in.TrainerID); err != nil {
			return nil, err
		}
		patch.TrainerID = in.TrainerID
	}
	if role != domain.RoleTrainee && target.AssignedTrainer() != "" {
		patch.ClearTrainer = true
	}
	// Demoting a trainer would leave trainees pointing at a non-trainer.
	if target.IsTrainer() && role != domain.RoleTrainer {
		assigned, err := s.users.List(ctx, domain.UserFilter{Role: domain.RoleTrainee, TrainerID: target.ID})
		if err != nil {
			return nil, domain.Unavailable(err)
		}
		if len(assigned) > 0 {
			return nil, ErrTrainerHasTrainees
		}
	}

	if err := s.users.Update(ctx, userID, patch); err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	s.publish(ctx, realtime.TopicUsers)
	s.logger.Info("user updated by admin", "userId", userID, "adminId", actor.ID)

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return u, nil
}

// AvatarUploadURL points the profile at a fresh object key and returns a
// presigned PUT for it. The previous object is removed.
func (s *profileService) AvatarUploadURL(ctx context.Context, sess *session.Session, contentType string) (*AvatarUpload, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if err := storage.ValidateImageType(contentType); err != nil {
		return nil, domain.NewError(domain.KindInvalidArgument, err.Error())
	}

	key := storage.NewObjectKey(avatarPrefix, actor.ID, contentType)
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	if err := s.users.Update(ctx, actor.ID, domain.UserPatch{AvatarKey: &key}); err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	if old := actor.AvatarKey; old != "" {
		if err := s.files.DeleteObject(ctx, old); err != nil {
			s.logger.Warn("failed to delete previous avatar", "key", old, "error", err)
		}
	}
	s.publish(ctx, realtime.TopicUsers)

	return &AvatarUpload{UploadURL: url, ObjectKey: key, ExpiresIn: int(storage.DefaultPresignedURLExpiry.Seconds())}, nil
}

func (s *profileService) AvatarURL(ctx context.Context, sess *session.Session, userID string) (string, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return "", err
	}
	u := actor
	if userID != "" && userID != actor.ID {
		if u, err = loadUser(ctx, s.users, userID); err != nil {
			return "", err
		}
		if u == nil {
			return "", ErrUserNotFound
		}
	}
	if u.AvatarKey == "" {
		return "", ErrNoAvatar
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, u.AvatarKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", domain.Unavailable(err)
	}
	return url, nil
}
