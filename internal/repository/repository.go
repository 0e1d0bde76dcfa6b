package repository

import (
	"alcyxob/coachhub/internal/domain"
	"context"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate document")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// DefaultHistoryLimit is the number of completion records returned when the
// caller does not ask for a specific amount.
const DefaultHistoryLimit = 7

// AccountRepository stores local email/password credentials.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// UserRepository stores profiles keyed by identity subject.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) error
	// ClaimTrainee sets trainerId on a trainee that has none. It returns
	// ErrUpdateFailed when the trainee already has a trainer.
	ClaimTrainee(ctx context.Context, traineeID, trainerID string) error
}

// WorkoutRepository stores workout documents. Delete and CreateWithExercises
// touch the exercises collection too and must be atomic.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Workout, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Workout, error) // newest first
	ListPublic(ctx context.Context) ([]domain.Workout, error)                 // featured first, then newest first
	Update(ctx context.Context, id string, patch domain.WorkoutPatch) error
	Delete(ctx context.Context, id string) error
	// FindClone returns the requester's clone of sourceID, or ErrNotFound.
	FindClone(ctx context.Context, userID, sourceID string) (*domain.Workout, error)
	// CreateWithExercises inserts the workout and all exercises in one atomic
	// write. Exercise IDs, WorkoutID and timestamps are assigned here.
	CreateWithExercises(ctx context.Context, workout *domain.Workout, exercises []domain.Exercise) (string, error)
	CountByOwner(ctx context.Context, userID string) (int64, error)
}

// ExerciseRepository stores the exercises of a workout.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (string, error)
	Delete(ctx context.Context, workoutID, exerciseID string) error
	ListByWorkout(ctx context.Context, workoutID string) ([]domain.Exercise, error) // insertion order
	CountByWorkout(ctx context.Context, workoutID string) (int64, error)
}

// FeedbackRepository stores feedback messages.
type FeedbackRepository interface {
	Create(ctx context.Context, msg *domain.Message) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Message, error) // newest first
	// MarkRead flips read=true on every unread trainee-authored message of the
	// pair in one atomic write and returns how many changed.
	MarkRead(ctx context.Context, trainerID, traineeID string) (int64, error)
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context, trainerID string) (int64, error)
}

// ProgressRepository stores completion records. Records are never updated or
// deleted.
type ProgressRepository interface {
	Create(ctx context.Context, record *domain.CompletionRecord) (string, error)
	History(ctx context.Context, userID string, limit int64) ([]domain.CompletionRecord, error) // newest first
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// Store bundles every repository of one backend.
type Store struct {
	Accounts  AccountRepository
	Users     UserRepository
	Workouts  WorkoutRepository
	Exercises ExerciseRepository
	Feedback  FeedbackRepository
	Progress  ProgressRepository
}
