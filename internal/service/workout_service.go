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
)

var (
	ErrWorkoutNotFound    = domain.NewError(domain.KindNotFound, "workout not found")
	ErrExerciseNotFound   = domain.NewError(domain.KindNotFound, "exercise not found")
	ErrWorkoutForbidden   = domain.NewError(domain.KindForbidden, "not allowed to access this workout")
	ErrFeatureForbidden   = domain.NewError(domain.KindForbidden, "only trainers and admins can feature workouts")
	ErrFeaturePrivate     = domain.NewError(domain.KindInvalidArgument, "only public workouts can be featured")
	ErrAlreadyCloned      = domain.NewError(domain.KindAlreadyExists, "you already have a copy of this workout")
	ErrCloneSourcePrivate = domain.NewError(domain.KindForbidden, "cannot copy a private workout you do not own")
	ErrNothingToUpdate    = domain.NewError(domain.KindInvalidArgument, "no fields to update")
)

// CreateWorkoutInput is the authored part of a new workout.
type CreateWorkoutInput struct {
	Name            string            `json:"name" validate:"required"`
	Description     string            `json:"description" validate:"max=2000"`
	Difficulty      domain.Difficulty `json:"difficulty" validate:"omitempty,difficulty"`
	Recommendations string            `json:"recommendations" validate:"max=2000"`
}

// ExerciseInput describes one exercise to append.
type ExerciseInput struct {
	Name   string `json:"name" validate:"required"`
	Sets   int    `json:"sets" validate:"gte=0"`
	Reps   int    `json:"reps" validate:"gte=0"`
	Weight string `json:"weight" validate:"max=50"`
}

// WorkoutService manages workouts and their exercises.
type WorkoutService interface {
	Create(ctx context.Context, sess *session.Session, in CreateWorkoutInput) (*domain.Workout, error)
	Get(ctx context.Context, sess *session.Session, workoutID string) (*domain.Workout, error)
	ListByOwner(ctx context.Context, sess *session.Session, userID string) ([]domain.Workout, error)
	ListPublic(ctx context.Context, sess *session.Session) ([]domain.Workout, error)
	Update(ctx context.Context, sess *session.Session, workoutID string, patch domain.WorkoutPatch) (*domain.Workout, error)
	ToggleFeatured(ctx context.Context, sess *session.Session, workoutID string, featured bool) (*domain.Workout, error)
	Delete(ctx context.Context, sess *session.Session, workoutID string) error
	Clone(ctx context.Context, sess *session.Session, sourceID string) (*domain.Workout, error)

	AddExercise(ctx context.Context, sess *session.Session, workoutID string, in ExerciseInput) (*domain.Exercise, error)
	RemoveExercise(ctx context.Context, sess *session.Session, workoutID, exerciseID string) error
	ListExercises(ctx context.Context, sess *session.Session, workoutID string) ([]domain.Exercise, error)

	WatchOwner(ctx context.Context, sess *session.Session, userID string) (*realtime.Subscription[[]domain.Workout], error)
	WatchPublic(ctx context.Context, sess *session.Session) (*realtime.Subscription[[]domain.Workout], error)
	// Watch emits nil once the workout is gone or no longer visible.
	Watch(ctx context.Context, sess *session.Session, workoutID string) (*realtime.Subscription[*domain.Workout], error)
	WatchExercises(ctx context.Context, sess *session.Session, workoutID string) (*realtime.Subscription[[]domain.Exercise], error)
}

type workoutService struct {
	workouts  repository.WorkoutRepository
	exercises repository.ExerciseRepository
	users     repository.UserRepository
	validator *inputValidator
	publisher
}

// NewWorkoutService creates a new workout service.
func NewWorkoutService(store repository.Store, notifier realtime.Notifier, logger *slog.Logger) WorkoutService {
	return &workoutService{
		workouts:  store.Workouts,
		exercises: store.Exercises,
		users:     store.Users,
		validator: newInputValidator(),
		publisher: publisher{notifier: notifier, logger: logger},
	}
}

func (s *workoutService) Create(ctx context.Context, sess *session.Session, in CreateWorkoutInput) (*domain.Workout, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	if in.Difficulty == "" {
		in.Difficulty = domain.DifficultyBeginner
	}

	w := &domain.Workout{
		UserID:          actor.ID,
		Name:            in.Name,
		Description:     in.Description,
		Difficulty:      in.Difficulty,
		Recommendations: in.Recommendations,
		CreatedBy:       sess.DisplayName(),
	}
	if _, err := s.workouts.Create(ctx, w); err != nil {
		return nil, translate(err, nil)
	}
	s.publish(ctx, realtime.TopicWorkouts)
	s.logger.Info("workout created", "workoutId", w.ID, "userId", actor.ID)
	return w, nil
}

// load fetches a workout the actor may see.
func (s *workoutService) load(ctx context.Context, actor *domain.User, id string) (*domain.Workout, error) {
	w, err := s.workouts.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	ok, err := s.visible(ctx, actor, w)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWorkoutForbidden
	}
	return w, nil
}

func (s *workoutService) visible(ctx context.Context, actor *domain.User, w *domain.Workout) (bool, error) {
	if policy.CanViewWorkout(actor, w, nil) {
		return true, nil
	}
	if !actor.IsTrainer() {
		return false, nil
	}
	owner, err := loadUser(ctx, s.users, w.UserID)
	if err != nil {
		return false, err
	}
	return policy.CanViewWorkout(actor, w, owner), nil
}

func (s *workoutService) Get(ctx context.Context, sess *session.Session, workoutID string) (*domain.Workout, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, actor, workoutID)
}

func (s *workoutService) ListByOwner(ctx context.Context, sess *session.Session, userID string) ([]domain.Workout, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	target, err := resolveTarget(ctx, s.users, actor, userID)
	if err != nil {
		return nil, err
	}
	list, err := s.workouts.ListByOwner(ctx, target.ID)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return list, nil
}

func (s *workoutService) ListPublic(ctx context.Context, sess *session.Session) ([]domain.Workout, error) {
	if _, err := actorOf(sess); err != nil {
		return nil, err
	}
	list, err := s.workouts.ListPublic(ctx)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return list, nil
}

func (s *workoutService) Update(ctx context.Context, sess *session.Session, workoutID string, patch domain.WorkoutPatch) (*domain.Workout, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := s.validator.Struct(patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, ErrNothingToUpdate
	}

	w, err := s.load(ctx, actor, workoutID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditWorkout(actor, w) {
		return nil, ErrWorkoutForbidden
	}
	if patch.IsFeatured != nil && *patch.IsFeatured != w.IsFeatured {
		if !actor.IsTrainer() && !actor.IsAdmin() {
			return nil, ErrFeatureForbidden
		}
		public := w.IsPublic
		if patch.IsPublic != nil {
			public = *patch.IsPublic
		}
		if *patch.IsFeatured && !public {
			return nil, ErrFeaturePrivate
		}
	}
	// Featured only means something for public plans.
	if patch.IsPublic != nil && !*patch.IsPublic && w.IsFeatured {
		off := false
		patch.IsFeatured = &off
	}

	if err := s.workouts.Update(ctx, workoutID, patch); err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	s.publish(ctx, realtime.TopicWorkouts)

	updated, err := s.workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	return updated, nil
}

func (s *workoutService) ToggleFeatured(ctx context.Context, sess *session.Session, workoutID string, featured bool) (*domain.Workout, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if !actor.IsTrainer() && !actor.IsAdmin() {
		return nil, ErrFeatureForbidden
	}
	w, err := s.workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	if !policy.CanFeatureWorkout(actor, w) {
		return nil, ErrFeaturePrivate
	}

	if err := s.workouts.Update(ctx, workoutID, domain.WorkoutPatch{IsFeatured: &featured}); err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	s.publish(ctx, realtime.TopicWorkouts)
	s.logger.Info("workout featured toggled", "workoutId", workoutID, "featured", featured, "by", actor.ID)

	w.IsFeatured = featured
	return w, nil
}

func (s *workoutService) Delete(ctx context.Context, sess *session.Session, workoutID string) error {
	actor, err := actorOf(sess)
	if err != nil {
		return err
	}
	w, err := s.workouts.GetByID(ctx, workoutID)
	if err != nil {
		return translate(err, ErrWorkoutNotFound)
	}
	owner, err := loadUser(ctx, s.users, w.UserID)
	if err != nil {
		return err
	}
	if !policy.CanDeleteWorkout(actor, w, owner) {
		return ErrWorkoutForbidden
	}

	if err := s.workouts.Delete(ctx, workoutID); err != nil {
		return translate(err, ErrWorkoutNotFound)
	}
	s.publish(ctx, realtime.TopicWorkouts, realtime.ExercisesTopic(workoutID))
	s.logger.Info("workout deleted", "workoutId", workoutID, "by", actor.ID)
	return nil
}

// Clone copies a public (or own) workout and all of its exercises into a
// new private workout of the caller. A caller holds at most one copy per
// source; the pre-check gives a friendly error and the store's uniqueness
// rule settles concurrent attempts.
func (s *workoutService) Clone(ctx context.Context, sess *session.Session, sourceID string) (*domain.Workout, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	src, err := s.workouts.GetByID(ctx, sourceID)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	if !policy.CanCloneWorkout(actor, src) {
		return nil, ErrCloneSourcePrivate
	}

	_, err = s.workouts.FindClone(ctx, actor.ID, src.ID)
	switch {
	case err == nil:
		return nil, ErrAlreadyCloned
	case !errors.Is(err, repository.ErrNotFound):
		return nil, domain.Unavailable(err)
	}

	exercises, err := s.exercises.ListByWorkout(ctx, src.ID)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	copies := make([]domain.Exercise, len(exercises))
	for i, ex := range exercises {
		copies[i] = domain.Exercise{Name: ex.Name, Sets: ex.Sets, Reps: ex.Reps, Weight: ex.Weight}
	}

	sourceRef := src.ID
	clone := &domain.Workout{
		UserID:          actor.ID,
		Name:            src.Name,
		Description:     src.Description,
		Difficulty:      src.Difficulty,
		Recommendations: src.Recommendations,
		ClonedFrom:      &sourceRef,
		CreatedBy:       sess.DisplayName(),
	}
	if _, err := s.workouts.CreateWithExercises(ctx, clone, copies); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyCloned
		}
		return nil, domain.Unavailable(err)
	}
	s.publish(ctx, realtime.TopicWorkouts, realtime.ExercisesTopic(clone.ID))
	s.logger.Info("workout cloned", "sourceId", src.ID, "workoutId", clone.ID, "userId", actor.ID)
	return clone, nil
}

func (s *workoutService) AddExercise(ctx context.Context, sess *session.Session, workoutID string, in ExerciseInput) (*domain.Exercise, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	w, err := s.load(ctx, actor, workoutID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditWorkout(actor, w) {
		return nil, ErrWorkoutForbidden
	}

	ex := &domain.Exercise{
		WorkoutID: workoutID,
		Name:      in.Name,
		Sets:      in.Sets,
		Reps:      in.Reps,
		Weight:    strings.TrimSpace(in.Weight),
	}
	if _, err := s.exercises.Create(ctx, ex); err != nil {
		return nil, translate(err, nil)
	}
	s.publish(ctx, realtime.ExercisesTopic(workoutID))
	return ex, nil
}

func (s *workoutService) RemoveExercise(ctx context.Context, sess *session.Session, workoutID, exerciseID string) error {
	actor, err := actorOf(sess)
	if err != nil {
		return err
	}
	w, err := s.load(ctx, actor, workoutID)
	if err != nil {
		return err
	}
	if !policy.CanEditWorkout(actor, w) {
		return ErrWorkoutForbidden
	}
	if err := s.exercises.Delete(ctx, workoutID, exerciseID); err != nil {
		return translate(err, ErrExerciseNotFound)
	}
	s.publish(ctx, realtime.ExercisesTopic(workoutID))
	return nil
}

func (s *workoutService) ListExercises(ctx context.Context, sess *session.Session, workoutID string) ([]domain.Exercise, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, actor, workoutID); err != nil {
		return nil, err
	}
	list, err := s.exercises.ListByWorkout(ctx, workoutID)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return list, nil
}

func (s *workoutService) WatchOwner(ctx context.Context, sess *session.Session, userID string) (*realtime.Subscription[[]domain.Workout], error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	target, err := resolveTarget(ctx, s.users, actor, userID)
	if err != nil {
		return nil, err
	}
	ownerID := target.ID
	return realtime.Watch[[]domain.Workout](ctx, s.notifier, s.logger, func(ctx context.Context) ([]domain.Workout, error) {
		return s.workouts.ListByOwner(ctx, ownerID)
	}, realtime.TopicWorkouts)
}

func (s *workoutService) WatchPublic(ctx context.Context, sess *session.Session) (*realtime.Subscription[[]domain.Workout], error) {
	if _, err := actorOf(sess); err != nil {
		return nil, err
	}
	return realtime.Watch[[]domain.Workout](ctx, s.notifier, s.logger, s.workouts.ListPublic, realtime.TopicWorkouts)
}

func (s *workoutService) Watch(ctx context.Context, sess *session.Session, workoutID string) (*realtime.Subscription[*domain.Workout], error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, actor, workoutID); err != nil {
		return nil, err
	}
	return realtime.Watch[*domain.Workout](ctx, s.notifier, s.logger, func(ctx context.Context) (*domain.Workout, error) {
		w, err := s.load(ctx, actor, workoutID)
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrForbidden) {
			return nil, nil
		}
		return w, err
	}, realtime.TopicWorkouts)
}

func (s *workoutService) WatchExercises(ctx context.Context, sess *session.Session, workoutID string) (*realtime.Subscription[[]domain.Exercise], error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, actor, workoutID); err != nil {
		return nil, err
	}
	return realtime.Watch[[]domain.Exercise](ctx, s.notifier, s.logger, func(ctx context.Context) ([]domain.Exercise, error) {
		return s.exercises.ListByWorkout(ctx, workoutID)
	}, realtime.ExercisesTopic(workoutID), realtime.TopicWorkouts)
}
