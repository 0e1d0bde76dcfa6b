package service

import (
	"context"
	"log/slog"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/policy"
	"alcyxob/coachhub/internal/realtime"
	"alcyxob/coachhub/internal/repository"
	"alcyxob/coachhub/internal/session"
)

var ErrCompleteForbidden = domain.NewError(domain.KindForbidden, "only the owner can complete a workout")

// ProgressService records completed workouts and derives history and stats.
type ProgressService interface {
	// RecordCompletion snapshots the workout's current exercises.
	RecordCompletion(ctx context.Context, sess *session.Session, workoutID string) (*domain.CompletionRecord, error)
	// History returns the latest completions, newest first. A limit of zero
	// or less uses repository.DefaultHistoryLimit.
	History(ctx context.Context, sess *session.Session, userID string, limit int64) ([]domain.CompletionRecord, error)
	Stats(ctx context.Context, sess *session.Session, userID string) (*domain.Stats, error)
	// WatchHistory re-sends History whenever the user completes a workout.
	WatchHistory(ctx context.Context, sess *session.Session, userID string, limit int64) (*realtime.Subscription[[]domain.CompletionRecord], error)
}

type progressService struct {
	progress  repository.ProgressRepository
	workouts  repository.WorkoutRepository
	exercises repository.ExerciseRepository
	users     repository.UserRepository
	publisher
}

// NewProgressService creates a new progress service.
func NewProgressService(store repository.Store, notifier realtime.Notifier, logger *slog.Logger) ProgressService {
	return &progressService{
		progress:  store.Progress,
		workouts:  store.Workouts,
		exercises: store.Exercises,
		users:     store.Users,
		publisher: publisher{notifier: notifier, logger: logger},
	}
}

func (s *progressService) RecordCompletion(ctx context.Context, sess *session.Session, workoutID string) (*domain.CompletionRecord, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	if workoutID == "" {
		return nil, domain.NewError(domain.KindInvalidArgument, "workoutId is required")
	}
	w, err := s.workouts.GetByID(ctx, workoutID)
	if err != nil {
		return nil, translate(err, ErrWorkoutNotFound)
	}
	if !policy.CanCompleteWorkout(actor, w) {
		return nil, ErrCompleteForbidden
	}
	exercises, err := s.exercises.ListByWorkout(ctx, workoutID)
	if err != nil {
		return nil, domain.Unavailable(err)
	}

	rec := &domain.CompletionRecord{
		UserID:      actor.ID,
		WorkoutID:   w.ID,
		WorkoutName: w.Name,
		Exercises:   exercises,
	}
	if _, err := s.progress.Create(ctx, rec); err != nil {
		return nil, translate(err, nil)
	}
	s.publish(ctx, realtime.CompletionsTopic(actor.ID))
	s.logger.Info("workout completed", "workoutId", w.ID, "userId", actor.ID)
	return rec, nil
}

func (s *progressService) History(ctx context.Context, sess *session.Session, userID string, limit int64) ([]domain.CompletionRecord, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	target, err := resolveTarget(ctx, s.users, actor, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	list, err := s.progress.History(ctx, target.ID, limit)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return list, nil
}

// Stats counts documents on every call; nothing is cached.
func (s *progressService) Stats(ctx context.Context, sess *session.Session, userID string) (*domain.Stats, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	target, err := resolveTarget(ctx, s.users, actor, userID)
	if err != nil {
		return nil, err
	}
	plans, err := s.workouts.CountByOwner(ctx, target.ID)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	done, err := s.progress.CountByUser(ctx, target.ID)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return &domain.Stats{ActivePlans: plans, CompletedWorkouts: done}, nil
}

func (s *progressService) WatchHistory(ctx context.Context, sess *session.Session, userID string, limit int64) (*realtime.Subscription[[]domain.CompletionRecord], error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	target, err := resolveTarget(ctx, s.users, actor, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = repository.DefaultHistoryLimit
	}
	targetID := target.ID
	return realtime.Watch[[]domain.CompletionRecord](ctx, s.notifier, s.logger, func(ctx context.Context) ([]domain.CompletionRecord, error) {
		return s.progress.History(ctx, targetID, limit)
	}, realtime.CompletionsTopic(targetID))
}
