package service

import (
	"context"
	"log/slog"
	"strings"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/policy"
	"alcyxob/coachhub/internal/realtime"
	"alcyxob/coachhub/internal/repository"
	"alcyxob/coachhub/internal/session"
)

var (
	ErrEmptyMessage      = domain.NewError(domain.KindInvalidArgument, "message cannot be empty")
	ErrNoTrainerAssigned = domain.NewError(domain.KindInvalidArgument, "no trainer assigned")
	ErrTraineeRequired   = domain.NewError(domain.KindInvalidArgument, "traineeId is required")
	ErrMessageNotFound   = domain.NewError(domain.KindNotFound, "message not found")
	ErrFeedbackForbidden = domain.NewError(domain.KindForbidden, "not allowed to access this conversation")
)

// SendFeedbackInput addresses a message. Trainees leave TrainerID empty to
// write to their assigned trainer; trainers name the trainee.
type SendFeedbackInput struct {
	TrainerID string `json:"trainerId"`
	TraineeID string `json:"traineeId"`
	Message   string `json:"message"`
}

// FeedbackService manages trainer/trainee messages.
type FeedbackService interface {
	Send(ctx context.Context, sess *session.Session, in SendFeedbackInput) (*domain.Message, error)
	// List returns every message visible to the caller, newest first.
	List(ctx context.Context, sess *session.Session) ([]domain.Message, error)
	Subscribe(ctx context.Context, sess *session.Session) (*realtime.Subscription[[]domain.Message], error)
	Conversations(ctx context.Context, sess *session.Session) ([]domain.Conversation, error)
	// MarkRead marks the trainee's messages to trainerID as read. An empty
	// trainerID means the caller, or the trainee's trainer for admins.
	MarkRead(ctx context.Context, sess *session.Session, trainerID, traineeID string) (int64, error)
	Dismiss(ctx context.Context, sess *session.Session, messageID string) error
	UnreadCount(ctx context.Context, sess *session.Session, trainerID string) (int64, error)
}

type feedbackService struct {
	feedback repository.FeedbackRepository
	users    repository.UserRepository
	publisher
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(store repository.Store, notifier realtime.Notifier, logger *slog.Logger) FeedbackService {
	return &feedbackService{
		feedback:  store.Feedback,
		users:     store.Users,
		publisher: publisher{notifier: notifier, logger: logger},
	}
}

func (s *feedbackService) Send(ctx context.Context, sess *session.Session, in SendFeedbackInput) (*domain.Message, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}

	var trainerID string
	var trainee *domain.User
	switch actor.Role {
	case domain.RoleTrainee:
		trainerID = actor.AssignedTrainer()
		if trainerID == "" {
			return nil, ErrNoTrainerAssigned
		}
		if in.TrainerID != "" && in.TrainerID != trainerID {
			return nil, ErrFeedbackForbidden
		}
		trainee = actor
	case domain.RoleTrainer:
		if in.TraineeID == "" {
			return nil, ErrTraineeRequired
		}
		trainerID = actor.ID
		trainee, err = loadUser(ctx, s.users, in.TraineeID)
		if err != nil {
			return nil, err
		}
		if trainee == nil {
			return nil, ErrUserNotFound
		}
	default:
		return nil, ErrFeedbackForbidden
	}

	text := strings.TrimSpace(in.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !policy.CanSendFeedback(actor, trainerID, trainee) {
		return nil, ErrFeedbackForbidden
	}

	msg := &domain.Message{
		TrainerID: trainerID,
		TraineeID: trainee.ID,
		SenderID:  actor.ID,
		Message:   text,
	}
	if _, err := s.feedback.Create(ctx, msg); err != nil {
		return nil, translate(err, nil)
	}
	s.publish(ctx, realtime.TopicFeedback)
	return msg, nil
}

func (s *feedbackService) scope(sess *session.Session) (domain.FeedbackFilter, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return domain.FeedbackFilter{}, err
	}
	filter, ok := policy.FeedbackScope(actor)
	if !ok {
		return domain.FeedbackFilter{}, ErrFeedbackForbidden
	}
	return filter, nil
}

func (s *feedbackService) List(ctx context.Context, sess *session.Session) ([]domain.Message, error) {
	filter, err := s.scope(sess)
	if err != nil {
		return nil, err
	}
	list, err := s.feedback.List(ctx, filter)
	if err != nil {
		return nil, domain.Unavailable(err)
	}
	return list, nil
}

func (s *feedbackService) Subscribe(ctx context.Context, sess *session.Session) (*realtime.Subscription[[]domain.Message], error) {
	filter, err := s.scope(sess)
	if err != nil {
		return nil, err
	}
	return realtime.Watch[[]domain.Message](ctx, s.notifier, s.logger, func(ctx context.Context) ([]domain.Message, error) {
		return s.feedback.List(ctx, filter)
	}, realtime.TopicFeedback)
}

// Conversations groups the visible messages. Participants see one
// conversation per other party, admins one per pair.
func (s *feedbackService) Conversations(ctx context.Context, sess *session.Session) ([]domain.Conversation, error) {
	msgs, err := s.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	if sess.Profile.IsAdmin() {
		return GroupByPair(msgs), nil
	}
	return SortedConversations(GroupByOtherParty(msgs, sess.Profile.ID)), nil
}

func (s *feedbackService) MarkRead(ctx context.Context, sess *session.Session, trainerID, traineeID string) (int64, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return 0, err
	}
	if traineeID == "" {
		return 0, ErrTraineeRequired
	}
	if trainerID == "" {
		switch {
		case actor.IsTrainer():
			trainerID = actor.ID
		case actor.IsAdmin():
			trainee, err := loadUser(ctx, s.users, traineeID)
			if err != nil {
				return 0, err
			}
			if trainee == nil {
				return 0, ErrUserNotFound
			}
			trainerID = trainee.AssignedTrainer()
		}
	}
	if trainerID == "" || !policy.CanMarkRead(actor, trainerID) {
		return 0, ErrFeedbackForbidden
	}

	n, err := s.feedback.MarkRead(ctx, trainerID, traineeID)
	if err != nil {
		return 0, domain.Unavailable(err)
	}
	if n > 0 {
		s.publish(ctx, realtime.TopicFeedback)
	}
	return n, nil
}

func (s *feedbackService) Dismiss(ctx context.Context, sess *session.Session, messageID string) error {
	actor, err := actorOf(sess)
	if err != nil {
		return err
	}
	msg, err := s.feedback.GetByID(ctx, messageID)
	if err != nil {
		return translate(err, ErrMessageNotFound)
	}
	if !policy.CanSeeMessage(actor, msg) {
		return ErrFeedbackForbidden
	}
	if err := s.feedback.Delete(ctx, messageID); err != nil {
		return translate(err, ErrMessageNotFound)
	}
	s.publish(ctx, realtime.TopicFeedback)
	return nil
}

func (s *feedbackService) UnreadCount(ctx context.Context, sess *session.Session, trainerID string) (int64, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return 0, err
	}
	if trainerID == "" {
		trainerID = actor.ID
	}
	if !policy.CanMarkRead(actor, trainerID) {
		return 0, ErrFeedbackForbidden
	}
	n, err := s.feedback.CountUnread(ctx, trainerID)
	if err != nil {
		return 0, domain.Unavailable(err)
	}
	return n, nil
}
