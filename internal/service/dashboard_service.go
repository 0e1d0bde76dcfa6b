package service

import (
	"context"
	"log/slog"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/policy"
	"alcyxob/coachhub/internal/session"
)

// recentWorkoutCount is how many plans the trainee dashboard previews.
const recentWorkoutCount = 3

// DashboardView is the role-specific landing page. It is one of
// *TraineeDashboard, *TrainerDashboard or *AdminDashboard.
type DashboardView interface {
	Role() domain.Role
	dashboard()
}

// TraineeDashboard shows a trainee their own progress and their trainer.
type TraineeDashboard struct {
	Profile        *domain.User              `json:"profile"`
	Trainer        *domain.User              `json:"trainer,omitempty"`
	Stats          domain.Stats              `json:"stats"`
	RecentWorkouts []domain.Workout          `json:"recentWorkouts"`
	History        []domain.CompletionRecord `json:"history"`
	Conversation   *domain.Conversation      `json:"conversation,omitempty"`
}

// TrainerDashboard shows a trainer their roster and inbox.
type TrainerDashboard struct {
	Profile       *domain.User          `json:"profile"`
	Trainees      []domain.User         `json:"trainees"`
	Unassigned    []domain.User         `json:"unassigned"`
	Conversations []domain.Conversation `json:"conversations"`
	UnreadCount   int64                 `json:"unreadCount"`
}

// AdminDashboard shows every user and conversation.
type AdminDashboard struct {
	Profile       *domain.User          `json:"profile"`
	Users         []domain.User         `json:"users"`
	TraineeCount  int                   `json:"traineeCount"`
	TrainerCount  int                   `json:"trainerCount"`
	Conversations []domain.Conversation `json:"conversations"`
}

func (*TraineeDashboard) Role() domain.Role { return domain.RoleTrainee }
func (*TrainerDashboard) Role() domain.Role { return domain.RoleTrainer }
func (*AdminDashboard) Role() domain.Role   { return domain.RoleAdmin }

func (*TraineeDashboard) dashboard() {}
func (*TrainerDashboard) dashboard() {}
func (*AdminDashboard) dashboard()   {}

// TraineeDetail is what a trainer or admin sees after selecting a trainee.
type TraineeDetail struct {
	Trainee      *domain.User              `json:"trainee"`
	Stats        domain.Stats              `json:"stats"`
	Workouts     []domain.Workout          `json:"workouts"`
	History      []domain.CompletionRecord `json:"history"`
	Conversation *domain.Conversation      `json:"conversation,omitempty"`
	MarkedRead   int64                     `json:"markedRead"`
}

// DashboardService composes the other services into per-role read models.
type DashboardService interface {
	// Build picks the variant once from the session's role.
	Build(ctx context.Context, sess *session.Session) (DashboardView, error)
	// TraineeDetail also marks the trainee's messages to the caller as read.
	TraineeDetail(ctx context.Context, sess *session.Session, traineeID string) (*TraineeDetail, error)
}

type dashboardService struct {
	profiles ProfileService
	workouts WorkoutService
	feedback FeedbackService
	progress ProgressService
	logger   *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(profiles ProfileService, workouts WorkoutService, feedback FeedbackService, progress ProgressService, logger *slog.Logger) DashboardService {
	return &dashboardService{
		profiles: profiles,
		workouts: workouts,
		feedback: feedback,
		progress: progress,
		logger:   logger,
	}
}

func (s *dashboardService) Build(ctx context.Context, sess *session.Session) (DashboardView, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleTrainee:
		return s.trainee(ctx, sess)
	case domain.RoleTrainer:
		return s.trainer(ctx, sess)
	case domain.RoleAdmin:
		return s.admin(ctx, sess)
	}
	return nil, ErrNeedsOnboarding
}

func (s *dashboardService) trainee(ctx context.Context, sess *session.Session) (*TraineeDashboard, error) {
	d := &TraineeDashboard{Profile: sess.Profile}

	stats, err := s.progress.Stats(ctx, sess, "")
	if err != nil {
		return nil, err
	}
	d.Stats = *stats

	workouts, err := s.workouts.ListByOwner(ctx, sess, "")
	if err != nil {
		return nil, err
	}
	if len(workouts) > recentWorkoutCount {
		workouts = workouts[:recentWorkoutCount]
	}
	d.RecentWorkouts = workouts

	if d.History, err = s.progress.History(ctx, sess, "", 0); err != nil {
		return nil, err
	}

	if trainerID := sess.Profile.AssignedTrainer(); trainerID != "" {
		trainer, err := s.profiles.Get(ctx, sess, trainerID)
		if err != nil {
			// A dangling assignment should not take the whole page down.
			s.logger.Warn("assigned trainer not loaded", "trainerId", trainerID, "error", err)
		} else {
			d.Trainer = trainer
		}
		msgs, err := s.feedback.List(ctx, sess)
		if err != nil {
			return nil, err
		}
		if c, ok := GroupByOtherParty(msgs, sess.Profile.ID)[trainerID]; ok {
			d.Conversation = c
		}
	}
	return d, nil
}

func (s *dashboardService) trainer(ctx context.Context, sess *session.Session) (*TrainerDashboard, error) {
	roster, err := s.profiles.Roster(ctx, sess)
	if err != nil {
		return nil, err
	}
	msgs, err := s.feedback.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &TrainerDashboard{
		Profile:       sess.Profile,
		Trainees:      roster.Trainees,
		Unassigned:    roster.Unassigned,
		Conversations: SortedConversations(GroupByOtherParty(msgs, sess.Profile.ID)),
		UnreadCount:   int64(CountUnread(msgs, sess.Profile.ID)),
	}, nil
}

func (s *dashboardService) admin(ctx context.Context, sess *session.Session) (*AdminDashboard, error) {
	users, err := s.profiles.ListUsers(ctx, sess, domain.UserFilter{})
	if err != nil {
		return nil, err
	}
	conversations, err := s.feedback.Conversations(ctx, sess)
	if err != nil {
		return nil, err
	}
	d := &AdminDashboard{Profile: sess.Profile, Users: users, Conversations: conversations}
	for _, u := range users {
		switch u.Role {
		case domain.RoleTrainee:
			d.TraineeCount++
		case domain.RoleTrainer:
			d.TrainerCount++
		}
	}
	return d, nil
}

func (s *dashboardService) TraineeDetail(ctx context.Context, sess *session.Session, traineeID string) (*TraineeDetail, error) {
	actor, err := actorOf(sess)
	if err != nil {
		return nil, err
	}
	trainee, err := s.profiles.Get(ctx, sess, traineeID)
	if err != nil {
		return nil, err
	}
	if !trainee.IsTrainee() || !policy.Oversees(actor, trainee) || actor.ID == trainee.ID {
		return nil, domain.NewError(domain.KindForbidden, "not allowed to view this trainee")
	}

	d := &TraineeDetail{Trainee: trainee}
	// Only the assigned trainer's own view clears unread state.
	if trainerID := trainee.AssignedTrainer(); trainerID != "" && actor.ID == trainerID {
		if d.MarkedRead, err = s.feedback.MarkRead(ctx, sess, trainerID, trainee.ID); err != nil {
			return nil, err
		}
	}

	stats, err := s.progress.Stats(ctx, sess, trainee.ID)
	if err != nil {
		return nil, err
	}
	d.Stats = *stats
	if d.Workouts, err = s.workouts.ListByOwner(ctx, sess, trainee.ID); err != nil {
		return nil, err
	}
	if d.History, err = s.progress.History(ctx, sess, trainee.ID, 0); err != nil {
		return nil, err
	}

	msgs, err := s.feedback.List(ctx, sess)
	if err != nil {
		return nil, err
	}
	for _, c := range GroupByPair(msgs) {
		if c.TraineeID == trainee.ID && c.TrainerID == trainee.AssignedTrainer() {
			conv := c
			if actor.IsTrainer() {
				conv.OtherID = trainee.ID
			}
			d.Conversation = &conv
			break
		}
	}
	return d, nil
}
