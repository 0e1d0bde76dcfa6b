package service

import (
	"context"
	"testing"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_VariantFollowsRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "root", domain.RoleAdmin, "")
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")

	for _, tt := range []struct {
		name string
		sess *session.Session
		want domain.Role
	}{
		{"trainee", ana, domain.RoleTrainee},
		{"trainer", coach, domain.RoleTrainer},
		{"admin", admin, domain.RoleAdmin},
	} {
		t.Run(tt.name, func(t *testing.T) {
			view, err := f.dashboards.Build(ctx, tt.sess)
			require.NoError(t, err)
			assert.Equal(t, tt.want, view.Role())
		})
	}

	_, err := f.dashboards.Build(ctx, newcomer("new", "new@example.com"))
	assert.ErrorIs(t, err, ErrNeedsOnboarding)
}

func TestDashboardService_Trainee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")

	var last *domain.Workout
	for _, name := range []string{"Mon", "Tue", "Wed", "Thu"} {
		last = f.workout(t, ana, name, false)
	}
	_, err := f.progress.RecordCompletion(ctx, ana, last.ID)
	require.NoError(t, err)
	_, err = f.feedback.Send(ctx, coach, SendFeedbackInput{TraineeID: "ana", Message: "Nice week"})
	require.NoError(t, err)

	view, err := f.dashboards.Build(ctx, ana)
	require.NoError(t, err)
	d, ok := view.(*TraineeDashboard)
	require.True(t, ok)

	require.Len(t, d.RecentWorkouts, recentWorkoutCount)
	assert.Equal(t, "Thu", d.RecentWorkouts[0].Name)
	require.NotNil(t, d.Trainer)
	assert.Equal(t, "coach", d.Trainer.ID)
	assert.EqualValues(t, 1, d.Stats.CompletedWorkouts)
	require.Len(t, d.History, 1)
	require.NotNil(t, d.Conversation)
	assert.Equal(t, "Nice week", d.Conversation.LastMessage.Message)
	assert.Zero(t, d.Conversation.UnreadCount)

	loner := f.user(t, "loner", domain.RoleTrainee, "")
	view, err = f.dashboards.Build(ctx, loner)
	require.NoError(t, err)
	d = view.(*TraineeDashboard)
	assert.Nil(t, d.Trainer)
	assert.Nil(t, d.Conversation)
	assert.Empty(t, d.RecentWorkouts)
}

func TestDashboardService_Trainer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")
	ben := f.user(t, "ben", domain.RoleTrainee, "coach")
	f.user(t, "cat", domain.RoleTrainee, "")

	_, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "a1"})
	require.NoError(t, err)
	_, err = f.feedback.Send(ctx, ben, SendFeedbackInput{Message: "b1"})
	require.NoError(t, err)
	_, err = f.feedback.Send(ctx, ben, SendFeedbackInput{Message: "b2"})
	require.NoError(t, err)

	view, err := f.dashboards.Build(ctx, coach)
	require.NoError(t, err)
	d := view.(*TrainerDashboard)
	assert.Len(t, d.Trainees, 2)
	require.Len(t, d.Unassigned, 1)
	assert.Equal(t, "cat", d.Unassigned[0].ID)
	assert.EqualValues(t, 3, d.UnreadCount)
	require.Len(t, d.Conversations, 2)
	assert.Equal(t, "ben", d.Conversations[0].OtherID)
}

func TestDashboardService_Admin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "root", domain.RoleAdmin, "")
	f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")
	f.user(t, "ben", domain.RoleTrainee, "")

	_, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "hello"})
	require.NoError(t, err)

	view, err := f.dashboards.Build(ctx, admin)
	require.NoError(t, err)
	d := view.(*AdminDashboard)
	assert.Len(t, d.Users, 4)
	assert.Equal(t, 2, d.TraineeCount)
	assert.Equal(t, 1, d.TrainerCount)
	assert.Len(t, d.Conversations, 1)
}

func TestDashboardService_TraineeDetailMarksRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	other := f.user(t, "other", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")

	f.workout(t, ana, "Legs", false)
	for _, text := range []string{"one", "two"} {
		_, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: text})
		require.NoError(t, err)
	}

	detail, err := f.dashboards.TraineeDetail(ctx, coach, "ana")
	require.NoError(t, err)
	assert.EqualValues(t, 2, detail.MarkedRead)
	assert.Equal(t, "ana", detail.Trainee.ID)
	assert.Len(t, detail.Workouts, 1)
	require.NotNil(t, detail.Conversation)
	assert.Equal(t, "ana", detail.Conversation.OtherID)
	assert.Equal(t, 2, detail.Conversation.Count)

	unread, err := f.feedback.UnreadCount(ctx, coach, "")
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = f.dashboards.TraineeDetail(ctx, other, "ana")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.dashboards.TraineeDetail(ctx, ana, "ana")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.dashboards.TraineeDetail(ctx, coach, "other")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.dashboards.TraineeDetail(ctx, coach, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboardService_AdminTraineeDetailLeavesUnread(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "root", domain.RoleAdmin, "")
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")

	_, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "sore knees"})
	require.NoError(t, err)

	detail, err := f.dashboards.TraineeDetail(ctx, admin, "ana")
	require.NoError(t, err)
	assert.Zero(t, detail.MarkedRead)
	require.NotNil(t, detail.Conversation)
	assert.Equal(t, 1, detail.Conversation.UnreadCount)

	unread, err := f.feedback.UnreadCount(ctx, coach, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread, "the trainer still has the message to read")
}
