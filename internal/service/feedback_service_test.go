package service

import (
	"context"
	"testing"

	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackService_SendWithoutTrainer(t *testing.T) {
	f := newFixture(t)
	loner := f.user(t, "loner", domain.RoleTrainee, "")

	_, err := f.feedback.Send(context.Background(), loner, SendFeedbackInput{Message: "Hello?"})
	assert.ErrorIs(t, err, ErrNoTrainerAssigned)

	msgs, err := f.store.Feedback.List(context.Background(), domain.FeedbackFilter{})
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestFeedbackService_SendRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	other := f.user(t, "other", domain.RoleTrainer, "")
	admin := f.user(t, "root", domain.RoleAdmin, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")

	_, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	msg, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: " Knee hurts after squats "})
	require.NoError(t, err)
	assert.Equal(t, "coach", msg.TrainerID)
	assert.Equal(t, "ana", msg.TraineeID)
	assert.Equal(t, "ana", msg.SenderID)
	assert.Equal(t, "Knee hurts after squats", msg.Message)
	assert.False(t, msg.Read)

	_, err = f.feedback.Send(ctx, ana, SendFeedbackInput{TrainerID: "other", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	reply, err := f.feedback.Send(ctx, coach, SendFeedbackInput{TraineeID: "ana", Message: "Lower the weight"})
	require.NoError(t, err)
	assert.Equal(t, "coach", reply.SenderID)

	_, err = f.feedback.Send(ctx, other, SendFeedbackInput{TraineeID: "ana", Message: "Try my plan"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.feedback.Send(ctx, coach, SendFeedbackInput{Message: "to nobody"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.feedback.Send(ctx, coach, SendFeedbackInput{TraineeID: "ghost", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.feedback.Send(ctx, admin, SendFeedbackInput{TrainerID: "coach", TraineeID: "ana", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFeedbackService_ListIsScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	other := f.user(t, "other", domain.RoleTrainer, "")
	admin := f.user(t, "root", domain.RoleAdmin, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")
	ben := f.user(t, "ben", domain.RoleTrainee, "other")

	_, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "a1"})
	require.NoError(t, err)
	_, err = f.feedback.Send(ctx, ben, SendFeedbackInput{Message: "b1"})
	require.NoError(t, err)
	_, err = f.feedback.Send(ctx, coach, SendFeedbackInput{TraineeID: "ana", Message: "a2"})
	require.NoError(t, err)

	texts := func(msgs []domain.Message) []string {
		out := make([]string, len(msgs))
		for i, m := range msgs {
			out[i] = m.Message
		}
		return out
	}

	list, err := f.feedback.List(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a1"}, texts(list))

	list, err = f.feedback.List(ctx, coach)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "a1"}, texts(list))

	list, err = f.feedback.List(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, texts(list))

	list, err = f.feedback.List(ctx, ben)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, texts(list))

	list, err = f.feedback.List(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2", "b1", "a1"}, texts(list))
}

func TestFeedbackService_MarkReadOnlyTraineeMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")

	for _, text := range []string{"one", "two"} {
		_, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: text})
		require.NoError(t, err)
	}
	_, err := f.feedback.Send(ctx, coach, SendFeedbackInput{TraineeID: "ana", Message: "reply"})
	require.NoError(t, err)

	unread, err := f.feedback.UnreadCount(ctx, coach, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	_, err = f.feedback.MarkRead(ctx, ana, "coach", "ana")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	n, err := f.feedback.MarkRead(ctx, coach, "", "ana")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	msgs, err := f.feedback.List(ctx, coach)
	require.NoError(t, err)
	for _, m := range msgs {
		if m.SenderID == "ana" {
			assert.True(t, m.Read, m.Message)
		} else {
			assert.False(t, m.Read, "trainer messages stay untouched")
		}
	}

	// Nothing left to mark is not an error.
	n, err = f.feedback.MarkRead(ctx, coach, "", "ana")
	require.NoError(t, err)
	assert.Zero(t, n)

	unread, err = f.feedback.UnreadCount(ctx, coach, "")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestFeedbackService_AdminMarkReadUsesAssignedTrainer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "coach", domain.RoleTrainer, "")
	admin := f.user(t, "root", domain.RoleAdmin, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")

	_, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "hi"})
	require.NoError(t, err)

	n, err := f.feedback.MarkRead(ctx, admin, "", "ana")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, err := f.feedback.UnreadCount(ctx, admin, "coach")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = f.feedback.UnreadCount(ctx, ana, "coach")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFeedbackService_Dismiss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	other := f.user(t, "other", domain.RoleTrainer, "")
	admin := f.user(t, "root", domain.RoleAdmin, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")
	ben := f.user(t, "ben", domain.RoleTrainee, "coach")

	msg, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "hi"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.feedback.Dismiss(ctx, other, msg.ID), domain.ErrForbidden)
	assert.ErrorIs(t, f.feedback.Dismiss(ctx, ben, msg.ID), domain.ErrForbidden, "another trainee of the same coach")
	require.NoError(t, f.feedback.Dismiss(ctx, coach, msg.ID))
	assert.ErrorIs(t, f.feedback.Dismiss(ctx, coach, msg.ID), domain.ErrNotFound)

	list, err := f.feedback.List(ctx, ana)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, who := range []*session.Session{ana, admin} {
		msg, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "again"})
		require.NoError(t, err)
		require.NoError(t, f.feedback.Dismiss(ctx, who, msg.ID), who.UserID())
	}
}

func TestFeedbackService_Conversations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	admin := f.user(t, "root", domain.RoleAdmin, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")
	ben := f.user(t, "ben", domain.RoleTrainee, "coach")

	_, err := f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "a1"})
	require.NoError(t, err)
	_, err = f.feedback.Send(ctx, ben, SendFeedbackInput{Message: "b1"})
	require.NoError(t, err)
	_, err = f.feedback.Send(ctx, coach, SendFeedbackInput{TraineeID: "ana", Message: "a2"})
	require.NoError(t, err)

	convs, err := f.feedback.Conversations(ctx, coach)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "ana", convs[0].OtherID)
	assert.Equal(t, 2, convs[0].Count)
	assert.Equal(t, "a2", convs[0].LastMessage.Message)
	assert.Equal(t, "a1", convs[0].Messages[0].Message)
	assert.Equal(t, 1, convs[0].UnreadCount)
	assert.Equal(t, "ben", convs[1].OtherID)

	convs, err = f.feedback.Conversations(ctx, ana)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "coach", convs[0].OtherID)
	assert.Zero(t, convs[0].UnreadCount, "trainer replies are never marked read")
	assert.Equal(t, 2, convs[0].Count)

	convs, err = f.feedback.Conversations(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, convs, 2)
}

func TestFeedbackService_SubscribeTracksChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := f.user(t, "coach", domain.RoleTrainer, "")
	ana := f.user(t, "ana", domain.RoleTrainee, "coach")

	sub, err := f.feedback.Subscribe(ctx, coach)
	require.NoError(t, err)

	assert.Empty(t, receive(t, sub.C))

	_, err = f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "ping"})
	require.NoError(t, err)
	snap := receive(t, sub.C)
	require.Len(t, snap, 1)
	assert.Equal(t, "ping", snap[0].Message)

	sub.Close()
	_, err = f.feedback.Send(ctx, ana, SendFeedbackInput{Message: "after close"})
	require.NoError(t, err)
	_, open := <-sub.C
	assert.False(t, open, "no snapshot after Close")
}
