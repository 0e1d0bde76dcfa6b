package service

import (
	"testing"
	"time"

	"alcyxob/coachhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgAt(id, trainer, trainee, sender string, minute int, read bool) domain.Message {
	return domain.Message{
		ID:        id,
		TrainerID: trainer,
		TraineeID: trainee,
		SenderID:  sender,
		Message:   id,
		Read:      read,
		CreatedAt: time.Date(2024, 3, 1, 9, minute, 0, 0, time.UTC),
	}
}

// newest first, as the store returns them
func sampleMessages() []domain.Message {
	return []domain.Message{
		msgAt("m5", "coach", "ben", "ben", 5, false),
		msgAt("m4", "coach", "ana", "coach", 4, false),
		msgAt("m3", "coach", "ana", "ana", 3, false),
		msgAt("m2", "other", "cid", "cid", 2, false),
		msgAt("m1", "coach", "ana", "ana", 1, true),
	}
}

func TestGroupByOtherParty(t *testing.T) {
	groups := GroupByOtherParty(sampleMessages(), "coach")
	require.Len(t, groups, 2)

	ana := groups["ana"]
	require.NotNil(t, ana)
	assert.Equal(t, 3, ana.Count)
	assert.Equal(t, []string{"m1", "m3", "m4"}, ids(ana.Messages))
	assert.Equal(t, "m4", ana.LastMessage.ID)
	assert.Equal(t, 1, ana.UnreadCount)
	assert.Equal(t, "coach", ana.TrainerID)
	assert.Equal(t, "ana", ana.TraineeID)

	ben := groups["ben"]
	require.NotNil(t, ben)
	assert.Equal(t, 1, ben.Count)
	assert.Equal(t, 1, ben.UnreadCount)

	_, ok := groups["cid"]
	assert.False(t, ok, "pairs without the reference user are skipped")
}

func TestGroupByOtherParty_FromTraineeSide(t *testing.T) {
	groups := GroupByOtherParty(sampleMessages(), "ana")
	require.Len(t, groups, 1)
	c := groups["coach"]
	assert.Equal(t, 3, c.Count)
	assert.Zero(t, c.UnreadCount, "trainer replies never count as unread")
}

func TestGroupByOtherParty_Empty(t *testing.T) {
	assert.Empty(t, GroupByOtherParty(nil, "coach"))
	assert.Empty(t, SortedConversations(GroupByOtherParty(nil, "coach")))
}

func TestSortedConversations(t *testing.T) {
	list := SortedConversations(GroupByOtherParty(sampleMessages(), "coach"))
	require.Len(t, list, 2)
	assert.Equal(t, "ben", list[0].OtherID)
	assert.Equal(t, "ana", list[1].OtherID)
}

func TestGroupByPair(t *testing.T) {
	list := GroupByPair(sampleMessages())
	require.Len(t, list, 3)
	assert.Equal(t, "ben", list[0].TraineeID)
	assert.Equal(t, "ana", list[1].TraineeID)
	assert.Equal(t, "cid", list[2].TraineeID)
	assert.Equal(t, 1, list[1].UnreadCount, "trainee-authored unread only")
	assert.Empty(t, list[1].OtherID)
}

func TestCountUnread(t *testing.T) {
	msgs := sampleMessages()
	assert.Equal(t, 2, CountUnread(msgs, "coach"))
	assert.Equal(t, 1, CountUnread(msgs, "other"))
	assert.Equal(t, 0, CountUnread(msgs, "nobody"))
}

func ids(msgs []domain.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
