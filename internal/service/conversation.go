package service

import (
	"sort"

	"alcyxob/coachhub/internal/domain"
)

// GroupByOtherParty groups messages by the participant that is not selfID.
// Messages selfID does not take part in are skipped. Each conversation
// lists its messages oldest first; LastMessage is the newest one and
// UnreadCount counts unread trainee-authored messages from the other party,
// so it is always zero on the trainee side.
func GroupByOtherParty(messages []domain.Message, selfID string) map[string]*domain.Conversation {
	groups := map[string]*domain.Conversation{}
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		other := m.OtherParty(selfID)
		if other == "" {
			continue
		}
		c, ok := groups[other]
		if !ok {
			c = &domain.Conversation{OtherID: other, TrainerID: m.TrainerID, TraineeID: m.TraineeID}
			groups[other] = c
		}
		c.Messages = append(c.Messages, m)
		if !m.Read && m.SentByTrainee() && m.SenderID != selfID {
			c.UnreadCount++
		}
	}
	for _, c := range groups {
		finish(c)
	}
	return groups
}

// GroupByPair groups messages by (trainerId, traineeId) for viewers that are
// not a participant. UnreadCount counts unread trainee-authored messages.
func GroupByPair(messages []domain.Message) []domain.Conversation {
	type pair struct{ trainer, trainee string }
	groups := map[pair]*domain.Conversation{}
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		key := pair{m.TrainerID, m.TraineeID}
		c, ok := groups[key]
		if !ok {
			c = &domain.Conversation{TrainerID: m.TrainerID, TraineeID: m.TraineeID}
			groups[key] = c
		}
		c.Messages = append(c.Messages, m)
		if !m.Read && m.SentByTrainee() {
			c.UnreadCount++
		}
	}
	list := make([]*domain.Conversation, 0, len(groups))
	for _, c := range groups {
		finish(c)
		list = append(list, c)
	}
	return sortConversations(list)
}

// SortedConversations flattens a grouping, most recently active first.
func SortedConversations(groups map[string]*domain.Conversation) []domain.Conversation {
	list := make([]*domain.Conversation, 0, len(groups))
	for _, c := range groups {
		list = append(list, c)
	}
	return sortConversations(list)
}

// CountUnread counts messages to trainerID the trainer has not read yet.
func CountUnread(messages []domain.Message, trainerID string) int {
	n := 0
	for _, m := range messages {
		if m.TrainerID == trainerID && m.SenderID != trainerID && !m.Read {
			n++
		}
	}
	return n
}

// finish orders messages chronologically and fills the summary fields.
// Input arrives newest first, so the reversed append already holds ties in
// store order.
func finish(c *domain.Conversation) {
	sort.SliceStable(c.Messages, func(i, j int) bool {
		return c.Messages[i].CreatedAt.Before(c.Messages[j].CreatedAt)
	})
	c.Count = len(c.Messages)
	if c.Count > 0 {
		last := c.Messages[c.Count-1]
		c.LastMessage = &last
	}
}

func sortConversations(list []*domain.Conversation) []domain.Conversation {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].LastMessage, list[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if list[i].TrainerID != list[j].TrainerID {
			return list[i].TrainerID < list[j].TrainerID
		}
		return list[i].TraineeID < list[j].TraineeID
	})
	out := make([]domain.Conversation, len(list))
	for i, c := range list {
		out[i] = *c
	}
	return out
}
