package domain

import "time"

// Message is one piece of feedback between a trainer and a trainee.
// SenderID is always one of TrainerID or TraineeID.
type Message struct {
	ID        string    `bson:"_id" json:"id"`
	TrainerID string    `bson:"trainerId" json:"trainerId"`
	TraineeID string    `bson:"traineeId" json:"traineeId"`
	SenderID  string    `bson:"senderId" json:"senderId"`
	Message   string    `bson:"message" json:"message"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// OtherParty returns the endpoint of the message that is not selfID, or ""
// when selfID is not a participant.
func (m *Message) OtherParty(selfID string) string {
	switch selfID {
	case m.TraineeID:
		return m.TrainerID
	case m.TrainerID:
		return m.TraineeID
	}
	return ""
}

// SentByTrainee reports whether the trainee authored the message.
func (m *Message) SentByTrainee() bool { return m.SenderID == m.TraineeID }

// Conversation is every message of one trainer/trainee pair, seen from one
// participant. Messages are in chronological order.
type Conversation struct {
	OtherID     string    `json:"otherId"`
	TrainerID   string    `json:"trainerId"`
	TraineeID   string    `json:"traineeId"`
	Messages    []Message `json:"messages"`
	LastMessage *Message  `json:"lastMessage,omitempty"`
	Count       int       `json:"count"`
	UnreadCount int       `json:"unreadCount"`
}

// FeedbackFilter selects messages by participant. Empty fields match all.
type FeedbackFilter struct {
	TrainerID string
	TraineeID string
}
