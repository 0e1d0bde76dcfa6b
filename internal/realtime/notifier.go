// Package realtime turns write notifications into live, full-set snapshots.
//
// Writers Publish a topic after every successful change. A Subscription
// listens on the topics its query depends on, re-runs the query whenever one
// fires and hands the complete result to the consumer.
package realtime

import (
	"context"
	"sync"
)

// Topics published by the services.
const (
	TopicWorkouts = "workouts"
	TopicUsers    = "users"
	TopicFeedback = "feedback"
)

// ExercisesTopic is the topic of one workout's exercise list.
func ExercisesTopic(workoutID string) string { return "workouts/" + workoutID + "/exercises" }

// CompletionsTopic is the topic of one user's completion records.
func CompletionsTopic(userID string) string { return "users/" + userID + "/completedWorkouts" }

// Notifier fans change notifications out to listeners.
type Notifier interface {
	// Publish announces that documents under topic changed.
	Publish(ctx context.Context, topic string) error
	// Listen delivers the name of every published topic among topics until
	// the returned stop function is called. Deliveries may be coalesced.
	Listen(ctx context.Context, topics ...string) (<-chan string, func(), error)
}

// MemoryNotifier is an in-process Notifier.
type MemoryNotifier struct {
	mu        sync.Mutex
	listeners map[string]map[*listener]struct{}
}

type listener struct {
	ch     chan string
	topics []string
}

// NewMemoryNotifier returns a Notifier that only reaches listeners in this
// process.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{listeners: map[string]map[*listener]struct{}{}}
}

// Publish never blocks: a listener that already has a pending notification
// for the same change simply keeps that one.
func (n *MemoryNotifier) Publish(_ context.Context, topic string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for l := range n.listeners[topic] {
		select {
		case l.ch <- topic:
		default:
		}
	}
	return nil
}

func (n *MemoryNotifier) Listen(_ context.Context, topics ...string) (<-chan string, func(), error) {
	l := &listener{ch: make(chan string, 1), topics: topics}

	n.mu.Lock()
	for _, t := range topics {
		if n.listeners[t] == nil {
			n.listeners[t] = map[*listener]struct{}{}
		}
		n.listeners[t][l] = struct{}{}
	}
	n.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			for _, t := range l.topics {
				delete(n.listeners[t], l)
				if len(n.listeners[t]) == 0 {
					delete(n.listeners, t)
				}
			}
		})
	}
	return l.ch, stop, nil
}
