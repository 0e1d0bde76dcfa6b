package realtime

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier carries change notifications over Redis pub/sub so that
// every API instance sees writes made by the others.
type RedisNotifier struct {
	client *redis.Client
	prefix string
}

// NewRedisNotifier returns a Notifier publishing on prefix+topic channels.
func NewRedisNotifier(client *redis.Client, prefix string) *RedisNotifier {
	return &RedisNotifier{client: client, prefix: prefix}
}

func (n *RedisNotifier) Publish(ctx context.Context, topic string) error {
	return n.client.Publish(ctx, n.prefix+topic, "changed").Err()
}

func (n *RedisNotifier) Listen(ctx context.Context, topics ...string) (<-chan string, func(), error) {
	channels := make([]string, len(topics))
	for i, t := range topics {
		channels[i] = n.prefix + t
	}

	pubsub := n.client.Subscribe(ctx, channels...)
	// Wait for the subscription to be confirmed so no publish that happens
	// after Listen returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			select {
			case out <- strings.TrimPrefix(msg.Channel, n.prefix):
			default:
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = pubsub.Close()
			<-done
		})
	}
	return out, stop, nil
}
