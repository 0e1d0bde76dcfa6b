package realtime

import (
	"context"
	"log/slog"
	"sync"
)

// Loader runs the query behind a subscription.
type Loader[T any] func(ctx context.Context) (T, error)

// Subscription is a cancellable stream of full snapshots. A new snapshot is
// produced immediately and after every change to one of its topics; a slow
// consumer only ever finds the latest one pending.
type Subscription[T any] struct {
	C <-chan T

	out    chan T
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Watch starts a subscription. Load errors are logged and delivered as the
// zero value of T (an empty set for slices), so readers degrade instead of
// stalling.
func Watch[T any](ctx context.Context, n Notifier, logger *slog.Logger, load Loader[T], topics ...string) (*Subscription[T], error) {
	ctx, cancel := context.WithCancel(ctx)
	changes, stop, err := n.Listen(ctx, topics...)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan T, 1)
	sub := &Subscription[T]{C: out, out: out, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer close(out)
		defer stop()

		emit := func() bool {
			snapshot, err := load(ctx)
			if ctx.Err() != nil {
				return false
			}
			if err != nil {
				logger.Error("subscription load failed", "topics", topics, "error", err)
				var zero T
				snapshot = zero
			}
			select {
			case out <- snapshot:
				return true
			default:
			}
			// Replace the stale snapshot the consumer has not picked up yet.
			select {
			case <-out:
			default:
			}
			select {
			case out <- snapshot:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				if !emit() {
					return
				}
			}
		}
	}()

	return sub, nil
}

// Close stops the subscription. When Close returns no further snapshot will
// be delivered and C is closed; snapshots already received stay valid.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		for range s.out {
		}
	})
}

// Done is closed once the subscription has stopped.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }
