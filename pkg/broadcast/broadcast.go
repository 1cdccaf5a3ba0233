package broadcast

import (
	"context"
	"sync"
)

// Message is the envelope delivered to subscribers.
type Message[T any] struct {
	Data T
}

// Subscriber is one consumer's view of a Broadcaster. Safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed when the
	// subscription ends.
	Receive(ctx context.Context) <-chan Message[T]

	// Close ends the subscription. Calling it again is a no-op.
	Close() error
}

// Broadcaster fans messages out to every live subscriber without blocking
// the sender.
type Broadcaster[T any] interface {
	// Subscribe opens a subscription bound to ctx.
	Subscribe(ctx context.Context) Subscriber[T]

	// Broadcast delivers msg to current subscribers.
	Broadcast(ctx context.Context, msg Message[T]) error

	// Close ends every subscription and rejects further use.
	Close() error
}

// subscriber is a buffered channel guarded against send-after-close.
// send is only called with the broadcaster lock held, so there is a single
// sender at a time.
type subscriber[T any] struct {
	mu         sync.RWMutex
	ch         chan Message[T]
	done       bool
	keepLatest bool
}

func newSubscriber[T any](buffer int, keepLatest bool) *subscriber[T] {
	return &subscriber[T]{ch: make(chan Message[T], buffer), keepLatest: keepLatest}
}

func (s *subscriber[T]) Receive(context.Context) <-chan Message[T] { return s.ch }

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	if !s.done {
		s.done = true
		close(s.ch)
	}
	s.mu.Unlock()
	return nil
}

// send reports false when the subscription is over or, without keepLatest,
// its buffer is full.
func (s *subscriber[T]) send(msg Message[T]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.done {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	default:
	}
	if !s.keepLatest {
		return false
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
