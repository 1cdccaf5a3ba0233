package broadcast

import (
	"context"
	"sync"
)

// MemoryOption configures a MemoryBroadcaster.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	replayLatest bool
	keepLatest   bool
}

// WithReplayLatest makes every new subscriber receive the most recently
// broadcast message before any subsequent one.
func WithReplayLatest() MemoryOption {
	return func(o *memoryOptions) {
		o.replayLatest = true
	}
}

// WithKeepLatest makes a full subscriber discard its oldest buffered message
// in favour of the new one instead of being dropped. Subscribers then lag by
// at most the buffer size and always end up with the latest message.
func WithKeepLatest() MemoryOption {
	return func(o *memoryOptions) {
		o.keepLatest = true
	}
}

// MemoryBroadcaster drops messages for slow consumers rather than blocking the broadcast operation.
// All methods are safe for concurrent use.
type MemoryBroadcaster[T any] struct {
	subscribers map[*subscriber[T]]struct{}
	bufferSize  int
	opts        memoryOptions
	last        *Message[T]
	closed      bool
	mu          sync.RWMutex
}

// NewMemoryBroadcaster creates a new in-memory broadcaster.
// A minimum buffer size of 1 is enforced. When a subscriber's buffer is full,
// the subscriber is dropped rather than blocking the broadcast.
func NewMemoryBroadcaster[T any](bufferSize int, opts ...MemoryOption) *MemoryBroadcaster[T] {
	b := &MemoryBroadcaster[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// Subscribe creates a new subscriber that will receive all broadcast messages.
// The subscription is automatically cleaned up when the provided context is cancelled.
// If the broadcaster is already closed, returns a closed subscriber.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscriber[T](b.bufferSize, b.opts.keepLatest)
	if b.closed {
		_ = sub.Close()
		return sub
	}

	b.subscribers[sub] = struct{}{}
	if b.last != nil {
		sub.send(*b.last)
	}

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			b.unsubscribe(sub)
		}()
	}

	return sub
}

// Broadcast sends a message to all active subscribers.
// Messages are sent non-blocking: a subscriber whose channel is full is removed,
// unless WithKeepLatest is set.
// Returns nil even if some subscribers didn't receive the message.
func (b *MemoryBroadcaster[T]) Broadcast(_ context.Context, msg Message[T]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	if b.opts.replayLatest {
		b.last = &msg
	}

	for sub := range b.subscribers {
		if !sub.send(msg) {
			delete(b.subscribers, sub)
			_ = sub.Close()
		}
	}

	return nil
}

// Close shuts down the broadcaster and closes all subscribers.
// It is safe to call Close multiple times.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return nil
	}

	b.closed = true
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	return nil
}

// Len returns the number of active subscribers.
func (b *MemoryBroadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *MemoryBroadcaster[T]) unsubscribe(sub *subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	_ = sub.Close()
}
