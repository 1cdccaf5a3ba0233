package broadcast

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Subject is a single-value holder that pushes every new value to its
// subscribers synchronously, in subscription order. A new subscriber is
// called with the current value before Subscribe returns.
//
// Callbacks run while the publish lock is held: they may unsubscribe, but
// must not call Next or Subscribe on the same Subject.
type Subject[T any] struct {
	publish sync.Mutex
	mu      sync.RWMutex
	value   T
	subs    []subscription[T]
}

type subscription[T any] struct {
	id string
	fn func(T)
}

// NewSubject returns a Subject holding initial.
func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

// Value returns the latest value.
func (s *Subject[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Next replaces the held value and notifies every subscriber before returning.
// Concurrent calls are serialised, so each subscriber observes values in the
// same order.
func (s *Subject[T]) Next(v T) {
	s.publish.Lock()
	defer s.publish.Unlock()

	s.mu.Lock()
	s.value = v
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		if s.active(sub.id) {
			sub.fn(v)
		}
	}
}

// Subscribe registers fn and immediately calls it with the current value.
// The returned function removes the subscription; it is idempotent.
func (s *Subject[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.publish.Lock()
	defer s.publish.Unlock()

	id := uuid.NewString()
	s.mu.Lock()
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	current := s.value
	s.mu.Unlock()

	fn(current)

	return func() { s.remove(id) }
}

// Len returns the number of active subscriptions.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Subject[T]) active(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.subs, func(sub subscription[T]) bool { return sub.id == id })
}

func (s *Subject[T]) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = slices.DeleteFunc(s.subs, func(sub subscription[T]) bool { return sub.id == id })
}
