package session

import (
	"context"
	"sync"

	"github.com/dmitrymomot/eventhub/pkg/broadcast"
)

// State holds the single current Session and publishes every transition.
//
// Callback subscribers are notified synchronously, in subscription order,
// before TransitionTo returns; they must not call TransitionTo themselves.
// Watch offers the same stream over a channel for asynchronous consumers.
// A consumer that falls behind skips intermediate values but always
// receives the latest one; it is never disconnected for being slow.
type State struct {
	mu       sync.Mutex
	subject  *broadcast.Subject[Session]
	watchers *broadcast.MemoryBroadcaster[Session]
}

// NewState returns a State holding the anonymous session.
func NewState() *State {
	s := &State{
		subject:  broadcast.NewSubject(Anonymous()),
		watchers: broadcast.NewMemoryBroadcaster[Session](1, broadcast.WithReplayLatest(), broadcast.WithKeepLatest()),
	}
	_ = s.watchers.Broadcast(context.Background(), broadcast.Message[Session]{Data: Anonymous()})
	return s
}

// Current returns a copy of the current session.
func (s *State) Current() Session {
	return s.subject.Value().Clone()
}

// TransitionTo replaces the current session and notifies subscribers.
// Invalid sessions are replaced by the anonymous session before publication.
// It returns the session actually published.
func (s *State) TransitionTo(next Session) Session {
	next = next.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.subject.Next(next)
	_ = s.watchers.Broadcast(context.Background(), broadcast.Message[Session]{Data: next.Clone()})
	return next.Clone()
}

// Subscribe calls fn with the current session and then with every
// subsequent one. The returned function removes the subscription.
func (s *State) Subscribe(fn func(Session)) (unsubscribe func()) {
	return s.subject.Subscribe(func(v Session) { fn(v.Clone()) })
}

// Watch returns a channel that receives the current session followed by
// later transitions. The channel is closed when ctx is done or the State
// is closed.
func (s *State) Watch(ctx context.Context) <-chan Session {
	sub := s.watchers.Subscribe(ctx)
	out := make(chan Session)

	go func() {
		defer close(out)
		defer sub.Close()
		for msg := range sub.Receive(ctx) {
			select {
			case out <- msg.Data.Clone():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Close releases every watcher.
func (s *State) Close() error {
	return s.watchers.Close()
}
