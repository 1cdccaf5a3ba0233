package session

import "context"

// Persister mirrors the current session to durable storage. Implementations
// absorb storage faults; none of these calls can fail from the caller's view.
type Persister interface {
	// Restore returns the stored session, or the anonymous session when the
	// record is absent, expired or malformed.
	Restore(ctx context.Context) Session
	// Persist overwrites the stored record; anonymous sessions clear it.
	Persist(ctx context.Context, s Session)
	Clear(ctx context.Context)
}

// Navigation reasons passed to Navigator.ToLogin.
const (
	ReasonLogout         = ""
	ReasonSessionExpired = "session-expired"
)

// Navigator moves the user to the login surface.
type Navigator interface {
	ToLogin(ctx context.Context, reason string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, reason string)

// ToLogin calls f.
func (f NavigatorFunc) ToLogin(ctx context.Context, reason string) {
	f(ctx, reason)
}

type nopPersister struct{}

func (nopPersister) Restore(context.Context) Session { return Anonymous() }
func (nopPersister) Persist(context.Context, Session) {}
func (nopPersister) Clear(context.Context)            {}

type nopNavigator struct{}

func (nopNavigator) ToLogin(context.Context, string) {}
