package session

import (
	"time"

	"github.com/dmitrymomot/eventhub/pkg/account"
)

// Session is the current authentication state. A valid session is either
// anonymous (all fields zero) or authenticated with both Account and Expiry set.
// JSON names match the durable record format.
type Session struct {
	Authenticated bool             `json:"isAuthenticated"`
	Account       *account.Account `json:"user"`
	Expiry        time.Time        `json:"sessionExpiry,omitzero"`
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session {
	return Session{}
}

// Authenticated returns an authenticated session for a expiring at expiry.
func Authenticated(a account.Account, expiry time.Time) Session {
	return Session{Authenticated: true, Account: &a, Expiry: expiry}
}

// Valid reports whether the session satisfies its invariant:
// authenticated iff account present iff expiry present.
func (s Session) Valid() bool {
	hasAccount := s.Account != nil
	hasExpiry := !s.Expiry.IsZero()
	return s.Authenticated == hasAccount && s.Authenticated == hasExpiry
}

// Normalize returns s when valid and the anonymous session otherwise.
func (s Session) Normalize() Session {
	if !s.Valid() {
		return Anonymous()
	}
	return s.Clone()
}

// Clone returns a copy that shares no memory with s.
func (s Session) Clone() Session {
	if s.Account != nil {
		a := *s.Account
		s.Account = &a
	}
	return s
}

// WithAccount returns a copy of s holding a. Expiry is unchanged.
func (s Session) WithAccount(a account.Account) Session {
	s.Account = &a
	return s
}

// ExpiredAt reports whether an authenticated session's expiry is at or before now.
func (s Session) ExpiredAt(now time.Time) bool {
	return s.Authenticated && !s.Expiry.After(now)
}

// Remaining returns the time left until expiry, never negative.
func (s Session) Remaining(now time.Time) time.Duration {
	if !s.Authenticated {
		return 0
	}
	return max(s.Expiry.Sub(now), 0)
}

// Username returns the account username or an empty string.
func (s Session) Username() string {
	if s.Account == nil {
		return ""
	}
	return s.Account.Username
}

// Equal reports whether two sessions carry the same values.
func (s Session) Equal(other Session) bool {
	if s.Authenticated != other.Authenticated || !s.Expiry.Equal(other.Expiry) {
		return false
	}
	if s.Account == nil || other.Account == nil {
		return s.Account == other.Account
	}
	a, b := *s.Account, *other.Account
	return a.Username == b.Username &&
		a.Password == b.Password &&
		a.Role == b.Role &&
		a.Email == b.Email &&
		a.FullName == b.FullName &&
		a.Bio == b.Bio &&
		a.Phone == b.Phone &&
		a.ProfilePicture == b.ProfilePicture &&
		a.LoginTime.Equal(b.LoginTime) &&
		a.LastActivity.Equal(b.LastActivity) &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}
