package api

import (
	"time"

	"github.com/dmitrymomot/eventhub/pkg/account"
	"github.com/dmitrymomot/eventhub/pkg/event"
	"github.com/dmitrymomot/eventhub/pkg/session"
)

// Profile is an account as shown to its owner. The password never leaves
// the process.
type Profile struct {
	Username       string    `json:"username"`
	Role           string    `json:"role"`
	Email          string    `json:"email,omitempty"`
	FullName       string    `json:"fullName,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	LoginTime      time.Time `json:"loginTime,omitzero"`
	LastActivity   time.Time `json:"lastActivity,omitzero"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

func newProfile(a account.Account) Profile {
	role := a.Role
	if role == "" {
		role = account.RoleUser
	}
	return Profile{
		Username:       a.Username,
		Role:           role,
		Email:          a.Email,
		FullName:       a.FullName,
		Bio:            a.Bio,
		Phone:          a.Phone,
		ProfilePicture: a.ProfilePicture,
		LoginTime:      a.LoginTime,
		LastActivity:   a.LastActivity,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// SessionView is the public shape of the current session.
type SessionView struct {
	Authenticated    bool      `json:"authenticated"`
	User             *Profile  `json:"user,omitempty"`
	ExpiresAt        time.Time `json:"expiresAt,omitzero"`
	RemainingSeconds int64     `json:"remainingSeconds"`
}

func newSessionView(s session.Session, now time.Time) SessionView {
	v := SessionView{Authenticated: s.Authenticated}
	if !s.Authenticated {
		return v
	}
	p := newProfile(*s.Account)
	v.User = &p
	v.ExpiresAt = s.Expiry
	v.RemainingSeconds = int64(s.Remaining(now) / time.Second)
	return v
}

// EventView adds derived attendance figures to an event.
type EventView struct {
	event.Event
	Full              bool `json:"full"`
	CanRegister       bool `json:"canRegister"`
	AttendancePercent int  `json:"attendancePercent"`
}

func newEventView(e event.Event) EventView {
	return EventView{
		Event:             e,
		Full:              e.Full(),
		CanRegister:       e.CanRegister(),
		AttendancePercent: e.AttendancePercent(),
	}
}

func newEventViews(events []event.Event) []EventView {
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, newEventView(e))
	}
	return views
}

// Dashboard is the landing page payload.
type Dashboard struct {
	User         Profile     `json:"user"`
	Stats        event.Stats `json:"stats"`
	RecentEvents []EventView `json:"recentEvents"`
}
