package api

import (
	"context"
	"net/url"

	"github.com/dmitrymomot/eventhub/pkg/broadcast"
	"github.com/dmitrymomot/eventhub/pkg/guard"
	"github.com/dmitrymomot/eventhub/pkg/session"
)

// Navigate tells connected clients to open URL.
type Navigate struct {
	URL    string `json:"url"`
	Reason string `json:"reason,omitempty"`
}

// Navigation implements session.Navigator by fanning navigation requests out
// to every open session stream. Requests made while no stream is open are
// dropped.
type Navigation struct {
	loginPath string
	hub       *broadcast.MemoryBroadcaster[Navigate]
}

var _ session.Navigator = (*Navigation)(nil)

// NavigationOption configures a Navigation.
type NavigationOption func(*Navigation)

// WithNavigationLoginPath sets the login page targeted by ToLogin.
func WithNavigationLoginPath(path string) NavigationOption {
	return func(n *Navigation) {
		if path != "" {
			n.loginPath = path
		}
	}
}

// NewNavigation returns a Navigation with no subscribers.
func NewNavigation(opts ...NavigationOption) *Navigation {
	n := &Navigation{
		loginPath: guard.LoginPath,
		hub:       broadcast.NewMemoryBroadcaster[Navigate](8),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ToLogin sends clients to the login page. A non-empty reason is passed as
// the message query parameter.
func (n *Navigation) ToLogin(ctx context.Context, reason string) {
	target := n.loginPath
	if reason != "" {
		target += "?" + url.Values{"message": {reason}}.Encode()
	}
	_ = n.hub.Broadcast(ctx, broadcast.Message[Navigate]{Data: Navigate{URL: target, Reason: reason}})
}

// Subscribe returns a subscriber that lives until ctx is done.
func (n *Navigation) Subscribe(ctx context.Context) broadcast.Subscriber[Navigate] {
	return n.hub.Subscribe(ctx)
}

// Listeners returns the number of open subscriptions.
func (n *Navigation) Listeners() int {
	return n.hub.Len()
}

// Close ends every subscription.
func (n *Navigation) Close() error {
	return n.hub.Close()
}
