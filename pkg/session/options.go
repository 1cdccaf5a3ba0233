package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/eventhub/pkg/clock"
)

// Option configures a Manager.
type Option func(*Manager)

// WithConfig applies cfg. A non-positive timeout keeps the default.
func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		if cfg.Timeout > 0 {
			m.timeout = cfg.Timeout
		}
	}
}

// WithTimeout sets the session duration. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithPersister sets the durable session store.
func WithPersister(p Persister) Option {
	return func(m *Manager) {
		if p != nil {
			m.persister = p
		}
	}
}

// WithNavigator sets where forced logouts send the client.
func WithNavigator(n Navigator) Option {
	return func(m *Manager) {
		if n != nil {
			m.navigator = n
		}
	}
}

// WithSignalSource sets where the activity monitor listens.
// Without it, activity is only recorded through Update.
func WithSignalSource(src SignalSource) Option {
	return func(m *Manager) { m.signals = src }
}

// WithClock sets the manager clock.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithState shares an existing State, e.g. one observed before the Manager starts.
func WithState(s *State) Option {
	return func(m *Manager) {
		if s != nil {
			m.state = s
		}
	}
}
