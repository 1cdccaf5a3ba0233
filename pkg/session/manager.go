package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/eventhub/pkg/account"
	"github.com/dmitrymomot/eventhub/pkg/clock"
	"github.com/dmitrymomot/eventhub/pkg/logger"
)

// Accounts is the account store the Manager authenticates against.
type Accounts interface {
	Authenticate(ctx context.Context, username, password string) (account.Account, bool)
	Register(ctx context.Context, username, password string) (account.Account, error)
	FindByIdentifier(username string) (account.Account, bool)
	UpdateAccount(ctx context.Context, username string, p account.Patch) (account.Account, error)
	UpdateSecret(ctx context.Context, username, current, next string) error
}

// Manager owns the session lifecycle. Construct it with New and drive it
// from the composition root; it holds no global state.
type Manager struct {
	mu        sync.Mutex
	accounts  Accounts
	state     *State
	timer     *Timer
	monitor   *Monitor
	signals   SignalSource
	persister Persister
	navigator Navigator
	clock     clock.Clock
	timeout   time.Duration
	log       *slog.Logger
	baseCtx   context.Context
	started   bool
}

// New returns a Manager holding the anonymous session. Call Start to
// restore the persisted session and begin observing activity.
func New(accounts Accounts, opts ...Option) *Manager {
	m := &Manager{
		accounts:  accounts,
		persister: nopPersister{},
		navigator: nopNavigator{},
		clock:     clock.Real(),
		timeout:   DefaultConfig().Timeout,
		log:       logger.Discard(),
		baseCtx:   context.Background(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.log = m.log.With(logger.Component("session"))
	if m.state == nil {
		m.state = NewState()
	}
	m.timer = NewTimer(m.expire, WithTimerClock(m.clock), WithTimerLogger(m.log))
	m.monitor = NewMonitor(m.signals, m.recordActivity)
	return m
}

// Start restores the persisted session, arms the timer for its remaining
// lifetime and starts the activity monitor. ctx scopes background work such
// as expiry handling and must not be cancelled before Close. Calling Start
// again has no effect.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.baseCtx = context.WithoutCancel(ctx)

	restored := m.persister.Restore(ctx)
	if restored.Authenticated {
		if restored.ExpiredAt(m.clock.Now()) {
			m.persister.Clear(ctx)
		} else {
			m.apply(ctx, restored)
			m.log.InfoContext(ctx, "session restored",
				logger.Username(restored.Username()),
				logger.Expiry(restored.Expiry),
			)
		}
	}
	m.mu.Unlock()

	m.monitor.Start(m.baseCtx)
}

// Close stops the monitor and the timer and releases watchers.
// The current session stays persisted.
func (m *Manager) Close() error {
	m.monitor.Stop()
	m.timer.Cancel()
	return m.state.Close()
}

// Login authenticates and starts a fresh session lasting the configured timeout.
// On failure the current session is left unchanged.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	a, ok := m.accounts.Authenticate(ctx, username, password)
	if !ok {
		m.log.InfoContext(ctx, "login rejected", logger.Username(username))
		return ErrInvalidCredential
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	a.LoginTime = now
	a.LastActivity = now
	s := m.apply(ctx, Authenticated(a, now.Add(m.timeout)))

	m.log.InfoContext(ctx, "login succeeded",
		logger.Username(username),
		logger.Role(a.Role),
		logger.Expiry(s.Expiry),
	)
	return nil
}

// Logout ends the session and navigates to the login surface.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	prev := m.state.Current()
	m.apply(ctx, Anonymous())
	m.mu.Unlock()

	m.log.InfoContext(ctx, "logout", logger.Username(prev.Username()))
	m.navigator.ToLogin(ctx, ReasonLogout)
	return nil
}

// Refresh restarts the session lifetime from now and supersedes the armed timer.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.state.Current()
	if !cur.Authenticated {
		return ErrNotAuthenticated
	}

	now := m.clock.Now()
	a := *cur.Account
	a.LastActivity = now
	s := m.apply(ctx, Authenticated(a, now.Add(m.timeout)))

	m.log.DebugContext(ctx, "session refreshed", logger.Username(a.Username), logger.Expiry(s.Expiry))
	return nil
}

// Register creates an account. It does not log the new account in.
func (m *Manager) Register(ctx context.Context, username, password string) (account.Account, error) {
	return m.accounts.Register(ctx, username, password)
}

// UpdateProfile patches the logged-in account and refreshes the session
// copy. Login and activity stamps of the session are kept.
func (m *Manager) UpdateProfile(ctx context.Context, p account.Patch) (account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.state.Current()
	if !cur.Authenticated {
		return account.Account{}, ErrNotAuthenticated
	}

	updated, err := m.accounts.UpdateAccount(ctx, cur.Account.Username, p)
	if err != nil {
		return account.Account{}, err
	}
	m.apply(ctx, cur.WithAccount(carryStamps(updated, *cur.Account)))
	return updated, nil
}

// ChangePassword replaces the logged-in account's password.
// ErrInvalidCredential is returned when current does not match.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.state.Current()
	if !cur.Authenticated {
		return ErrNotAuthenticated
	}

	username := cur.Account.Username
	if err := m.accounts.UpdateSecret(ctx, username, current, next); err != nil {
		if errors.Is(err, account.ErrInvalidCredential) {
			return ErrInvalidCredential
		}
		return err
	}

	if updated, ok := m.accounts.FindByIdentifier(username); ok {
		m.apply(ctx, cur.WithAccount(carryStamps(updated, *cur.Account)))
	}
	return nil
}

// Update atomically replaces the session with fn's result when fn reports a change.
// The timer follows the new expiry; an anonymous result cancels it.
func (m *Manager) Update(ctx context.Context, fn func(Session) (Session, bool)) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.state.Current()
	next, changed := fn(cur.Clone())
	if !changed {
		return cur
	}
	return m.apply(ctx, next)
}

// Session returns a copy of the current session.
func (m *Manager) Session() Session {
	return m.state.Current()
}

// State exposes the session holder for subscriptions.
func (m *Manager) State() *State {
	return m.state
}

// IsLoggedIn reports whether the current session is authenticated.
func (m *Manager) IsLoggedIn() bool {
	return m.state.Current().Authenticated
}

// CurrentUser returns the logged-in account.
func (m *Manager) CurrentUser() (account.Account, bool) {
	s := m.state.Current()
	if !s.Authenticated {
		return account.Account{}, false
	}
	return *s.Account, true
}

// Role returns the logged-in account's role or an empty string.
func (m *Manager) Role() string {
	if a, ok := m.CurrentUser(); ok {
		return a.Role
	}
	return ""
}

// HasRole reports whether the current account has role.
func (m *Manager) HasRole(role string) bool {
	return role != "" && m.Role() == role
}

// TimeRemaining returns the time left before expiry, zero when anonymous.
func (m *Manager) TimeRemaining() time.Duration {
	return m.state.Current().Remaining(m.clock.Now())
}

// Timeout returns the configured session lifetime.
func (m *Manager) Timeout() time.Duration {
	return m.timeout
}

// recordActivity stamps LastActivity without touching the expiry.
func (m *Manager) recordActivity(ctx context.Context, kind SignalKind) {
	m.Update(ctx, func(s Session) (Session, bool) {
		if !s.Authenticated {
			return s, false
		}
		a := *s.Account
		a.LastActivity = m.clock.Now()
		return s.WithAccount(a), true
	})
}

func (m *Manager) expire(deadline time.Time) {
	ctx := m.baseCtx

	m.mu.Lock()
	cur := m.state.Current()
	if !cur.Authenticated || !cur.Expiry.Equal(deadline) {
		m.mu.Unlock()
		m.log.DebugContext(ctx, "stale expiry ignored", logger.Expiry(deadline))
		return
	}
	m.apply(ctx, Anonymous())
	m.mu.Unlock()

	m.log.InfoContext(ctx, "session expired", logger.Username(cur.Username()), logger.Expiry(deadline))
	m.navigator.ToLogin(ctx, ReasonSessionExpired)
}

// apply publishes next, mirrors it to storage and aligns the timer.
// m.mu must be held.
func (m *Manager) apply(ctx context.Context, next Session) Session {
	published := m.state.TransitionTo(next)
	m.persister.Persist(ctx, published)

	if !published.Authenticated {
		m.timer.Cancel()
		return published
	}
	if deadline, armed := m.timer.Deadline(); !armed || !deadline.Equal(published.Expiry) {
		m.timer.ArmAt(published.Expiry)
	}
	return published
}

func carryStamps(updated, session account.Account) account.Account {
	updated.LoginTime = session.LoginTime
	updated.LastActivity = session.LastActivity
	return updated
}
