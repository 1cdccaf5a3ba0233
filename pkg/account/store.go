package account

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/eventhub/pkg/clock"
	"github.com/dmitrymomot/eventhub/pkg/logger"
)

// AccountPersister mirrors registered accounts to durable storage.
// Implementations handle their own faults; the store never fails because
// of persistence.
type AccountPersister interface {
	PersistAccounts(ctx context.Context, accounts []Account)
	RestoreAccounts(ctx context.Context) []Account
}

// Store holds every known account. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	accounts  []Account
	persister AccountPersister
	clock     clock.Clock
	log       *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPersister sets where registered accounts are snapshotted.
func WithPersister(p AccountPersister) Option {
	return func(s *Store) { s.persister = p }
}

// WithClock sets the clock used for createdAt and updatedAt stamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore returns a store holding only the seed accounts. Call Load to
// merge previously registered accounts.
func NewStore(opts ...Option) *Store {
	s := &Store{
		accounts: Seeds(),
		clock:    clock.Real(),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("account"))
	return s
}

// Load appends the persisted registered accounts after the seeds.
// Seed usernames and duplicates in the record are skipped.
func (s *Store) Load(ctx context.Context) {
	if s.persister == nil {
		return
	}
	restored := s.persister.RestoreAccounts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range restored {
		if a.Username == "" || IsSeed(a.Username) || s.indexLocked(a.Username) >= 0 {
			s.log.WarnContext(ctx, "skipping restored account", logger.Username(a.Username))
			continue
		}
		s.accounts = append(s.accounts, a)
	}
	s.log.DebugContext(ctx, "accounts loaded", slog.Int("registered", len(s.accounts)-len(Seeds())))
}

// Register creates an account with the lowest-privilege role.
// The username comparison is exact and case-sensitive.
func (s *Store) Register(ctx context.Context, username, password string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(username) >= 0 {
		return Account{}, ErrDuplicateIdentifier
	}

	a := Account{
		Username:  username,
		Password:  password,
		Role:      RoleUser,
		CreatedAt: s.clock.Now(),
	}
	s.accounts = append(s.accounts, a)
	s.persistLocked(ctx)
	s.log.InfoContext(ctx, "account registered", logger.Username(username))
	return a, nil
}

// Authenticate returns the account matching both username and password.
func (s *Store) Authenticate(_ context.Context, username, password string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.accounts, func(a Account) bool {
		return a.Username == username && a.Password == password
	})
	if i < 0 {
		return Account{}, false
	}
	return s.accounts[i], true
}

// FindByIdentifier returns a copy of the account with username.
func (s *Store) FindByIdentifier(username string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(username)
	if i < 0 {
		return Account{}, false
	}
	return s.accounts[i], true
}

// UpdateAccount applies p to the account and stamps UpdatedAt.
func (s *Store) UpdateAccount(ctx context.Context, username string, p Patch) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(username)
	if i < 0 {
		return Account{}, ErrNotFound
	}

	updated := p.Apply(s.accounts[i])
	updated.UpdatedAt = s.clock.Now()
	s.accounts[i] = updated
	s.persistLocked(ctx)
	return updated, nil
}

// UpdateSecret replaces the password when current matches the stored one.
func (s *Store) UpdateSecret(ctx context.Context, username, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(username)
	if i < 0 {
		return ErrNotFound
	}
	if s.accounts[i].Password != current {
		return ErrInvalidCredential
	}

	s.accounts[i].Password = next
	s.accounts[i].UpdatedAt = s.clock.Now()
	s.persistLocked(ctx)
	s.log.InfoContext(ctx, "password changed", logger.Username(username))
	return nil
}

// All returns a copy of every account, seeds first.
func (s *Store) All() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.accounts)
}

func (s *Store) indexLocked(username string) int {
	return slices.IndexFunc(s.accounts, func(a Account) bool { return a.Username == username })
}

// persistLocked writes the non-seed subset while the write lock is held,
// so snapshots reach storage in mutation order.
func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	registered := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if !IsSeed(a.Username) {
			registered = append(registered, a)
		}
	}
	s.persister.PersistAccounts(ctx, registered)
}
