// Package persistence mirrors the session and registered accounts to a
// kvstore.Storage. It is the only component that reads or writes the
// durable keys, and it never reports storage faults to its callers: they
// are logged and the affected record is treated as absent.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/eventhub/pkg/account"
	"github.com/dmitrymomot/eventhub/pkg/clock"
	"github.com/dmitrymomot/eventhub/pkg/kvstore"
	"github.com/dmitrymomot/eventhub/pkg/logger"
	"github.com/dmitrymomot/eventhub/pkg/session"
)

// Durable storage keys.
const (
	KeySession   = "auth_session"
	KeyAccounts  = "registered_users"
	KeyReturnURL = "returnUrl"
)

// ErrMalformedRecord marks a stored record that could not be decoded or
// violates the session invariant. It is only ever logged.
var ErrMalformedRecord = errors.New("persistence: malformed record")

// Bridge implements session.Persister and account.AccountPersister.
type Bridge struct {
	store kvstore.Storage
	clock clock.Clock
	log   *slog.Logger
}

var (
	_ session.Persister        = (*Bridge)(nil)
	_ account.AccountPersister = (*Bridge)(nil)
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithClock sets the clock used to judge restored expiries.
func WithClock(c clock.Clock) Option {
	return func(b *Bridge) { b.clock = c }
}

// WithLogger sets the logger for storage faults.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// New returns a Bridge over store.
func New(store kvstore.Storage, opts ...Option) *Bridge {
	b := &Bridge{
		store: store,
		clock: clock.Real(),
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With(logger.Component("persistence"))
	return b
}

// Restore returns the stored session when its expiry is strictly in the
// future. Expired and malformed records are removed and the anonymous
// session is returned.
func (b *Bridge) Restore(ctx context.Context) session.Session {
	raw, err := b.store.Get(ctx, KeySession)
	if err != nil {
		b.log.ErrorContext(ctx, "failed to read session record", logger.StorageKey(KeySession), logger.Error(err))
		return session.Anonymous()
	}
	if raw == nil {
		return session.Anonymous()
	}

	s, err := decodeSession(raw)
	if err != nil {
		b.log.WarnContext(ctx, "discarding session record", logger.StorageKey(KeySession), logger.Error(err))
		b.Clear(ctx)
		return session.Anonymous()
	}

	if s.ExpiredAt(b.clock.Now()) {
		b.log.InfoContext(ctx, "discarding expired session record",
			logger.Username(s.Username()),
			logger.Expiry(s.Expiry),
		)
		b.Clear(ctx)
		return session.Anonymous()
	}
	return s
}

// Persist overwrites the session record. Anonymous sessions clear it.
func (b *Bridge) Persist(ctx context.Context, s session.Session) {
	if !s.Authenticated {
		b.Clear(ctx)
		return
	}
	b.write(ctx, KeySession, s)
}

// Clear removes the session record.
func (b *Bridge) Clear(ctx context.Context) {
	b.remove(ctx, KeySession)
}

// PersistAccounts rewrites the registered-accounts record in full.
func (b *Bridge) PersistAccounts(ctx context.Context, accounts []account.Account) {
	if accounts == nil {
		accounts = []account.Account{}
	}
	b.write(ctx, KeyAccounts, accounts)
}

// RestoreAccounts returns the registered accounts, or nil when the record
// is absent or unreadable.
func (b *Bridge) RestoreAccounts(ctx context.Context) []account.Account {
	raw, err := b.store.Get(ctx, KeyAccounts)
	if err != nil {
		b.log.ErrorContext(ctx, "failed to read accounts record", logger.StorageKey(KeyAccounts), logger.Error(err))
		return nil
	}
	if raw == nil {
		return nil
	}

	var accounts []account.Account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		b.log.WarnContext(ctx, "ignoring accounts record",
			logger.StorageKey(KeyAccounts),
			logger.Error(errors.Join(ErrMalformedRecord, err)),
		)
		return nil
	}
	return accounts
}

// SetReturnURL remembers where to go after the next login.
func (b *Bridge) SetReturnURL(ctx context.Context, url string) {
	if err := b.store.Set(ctx, KeyReturnURL, []byte(url)); err != nil {
		b.log.ErrorContext(ctx, "failed to write return url", logger.StorageKey(KeyReturnURL), logger.Error(err))
	}
}

// TakeReturnURL returns the remembered URL and removes it.
func (b *Bridge) TakeReturnURL(ctx context.Context) (string, bool) {
	raw, err := b.store.Get(ctx, KeyReturnURL)
	if err != nil {
		b.log.ErrorContext(ctx, "failed to read return url", logger.StorageKey(KeyReturnURL), logger.Error(err))
		return "", false
	}
	if raw == nil {
		return "", false
	}
	b.remove(ctx, KeyReturnURL)
	if len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

func (b *Bridge) write(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		b.log.ErrorContext(ctx, "failed to encode record", logger.StorageKey(key), logger.Error(err))
		return
	}
	if err := b.store.Set(ctx, key, raw); err != nil {
		b.log.ErrorContext(ctx, "failed to write record", logger.StorageKey(key), logger.Error(err))
	}
}

func (b *Bridge) remove(ctx context.Context, key string) {
	if err := b.store.Delete(ctx, key); err != nil {
		b.log.ErrorContext(ctx, "failed to remove record", logger.StorageKey(key), logger.Error(err))
	}
}

func decodeSession(raw []byte) (session.Session, error) {
	var s session.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return session.Session{}, errors.Join(ErrMalformedRecord, err)
	}
	if !s.Authenticated || !s.Valid() {
		return session.Session{}, fmt.Errorf("%w: incomplete session", ErrMalformedRecord)
	}
	return s, nil
}
