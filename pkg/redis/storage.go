package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Storage is a key-value store over a Redis client. Keys are namespaced
// with an optional prefix; values never expire.
type Storage struct {
	db     redis.UniversalClient
	prefix string
}

// StorageOption configures a Storage.
type StorageOption func(*Storage)

// WithKeyPrefix namespaces every key with prefix.
func WithKeyPrefix(prefix string) StorageOption {
	return func(s *Storage) {
		s.prefix = prefix
	}
}

// NewStorage wraps client.
func NewStorage(client redis.UniversalClient, opts ...StorageOption) *Storage {
	s := &Storage{db: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns nil for empty keys and missing values (redis.Nil becomes nil).
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrCommandFailed, err)
	}
	return val, nil
}

// Set stores val under key without expiration. Empty keys are ignored.
func (s *Storage) Set(ctx context.Context, key string, val []byte) error {
	if key == "" {
		return nil
	}
	if err := s.db.Set(ctx, s.prefix+key, val, 0).Err(); err != nil {
		return errors.Join(ErrCommandFailed, err)
	}
	return nil
}

// Delete removes a key. Empty keys are ignored.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.db.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrCommandFailed, err)
	}
	return nil
}

// Ping reports whether the server answers.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

// Close terminates the Redis connection.
func (s *Storage) Close() error {
	return s.db.Close()
}
