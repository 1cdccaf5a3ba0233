package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of *pgxpool.Pool used by Storage.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// Storage is a key-value store over the kv_records table.
type Storage struct {
	db querier
}

// NewStorage returns a Storage using db, typically a *pgxpool.Pool.
func NewStorage(db querier) *Storage {
	return &Storage{db: db}
}

// Get returns nil, nil when key is absent.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_records WHERE key = $1`, key).Scan(&value)
	if IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return value, nil
}

// Set upserts val under key.
func (s *Storage) Set(ctx context.Context, key string, val []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO kv_records (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, val)
	if err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM kv_records WHERE key = $1`, key); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

// Ping reports whether the database accepts connections.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}
