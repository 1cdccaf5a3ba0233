package kvstore

import (
	"context"
	"errors"
)

// Storage is a byte-valued key-value store.
type Storage interface {
	// Get returns the value under key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var (
	ErrUnknownDriver = errors.New("kvstore: unknown storage driver")
	ErrStorageFailed = errors.New("kvstore: storage operation failed")
)
