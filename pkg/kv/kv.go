// Package kv provides the key-value store abstraction the token repository
// persists into. Keys are strings, values are opaque byte slices and every
// write carries a TTL owned by the store.
package kv

import (
	"context"
	"time"
)

// Store defines a minimal key-value interface for token storage.
type Store interface {
	// Set stores a value with the given key and TTL.
	// If TTL is 0, the key does not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value by key. Returns ErrNotFound if key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Replace atomically reads the current value and overwrites it with
	// value and a fresh TTL, but only if the key already exists. It returns
	// the previous value, or ErrNotFound when there was none (in which case
	// nothing is written).
	Replace(ctx context.Context, key string, value []byte, ttl time.Duration) ([]byte, error)

	// Take atomically reads and deletes a key, returning the value that was
	// present. Returns ErrNotFound if key doesn't exist.
	Take(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Returns nil if key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the connection to the store.
	Close() error
}
