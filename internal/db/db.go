// Package db defines the key-value storage contract used for the embedding
// cache and the token budget counters.
package db

import (
	"context"
	"time"
)

// Store is the full facade returned by drivers: connectivity plus key-value access.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BlobStore stores opaque values, optionally expiring. Used by the embedding cache.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CounterStore maintains integer counters with expiry. Used by the token budget.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// KVStore is the union of the value and counter operations. Get returns
// ErrKeyNotFound for a missing key.
type KVStore interface {
	BlobStore
	CounterStore
}
