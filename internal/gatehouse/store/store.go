// Package store defines the shared key-value contract backing rate limiting
// and revocation. Both concerns need the same four primitives, so they share
// one interface and one backing database.
package store

import (
	"context"
	"time"
)

// KV is a string key-value store with per-key expiry and an atomic counter.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent or
	// expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes key=value. A zero ttl means the entry never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Incr atomically increments the integer counter at key and returns the
	// new value. A missing or expired key restarts from 1, with ttl applied
	// at that point. The ttl is not extended on subsequent increments, which
	// is what makes fixed-window counting work.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Sweeper is implemented by drivers that accumulate expired rows and need a
// periodic cleanup pass. The memory driver drops expired entries lazily and
// does not implement it.
type Sweeper interface {
	// DeleteExpired removes entries whose expiry has passed, returning the
	// number removed.
	DeleteExpired(ctx context.Context) (int64, error)
}
