// Package cache provides the key-value cache the catalog read path sits
// behind. Implementations should degrade gracefully - callers treat any
// error as a miss and fall back to the database, which stays authoritative.
package cache

import (
	"context"
	"time"
)

// Cache is a minimal key-value cache contract
type Cache interface {
	// Get returns the raw bytes for key. ok=false on a miss; an expired
	// entry behaves exactly like an absent one.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value for key and resets its expiry, overwriting any
	// existing entry unconditionally.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key regardless of its expiry state.
	// Deleting an absent key is a no-op, not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the cache's resources. Called once on shutdown.
	Close() error
}
