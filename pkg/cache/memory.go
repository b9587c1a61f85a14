package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a single cached value plus its expiry instant
type entry struct {
	value     []byte
	expiresAt time.Time
}

// expired checks whether the entry is past its TTL at the given time.
// Zero expiresAt means no expiration.
func (e entry) expired(now time.Time) bool {
	if e.expiresAt.IsZero() {
		return false
	}
	return now.After(e.expiresAt)
}

// MemoryCache is an in-process Cache backed by a map. Safe for concurrent
// use; the single catalog entry is read and overwritten by many requests,
// last writer wins.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	stop chan struct{} // closes the janitor goroutine
	once sync.Once
}

// NewMemoryCache creates a cache and starts a background janitor that
// evicts expired entries on the given interval. The janitor only frees
// memory - Get already treats expired entries as misses.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	go c.janitor(cleanupInterval)
	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || e.expired(time.Now()) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Close stops the janitor and drops all entries
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })

	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

// janitor evicts expired entries on a schedule
func (c *MemoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.entries {
				if e.expired(now) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
