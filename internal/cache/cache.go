// Package cache provides the process-wide, time-bounded memoization of each
// user's assembled context bundle.
//
// The cache is an explicit instance owned by the composition root and passed
// to the briefing service, so it can be tested in isolation. Expiry is lazy:
// an entry older than the TTL is deleted by the read that discovers it.
// There is no capacity bound and no background sweep. Concurrent misses for
// the same key are not deduplicated; both callers fetch and the last write
// wins, which is acceptable because assembly is read-only and idempotent.
package cache

import (
	"sync"
	"time"

	"github.com/daybrief/daybrief/pkg/models"
)

type entry struct {
	bundle    models.ContextBundle
	createdAt time.Time
}

// ContextCache is a thread-safe TTL cache keyed by user identity.
type ContextCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry

	// now is swapped in tests to control expiry.
	now func() time.Time
}

// New creates an empty context cache with the given TTL.
func New(ttl time.Duration) *ContextCache {
	return &ContextCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached bundle for key if present and within the TTL.
// An expired entry is purged and reported as absent.
func (c *ContextCache) Get(key string) (models.ContextBundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return models.ContextBundle{}, false
	}
	if c.now().Sub(e.createdAt) > c.ttl {
		delete(c.entries, key)
		return models.ContextBundle{}, false
	}
	return e.bundle, true
}

// Set stores the bundle for key, replacing any previous entry wholesale.
func (c *ContextCache) Set(key string, bundle models.ContextBundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{bundle: bundle, createdAt: c.now()}
}

// Invalidate removes the entry for key.
func (c *ContextCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *ContextCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports the number of live entries, expired or not. Diagnostics only.
func (c *ContextCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
