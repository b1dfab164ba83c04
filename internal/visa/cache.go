package visa

import (
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long fetched visa data stays fresh.
const DefaultTTL = 24 * time.Hour

// cacheEntry records a cached value along with its expiry. A zero expiry
// never expires.
type cacheEntry struct {
	value   any
	expires time.Time
}

// Cache is the single in-memory cache for visa data. Entries expire after
// the configured TTL; stale entries are dropped lazily on access.
// The clock is injectable for tests.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
	// gen counts Clear calls. SetFor drops writes started before the
	// latest Clear.
	gen uint64
}

// NewCache builds a Cache. A ttl <= 0 keeps entries until Clear.
// A nil now defaults to time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now, entries: make(map[string]cacheEntry)}
}

// Get returns the live value for key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *Cache) setLocked(key string, value any) {
	e := cacheEntry{value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[key] = e
}

// Generation returns the current clear generation. Read it before a slow
// fetch and hand it to SetFor with the result.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetFor stores value under key unless Clear has run since gen was read.
// It reports whether the value was stored.
func (c *Cache) SetFor(gen uint64, key string, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	c.setLocked(key, value)
	return true
}

// Clear purges every entry and starts a new generation.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.gen++
}

// CacheStats describes the cache contents. Keys are sorted.
type CacheStats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// Stats reports the keys currently held, including entries that have
// expired but not yet been evicted.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return CacheStats{Size: len(keys), Keys: keys}
}
