package catalog

import (
	"sync"
	"time"
)

const (
	packDocPrefix   = "GET-PACK-DOCUMENT::"
	bundleDocPrefix = "GET-BUNDLE-DOCUMENT::"
)

type docEntry struct {
	value   any
	expires time.Time
}

// docCache memoizes catalog documents for a fixed TTL.
type docCache struct {
	mu      sync.RWMutex
	entries map[string]docEntry
	ttl     time.Duration
	now     func() time.Time
}

func newDocCache(ttl time.Duration) *docCache {
	return &docCache{
		entries: make(map[string]docEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *docCache) get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expires) {
		c.mu.Lock()
		if current, ok := c.entries[key]; ok && current.expires.Equal(entry.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *docCache) set(key string, value any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = docEntry{value: value, expires: c.now().Add(c.ttl)}
}
