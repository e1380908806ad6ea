// Package resultcache serves built archives by request fingerprint and collapses
// concurrent identical builds into one.
package resultcache

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// BuildFunc produces the entry for a cache miss.
type BuildFunc func(ctx context.Context) (*domain.CacheEntry, error)

// Cache is a TTL cache of built archives in front of a ResultStore.
type Cache struct {
	store  ports.ResultStore
	logger ports.Logger
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group
}

// New creates a new Cache storing entries for ttl.
func New(store ports.ResultStore, logger ports.Logger, ttl time.Duration) *Cache {
	return &Cache{
		store:  store,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// GetOrBuild returns the entry stored for fingerprint, or runs build and stores its
// result. It reports whether the entry was served from the store.
//
// Concurrent misses for the same fingerprint share one build. The shared build is
// not canceled when a caller's context ends; that caller just stops waiting.
func (c *Cache) GetOrBuild(
	ctx context.Context,
	fingerprint string,
	build BuildFunc,
) (*domain.CacheEntry, bool, error) {
	key := domain.CacheKey(fingerprint)

	if entry := c.lookup(ctx, key); entry != nil {
		return entry, true, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// A flight that finished just before this one may have stored the entry.
		if entry := c.lookup(detached, key); entry != nil {
			return entry, nil
		}

		entry, err := build(detached)
		if err != nil {
			return nil, err
		}
		entry.Fingerprint = fingerprint
		entry.StoredAt = c.now()
		entry.TTL = c.ttl

		if err := c.store.Put(detached, key, entry); err != nil {
			c.logger.Warn(fmt.Sprintf("failed to store build %s: %v", fingerprint, err))
		}
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		entry, ok := res.Val.(*domain.CacheEntry)
		if !ok {
			return nil, false, zerr.With(domain.ErrStoreReadFailed, "key", key)
		}
		return entry, false, nil
	}
}

// Invalidate removes every build whose fingerprint starts with prefix.
// An empty prefix removes all builds.
func (c *Cache) Invalidate(ctx context.Context, prefix string) (int, error) {
	return c.store.Invalidate(ctx, domain.CacheKey(prefix))
}

func (c *Cache) lookup(ctx context.Context, key string) *domain.CacheEntry {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("cache lookup for %s failed, rebuilding: %v", key, err))
		return nil
	}
	if entry != nil && entry.Expired(c.now()) {
		return nil
	}
	return entry
}
