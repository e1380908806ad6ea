// Package store implements the key-value spaces backing the result cache.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.trai.ch/packsmith/internal/core/domain"
)

// MemoryStore keeps entries in process memory and expires them lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.CacheEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*domain.CacheEntry),
		now:     time.Now,
	}
}

// Get implements ports.ResultStore.
func (s *MemoryStore) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if entry.Expired(s.now()) {
		s.mu.Lock()
		// Only drop the entry we saw; a fresh Put may have replaced it.
		if s.entries[key] == entry {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, nil
	}
	return entry, nil
}

// Put implements ports.ResultStore.
func (s *MemoryStore) Put(_ context.Context, key string, entry *domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

// Invalidate implements ports.ResultStore.
func (s *MemoryStore) Invalidate(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}
