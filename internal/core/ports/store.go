package ports

import (
	"context"

	"go.trai.ch/packsmith/internal/core/domain"
)

// ResultStore defines the key-value space backing the result cache.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ResultStore interface {
	// Get retrieves the entry stored under key.
	// Returns nil, nil if not found or expired.
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)

	// Put stores the entry under key, replacing any previous entry.
	Put(ctx context.Context, key string, entry *domain.CacheEntry) error

	// Invalidate removes every entry whose key starts with prefix and returns how many were removed.
	Invalidate(ctx context.Context, prefix string) (int, error)
}
