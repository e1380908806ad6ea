// Package usage implements download accounting storage.
package usage

import (
	"context"
	"maps"
	"sync"

	"go.trai.ch/packsmith/internal/core/domain"
)

type dayKey struct {
	packageID string
	day       string
}

// MemoryStore keeps accounting in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	days   map[dayKey]*domain.DailyUsage
	totals map[string]int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		days:   make(map[dayKey]*domain.DailyUsage),
		totals: make(map[string]int64),
	}
}

// AddIfAbsent implements ports.UsageStore.
func (s *MemoryStore) AddIfAbsent(_ context.Context, entry domain.DownloadAccountingEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{packageID: entry.PackageID, day: entry.Day}
	doc, ok := s.days[key]
	if !ok {
		doc = &domain.DailyUsage{
			PackageID: entry.PackageID,
			Day:       entry.Day,
			Users:     make(map[string]int),
		}
		s.days[key] = doc
	}

	if _, seen := doc.Users[entry.UserHash]; seen {
		return false, nil
	}

	// Totals count users; the weight is only stored.
	doc.Users[entry.UserHash] = entry.Weight
	doc.Total++
	s.totals[entry.PackageID]++
	return true, nil
}

// Daily implements ports.UsageStore.
func (s *MemoryStore) Daily(_ context.Context, packageID, day string) (*domain.DailyUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.days[dayKey{packageID: packageID, day: day}]
	if !ok {
		return &domain.DailyUsage{PackageID: packageID, Day: day, Users: map[string]int{}}, nil
	}

	out := *doc
	out.Users = maps.Clone(doc.Users)
	return &out, nil
}

// Total implements ports.UsageStore.
func (s *MemoryStore) Total(_ context.Context, packageID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals[packageID], nil
}

// Close implements io.Closer.
func (s *MemoryStore) Close() error {
	return nil
}
