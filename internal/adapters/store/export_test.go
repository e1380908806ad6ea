package store

import "time"

// SetClock replaces the clock used for expiry checks.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

// SetClock replaces the clock used for expiry checks.
func (s *FileStore) SetClock(now func() time.Time) { s.now = now }
