// Package sweeper removes abandoned workspaces and stale cached artifacts.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

// Target is a directory whose entries expire after MaxAge.
type Target struct {
	Dir    string
	MaxAge time.Duration
}

// Sweeper periodically deletes expired entries of its targets.
// It only looks at modification times.
type Sweeper struct {
	logger   ports.Logger
	interval time.Duration
	targets  []Target
}

// New creates a Sweeper that runs every interval over targets.
func New(logger ports.Logger, interval time.Duration, targets ...Target) *Sweeper {
	return &Sweeper{logger: logger, interval: interval, targets: targets}
}

// AddTarget registers another directory to sweep.
func (s *Sweeper) AddTarget(t Target) {
	s.targets = append(s.targets, t)
}

// Run sweeps on every tick until ctx is done. It always returns nil.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			removed, err := s.SweepOnce(ctx, now)
			if err != nil {
				s.logger.Error(err)
			}
			if removed > 0 {
				s.logger.Info(fmt.Sprintf("swept %d expired entries", removed))
			}
		}
	}
}

// SweepOnce deletes every target entry last modified more than MaxAge before now.
// It returns how many entries were removed and the joined failures; entries that
// failed are left for the next sweep.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	var errs []error

	for _, target := range s.targets {
		n, err := sweepDir(ctx, target, now)
		removed += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	return removed, errors.Join(errs...)
}

func sweepDir(ctx context.Context, target Target, now time.Time) (int, error) {
	entries, err := os.ReadDir(target.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, zerr.With(zerr.Wrap(err, "failed to list sweep target"), "dir", target.Dir)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		info, err := entry.Info()
		if err != nil {
			// Removed concurrently.
			continue
		}
		if now.Sub(info.ModTime()) <= target.MaxAge {
			continue
		}

		path := filepath.Join(target.Dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, zerr.With(zerr.Wrap(err, "failed to remove expired entry"), "path", path))
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}
