package ports

import (
	"context"

	"go.trai.ch/packsmith/internal/core/domain"
)

// UsageStore persists download accounting.
//
//go:generate mockgen -source=usage.go -destination=mocks/mock_usage.go -package=mocks
type UsageStore interface {
	// AddIfAbsent atomically records entry unless the user was already recorded for the
	// package on that day. When it records, it increments the day total and the package
	// grand total by one each. It reports whether the entry was added.
	AddIfAbsent(ctx context.Context, entry domain.DownloadAccountingEntry) (bool, error)

	// Daily returns the usage document of a package on day.
	Daily(ctx context.Context, packageID, day string) (*domain.DailyUsage, error)

	// Total returns the running grand total of a package.
	Total(ctx context.Context, packageID string) (int64, error)
}
