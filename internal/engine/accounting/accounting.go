// Package accounting records at most one download per user, package and day.
package accounting

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

// Accountant records package downloads.
type Accountant struct {
	store  ports.UsageStore
	logger ports.Logger
	now    func() time.Time
}

// NewAccountant creates a new Accountant.
func NewAccountant(store ports.UsageStore, logger ports.Logger) *Accountant {
	return &Accountant{store: store, logger: logger, now: time.Now}
}

// Record counts a download of packageID by userHash for today.
//
// The first download of the day stores weight under the user and increments both the
// day total and the package grand total by one. The totals count users, so weight does
// not feed into them. Later calls on the same day change nothing.
func (a *Accountant) Record(ctx context.Context, userHash, packageID string, weight int) (bool, error) {
	day := domain.DayKey(a.now())
	added, err := a.store.AddIfAbsent(ctx, domain.DownloadAccountingEntry{
		PackageID: packageID,
		Day:       day,
		UserHash:  userHash,
		Weight:    weight,
	})
	if err != nil {
		err = zerr.With(err, "key", domain.DailyUsageKey(packageID, day))
		return false, zerr.With(err, "package", packageID)
	}
	return added, nil
}

// RecordBuild records every included package of a build. An empty user hash skips
// accounting. Failures are logged and never returned.
func (a *Accountant) RecordBuild(ctx context.Context, userHash string, included []domain.IncludedPackage) {
	if userHash == "" {
		return
	}

	recorded := 0
	for _, pkg := range included {
		added, err := a.Record(ctx, userHash, pkg.PackageID, pkg.Weight())
		if err != nil {
			a.logger.Error(zerr.Wrap(err, domain.ErrUsageStoreFailed.Error()))
			continue
		}
		if added {
			recorded++
		}
	}

	if recorded > 0 {
		a.logger.Info(fmt.Sprintf("recorded %d new downloads", recorded))
	}
}

// Usage returns the accounting document of packageID on day.
func (a *Accountant) Usage(ctx context.Context, packageID, day string) (*domain.DailyUsage, error) {
	if day == "" {
		day = domain.DayKey(a.now())
	}
	return a.store.Daily(ctx, packageID, day)
}

// Total returns the grand total of packageID.
func (a *Accountant) Total(ctx context.Context, packageID string) (int64, error) {
	return a.store.Total(ctx, packageID)
}
