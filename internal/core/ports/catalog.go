// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/packsmith/internal/core/domain"
)

// Catalog is the read-only view of package and bundle metadata.
//
//go:generate mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks
type Catalog interface {
	// GetPackageVersions returns every version of a package.
	// It returns domain.ErrPackageNotFound when the id is unknown.
	GetPackageVersions(ctx context.Context, packageID string) ([]domain.PackageVersionRecord, error)

	// GetBundle returns a bundle by id.
	// It returns domain.ErrBundleNotFound when the id is unknown.
	GetBundle(ctx context.Context, bundleID string) (*domain.Bundle, error)
}
