package ports

import (
	"context"

	"go.trai.ch/packsmith/internal/core/domain"
)

// BuildService produces merged archives for callers of the public API.
//
//go:generate mockgen -source=build.go -destination=mocks/mock_build.go -package=mocks
type BuildService interface {
	// Build returns the archive for req. token identifies the caller and may be empty.
	Build(ctx context.Context, req domain.BuildRequest, token string) (*domain.BuildOutput, error)

	// BuildBundle returns the archive of one version of a bundle.
	BuildBundle(ctx context.Context, bundleID, version string, mode domain.Mode, token string) (*domain.BuildOutput, error)

	// SupportedPlatforms lists the platform versions known to be valid.
	SupportedPlatforms() []string
}
