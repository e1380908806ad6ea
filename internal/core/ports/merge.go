package ports

import (
	"context"

	"go.trai.ch/packsmith/internal/core/domain"
)

// MergeEngine runs the external merge tool over a workspace.
//
//go:generate mockgen -source=merge.go -destination=mocks/mock_merge.go -package=mocks
type MergeEngine interface {
	// Run merges every archive in the invocation's workspace.
	// A returned error means the engine could not be run at all; an unsuccessful run
	// is reported through the ExitResult.
	Run(ctx context.Context, inv domain.MergeInvocation) (domain.ExitResult, error)
}
