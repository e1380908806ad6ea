package ports

import "context"

// ArtifactSource retrieves a remote artifact into a local file.
//
//go:generate mockgen -source=artifacts.go -destination=mocks/mock_artifacts.go -package=mocks
type ArtifactSource interface {
	// Fetch writes the content at url to dst. dst is only created when the fetch succeeds.
	Fetch(ctx context.Context, url, dst string) error
}
