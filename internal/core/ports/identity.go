package ports

import "context"

// IdentityResolver attributes a request to an anonymized user.
//
//go:generate mockgen -source=identity.go -destination=mocks/mock_identity.go -package=mocks
type IdentityResolver interface {
	// ResolveUserHash returns the user hash for token, or false when no identity is available.
	ResolveUserHash(ctx context.Context, token string) (string, bool)
}
