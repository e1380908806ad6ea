// Package identity derives anonymized user hashes from request tokens.
package identity

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
	"go.trai.ch/packsmith/internal/core/ports"
)

var _ ports.IdentityResolver = (*Resolver)(nil)

// keyContext separates user hashes from other keys derived from the same secret.
const keyContext = "packsmith 2026 user identity v1"

// Resolver hashes bearer tokens with a key derived from a server secret, so raw tokens
// never reach the usage store.
type Resolver struct {
	key [32]byte
}

// NewResolver derives the hashing key from secret.
func NewResolver(secret string) *Resolver {
	r := &Resolver{}
	blake3.DeriveKey(keyContext, []byte(secret), r.key[:])
	return r
}

// ResolveUserHash returns the hash of token, or false for an empty token.
func (r *Resolver) ResolveUserHash(_ context.Context, token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	h, err := blake3.NewKeyed(r.key[:])
	if err != nil {
		return "", false
	}
	_, _ = h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil)[:16]), true
}
