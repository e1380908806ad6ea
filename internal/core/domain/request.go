package domain

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// BuildKeyPrefix prefixes every result cache key.
const BuildKeyPrefix = "BUILD::"

// BuildRequest is a single inbound build, constructed from the API call.
type BuildRequest struct {
	// Packages holds each requested package as "id" or "id@range".
	Packages []string
	// PlatformVersion is the target platform. Empty means the configured latest.
	PlatformVersion string
	Mode            Mode
	// Patches are extra archives merged on top of the packages. Set for bundle builds only.
	Patches []Downloads
}

// References parses every requested package.
func (r BuildRequest) References() ([]PackageReference, error) {
	if len(r.Packages) == 0 {
		return nil, zerr.Wrap(ErrInvalidRequest, "no packages requested")
	}
	refs := make([]PackageReference, 0, len(r.Packages))
	for _, p := range r.Packages {
		ref, err := ParseReference(p)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Fingerprint returns the normalized cache key of the request.
// The package list is sorted, so the order in which packages were requested does not matter.
func (r BuildRequest) Fingerprint() string {
	packages := make([]string, 0, len(r.Packages))
	for _, p := range r.Packages {
		if ref, err := ParseReference(p); err == nil {
			packages = append(packages, ref.String())
			continue
		}
		packages = append(packages, p)
	}
	slices.Sort(packages)

	hasher := xxhash.New()
	for _, p := range packages {
		_, _ = hasher.WriteString(p)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0}) // Section separator

	_, _ = hasher.WriteString(r.PlatformVersion)
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(string(r.Mode))
	_, _ = hasher.Write([]byte{0})

	for i, patch := range r.Patches {
		_, _ = hasher.WriteString(strconv.Itoa(i))
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(patch.Primary)
		_, _ = hasher.Write([]byte{0})
		_, _ = hasher.WriteString(patch.Secondary)
		_, _ = hasher.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", hasher.Sum64())
}

// CacheKey returns the result cache key for the fingerprint.
func CacheKey(fingerprint string) string {
	return BuildKeyPrefix + fingerprint
}
