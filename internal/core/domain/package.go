package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// AnyRange is the version range used when a reference names no range.
const AnyRange = "*"

// PackageReference identifies a root request or a declared dependency.
type PackageReference struct {
	// ID is the catalog id of the package.
	ID string `json:"id" yaml:"id"`

	// VersionRange is a semantic version range (exact, caret, tilde or wildcard).
	VersionRange string `json:"version" yaml:"version"`
}

// ParseReference parses "id" or "id@range". A missing range means any version.
func ParseReference(s string) (PackageReference, error) {
	s = strings.TrimSpace(s)
	id, versionRange, found := strings.Cut(s, "@")
	id = strings.TrimSpace(id)
	versionRange = strings.TrimSpace(versionRange)

	if id == "" || (found && versionRange == "") {
		return PackageReference{}, zerr.With(zerr.Wrap(ErrInvalidReference, "parse reference"), "reference", s)
	}
	if !found {
		versionRange = AnyRange
	}
	return PackageReference{ID: id, VersionRange: versionRange}, nil
}

// String returns the reference in "id@range" form.
func (r PackageReference) String() string {
	if r.VersionRange == "" {
		return r.ID + "@" + AnyRange
	}
	return r.ID + "@" + r.VersionRange
}

// Downloads holds the artifact URLs of a version, keyed by kind.
type Downloads struct {
	Primary   string `json:"primary,omitempty" yaml:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty" yaml:"secondary,omitempty"`
}

// URL returns the download URL for the given artifact kind.
func (d Downloads) URL(kind ArtifactKind) string {
	switch kind {
	case KindPrimary:
		return d.Primary
	case KindSecondary:
		return d.Secondary
	default:
		return ""
	}
}

// PackageVersionRecord is a single version of a package as stored in the catalog.
type PackageVersionRecord struct {
	PackageID    string             `json:"packageId" yaml:"packageId"`
	Name         string             `json:"name" yaml:"name"`
	Supports     []string           `json:"supports" yaml:"supports"`
	Downloads    Downloads          `json:"downloads" yaml:"downloads"`
	Dependencies []PackageReference `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// ResolvedPackage is a package version selected by the resolver for one request.
type ResolvedPackage struct {
	PackageID    string
	Version      PackageVersionRecord
	IsDependency bool
}

// Weight returns the accounting weight of the package inclusion.
func (p ResolvedPackage) Weight() int {
	if p.IsDependency {
		return DependencyWeight
	}
	return RootWeight
}

// Conflict records a package reached at two different versions in one resolution.
type Conflict struct {
	PackageID string `json:"packageId"`
	Selected  string `json:"selected"`
	// Rejected is empty when no version satisfied Range at all.
	Rejected string `json:"rejected"`
	// Range is the version range that led to the rejected version.
	Range string `json:"range"`
	// RequiredBy is the package that declared the dependency, empty for a root request.
	RequiredBy string `json:"requiredBy,omitempty"`
}

// Resolution is the output of resolving a set of root references.
type Resolution struct {
	Packages  []ResolvedPackage
	Missing   []PackageReference
	Conflicts []Conflict
}
