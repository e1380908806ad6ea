package domain

import "time"

// IncludedPackage is a package that contributed at least one artifact to a build.
type IncludedPackage struct {
	PackageID    string `cbor:"1,keyasint" json:"packageId"`
	Version      string `cbor:"2,keyasint" json:"version"`
	IsDependency bool   `cbor:"3,keyasint" json:"isDependency"`
}

// Weight returns the accounting weight of the inclusion.
func (p IncludedPackage) Weight() int {
	if p.IsDependency {
		return DependencyWeight
	}
	return RootWeight
}

// CacheEntry is a built archive held by the result cache.
type CacheEntry struct {
	Fingerprint string            `cbor:"1,keyasint"`
	Data        []byte            `cbor:"2,keyasint"`
	Filename    string            `cbor:"3,keyasint"`
	Included    []IncludedPackage `cbor:"4,keyasint"`
	StoredAt    time.Time         `cbor:"5,keyasint"`
	TTL         time.Duration     `cbor:"6,keyasint"`

	// Platform is the platform version the archive was built for.
	Platform string `cbor:"7,keyasint"`

	// Gaps found while building, reported again on every hit.
	Missing   []PackageReference `cbor:"8,keyasint"`
	Conflicts []Conflict         `cbor:"9,keyasint"`
	Failed    []string           `cbor:"10,keyasint"`

	// RequestID is the build run that produced the archive.
	RequestID RequestID `cbor:"11,keyasint"`
}

// Expired reports whether the entry has outlived its TTL at now. A zero TTL never expires.
func (e *CacheEntry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.Sub(e.StoredAt) >= e.TTL
}
