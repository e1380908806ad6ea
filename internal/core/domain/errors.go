package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidRequest is returned when a build request is malformed.
	ErrInvalidRequest = zerr.New("invalid build request")

	// ErrInvalidReference is returned when a package reference cannot be parsed.
	ErrInvalidReference = zerr.New("invalid package reference, expected format: id or id@range")

	// ErrInvalidMode is returned when a build mode is not one of primary, secondary or both.
	ErrInvalidMode = zerr.New("invalid mode, expected 'primary', 'secondary' or 'both'")

	// ErrPackageNotFound is returned by a catalog when a package id is unknown.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrBundleNotFound is returned by a catalog when a bundle id is unknown.
	ErrBundleNotFound = zerr.New("bundle not found")

	// ErrBundleVersionNotFound is returned when a bundle has no version with the requested name.
	ErrBundleVersionNotFound = zerr.New("bundle version not found")

	// ErrNoPacksFound is returned when resolution yields no packages at all.
	ErrNoPacksFound = zerr.New("no packs found meeting all specified criteria")

	// ErrNothingToMerge is returned when no resolved package fetched an artifact for the requested mode.
	ErrNothingToMerge = zerr.New("no artifacts were fetched for the requested mode")

	// ErrCatalogRequestFailed is returned when the catalog cannot be reached.
	ErrCatalogRequestFailed = zerr.New("failed to query catalog")

	// ErrCatalogParseFailed is returned when a catalog response cannot be decoded.
	ErrCatalogParseFailed = zerr.New("failed to parse catalog response")

	// ErrCatalogLoadFailed is returned when a catalog file cannot be loaded.
	ErrCatalogLoadFailed = zerr.New("failed to load catalog file")

	// ErrUnsupportedURL is returned when a download URL is empty or not http(s).
	ErrUnsupportedURL = zerr.New("unsupported download url")

	// ErrDownloadFailed is returned when an artifact download fails.
	ErrDownloadFailed = zerr.New("failed to download artifact")

	// ErrArtifactCacheFailed is returned when the artifact cache cannot be read or written.
	ErrArtifactCacheFailed = zerr.New("failed to access artifact cache")

	// ErrWorkspaceCreateFailed is returned when a request workspace cannot be created.
	ErrWorkspaceCreateFailed = zerr.New("failed to create workspace")

	// ErrMergeFailed is returned when the merge engine fails to run or exits unsuccessfully.
	ErrMergeFailed = zerr.New("merge tool failed")

	// ErrMergeOutputMissing is returned when the merge engine did not produce an expected archive.
	ErrMergeOutputMissing = zerr.New("merge tool did not produce the expected archive")

	// ErrArchiveWriteFailed is returned when the combined archive cannot be written.
	ErrArchiveWriteFailed = zerr.New("failed to write combined archive")

	// ErrStoreCreateFailed is returned when the result store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create result store directory")

	// ErrStoreReadFailed is returned when a cache entry cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache entry")

	// ErrStoreWriteFailed is returned when a cache entry cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache entry")

	// ErrStoreDecodeFailed is returned when a cache entry cannot be decoded.
	ErrStoreDecodeFailed = zerr.New("failed to decode cache entry")

	// ErrStoreEncodeFailed is returned when a cache entry cannot be encoded.
	ErrStoreEncodeFailed = zerr.New("failed to encode cache entry")

	// ErrUsageStoreFailed is returned when the usage store cannot be opened or written.
	ErrUsageStoreFailed = zerr.New("failed to access usage store")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when a config value fails validation.
	ErrConfigInvalid = zerr.New("invalid configuration value")

	// ErrBuildFailed is returned when a build request fails for any fatal reason.
	ErrBuildFailed = zerr.New("build failed")
)
