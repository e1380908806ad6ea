package domain

import (
	"path/filepath"
	"time"
)

const (
	// StateDirName is the name of the internal state directory.
	StateDirName = ".packsmith"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// BuildsDirName is the name of the build result cache directory.
	BuildsDirName = "builds"

	// ArtifactsDirName is the name of the cross-request artifact cache directory.
	ArtifactsDirName = "artifacts"

	// UsageDBName is the name of the usage accounting database.
	UsageDBName = "usage.db"

	// TempDirName is the default root of request workspaces.
	TempDirName = "temp"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "packsmith.yaml"

	// MergedPrimaryFile is the archive the merge tool writes for primary content.
	MergedPrimaryFile = "merged-primary.zip"

	// MergedSecondaryFile is the archive the merge tool writes for secondary content.
	MergedSecondaryFile = "merged-secondary.zip"

	// MergedCombinedFile is the archive-of-archives produced for mode both.
	MergedCombinedFile = "merged-both.zip"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

const (
	// DefaultLatestPlatform is used when a request names no platform version.
	DefaultLatestPlatform = "1.20.4"

	// DefaultCacheTTL is how long a built archive stays in the result cache.
	DefaultCacheTTL = time.Hour

	// DefaultCatalogTTL is how long a catalog document stays in memory.
	DefaultCatalogTTL = 5 * time.Minute

	// DefaultSweepInterval is how often the sweeper scans the temp root.
	DefaultSweepInterval = time.Minute

	// DefaultWorkspaceMaxAge is the age after which a workspace is considered abandoned.
	DefaultWorkspaceMaxAge = time.Hour

	// DefaultMergeTimeout bounds a single merge subprocess.
	DefaultMergeTimeout = 5 * time.Minute

	// DefaultHTTPTimeout bounds catalog requests and artifact downloads.
	DefaultHTTPTimeout = 30 * time.Second
)

// DefaultCachePath returns the default path for the build result cache.
// It joins .packsmith, cache, and builds.
func DefaultCachePath() string {
	return filepath.Join(StateDirName, CacheDirName, BuildsDirName)
}

// DefaultArtifactCachePath returns the default path for downloaded artifacts.
// It joins .packsmith, cache, and artifacts.
func DefaultArtifactCachePath() string {
	return filepath.Join(StateDirName, CacheDirName, ArtifactsDirName)
}

// DefaultUsageDBPath returns the default path for the usage database.
func DefaultUsageDBPath() string {
	return filepath.Join(StateDirName, UsageDBName)
}
