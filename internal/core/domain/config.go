package domain

import (
	"runtime"
	"time"
)

// LogFormat selects the log handler.
type LogFormat string

const (
	// LogFormatAuto picks pretty output on a terminal and JSON elsewhere.
	LogFormatAuto LogFormat = "auto"
	// LogFormatPretty forces human readable output.
	LogFormatPretty LogFormat = "pretty"
	// LogFormatJSON forces structured JSON output.
	LogFormatJSON LogFormat = "json"
)

// Config is the validated runtime configuration.
type Config struct {
	Server     ServerConfig
	Platform   PlatformConfig
	Catalog    CatalogConfig
	Workspace  WorkspaceConfig
	Fetch      FetchConfig
	Artifacts  ArtifactsConfig
	Merge      MergeConfig
	Cache      CacheConfig
	Accounting AccountingConfig
	Identity   IdentityConfig
	Log        LogConfig
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string
}

// PlatformConfig lists known platform versions.
type PlatformConfig struct {
	Latest    string
	Supported []string
}

// CatalogConfig selects and tunes the catalog backend. File wins over URL when both are set.
type CatalogConfig struct {
	URL     string
	File    string
	TTL     time.Duration
	Timeout time.Duration
}

// WorkspaceConfig configures request workspaces and their sweeper.
type WorkspaceConfig struct {
	Root          string
	SweepInterval time.Duration
	MaxAge        time.Duration
}

// FetchConfig tunes artifact downloads.
type FetchConfig struct {
	Concurrency int
	Timeout     time.Duration
}

// ArtifactsConfig configures the cross-request artifact cache. An empty dir disables it.
type ArtifactsConfig struct {
	CacheDir string
	MaxAge   time.Duration
}

// MergeConfig configures the external merge tool.
type MergeConfig struct {
	Command []string
	Timeout time.Duration
}

// CacheConfig configures the result cache. An empty dir keeps entries in memory.
type CacheConfig struct {
	Dir string
	TTL time.Duration
}

// AccountingConfig configures usage accounting. An empty database keeps counters in memory.
type AccountingConfig struct {
	Database string
}

// IdentityConfig configures user hashing.
type IdentityConfig struct {
	Secret string
}

// LogConfig configures logging.
type LogConfig struct {
	Format LogFormat
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		Platform: PlatformConfig{
			Latest:    DefaultLatestPlatform,
			Supported: []string{DefaultLatestPlatform},
		},
		Catalog: CatalogConfig{
			TTL:     DefaultCatalogTTL,
			Timeout: DefaultHTTPTimeout,
		},
		Workspace: WorkspaceConfig{
			Root:          TempDirName,
			SweepInterval: DefaultSweepInterval,
			MaxAge:        DefaultWorkspaceMaxAge,
		},
		Fetch: FetchConfig{
			Concurrency: runtime.NumCPU(),
			Timeout:     DefaultHTTPTimeout,
		},
		Artifacts: ArtifactsConfig{
			CacheDir: DefaultArtifactCachePath(),
			MaxAge:   DefaultWorkspaceMaxAge,
		},
		Merge: MergeConfig{
			Command: []string{"python3", "-u", "merge.py"},
			Timeout: DefaultMergeTimeout,
		},
		Cache: CacheConfig{
			Dir: DefaultCachePath(),
			TTL: DefaultCacheTTL,
		},
		Accounting: AccountingConfig{
			Database: DefaultUsageDBPath(),
		},
		Log: LogConfig{Format: LogFormatAuto},
	}
}
