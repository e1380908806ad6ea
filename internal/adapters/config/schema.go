package config

// Packfile represents the structure of the packsmith.yaml configuration file.
// Durations are Go duration strings such as "90s" or "1h".
type Packfile struct {
	Server     ServerDTO     `yaml:"server"`
	Platform   PlatformDTO   `yaml:"platform"`
	Catalog    CatalogDTO    `yaml:"catalog"`
	Workspace  WorkspaceDTO  `yaml:"workspace"`
	Fetch      FetchDTO      `yaml:"fetch"`
	Artifacts  ArtifactsDTO  `yaml:"artifacts"`
	Merge      MergeDTO      `yaml:"merge"`
	Cache      CacheDTO      `yaml:"cache"`
	Accounting AccountingDTO `yaml:"accounting"`
	Identity   IdentityDTO   `yaml:"identity"`
	Log        LogDTO        `yaml:"log"`
}

// ServerDTO configures the HTTP API.
type ServerDTO struct {
	Addr string `yaml:"addr"`
}

// PlatformDTO lists platform versions.
type PlatformDTO struct {
	Latest    string   `yaml:"latest"`
	Supported []string `yaml:"supported"`
}

// CatalogDTO selects the catalog backend.
type CatalogDTO struct {
	URL     string `yaml:"url"`
	File    string `yaml:"file"`
	TTL     string `yaml:"ttl"`
	Timeout string `yaml:"timeout"`
}

// WorkspaceDTO configures request workspaces.
type WorkspaceDTO struct {
	Root          string `yaml:"root"`
	SweepInterval string `yaml:"sweep_interval"`
	MaxAge        string `yaml:"max_age"`
}

// FetchDTO tunes downloads.
type FetchDTO struct {
	Concurrency *int   `yaml:"concurrency"`
	Timeout     string `yaml:"timeout"`
}

// ArtifactsDTO configures the download cache. An explicit empty cache_dir disables it.
type ArtifactsDTO struct {
	CacheDir *string `yaml:"cache_dir"`
	MaxAge   string  `yaml:"max_age"`
}

// MergeDTO configures the merge tool.
type MergeDTO struct {
	Command []string `yaml:"command"`
	Timeout string   `yaml:"timeout"`
}

// CacheDTO configures the result cache. An explicit empty dir keeps builds in memory.
type CacheDTO struct {
	Dir *string `yaml:"dir"`
	TTL string  `yaml:"ttl"`
}

// AccountingDTO configures usage accounting. An explicit empty database keeps counters in memory.
type AccountingDTO struct {
	Database *string `yaml:"database"`
}

// IdentityDTO configures user hashing.
type IdentityDTO struct {
	Secret string `yaml:"secret"`
}

// LogDTO configures logging.
type LogDTO struct {
	Format string `yaml:"format"`
}
