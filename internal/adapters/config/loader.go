// Package config loads packsmith.yaml into the runtime configuration.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct{}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the configuration at path. An empty path reads packsmith.yaml in the
// working directory and falls back to defaults when that file does not exist.
// An explicit path must exist.
func (l *Loader) Load(path string) (*domain.Config, error) {
	explicit := path != ""
	if !explicit {
		path = domain.ConfigFileName
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file Packfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	cfg, err := file.toDomain()
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// toDomain overlays the file on the defaults and validates the result.
func (f *Packfile) toDomain() (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	setString(&cfg.Server.Addr, f.Server.Addr)
	setString(&cfg.Platform.Latest, f.Platform.Latest)
	if len(f.Platform.Supported) > 0 {
		cfg.Platform.Supported = f.Platform.Supported
	}

	cfg.Catalog.URL = f.Catalog.URL
	cfg.Catalog.File = f.Catalog.File

	setString(&cfg.Workspace.Root, f.Workspace.Root)

	if f.Fetch.Concurrency != nil {
		if *f.Fetch.Concurrency < 0 {
			return nil, invalid("fetch.concurrency", *f.Fetch.Concurrency)
		}
		cfg.Fetch.Concurrency = *f.Fetch.Concurrency
	}

	if f.Artifacts.CacheDir != nil {
		cfg.Artifacts.CacheDir = *f.Artifacts.CacheDir
	}
	if len(f.Merge.Command) > 0 {
		cfg.Merge.Command = f.Merge.Command
	}
	if f.Cache.Dir != nil {
		cfg.Cache.Dir = *f.Cache.Dir
	}
	if f.Accounting.Database != nil {
		cfg.Accounting.Database = *f.Accounting.Database
	}
	cfg.Identity.Secret = f.Identity.Secret

	if f.Log.Format != "" {
		format := domain.LogFormat(f.Log.Format)
		switch format {
		case domain.LogFormatAuto, domain.LogFormatPretty, domain.LogFormatJSON:
			cfg.Log.Format = format
		default:
			return nil, invalid("log.format", f.Log.Format)
		}
	}

	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"catalog.ttl", f.Catalog.TTL, &cfg.Catalog.TTL},
		{"catalog.timeout", f.Catalog.Timeout, &cfg.Catalog.Timeout},
		{"workspace.sweep_interval", f.Workspace.SweepInterval, &cfg.Workspace.SweepInterval},
		{"workspace.max_age", f.Workspace.MaxAge, &cfg.Workspace.MaxAge},
		{"fetch.timeout", f.Fetch.Timeout, &cfg.Fetch.Timeout},
		{"artifacts.max_age", f.Artifacts.MaxAge, &cfg.Artifacts.MaxAge},
		{"merge.timeout", f.Merge.Timeout, &cfg.Merge.Timeout},
		{"cache.ttl", f.Cache.TTL, &cfg.Cache.TTL},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil || v <= 0 {
			return nil, invalid(d.key, d.value)
		}
		*d.dst = v
	}

	return cfg, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func invalid(key string, value any) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "validate config"), "key", key), "value", value)
}
