package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/jsonc"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.Catalog = (*FileCatalog)(nil)

// Document is the on-disk catalog format.
type Document struct {
	// Packages maps a package id to its versions.
	Packages map[string][]domain.PackageVersionRecord `json:"packages" yaml:"packages"`
	Bundles  []domain.Bundle                          `json:"bundles" yaml:"bundles"`
}

// ParseDocument decodes a catalog document. Files ending in .json or .jsonc are read
// as JSON with comments, everything else as YAML.
func ParseDocument(path string, data []byte) (*Document, error) {
	var doc Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogLoadFailed.Error()), "path", path)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrCatalogLoadFailed.Error()), "path", path)
		}
	}

	for id, records := range doc.Packages {
		for i := range records {
			if records[i].PackageID == "" {
				records[i].PackageID = id
			}
		}
	}
	return &doc, nil
}

// FileCatalog serves a catalog document from a local file and reloads it on change.
type FileCatalog struct {
	path   string
	logger ports.Logger

	mu  sync.RWMutex
	doc *Document
}

// NewFileCatalog loads the catalog at path.
func NewFileCatalog(path string, logger ports.Logger) (*FileCatalog, error) {
	c := &FileCatalog{path: filepath.Clean(path), logger: logger}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewStaticCatalog serves doc without a backing file.
func NewStaticCatalog(doc *Document, logger ports.Logger) *FileCatalog {
	if doc == nil {
		doc = &Document{}
	}
	return &FileCatalog{doc: doc, logger: logger}
}

// Reload reads the file again. The previous document stays active on error.
func (c *FileCatalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCatalogLoadFailed.Error()), "path", c.path)
	}
	doc, err := ParseDocument(c.path, data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.doc = doc
	c.mu.Unlock()
	return nil
}

// GetPackageVersions returns every version of a package.
func (c *FileCatalog) GetPackageVersions(ctx context.Context, packageID string) ([]domain.PackageVersionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	records, ok := c.doc.Packages[packageID]
	c.mu.RUnlock()
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "read catalog file"), "package", packageID)
	}
	return slices.Clone(records), nil
}

// GetBundle returns a bundle by id.
func (c *FileCatalog) GetBundle(ctx context.Context, bundleID string) (*domain.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.doc.Bundles {
		if c.doc.Bundles[i].ID == bundleID {
			bundle := c.doc.Bundles[i]
			return &bundle, nil
		}
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrBundleNotFound, "read catalog file"), "bundle", bundleID)
}

// Watch reloads the catalog whenever its file is written or replaced, until ctx is done.
// Static catalogs return immediately.
func (c *FileCatalog) Watch(ctx context.Context) error {
	if c.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, domain.ErrCatalogLoadFailed.Error())
	}
	defer func() {
		_ = watcher.Close()
	}()

	// Editors replace files by rename, so the directory is watched instead of the file.
	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCatalogLoadFailed.Error()), "path", c.path)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != c.path || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
				continue
			}
			if err := c.Reload(); err != nil {
				c.logger.Error(err)
				continue
			}
			c.logger.Info("reloaded catalog " + c.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("catalog watcher: " + err.Error())
		}
	}
}
