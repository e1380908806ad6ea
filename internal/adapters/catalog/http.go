// Package catalog implements the Catalog port over an HTTP metadata service or a
// local catalog file.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.Catalog = (*HTTPCatalog)(nil)

// maxDocumentSize bounds a single catalog response.
const maxDocumentSize = 16 << 20

// HTTPCatalog reads package and bundle documents from a catalog service.
//
// Packages are served at <base>/packages/<id>/versions as a JSON array of version
// records and bundles at <base>/bundles/<id> as a JSON bundle document.
type HTTPCatalog struct {
	baseURL    string
	httpClient *http.Client
	docs       *docCache
	group      singleflight.Group
}

// NewHTTPCatalog creates a catalog client for baseURL. Documents stay in memory for ttl.
func NewHTTPCatalog(baseURL string, timeout, ttl time.Duration) *HTTPCatalog {
	return newHTTPCatalogWithClient(baseURL, &http.Client{Timeout: timeout}, ttl)
}

func newHTTPCatalogWithClient(baseURL string, client *http.Client, ttl time.Duration) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL:    baseURL,
		httpClient: client,
		docs:       newDocCache(ttl),
	}
}

// GetPackageVersions returns every version of a package.
func (c *HTTPCatalog) GetPackageVersions(ctx context.Context, packageID string) ([]domain.PackageVersionRecord, error) {
	doc, err := c.document(ctx, packDocPrefix+packageID, func() (any, error) {
		var records []domain.PackageVersionRecord
		if err := c.getJSON(ctx, &records, "packages", packageID, "versions"); err != nil {
			return nil, notFoundAs(err, domain.ErrPackageNotFound, "package", packageID)
		}
		for i := range records {
			if records[i].PackageID == "" {
				records[i].PackageID = packageID
			}
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers may reorder the slice; the memoized document stays intact.
	return slices.Clone(doc.([]domain.PackageVersionRecord)), nil
}

// GetBundle returns a bundle by id.
func (c *HTTPCatalog) GetBundle(ctx context.Context, bundleID string) (*domain.Bundle, error) {
	doc, err := c.document(ctx, bundleDocPrefix+bundleID, func() (any, error) {
		var bundle domain.Bundle
		if err := c.getJSON(ctx, &bundle, "bundles", bundleID); err != nil {
			return nil, notFoundAs(err, domain.ErrBundleNotFound, "bundle", bundleID)
		}
		if bundle.ID == "" {
			bundle.ID = bundleID
		}
		return &bundle, nil
	})
	if err != nil {
		return nil, err
	}
	return doc.(*domain.Bundle), nil
}

// document returns the memoized document under key, loading it at most once at a time.
func (c *HTTPCatalog) document(ctx context.Context, key string, load func() (any, error)) (any, error) {
	if doc, ok := c.docs.get(key); ok {
		return doc, nil
	}

	doc, err, _ := c.group.Do(key, func() (any, error) {
		if doc, ok := c.docs.get(key); ok {
			return doc, nil
		}
		doc, err := load()
		if err != nil {
			return nil, err
		}
		c.docs.set(key, doc)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return doc, nil
}

// errNotFound marks a 404 response until the caller maps it to its own sentinel.
var errNotFound = zerr.New("catalog document not found")

func notFoundAs(err, sentinel error, key, id string) error {
	if errors.Is(err, errNotFound) {
		return zerr.With(zerr.Wrap(sentinel, "query catalog"), key, id)
	}
	return zerr.With(err, key, id)
}

func (c *HTTPCatalog) getJSON(ctx context.Context, out any, elem ...string) error {
	escaped := make([]string, 0, len(elem))
	for _, e := range elem {
		escaped = append(escaped, url.PathEscape(e))
	}
	endpoint, err := url.JoinPath(c.baseURL, escaped...)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCatalogRequestFailed.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCatalogRequestFailed.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCatalogRequestFailed.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		return zerr.With(zerr.Wrap(domain.ErrCatalogRequestFailed, "unexpected status"), "status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return zerr.Wrap(err, domain.ErrCatalogRequestFailed.Error())
	}
	if err := json.Unmarshal(body, out); err != nil {
		return zerr.Wrap(err, domain.ErrCatalogParseFailed.Error())
	}
	return nil
}
