// Package artifacts downloads pack archives over HTTP and keeps a cross-request
// cache of them on disk.
package artifacts

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactSource = (*Downloader)(nil)

// Downloader fetches artifacts with a plain HTTP GET.
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a Downloader whose requests are bounded by timeout.
func NewDownloader(timeout time.Duration) *Downloader {
	return newDownloaderWithClient(&http.Client{Timeout: timeout})
}

func newDownloaderWithClient(client *http.Client) *Downloader {
	return &Downloader{httpClient: client}
}

// Fetch downloads rawURL into dst. dst only appears once the body has been fully written.
func (d *Downloader) Fetch(ctx context.Context, rawURL, dst string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "url", rawURL)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "url", rawURL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		statusErr := zerr.With(zerr.Wrap(domain.ErrDownloadFailed, "unexpected status"), "status_code", resp.StatusCode)
		return zerr.With(statusErr, "url", rawURL)
	}

	if err := atomicWrite(dst, resp.Body); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrDownloadFailed.Error()), "url", rawURL)
	}
	return nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return zerr.With(zerr.Wrap(domain.ErrUnsupportedURL, "validate download url"), "url", rawURL)
	}
	return nil
}

// atomicWrite copies r into a temporary file next to path and renames it into place.
func atomicWrite(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
