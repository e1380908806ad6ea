package artifacts

import (
	"context"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.ArtifactSource = (*CachedSource)(nil)

// urlDomainKey separates artifact cache keys from other BLAKE3 uses.
var urlDomainKey = [32]byte{
	'p', 'a', 'c', 'k', 's', 'm', 'i', 't', 'h', '.', 'a', 'r', 't', 'i', 'f', 'a',
	'c', 't', '.', 'u', 'r', 'l', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// URLKey returns the cache key of an artifact URL.
func URLKey(rawURL string) string {
	h, err := blake3.NewKeyed(urlDomainKey[:])
	if err != nil {
		// NewKeyed only fails for keys that are not 32 bytes long.
		panic(err)
	}
	_, _ = h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// CachedSource keeps one copy of every downloaded URL and links it into workspaces.
// Concurrent fetches of the same URL share one download.
type CachedSource struct {
	next  ports.ArtifactSource
	dir   string
	group singleflight.Group
	now   func() time.Time
}

// NewCachedSource creates the cache directory and returns a source backed by next.
func NewCachedSource(next ports.ArtifactSource, dir string) (*CachedSource, error) {
	cleanDir := filepath.Clean(dir)
	if err := os.MkdirAll(cleanDir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrArtifactCacheFailed.Error()), "dir", cleanDir)
	}
	return &CachedSource{
		next: next,
		dir:  cleanDir,
		now:  time.Now,
	}, nil
}

// Fetch places the artifact at rawURL into dst, downloading it only on a cache miss.
func (c *CachedSource) Fetch(ctx context.Context, rawURL, dst string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}

	key := URLKey(rawURL)
	cached := filepath.Join(c.dir, key+".zip")

	if _, err := os.Stat(cached); err == nil {
		// Refresh the timestamp so the sweeper keeps hot entries.
		now := c.now()
		_ = os.Chtimes(cached, now, now)
		return c.place(cached, dst)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if _, err := os.Stat(cached); err == nil {
			return nil, nil
		}
		// The download outlives the caller that started it; others may be waiting.
		return nil, c.next.Fetch(context.WithoutCancel(ctx), rawURL, cached)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
	}

	return c.place(cached, dst)
}

// place hard-links src to dst and falls back to a copy across filesystems.
func (c *CachedSource) place(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrArtifactCacheFailed.Error())
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, domain.ErrArtifactCacheFailed.Error())
	}
	if err := os.Link(src, dst); err == nil {
		return nil
	}

	f, err := os.Open(src) //nolint:gosec // src is inside the cache directory
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactCacheFailed.Error()), "path", src)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := atomicWrite(dst, f); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArtifactCacheFailed.Error()), "path", dst)
	}
	return nil
}
