package artifacts_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/packsmith/internal/adapters/artifacts"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newArtifactServer(t *testing.T, hits *atomic.Int32, release <-chan struct{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /alpha.zip", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		if release != nil {
			<-release
		}
		_, _ = w.Write([]byte("alpha-bytes"))
	})
	mux.HandleFunc("GET /gone.zip", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloader_Fetch(t *testing.T) {
	var hits atomic.Int32
	srv := newArtifactServer(t, &hits, nil)
	d := artifacts.NewDownloaderWithClient(srv.Client())

	dst := filepath.Join(t.TempDir(), "ws", "alpha-1.0.0-primary.zip")
	require.NoError(t, d.Fetch(t.Context(), srv.URL+"/alpha.zip", dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "alpha-bytes", string(data))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestDownloader_Failures(t *testing.T) {
	var hits atomic.Int32
	srv := newArtifactServer(t, &hits, nil)
	d := artifacts.NewDownloaderWithClient(srv.Client())
	dir := t.TempDir()

	err := d.Fetch(t.Context(), srv.URL+"/gone.zip", filepath.Join(dir, "gone.zip"))
	require.ErrorIs(t, err, domain.ErrDownloadFailed)
	assert.NoFileExists(t, filepath.Join(dir, "gone.zip"))

	for _, bad := range []string{"", "ftp://example.com/a.zip", "file:///etc/passwd", "https://"} {
		err := d.Fetch(t.Context(), bad, filepath.Join(dir, "bad.zip"))
		require.ErrorIs(t, err, domain.ErrUnsupportedURL, bad)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestURLKey(t *testing.T) {
	a := artifacts.URLKey("https://cdn.example.com/a.zip")
	assert.Len(t, a, 64)
	assert.Equal(t, a, artifacts.URLKey("https://cdn.example.com/a.zip"))
	assert.NotEqual(t, a, artifacts.URLKey("https://cdn.example.com/b.zip"))
}

func TestCachedSource_SecondFetchIsServedFromDisk(t *testing.T) {
	var hits atomic.Int32
	srv := newArtifactServer(t, &hits, nil)
	cacheDir := t.TempDir()
	c, err := artifacts.NewCachedSource(artifacts.NewDownloaderWithClient(srv.Client()), cacheDir)
	require.NoError(t, err)

	later := time.Now().Add(time.Hour).Truncate(time.Second)
	c.SetClock(func() time.Time { return later })

	ws := t.TempDir()
	for _, name := range []string{"first.zip", "second.zip"} {
		require.NoError(t, c.Fetch(t.Context(), srv.URL+"/alpha.zip", filepath.Join(ws, name)))
		data, err := os.ReadFile(filepath.Join(ws, name))
		require.NoError(t, err)
		assert.Equal(t, "alpha-bytes", string(data))
	}
	assert.Equal(t, int32(1), hits.Load())

	info, err := os.Stat(filepath.Join(cacheDir, artifacts.URLKey(srv.URL+"/alpha.zip")+".zip"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(later), "cache hit refreshes the entry")
}

func TestCachedSource_ConcurrentFetchesShareOneDownload(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := newArtifactServer(t, &hits, release)
	c, err := artifacts.NewCachedSource(artifacts.NewDownloaderWithClient(srv.Client()), t.TempDir())
	require.NoError(t, err)

	ws := t.TempDir()
	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Go(func() {
			errs[i] = c.Fetch(t.Context(), srv.URL+"/alpha.zip", filepath.Join(ws, string(rune('a'+i))+".zip"))
		})
	}

	require.Eventually(t, func() bool { return hits.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedSource_FailureIsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockArtifactSource(ctrl)
	const url = "https://cdn.example.com/alpha.zip"

	next.EXPECT().Fetch(gomock.Any(), url, gomock.Any()).Return(domain.ErrDownloadFailed)
	next.EXPECT().Fetch(gomock.Any(), url, gomock.Any()).DoAndReturn(
		func(_ context.Context, _, dst string) error {
			return os.WriteFile(dst, []byte("ok"), 0o600)
		})

	c, err := artifacts.NewCachedSource(next, t.TempDir())
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "alpha.zip")
	require.ErrorIs(t, c.Fetch(t.Context(), url, dst), domain.ErrDownloadFailed)
	require.NoError(t, c.Fetch(t.Context(), url, dst))
	assert.FileExists(t, dst)
}
