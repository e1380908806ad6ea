package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/packsmith/internal/adapters/catalog"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const yamlCatalog = `
packages:
  alpha:
    - name: 1.0.0
      supports: ["1.20"]
      downloads:
        primary: https://cdn.example.com/alpha-1.0.0-dp.zip
        secondary: https://cdn.example.com/alpha-1.0.0-rp.zip
      dependencies:
        - id: beta
          version: ^2.0.0
  beta:
    - name: 2.3.0
      supports: ["1.20"]
bundles:
  - id: starter
    versions:
      - name: "1"
        supports: ["1.20"]
        packs:
          - id: alpha
            version: 1.0.0
        patches:
          - primary: https://cdn.example.com/starter-patch.zip
`

const jsoncCatalog = `{
  // hand-maintained
  "packages": {
    "alpha": [{"name": "1.0.0", "supports": ["1.20"]}],
  },
}`

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	return log
}

func TestFileCatalog_YAML(t *testing.T) {
	c, err := catalog.NewFileCatalog(writeCatalog(t, "catalog.yaml", yamlCatalog), quietLogger(t))
	require.NoError(t, err)

	records, err := c.GetPackageVersions(t.Context(), "alpha")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alpha", records[0].PackageID)
	assert.Equal(t, "https://cdn.example.com/alpha-1.0.0-rp.zip", records[0].Downloads.Secondary)
	assert.Equal(t, []domain.PackageReference{{ID: "beta", VersionRange: "^2.0.0"}}, records[0].Dependencies)

	bundle, err := c.GetBundle(t.Context(), "starter")
	require.NoError(t, err)
	version, err := bundle.Version("1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/starter-patch.zip", version.Patches[0].Primary)

	_, err = c.GetPackageVersions(t.Context(), "ghost")
	require.ErrorIs(t, err, domain.ErrPackageNotFound)
	_, err = c.GetBundle(t.Context(), "ghost")
	require.ErrorIs(t, err, domain.ErrBundleNotFound)
}

func TestFileCatalog_JSONC(t *testing.T) {
	c, err := catalog.NewFileCatalog(writeCatalog(t, "catalog.jsonc", jsoncCatalog), quietLogger(t))
	require.NoError(t, err)

	records, err := c.GetPackageVersions(t.Context(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.20"}, records[0].Supports)
}

func TestFileCatalog_LoadErrors(t *testing.T) {
	_, err := catalog.NewFileCatalog(filepath.Join(t.TempDir(), "missing.yaml"), quietLogger(t))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = catalog.NewFileCatalog(writeCatalog(t, "bad.yaml", "packages: ["), quietLogger(t))
	require.ErrorContains(t, err, domain.ErrCatalogLoadFailed.Error())
}

func TestFileCatalog_WatchReloads(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", yamlCatalog)
	c, err := catalog.NewFileCatalog(path, quietLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	require.Eventually(t, func() bool {
		// Rewrite until the watcher has registered and picked up the change.
		_ = os.WriteFile(path, []byte("packages:\n  gamma:\n    - name: 0.1.0\n"), 0o600)
		_, err := c.GetPackageVersions(t.Context(), "gamma")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	_, err = c.GetPackageVersions(t.Context(), "alpha")
	require.ErrorIs(t, err, domain.ErrPackageNotFound)
}

func TestStaticCatalog(t *testing.T) {
	c := catalog.NewStaticCatalog(nil, quietLogger(t))
	_, err := c.GetPackageVersions(t.Context(), "alpha")
	require.ErrorIs(t, err, domain.ErrPackageNotFound)
	require.NoError(t, c.Watch(t.Context()))
}
