package store_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/packsmith/internal/adapters/store"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type backend struct {
	store ports.ResultStore
	clock *clock
}

func backends(t *testing.T) map[string]backend {
	t.Helper()
	start := time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)

	memClock := &clock{now: start}
	mem := store.NewMemoryStore()
	mem.SetClock(memClock.Now)

	fileClock := &clock{now: start}
	file, err := store.NewFileStore(filepath.Join(t.TempDir(), "builds"))
	require.NoError(t, err)
	file.SetClock(fileClock.Now)

	return map[string]backend{
		"memory": {store: mem, clock: memClock},
		"file":   {store: file, clock: fileClock},
	}
}

func entry(now time.Time, data []byte) *domain.CacheEntry {
	return &domain.CacheEntry{
		Fingerprint: "00000000deadbeef",
		Data:        data,
		Filename:    domain.MergedCombinedFile,
		Included: []domain.IncludedPackage{
			{PackageID: "alpha", Version: "1.0.0"},
			{PackageID: "beta", Version: "2.0.0", IsDependency: true},
		},
		StoredAt: now,
		TTL:      time.Hour,
		Platform: "1.20",
		Missing:  []domain.PackageReference{{ID: "ghost", VersionRange: "^1.0.0"}},
		Conflicts: []domain.Conflict{
			{PackageID: "beta", Selected: "2.0.0", Rejected: "2.4.0", Range: "^2.0.0", RequiredBy: "gamma"},
		},
		Failed:    []string{"delta"},
		RequestID: "0192f3a4-0000-7000-8000-000000000001",
	}
}

func TestStore_PutAndGet(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := entry(b.clock.now, bytes.Repeat([]byte("PK\x03\x04"), 1024))

			require.NoError(t, b.store.Put(ctx, "BUILD::00000000deadbeef", want))

			got, err := b.store.Get(ctx, "BUILD::00000000deadbeef")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, want.Data, got.Data)
			assert.Equal(t, want.Included, got.Included)
			assert.Equal(t, want.Platform, got.Platform)
			assert.Equal(t, want.Missing, got.Missing)
			assert.Equal(t, want.Conflicts, got.Conflicts)
			assert.Equal(t, want.Failed, got.Failed)
			assert.Equal(t, want.RequestID, got.RequestID)
			assert.True(t, want.StoredAt.Equal(got.StoredAt))
			assert.Equal(t, want.TTL, got.TTL)

			missing, err := b.store.Get(ctx, "BUILD::ffffffffffffffff")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestStore_Expiry(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.store.Put(ctx, "BUILD::a", entry(b.clock.now, []byte("zip"))))

			b.clock.now = b.clock.now.Add(59 * time.Minute)
			got, err := b.store.Get(ctx, "BUILD::a")
			require.NoError(t, err)
			assert.NotNil(t, got)

			b.clock.now = b.clock.now.Add(time.Minute)
			got, err = b.store.Get(ctx, "BUILD::a")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestStore_Invalidate(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, key := range []string{"BUILD::aa01", "BUILD::aa02", "BUILD::bb01"} {
				require.NoError(t, b.store.Put(ctx, key, entry(b.clock.now, []byte(key))))
			}

			n, err := b.store.Invalidate(ctx, "BUILD::aa")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			got, err := b.store.Get(ctx, "BUILD::bb01")
			require.NoError(t, err)
			assert.NotNil(t, got)

			n, err = b.store.Invalidate(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestFileStore_CompressesAndIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)

	data := bytes.Repeat([]byte("a"), 1<<16)
	require.NoError(t, s.Put(context.Background(), "BUILD::x", entry(time.Now(), data)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("not an entry"), domain.FilePerm))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, f := range files {
		if f.Name() == "README" {
			continue
		}
		info, err := f.Info()
		require.NoError(t, err)
		assert.Less(t, info.Size(), int64(len(data)/10))
	}

	n, err := s.Invalidate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(dir, "README"))
}

func TestFileStore_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "BUILD::x", entry(time.Now(), []byte("zip"))))
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, files[0].Name()), []byte{0xff, 0x00}, domain.FilePerm))

	_, err = s.Get(context.Background(), "BUILD::x")
	require.ErrorContains(t, err, domain.ErrStoreDecodeFailed.Error())
}
