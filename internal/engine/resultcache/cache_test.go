package resultcache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports/mocks"
	"go.trai.ch/packsmith/internal/engine/resultcache"
	"go.uber.org/mock/gomock"
)

const fp = "00000000deadbeef"

func archive(data string) *domain.CacheEntry {
	return &domain.CacheEntry{Data: []byte(data), Filename: domain.MergedCombinedFile}
}

func TestGetOrBuild_HitSkipsBuild(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResultStore(ctrl)
	log := mocks.NewMockLogger(ctrl)

	stored := archive("zip")
	store.EXPECT().Get(gomock.Any(), "BUILD::"+fp).Return(stored, nil)

	c := resultcache.New(store, log, time.Hour)
	entry, hit, err := c.GetOrBuild(t.Context(), fp, func(context.Context) (*domain.CacheEntry, error) {
		t.Fatal("build must not run on a hit")
		return nil, nil
	})

	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, stored, entry)
}

func TestGetOrBuild_MissBuildsAndStores(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockResultStore(ctrl)
		log := mocks.NewMockLogger(ctrl)

		store.EXPECT().Get(gomock.Any(), "BUILD::"+fp).Return(nil, nil).Times(2)
		store.EXPECT().Put(gomock.Any(), "BUILD::"+fp, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, e *domain.CacheEntry) error {
				assert.Equal(t, fp, e.Fingerprint)
				assert.Equal(t, time.Hour, e.TTL)
				assert.Equal(t, time.Now(), e.StoredAt)
				return nil
			},
		)

		c := resultcache.New(store, log, time.Hour)
		entry, hit, err := c.GetOrBuild(t.Context(), fp, func(context.Context) (*domain.CacheEntry, error) {
			return archive("fresh"), nil
		})

		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, []byte("fresh"), entry.Data)
	})
}

func TestGetOrBuild_ExpiredEntryIsRebuilt(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockResultStore(ctrl)
		log := mocks.NewMockLogger(ctrl)

		stale := archive("stale")
		stale.StoredAt = time.Now().Add(-2 * time.Hour)
		stale.TTL = time.Hour

		store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stale, nil).Times(2)
		store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		c := resultcache.New(store, log, time.Hour)
		entry, hit, err := c.GetOrBuild(t.Context(), fp, func(context.Context) (*domain.CacheEntry, error) {
			return archive("fresh"), nil
		})

		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, []byte("fresh"), entry.Data)
	})
}

func TestGetOrBuild_BuildErrorIsNotStored(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResultStore(ctrl)
	log := mocks.NewMockLogger(ctrl)

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	boom := errors.New("merge exploded")
	c := resultcache.New(store, log, time.Hour)
	_, _, err := c.GetOrBuild(t.Context(), fp, func(context.Context) (*domain.CacheEntry, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestGetOrBuild_StoreFailuresDegradeToRebuild(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResultStore(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).Times(3)

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk gone")).Times(2)
	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk gone"))

	c := resultcache.New(store, log, time.Hour)
	entry, hit, err := c.GetOrBuild(t.Context(), fp, func(context.Context) (*domain.CacheEntry, error) {
		return archive("fresh"), nil
	})

	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []byte("fresh"), entry.Data)
}

func TestGetOrBuild_ConcurrentMissesShareOneBuild(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockResultStore(ctrl)
		log := mocks.NewMockLogger(ctrl)

		store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
		store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)

		c := resultcache.New(store, log, time.Hour)

		var builds atomic.Int32
		release := make(chan struct{})
		build := func(context.Context) (*domain.CacheEntry, error) {
			builds.Add(1)
			<-release
			return archive("shared"), nil
		}

		const callers = 8
		results := make([][]byte, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Go(func() {
				entry, _, err := c.GetOrBuild(t.Context(), fp, build)
				assert.NoError(t, err)
				results[i] = entry.Data
			})
		}

		synctest.Wait()
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), builds.Load())
		for _, r := range results {
			assert.Equal(t, []byte("shared"), r)
		}
	})
}

func TestGetOrBuild_CallerCancelDoesNotAbortSharedBuild(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockResultStore(ctrl)
		log := mocks.NewMockLogger(ctrl)

		store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
		stored := make(chan struct{})
		store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, string, *domain.CacheEntry) error {
				close(stored)
				return nil
			},
		)

		c := resultcache.New(store, log, time.Hour)

		ctx, cancel := context.WithCancel(t.Context())
		build := func(bctx context.Context) (*domain.CacheEntry, error) {
			time.Sleep(time.Minute)
			assert.NoError(t, bctx.Err())
			return archive("late"), nil
		}

		errCh := make(chan error, 1)
		go func() {
			_, _, err := c.GetOrBuild(ctx, fp, build)
			errCh <- err
		}()

		synctest.Wait()
		cancel()
		require.ErrorIs(t, <-errCh, context.Canceled)

		<-stored
	})
}

func TestInvalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockResultStore(ctrl)
	log := mocks.NewMockLogger(ctrl)

	store.EXPECT().Invalidate(gomock.Any(), "BUILD::").Return(4, nil)

	c := resultcache.New(store, log, time.Hour)
	n, err := c.Invalidate(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
