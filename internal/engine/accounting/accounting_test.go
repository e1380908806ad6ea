package accounting_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/packsmith/internal/adapters/usage"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports/mocks"
	"go.trai.ch/packsmith/internal/engine/accounting"
	"go.uber.org/mock/gomock"
)

func TestRecord_Idempotent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		store := usage.NewMemoryStore()

		a := accounting.NewAccountant(store, log)
		ctx := context.Background()

		added, err := a.Record(ctx, "user", "alpha", domain.RootWeight)
		require.NoError(t, err)
		assert.True(t, added)

		added, err = a.Record(ctx, "user", "alpha", domain.RootWeight)
		require.NoError(t, err)
		assert.False(t, added)

		total, err := a.Total(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		doc, err := a.Usage(ctx, "alpha", "")
		require.NoError(t, err)
		assert.Equal(t, domain.DayKey(time.Now()), doc.Day)
		assert.Equal(t, map[string]int{"user": domain.RootWeight}, doc.Users)
	})
}

func TestRecord_NewDayCountsAgain(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		store := usage.NewMemoryStore()

		a := accounting.NewAccountant(store, log)
		ctx := context.Background()

		_, err := a.Record(ctx, "user", "alpha", domain.DependencyWeight)
		require.NoError(t, err)

		time.Sleep(24 * time.Hour)

		added, err := a.Record(ctx, "user", "alpha", domain.DependencyWeight)
		require.NoError(t, err)
		assert.True(t, added)

		total, err := a.Total(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})
}

func TestRecordBuild(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)
		log.EXPECT().Info("recorded 2 new downloads")
		store := usage.NewMemoryStore()

		a := accounting.NewAccountant(store, log)
		included := []domain.IncludedPackage{
			{PackageID: "alpha", Version: "1.0.0"},
			{PackageID: "beta", Version: "2.0.0", IsDependency: true},
		}
		a.RecordBuild(t.Context(), "user", included)

		today := domain.DayKey(time.Now())
		alpha, err := a.Usage(t.Context(), "alpha", today)
		require.NoError(t, err)
		assert.Equal(t, domain.RootWeight, alpha.Users["user"])

		beta, err := a.Usage(t.Context(), "beta", today)
		require.NoError(t, err)
		assert.Equal(t, domain.DependencyWeight, beta.Users["user"])
	})
}

func TestRecordBuild_AnonymousSkips(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockUsageStore(ctrl)
	log := mocks.NewMockLogger(ctrl)

	a := accounting.NewAccountant(store, log)
	a.RecordBuild(t.Context(), "", []domain.IncludedPackage{{PackageID: "alpha"}})
}

func TestRecordBuild_FailuresAreLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockUsageStore(ctrl)
	log := mocks.NewMockLogger(ctrl)

	store.EXPECT().AddIfAbsent(gomock.Any(), gomock.Any()).Return(false, errors.New("database is locked")).Times(2)
	log.EXPECT().Error(gomock.Any()).Times(2)

	a := accounting.NewAccountant(store, log)
	a.RecordBuild(t.Context(), "user", []domain.IncludedPackage{{PackageID: "alpha"}, {PackageID: "beta"}})
}
