package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports/mocks"
	"go.trai.ch/packsmith/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

// catalogData maps a package id to its versions.
type catalogData map[string][]domain.PackageVersionRecord

// setupResolver creates a resolver over an in-memory catalog.
// It returns a pointer to the number of catalog lookups performed.
func setupResolver(t *testing.T, data catalogData) (*resolver.Resolver, *int) {
	t.Helper()
	ctrl := gomock.NewController(t)

	catalog := mocks.NewMockCatalog(ctrl)
	calls := 0
	catalog.EXPECT().GetPackageVersions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) ([]domain.PackageVersionRecord, error) {
			calls++
			records, ok := data[id]
			if !ok {
				return nil, domain.ErrPackageNotFound
			}
			return records, nil
		},
	).AnyTimes()

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	return resolver.NewResolver(catalog, log), &calls
}

func version(name string, supports []string, deps ...string) domain.PackageVersionRecord {
	record := domain.PackageVersionRecord{
		Name:      name,
		Supports:  supports,
		Downloads: domain.Downloads{Primary: "https://example.com/" + name + ".zip"},
	}
	for _, d := range deps {
		ref, err := domain.ParseReference(d)
		if err != nil {
			panic(err)
		}
		record.Dependencies = append(record.Dependencies, ref)
	}
	return record
}

func refs(t *testing.T, s ...string) []domain.PackageReference {
	t.Helper()
	out := make([]domain.PackageReference, 0, len(s))
	for _, v := range s {
		ref, err := domain.ParseReference(v)
		require.NoError(t, err)
		out = append(out, ref)
	}
	return out
}

type entry struct {
	id      string
	version string
	dep     bool
}

func flatten(res *domain.Resolution) []entry {
	out := make([]entry, 0, len(res.Packages))
	for _, p := range res.Packages {
		out = append(out, entry{p.PackageID, p.Version.Name, p.IsDependency})
	}
	return out
}

var p120 = []string{"1.20"}

func TestResolve_SingleRootNoDependencies(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120)},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha"), "1.20")
	require.NoError(t, err)

	require.Len(t, res.Packages, 1)
	assert.False(t, res.Packages[0].IsDependency)
	assert.Equal(t, "alpha", res.Packages[0].PackageID)
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.Conflicts)
}

func TestResolve_SelectsNewestSupportingPlatform(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {
			version("1.0.0", []string{"1.20"}),
			version("1.1.0", []string{"1.21"}),
		},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha@^1.0.0"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{{"alpha", "1.0.0", false}}, flatten(res))
}

func TestResolve_TransitiveDependenciesAreMarked(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120, "beta@^2.0.0")},
		"beta":  {version("2.3.0", p120, "gamma")},
		"gamma": {version("0.1.0", p120)},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{"alpha", "1.0.0", false},
		{"beta", "2.3.0", true},
		{"gamma", "0.1.0", true},
	}, flatten(res))
}

func TestResolve_CycleTerminates(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120, "beta")},
		"beta":  {version("1.0.0", p120, "gamma")},
		"gamma": {version("1.0.0", p120, "alpha")},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{"alpha", "1.0.0", false},
		{"beta", "1.0.0", true},
		{"gamma", "1.0.0", true},
	}, flatten(res))
	assert.Empty(t, res.Conflicts)
}

func TestResolve_SelfDependency(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120, "alpha")},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{{"alpha", "1.0.0", false}}, flatten(res))
}

func TestResolve_DiamondSameVersion(t *testing.T) {
	r, calls := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120, "beta@^2.0.0")},
		"gamma": {version("1.0.0", p120, "beta@^2.0.0")},
		"beta":  {version("2.0.0", p120), version("2.1.0", p120)},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha", "gamma"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{"alpha", "1.0.0", false},
		{"beta", "2.1.0", true},
		{"gamma", "1.0.0", false},
	}, flatten(res))
	assert.Empty(t, res.Conflicts)
	// beta is looked up once per run.
	assert.Equal(t, 3, *calls)
}

func TestResolve_DiamondDifferentVersionsIsConflict(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120, "beta@~2.0.0")},
		"gamma": {version("1.0.0", p120, "beta@^2.0.0")},
		"beta":  {version("2.0.5", p120), version("2.4.0", p120)},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha", "gamma"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{"alpha", "1.0.0", false},
		{"beta", "2.0.5", true},
		{"gamma", "1.0.0", false},
	}, flatten(res))
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, domain.Conflict{
		PackageID:  "beta",
		Selected:   "2.0.5",
		Rejected:   "2.4.0",
		Range:      "^2.0.0",
		RequiredBy: "gamma",
	}, res.Conflicts[0])
}

func TestResolve_DependencyPromotedToRoot(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120, "beta")},
		"beta":  {version("1.0.0", p120)},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha", "beta"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{"alpha", "1.0.0", false},
		{"beta", "1.0.0", false},
	}, flatten(res))
}

func TestResolve_PartialFailures(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120, "ghost", "beta@^9.0.0")},
		"beta":  {version("1.0.0", p120)},
		"delta": {version("1.0.0", []string{"1.19"})},
		"omega": {version("3.0.0", p120)},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha", "delta", "omega"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{"alpha", "1.0.0", false},
		{"omega", "3.0.0", false},
	}, flatten(res))
	assert.Equal(t, refs(t, "ghost", "beta@^9.0.0", "delta"), res.Missing)
}

func TestResolve_UnsatisfiableRangeOfIncludedPackageIsConflict(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120)},
		"beta":  {version("1.0.0", p120, "alpha@^3.0.0")},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha", "beta"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{
		{"alpha", "1.0.0", false},
		{"beta", "1.0.0", false},
	}, flatten(res))
	assert.Empty(t, res.Missing)
	assert.Equal(t, []domain.Conflict{{
		PackageID:  "alpha",
		Selected:   "1.0.0",
		Range:      "^3.0.0",
		RequiredBy: "beta",
	}}, res.Conflicts)
}

func TestResolve_MissingReportedOnce(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120, "ghost", "beta@^9.0.0")},
		"gamma": {version("1.0.0", p120, "ghost", "beta@^9.0.0", "ghost@^2.0.0")},
		"beta":  {version("1.0.0", p120)},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha", "gamma", "ghost"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, refs(t, "ghost", "beta@^9.0.0", "ghost@^2.0.0"), res.Missing)
}

func TestResolve_ExactVersionFallback(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", []string{"1.19"}), version("1.1.0", []string{"1.19"})},
	})

	res, err := r.Resolve(t.Context(), refs(t, "alpha@1.0.0"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, []entry{{"alpha", "1.0.0", false}}, flatten(res))

	res, err = r.Resolve(t.Context(), refs(t, "alpha@^1.0.0"), "1.20")
	require.NoError(t, err)
	assert.Empty(t, res.Packages)
}

func TestResolve_Idempotent(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {version("1.0.0", p120, "beta", "gamma")},
		"beta":  {version("1.0.0", p120, "gamma")},
		"gamma": {version("1.0.0", p120, "delta")},
		"delta": {version("1.0.0", p120, "beta")},
	})

	first, err := r.Resolve(t.Context(), refs(t, "alpha"), "1.20")
	require.NoError(t, err)
	second, err := r.Resolve(t.Context(), refs(t, "alpha"), "1.20")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_CatalogErrorIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockCatalog(ctrl)
	unreachable := errors.New("connection refused")
	catalog.EXPECT().GetPackageVersions(gomock.Any(), "alpha").Return(nil, unreachable)
	log := mocks.NewMockLogger(ctrl)

	r := resolver.NewResolver(catalog, log)
	_, err := r.Resolve(t.Context(), refs(t, "alpha"), "1.20")
	require.ErrorIs(t, err, unreachable)
}

func TestResolve_CanceledContext(t *testing.T) {
	r, _ := setupResolver(t, catalogData{"alpha": {version("1.0.0", p120)}})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := r.Resolve(ctx, refs(t, "alpha"), "1.20")
	require.ErrorIs(t, err, context.Canceled)
}

func TestInferPlatform(t *testing.T) {
	r, _ := setupResolver(t, catalogData{
		"alpha": {
			version("1.0.0", []string{"1.19", "1.18"}),
			version("1.2.0", []string{"1.21", "1.20"}),
			version("2.0.0", []string{"1.22"}),
		},
	})

	platform, ok, err := r.InferPlatform(t.Context(), domain.PackageReference{ID: "alpha", VersionRange: "^1.0.0"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.21", platform)

	_, ok, err = r.InferPlatform(t.Context(), domain.PackageReference{ID: "ghost", VersionRange: "*"})
	require.NoError(t, err)
	assert.False(t, ok)
}
