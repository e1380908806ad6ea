package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/packsmith/cmd/packsmith/commands"
	"go.trai.ch/packsmith/internal/adapters/usage"
	"go.trai.ch/packsmith/internal/app"
	"go.trai.ch/packsmith/internal/build"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports/mocks"
	"go.trai.ch/packsmith/internal/engine/accounting"
	"go.trai.ch/packsmith/internal/engine/sweeper"
	"go.uber.org/mock/gomock"
)

type builds struct {
	*mocks.MockBuildService
	resolution *domain.Resolution
}

func (b builds) Resolve(_ context.Context, req domain.BuildRequest) (*domain.Resolution, string, error) {
	if req.PlatformVersion == "" {
		return b.resolution, "1.20.4", nil
	}
	return b.resolution, req.PlatformVersion, nil
}

type purger struct{ n int }

func (p purger) Invalidate(context.Context, string) (int, error) { return p.n, nil }

func execute(t *testing.T, a *app.App, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	var out bytes.Buffer
	cli.SetOutput(&out)
	cli.SetArgs(args)
	err := cli.Execute(t.Context())
	return out.String(), err
}

func manifestOutput() *domain.BuildOutput {
	return &domain.BuildOutput{
		Data:     []byte("zip"),
		Filename: domain.MergedCombinedFile,
		Manifest: domain.BuildManifest{
			RequestID: "0192-abc",
			Platform:  "1.20",
			Included: []domain.IncludedPackage{
				{PackageID: "alpha", Version: "1.0.0"},
				{PackageID: "beta", Version: "2.0.5", IsDependency: true},
			},
			Missing: []domain.PackageReference{{ID: "ghost", VersionRange: "*"}},
			Conflicts: []domain.Conflict{
				{PackageID: "beta", Selected: "2.0.5", Rejected: "2.4.0", Range: "^2.0.0", RequiredBy: "gamma"},
				{PackageID: "alpha", Selected: "1.0.0", Range: "^3.0.0", RequiredBy: "beta"},
			},
			Failed: []string{"delta"},
		},
	}
}

func TestBuildCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBuildService(ctrl)
	a := app.New(app.Deps{Builds: builds{MockBuildService: svc}})

	svc.EXPECT().Build(gomock.Any(), domain.BuildRequest{
		Packages:        []string{"alpha", "gamma@^1.0.0"},
		PlatformVersion: "1.20",
		Mode:            domain.ModeBoth,
	}, "tok").Return(manifestOutput(), nil)

	target := filepath.Join(t.TempDir(), "out.zip")
	out, err := execute(t, a, "build", "alpha", "gamma@^1.0.0", "-p", "1.20", "-o", target, "-t", "tok")
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "zip", string(data))

	assert.Contains(t, out, "built "+target)
	assert.Contains(t, out, "0192-abc, platform 1.20, cache miss")
	assert.Contains(t, out, "included alpha@1.0.0, beta@2.0.5 (dependency)")
	assert.Contains(t, out, "missing ghost@*")
	assert.Contains(t, out, "conflict beta: kept 2.0.5, rejected 2.4.0 (^2.0.0 required by gamma)")
	assert.Contains(t, out, "conflict alpha: kept 1.0.0, nothing matches ^3.0.0 (required by beta)")
	assert.Contains(t, out, "failed delta")
}

func TestBuildCommand_InvalidMode(t *testing.T) {
	a := app.New(app.Deps{})

	_, err := execute(t, a, "build", "alpha", "--mode", "everything")
	require.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestBundleCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockBuildService(ctrl)
	a := app.New(app.Deps{Builds: builds{MockBuildService: svc}})

	svc.EXPECT().BuildBundle(gomock.Any(), "starter", "^1.0.0", domain.ModePrimary, "").Return(manifestOutput(), nil)

	target := filepath.Join(t.TempDir(), "bundle.zip")
	out, err := execute(t, a, "bundle", "starter", "^1.0.0", "--mode", "dp", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "built "+target)
	assert.FileExists(t, target)
}

func TestResolveCommand(t *testing.T) {
	a := app.New(app.Deps{Builds: builds{resolution: &domain.Resolution{
		Packages: []domain.ResolvedPackage{
			{PackageID: "alpha", Version: domain.PackageVersionRecord{Name: "1.0.0"}},
			{PackageID: "beta", Version: domain.PackageVersionRecord{Name: "2.3.0"}, IsDependency: true},
		},
		Missing: []domain.PackageReference{{ID: "ghost", VersionRange: "^1.0.0"}},
	}}})

	out, err := execute(t, a, "resolve", "alpha", "ghost@^1.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Platform 1.20.4")
	assert.Contains(t, out, "alpha 1.0.0")
	assert.Contains(t, out, "beta 2.3.0 (dependency)")
	assert.Contains(t, out, "missing ghost@^1.0.0")
}

func TestSweepAndCacheCommands(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	root := t.TempDir()
	stale := filepath.Join(root, "old-request")
	require.NoError(t, os.Mkdir(stale, domain.DirPerm))
	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	a := app.New(app.Deps{
		Sweeper: sweeper.New(log, time.Minute, sweeper.Target{Dir: root, MaxAge: time.Hour}),
		Cache:   purger{n: 2},
		Logger:  log,
	})

	out, err := execute(t, a, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 expired entries")

	out, err = execute(t, a, "cache", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "purged 2 cached builds")
}

func TestUsageCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	accountant := accounting.NewAccountant(usage.NewMemoryStore(), log)
	a := app.New(app.Deps{Usage: accountant, Logger: log})

	_, err := accountant.Record(t.Context(), "user-1", "alpha", domain.RootWeight)
	require.NoError(t, err)

	out, err := execute(t, a, "usage", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, "total 1")
	assert.Contains(t, out, domain.DayKey(time.Now())+" 1")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, app.New(app.Deps{}), "version")
	require.NoError(t, err)
	assert.Equal(t, "packsmith version "+build.Info()+"\n", out)
}
