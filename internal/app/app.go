// Package app implements the application layer for packsmith.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Builds is the build pipeline as seen by the application.
type Builds interface {
	ports.BuildService
	Resolve(ctx context.Context, req domain.BuildRequest) (*domain.Resolution, string, error)
}

// Sweeper reclaims expired workspaces and cached artifacts.
type Sweeper interface {
	Run(ctx context.Context) error
	SweepOnce(ctx context.Context, now time.Time) (int, error)
}

// ResultCache is the result cache as seen by the application.
type ResultCache interface {
	Invalidate(ctx context.Context, prefix string) (int, error)
}

// UsageReader reads usage accounting.
type UsageReader interface {
	Usage(ctx context.Context, packageID, day string) (*domain.DailyUsage, error)
	Total(ctx context.Context, packageID string) (int64, error)
}

// Server serves the HTTP API until its context is canceled.
type Server interface {
	Serve(ctx context.Context) error
}

// Shutdowner flushes and releases a component on exit.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// watcher is implemented by catalogs that follow changes to their source.
type watcher interface {
	Watch(ctx context.Context) error
}

// Deps groups the collaborators of an App.
type Deps struct {
	Builds  Builds
	Sweeper Sweeper
	Cache   ResultCache
	Usage   UsageReader
	Catalog ports.Catalog
	Server  Server
	Logger  ports.Logger
	// Closers are released by Close in order, after Shutdowners.
	Closers     []io.Closer
	Shutdowners []Shutdowner
}

// App represents the main application logic.
type App struct {
	builds      Builds
	sweeper     Sweeper
	cache       ResultCache
	usage       UsageReader
	catalog     ports.Catalog
	server      Server
	logger      ports.Logger
	closers     []io.Closer
	shutdowners []Shutdowner
}

// New creates a new App instance.
func New(deps Deps) *App {
	return &App{
		builds:      deps.Builds,
		sweeper:     deps.Sweeper,
		cache:       deps.Cache,
		usage:       deps.Usage,
		catalog:     deps.Catalog,
		server:      deps.Server,
		logger:      deps.Logger,
		closers:     deps.Closers,
		shutdowners: deps.Shutdowners,
	}
}

// Serve runs the HTTP API, the sweeper and, when the catalog supports it, the
// catalog watcher until ctx is canceled or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Serve(ctx)
	})
	g.Go(func() error {
		return a.sweeper.Run(ctx)
	})
	if w, ok := a.catalog.(watcher); ok {
		g.Go(func() error {
			return w.Watch(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// BuildOptions configures a build run from the command line.
type BuildOptions struct {
	Request domain.BuildRequest
	// Bundle, when set, builds this bundle instead of Request.Packages.
	Bundle        string
	BundleVersion string
	Token         string
	// Output is the archive path. Empty writes the archive's own file name into
	// the working directory; "-" writes to Stdout.
	Output string
	Stdout io.Writer
}

// Build builds an archive and writes it to opts.Output. It returns the manifest
// and the path written.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*domain.BuildManifest, string, error) {
	var (
		out *domain.BuildOutput
		err error
	)
	if opts.Bundle != "" {
		out, err = a.builds.BuildBundle(ctx, opts.Bundle, opts.BundleVersion, opts.Request.Mode, opts.Token)
	} else {
		out, err = a.builds.Build(ctx, opts.Request, opts.Token)
	}
	if err != nil {
		return nil, "", zerr.Wrap(err, domain.ErrBuildFailed.Error())
	}

	if opts.Output == "-" {
		if _, err := opts.Stdout.Write(out.Data); err != nil {
			return nil, "", zerr.Wrap(err, "failed to write archive")
		}
		return &out.Manifest, opts.Output, nil
	}

	path := opts.Output
	if path == "" {
		path = out.Filename
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return nil, "", zerr.With(zerr.Wrap(err, "failed to create output directory"), "dir", dir)
		}
	}
	if err := os.WriteFile(path, out.Data, domain.FilePerm); err != nil {
		return nil, "", zerr.With(zerr.Wrap(err, "failed to write archive"), "path", path)
	}
	return &out.Manifest, path, nil
}

// Resolve resolves req without fetching or merging anything.
func (a *App) Resolve(ctx context.Context, req domain.BuildRequest) (*domain.Resolution, string, error) {
	res, platform, err := a.builds.Resolve(ctx, req)
	if err != nil {
		return nil, "", zerr.Wrap(err, "failed to resolve packages")
	}
	return res, platform, nil
}

// SupportedPlatforms lists the configured platform versions.
func (a *App) SupportedPlatforms() []string {
	return a.builds.SupportedPlatforms()
}

// Sweep runs a single sweep and returns how many entries were removed.
func (a *App) Sweep(ctx context.Context) (int, error) {
	removed, err := a.sweeper.SweepOnce(ctx, time.Now())
	if removed > 0 {
		a.logger.Info(fmt.Sprintf("swept %d expired entries", removed))
	}
	return removed, err
}

// PurgeCache removes every cached build and returns how many were removed.
func (a *App) PurgeCache(ctx context.Context) (int, error) {
	return a.cache.Invalidate(ctx, domain.BuildKeyPrefix)
}

// UsageReport is the accounting of one package on one day.
type UsageReport struct {
	Daily *domain.DailyUsage
	Total int64
}

// Usage returns the accounting of packageID on day (YYYY-MM-DD). Empty means today.
func (a *App) Usage(ctx context.Context, packageID, day string) (*UsageReport, error) {
	daily, err := a.usage.Usage(ctx, packageID, day)
	if err != nil {
		return nil, err
	}
	total, err := a.usage.Total(ctx, packageID)
	if err != nil {
		return nil, err
	}
	return &UsageReport{Daily: daily, Total: total}, nil
}

// Close flushes telemetry and releases stores.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, s := range a.shutdowners {
		if err := s.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
