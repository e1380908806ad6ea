// Package pipeline runs a build request end to end: cache lookup, resolution,
// artifact download, merge, caching and usage accounting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/packsmith/internal/engine/accounting"
	"go.trai.ch/packsmith/internal/engine/fetcher"
	"go.trai.ch/packsmith/internal/engine/matcher"
	"go.trai.ch/packsmith/internal/engine/orchestrator"
	"go.trai.ch/packsmith/internal/engine/resolver"
	"go.trai.ch/packsmith/internal/engine/resultcache"
	"go.trai.ch/zerr"
)

// Options holds the pipeline settings taken from configuration.
type Options struct {
	// TempRoot is the directory holding request workspaces.
	TempRoot string
	// LatestPlatform is used when a request names no platform and none can be inferred.
	LatestPlatform string
	// SupportedPlatforms lists the platform versions known to be valid.
	SupportedPlatforms []string
}

// Builder runs builds.
type Builder struct {
	catalog      ports.Catalog
	resolver     *resolver.Resolver
	fetcher      *fetcher.Fetcher
	orchestrator *orchestrator.Orchestrator
	cache        *resultcache.Cache
	accountant   *accounting.Accountant
	identity     ports.IdentityResolver
	tracer       ports.Tracer
	logger       ports.Logger
	opts         Options
}

// Deps groups the collaborators of a Builder.
type Deps struct {
	Catalog      ports.Catalog
	Resolver     *resolver.Resolver
	Fetcher      *fetcher.Fetcher
	Orchestrator *orchestrator.Orchestrator
	Cache        *resultcache.Cache
	Accountant   *accounting.Accountant
	Identity     ports.IdentityResolver
	Tracer       ports.Tracer
	Logger       ports.Logger
}

// NewBuilder creates a new Builder.
func NewBuilder(deps Deps, opts Options) *Builder {
	if opts.LatestPlatform == "" {
		opts.LatestPlatform = domain.DefaultLatestPlatform
	}
	return &Builder{
		catalog:      deps.Catalog,
		resolver:     deps.Resolver,
		fetcher:      deps.Fetcher,
		orchestrator: deps.Orchestrator,
		cache:        deps.Cache,
		accountant:   deps.Accountant,
		identity:     deps.Identity,
		tracer:       deps.Tracer,
		logger:       deps.Logger,
		opts:         opts,
	}
}

// SupportedPlatforms returns the configured platform versions.
func (b *Builder) SupportedPlatforms() []string {
	return slices.Clone(b.opts.SupportedPlatforms)
}

// Build returns the archive for req, building it when the cache has no entry.
// token identifies the caller for usage accounting and may be empty.
func (b *Builder) Build(ctx context.Context, req domain.BuildRequest, token string) (_ *domain.BuildOutput, err error) {
	refs, err := req.References()
	if err != nil {
		return nil, err
	}
	if req.Mode == "" {
		req.Mode = domain.ModeBoth
	}

	requestID, err := domain.NewRequestID()
	if err != nil {
		return nil, err
	}
	fingerprint := req.Fingerprint()

	ctx, span := b.tracer.Start(ctx, ports.SpanBuild,
		ports.WithAttribute(ports.AttrRequestID, requestID.String()),
		ports.WithAttribute(ports.AttrFingerprint, fingerprint),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	entry, hit, err := b.cache.GetOrBuild(ctx, fingerprint, func(ctx context.Context) (*domain.CacheEntry, error) {
		return b.run(ctx, requestID, refs, req)
	})
	if err != nil {
		return nil, err
	}
	span.SetAttribute(ports.AttrCacheHit, hit)

	if userHash, ok := b.identity.ResolveUserHash(ctx, token); ok {
		b.accountant.RecordBuild(ctx, userHash, entry.Included)
	}

	// Callers that joined another caller's flight did not build either.
	builtBy := entry.RequestID
	if builtBy == "" {
		builtBy = requestID
	}
	manifest := domain.BuildManifest{
		RequestID:   builtBy,
		Fingerprint: fingerprint,
		Platform:    entry.Platform,
		Mode:        req.Mode,
		Included:    entry.Included,
		Missing:     entry.Missing,
		Conflicts:   entry.Conflicts,
		Failed:      entry.Failed,
		CacheHit:    hit || builtBy != requestID,
	}

	return &domain.BuildOutput{
		Data:     entry.Data,
		Filename: entry.Filename,
		Manifest: manifest,
	}, nil
}

// BuildBundle builds one version of a bundle. version is an exact version name or a
// range, in which case the newest matching version is built. Empty means the newest.
func (b *Builder) BuildBundle(
	ctx context.Context,
	bundleID, version string,
	mode domain.Mode,
	token string,
) (*domain.BuildOutput, error) {
	bundle, err := b.catalog.GetBundle(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	v, err := selectBundleVersion(bundle, version)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, v.Request(mode), token)
}

func selectBundleVersion(bundle *domain.Bundle, version string) (*domain.BundleVersion, error) {
	if v, err := bundle.Version(version); err == nil {
		return v, nil
	}

	var newest *domain.BundleVersion
	for i := range bundle.Versions {
		candidate := &bundle.Versions[i]
		if !matcher.Matches(candidate.Name, version) {
			continue
		}
		if newest == nil || matcher.Compare(candidate.Name, newest.Name) > 0 {
			newest = candidate
		}
	}
	if newest == nil {
		return bundle.Version(version)
	}
	return newest, nil
}

// Resolve resolves the packages of req without fetching anything and returns the
// resolution along with the platform it was resolved for.
func (b *Builder) Resolve(ctx context.Context, req domain.BuildRequest) (*domain.Resolution, string, error) {
	refs, err := req.References()
	if err != nil {
		return nil, "", err
	}
	platform, err := b.platformFor(ctx, refs, req)
	if err != nil {
		return nil, "", err
	}
	res, err := b.resolver.Resolve(ctx, refs, platform)
	if err != nil {
		return nil, "", err
	}
	return res, platform, nil
}

// run performs a fresh build inside its own workspace.
func (b *Builder) run(
	ctx context.Context,
	requestID domain.RequestID,
	refs []domain.PackageReference,
	req domain.BuildRequest,
) (_ *domain.CacheEntry, err error) {
	platform, err := b.platformFor(ctx, refs, req)
	if err != nil {
		return nil, err
	}

	ws := domain.NewWorkspace(b.opts.TempRoot, requestID)
	if err := os.MkdirAll(ws.Dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrWorkspaceCreateFailed.Error()), "dir", ws.Dir)
	}
	defer func() {
		if rmErr := os.RemoveAll(ws.Dir); rmErr != nil {
			b.logger.Warn(fmt.Sprintf("failed to remove workspace %s, leaving it to the sweeper: %v", ws.Dir, rmErr))
		}
	}()

	resolution, err := b.resolve(ctx, refs, platform)
	if err != nil {
		return nil, err
	}
	if len(resolution.Packages) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoPacksFound, "resolve"), "platform", platform)
	}

	included, failed := b.fetch(ctx, ws, resolution.Packages, req)
	if len(included) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNothingToMerge, "fetch"), "mode", string(req.Mode))
	}

	result, err := b.merge(ctx, ws, req.Mode, platform)
	if err != nil {
		return nil, err
	}

	b.logger.Info(fmt.Sprintf("built %s with %d packages for %s", requestID, len(included), platform))
	return &domain.CacheEntry{
		Data:      result.For(req.Mode),
		Filename:  req.Mode.OutputFile(),
		Included:  included,
		Platform:  platform,
		Missing:   resolution.Missing,
		Conflicts: resolution.Conflicts,
		Failed:    failed,
		RequestID: requestID,
	}, nil
}

// platformFor picks the platform of a request: the requested one, the one inferred
// from a single requested package, or the configured latest.
func (b *Builder) platformFor(ctx context.Context, refs []domain.PackageReference, req domain.BuildRequest) (string, error) {
	if req.PlatformVersion != "" {
		if len(b.opts.SupportedPlatforms) > 0 && !slices.Contains(b.opts.SupportedPlatforms, req.PlatformVersion) {
			b.logger.Warn(fmt.Sprintf("platform %s is not in the supported list", req.PlatformVersion))
		}
		return req.PlatformVersion, nil
	}

	if len(refs) == 1 && len(req.Patches) == 0 {
		platform, ok, err := b.resolver.InferPlatform(ctx, refs[0])
		if err != nil {
			return "", err
		}
		if ok {
			return platform, nil
		}
	}
	return b.opts.LatestPlatform, nil
}

func (b *Builder) resolve(
	ctx context.Context,
	refs []domain.PackageReference,
	platform string,
) (_ *domain.Resolution, err error) {
	ctx, span := b.tracer.Start(ctx, ports.SpanResolve, ports.WithAttribute(ports.AttrPlatform, platform))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	res, err := b.resolver.Resolve(ctx, refs, platform)
	if err != nil {
		return nil, err
	}
	span.SetAttribute(ports.AttrPackages, len(res.Packages))
	span.SetAttribute(ports.AttrMissing, len(res.Missing))
	return res, nil
}

func (b *Builder) fetch(
	ctx context.Context,
	ws domain.Workspace,
	pkgs []domain.ResolvedPackage,
	req domain.BuildRequest,
) ([]domain.IncludedPackage, []string) {
	ctx, span := b.tracer.Start(ctx, ports.SpanFetch)
	defer span.End()

	results := b.fetcher.Fetch(ctx, ws, pkgs, req.Mode)
	if len(req.Patches) > 0 {
		patches := b.fetcher.FetchPatches(ctx, ws, req.Patches)
		span.SetAttribute(ports.AttrPatches, patches)
	}

	var included []domain.IncludedPackage
	var failed []string
	for _, r := range results {
		if !r.Contributes(req.Mode) {
			failed = append(failed, r.Package.PackageID)
			continue
		}
		included = append(included, domain.IncludedPackage{
			PackageID:    r.Package.PackageID,
			Version:      r.Package.Version.Name,
			IsDependency: r.Package.IsDependency,
		})
	}
	span.SetAttribute(ports.AttrIncluded, len(included))
	return included, failed
}

func (b *Builder) merge(
	ctx context.Context,
	ws domain.Workspace,
	mode domain.Mode,
	platform string,
) (_ *domain.MergeResult, err error) {
	ctx, span := b.tracer.Start(ctx, ports.SpanMerge, ports.WithAttribute(ports.AttrMode, string(mode)))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	return b.orchestrator.Merge(ctx, ws, mode, platform)
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidRequest) ||
		errors.Is(err, domain.ErrInvalidMode) ||
		errors.Is(err, domain.ErrInvalidReference)
}

// IsNotFound reports whether err means the requested content does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNoPacksFound) ||
		errors.Is(err, domain.ErrBundleNotFound) ||
		errors.Is(err, domain.ErrBundleVersionNotFound)
}
