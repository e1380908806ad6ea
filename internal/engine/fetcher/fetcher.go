// Package fetcher downloads the artifacts of resolved packages into a workspace.
package fetcher

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// unsafeName matches runs of characters that are not allowed in artifact file names.
var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Fetcher downloads artifacts concurrently through an ArtifactSource.
type Fetcher struct {
	source ports.ArtifactSource
	logger ports.Logger
	limit  int
}

// NewFetcher creates a new Fetcher running at most limit downloads at once.
// A non-positive limit uses the number of CPUs.
func NewFetcher(source ports.ArtifactSource, logger ports.Logger, limit int) *Fetcher {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &Fetcher{source: source, logger: logger, limit: limit}
}

// ArtifactFile returns the workspace file name of a package artifact.
func ArtifactFile(packageID, version string, kind domain.ArtifactKind) string {
	return sanitize(packageID) + "-" + sanitize(version) + "-" + string(kind) + ".zip"
}

// PatchFile returns the workspace file name of a patch artifact.
func PatchFile(index int, kind domain.ArtifactKind) string {
	return "patch-" + strconv.Itoa(index) + "-" + string(kind) + ".zip"
}

// Fetch downloads every declared artifact of pkgs into the workspace and reports,
// per package, which kinds arrived. Results are in the order of pkgs.
// Download failures are logged and never returned.
func (f *Fetcher) Fetch(
	ctx context.Context,
	ws domain.Workspace,
	pkgs []domain.ResolvedPackage,
	mode domain.Mode,
) []domain.FetchResult {
	results := make([]domain.FetchResult, len(pkgs))

	var g errgroup.Group
	g.SetLimit(f.limit)

	for i, pkg := range pkgs {
		results[i].Package = pkg
		for _, kind := range domain.AllKinds {
			g.Go(func() error {
				name := ArtifactFile(pkg.PackageID, pkg.Version.Name, kind)
				ok := f.fetchOne(ctx, ws, pkg.Version.Downloads.URL(kind), name)
				// Each goroutine owns one field of one element.
				switch kind {
				case domain.KindPrimary:
					results[i].PrimaryOK = ok
				case domain.KindSecondary:
					results[i].SecondaryOK = ok
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	for _, r := range results {
		if !r.Contributes(mode) {
			f.logger.Warn(fmt.Sprintf(
				"%s@%s has no %s artifact and is left out",
				r.Package.PackageID, r.Package.Version.Name, mode,
			))
		}
	}

	return results
}

// FetchPatches downloads bundle patch archives into the workspace and returns how
// many files arrived.
func (f *Fetcher) FetchPatches(ctx context.Context, ws domain.Workspace, patches []domain.Downloads) int {
	fetched := make([]bool, len(patches)*len(domain.AllKinds))

	var g errgroup.Group
	g.SetLimit(f.limit)

	for i, patch := range patches {
		for k, kind := range domain.AllKinds {
			g.Go(func() error {
				fetched[i*len(domain.AllKinds)+k] = f.fetchOne(ctx, ws, patch.URL(kind), PatchFile(i, kind))
				return nil
			})
		}
	}
	_ = g.Wait()

	count := 0
	for _, ok := range fetched {
		if ok {
			count++
		}
	}
	return count
}

func (f *Fetcher) fetchOne(ctx context.Context, ws domain.Workspace, url, name string) bool {
	if !isRemote(url) {
		if url != "" {
			f.logger.Warn(fmt.Sprintf("skipping %s: unsupported url %q", name, url))
		}
		return false
	}

	dst := ws.Path(name)
	if _, err := os.Stat(dst); err == nil {
		return true
	}

	if err := f.source.Fetch(ctx, url, dst); err != nil {
		f.logger.Warn(fmt.Sprintf("failed to fetch %s: %v", name, err))
		return false
	}
	return true
}

func isRemote(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}

func sanitize(s string) string {
	s = unsafeName.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return "_"
	}
	return s
}
