// Package resolver walks the declared dependency graph of requested packages and
// selects one concrete version per package.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/packsmith/internal/engine/matcher"
	"go.trai.ch/zerr"
)

// Resolver selects package versions from the catalog.
type Resolver struct {
	catalog ports.Catalog
	logger  ports.Logger
}

// NewResolver creates a new Resolver.
func NewResolver(catalog ports.Catalog, logger ports.Logger) *Resolver {
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve selects a version for every root reference and, transitively, for every
// declared dependency. The output is in depth-first pre-order: a package always
// precedes its dependencies.
//
// Packages that are unknown or have no compatible version are reported in
// Resolution.Missing once each and their branch is dropped. A package reached again
// at a different version, or through a range none of its versions satisfy, is
// reported in Resolution.Conflicts and the first selection wins.
// Only catalog access errors are returned.
func (r *Resolver) Resolve(
	ctx context.Context,
	roots []domain.PackageReference,
	platform string,
) (*domain.Resolution, error) {
	run := &run{
		resolver: r,
		platform: platform,
		visited:  make(map[string]int),
		missing:  make(map[string]struct{}),
		versions: make(map[string][]domain.PackageVersionRecord),
		out:      &domain.Resolution{},
	}

	for _, ref := range roots {
		if err := run.visit(ctx, ref, "", false); err != nil {
			return nil, err
		}
	}

	return run.out, nil
}

// InferPlatform returns the first platform supported by the newest version of ref,
// ignoring platform support while selecting. It reports false when nothing matches.
func (r *Resolver) InferPlatform(ctx context.Context, ref domain.PackageReference) (string, bool, error) {
	records, err := r.catalog.GetPackageVersions(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			return "", false, nil
		}
		return "", false, zerr.With(err, "package", ref.ID)
	}

	selected, ok := matcher.SelectIgnoringPlatform(records, ref.VersionRange)
	if !ok || len(selected.Supports) == 0 {
		return "", false, nil
	}
	return selected.Supports[0], true, nil
}

// run holds the state of a single Resolve call.
type run struct {
	resolver *Resolver
	platform string
	// visited maps a package id to its index in out.Packages.
	visited map[string]int
	// missing holds the references already reported in out.Missing.
	missing map[string]struct{}
	// versions memoizes catalog lookups for the duration of the run.
	versions map[string][]domain.PackageVersionRecord
	out      *domain.Resolution
}

func (s *run) visit(ctx context.Context, ref domain.PackageReference, parent string, isDependency bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records, found, err := s.lookup(ctx, ref.ID)
	if err != nil {
		return err
	}
	if !found {
		s.resolver.logger.Warn(fmt.Sprintf("unknown package %s", ref.ID))
		s.addMissing(ref)
		return nil
	}

	selected, ok := s.selectVersion(records, ref)
	if !ok {
		if idx, seen := s.visited[ref.ID]; seen {
			// Already included at a version outside this range.
			s.out.Conflicts = append(s.out.Conflicts, domain.Conflict{
				PackageID:  ref.ID,
				Selected:   s.out.Packages[idx].Version.Name,
				Range:      ref.VersionRange,
				RequiredBy: parent,
			})
			return nil
		}
		s.addMissing(ref)
		return nil
	}

	if idx, seen := s.visited[ref.ID]; seen {
		existing := &s.out.Packages[idx]
		if existing.Version.Name != selected.Name {
			s.out.Conflicts = append(s.out.Conflicts, domain.Conflict{
				PackageID:  ref.ID,
				Selected:   existing.Version.Name,
				Rejected:   selected.Name,
				Range:      ref.VersionRange,
				RequiredBy: parent,
			})
			s.resolver.logger.Warn(fmt.Sprintf(
				"conflicting versions of %s: keeping %s, ignoring %s (%s)",
				ref.ID, existing.Version.Name, selected.Name, describeParent(parent),
			))
			return nil
		}
		if !isDependency {
			existing.IsDependency = false
		}
		return nil
	}

	s.visited[ref.ID] = len(s.out.Packages)
	s.out.Packages = append(s.out.Packages, domain.ResolvedPackage{
		PackageID:    ref.ID,
		Version:      selected,
		IsDependency: isDependency,
	})

	for _, dep := range selected.Dependencies {
		if err := s.visit(ctx, dep, ref.ID, true); err != nil {
			return err
		}
	}

	return nil
}

func (s *run) addMissing(ref domain.PackageReference) {
	key := ref.String()
	if _, dup := s.missing[key]; dup {
		return
	}
	s.missing[key] = struct{}{}
	s.out.Missing = append(s.out.Missing, ref)
}

func (s *run) lookup(ctx context.Context, id string) ([]domain.PackageVersionRecord, bool, error) {
	if records, ok := s.versions[id]; ok {
		return records, records != nil, nil
	}

	records, err := s.resolver.catalog.GetPackageVersions(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			s.versions[id] = nil
			return nil, false, nil
		}
		return nil, false, zerr.With(err, "package", id)
	}
	if records == nil {
		records = []domain.PackageVersionRecord{}
	}
	s.versions[id] = records
	return records, true, nil
}

// selectVersion applies range and platform filters, falling back to an exact
// version name that does not list the platform.
func (s *run) selectVersion(
	records []domain.PackageVersionRecord,
	ref domain.PackageReference,
) (domain.PackageVersionRecord, bool) {
	if selected, ok := matcher.Select(records, ref.VersionRange, s.platform); ok {
		return selected, true
	}

	for _, record := range records {
		if record.Name == ref.VersionRange {
			s.resolver.logger.Warn(fmt.Sprintf(
				"using %s@%s although it does not explicitly support %s",
				ref.ID, record.Name, s.platform,
			))
			return record, true
		}
	}

	s.resolver.logger.Warn(fmt.Sprintf(
		"no version of %s matches %s on platform %s", ref.ID, ref.VersionRange, s.platform,
	))
	return domain.PackageVersionRecord{}, false
}

func describeParent(parent string) string {
	if parent == "" {
		return "requested directly"
	}
	return "required by " + parent
}
