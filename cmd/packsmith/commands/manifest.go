package commands

import (
	"fmt"
	"io"
	"strings"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/ui/style"
)

func printManifest(w io.Writer, path string, m *domain.BuildManifest) {
	cache := "cache miss"
	if m.CacheHit {
		cache = "cache hit"
	}
	_, _ = fmt.Fprintf(w, "%s built %s %s\n",
		style.Success.Render(style.Check),
		path,
		style.Muted.Render(fmt.Sprintf("(%s, platform %s, %s)", m.RequestID, m.Platform, cache)),
	)

	if len(m.Included) > 0 {
		included := make([]string, 0, len(m.Included))
		for _, p := range m.Included {
			entry := p.PackageID + "@" + p.Version
			if p.IsDependency {
				entry += style.Muted.Render(" (dependency)")
			}
			included = append(included, entry)
		}
		_, _ = fmt.Fprintf(w, "  included %s\n", strings.Join(included, ", "))
	}
	for _, ref := range m.Missing {
		_, _ = fmt.Fprintf(w, "  %s\n", style.Caution.Render(style.Warning+" missing "+ref.String()))
	}
	for _, conflict := range m.Conflicts {
		_, _ = fmt.Fprintf(w, "  %s\n", style.Caution.Render(style.Warning+" conflict "+describeConflict(conflict)))
	}
	for _, id := range m.Failed {
		_, _ = fmt.Fprintf(w, "  %s\n", style.Failure.Render(style.Cross+" failed "+id))
	}
}

func describeConflict(c domain.Conflict) string {
	by := "requested directly"
	if c.RequiredBy != "" {
		by = "required by " + c.RequiredBy
	}
	if c.Rejected == "" {
		return fmt.Sprintf("%s: kept %s, nothing matches %s (%s)", c.PackageID, c.Selected, c.Range, by)
	}
	return fmt.Sprintf("%s: kept %s, rejected %s (%s %s)", c.PackageID, c.Selected, c.Rejected, c.Range, by)
}
