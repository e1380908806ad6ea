// Package matcher compares version names against semantic version ranges and
// platform support lists. It performs no I/O.
package matcher

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/packsmith/internal/core/domain"
)

// coercePattern finds the first dotted number run in a loosely formed version.
var coercePattern = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// Coerce parses name as a semantic version, falling back to the nearest valid
// version found inside it ("v1.2" is 1.2.0, "1.2.3.4" is 1.2.3, "build-7" is 7.0.0).
// A pre-release suffix survives coercion with its identifiers repaired, so
// "1.0.0-SNAPSHOT.01" stays a pre-release. It returns nil when name contains no
// version at all or ends in an empty pre-release.
func Coerce(name string) *semver.Version {
	name = strings.TrimSpace(name)
	if v, err := semver.NewVersion(name); err == nil {
		return v
	}

	m := coercePattern.FindStringSubmatchIndex(name)
	if m == nil {
		return nil
	}
	group := func(i int) string {
		if m[2*i] < 0 {
			return "0"
		}
		return name[m[2*i]:m[2*i+1]]
	}
	coerced := group(1) + "." + group(2) + "." + group(3)

	// Surplus numeric parts ("1.2.3.4") are dropped before looking for a pre-release.
	rest := strings.TrimLeft(name[m[1]:], ".0123456789")
	if pre, ok := strings.CutPrefix(rest, "-"); ok {
		pre, _, _ = strings.Cut(pre, "+")
		pre = sanitizePrerelease(pre)
		if pre == "" {
			return nil
		}
		coerced += "-" + pre
	}

	v, err := semver.NewVersion(coerced)
	if err != nil {
		return nil
	}
	return v
}

// sanitizePrerelease rewrites dot-separated identifiers into valid semver ones:
// invalid characters become hyphens, empty identifiers are dropped and numeric
// identifiers lose their leading zeros.
func sanitizePrerelease(pre string) string {
	var ids []string
	for id := range strings.SplitSeq(pre, ".") {
		id = strings.Map(func(r rune) rune {
			switch {
			case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-':
				return r
			default:
				return '-'
			}
		}, id)
		if id == "" {
			continue
		}
		if strings.Trim(id, "0123456789") == "" {
			if id = strings.TrimLeft(id, "0"); id == "" {
				id = "0"
			}
		}
		ids = append(ids, id)
	}
	return strings.Join(ids, ".")
}

// parseRange parses a range expression. Empty and "latest" mean any version.
func parseRange(expr string) (*semver.Constraints, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, "latest") {
		expr = domain.AnyRange
	}
	return semver.NewConstraint(expr)
}

// Matches reports whether versionName satisfies rangeExpr under semantic version
// precedence. Pre-release versions only match ranges that name a pre-release.
// Unparseable input never matches.
func Matches(versionName, rangeExpr string) bool {
	v := Coerce(versionName)
	if v == nil {
		return false
	}

	c, err := parseRange(rangeExpr)
	if err != nil {
		// The range may itself be a loose version, e.g. "1.2.3.4".
		exact := Coerce(rangeExpr)
		if exact == nil {
			return false
		}
		return v.Equal(exact)
	}
	return c.Check(v)
}

// Supports reports whether the version record lists platform exactly.
func Supports(record domain.PackageVersionRecord, platform string) bool {
	return slices.Contains(record.Supports, platform)
}

// Compare orders two version names by precedence. Unparseable names sort lowest
// and compare equal to each other.
func Compare(a, b string) int {
	va, vb := Coerce(a), Coerce(b)
	switch {
	case va == nil && vb == nil:
		return 0
	case va == nil:
		return -1
	case vb == nil:
		return 1
	default:
		return va.Compare(vb)
	}
}

// SortDescending orders records newest first. Ties keep their catalog order.
func SortDescending(records []domain.PackageVersionRecord) {
	slices.SortStableFunc(records, func(a, b domain.PackageVersionRecord) int {
		return Compare(b.Name, a.Name)
	})
}

// Select returns the newest record satisfying rangeExpr and supporting platform.
func Select(records []domain.PackageVersionRecord, rangeExpr, platform string) (domain.PackageVersionRecord, bool) {
	return best(records, func(r domain.PackageVersionRecord) bool {
		return Matches(r.Name, rangeExpr) && Supports(r, platform)
	})
}

// SelectIgnoringPlatform returns the newest record satisfying rangeExpr on any platform.
func SelectIgnoringPlatform(records []domain.PackageVersionRecord, rangeExpr string) (domain.PackageVersionRecord, bool) {
	return best(records, func(r domain.PackageVersionRecord) bool {
		return Matches(r.Name, rangeExpr)
	})
}

func best(records []domain.PackageVersionRecord, keep func(domain.PackageVersionRecord) bool) (domain.PackageVersionRecord, bool) {
	filtered := make([]domain.PackageVersionRecord, 0, len(records))
	for _, r := range records {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return domain.PackageVersionRecord{}, false
	}
	SortDescending(filtered)
	return filtered[0], true
}
