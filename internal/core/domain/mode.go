package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ArtifactKind is the kind of archive a package version can ship.
type ArtifactKind string

const (
	// KindPrimary is the content archive.
	KindPrimary ArtifactKind = "primary"
	// KindSecondary is the resource archive.
	KindSecondary ArtifactKind = "secondary"
)

// AllKinds lists every artifact kind in merge order.
var AllKinds = []ArtifactKind{KindPrimary, KindSecondary}

// MergedFile returns the archive name the merge tool writes for the kind.
func (k ArtifactKind) MergedFile() string {
	if k == KindSecondary {
		return MergedSecondaryFile
	}
	return MergedPrimaryFile
}

// Mode selects which artifact kinds a build merges.
type Mode string

const (
	// ModePrimary merges content archives only.
	ModePrimary Mode = "primary"
	// ModeSecondary merges resource archives only.
	ModeSecondary Mode = "secondary"
	// ModeBoth merges both kinds and wraps them in one archive.
	ModeBoth Mode = "both"
)

var modeAliases = map[string]Mode{
	"":             ModeBoth,
	"both":         ModeBoth,
	"primary":      ModePrimary,
	"datapack":     ModePrimary,
	"dp":           ModePrimary,
	"secondary":    ModeSecondary,
	"resourcepack": ModeSecondary,
	"rp":           ModeSecondary,
}

// ParseMode parses a mode name. The empty string selects ModeBoth.
func ParseMode(s string) (Mode, error) {
	mode, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", zerr.With(zerr.Wrap(ErrInvalidMode, "parse mode"), "mode", s)
	}
	return mode, nil
}

// Kinds returns the artifact kinds the mode requires.
func (m Mode) Kinds() []ArtifactKind {
	switch m {
	case ModePrimary:
		return []ArtifactKind{KindPrimary}
	case ModeSecondary:
		return []ArtifactKind{KindSecondary}
	default:
		return AllKinds
	}
}

// Wants reports whether the mode requires the given kind.
func (m Mode) Wants(kind ArtifactKind) bool {
	return slices.Contains(m.Kinds(), kind)
}

// OutputFile returns the name of the archive returned to the caller.
func (m Mode) OutputFile() string {
	switch m {
	case ModePrimary:
		return MergedPrimaryFile
	case ModeSecondary:
		return MergedSecondaryFile
	default:
		return MergedCombinedFile
	}
}
