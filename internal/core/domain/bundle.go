package domain

import "go.trai.ch/zerr"

// Bundle is a curated, named set of packages published as one download.
type Bundle struct {
	ID       string          `json:"id" yaml:"id"`
	Versions []BundleVersion `json:"versions" yaml:"versions"`
}

// BundleVersion pins exact package versions plus patch archives merged on top.
type BundleVersion struct {
	Name     string             `json:"name" yaml:"name"`
	Supports []string           `json:"supports" yaml:"supports"`
	Packs    []PackageReference `json:"packs" yaml:"packs"`
	Patches  []Downloads        `json:"patches,omitempty" yaml:"patches,omitempty"`
}

// Version returns the bundle version with the given name.
func (b *Bundle) Version(name string) (*BundleVersion, error) {
	for i := range b.Versions {
		if b.Versions[i].Name == name {
			return &b.Versions[i], nil
		}
	}
	err := zerr.With(zerr.Wrap(ErrBundleVersionNotFound, "select bundle version"), "bundle", b.ID)
	return nil, zerr.With(err, "version", name)
}

// Request turns the bundle version into a build request for mode.
func (v *BundleVersion) Request(mode Mode) BuildRequest {
	packages := make([]string, 0, len(v.Packs))
	for _, p := range v.Packs {
		packages = append(packages, p.String())
	}

	var platform string
	if len(v.Supports) > 0 {
		platform = v.Supports[0]
	}

	return BuildRequest{
		Packages:        packages,
		PlatformVersion: platform,
		Mode:            mode,
		Patches:         v.Patches,
	}
}
