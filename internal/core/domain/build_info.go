package domain

// FetchResult reports which artifacts of one resolved package were fetched.
type FetchResult struct {
	Package     ResolvedPackage
	PrimaryOK   bool
	SecondaryOK bool
}

// Fetched reports whether the artifact of kind was fetched.
func (r FetchResult) Fetched(kind ArtifactKind) bool {
	switch kind {
	case KindPrimary:
		return r.PrimaryOK
	case KindSecondary:
		return r.SecondaryOK
	default:
		return false
	}
}

// Contributes reports whether the package fetched at least one artifact the mode needs.
func (r FetchResult) Contributes(mode Mode) bool {
	for _, kind := range mode.Kinds() {
		if r.Fetched(kind) {
			return true
		}
	}
	return false
}

// MergeInvocation is everything a merge engine needs for one run.
type MergeInvocation struct {
	Workspace       Workspace
	Mode            Mode
	PlatformVersion string
}

// ExitResult is the outcome of a merge engine run.
type ExitResult struct {
	ExitCode int
	// Stderr holds anything the engine wrote to its error stream.
	Stderr string
}

// MergeResult holds the archives produced for a build.
type MergeResult struct {
	Primary   []byte
	Secondary []byte
	Combined  []byte
}

// For returns the archive matching the mode.
func (r *MergeResult) For(mode Mode) []byte {
	switch mode {
	case ModePrimary:
		return r.Primary
	case ModeSecondary:
		return r.Secondary
	default:
		return r.Combined
	}
}

// BuildManifest describes what went into a build archive.
type BuildManifest struct {
	// RequestID is the build run that produced the archive, not necessarily this call.
	RequestID   RequestID
	Fingerprint string
	Platform    string
	Mode        Mode
	Included    []IncludedPackage
	Missing     []PackageReference
	Conflicts   []Conflict
	// Failed lists packages that resolved but fetched nothing usable for the mode.
	Failed   []string
	CacheHit bool
}

// BuildOutput is the archive returned to the caller along with its manifest.
type BuildOutput struct {
	Data     []byte
	Filename string
	Manifest BuildManifest
}
