// Package build holds build-time information.
package build

import "runtime"

// Values overwritten by linker flags, e.g.
// -ldflags "-X go.trai.ch/packsmith/internal/build.Version=v1.2.0".
var (
	// Version is the application version.
	Version = "dev"
	// Commit is the VCS revision the binary was built from.
	Commit = "unknown"
)

// Info describes the binary on one line.
func Info() string {
	return Version + " (" + Commit + ", " + runtime.Version() + ")"
}
