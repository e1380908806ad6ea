// Package detector inspects the process environment to choose a log format.
package detector

import (
	"os"

	"go.trai.ch/packsmith/internal/core/domain"
	"golang.org/x/term"
)

// Environment describes where the process is running.
type Environment struct {
	// IsTTY reports whether stderr is attached to a terminal.
	IsTTY bool
	// IsCI reports whether a CI environment variable is set.
	IsCI bool
}

// DetectEnvironment inspects stderr and the CI variable.
func DetectEnvironment() Environment {
	ci := os.Getenv("CI")
	return Environment{
		IsTTY: term.IsTerminal(int(os.Stderr.Fd())),
		IsCI:  ci == "true" || ci == "1",
	}
}

// ResolveFormat applies the configured format to the environment.
// Auto selects pretty output on an interactive terminal and JSON elsewhere.
func ResolveFormat(env Environment, configured domain.LogFormat) domain.LogFormat {
	switch configured {
	case domain.LogFormatPretty, domain.LogFormatJSON:
		return configured
	}
	if env.IsTTY && !env.IsCI {
		return domain.LogFormatPretty
	}
	return domain.LogFormatJSON
}
