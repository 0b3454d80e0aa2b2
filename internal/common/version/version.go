package version

import (
	_ "embed"
	"strings"
)

// Version information embedded from the VERSION file at compile time.
// This package provides centralized version management for the tool suite.

//go:embed VERSION
var versionRaw string

// Version is the current version of the tool suite, trimmed of whitespace.
var Version = strings.TrimSpace(versionRaw)

// Get returns the current version string.
// This is a convenience function for accessing the Version variable.
func Get() string {
	return Version
}
