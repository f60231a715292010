//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the hbs module embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and default config paths.
	Name = "hbs"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Handlebars template compiler for Go"
)
