//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the stuart module embedded at build
// time. It is printed by the version subcommand and recorded in build
// metadata.
//
//go:embed VERSION
var version string

// Version returns the embedded version string without surrounding whitespace.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command and module identifier used across the
	// project. It appears in help text, default config paths, and the plugin
	// search path environment variable.
	Name = "stuart"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Static site generator with a section-based template language"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}

// EnvPrefix returns the prefix used for environment variable identifiers,
// e.g. STUART_PLUGIN_PATH.
func EnvPrefix() string { return strings.ToUpper(Prefix()) + "_" }
