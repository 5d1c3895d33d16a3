// Package cmd implements the stuart subcommands: build, check, functions,
// fmt, and version.
//
// Every command's Run method takes the invocation context and the writer
// bound for standard output, so commands can be run directly in tests.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the user configuration file.
	ConfigIdentifier = "config"
)
