// Package cmd implements the hbs subcommands: compile, gen, paths, init,
// and repl.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file written by init.
	ConfigIdentifier = "config"

	// GoPackageIdentifier is the kong variable identifier containing the
	// default package name for generated files, taken from $GOPACKAGE when
	// run by go generate.
	GoPackageIdentifier = "gopackage"
)
