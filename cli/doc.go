// Package cli contains the command line interface for hbs.
//
// # Commands
//
//	hbs compile [text|json|yaml|go] [SOURCE...]  print instruction streams
//	hbs gen --template page.hbs --type '*Page'    generate a render method
//	hbs gen --manifest hbs.yaml                    generate every listed target
//	hbs paths [SOURCE...]                          print required context paths
//	hbs init [--force]                             write the configuration file
//	hbs repl                                       compile templates interactively
//
// A SOURCE of "-" (the default) reads standard input. Within a go:generate
// directive, gen takes its default package from $GOPACKAGE:
//
//	//go:generate hbs gen -t page.hbs --type *Page
//
// # Configuration
//
// Flag defaults are read from a flat YAML mapping of flag names to values.
// Names may use hyphens or underscores. Two files are consulted: the nearest
// .hbs.yaml in the working directory or one of its parents, and config.yaml
// in the user configuration directory (for example ~/.config/hbs). Values
// given on the command line always win. init writes the current values to
// the user file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize output for terminals
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o hbs .
//
//   - --pprof-mode: Enable profiling (block, clock, cpu, goroutine, mem,
//     mutex, thread, trace, ...)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/hbs/pprof)
package cli
