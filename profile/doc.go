// Package profile provides optional runtime profiling for the hbs command.
//
// This package integrates [github.com/pkg/profile] behind the "pprof" build
// tag. Without the tag every operation is a no-op:
//
//	go build -tags pprof ./...
//	hbs --pprof-mode cpu --pprof-dir ./profiles compile go page.hbs
//
// The supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread, and trace. Use [Modes] to list them programmatically; it
// returns nil in builds without the tag.
//
// Profile files are written to the configured directory with names matching
// the mode (e.g. cpu.pprof) and can be inspected with:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
