// Package log is a small leveled logger over [log/slog].
//
// A [Logger] is an immutable value built by [Make] from an output writer and
// functional options ([WithLevel], [WithFormat], [WithTimeLayout],
// [WithCaller], [WithPretty]). Reconfiguring with [Logger.Wrap] or adding
// attributes with [Logger.With] returns a new value, so loggers can be shared
// freely between goroutines. The zero Logger discards everything, which lets
// libraries accept one as an optional dependency:
//
//	prog, err := hbs.Compile(ctx, src, hbs.WithLogger(log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace))))
//
// Levels extend slog with [LevelTrace], which the compiler uses to report
// each emitted instruction and scope change.
//
// Pretty output styles records with lipgloss and falls back to plain text
// when the writer is not a terminal. Pretty JSON is indented and still valid
// JSON.
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// shared default logger adjusted with [Config]. Functions without a context
// parameter use [DefaultContextProvider].
package log
