package log

import (
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Level is the severity of a record. It extends [slog.Level] with
// [LevelTrace] below Debug.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is used when a level string cannot be parsed.
const DefaultLevel = LevelInfo

type levelName struct {
	level Level
	name  string
}

var levelNames = []levelName{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// String returns the lowercase name of l. Levels between the named ones are
// written as an offset from the nearest lower name, e.g. "info+2".
func (l Level) String() string {
	base := levelNames[0]

	for _, n := range levelNames {
		if l == n.level {
			return n.name
		}

		if l > n.level {
			base = n
		}
	}

	d := int(l - base.level)
	if d > 0 {
		return base.name + "+" + strconv.Itoa(d)
	}

	return base.name + strconv.Itoa(d)
}

// Levels yields the name of each defined level, lowest first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel reads a level name, case-insensitively, optionally followed by a
// signed offset such as "debug+2". Unknown names yield [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))

	name, offset := s, 0

	if i := strings.IndexAny(s, "+-"); i > 0 {
		n, err := strconv.Atoi(s[i:])
		if err != nil {
			return DefaultLevel
		}

		name, offset = s[:i], n
	}

	i := slices.IndexFunc(levelNames, func(n levelName) bool { return n.name == name })
	if i < 0 {
		return DefaultLevel
	}

	return levelNames[i].level + Level(offset)
}

// Format selects the record encoding.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is used when a format string cannot be parsed.
const DefaultFormat = FormatJSON

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	}

	return "format(" + strconv.Itoa(int(f)) + ")"
}

// Formats yields the name of each supported format.
func Formats() iter.Seq[string] {
	return slices.Values([]string{FormatJSON.String(), FormatText.String()})
}

// ParseFormat reads a format name. Unknown names yield [DefaultFormat].
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), FormatText.String()) {
		return FormatText
	}

	return DefaultFormat
}
