package hbs

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrUnterminatedExpression = NewError("unterminated expression")
	ErrInvalidBlockSyntax     = NewError("invalid block syntax")
	ErrMismatchedBlock        = NewError("mismatched block")
	ErrReadInput              = NewError("failed to read input")
	ErrReadTemplate           = NewError("unable to read template")
	ErrGenerate               = NewError("code generation failed")
	ErrExprParse              = NewError("expression parse failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message, so that
// values derived with [Error.Wrap] and [Error.With] still match their
// sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// SyntaxError locates a malformed construct in template source.
type SyntaxError struct {
	Tag    string // Text of the offending tag, delimiters included
	Source string // The complete template source
	Hint   string // Optional suggestion, e.g. a helper name
	Offset int    // Byte offset of the tag in Source
	Line   int    // 1-based line of Offset
	Column int    // 1-based column (in bytes) of Offset
}

func newSyntaxError(src string, start, end int) *SyntaxError {
	start = min(max(start, 0), len(src))
	end = min(max(end, start), len(src))

	line := strings.Count(src[:start], "\n") + 1
	column := start - strings.LastIndexByte(src[:start], '\n')

	return &SyntaxError{
		Tag:    src[start:end],
		Source: src,
		Offset: start,
		Line:   line,
		Column: column,
	}
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var sb strings.Builder

	sb.WriteString(strconv.Quote(e.Tag))
	sb.WriteString(" at line ")
	sb.WriteString(strconv.Itoa(e.Line))
	sb.WriteString(", column ")
	sb.WriteString(strconv.Itoa(e.Column))

	if e.Hint != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Hint)
		sb.WriteString(")")
	}

	return sb.String()
}

// Snippet returns the source line containing the error followed by a line
// with a caret under the offending column.
func (e *SyntaxError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	num := strconv.Itoa(e.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(lines[e.Line-1])
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if e.Column > 0 {
		padding += strings.Repeat(" ", e.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("tag", e.Tag),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
	}

	if e.Hint != "" {
		attrs = append(attrs, slog.String("hint", e.Hint))
	}

	return slog.GroupValue(attrs...)
}

// syntaxError wraps a SyntaxError for the tag at src[start:end] in the
// given sentinel, attaching the location as log attributes.
func syntaxError(sentinel *Error, src string, start, end int, hint string) error {
	se := newSyntaxError(src, start, end)
	se.Hint = hint

	return sentinel.Wrap(se).With(
		slog.String("tag", se.Tag),
		slog.Int("line", se.Line),
		slog.Int("column", se.Column),
	)
}
