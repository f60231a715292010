package hbs

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// collapse matches whitespace between adjacent markup tags in literal text.
var collapse = regexp.MustCompile(`>\s+<`)

// Compile translates template source into a [Program] in a single forward
// pass. It stops at the first malformed construct and returns no partial
// program.
//
// Compile keeps no state between calls and is safe for concurrent use.
func Compile(ctx context.Context, src string, opts ...Option) (*Program, error) {
	s := &state{
		ctx:  ctx,
		opts: makeOptions(opts...),
		src:  src,
	}

	s.opts.logger.TraceContext(ctx, "compile start",
		slog.Int("source_bytes", len(src)),
		slog.String("root", s.opts.root),
	)

	pos := 0

	for {
		expr, ok, err := scan(src, pos)
		if err != nil {
			return nil, err
		}

		if !ok {
			break
		}

		s.tag = expr.tag
		s.text(expr.prefix.of(src))

		content := expr.content.of(src)

		switch expr.kind {
		case KindRaw:
			s.call(content, OpRaw)
		case KindEscaped:
			s.call(content, OpEscape)
		case KindOpen:
			err = s.open(content)
		case KindClose:
			err = s.close(strings.TrimSpace(content))
		case KindLiteral:
			s.text(content)
		case KindComment:
		}

		if err != nil {
			return nil, err
		}

		pos = expr.next
	}

	s.text(src[pos:])

	if top := s.top(); top != nil {
		s.tag = top.tag

		return nil, s.fail(ErrMismatchedBlock,
			"unclosed "+top.Opened.String()+" block")
	}

	s.opts.logger.TraceContext(ctx, "compile done",
		slog.Int("instructions", s.prog.Len()),
	)

	return &s.prog, nil
}

// MustCompile is like [Compile] but panics if the source cannot be compiled.
func MustCompile(src string, opts ...Option) *Program {
	prog, err := Compile(context.Background(), src, opts...)
	if err != nil {
		panic(err)
	}

	return prog
}

// text emits a literal instruction for a non-empty run of template text.
func (s *state) text(content string) {
	if content == "" {
		return
	}

	if s.opts.collapse {
		content = collapse.ReplaceAllString(content, "><")
	}

	s.emit(Instruction{Op: OpText, Expr: content})
}
