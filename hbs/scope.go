package hbs

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// OpenKind identifies the block helper that opened a scope.
type OpenKind int

const (
	OpenIf     OpenKind = iota // if
	OpenElse                   // else
	OpenUnless                 // unless
	OpenEach                   // each
	OpenWith                   // with
)

func (k OpenKind) String() string {
	switch k {
	case OpenIf:
		return "if"
	case OpenElse:
		return "else"
	case OpenUnless:
		return "unless"
	case OpenEach:
		return "each"
	case OpenWith:
		return "with"
	default:
		return "unknown"
	}
}

// helpers lists the block helper names accepted in a block header.
var helpers = []string{"if", "unless", "each", "with"}

// Helpers returns the names of the block helpers.
func Helpers() []string { return slices.Clone(helpers) }

const (
	keywordSome = "some"
	keywordAs   = "as"
	keywordElse = "else"
	keywordThis = "this"
	parentStep  = "../"
)

// Scope is one level of block nesting.
type Scope struct {
	Opened OpenKind
	This   string // context qualifier, empty if none
	Local  string // locally bound name, empty if none

	tag  span // the header tag, for diagnostics
	at   int  // index of the header instruction, -1 if none was emitted
	used bool // whether Local was referenced
}

// state is the per-call compilation state: the scope stack and the
// instruction buffer. It is never shared between calls.
type state struct {
	ctx   context.Context
	opts  options
	src   string
	tag   span
	stack []Scope
	prog  Program
}

func (s *state) emit(in Instruction) int {
	s.prog.Instructions = append(s.prog.Instructions, in)

	s.opts.logger.TraceContext(s.ctx, "emit",
		slog.String("op", in.Op.String()),
		slog.String("expr", in.Expr),
	)

	return len(s.prog.Instructions) - 1
}

func (s *state) top() *Scope {
	if len(s.stack) == 0 {
		return nil
	}

	return &s.stack[len(s.stack)-1]
}

// this returns the qualifier inherited by a newly pushed scope.
func (s *state) this() string {
	if top := s.top(); top != nil {
		return top.This
	}

	return s.opts.root
}

func (s *state) push(scope Scope) {
	scope.tag = s.tag
	s.stack = append(s.stack, scope)

	s.opts.logger.TraceContext(s.ctx, "push scope",
		slog.String("opened", scope.Opened.String()),
		slog.String("this", scope.This),
		slog.String("local", scope.Local),
		slog.Int("depth", len(s.stack)),
	)
}

func (s *state) pop() (Scope, bool) {
	top := s.top()
	if top == nil {
		return Scope{}, false
	}

	scope := *top
	s.stack = s.stack[:len(s.stack)-1]

	s.opts.logger.TraceContext(s.ctx, "pop scope",
		slog.String("opened", scope.Opened.String()),
		slog.Int("depth", len(s.stack)),
	)

	return scope, true
}

func (s *state) fail(sentinel *Error, hint string) error {
	return syntaxError(sentinel, s.src, s.tag.start, s.tag.end, hint)
}

// resolve rewrites a variable path for the current scope stack.
//
// Each leading "../" moves resolution one scope further out. Names bound
// by a visible block resolve unqualified; anything else is prefixed with
// the qualifier of the scope resolution settled on.
func (s *state) resolve(v string) string {
	level := len(s.stack) - 1

	for level >= 0 {
		rest, ok := strings.CutPrefix(v, parentStep)
		if !ok {
			break
		}

		v = rest
		level--
	}

	if level < 0 {
		for {
			rest, ok := strings.CutPrefix(v, parentStep)
			if !ok {
				break
			}

			v = rest
		}

		return qualify(s.opts.root, v)
	}

	head, _, _ := strings.Cut(v, ".")

	if s.use(head, level) {
		return v
	}

	return qualify(s.stack[level].This, v)
}

// use finds the nearest scope at or below level that binds name, marks its
// binder as referenced, and reports whether one was found.
func (s *state) use(name string, level int) bool {
	for i := level; i >= 0; i-- {
		if s.stack[i].Local != "" && s.stack[i].Local == name {
			s.stack[i].used = true

			return true
		}
	}

	return false
}

func qualify(this, v string) string {
	if this == "" {
		return v
	}

	if v == keywordThis {
		return this
	}

	if rest, ok := strings.CutPrefix(v, keywordThis+"."); ok {
		v = rest
	}

	return this + "." + v
}

// call compiles a value expression: a callee followed by positional
// arguments, or "else" inside an if/unless block.
func (s *state) call(content string, op Op) {
	tokens := strings.Fields(content)
	if len(tokens) == 0 {
		return
	}

	if tokens[0] == keywordElse {
		if top := s.top(); top != nil &&
			(top.Opened == OpenIf || top.Opened == OpenUnless) {
			s.push(Scope{Opened: OpenElse, This: top.This, at: -1})
			s.emit(Instruction{Op: OpElse})

			return
		}
	}

	expr := s.resolve(tokens[0])

	if len(tokens) > 1 {
		args := make([]string, len(tokens)-1)
		for i, token := range tokens[1:] {
			args[i] = s.resolve(token)
		}

		expr += "(" + strings.Join(args, ",") + ")"
	}

	s.emit(Instruction{Op: op, Expr: expr})
}

// open compiles a block header.
func (s *state) open(content string) error {
	tokens := strings.Fields(content)
	if len(tokens) == 0 {
		return s.fail(ErrInvalidBlockSyntax, "missing helper name")
	}

	args := tokens[1:]

	switch tokens[0] {
	case "if":
		return s.openIf(args)
	case "unless":
		return s.openUnless(args)
	case "each":
		return s.openEach(args)
	case "with":
		return s.openWith(args)
	default:
		return s.fail(ErrInvalidBlockSyntax, suggest(tokens[0]))
	}
}

func (s *state) openIf(args []string) error {
	var (
		in    Instruction
		local string
	)

	switch {
	case len(args) == 1:
		// "if some" alone tests a variable named some.
		in = Instruction{Op: OpIf, Expr: s.resolve(args[0])}

	case len(args) == 2 && args[0] == keywordSome:
		in = Instruction{Op: OpSome, Expr: s.resolve(args[1])}

	case len(args) == 4 && args[0] == keywordSome && args[2] == keywordAs:
		local = args[3]
		in = Instruction{Op: OpSome, Expr: s.resolve(args[1]), Local: local}

	default:
		return s.fail(ErrInvalidBlockSyntax,
			"expected: if VAR | if some VAR | if some VAR as LOCAL")
	}

	at := s.emit(in)
	s.push(Scope{Opened: OpenIf, This: s.this(), Local: local, at: at})

	return nil
}

func (s *state) openUnless(args []string) error {
	var in Instruction

	switch {
	case len(args) == 1:
		// "unless some" alone negates a variable named some.
		in = Instruction{Op: OpIfNot, Expr: s.resolve(args[0])}

	case len(args) == 2 && args[0] == keywordSome:
		in = Instruction{Op: OpNone, Expr: s.resolve(args[1])}

	default:
		return s.fail(ErrInvalidBlockSyntax,
			"expected: unless VAR | unless some VAR")
	}

	at := s.emit(in)
	s.push(Scope{Opened: OpenUnless, This: s.this(), at: at})

	return nil
}

func (s *state) openEach(args []string) error {
	local := keywordThis

	switch {
	case len(args) == 1:
	case len(args) == 3 && args[1] == keywordAs:
		local = args[2]
	default:
		return s.fail(ErrInvalidBlockSyntax,
			"expected: each VAR | each VAR as LOCAL")
	}

	at := s.emit(Instruction{Op: OpRange, Expr: s.resolve(args[0]), Local: local})
	s.push(Scope{Opened: OpenEach, This: s.this(), Local: local, at: at})

	return nil
}

func (s *state) openWith(args []string) error {
	if len(args) != 1 {
		return s.fail(ErrInvalidBlockSyntax, "expected: with VAR")
	}

	// The target replaces the enclosing qualifier rather than extending
	// it; only the root qualifier applies to names not bound locally.
	this := args[0]
	head, _, _ := strings.Cut(this, ".")

	if !s.use(head, len(s.stack)-1) {
		this = qualify(s.opts.root, this)
	}

	s.push(Scope{Opened: OpenWith, This: this, at: -1})

	return nil
}

// close compiles a block footer naming the helper being closed.
func (s *state) close(name string) error {
	scope, ok := s.pop()
	if !ok {
		return s.fail(ErrMismatchedBlock, "no open block")
	}

	opened := scope

	if scope.Opened == OpenElse {
		opened, ok = s.pop()
		if !ok || (opened.Opened != OpenIf && opened.Opened != OpenUnless) {
			return s.fail(ErrMismatchedBlock, "else outside if/unless")
		}
	}

	if name != opened.Opened.String() {
		return s.fail(ErrMismatchedBlock, "expected /"+opened.Opened.String())
	}

	switch opened.Opened {
	case OpenWith:
		return nil

	case OpenEach, OpenIf:
		// Go rejects unused variables.
		if !opened.used && opened.Local != "" && opened.at >= 0 {
			s.prog.Instructions[opened.at].Local = ""
		}
	}

	s.emit(Instruction{Op: OpEnd})

	return nil
}

// suggest returns a hint naming the helper closest to name, if any.
func suggest(name string) string {
	matches := fuzzy.Find(name, helpers)
	if len(matches) == 0 {
		return "unknown helper " + name
	}

	return "unknown helper " + name + ", did you mean " + matches[0].Str + "?"
}
