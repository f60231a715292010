package hbs

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Op identifies the kind of a render instruction.
type Op int

const (
	OpText   Op = iota // text
	OpEscape           // escape
	OpRaw              // raw
	OpIf               // if
	OpIfNot            // ifnot
	OpSome             // some
	OpNone             // none
	OpRange            // range
	OpElse             // else
	OpEnd              // end
)

var opNames = [...]string{
	OpText:   "text",
	OpEscape: "escape",
	OpRaw:    "raw",
	OpIf:     "if",
	OpIfNot:  "ifnot",
	OpSome:   "some",
	OpNone:   "none",
	OpRange:  "range",
	OpElse:   "else",
	OpEnd:    "end",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return "Op(" + strconv.Itoa(int(o)) + ")"
	}

	return opNames[o]
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	if o < 0 || int(o) >= len(opNames) {
		return nil, fmt.Errorf("invalid op %d", int(o))
	}

	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Op) UnmarshalText(text []byte) error {
	i := slices.Index(opNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("invalid op %q", text)
	}

	*o = Op(i)

	return nil
}

// Instruction is a single step of a compiled template.
//
// Expr holds the literal text for OpText and a resolved expression for the
// value and control-flow ops. Local is the name bound by OpSome and OpRange,
// if any.
type Instruction struct {
	Op    Op     `json:"op"              yaml:"op"`
	Expr  string `json:"expr,omitempty"  yaml:"expr,omitempty"`
	Local string `json:"local,omitempty" yaml:"local,omitempty"`
}

// String returns a compact, single-line representation of i.
func (i Instruction) String() string {
	switch i.Op {
	case OpText:
		return i.Op.String() + " " + strconv.Quote(i.Expr)
	case OpElse, OpEnd:
		return i.Op.String()
	}

	if i.Local != "" {
		return i.Op.String() + " " + i.Expr + " as " + i.Local
	}

	return i.Op.String() + " " + i.Expr
}

// Program is the flat instruction stream produced by [Compile].
// Nesting is expressed by the control-flow instructions themselves.
type Program struct {
	Instructions []Instruction `json:"instructions" yaml:"instructions"`
}

// Len returns the number of instructions in p.
func (p *Program) Len() int { return len(p.Instructions) }

// Clone returns a deep copy of p.
func (p *Program) Clone() *Program {
	return &Program{Instructions: slices.Clone(p.Instructions)}
}

// String lists the instructions of p, one per line, indented by nesting.
func (p *Program) String() string {
	var sb strings.Builder

	depth := 0

	for _, in := range p.Instructions {
		if in.Op == OpEnd || in.Op == OpElse {
			depth = max(depth-1, 0)
		}

		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(in.String())
		sb.WriteByte('\n')

		switch in.Op {
		case OpIf, OpIfNot, OpSome, OpNone, OpRange, OpElse:
			depth++
		}
	}

	return sb.String()
}

// DefaultSink is the identifier of the render.Writer used in generated code.
const DefaultSink = "f"

// WriteGo writes the Go statements implementing p to w. Value and literal
// instructions are written as method calls on the render.Writer named sink.
func (p *Program) WriteGo(w io.Writer, sink string) error {
	if sink == "" {
		sink = DefaultSink
	}

	for _, in := range p.Instructions {
		if _, err := io.WriteString(w, in.goStatement(sink)+"\n"); err != nil {
			return err
		}
	}

	return nil
}

// Go returns the Go statements implementing p as a string.
func (p *Program) Go(sink string) string {
	var sb strings.Builder

	_ = p.WriteGo(&sb, sink)

	return sb.String()
}

func (i Instruction) goStatement(sink string) string {
	switch i.Op {
	case OpText:
		return sink + ".Text(" + strconv.Quote(i.Expr) + ")"
	case OpEscape:
		return sink + ".Escape(" + i.Expr + ")"
	case OpRaw:
		return sink + ".Raw(" + i.Expr + ")"
	case OpIf:
		return "if " + i.Expr + " {"
	case OpIfNot:
		return "if !" + i.Expr + " {"
	case OpSome:
		if i.Local != "" {
			return "if " + i.Local + " := " + i.Expr + "; " + i.Local + " != nil {"
		}

		return "if " + i.Expr + " != nil {"
	case OpNone:
		return "if " + i.Expr + " == nil {"
	case OpRange:
		if i.Local != "" {
			return "for _, " + i.Local + " := range " + i.Expr + " {"
		}

		return "for range " + i.Expr + " {"
	case OpElse:
		return "} else {"
	case OpEnd:
		return "}"
	default:
		return "// " + i.String()
	}
}
