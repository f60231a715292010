package hbs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func text(s string) Instruction   { return Instruction{Op: OpText, Expr: s} }
func escape(s string) Instruction { return Instruction{Op: OpEscape, Expr: s} }
func raw(s string) Instruction    { return Instruction{Op: OpRaw, Expr: s} }

var end = Instruction{Op: OpEnd}

func TestCompile_Instructions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		want []Instruction
	}{
		{
			name: "literal only",
			src:  "plain text, no tags",
			want: []Instruction{text("plain text, no tags")},
		},
		{
			name: "raw output",
			src:  "Hello {{{name}}}!",
			want: []Instruction{text("Hello "), raw("name"), text("!")},
		},
		{
			name: "escaped output",
			src:  "Hello {{ name }}!",
			want: []Instruction{text("Hello "), escape("name"), text("!")},
		},
		{
			name: "call with arguments",
			src:  `{{format date "short"}}`,
			want: []Instruction{escape(`format(date,"short")`)},
		},
		{
			name: "if",
			src:  "{{#if some}}Hello{{/if}}",
			want: []Instruction{{Op: OpIf, Expr: "some"}, text("Hello"), end},
		},
		{
			name: "if else",
			src:  "{{#if some}}Hello{{else}}World{{/if}}",
			want: []Instruction{
				{Op: OpIf, Expr: "some"}, text("Hello"),
				{Op: OpElse}, text("World"), end,
			},
		},
		{
			name: "unless",
			src:  "{{#unless some}}Hello{{/unless}}",
			want: []Instruction{{Op: OpIfNot, Expr: "some"}, text("Hello"), end},
		},
		{
			name: "unless some var",
			src:  "{{#unless some user}}anon{{else}}known{{/unless}}",
			want: []Instruction{
				{Op: OpNone, Expr: "user"}, text("anon"),
				{Op: OpElse}, text("known"), end,
			},
		},
		{
			name: "if some var",
			src:  "{{#if some user}}x{{/if}}",
			want: []Instruction{{Op: OpSome, Expr: "user"}, text("x"), end},
		},
		{
			name: "each",
			src:  "{{#each some as item}}Hello {{item}}{{/each}}",
			want: []Instruction{
				{Op: OpRange, Expr: "some", Local: "item"},
				text("Hello "), escape("item"), end,
			},
		},
		{
			name: "each default binder",
			src:  "{{#each items}}<li>{{this}}</li>{{/each}}",
			want: []Instruction{
				{Op: OpRange, Expr: "items", Local: "this"},
				text("<li>"), escape("this"), text("</li>"), end,
			},
		},
		{
			name: "each unused binder",
			src:  "{{#each items as item}}*{{/each}}",
			want: []Instruction{{Op: OpRange, Expr: "items"}, text("*"), end},
		},
		{
			name: "if some unused binder",
			src:  "{{#if some user as u}}*{{else}}-{{/if}}",
			want: []Instruction{
				{Op: OpSome, Expr: "user"}, text("*"),
				{Op: OpElse}, text("-"), end,
			},
		},
		{
			name: "if some binder used in else",
			src:  "{{#if some user as u}}*{{else}}{{u}}{{/if}}",
			want: []Instruction{
				{Op: OpSome, Expr: "user", Local: "u"}, text("*"),
				{Op: OpElse}, escape("u"), end,
			},
		},
		{
			name: "with",
			src:  "{{#with some}}Hello {{name}}{{/with}}",
			want: []Instruction{text("Hello "), escape("some.name")},
		},
		{
			name: "nesting",
			src:  "{{#if some some as some}}{{#each some as item}}Hello {{item}}{{/each}}{{/if}}",
			want: []Instruction{
				{Op: OpSome, Expr: "some", Local: "some"},
				{Op: OpRange, Expr: "some", Local: "item"},
				text("Hello "), escape("item"), end, end,
			},
		},
		{
			name: "scoping",
			src:  "{{#with some}}{{#with other}}Hello {{name}} {{../company}} {{/with}}{{/with}}",
			want: []Instruction{
				text("Hello "), escape("other.name"), text(" "),
				escape("some.company"), text(" "),
			},
		},
		{
			name: "binder visible in nested blocks",
			src:  "{{#with page}}{{#each rows as row}}{{#if row.on}}{{row.name}}{{/if}}{{/each}}{{/with}}",
			want: []Instruction{
				{Op: OpRange, Expr: "page.rows", Local: "row"},
				{Op: OpIf, Expr: "row.on"}, escape("row.name"), end, end,
			},
		},
		{
			name: "comments",
			src:  "Note: {{! This is a comment }} and {{!-- {{so is this}} --}}\\{{{{}}",
			want: []Instruction{text("Note: "), text(" and "), text("{{")},
		},
		{
			name: "trimming",
			src:  "  {{~#if some ~}}   Hello{{~/if~}}",
			want: []Instruction{{Op: OpIf, Expr: "some"}, text("Hello"), end},
		},
		{
			name: "trimming keeps far whitespace",
			src:  "a \n {{~name}} b",
			want: []Instruction{text("a"), escape("name"), text(" b")},
		},
		{
			name: "collapse",
			src:  "<ul>\n  <li>{{x}}</li>\n</ul>",
			want: []Instruction{text("<ul><li>"), escape("x"), text("</li></ul>")},
		},
		{
			name: "no collapse",
			src:  "<a> <b>",
			opts: []Option{WithCollapse(false)},
			want: []Instruction{text("<a> <b>")},
		},
		{
			name: "root qualifier",
			src:  "{{title}}{{#each items as it}}{{it.name}}{{../title}}{{/each}}{{#with author}}{{name}}{{/with}}",
			opts: []Option{WithRoot("p")},
			want: []Instruction{
				escape("p.title"),
				{Op: OpRange, Expr: "p.items", Local: "it"},
				escape("it.name"), escape("p.title"), end,
				escape("p.author.name"),
			},
		},
		{
			name: "this in with",
			src:  "{{#with user}}{{this}} {{this.name}}{{/with}}",
			want: []Instruction{escape("user"), text(" "), escape("user.name")},
		},
		{
			name: "with on each binder keeps it",
			src:  "{{#each items as item}}{{#with item}}{{name}}{{/with}}{{/each}}",
			opts: []Option{WithRoot("p")},
			want: []Instruction{
				{Op: OpRange, Expr: "p.items", Local: "item"},
				escape("item.name"), end,
			},
		},
		{
			name: "with on default each binder keeps it",
			src:  "{{#each xs}}{{#with this}}{{name}}{{/with}}{{/each}}",
			opts: []Option{WithRoot("p")},
			want: []Instruction{
				{Op: OpRange, Expr: "p.xs", Local: "this"},
				escape("this.name"), end,
			},
		},
		{
			name: "with on if some binder keeps it",
			src:  "{{#if some user as u}}{{#with u}}{{name}}{{/with}}{{/if}}",
			opts: []Option{WithRoot("p")},
			want: []Instruction{
				{Op: OpSome, Expr: "p.user", Local: "u"},
				escape("u.name"), end,
			},
		},
		{
			name: "empty expression",
			src:  "a{{ }}b",
			want: []Instruction{text("a"), text("b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(context.Background(), tt.src, tt.opts...)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.src, err)
			}

			if diff := cmp.Diff(tt.want, prog.Instructions); diff != "" {
				t.Errorf("Compile(%q) mismatch (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *Error
		hint string
	}{
		{"close with nothing open", "{{/if}}", ErrMismatchedBlock, "no open block"},
		{"dangling if", "{{#if some}}", ErrMismatchedBlock, "unclosed if"},
		{"wrong close name", "{{#each xs}}{{/if}}", ErrMismatchedBlock, "expected /each"},
		{"else closed by other", "{{#if a}}x{{else}}y{{/unless}}", ErrMismatchedBlock, "expected /if"},
		{"with closed by if", "{{#with a}}{{/if}}", ErrMismatchedBlock, "expected /with"},
		{"each extra token", "{{#each some extra}}{{/each}}", ErrInvalidBlockSyntax, "each VAR"},
		{"each as without local", "{{#each some as}}{{/each}}", ErrInvalidBlockSyntax, "each VAR"},
		{"each without var", "{{#each}}{{/each}}", ErrInvalidBlockSyntax, "each VAR"},
		{"if extra token", "{{#if a b}}{{/if}}", ErrInvalidBlockSyntax, "if VAR"},
		{"if some not as", "{{#if some a b c}}{{/if}}", ErrInvalidBlockSyntax, "if VAR"},
		{"if empty", "{{#if}}{{/if}}", ErrInvalidBlockSyntax, "if VAR"},
		{"unless extra token", "{{#unless some a b}}{{/unless}}", ErrInvalidBlockSyntax, "unless VAR"},
		{"with extra token", "{{#with a b}}{{/with}}", ErrInvalidBlockSyntax, "with VAR"},
		{"unknown helper", "{{#eac xs}}{{/each}}", ErrInvalidBlockSyntax, "did you mean each?"},
		{"empty header", "{{#}}", ErrInvalidBlockSyntax, "missing helper"},
		{"unterminated", "Hello {{name", ErrUnterminatedExpression, ""},
		{"unterminated raw", "{{{name}}", ErrUnterminatedExpression, ""},
		{"unterminated comment", "{{!-- x }}", ErrUnterminatedExpression, ""},
		{"opener at end", "abc{{", ErrUnterminatedExpression, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(context.Background(), tt.src)
			if err == nil {
				t.Fatalf("Compile(%q) = %v, want error", tt.src, prog)
			}

			if prog != nil {
				t.Errorf("Compile(%q) returned partial program", tt.src)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("Compile(%q) error = %v, want %v", tt.src, err, tt.want)
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Compile(%q) error %v is not a *SyntaxError", tt.src, err)
			}

			if !strings.Contains(se.Hint, tt.hint) {
				t.Errorf("hint = %q, want substring %q", se.Hint, tt.hint)
			}
		})
	}
}

func TestCompile_ErrorLocation(t *testing.T) {
	src := "<p>\n  {{#if ok}}\n  <b>{{/each}}</b>\n</p>"

	_, err := Compile(context.Background(), src)

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}

	if se.Tag != "{{/each}}" || se.Line != 3 || se.Column != 6 {
		t.Errorf("got tag %q at %d:%d, want \"{{/each}}\" at 3:6",
			se.Tag, se.Line, se.Column)
	}

	want := "  3 |   <b>{{/each}}</b>\n" +
		"           ^\n"
	if got := se.Snippet(); got != want {
		t.Errorf("Snippet() = %q, want %q", got, want)
	}
}

func TestCompile_UnclosedReportsOpeningTag(t *testing.T) {
	_, err := Compile(context.Background(), "a\n{{#each xs}}{{#if x}}{{/if}}")

	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}

	if se.Tag != "{{#each xs}}" || se.Line != 2 {
		t.Errorf("got tag %q on line %d", se.Tag, se.Line)
	}
}

func TestProgram_Go(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{
			"Hello {{{name}}}!",
			"f.Text(\"Hello \")\nf.Raw(name)\nf.Text(\"!\")\n",
		},
		{
			"{{#if some}}Hello{{else}}World{{/if}}",
			"if some {\nf.Text(\"Hello\")\n} else {\nf.Text(\"World\")\n}\n",
		},
		{
			"{{#unless some}}\"q\"\n{{/unless}}",
			"if !some {\nf.Text(\"\\\"q\\\"\\n\")\n}\n",
		},
		{
			"{{#if some some as some}}{{#each some as item}}Hello {{item}}{{/each}}{{/if}}",
			"if some := some; some != nil {\nfor _, item := range some {\n" +
				"f.Text(\"Hello \")\nf.Escape(item)\n}\n}\n",
		},
		{
			"{{#unless some x}}{{#each xs}}-{{/each}}{{/unless}}",
			"if x == nil {\nfor range xs {\nf.Text(\"-\")\n}\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := MustCompile(tt.src).Go("f")
			if got != tt.want {
				t.Errorf("Go() mismatch (-want +got):\n%s", cmp.Diff(tt.want, got))
			}
		})
	}
}

func TestProgram_String(t *testing.T) {
	prog := MustCompile("{{#if a}}x{{else}}{{#each b as c}}{{c}}{{/each}}{{/if}}")

	want := "if a\n" +
		"  text \"x\"\n" +
		"else\n" +
		"  range b as c\n" +
		"    escape c\n" +
		"  end\n" +
		"end\n"

	if got := prog.String(); got != want {
		t.Errorf("String() mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

func TestOp_TextRoundTrip(t *testing.T) {
	for op := OpText; op <= OpEnd; op++ {
		text, err := op.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", op, err)
		}

		var got Op
		if err := got.UnmarshalText(text); err != nil || got != op {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", text, got, err, op)
		}
	}

	var op Op
	if err := op.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("UnmarshalText(bogus) succeeded")
	}
}

func BenchmarkCompile(b *testing.B) {
	src := strings.Repeat(
		"<div>{{#with page}}{{#each rows as row}}{{#if row.on}}{{row.name}}"+
			"{{else}}{{{row.html}}}{{/if}}{{/each}}{{/with}}</div>\n", 32)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Compile(context.Background(), src); err != nil {
			b.Fatal(err)
		}
	}
}
