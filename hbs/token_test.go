package hbs

import (
	"errors"
	"testing"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		kind    Kind
		prefix  string
		content string
		tag     string
		rest    string
	}{
		{"escaped", "a{{b}}c", KindEscaped, "a", "b", "{{b}}", "c"},
		{"raw", "a{{{b}}}c", KindRaw, "a", "b", "{{{b}}}", "c"},
		{"open", "{{#if x}}", KindOpen, "", "if x", "{{#if x}}", ""},
		{"close", "{{/if}}z", KindClose, "", "if", "{{/if}}", "z"},
		{"comment", "{{! hi }}", KindComment, "", " hi ", "{{! hi }}", ""},
		{
			"block comment", "{{!-- a }} b --}}.", KindComment,
			"", " a }} b ", "{{!-- a }} b --}}", ".",
		},
		{"literal", `x\{{y}}z`, KindLiteral, "x", "y", `\{{y}}`, "z"},
		{"literal keeps braces", `\{{{{}}`, KindLiteral, "", "{{", `\{{{{}}`, ""},
		{"trim left", "a  {{~b}}", KindEscaped, "a", "b", "{{~b}}", ""},
		{"trim right", "{{b~}} \n c", KindEscaped, "", "b", "{{b~}}", "c"},
		{"trim raw", " {{~{b~}}} ", KindRaw, "", "b", "{{~{b~}}}", ""},
		{"trim open", "\t{{~#each xs~}}\n", KindOpen, "", "each xs", "{{~#each xs~}}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, ok, err := scan(tt.src, 0)
			if err != nil || !ok {
				t.Fatalf("scan(%q) = %v, %v", tt.src, ok, err)
			}

			if expr.kind != tt.kind {
				t.Errorf("kind = %v, want %v", expr.kind, tt.kind)
			}

			if got := expr.prefix.of(tt.src); got != tt.prefix {
				t.Errorf("prefix = %q, want %q", got, tt.prefix)
			}

			if got := expr.content.of(tt.src); got != tt.content {
				t.Errorf("content = %q, want %q", got, tt.content)
			}

			if got := expr.tag.of(tt.src); got != tt.tag {
				t.Errorf("tag = %q, want %q", got, tt.tag)
			}

			if got := tt.src[expr.next:]; got != tt.rest {
				t.Errorf("rest = %q, want %q", got, tt.rest)
			}
		})
	}
}

func TestScan_NoExpression(t *testing.T) {
	for _, src := range []string{"", "plain", "one { brace", "}} closer"} {
		if _, ok, err := scan(src, 0); ok || err != nil {
			t.Errorf("scan(%q) = %v, %v; want no expression", src, ok, err)
		}
	}
}

func TestScan_Unterminated(t *testing.T) {
	tests := []struct {
		src string
		tag string
	}{
		{"{{", "{{"},
		{"x {{~", "{{~"},
		{"{{name\nnext", "{{name"},
		{"{{{name}}", "{{{name}}"},
		{`a \{{b`, `\{{b`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, _, err := scan(tt.src, 0)
			if !errors.Is(err, ErrUnterminatedExpression) {
				t.Fatalf("scan(%q) error = %v, want %v",
					tt.src, err, ErrUnterminatedExpression)
			}

			var se *SyntaxError
			if errors.As(err, &se) && se.Tag != tt.tag {
				t.Errorf("tag = %q, want %q", se.Tag, tt.tag)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	if got := KindRaw.String(); got != "raw" {
		t.Errorf("KindRaw.String() = %q", got)
	}

	if got := Kind(99).String(); got != "unknown" {
		t.Errorf("Kind(99).String() = %q", got)
	}
}
