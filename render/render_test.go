package render

import (
	"bytes"
	"errors"
	"testing"
)

type stringer struct{ s string }

func (s *stringer) String() string { return "<" + s.s + ">" }

type failure struct{}

func (*failure) Error() string { return "failed" }

type errWriter struct{ n int }

func (w *errWriter) Write(p []byte) (int, error) {
	w.n++

	return 0, errors.New("closed")
}

func TestHTML(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"plain", "plain"},
		{"a < b && c > d", "a &lt; b &amp;&amp; c &gt; d"},
		{`"quoted" 'single'`, `"quoted" 'single'`},
		{"&amp;", "&amp;amp;"},
	}

	for _, tt := range tests {
		if got := HTML(tt.in); got != tt.want {
			t.Errorf("HTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriter(t *testing.T) {
	n := 42
	var (
		nilPtr      *int
		nilStringer *stringer
		nilError    *failure
	)

	tests := []struct {
		name  string
		write func(f *Writer)
		want  string
	}{
		{"text", func(f *Writer) { f.Text("<b>") }, "<b>"},
		{"escape string", func(f *Writer) { f.Escape("<b>") }, "&lt;b&gt;"},
		{"raw string", func(f *Writer) { f.Raw("<b>") }, "<b>"},
		{"escape int", func(f *Writer) { f.Escape(7) }, "7"},
		{"pointer", func(f *Writer) { f.Escape(&n) }, "42"},
		{"nil", func(f *Writer) { f.Escape(nil) }, ""},
		{"nil pointer", func(f *Writer) { f.Raw(nilPtr) }, ""},
		{"stringer", func(f *Writer) { f.Escape(&stringer{"x"}) }, "&lt;x&gt;"},
		{"error", func(f *Writer) { f.Raw(errors.New("a&b")) }, "a&b"},
		{"nil stringer", func(f *Writer) { f.Escape(nilStringer) }, ""},
		{"nil error", func(f *Writer) { f.Raw(nilError) }, ""},
		{"sequence", func(f *Writer) {
			f.Text("<p>")
			f.Escape("1 & 2")
			f.Text("</p>")
		}, "<p>1 &amp; 2</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			f := NewWriter(&buf)
			tt.write(f)

			if err := f.Err(); err != nil {
				t.Fatalf("Err() = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_StopsAfterError(t *testing.T) {
	w := &errWriter{}
	f := NewWriter(w)

	f.Text("a")
	f.Escape("b")
	f.Raw("c")

	if f.Err() == nil {
		t.Fatal("Err() = nil after failed write")
	}

	if w.n != 1 {
		t.Errorf("underlying writer called %d times, want 1", w.n)
	}
}
