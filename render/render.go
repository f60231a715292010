// Package render is the runtime used by code generated from hbs templates.
package render

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// HTML returns s with '&', '<', and '>' replaced by entities. All other
// characters pass through unchanged.
func HTML(s string) string {
	return htmlReplacer.Replace(s)
}

// Writer writes rendered output to an underlying io.Writer. After the first
// write error all further writes are skipped and Err reports that error.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered by f, if any.
func (f *Writer) Err() error { return f.err }

// Text writes s verbatim.
func (f *Writer) Text(s string) {
	if f.err != nil {
		return
	}

	_, f.err = io.WriteString(f.w, s)
}

// Escape writes the HTML-escaped text form of v.
func (f *Writer) Escape(v any) {
	if f.err != nil {
		return
	}

	_, f.err = htmlReplacer.WriteString(f.w, format(v))
}

// Raw writes the text form of v without escaping.
func (f *Writer) Raw(v any) {
	f.Text(format(v))
}

// format returns the text form of v. Pointers are followed unless the
// pointer itself implements fmt.Stringer or error. nil, including a typed
// nil pointer, formats as "".
func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ""
	}

	switch x := v.(type) {
	case fmt.Stringer, error:
		return fmt.Sprint(x)
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return ""
		}

		rv = rv.Elem()
	}

	return fmt.Sprint(rv.Interface())
}
