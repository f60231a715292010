package hbs

import (
	"bytes"
	"context"
	"fmt"
	"go/token"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"
)

// RenderImport is the import path of the runtime used by generated code.
const RenderImport = "github.com/ardnew/hbs/render"

// DefaultMethod is the name of generated render methods.
const DefaultMethod = "Render"

// Target describes the Go method generated for a template.
type Target struct {
	Package  string `json:"package"            yaml:"package"`
	Type     string `json:"type"               yaml:"type"`     // e.g. "*Page"
	Receiver string `json:"receiver,omitempty" yaml:"receiver,omitempty"`
	Method   string `json:"method,omitempty"   yaml:"method,omitempty"`
	Template string `json:"template"           yaml:"template"` // path of the template source
	Output   string `json:"output,omitempty"   yaml:"output,omitempty"`
}

// receiver returns the receiver name, defaulting to the lowercased first
// letter of the type name.
func (t Target) receiver() string {
	if t.Receiver != "" {
		return t.Receiver
	}

	name := strings.TrimLeft(t.Type, "*")
	if name == "" {
		return "t"
	}

	return strings.ToLower(name[:1])
}

func (t Target) method() string {
	if t.Method != "" {
		return t.Method
	}

	return DefaultMethod
}

// OutputPath returns the file written for t: Output if set, otherwise the
// template path with its extension replaced by "_hbs.go".
func (t Target) OutputPath() string {
	if t.Output != "" {
		return t.Output
	}

	ext := filepath.Ext(t.Template)

	return strings.TrimSuffix(t.Template, ext) + "_hbs.go"
}

// Options returns the compile options matching t.
func (t Target) Options() []Option {
	return []Option{WithRoot(t.receiver())}
}

func (t Target) validate() error {
	switch {
	case !token.IsIdentifier(t.Package):
		return ErrGenerate.With(slog.String("package", t.Package)).
			Wrap(fmt.Errorf("invalid package name %q", t.Package))
	case !token.IsIdentifier(strings.TrimPrefix(t.Type, "*")):
		return ErrGenerate.With(slog.String("type", t.Type)).
			Wrap(fmt.Errorf("invalid type name %q", t.Type))
	case !token.IsIdentifier(t.receiver()):
		return ErrGenerate.Wrap(fmt.Errorf("invalid receiver %q", t.receiver()))
	case !token.IsIdentifier(t.method()):
		return ErrGenerate.Wrap(fmt.Errorf("invalid method %q", t.method()))
	}

	return nil
}

// Generate writes a formatted Go source file declaring the render method
// described by t, with prog as its body.
func Generate(w io.Writer, prog *Program, t Target) error {
	if err := t.validate(); err != nil {
		return err
	}

	var buf bytes.Buffer

	source := filepath.ToSlash(t.Template)

	fmt.Fprintf(&buf, "// Code generated by hbs from %s; DO NOT EDIT.\n\n", source)
	fmt.Fprintf(&buf, "package %s\n\n", t.Package)
	fmt.Fprintf(&buf, "import (\n\t\"io\"\n\n\t%q\n)\n\n", RenderImport)
	fmt.Fprintf(&buf, "// %s writes the %s template to w.\n", t.method(), source)
	fmt.Fprintf(&buf, "func (%s %s) %s(w io.Writer) error {\n",
		t.receiver(), t.Type, t.method())
	fmt.Fprintf(&buf, "%s := render.NewWriter(w)\n", DefaultSink)

	if err := prog.WriteGo(&buf, DefaultSink); err != nil {
		return ErrGenerate.Wrap(err)
	}

	fmt.Fprintf(&buf, "return %s.Err()\n}\n", DefaultSink)

	out, err := imports.Process(t.OutputPath(), buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return ErrGenerate.
			With(slog.String("template", t.Template)).
			Wrap(err)
	}

	_, err = w.Write(out)

	return err
}

// GenerateFile compiles the template named by t and writes the generated
// Go source to t.OutputPath().
func GenerateFile(ctx context.Context, t Target, opts ...Option) error {
	file, err := os.Open(t.Template)
	if err != nil {
		return readTemplateError(t.Template, err)
	}
	defer file.Close()

	prog, err := CompileReader(ctx, file, append(t.Options(), opts...)...)
	if err != nil {
		return WrapError(err).With(slog.String("template", t.Template))
	}

	var buf bytes.Buffer

	if err := Generate(&buf, prog, t); err != nil {
		return err
	}

	return os.WriteFile(t.OutputPath(), buf.Bytes(), 0o644)
}

// readTemplateError reports a template read failure with its absolute path.
func readTemplateError(path string, err error) error {
	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		abs = path
	}

	return ErrReadTemplate.
		With(slog.String("path", abs)).
		Wrap(fmt.Errorf("%s: %w", abs, err))
}
