package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/hbs/hbs"
	"github.com/ardnew/hbs/log"
)

// Compile compiles templates and prints their instruction streams in the
// chosen format.
type Compile struct {
	Text Text `cmd:"" default:"withargs" help:"Print instructions, one per line (default)."`
	JSON JSON `cmd:""                    help:"Print instructions as JSON."`
	YAML YAML `cmd:""                    help:"Print instructions as YAML."`
	Go   Go   `cmd:""                    help:"Print the Go statements of the render body."`
}

// CompileFlags are shared by every command that compiles templates.
type CompileFlags struct {
	Root       string `help:"Root context qualifier for unbound variables" short:"r"`
	NoCollapse bool   `help:"Keep whitespace between adjacent markup tags"`

	Sources []string `arg:"" help:"Template file(s) or '-' for stdin" name:"source" optional:""`
}

func (f *CompileFlags) options() []hbs.Option {
	return []hbs.Option{
		hbs.WithRoot(f.Root),
		hbs.WithCollapse(!f.NoCollapse),
		hbs.WithLogger(log.Default()),
	}
}

// multi reports whether output needs per-source headers.
func (f *CompileFlags) multi() bool { return len(f.Sources) > 1 }

// each compiles every source in order and calls fn with its program. The
// first compile error is reported on stderr and returned.
func (f *CompileFlags) each(
	ctx context.Context,
	fn func(name string, prog *hbs.Program) error,
) error {
	srcs, err := openSources(f.Sources)
	if err != nil {
		return err
	}
	defer closeSources(srcs)

	for _, src := range srcs {
		prog, err := hbs.CompileReader(ctx, src, f.options()...)
		if err != nil {
			report(stderr, src.name, err)

			return ErrCompile.With(slog.String("source", src.name)).Wrap(err)
		}

		log.TraceContext(ctx, "compiled",
			slog.String("source", src.name),
			slog.Int("instructions", prog.Len()),
		)

		if err := fn(src.name, prog); err != nil {
			return err
		}
	}

	return nil
}

// document pairs a program with the source it was compiled from.
type document struct {
	Source string `json:"source" yaml:"source"`

	*hbs.Program `yaml:",inline"`
}

// Text prints instructions in their compact text form.
type Text struct {
	CompileFlags `embed:""`
}

// Run executes the text command.
func (c *Text) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return c.each(ctx, func(name string, prog *hbs.Program) error {
		if c.multi() {
			if _, err := fmt.Fprintf(stdout, "# %s\n", name); err != nil {
				return ErrWriteOutput.Wrap(err)
			}
		}

		if _, err := io.WriteString(stdout, prog.String()); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	})
}

// JSON prints instructions as JSON, one document per source.
type JSON struct {
	CompileFlags `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`
}

// Run executes the json command.
func (c *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return c.each(ctx, func(name string, prog *hbs.Program) error {
		var v any = prog
		if c.multi() {
			v = document{Source: name, Program: prog}
		}

		data, err := json.MarshalIndent(v, "", strings.Repeat(" ", c.Indent))
		if err != nil {
			return ErrJSONMarshal.With(slog.String("source", name)).Wrap(err)
		}

		if _, err := fmt.Fprintf(stdout, "%s\n", data); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	})
}

// YAML prints instructions as YAML, one document per source.
type YAML struct {
	CompileFlags `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`
}

// Run executes the yaml command.
func (c *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	first := true

	return c.each(ctx, func(name string, prog *hbs.Program) error {
		var v any = prog
		if c.multi() {
			v = document{Source: name, Program: prog}
		}

		data, err := yaml.MarshalWithOptions(v, yaml.Indent(c.Indent))
		if err != nil {
			return ErrYAMLMarshal.With(slog.String("source", name)).Wrap(err)
		}

		if !first {
			if _, err := io.WriteString(stdout, "---\n"); err != nil {
				return ErrWriteOutput.Wrap(err)
			}
		}

		first = false

		if _, err := stdout.Write(data); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	})
}

// Go prints the Go statements making up a render method body.
type Go struct {
	CompileFlags `embed:""`

	Sink string `default:"f" help:"Identifier of the render.Writer in the statements"`
}

// Run executes the go command.
func (c *Go) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return c.each(ctx, func(name string, prog *hbs.Program) error {
		if c.multi() {
			if _, err := fmt.Fprintf(stdout, "// %s\n", name); err != nil {
				return ErrWriteOutput.Wrap(err)
			}
		}

		if err := prog.WriteGo(stdout, c.Sink); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	})
}
