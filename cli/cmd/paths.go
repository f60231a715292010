package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/hbs/hbs"
)

// Paths prints the context member paths a template reads.
type Paths struct {
	CompileFlags `embed:""`
}

// Run executes the paths command.
func (p *Paths) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return p.each(ctx, func(name string, prog *hbs.Program) error {
		paths, err := prog.Paths()
		if err != nil {
			return ErrCompile.With(slog.String("source", name)).Wrap(err)
		}

		for _, path := range paths {
			if p.multi() {
				_, err = fmt.Fprintf(stdout, "%s: %s\n", name, path)
			} else {
				_, err = fmt.Fprintln(stdout, path)
			}

			if err != nil {
				return ErrWriteOutput.Wrap(err)
			}
		}

		return nil
	})
}
