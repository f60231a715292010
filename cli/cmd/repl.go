package cmd

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hbs/cli/cmd/repl"
	"github.com/ardnew/hbs/log"
)

// Repl compiles template lines interactively.
type Repl struct {
	Root       string `help:"Root context qualifier for unbound variables" short:"r"`
	NoCollapse bool   `help:"Keep whitespace between adjacent markup tags"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return repl.Run(ctx, repl.Options{
		Logger:   log.Default(),
		CacheDir: cacheDirFrom(kongContextFrom(ctx)),
		Root:     r.Root,
		Collapse: !r.NoCollapse,
	})
}

// cacheDirFrom returns the cache directory recorded in the kong variables,
// or "" when unavailable.
func cacheDirFrom(ktx *kong.Context) string {
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[CacheIdentifier]
}
