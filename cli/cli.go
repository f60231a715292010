package cli

import (
	"context"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hbs/cli/cmd"
	"github.com/ardnew/hbs/pkg"
)

// CLI is the top-level command-line interface for hbs.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Compile cmd.Compile `cmd:"" help:"Compile templates and print their instructions"`
	Gen     cmd.Gen     `cmd:"" help:"Generate Go render methods from templates"`
	Paths   cmd.Paths   `cmd:"" help:"Print the context paths templates read"`
	Init    cmd.Init    `cmd:"" help:"Write the current flags to the user configuration file"`
	Repl    cmd.Repl    `cmd:"" help:"Compile templates interactively"`
}

// Run parses args and runs the selected command. Flags are also read from
// the nearest .hbs.yaml above the working directory and from the user
// configuration directory. exit is called by kong for --help, --version, and
// usage errors.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	if err := ensureDirs(); err != nil {
		return err
	}

	var cli CLI

	cli.Log.scan(args)

	parser, err := kong.New(&cli, cli.options(exit)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.WithContext(ctx, ktx))
	defer cancel()

	ktx.BindTo(ctx, (*context.Context)(nil))

	cli.Log.start(ctx)

	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}

func (c *CLI) options(exit func(int)) []kong.Option {
	userConfig := configPath(baseConfig)

	vars := kong.Vars{
		"version":               pkg.Version,
		cmd.ConfigIdentifier:    userConfig,
		cmd.CacheIdentifier:     cacheDir(),
		cmd.GoPackageIdentifier: os.Getenv("GOPACKAGE"),
	}

	opts := []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{c.Log.group(), c.Pprof.group()}),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		vars.CloneWith(c.Log.vars()).CloneWith(c.Pprof.vars()),
	}

	if wd, err := os.Getwd(); err == nil {
		if local := projectConfig(wd); local != "" {
			opts = append(opts, kong.Configuration(resolve, local))
		}
	}

	return append(opts,
		kong.Configuration(resolve, userConfig),
		kong.Configuration(kong.JSON, configPath(pkg.Name+".json")),
	)
}
