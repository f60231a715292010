package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/goccy/go-yaml"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/hbs/hbs"
	"github.com/ardnew/hbs/log"
)

// Gen generates Go render methods from templates, either a single target
// described by flags or every target listed in a manifest.
type Gen struct {
	Template string `help:"Template file to compile"                                     short:"t" type:"existingfile"`
	Type     string `help:"Receiver type of the generated method, e.g. *Page"`
	Receiver string `help:"Receiver variable name (default: lowercased type initial)"`
	Method   string `help:"Name of the generated method"                                           default:"Render"`
	Package  string `help:"Package of the generated file"                                          default:"${gopackage}"`
	Output   string `help:"Output file (default: template path with extension _hbs.go)" short:"o" type:"path"`

	Manifest string `help:"YAML manifest listing generation targets" short:"m" type:"existingfile"`

	NoCollapse bool `help:"Keep whitespace between adjacent markup tags"`
	Jobs       int  `help:"Maximum concurrent generations (0 for one per CPU)" short:"j" default:"0"`
}

// manifest is the YAML document read by --manifest. Relative template and
// output paths are relative to the manifest file.
//
//	package: views
//	targets:
//	  - type: "*Page"
//	    template: page.hbs
//	  - type: Card
//	    receiver: c
//	    template: card.hbs
//	    output: card_gen.go
type manifest struct {
	Package string       `yaml:"package"`
	Targets []hbs.Target `yaml:"targets"`
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	targets, err := g.targets()
	if err != nil {
		return err
	}

	jobs := g.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	opts := []hbs.Option{
		hbs.WithCollapse(!g.NoCollapse),
		hbs.WithLogger(log.Default()),
	}

	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)

	for _, t := range targets {
		eg.Go(func() error {
			if err := hbs.GenerateFile(ctx, t, opts...); err != nil {
				mu.Lock()
				report(stderr, t.Template, err)
				mu.Unlock()

				return ErrGenerate.With(slog.String("template", t.Template)).Wrap(err)
			}

			log.InfoContext(ctx, "generated",
				slog.String("template", t.Template),
				slog.String("output", t.OutputPath()),
			)

			return nil
		})
	}

	return eg.Wait()
}

// targets collects the manifest targets followed by the flag target.
func (g *Gen) targets() ([]hbs.Target, error) {
	var targets []hbs.Target

	if g.Manifest != "" {
		m, err := readManifest(g.Manifest)
		if err != nil {
			return nil, err
		}

		for _, t := range m.Targets {
			if t.Package == "" {
				t.Package = m.Package
			}

			if t.Package == "" {
				t.Package = g.Package
			}

			if t.Method == "" {
				t.Method = g.Method
			}

			targets = append(targets, t)
		}
	}

	if g.Template != "" {
		targets = append(targets, hbs.Target{
			Package:  g.Package,
			Type:     g.Type,
			Receiver: g.Receiver,
			Method:   g.Method,
			Template: g.Template,
			Output:   g.Output,
		})
	}

	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	return targets, nil
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrManifest.With(slog.String("path", path)).Wrap(err)
	}

	var m manifest

	if err := yaml.UnmarshalWithOptions(data, &m, yaml.Strict()); err != nil {
		return nil, ErrManifest.With(slog.String("path", path)).Wrap(err)
	}

	dir := filepath.Dir(path)

	for i := range m.Targets {
		t := &m.Targets[i]
		t.Template = relativeTo(dir, t.Template)

		if t.Output != "" {
			t.Output = relativeTo(dir, t.Output)
		}
	}

	return &m, nil
}

func relativeTo(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}
