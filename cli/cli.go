package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stuart/cli/cmd"
	"github.com/ardnew/stuart/pkg"
)

// ConfigName is the base name of the user configuration file in
// [pkg.ConfigDir]. A JSON variant with the ".json" suffix is also read.
const ConfigName = "config.yml"

// CLI is the top-level command-line interface for stuart.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Build     cmd.Build     `cmd:"" default:"withargs" help:"Build the site into its output directory."`
	Check     cmd.Check     `cmd:""                    help:"Build the site without writing output."`
	Functions cmd.Functions `cmd:""                    help:"List template functions."`
	Fmt       cmd.Fmt       `cmd:""                    help:"Print a template in canonical form."`
	Version   cmd.Version   `cmd:""                    help:"Print the version."`
}

// Run executes the stuart CLI with the given context and arguments, writing
// command output to standard output. The exit function is called with the
// appropriate exit code when kong exits early, for example after --help.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	return run(ctx, os.Stdout, exit, args...)
}

func run(ctx context.Context, out io.Writer, exit func(code int), args ...string) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFile := filepath.Join(pkg.ConfigDir(), ConfigName)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(out, out),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.BindTo(out, (*io.Writer)(nil)),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFile+".json"),
		kong.Configuration(resolve, configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()

	// No-op unless built with tag pprof and a mode is set.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}

// mkdirAllRequired creates the per-user configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		err := os.MkdirAll(dir, 0o700)
		if err != nil {
			return pkg.ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}
