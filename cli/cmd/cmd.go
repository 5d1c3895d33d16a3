package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/ardnew/stuart/log"
	"github.com/ardnew/stuart/plugin"
	"github.com/ardnew/stuart/render"
	"github.com/ardnew/stuart/site"
)

// Project holds the flags shared by commands that operate on a project
// directory.
type Project struct {
	Dir        string   `default:"."                 help:"Project directory containing stuart.yml."            name:"project" short:"C" type:"existingdir"`
	Plugin     []string `help:"Plugin manifest file or directory (repeatable)." name:"plugin"  short:"P" type:"path"`
	PluginPath []string `help:"Extra directory searched for plugin manifests."  name:"plugin-path"       type:"path"`
}

// Render holds the flags that override how a project renders.
type Render struct {
	Jobs int `default:"0" help:"Pages rendered at once (0 uses every CPU)."`

	ContinueOnError bool `help:"Report page errors and keep building." name:"continue-on-error"`
}

func (r Render) apply(cfg *site.Config) {
	if r.Jobs > 0 {
		cfg.Jobs = r.Jobs
	}

	if r.ContinueOnError {
		cfg.ContinueOnError = true
	}
}

// PluginDirName is the project subdirectory searched for plugin manifests.
const PluginDirName = "plugins"

// loaded is a project's configuration with its plugins compiled.
type loaded struct {
	plugins []*plugin.Plugin
	dir     string
	cfg     site.Config
}

func (l loaded) content() string { return filepath.Join(l.dir, l.cfg.Content) }

func (l loaded) output() string { return filepath.Join(l.dir, l.cfg.Output) }

func (l loaded) options(extra ...site.Option) []site.Option {
	return slices.Concat([]site.Option{
		site.WithLogger(log.Default()),
		site.WithPlugins(l.plugins...),
	}, extra)
}

func (l loaded) registry() (*render.Registry, error) {
	return site.NewRegistry(l.plugins...)
}

// load reads stuart.yml and loads the plugins named by the configuration
// and flags, then the plugins found in the project's plugins directory and
// the search path. Configured plugin paths are relative to the
// project directory.
func (p *Project) load(ctx context.Context) (loaded, error) {
	dir, err := filepath.Abs(p.Dir)
	if err != nil {
		return loaded{}, err
	}

	cfg, err := site.LoadConfig(dir)
	if err != nil {
		return loaded{}, err
	}

	paths := make([]string, 0, len(cfg.Plugins)+len(p.Plugin))
	for _, name := range cfg.Plugins {
		if !filepath.IsAbs(name) {
			name = filepath.Join(dir, name)
		}

		paths = append(paths, name)
	}

	paths = append(paths, p.Plugin...)

	search := slices.Concat([]string{filepath.Join(dir, PluginDirName)}, p.PluginPath)

	loader := plugin.NewLoader(
		plugin.WithLogger(log.Default()),
		plugin.WithSearchPath(plugin.SearchPath(search...)...),
	)

	plugins, err := loader.Load(ctx, paths...)
	if err != nil {
		return loaded{}, err
	}

	log.DebugContext(ctx, "project loaded",
		slog.String("dir", dir),
		slog.String("content", cfg.Content),
		slog.String("output", cfg.Output),
		slog.Int("plugins", len(plugins)),
	)

	return loaded{plugins: plugins, dir: dir, cfg: cfg}, nil
}
