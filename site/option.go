package site

import (
	"os"
	"slices"
	"strings"

	"github.com/ardnew/stuart/lang"
	"github.com/ardnew/stuart/log"
	"github.com/ardnew/stuart/plugin"
	"github.com/ardnew/stuart/render"
)

// Option configures a build.
type Option func(*options)

type options struct {
	registry *render.Registry
	store    *render.Store
	logger   log.Logger
	progress func(Progress)
	plugins  []*plugin.Plugin
	environ  []string
}

// Progress reports one finished output during a build.
type Progress struct {
	// Err is the error of a failed output, nil on success.
	Err error
	// Path is the content-relative path of the document.
	Path  string
	Done  int
	Total int
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.store == nil {
		o.store = render.NewStore()
	}

	if o.environ == nil {
		o.environ = os.Environ()
	}

	return o
}

// WithLogger sets the logger for build progress and trace output.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPlugins registers the functions and file parsers of plugins.
func WithPlugins(plugins ...*plugin.Plugin) Option {
	return func(o *options) { o.plugins = append(o.plugins, plugins...) }
}

// WithRegistry renders with reg instead of a registry built from the
// built-ins and plugins. Plugin parsers still apply.
func WithRegistry(reg *render.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithStore shares s as the build-scoped store.
func WithStore(s *render.Store) Option {
	return func(o *options) { o.store = s }
}

// WithEnviron sets the "KEY=VALUE" list bound to $env when the
// configuration enables it. The default is the process environment.
func WithEnviron(environ []string) Option {
	return func(o *options) { o.environ = slices.Clone(environ) }
}

// WithProgress calls fn after each output is produced. Calls are
// serialized, so fn need not be safe for concurrent use.
func WithProgress(fn func(Progress)) Option {
	return func(o *options) { o.progress = fn }
}

// NewRegistry returns a registry of the built-in functions and the
// functions of plugins.
func NewRegistry(plugins ...*plugin.Plugin) (*render.Registry, error) {
	return render.NewRegistry(render.WithFunctions(plugin.Functions(plugins...)...))
}

// renderOptions returns the render options shared by every page of a build.
func renderOptions(cfg Config, o options) []render.Option {
	opts := []render.Option{
		render.WithLogger(o.logger),
		render.WithStore(o.store),
		render.WithWordsPerMinute(cfg.WordsPerMinute),
	}

	if cfg.ExcerptEllipsis != "" {
		opts = append(opts, render.WithEllipsis(cfg.ExcerptEllipsis))
	}

	if cfg.Env {
		opts = append(opts, render.WithVar("env", environ(o.environ)))
	}

	return opts
}

func environ(list []string) lang.Value {
	m := make(map[string]lang.Value, len(list))

	for _, kv := range list {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" {
			m[k] = lang.String(v)
		}
	}

	return lang.Object(m)
}
