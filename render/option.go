package render

import (
	"maps"

	"github.com/ardnew/stuart/lang"
	"github.com/ardnew/stuart/log"
)

// Default text helper settings.
const (
	DefaultEllipsis       = "..."
	DefaultWordsPerMinute = 200
	DefaultExcerptLength  = 150
)

// Option configures a render [Context].
type Option func(*options)

type options struct {
	source   Source
	store    *Store
	vars     map[string]lang.Value
	logger   log.Logger
	name     string
	dir      string
	ellipsis string
	wpm      int
}

func makeOptions(opts ...Option) options {
	o := options{
		ellipsis: DefaultEllipsis,
		wpm:      DefaultWordsPerMinute,
		vars:     map[string]lang.Value{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithLogger sets the logger for trace output.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithSource sets where import and for load data files and Markdown
// directories from.
func WithSource(src Source) Option {
	return func(o *options) { o.source = src }
}

// WithStore sets the build-scoped key-value store exposed to plugins.
func WithStore(s *Store) Option {
	return func(o *options) { o.store = s }
}

// WithVar binds a variable in the outermost scope. The value is cloned.
func WithVar(name string, v lang.Value) Option {
	return func(o *options) {
		o.vars = maps.Clone(o.vars)
		o.vars[name] = v.Clone()
	}
}

// WithPage sets the content-relative path of the page being rendered.
// Imports starting with "./" or "../" resolve against its directory.
func WithPage(name string) Option {
	return func(o *options) {
		o.name = name
		o.dir = dirOf(name)
	}
}

// WithEllipsis sets the suffix excerpt appends to truncated text.
func WithEllipsis(s string) Option {
	return func(o *options) { o.ellipsis = s }
}

// WithWordsPerMinute sets the reading speed timetoread assumes.
// Non-positive values keep the default.
func WithWordsPerMinute(wpm int) Option {
	return func(o *options) {
		if wpm > 0 {
			o.wpm = wpm
		}
	}
}
