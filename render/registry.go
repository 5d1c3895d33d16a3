package render

import (
	"iter"
	"log/slog"
	"maps"
	"slices"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stuart/lang"
)

// Registry maps function names to implementations.
// It is built once by [NewRegistry] and is read-only afterwards, so it may be
// shared by concurrent page renders.
type Registry struct {
	funcs map[string]Function
	names []string
}

// RegistryOption configures [NewRegistry].
type RegistryOption func(*registryConfig)

type registryConfig struct {
	funcs    []Function
	builtins bool
}

// WithFunctions registers additional functions.
func WithFunctions(fns ...Function) RegistryOption {
	return func(c *registryConfig) { c.funcs = append(c.funcs, fns...) }
}

// WithBuiltins controls whether the built-in functions are registered.
// They are by default.
func WithBuiltins(enable bool) RegistryOption {
	return func(c *registryConfig) { c.builtins = enable }
}

// NewRegistry builds a registry from the built-ins and any functions given
// with [WithFunctions]. Registering a name twice, or using a name reserved
// by the parser, is [ErrDuplicateFunction].
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	cfg := registryConfig{builtins: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	fns := cfg.funcs
	if cfg.builtins {
		fns = append(Builtins(), fns...)
	}

	r := &Registry{funcs: make(map[string]Function, len(fns))}

	for _, fn := range fns {
		name := fn.Name()

		if _, ok := r.funcs[name]; ok || name == lang.EndName || name == lang.ElseName {
			return nil, ErrDuplicateFunction.With(slog.String("name", name))
		}

		r.funcs[name] = fn
	}

	r.names = slices.Sorted(maps.Keys(r.funcs))

	return r, nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.funcs[name]

	return fn, ok
}

// Kind implements [lang.Functions].
func (r *Registry) Kind(name string) (lang.FunctionKind, bool) {
	fn, ok := r.funcs[name]
	if !ok {
		return lang.FunctionInline, false
	}

	return fn.Kind(), true
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string { return slices.Clone(r.names) }

// All iterates over the registered functions in name order.
func (r *Registry) All() iter.Seq[Function] {
	return func(yield func(Function) bool) {
		for _, name := range r.names {
			if !yield(r.funcs[name]) {
				return
			}
		}
	}
}

// maxSuggestions bounds the "did you mean" list.
const maxSuggestions = 3

// Suggest implements [lang.Suggester] with fuzzy matching over the
// registered names. When the whole name matches nothing, its first three
// characters are tried, which catches transposed letters.
func (r *Registry) Suggest(name string) []string {
	matches := fuzzy.Find(name, r.names)
	if len(matches) == 0 && len(name) > 3 {
		matches = fuzzy.Find(name[:3], r.names)
	}

	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

// Match returns the registered names matching a fuzzy query, best first.
// An empty query matches every name.
func (r *Registry) Match(query string) []string {
	if query == "" {
		return r.Names()
	}

	matches := fuzzy.Find(query, r.names)

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}

	return out
}
