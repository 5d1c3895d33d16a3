package plugin

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/stuart/lang"
	"github.com/ardnew/stuart/render"
)

// Separator joins a plugin name and a function name in templates.
const Separator = "::"

// Plugin is a registration unit: a named, versioned set of template
// functions and file parsers.
type Plugin struct {
	Name      string
	Version   string
	Functions []Function
	Parsers   []Parser
}

// Store is the narrow bridge into the build-scoped key-value store.
// Values cross it by deep copy.
type Store interface {
	Get(name string) (lang.Value, bool)
	Set(name string, v lang.Value)
}

// Func is the body of a plugin function. The returned value is written to
// the page; a null result writes nothing.
type Func func(ctx context.Context, args Args, store Store) (lang.Value, error)

// Args holds the resolved arguments of a plugin function call.
type Args struct {
	// Body renders the unrendered block body. It is nil for inline
	// functions.
	Body       func(ctx context.Context) (string, error)
	Named      map[string]lang.Value
	Positional []lang.Value
}

// Len returns the number of positional arguments.
func (a Args) Len() int { return len(a.Positional) }

// At returns positional argument i, or null when out of range.
func (a Args) At(i int) lang.Value {
	if i < 0 || i >= len(a.Positional) {
		return lang.Null()
	}

	return a.Positional[i]
}

// Get returns the named argument key.
func (a Args) Get(key string) (lang.Value, bool) {
	v, ok := a.Named[key]

	return v, ok
}

// Function describes one plugin function. MaxArgs < 0 accepts any number of
// positional arguments.
type Function struct {
	Call    Func
	Name    string
	MinArgs int
	MaxArgs int
	Block   bool
}

// Parser handles content files with the given extensions. The result is
// written to the output with the extension replaced by Output, or unchanged
// when Output is empty.
type Parser struct {
	Parse      func(ctx context.Context, path string, data []byte, store Store) ([]byte, error)
	Output     string
	Extensions []string
}

// Handles reports whether the parser claims the file extension ext.
func (p Parser) Handles(ext string) bool {
	return slices.ContainsFunc(p.Extensions, func(e string) bool {
		return strings.EqualFold(normalizeExt(e), ext)
	})
}

func normalizeExt(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		return "." + ext
	}

	return ext
}

// Validate checks names and arities.
func (p *Plugin) Validate() error {
	if !validName(p.Name) {
		return ErrInvalidPlugin.With(slog.String("name", p.Name))
	}

	seen := make(map[string]bool, len(p.Functions))

	for _, fn := range p.Functions {
		switch {
		case !validName(fn.Name):
			return ErrInvalidPlugin.With(
				slog.String("plugin", p.Name),
				slog.String("function", fn.Name),
			)

		case seen[fn.Name]:
			return ErrInvalidPlugin.With(
				slog.String("plugin", p.Name),
				slog.String("duplicate", fn.Name),
			)

		case fn.Call == nil, fn.MinArgs < 0, fn.MaxArgs >= 0 && fn.MaxArgs < fn.MinArgs:
			return ErrInvalidPlugin.With(
				slog.String("plugin", p.Name),
				slog.String("function", fn.Name),
				slog.String("reason", "missing body or invalid arity"),
			)
		}

		seen[fn.Name] = true
	}

	for _, ps := range p.Parsers {
		if ps.Parse == nil || len(ps.Extensions) == 0 {
			return ErrInvalidPlugin.With(
				slog.String("plugin", p.Name),
				slog.String("reason", "parser without extensions or body"),
			)
		}
	}

	return nil
}

func validName(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '-'):
		default:
			return false
		}
	}

	return true
}

// RenderFunctions returns the plugin's functions as render functions named
// "plugin::function".
func (p *Plugin) RenderFunctions() []render.Function {
	out := make([]render.Function, len(p.Functions))
	for i, fn := range p.Functions {
		out[i] = &adapter{name: p.Name + Separator + fn.Name, fn: fn}
	}

	return out
}

// Functions collects the render functions of all plugins.
func Functions(plugins ...*Plugin) []render.Function {
	var out []render.Function
	for _, p := range plugins {
		out = append(out, p.RenderFunctions()...)
	}

	return out
}

// adapter exposes a plugin [Function] through the render dispatch path.
type adapter struct {
	name string
	fn   Function
}

func (a *adapter) Name() string { return a.name }

func (a *adapter) Kind() lang.FunctionKind {
	if a.fn.Block {
		return lang.FunctionBlock
	}

	return lang.FunctionInline
}

// Arity returns the accepted positional argument count. A negative max is
// unbounded.
func (a *adapter) Arity() (minArgs, maxArgs int) { return a.fn.MinArgs, a.fn.MaxArgs }

func (a *adapter) Call(ctx context.Context, rc *render.Context, call *lang.Call) error {
	pos, named, err := rc.Args(call)
	if err != nil {
		return err
	}

	if len(pos) < a.fn.MinArgs || (a.fn.MaxArgs >= 0 && len(pos) > a.fn.MaxArgs) {
		return render.ErrArgument.With(
			slog.String("name", a.name),
			slog.Int("args", len(pos)),
			slog.Int("min", a.fn.MinArgs),
			slog.Int("max", a.fn.MaxArgs),
		)
	}

	args := Args{Positional: pos, Named: named}

	if a.fn.Block {
		args.Body = func(ctx context.Context) (string, error) {
			out, err := rc.Capture(ctx, call.Body)

			return string(out), err
		}
	}

	v, err := a.fn.Call(ctx, args, rc.Store())
	if err != nil {
		return ErrCall.With(slog.String("name", a.name)).Wrap(err)
	}

	rc.Write(v.String())

	return nil
}
