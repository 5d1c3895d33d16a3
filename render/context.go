package render

import (
	"bytes"
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/ardnew/stuart/lang"
	"github.com/ardnew/stuart/log"
)

// Source loads the data a template references by path. Paths are
// slash-separated and relative to the content root.
type Source interface {
	// Data returns the parsed JSON file at path.
	Data(ctx context.Context, path string) (lang.Value, error)
	// Pages returns the Markdown pages directly inside dir, each as its
	// frontmatter merged with the rendered content.
	Pages(ctx context.Context, dir string) ([]lang.Value, error)
}

// Section is a named fragment captured by begin() and end().
type Section struct {
	Name    string
	Content []byte
}

// Context carries the state of one template render: the variable scope
// chain, the section being captured, the output buffer stack, and the open
// block frames. A Context is used by a single goroutine.
type Context struct {
	reg      *Registry
	sections map[string][]byte
	insert   map[string][]byte
	scopes   []map[string]lang.Value
	out      []*bytes.Buffer
	frames   []string
	order    []string
	section  string
	opts     options
	root     bool
}

// NewContext returns a Context that dispatches calls through reg.
func NewContext(reg *Registry, opts ...Option) *Context {
	o := makeOptions(opts...)

	if o.store == nil {
		o.store = NewStore()
	}

	outer := make(map[string]lang.Value, len(o.vars))
	for k, v := range o.vars {
		outer[k] = v
	}

	return &Context{
		reg:      reg,
		opts:     o,
		sections: make(map[string][]byte),
		scopes:   []map[string]lang.Value{outer},
		out:      []*bytes.Buffer{new(bytes.Buffer)},
	}
}

// Registry returns the function registry.
func (rc *Context) Registry() *Registry { return rc.reg }

// Store returns the build-scoped store.
func (rc *Context) Store() *Store { return rc.opts.store }

// Logger returns the configured logger.
func (rc *Context) Logger() log.Logger { return rc.opts.logger }

// Page returns the content-relative path of the template being rendered.
func (rc *Context) Page() string { return rc.opts.name }

// Render renders nodes into the current output buffer.
func (rc *Context) Render(ctx context.Context, nodes []lang.Node) error {
	for _, n := range nodes {
		err := ctx.Err()
		if err != nil {
			return err
		}

		switch n := n.(type) {
		case *lang.Text:
			rc.Write(n.Text)

		case *lang.Variable:
			err = rc.variable(n)

		case *lang.Call:
			err = rc.call(ctx, n)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (rc *Context) variable(n *lang.Variable) error {
	v, ok := rc.Lookup(n.Path)
	if !ok {
		return ErrUndefinedVariable.WithPosition(n.Pos).
			With(slog.String("path", n.Path.String()))
	}

	if k := v.Kind(); k == lang.KindArray || k == lang.KindObject {
		return ErrInvalidType.WithPosition(n.Pos).
			With(slog.String("path", n.Path.String()), slog.String("kind", k.String()))
	}

	rc.Write(v.String())

	return nil
}

func (rc *Context) call(ctx context.Context, n *lang.Call) error {
	fn, ok := rc.reg.Lookup(n.Name)
	if !ok {
		err := lang.ErrUnknownFunction.WithPosition(n.Pos).
			With(slog.String("name", n.Name))
		if alt := rc.reg.Suggest(n.Name); len(alt) > 0 {
			err = err.With(slog.String("suggest", strings.Join(alt, ", ")))
		}

		return err
	}

	rc.opts.logger.TraceContext(ctx, "call",
		slog.String("name", n.Name),
		slog.String("at", n.Pos.String()))

	err := fn.Call(ctx, rc, n)
	if err != nil {
		return located(err, n.Pos)
	}

	return nil
}

// Write appends s to the current output buffer.
func (rc *Context) Write(s string) {
	rc.out[len(rc.out)-1].WriteString(s)
}

// Capture renders nodes in a fresh child scope and returns the output
// instead of writing it.
func (rc *Context) Capture(ctx context.Context, nodes []lang.Node) ([]byte, error) {
	rc.out = append(rc.out, new(bytes.Buffer))
	rc.PushScope()

	err := rc.Render(ctx, nodes)

	rc.PopScope()

	buf := rc.out[len(rc.out)-1]
	rc.out = rc.out[:len(rc.out)-1]

	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Block renders nodes inside a frame named after the calling function, with
// a fresh child scope. bind, if not nil, populates that scope first.
func (rc *Context) Block(
	ctx context.Context,
	name string,
	nodes []lang.Node,
	bind map[string]lang.Value,
) error {
	rc.frames = append(rc.frames, name)
	rc.PushScope()

	for k, v := range bind {
		rc.Bind(k, v)
	}

	err := rc.Render(ctx, nodes)

	rc.PopScope()
	rc.frames = rc.frames[:len(rc.frames)-1]

	return err
}

// PushScope opens a child scope.
func (rc *Context) PushScope() {
	rc.scopes = append(rc.scopes, make(map[string]lang.Value))
}

// PopScope discards the innermost scope. The outermost scope is never
// removed.
func (rc *Context) PopScope() {
	if len(rc.scopes) > 1 {
		rc.scopes = rc.scopes[:len(rc.scopes)-1]
	}
}

// Bind binds a copy of v to name in the innermost scope.
func (rc *Context) Bind(name string, v lang.Value) {
	rc.scopes[len(rc.scopes)-1][name] = v.Clone()
}

// Define binds a copy of v to name in the innermost scope, failing with
// [ErrVariableExists] if that scope already binds it.
func (rc *Context) Define(name string, v lang.Value) error {
	scope := rc.scopes[len(rc.scopes)-1]
	if _, ok := scope[name]; ok {
		return ErrVariableExists.With(slog.String("name", "$"+name))
	}

	scope[name] = v.Clone()

	return nil
}

// Lookup resolves a dot-path through the scope chain, innermost first.
// A missing variable, key, or index reports false.
func (rc *Context) Lookup(p lang.Path) (lang.Value, bool) {
	for i := len(rc.scopes) - 1; i >= 0; i-- {
		if v, ok := rc.scopes[i][p.Root]; ok {
			return lang.Lookup(v, p.Keys...)
		}
	}

	return lang.Value{}, false
}

// Resolve returns the value of an argument. Identifiers resolve to their
// name as a string. An undefined variable is [ErrUndefinedVariable].
func (rc *Context) Resolve(arg lang.Arg) (lang.Value, error) {
	switch arg.Kind {
	case lang.ArgIdent:
		return lang.String(arg.Ident), nil

	case lang.ArgVariable:
		v, ok := rc.Lookup(arg.Path)
		if !ok {
			return lang.Value{}, ErrUndefinedVariable.WithPosition(arg.Pos).
				With(slog.String("path", arg.Path.String()))
		}

		return v, nil

	default:
		return arg.Value, nil
	}
}

// Args resolves all arguments of call, split into positional and named.
func (rc *Context) Args(call *lang.Call) ([]lang.Value, map[string]lang.Value, error) {
	pos := make([]lang.Value, 0, len(call.Args))
	named := make(map[string]lang.Value)

	for _, a := range call.Args {
		v, err := rc.Resolve(a)
		if err != nil {
			return nil, nil, err
		}

		if a.Name == "" {
			pos = append(pos, v)
		} else {
			named[a.Name] = v
		}
	}

	return pos, named, nil
}

// beginSection switches output into the named section.
func (rc *Context) beginSection(name string) error {
	if rc.section != "" {
		return ErrNestedSection.With(
			slog.String("name", name),
			slog.String("open", rc.section),
		)
	}

	rc.section = name
	rc.out = append(rc.out, new(bytes.Buffer))
	rc.frames = append(rc.frames, "begin")
	rc.PushScope()

	return nil
}

// endSection appends the captured output to its section and returns to
// the previous output.
func (rc *Context) endSection() {
	rc.PopScope()
	rc.frames = rc.frames[:len(rc.frames)-1]

	buf := rc.out[len(rc.out)-1]
	rc.out = rc.out[:len(rc.out)-1]

	if _, ok := rc.sections[rc.section]; !ok {
		rc.order = append(rc.order, rc.section)
	}

	rc.sections[rc.section] = append(rc.sections[rc.section], buf.Bytes()...)
	rc.section = ""
}

// Sections returns the captured sections in the order they were first
// defined.
func (rc *Context) Sections() []Section {
	out := make([]Section, len(rc.order))
	for i, name := range rc.order {
		out[i] = Section{Name: name, Content: bytes.Clone(rc.sections[name])}
	}

	return out
}

// Output returns the content of the default buffer.
func (rc *Context) Output() []byte { return bytes.Clone(rc.out[0].Bytes()) }

// finish checks that no section or block is left open.
func (rc *Context) finish() error {
	if rc.section != "" || len(rc.frames) > 0 || len(rc.out) != 1 {
		return ErrUnclosedBlock.With(
			slog.String("section", rc.section),
			slog.String("frames", strings.Join(rc.frames, ",")),
		)
	}

	return nil
}

// resolvePath maps a template path argument to a content-relative path.
func (rc *Context) resolvePath(p string) string {
	if strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") {
		p = path.Join(rc.opts.dir, p)
	}

	p = path.Clean("/" + p)

	return strings.TrimPrefix(p, "/")
}

func dirOf(name string) string {
	d := path.Dir(name)
	if d == "." {
		return ""
	}

	return d
}
