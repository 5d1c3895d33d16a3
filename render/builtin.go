package render

import (
	"cmp"
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/stuart/lang"
)

// callBegin captures the body into the section named by its argument.
func callBegin(ctx context.Context, rc *Context, call *lang.Call) error {
	name, err := rc.nameArg(call)
	if err != nil {
		return err
	}

	err = rc.beginSection(name)
	if err != nil {
		return err
	}

	err = rc.Render(ctx, call.Body)
	if err != nil {
		return err
	}

	rc.endSection()

	return nil
}

// callInsert copies a page section into a root template.
func callInsert(_ context.Context, rc *Context, call *lang.Call) error {
	name, err := rc.nameArg(call)
	if err != nil {
		return err
	}

	if !rc.root {
		return ErrInsertOutsideRoot.With(slog.String("name", name))
	}

	content, ok := rc.insert[name]
	if !ok {
		return ErrSectionNotFound.With(slog.String("name", name))
	}

	rc.Write(string(content))

	return nil
}

// callIfDefined renders its body when the path resolves to a non-null value.
// A missing path is a negative result, never an error.
func callIfDefined(ctx context.Context, rc *Context, call *lang.Call) error {
	args := call.Positional()
	if len(args) != 1 || args[0].Kind != lang.ArgVariable {
		return ErrArgument.With(slog.String("usage", "ifdefined($path)"))
	}

	v, ok := rc.Lookup(args[0].Path)

	return rc.branch(ctx, call, ok && !v.IsNull())
}

// compareWith returns a conditional that holds when hold accepts the
// comparison of its two arguments.
func compareWith(hold func(int) bool) CallFunc {
	return func(ctx context.Context, rc *Context, call *lang.Call) error {
		args, _, err := rc.Args(call)
		if err != nil {
			return err
		}

		if len(args) != 2 {
			return ErrArgument.With(slog.String("usage", call.Name+"(a, b)"))
		}

		return rc.branch(ctx, call, hold(compareValues(args[0], args[1])))
	}
}

func (rc *Context) branch(ctx context.Context, call *lang.Call, cond bool) error {
	switch {
	case cond:
		return rc.Block(ctx, call.Name, call.Body, nil)
	case call.HasElse:
		return rc.Block(ctx, call.Name, call.Else, nil)
	default:
		return nil
	}
}

// compareValues compares numerically when both values are numbers or
// numeric strings, and lexically otherwise.
func compareValues(a, b lang.Value) int {
	if x, ok := a.Numeric(); ok {
		if y, ok := b.Numeric(); ok {
			return cmp.Compare(x, y)
		}
	}

	return strings.Compare(a.String(), b.String())
}

// nameArg returns the single name argument of begin and insert.
func (rc *Context) nameArg(call *lang.Call) (string, error) {
	args := call.Positional()
	if len(args) != 1 {
		return "", ErrArgument.With(slog.String("usage", call.Name+"(name)"))
	}

	v, err := rc.Resolve(args[0])
	if err != nil {
		return "", err
	}

	name, ok := v.AsString()
	if !ok || name == "" {
		return "", ErrArgument.With(
			slog.String("usage", call.Name+"(name)"),
			slog.String("kind", v.Kind().String()),
		)
	}

	return name, nil
}

// stringArg resolves arg to a string.
func (rc *Context) stringArg(arg lang.Arg) (string, error) {
	v, err := rc.Resolve(arg)
	if err != nil {
		return "", err
	}

	s, ok := v.AsString()
	if !ok {
		return "", ErrInvalidType.WithPosition(arg.Pos).
			With(slog.String("want", "string"), slog.String("kind", v.Kind().String()))
	}

	return s, nil
}

// bindingArg returns the bare variable name of an argument such as $item.
func bindingArg(arg lang.Arg) (string, bool) {
	if arg.Kind != lang.ArgVariable || len(arg.Path.Keys) > 0 {
		return "", false
	}

	return arg.Path.Root, true
}
