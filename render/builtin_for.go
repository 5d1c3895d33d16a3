package render

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/stuart/lang"
)

// callImport binds a parsed JSON file to a variable in the current scope.
func callImport(ctx context.Context, rc *Context, call *lang.Call) error {
	args := call.Positional()
	if len(args) != 2 {
		return ErrArgument.With(slog.String("usage", "import($var, path)"))
	}

	name, ok := bindingArg(args[0])
	if !ok {
		return ErrArgument.With(slog.String("usage", "import($var, path)"))
	}

	p, err := rc.stringArg(args[1])
	if err != nil {
		return err
	}

	v, err := rc.data(ctx, p)
	if err != nil {
		return err
	}

	return rc.Define(name, v)
}

func (rc *Context) data(ctx context.Context, p string) (lang.Value, error) {
	if rc.opts.source == nil {
		return lang.Value{}, ErrImport.With(slog.String("path", p))
	}

	v, err := rc.opts.source.Data(ctx, rc.resolvePath(p))
	if err != nil {
		return lang.Value{}, ErrImport.With(slog.String("path", p)).Wrap(err)
	}

	return v, nil
}

// callFor renders its body once per item of an array, a JSON array file, or
// the Markdown pages of a directory.
func callFor(ctx context.Context, rc *Context, call *lang.Call) error {
	args := call.Positional()
	if len(args) != 2 {
		return ErrArgument.With(slog.String("usage", "for($item, source)"))
	}

	name, ok := bindingArg(args[0])
	if !ok {
		return ErrArgument.With(slog.String("usage", "for($item, source)"))
	}

	order, err := rc.loopOrder(call)
	if err != nil {
		return err
	}

	items, err := rc.loopItems(ctx, args[1])
	if err != nil {
		return err
	}

	items = order.apply(items)

	rc.opts.logger.TraceContext(ctx, "for",
		slog.String("item", name),
		slog.Int("count", len(items)))

	for i, item := range items {
		bind := map[string]lang.Value{
			"loop": lang.Object(map[string]lang.Value{
				"index": lang.Number(float64(i)),
				"first": lang.Bool(i == 0),
				"last":  lang.Bool(i == len(items)-1),
			}),
		}
		bind[name] = item

		err := rc.Block(ctx, call.Name, call.Body, bind)
		if err != nil {
			return err
		}
	}

	return nil
}

func (rc *Context) loopItems(ctx context.Context, arg lang.Arg) ([]lang.Value, error) {
	v, err := rc.Resolve(arg)
	if err != nil {
		return nil, err
	}

	switch v.Kind() {
	case lang.KindArray:
		return v.Slice(), nil

	case lang.KindString:
		p, _ := v.AsString()

		if strings.HasSuffix(p, ".json") {
			data, err := rc.data(ctx, p)
			if err != nil {
				return nil, err
			}

			if data.Kind() != lang.KindArray {
				return nil, ErrImport.With(
					slog.String("path", p),
					slog.String("want", "array"),
					slog.String("kind", data.Kind().String()),
				)
			}

			return data.Slice(), nil
		}

		if rc.opts.source == nil {
			return nil, ErrImport.With(slog.String("path", p))
		}

		pages, err := rc.opts.source.Pages(ctx, rc.resolvePath(p))
		if err != nil {
			return nil, ErrImport.With(slog.String("path", p)).Wrap(err)
		}

		return pages, nil

	default:
		return nil, ErrInvalidType.WithPosition(arg.Pos).
			With(slog.String("want", "array or path"), slog.String("kind", v.Kind().String()))
	}
}

// order holds the sortby, order, skip, and limit arguments of a loop.
type order struct {
	keys  []string
	skip  int
	limit int
	desc  bool
}

func (rc *Context) loopOrder(call *lang.Call) (order, error) {
	o := order{limit: -1}

	if arg, ok := call.Named("sortby"); ok {
		keys, err := sortKeys(arg)
		if err != nil {
			return o, err
		}

		o.keys = keys
	}

	if arg, ok := call.Named("order"); ok {
		v, err := rc.Resolve(arg)
		if err != nil {
			return o, err
		}

		switch strings.ToLower(v.String()) {
		case "asc":
		case "desc":
			o.desc = true
		default:
			return o, ErrArgument.WithPosition(arg.Pos).
				With(slog.String("order", v.String()), slog.String("want", "asc or desc"))
		}
	}

	for key, dst := range map[string]*int{"skip": &o.skip, "limit": &o.limit} {
		arg, ok := call.Named(key)
		if !ok {
			continue
		}

		v, err := rc.Resolve(arg)
		if err != nil {
			return o, err
		}

		n, ok := v.Numeric()
		if !ok || n < 0 || n != float64(int(n)) {
			return o, ErrArgument.WithPosition(arg.Pos).
				With(slog.String(key, v.String()), slog.String("want", "non-negative integer"))
		}

		*dst = int(n)
	}

	return o, nil
}

// sortKeys accepts sortby="field.path" or sortby=$item.field.path; in the
// variable form the leading item name is dropped.
func sortKeys(arg lang.Arg) ([]string, error) {
	if arg.Kind == lang.ArgVariable {
		if len(arg.Path.Keys) == 0 {
			return nil, ErrArgument.WithPosition(arg.Pos).
				With(slog.String("sortby", arg.Path.String()))
		}

		return arg.Path.Keys, nil
	}

	s, ok := arg.Text()
	if !ok {
		return nil, ErrArgument.WithPosition(arg.Pos).
			With(slog.String("want", "field name"))
	}

	p, err := lang.ParsePath(s)
	if err != nil {
		return nil, ErrArgument.WithPosition(arg.Pos).Wrap(err)
	}

	return append([]string{p.Root}, p.Keys...), nil
}

// apply sorts items by key (stable, so ties keep input order in both
// directions), then drops skip items and truncates to limit.
func (o order) apply(items []lang.Value) []lang.Value {
	if len(o.keys) > 0 {
		slices.SortStableFunc(items, func(a, b lang.Value) int {
			ka, _ := lang.Lookup(a, o.keys...)
			kb, _ := lang.Lookup(b, o.keys...)

			c := compareSortKeys(ka, kb)
			if o.desc {
				return -c
			}

			return c
		})
	} else if o.desc {
		slices.Reverse(items)
	}

	items = items[min(o.skip, len(items)):]

	if o.limit >= 0 && o.limit < len(items) {
		items = items[:o.limit]
	}

	return items
}

// compareSortKeys orders numbers numerically and dates chronologically,
// falling back to lexical order.
func compareSortKeys(a, b lang.Value) int {
	if x, ok := a.Numeric(); ok {
		if y, ok := b.Numeric(); ok {
			return cmp.Compare(x, y)
		}
	}

	if x, err := parseDate(a); err == nil {
		if y, err := parseDate(b); err == nil {
			return x.Compare(y)
		}
	}

	return strings.Compare(a.String(), b.String())
}
