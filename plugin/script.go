package plugin

import (
	"context"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/stuart/lang"
)

// script is a compiled expression and the source it came from.
type script struct {
	program *vm.Program
	source  string
}

// compile compiles source once against the shape of env. Every later run
// must supply an environment with the same keys and value types.
func compile(source string, env map[string]any, attrs ...slog.Attr) (*script, error) {
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", source)).With(attrs...)
	}

	return &script{program: program, source: source}, nil
}

func (s *script) run(env map[string]any) (lang.Value, error) {
	result, err := vm.Run(s.program, env)
	if err != nil {
		return lang.Value{}, ErrEvaluate.Wrap(err).With(slog.String("source", s.source))
	}

	v, err := lang.FromNative(result)
	if err != nil {
		return lang.Value{}, ErrEvaluate.Wrap(err).With(slog.String("source", s.source))
	}

	return v, nil
}

// bridge returns the get and set functions scripts use to reach the store.
// Values are converted to plain Go data on the way out and back to
// [lang.Value] on the way in, so neither side can alias the other.
func bridge(store Store) (get func(string) any, set func(string, any) any) {
	get = func(name string) any {
		if store == nil {
			return nil
		}

		v, ok := store.Get(name)
		if !ok {
			return nil
		}

		return v.Native()
	}

	set = func(name string, x any) any {
		v, err := lang.FromNative(x)
		if err != nil || store == nil {
			return nil
		}

		store.Set(name, v)

		return x
	}

	return get, set
}

func functionEnv(args Args, body string, store Store) map[string]any {
	positional := make([]any, len(args.Positional))
	for i, v := range args.Positional {
		positional[i] = v.Native()
	}

	named := make(map[string]any, len(args.Named))
	for k, v := range args.Named {
		named[k] = v.Native()
	}

	get, set := bridge(store)

	return map[string]any{
		"args":  positional,
		"named": named,
		"body":  body,
		"get":   get,
		"set":   set,
	}
}

func parserEnv(path string, data []byte, store Store) map[string]any {
	get, set := bridge(store)

	return map[string]any{
		"path":    path,
		"content": string(data),
		"get":     get,
		"set":     set,
	}
}

// ScriptFunction compiles source into a plugin function. The script sees
// args (positional values), named (named values), body (the rendered block
// body, empty for inline functions), and the get and set store bridges.
func ScriptFunction(name, source string, minArgs, maxArgs int, block bool) (Function, error) {
	s, err := compile(source, functionEnv(Args{}, "", nil), slog.String("function", name))
	if err != nil {
		return Function{}, err
	}

	return Function{
		Name:    name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Block:   block,
		Call: func(ctx context.Context, args Args, store Store) (lang.Value, error) {
			var body string

			if args.Body != nil {
				out, err := args.Body(ctx)
				if err != nil {
					return lang.Value{}, err
				}

				body = out
			}

			return s.run(functionEnv(args, body, store))
		},
	}, nil
}

// ScriptParser compiles source into a plugin file parser. The script sees
// path, content (the file as a string), and the store bridges. A string
// result is the output; any other result is written as JSON.
func ScriptParser(extensions []string, output, source string) (Parser, error) {
	s, err := compile(source, parserEnv("", nil, nil))
	if err != nil {
		return Parser{}, err
	}

	return Parser{
		Extensions: extensions,
		Output:     output,
		Parse: func(_ context.Context, path string, data []byte, store Store) ([]byte, error) {
			v, err := s.run(parserEnv(path, data, store))
			if err != nil {
				return nil, ErrParse.With(slog.String("path", path)).Wrap(err)
			}

			if str, ok := v.AsString(); ok {
				return []byte(str), nil
			}

			return v.MarshalJSON()
		},
	}, nil
}
