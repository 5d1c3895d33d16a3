package render

import (
	"context"

	"github.com/ardnew/stuart/lang"
)

// Function is a callable template function. Built-ins, plugin functions,
// and script-backed functions all implement it.
//
// Call runs with the page's render [Context]. Block and conditional
// functions are responsible for rendering call.Body (and call.Else) through
// the Context.
type Function interface {
	Name() string
	Kind() lang.FunctionKind
	Call(ctx context.Context, rc *Context, call *lang.Call) error
}

// CallFunc is the signature of a function body.
type CallFunc func(ctx context.Context, rc *Context, call *lang.Call) error

// NewFunction returns a [Function] with the given name, kind, and body.
func NewFunction(name string, kind lang.FunctionKind, fn CallFunc) Function {
	return &function{name: name, kind: kind, fn: fn}
}

type function struct {
	fn   CallFunc
	name string
	kind lang.FunctionKind
}

func (f *function) Name() string            { return f.name }
func (f *function) Kind() lang.FunctionKind { return f.kind }

func (f *function) Call(ctx context.Context, rc *Context, call *lang.Call) error {
	return f.fn(ctx, rc, call)
}

// Builtins returns the built-in function set.
func Builtins() []Function {
	return []Function{
		NewFunction("begin", lang.FunctionBlock, callBegin),
		NewFunction("insert", lang.FunctionInline, callInsert),
		NewFunction("import", lang.FunctionInline, callImport),
		NewFunction("for", lang.FunctionBlock, callFor),
		NewFunction("ifeq", lang.FunctionConditional, compareWith(func(c int) bool { return c == 0 })),
		NewFunction("ifne", lang.FunctionConditional, compareWith(func(c int) bool { return c != 0 })),
		NewFunction("ifgt", lang.FunctionConditional, compareWith(func(c int) bool { return c > 0 })),
		NewFunction("ifge", lang.FunctionConditional, compareWith(func(c int) bool { return c >= 0 })),
		NewFunction("iflt", lang.FunctionConditional, compareWith(func(c int) bool { return c < 0 })),
		NewFunction("ifle", lang.FunctionConditional, compareWith(func(c int) bool { return c <= 0 })),
		NewFunction("ifdefined", lang.FunctionConditional, callIfDefined),
		NewFunction("dateformat", lang.FunctionInline, callDateFormat),
		NewFunction("excerpt", lang.FunctionInline, callExcerpt),
		NewFunction("timetoread", lang.FunctionInline, callTimeToRead),
	}
}
