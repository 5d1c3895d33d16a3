package lang

import (
	"iter"
	"strings"

	"github.com/ardnew/stuart/log"
)

// FunctionKind describes how a call participates in block structure.
type FunctionKind uint8

const (
	// FunctionInline calls have no body.
	FunctionInline FunctionKind = iota
	// FunctionBlock calls open a body closed by a matching end().
	FunctionBlock
	// FunctionConditional calls open a body that may be divided by else().
	FunctionConditional
)

func (k FunctionKind) String() string {
	switch k {
	case FunctionBlock:
		return "block"
	case FunctionConditional:
		return "conditional"
	default:
		return "inline"
	}
}

// Opens reports whether calls of this kind have a body.
func (k FunctionKind) Opens() bool { return k != FunctionInline }

// Functions reports the kind of each callable name.
type Functions interface {
	Kind(name string) (FunctionKind, bool)
}

// Suggester is optionally implemented by [Functions] to offer alternatives
// for unknown names.
type Suggester interface {
	Suggest(name string) []string
}

// FunctionMap is a static [Functions] table.
type FunctionMap map[string]FunctionKind

// Kind implements [Functions].
func (m FunctionMap) Kind(name string) (FunctionKind, bool) {
	k, ok := m[name]

	return k, ok
}

// Reserved call names handled by the parser itself.
const (
	EndName  = "end"
	ElseName = "else"
)

// Node is an element of a parsed template.
type Node interface {
	Position() Position
	node()
}

// Text is literal template text.
type Text struct {
	Text string
	Pos  Position
}

// Variable is a {{ $path }} reference.
type Variable struct {
	Path Path
	Pos  Position
}

// Call is a function call. Block calls own a Body, and conditional calls
// may also own an Else branch.
type Call struct {
	Name    string
	Args    []Arg
	Body    []Node
	Else    []Node
	Pos     Position
	EndPos  Position
	Kind    FunctionKind
	HasElse bool
}

func (n *Text) Position() Position     { return n.Pos }
func (n *Variable) Position() Position { return n.Pos }
func (n *Call) Position() Position     { return n.Pos }

func (*Text) node()     {}
func (*Variable) node() {}
func (*Call) node()     {}

// Block reports whether the call has a body.
func (n *Call) Block() bool { return n.Kind.Opens() }

// Positional returns the positional arguments in order.
func (n *Call) Positional() []Arg {
	args := make([]Arg, 0, len(n.Args))
	for _, a := range n.Args {
		if a.Name == "" {
			args = append(args, a)
		}
	}

	return args
}

// Named returns the named argument with the given key.
func (n *Call) Named(key string) (Arg, bool) {
	for _, a := range n.Args {
		if a.Name == key {
			return a, true
		}
	}

	return Arg{}, false
}

// Label returns the first positional argument when it is a string literal
// or bare identifier, as in begin("body") or end(for).
func (n *Call) Label() string {
	if len(n.Args) == 0 || n.Args[0].Name != "" {
		return ""
	}

	s, _ := n.Args[0].Text()

	return s
}

// ArgKind identifies the form of an argument.
type ArgKind uint8

const (
	ArgLiteral ArgKind = iota
	ArgVariable
	ArgIdent
)

// Arg is a call argument. Name is empty for positional arguments.
type Arg struct {
	Value Value
	Name  string
	Ident string
	Path  Path
	Pos   Position
	Kind  ArgKind
}

// Text returns the argument as written when it is a string literal or
// identifier.
func (a Arg) Text() (string, bool) {
	switch a.Kind {
	case ArgIdent:
		return a.Ident, true
	case ArgLiteral:
		return a.Value.AsString()
	default:
		return "", false
	}
}

// AST is a parsed template.
type AST struct {
	functions Functions
	logger    log.Logger
	Name      string
	Nodes     []Node
	strict    bool
}

// Option configures parsing.
type Option func(*AST)

// WithName sets the source name reported in errors.
func WithName(name string) Option {
	return func(ast *AST) { ast.Name = name }
}

// WithFunctions sets the table used to classify calls.
// Without it every call parses as inline and names are not checked.
func WithFunctions(fns Functions) Option {
	return func(ast *AST) { ast.functions = fns }
}

// WithStrict controls whether unknown function names fail the parse.
// Strict is the default.
func WithStrict(strict bool) Option {
	return func(ast *AST) { ast.strict = strict }
}

// WithLogger sets the logger for trace output.
func WithLogger(logger log.Logger) Option {
	return func(ast *AST) { ast.logger = logger }
}

func applyOptions(ast *AST, opts ...Option) {
	ast.strict = true

	for _, opt := range opts {
		if opt != nil {
			opt(ast)
		}
	}
}

// Walk iterates over every node depth-first, including block bodies and
// else branches.
func (ast *AST) Walk() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(ast.Nodes, yield)
	}
}

func walk(nodes []Node, yield func(Node) bool) bool {
	for _, n := range nodes {
		if !yield(n) {
			return false
		}

		if c, ok := n.(*Call); ok {
			if !walk(c.Body, yield) || !walk(c.Else, yield) {
				return false
			}
		}
	}

	return true
}

// Calls iterates over every call with the given name.
func (ast *AST) Calls(name string) iter.Seq[*Call] {
	return func(yield func(*Call) bool) {
		for n := range ast.Walk() {
			if c, ok := n.(*Call); ok && c.Name == name {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// HasTags reports whether the template contains anything besides text.
func (ast *AST) HasTags() bool {
	for _, n := range ast.Nodes {
		if _, ok := n.(*Text); !ok {
			return true
		}
	}

	return false
}

// String reassembles the template source text from the AST.
func (ast *AST) String() string {
	var sb strings.Builder

	format(&sb, ast.Nodes)

	return sb.String()
}
