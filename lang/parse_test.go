package lang

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

// testFunctions mirrors the kinds of the built-in function set.
var testFunctions = FunctionMap{
	"begin":      FunctionBlock,
	"insert":     FunctionInline,
	"import":     FunctionInline,
	"for":        FunctionBlock,
	"ifeq":       FunctionConditional,
	"ifdefined":  FunctionConditional,
	"dateformat": FunctionInline,
	"excerpt":    FunctionInline,
	"blog::tags": FunctionInline,
}

func mustParse(t *testing.T, src string, opts ...Option) *AST {
	t.Helper()

	opts = append([]Option{WithFunctions(testFunctions)}, opts...)

	ast, err := Parse(t.Context(), src, opts...)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return ast
}

func TestParse_LiteralOnly(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"<html>\n  <body>{ not a tag }</body>\n</html>\n",
		"unicode ✓ and } braces }",
	}

	for _, input := range inputs {
		ast := mustParse(t, input)

		if ast.HasTags() {
			t.Errorf("%q: unexpected tags", input)
		}

		if got := ast.String(); got != input {
			t.Errorf("String() = %q, want %q", got, input)
		}
	}
}

func TestParse_Variable(t *testing.T) {
	ast := mustParse(t, "{{ $post.meta.title }}")

	if len(ast.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(ast.Nodes))
	}

	v, ok := ast.Nodes[0].(*Variable)
	if !ok {
		t.Fatalf("expected *Variable, got %T", ast.Nodes[0])
	}

	if v.Path.Root != "post" || strings.Join(v.Path.Keys, ".") != "meta.title" {
		t.Errorf("path = %+v", v.Path)
	}
}

func TestParse_Args(t *testing.T) {
	ast := mustParse(t,
		`{{ for($p, "posts/", limit=2, order=desc, sortby=$p.date) }}{{ end(for) }}`)

	call, ok := ast.Nodes[0].(*Call)
	if !ok {
		t.Fatalf("expected *Call, got %T", ast.Nodes[0])
	}

	if call.Name != "for" || !call.Block() {
		t.Fatalf("call = %s block=%v", call.Name, call.Block())
	}

	pos := call.Positional()
	if len(pos) != 2 {
		t.Fatalf("expected 2 positional args, got %d", len(pos))
	}

	if pos[0].Kind != ArgVariable || pos[0].Path.Root != "p" {
		t.Errorf("arg 0 = %+v", pos[0])
	}

	if s, ok := pos[1].Text(); !ok || s != "posts/" {
		t.Errorf("arg 1 = %q", s)
	}

	limit, ok := call.Named("limit")
	if n, isNum := limit.Value.AsNumber(); !ok || !isNum || n != 2 {
		t.Errorf("limit = %+v", limit)
	}

	order, ok := call.Named("order")
	if !ok || order.Kind != ArgIdent || order.Ident != "desc" {
		t.Errorf("order = %+v", order)
	}

	sortby, ok := call.Named("sortby")
	if !ok || sortby.Kind != ArgVariable || sortby.Path.String() != "$p.date" {
		t.Errorf("sortby = %+v", sortby)
	}
}

func TestParse_Literals(t *testing.T) {
	ast := mustParse(t, `{{ excerpt("a \"q\"", -1.5, true, false, null, 'x') }}`)

	call := ast.Nodes[0].(*Call)

	want := []Value{
		String(`a "q"`), Number(-1.5), Bool(true), Bool(false), Null(), String("x"),
	}

	if len(call.Args) != len(want) {
		t.Fatalf("expected %d args, got %d", len(want), len(call.Args))
	}

	for i, a := range call.Args {
		if a.Kind != ArgLiteral || !a.Value.Equal(want[i]) {
			t.Errorf("arg %d = %+v, want %v", i, a, want[i])
		}
	}
}

func TestParse_QualifiedName(t *testing.T) {
	ast := mustParse(t, `{{ blog::tags($self) }}`)

	if call := ast.Nodes[0].(*Call); call.Name != "blog::tags" {
		t.Errorf("name = %q", call.Name)
	}
}

func TestParse_Blocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "end by label", input: `{{begin("body")}}x{{end("body")}}`},
		{name: "end by function", input: `{{begin("body")}}x{{end(begin)}}`},
		{name: "end bare", input: `{{begin("body")}}x{{end()}}`},
		{name: "end ident", input: `{{for($i, $xs)}}x{{end(for)}}`},
		{name: "end if family", input: `{{ifeq(1, 1)}}x{{end(if)}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast := mustParse(t, tt.input)

			if len(ast.Nodes) != 1 {
				t.Fatalf("expected 1 top-level node, got %d", len(ast.Nodes))
			}

			call := ast.Nodes[0].(*Call)
			if len(call.Body) != 1 {
				t.Fatalf("expected 1 body node, got %d", len(call.Body))
			}

			if txt, ok := call.Body[0].(*Text); !ok || txt.Text != "x" {
				t.Errorf("body = %+v", call.Body[0])
			}
		})
	}
}

func TestParse_Nested(t *testing.T) {
	ast := mustParse(t,
		`{{begin("body")}}{{for($p, $posts)}}<li>{{$p.title}}</li>{{end(for)}}{{end("body")}}`)

	begin := ast.Nodes[0].(*Call)
	loop := begin.Body[0].(*Call)

	if loop.Name != "for" || len(loop.Body) != 3 {
		t.Fatalf("loop = %s with %d nodes", loop.Name, len(loop.Body))
	}

	n := 0
	for range ast.Walk() {
		n++
	}

	if n != 5 {
		t.Errorf("Walk visited %d nodes, want 5", n)
	}

	calls := 0
	for range ast.Calls("for") {
		calls++
	}

	if calls != 1 {
		t.Errorf("Calls(for) = %d, want 1", calls)
	}
}

func TestParse_Else(t *testing.T) {
	tests := []struct {
		name  string
		input string
		body  string
		other string
	}{
		{
			name:  "inside block",
			input: `{{ifdefined($x)}}yes{{else()}}no{{end(ifdefined)}}`,
			body:  "yes",
			other: "no",
		},
		{
			name:  "after block",
			input: "{{ifdefined($x)}}yes{{end(ifdefined)}}\n{{else()}}no{{end(else)}}",
			body:  "yes",
			other: "no",
		},
		{
			name:  "after block bare end",
			input: `{{ifeq($a, "b")}}yes{{end(ifeq)}}{{else()}}no{{end()}}`,
			body:  "yes",
			other: "no",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast := mustParse(t, tt.input)

			if len(ast.Nodes) != 1 {
				t.Fatalf("expected 1 top-level node, got %d", len(ast.Nodes))
			}

			call := ast.Nodes[0].(*Call)
			if !call.HasElse {
				t.Fatal("expected else branch")
			}

			if got := (&AST{Nodes: call.Body}).String(); got != tt.body {
				t.Errorf("body = %q, want %q", got, tt.body)
			}

			if got := (&AST{Nodes: call.Else}).String(); got != tt.other {
				t.Errorf("else = %q, want %q", got, tt.other)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
		line  int
		col   int
	}{
		{
			name:  "unterminated",
			input: "ab\n{{ insert(",
			want:  ErrUnterminatedTag,
			line:  2, col: 1,
		},
		{
			name:  "unmatched begin",
			input: "<head>\n  {{begin(\"head\")}}<title>x</title>",
			want:  ErrUnmatchedBlock,
			line:  2, col: 3,
		},
		{
			name:  "mismatched end",
			input: `{{begin("head")}}{{for($i, $xs)}}{{end("head")}}`,
			want:  ErrUnmatchedBlock,
			line:  1, col: 18,
		},
		{
			name:  "end without open",
			input: `x{{end(for)}}`,
			want:  ErrUnexpectedEnd,
			line:  1, col: 2,
		},
		{
			name:  "argument order",
			input: `{{for($i, limit=2, $xs)}}{{end(for)}}`,
			want:  ErrArgumentOrder,
			line:  1, col: 20,
		},
		{
			name:  "unknown function",
			input: `{{ excrept($x, 2) }}`,
			want:  ErrUnknownFunction,
			line:  1, col: 1,
		},
		{
			name:  "else without if",
			input: `{{begin("a")}}{{else()}}{{end("a")}}`,
			want:  ErrElseWithoutIf,
			line:  1, col: 15,
		},
		{
			name:  "else after text",
			input: `{{ifeq(1, 2)}}{{end(ifeq)}}text{{else()}}{{end(else)}}`,
			want:  ErrElseWithoutIf,
			line:  1, col: 32,
		},
		{
			name:  "nested call",
			input: `{{ excerpt(dateformat($d, "%Y")) }}`,
			want:  ErrSyntax,
			line:  1, col: 12,
		},
		{
			name:  "empty tag",
			input: `{{ }}`,
			want:  ErrSyntax,
			line:  1, col: 1,
		},
		{
			name:  "missing parens",
			input: `{{ insert }}`,
			want:  ErrSyntax,
			line:  1, col: 11,
		},
		{
			name:  "bad path",
			input: `{{ $a..b }}`,
			want:  ErrInvalidPath,
			line:  1, col: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(t.Context(), tt.input,
				WithFunctions(testFunctions), WithName("page.html"))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}

			if e.Source() != "page.html" {
				t.Errorf("source = %q", e.Source())
			}

			pos, ok := e.Position()
			if !ok {
				t.Fatal("expected a position")
			}

			if pos.Line != tt.line || pos.Column != tt.col {
				t.Errorf("position = %d:%d, want %d:%d", pos.Line, pos.Column, tt.line, tt.col)
			}
		})
	}
}

func TestParse_UnknownSuggest(t *testing.T) {
	_, err := Parse(t.Context(), `{{ excrept($x, 2) }}`,
		WithFunctions(suggestingFunctions{testFunctions}))

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %v", err)
	}

	v, ok := e.Attr("suggest")
	if !ok || v.String() != "excerpt" {
		t.Errorf("suggest = %v (%v)", v, ok)
	}
}

type suggestingFunctions struct{ FunctionMap }

func (s suggestingFunctions) Suggest(string) []string { return []string{"excerpt"} }

func TestParse_NotStrict(t *testing.T) {
	ast, err := Parse(t.Context(), `{{ later($x) }}`,
		WithFunctions(testFunctions), WithStrict(false))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if call := ast.Nodes[0].(*Call); call.Block() {
		t.Error("unknown call should parse inline")
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	inputs := []string{
		`<p>{{$self.title}}</p>`,
		`{{begin("body")}}{{for($p, "posts/", limit=2, order="desc")}}{{$p.title}}{{end(for)}}{{end("body")}}`,
		`{{ifdefined($x)}}a{{else()}}b{{end(ifdefined)}}`,
		`text \{{ not a tag }}`,
	}

	for _, input := range inputs {
		first := mustParse(t, input).String()
		second := mustParse(t, first).String()

		if first != second {
			t.Errorf("format not stable:\n%s\n%s", first, second)
		}
	}
}

func TestParseReader(t *testing.T) {
	ast, err := ParseReader(t.Context(), strings.NewReader(`a{{$b}}c`), WithName("r.html"))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}

	if ast.Name != "r.html" || len(ast.Nodes) != 3 {
		t.Errorf("ast = %q with %d nodes", ast.Name, len(ast.Nodes))
	}

	boom := errors.New("boom")

	_, err = ParseReader(t.Context(), iotest.ErrReader(boom))
	if !errors.Is(err, ErrReadInput) || !errors.Is(err, boom) {
		t.Errorf("expected ErrReadInput wrapping boom, got %v", err)
	}
}
