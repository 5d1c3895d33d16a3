package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/klauspost/readahead"
)

// ParseReader reads r to the end and parses it as a template. Reads run
// ahead of the copy in their own goroutine.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*AST, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(ctx, string(data), opts...)
}

// Parse parses a template.
//
// Calls whose name the configured [Functions] classify as blocks collect
// the following nodes as their body until a matching end(). Conditional
// bodies may be divided by else(), and an else() directly following a
// closed conditional opens a block, closed by end(else), that becomes that
// conditional's else branch.
func Parse(ctx context.Context, src string, opts ...Option) (*AST, error) {
	ast := new(AST)
	applyOptions(ast, opts...)

	p := &parser{ast: ast}

	for tok, err := range Lex(src) {
		if err != nil {
			return nil, p.fail(err)
		}

		switch tok.Kind {
		case TokenLiteral:
			p.append(&Text{Text: tok.Text, Pos: tok.Pos})

		case TokenTag:
			err := p.tag(tok)
			if err != nil {
				return nil, p.fail(err)
			}
		}
	}

	if n := len(p.frames); n > 0 {
		open := p.frames[n-1].call

		return nil, p.fail(ErrUnmatchedBlock.WithPosition(open.Pos).
			With(slog.String("name", open.Name)))
	}

	ast.logger.TraceContext(ctx, "parse complete",
		slog.String("name", ast.Name),
		slog.Int("nodes", len(ast.Nodes)))

	return ast, nil
}

// frame is an open block awaiting its end().
type frame struct {
	call     *Call
	inElse   bool
	detached bool // else() block filling the preceding conditional
}

func (f *frame) matches(label string) bool {
	switch {
	case label == "" || label == f.call.Name:
		return true
	case f.detached && label == ElseName:
		return true
	case f.call.Kind == FunctionConditional:
		return label == "if"
	default:
		return label == f.call.Label()
	}
}

type parser struct {
	ast    *AST
	frames []*frame
}

func (p *parser) fail(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = WrapError(err)
	}

	if p.ast.Name != "" {
		e = e.WithSource(p.ast.Name)
	}

	return e
}

// target returns the node list receiving new nodes.
func (p *parser) target() *[]Node {
	if len(p.frames) == 0 {
		return &p.ast.Nodes
	}

	f := p.frames[len(p.frames)-1]
	if f.inElse || f.detached {
		return &f.call.Else
	}

	return &f.call.Body
}

func (p *parser) append(n Node) {
	t := p.target()
	*t = append(*t, n)
}

func (p *parser) tag(tok Token) error {
	tp := &tagParser{
		cursor: cursor{
			src:  tok.Text,
			base: tok.Pos.Offset + len(tagOpen),
			line: tok.Pos.Line,
			col:  tok.Pos.Column + len(tagOpen),
		},
	}

	node, err := tp.parse(tok.Pos)
	if err != nil {
		return err
	}

	call, ok := node.(*Call)
	if !ok {
		p.append(node)

		return nil
	}

	switch call.Name {
	case EndName:
		return p.end(call)
	case ElseName:
		return p.elseTag(call)
	}

	if p.ast.functions != nil {
		kind, ok := p.ast.functions.Kind(call.Name)
		if !ok && p.ast.strict {
			return p.unknown(call)
		}

		call.Kind = kind
	}

	p.append(call)

	if call.Block() {
		p.frames = append(p.frames, &frame{call: call})
	}

	return nil
}

func (p *parser) unknown(call *Call) error {
	err := ErrUnknownFunction.WithPosition(call.Pos).
		With(slog.String("name", call.Name))

	if s, ok := p.ast.functions.(Suggester); ok {
		if alt := s.Suggest(call.Name); len(alt) > 0 {
			err = err.With(slog.String("suggest", strings.Join(alt, ", ")))
		}
	}

	return err
}

func (p *parser) end(call *Call) error {
	if len(p.frames) == 0 {
		return ErrUnexpectedEnd.WithPosition(call.Pos)
	}

	if len(call.Args) > 1 {
		return ErrSyntax.WithPosition(call.Pos).
			With(slog.String("reason", "end takes at most one argument"))
	}

	label := call.Label()
	if len(call.Args) == 1 && label == "" {
		return ErrSyntax.WithPosition(call.Pos).
			With(slog.String("reason", "end argument must be a name"))
	}

	f := p.frames[len(p.frames)-1]
	if !f.matches(label) {
		return ErrUnmatchedBlock.WithPosition(f.call.Pos).
			With(
				slog.String("name", f.call.Name),
				slog.String("end", label),
				slog.String("end_at", call.Pos.String()),
			)
	}

	f.call.EndPos = call.Pos
	p.frames = p.frames[:len(p.frames)-1]

	return nil
}

func (p *parser) elseTag(call *Call) error {
	if len(call.Args) > 0 {
		return ErrSyntax.WithPosition(call.Pos).
			With(slog.String("reason", "else takes no arguments"))
	}

	if n := len(p.frames); n > 0 {
		f := p.frames[n-1]
		if f.call.Kind == FunctionConditional && !f.inElse && !f.detached {
			f.inElse = true
			f.call.HasElse = true

			return nil
		}
	}

	// Look back past whitespace for a closed conditional.
	nodes := p.target()

	i := len(*nodes) - 1
	for ; i >= 0; i-- {
		t, ok := (*nodes)[i].(*Text)
		if !ok || strings.TrimSpace(t.Text) != "" {
			break
		}
	}

	if i >= 0 {
		if c, ok := (*nodes)[i].(*Call); ok &&
			c.Kind == FunctionConditional && !c.HasElse {
			*nodes = (*nodes)[:i+1]
			c.HasElse = true
			p.frames = append(p.frames, &frame{call: c, detached: true})

			return nil
		}
	}

	return ErrElseWithoutIf.WithPosition(call.Pos)
}

// tagParser parses the interior of a single tag.
type tagParser struct {
	cursor
}

// parse parses: Variable | Name '(' Args? ')'.
func (tp *tagParser) parse(at Position) (Node, error) {
	tp.skipSpace()

	if tp.eof() {
		return nil, ErrSyntax.WithPosition(at).
			With(slog.String("reason", "empty tag"))
	}

	if tp.peek() == '$' {
		path, err := tp.path()
		if err != nil {
			return nil, err
		}

		if err := tp.trailing(); err != nil {
			return nil, err
		}

		return &Variable{Path: path, Pos: at}, nil
	}

	name, err := tp.name()
	if err != nil {
		return nil, err
	}

	tp.skipSpace()

	if !tp.expect('(') {
		return nil, ErrSyntax.WithPosition(tp.position()).
			With(slog.String("expected", "("), slog.String("name", name))
	}

	args, err := tp.args()
	if err != nil {
		return nil, err
	}

	if err := tp.trailing(); err != nil {
		return nil, err
	}

	return &Call{Name: name, Args: args, Pos: at}, nil
}

func (tp *tagParser) trailing() error {
	tp.skipSpace()

	if !tp.eof() {
		return ErrSyntax.WithPosition(tp.position()).
			With(slog.String("unexpected", tp.src[tp.off:]))
	}

	return nil
}

// name parses: Identifier ('::' Identifier)?.
func (tp *tagParser) name() (string, error) {
	name, err := tp.ident()
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(tp.src[tp.off:], "::") {
		return name, nil
	}

	tp.advanceTo(tp.off + 2)

	fn, err := tp.ident()
	if err != nil {
		return "", err
	}

	return name + "::" + fn, nil
}

// args parses a comma-separated argument list through the closing ')'.
func (tp *tagParser) args() ([]Arg, error) {
	args := make([]Arg, 0)

	tp.skipSpace()

	if tp.expect(')') {
		return args, nil
	}

	named := false

	for {
		tp.skipSpace()

		arg, err := tp.arg()
		if err != nil {
			return nil, err
		}

		switch {
		case arg.Name == "" && named:
			return nil, ErrArgumentOrder.WithPosition(arg.Pos)

		case arg.Name != "":
			for _, prev := range args {
				if prev.Name == arg.Name {
					return nil, ErrSyntax.WithPosition(arg.Pos).
						With(slog.String("duplicate", arg.Name))
				}
			}

			named = true
		}

		args = append(args, arg)

		tp.skipSpace()

		switch {
		case tp.expect(','):
		case tp.expect(')'):
			return args, nil
		case tp.eof():
			return nil, ErrSyntax.WithPosition(tp.position()).
				With(slog.String("expected", ")"))
		default:
			return nil, ErrSyntax.WithPosition(tp.position()).
				With(slog.String("expected", ", or )"))
		}
	}
}

// arg parses: Value | Identifier '=' Value.
func (tp *tagParser) arg() (Arg, error) {
	pos := tp.position()

	if !isIdentifierStart(tp.peek()) {
		return tp.value()
	}

	id, err := tp.ident()
	if err != nil {
		return Arg{}, err
	}

	tp.skipSpace()

	switch tp.peek() {
	case '=':
		tp.advanceTo(tp.off + 1)
		tp.skipSpace()

		arg, err := tp.value()
		if err != nil {
			return Arg{}, err
		}

		arg.Name = id
		arg.Pos = pos

		return arg, nil

	case '(':
		return Arg{}, ErrSyntax.WithPosition(pos).
			With(
				slog.String("reason", "function calls cannot be arguments"),
				slog.String("name", id),
			)
	}

	return identArg(id, pos), nil
}

// value parses: String | Number | Variable | Identifier.
func (tp *tagParser) value() (Arg, error) {
	pos := tp.position()

	switch c := tp.peek(); {
	case c == '"' || c == '\'':
		s, err := tp.str()
		if err != nil {
			return Arg{}, err
		}

		return Arg{Kind: ArgLiteral, Value: String(s), Pos: pos}, nil

	case c == '$':
		path, err := tp.path()
		if err != nil {
			return Arg{}, err
		}

		return Arg{Kind: ArgVariable, Path: path, Pos: pos}, nil

	case isDigit(c) || c == '-' || c == '+' || c == '.':
		n, err := tp.number()
		if err != nil {
			return Arg{}, err
		}

		return Arg{Kind: ArgLiteral, Value: Number(n), Pos: pos}, nil

	case isIdentifierStart(c):
		id, err := tp.ident()
		if err != nil {
			return Arg{}, err
		}

		if tp.skipSpace(); tp.peek() == '(' {
			return Arg{}, ErrSyntax.WithPosition(pos).
				With(
					slog.String("reason", "function calls cannot be arguments"),
					slog.String("name", id),
				)
		}

		return identArg(id, pos), nil

	case tp.eof():
		return Arg{}, ErrSyntax.WithPosition(pos).
			With(slog.String("expected", "argument"))

	default:
		return Arg{}, ErrSyntax.WithPosition(pos).
			With(slog.String("unexpected", string(c)))
	}
}

// identArg classifies a bare word: true, false, and null are literals.
func identArg(id string, pos Position) Arg {
	switch id {
	case "true":
		return Arg{Kind: ArgLiteral, Value: Bool(true), Pos: pos}
	case "false":
		return Arg{Kind: ArgLiteral, Value: Bool(false), Pos: pos}
	case "null":
		return Arg{Kind: ArgLiteral, Value: Null(), Pos: pos}
	default:
		return Arg{Kind: ArgIdent, Ident: id, Pos: pos}
	}
}

// str parses a quoted string with backslash escapes.
func (tp *tagParser) str() (string, error) {
	pos := tp.position()
	quote := tp.peek()
	tp.advanceTo(tp.off + 1)

	var sb strings.Builder

	for !tp.eof() {
		c := tp.peek()

		switch c {
		case quote:
			tp.advanceTo(tp.off + 1)

			return sb.String(), nil

		case '\\':
			tp.advanceTo(tp.off + 1)

			if tp.eof() {
				break
			}

			switch e := tp.peek(); e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(e)
			}

			tp.advanceTo(tp.off + 1)

		default:
			sb.WriteByte(c)
			tp.advanceTo(tp.off + 1)
		}
	}

	return "", ErrSyntax.WithPosition(pos).
		With(slog.String("reason", "unterminated string"))
}

// number parses: [+-]? Digits ('.' Digits)?.
func (tp *tagParser) number() (float64, error) {
	pos := tp.position()
	start := tp.off

	if c := tp.peek(); c == '-' || c == '+' {
		tp.advanceTo(tp.off + 1)
	}

	for !tp.eof() && (isDigit(tp.peek()) || tp.peek() == '.') {
		tp.advanceTo(tp.off + 1)
	}

	text := tp.src[start:tp.off]

	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, ErrSyntax.WithPosition(pos).
			With(slog.String("number", text))
	}

	return n, nil
}

// path parses: '$' Segment ('.' Segment)*.
func (tp *tagParser) path() (Path, error) {
	pos := tp.position()
	start := tp.off

	tp.advanceTo(tp.off + 1)

	for !tp.eof() && (isIdentifierContinue(tp.peek()) || tp.peek() == '.') {
		tp.advanceTo(tp.off + 1)
	}

	path, err := ParsePath(tp.src[start:tp.off])
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return Path{}, e.WithPosition(pos)
		}

		return Path{}, err
	}

	return path, nil
}

// ident parses: [A-Za-z_] [A-Za-z0-9_-]*.
func (tp *tagParser) ident() (string, error) {
	if !isIdentifierStart(tp.peek()) {
		return "", ErrSyntax.WithPosition(tp.position()).
			With(slog.String("expected", "identifier"))
	}

	start := tp.off

	for !tp.eof() && isIdentifierContinue(tp.peek()) {
		tp.advanceTo(tp.off + 1)
	}

	return tp.src[start:tp.off], nil
}

// peek returns the current byte, or 0 at end of input.
func (tp *tagParser) peek() byte {
	if tp.eof() {
		return 0
	}

	return tp.src[tp.off]
}

// expect consumes ch if it is the current byte.
func (tp *tagParser) expect(ch byte) bool {
	if tp.peek() != ch || tp.eof() {
		return false
	}

	tp.advanceTo(tp.off + 1)

	return true
}

func (tp *tagParser) skipSpace() {
	for !tp.eof() && isSpace(tp.peek()) {
		tp.advanceTo(tp.off + 1)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentifierStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentifierContinue(c byte) bool {
	return isIdentifierStart(c) || isDigit(c) || c == '-'
}
