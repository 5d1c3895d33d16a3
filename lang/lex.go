package lang

import (
	"iter"
	"log/slog"
	"strings"
)

// TokenKind distinguishes literal text from tags.
type TokenKind uint8

const (
	// TokenLiteral is text outside of tags, emitted verbatim.
	TokenLiteral TokenKind = iota
	// TokenTag is the interior of a {{ ... }} tag.
	TokenTag
)

func (k TokenKind) String() string {
	if k == TokenTag {
		return "tag"
	}

	return "literal"
}

// Token is a lexical unit of a template.
// For tags, Text is the raw interior between the braces and Pos is the
// location of the opening "{{".
type Token struct {
	Text string
	Pos  Position
	Kind TokenKind
}

const (
	tagOpen   = "{{"
	tagClose  = "}}"
	tagEscape = `\{{`
)

// Lex splits src into literal and tag tokens.
//
// The sequence is lazy and single-use. A `\{{` in literal text produces a
// literal "{{". Quoted strings inside a tag may contain "}}" without closing
// it. A "{{" with no closing "}}" yields [ErrUnterminatedTag] positioned at
// the opening braces and ends the sequence.
func Lex(src string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		cur := cursor{src: src, line: 1, col: 1}

		var lit strings.Builder

		litPos := cur.position()

		flush := func() bool {
			if lit.Len() == 0 {
				return true
			}

			tok := Token{Kind: TokenLiteral, Text: lit.String(), Pos: litPos}
			lit.Reset()

			return yield(tok, nil)
		}

		for !cur.eof() {
			rest := src[cur.off:]

			switch {
			case strings.HasPrefix(rest, tagEscape):
				if lit.Len() == 0 {
					litPos = cur.position()
				}

				lit.WriteString(tagOpen)
				cur.advanceTo(cur.off + len(tagEscape))

			case strings.HasPrefix(rest, tagOpen):
				if !flush() {
					return
				}

				open := cur.position()

				end, ok := scanTag(src, cur.off+len(tagOpen))
				if !ok {
					yield(Token{}, ErrUnterminatedTag.WithPosition(open).
						With(slog.String("expected", tagClose)))

					return
				}

				tok := Token{
					Kind: TokenTag,
					Text: src[cur.off+len(tagOpen) : end],
					Pos:  open,
				}

				cur.advanceTo(end + len(tagClose))

				if !yield(tok, nil) {
					return
				}

				litPos = cur.position()

			default:
				if lit.Len() == 0 {
					litPos = cur.position()
				}

				// Copy up to the next byte that could start a tag or escape.
				next := strings.IndexAny(rest[1:], `{\`)
				if next < 0 {
					next = len(rest)
				} else {
					next++
				}

				lit.WriteString(rest[:next])
				cur.advanceTo(cur.off + next)
			}
		}

		flush()
	}
}

// scanTag returns the offset of the "}}" closing the tag whose interior
// starts at off, skipping quoted strings.
func scanTag(src string, off int) (int, bool) {
	var quote byte

	for i := off; i < len(src); i++ {
		c := src[i]

		switch {
		case quote != 0:
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}

		case c == '"' || c == '\'':
			quote = c

		case c == '}' && i+1 < len(src) && src[i+1] == '}':
			return i, true
		}
	}

	return 0, false
}

// cursor tracks a byte offset together with its 1-based line and column.
// Columns count runes. Offsets reported by position are shifted by base when
// src is a fragment of a larger input.
type cursor struct {
	src  string
	base int
	off  int
	line int
	col  int
}

func (c *cursor) eof() bool { return c.off >= len(c.src) }

func (c *cursor) position() Position {
	return Position{Offset: c.base + c.off, Line: c.line, Column: c.col}
}

func (c *cursor) advanceTo(n int) {
	n = min(n, len(c.src))

	for ; c.off < n; c.off++ {
		switch b := c.src[c.off]; {
		case b == '\n':
			c.line++
			c.col = 1
		case b&0xC0 != 0x80:
			c.col++
		}
	}
}
