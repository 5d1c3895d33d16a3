package lang

import (
	"errors"
	"testing"
)

func collect(t *testing.T, src string) ([]Token, error) {
	t.Helper()

	var toks []Token

	for tok, err := range Lex(src) {
		if err != nil {
			return toks, err
		}

		toks = append(toks, tok)
	}

	return toks, nil
}

func TestLex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "literal only",
			input: "<p>hello {world}</p>",
			want: []Token{
				{Kind: TokenLiteral, Text: "<p>hello {world}</p>", Pos: Position{0, 1, 1}},
			},
		},
		{
			name:  "tag between literals",
			input: "a{{ $x }}b",
			want: []Token{
				{Kind: TokenLiteral, Text: "a", Pos: Position{0, 1, 1}},
				{Kind: TokenTag, Text: " $x ", Pos: Position{1, 1, 2}},
				{Kind: TokenLiteral, Text: "b", Pos: Position{9, 1, 10}},
			},
		},
		{
			name:  "adjacent tags",
			input: "{{a()}}{{b()}}",
			want: []Token{
				{Kind: TokenTag, Text: "a()", Pos: Position{0, 1, 1}},
				{Kind: TokenTag, Text: "b()", Pos: Position{7, 1, 8}},
			},
		},
		{
			name:  "closing braces in string",
			input: `{{ f("}}") }}`,
			want: []Token{
				{Kind: TokenTag, Text: ` f("}}") `, Pos: Position{0, 1, 1}},
			},
		},
		{
			name:  "escaped quote in string",
			input: `{{ f("a\"}}") }}`,
			want: []Token{
				{Kind: TokenTag, Text: ` f("a\"}}") `, Pos: Position{0, 1, 1}},
			},
		},
		{
			name:  "escaped open",
			input: `x \{{ y }} z`,
			want: []Token{
				{Kind: TokenLiteral, Text: "x {{ y }} z", Pos: Position{0, 1, 1}},
			},
		},
		{
			name:  "line tracking",
			input: "a\nb {{ c() }}",
			want: []Token{
				{Kind: TokenLiteral, Text: "a\nb ", Pos: Position{0, 1, 1}},
				{Kind: TokenTag, Text: " c() ", Pos: Position{4, 2, 3}},
			},
		},
		{
			name:  "multibyte columns",
			input: "é{{x()}}",
			want: []Token{
				{Kind: TokenLiteral, Text: "é", Pos: Position{0, 1, 1}},
				{Kind: TokenTag, Text: "x()", Pos: Position{2, 1, 2}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collect(t, tt.input)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens %+v, want %d", len(got), got, len(tt.want))
			}

			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLex_Unterminated(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Position
	}{
		{name: "bare open", input: "abc{{ x", want: Position{3, 1, 4}},
		{name: "open quote", input: `{{ f("}}) }}`, want: Position{0, 1, 1}},
		{name: "second line", input: "{{a()}}\n  {{", want: Position{10, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collect(t, tt.input)
			if !errors.Is(err, ErrUnterminatedTag) {
				t.Fatalf("expected ErrUnterminatedTag, got %v", err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}

			pos, ok := e.Position()
			if !ok || pos != tt.want {
				t.Errorf("position = %+v (%v), want %+v", pos, ok, tt.want)
			}
		})
	}
}

func TestLex_StopEarly(t *testing.T) {
	n := 0

	for range Lex("a{{b()}}c{{d()}}") {
		n++
		if n == 2 {
			break
		}
	}

	if n != 2 {
		t.Errorf("expected to stop after 2 tokens, got %d", n)
	}
}
