package lexer

import (
	"testing"

	"github.com/cwbudde/dws-front/internal/token"
)

func tokenize(t *testing.T, input string) []token.Token {
	t.Helper()
	l, err := New(input)
	if err != nil {
		t.Fatalf("New(%q): %v", input, err)
	}
	toks := l.Tokenize()
	if errs := l.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected lexical errors for %q: %v", input, errs)
	}
	return toks
}

func TestTokenize(t *testing.T) {
	input := `program p is
variable x: integer;
begin
	x := x + 10;
end program.`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.PROGRAM, "program"},
		{token.IDENT, "p"},
		{token.IS, "is"},
		{token.VARIABLE, "variable"},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.INTEGER, "integer"},
		{token.SEMICOLON, ";"},
		{token.BEGIN, "begin"},
		{token.IDENT, "x"},
		{token.ASSIGN, ":="},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.NUMBER, "10"},
		{token.SEMICOLON, ";"},
		{token.END, "end"},
		{token.PROGRAM, "program"},
		{token.DOT, "."},
		{token.EOF, ""},
	}

	toks := tokenize(t, input)
	if len(toks) != len(tests) {
		t.Fatalf("token count wrong. expected=%d, got=%d", len(tests), len(toks))
	}

	for i, tt := range tests {
		tok := toks[i]
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywordsCaseInsensitive(t *testing.T) {
	input := `PROGRAM Program pRoGrAm BEGIN End IF then ELSE FOR Return NOT
		Integer FLOAT String BOOL True FALSE Global PROCEDURE Variable is`

	expected := []token.Type{
		token.PROGRAM, token.PROGRAM, token.PROGRAM, token.BEGIN, token.END,
		token.IF, token.THEN, token.ELSE, token.FOR, token.RETURN, token.NOT,
		token.INTEGER, token.FLOAT, token.STRING_TYPE, token.BOOL,
		token.TRUE, token.FALSE, token.GLOBAL, token.PROCEDURE, token.VARIABLE,
		token.IS, token.EOF,
	}

	toks := tokenize(t, input)
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("tokens[%d]: expected %s, got %s (%q)", i, want, toks[i].Type, toks[i].Literal)
		}
	}
}

func TestIdentifierKeepsCase(t *testing.T) {
	toks := tokenize(t, "FooBar_9")
	if toks[0].Type != token.IDENT {
		t.Fatalf("expected IDENT, got %s", toks[0].Type)
	}
	if toks[0].Literal != "FooBar_9" {
		t.Errorf("identifier payload should keep source case, got %q", toks[0].Literal)
	}
}

func TestCompoundSymbols(t *testing.T) {
	input := ":= == != <= >= < > :"
	expected := []struct {
		typ token.Type
		lit string
	}{
		{token.ASSIGN, ":="},
		{token.EQ, "=="},
		{token.NOT_EQ, "!="},
		{token.LESS_EQ, "<="},
		{token.GREATER_EQ, ">="},
		{token.LESS, "<"},
		{token.GREATER, ">"},
		{token.COLON, ":"},
		{token.EOF, ""},
	}

	toks := tokenize(t, input)
	for i, want := range expected {
		if toks[i].Type != want.typ || toks[i].Literal != want.lit {
			t.Errorf("tokens[%d]: expected %s %q, got %s %q",
				i, want.typ, want.lit, toks[i].Type, toks[i].Literal)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input string
		lit   string
	}{
		{"42", "42"},
		{"1_000_000", "1_000_000"},
		{"3.14", "3.14"},
		{"0.5", "0.5"},
		{"1_0.2_5", "1_0.2_5"},
	}

	for _, tt := range tests {
		toks := tokenize(t, tt.input)
		if toks[0].Type != token.NUMBER {
			t.Errorf("%q: expected NUMBER, got %s", tt.input, toks[0].Type)
		}
		if toks[0].Literal != tt.lit {
			t.Errorf("%q: payload %q, want %q", tt.input, toks[0].Literal, tt.lit)
		}
	}
}

func TestStringLiteral(t *testing.T) {
	toks := tokenize(t, `"hello world	tab"`)
	if toks[0].Type != token.STRING {
		t.Fatalf("expected STRING, got %s", toks[0].Type)
	}
	if toks[0].Literal != "hello world	tab" {
		t.Errorf("payload wrong: %q", toks[0].Literal)
	}
}

func TestLexicalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"second dot in number", "1.2.3"},
		{"unterminated string", `"never closed`},
		{"lone bang", "a ! b"},
		{"lone equals", "a = b"},
		{"unrecognized symbol", "a # b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.input)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			l.Tokenize()
			if len(l.Errors()) == 0 {
				t.Errorf("expected lexical error for %q, got none", tt.input)
			}
		})
	}
}

// The emitted token sequence ends with exactly one EOF, whatever the
// input.
func TestSingleTrailingEOF(t *testing.T) {
	inputs := []string{"", "   \n\t ", "x", "x y z", "1 + 2", "// only a comment\n"}
	for _, input := range inputs {
		toks := tokenize(t, input)
		if len(toks) == 0 {
			t.Fatalf("%q: no tokens emitted", input)
		}
		eofs := 0
		for _, tok := range toks {
			if tok.Type == token.EOF {
				eofs++
			}
		}
		if eofs != 1 || toks[len(toks)-1].Type != token.EOF {
			t.Errorf("%q: want exactly one trailing EOF, got %d EOF(s)", input, eofs)
		}
	}
}

func TestCommentsStrippedBeforeLexing(t *testing.T) {
	toks := tokenize(t, "x /* comment /* nested */ still */ := 1")
	expected := []token.Type{token.IDENT, token.ASSIGN, token.NUMBER, token.EOF}
	if len(toks) != len(expected) {
		t.Fatalf("token count: want %d, got %d", len(expected), len(toks))
	}
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("tokens[%d]: expected %s, got %s", i, want, toks[i].Type)
		}
	}
}

func TestPositions(t *testing.T) {
	toks := tokenize(t, "x\n  y")
	if toks[0].Pos.Line != 1 || toks[0].Pos.Column != 1 {
		t.Errorf("x at %d:%d, want 1:1", toks[0].Pos.Line, toks[0].Pos.Column)
	}
	if toks[1].Pos.Line != 2 || toks[1].Pos.Column != 3 {
		t.Errorf("y at %d:%d, want 2:3", toks[1].Pos.Line, toks[1].Pos.Column)
	}
}
