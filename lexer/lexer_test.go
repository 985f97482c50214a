package lexer

import (
	"testing"

	"github.com/dr8co/vsc/token"
)

// TestNextToken checks that the lexer correctly recognizes every token kind used by
// a small ScriptLang snippet, including case-insensitive keywords and the newline
// statement terminator.
func TestNextToken(t *testing.T) {
	input := `SCRIPT_NAME test
proc Main()
	INT x = 5
	x += 1
	IF x > 3
		x = x - 1
	ENDIF
ENDPROC
// a comment
CONST FLOAT pi = 3.14
STRUCT P
	FLOAT x, y
ENDSTRUCT
"foo bar"
'single'
<<1.0, 2.0>>
0x1F
`

	tests := []struct {
		expectedKind    token.Kind
		expectedLiteral string
	}{
		{token.SCRIPT_NAME, "SCRIPT_NAME"},
		{token.IDENT, "test"},
		{token.NEWLINE, "\\n"},
		{token.PROC, "proc"},
		{token.IDENT, "Main"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\\n"},
		{token.INT_KW, "INT"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.NEWLINE, "\\n"},
		{token.IDENT, "x"},
		{token.PLUS_EQ, "+="},
		{token.INT, "1"},
		{token.NEWLINE, "\\n"},
		{token.IF, "IF"},
		{token.IDENT, "x"},
		{token.GT, ">"},
		{token.INT, "3"},
		{token.NEWLINE, "\\n"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.IDENT, "x"},
		{token.MINUS, "-"},
		{token.INT, "1"},
		{token.NEWLINE, "\\n"},
		{token.ENDIF, "ENDIF"},
		{token.NEWLINE, "\\n"},
		{token.ENDPROC, "ENDPROC"},
		{token.NEWLINE, "\\n"},
		{token.NEWLINE, "\\n"},
		{token.CONST, "CONST"},
		{token.FLOAT_KW, "FLOAT"},
		{token.IDENT, "pi"},
		{token.ASSIGN, "="},
		{token.FLOAT, "3.14"},
		{token.NEWLINE, "\\n"},
		{token.STRUCT, "STRUCT"},
		{token.IDENT, "P"},
		{token.NEWLINE, "\\n"},
		{token.FLOAT_KW, "FLOAT"},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.NEWLINE, "\\n"},
		{token.ENDSTRUCT, "ENDSTRUCT"},
		{token.NEWLINE, "\\n"},
		{token.STRING, "foo bar"},
		{token.NEWLINE, "\\n"},
		{token.STRING, "single"},
		{token.NEWLINE, "\\n"},
		{token.LSHIFT2, "<<"},
		{token.FLOAT, "1.0"},
		{token.COMMA, ","},
		{token.FLOAT, "2.0"},
		{token.RSHIFT2, ">>"},
		{token.NEWLINE, "\\n"},
		{token.INT, "0x1F"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, want := range tests {
		got := l.NextToken()
		if got.Kind != want.expectedKind {
			t.Fatalf("tests[%d] - wrong kind. expected=%q, got=%q (literal %q)",
				i, want.expectedKind, got.Kind, got.Literal)
		}
		if got.Literal != want.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q",
				i, want.expectedLiteral, got.Literal)
		}
	}
}

// TestUnterminatedString ensures an unterminated string literal yields ILLEGAL
// rather than running off the end of the input.
func TestUnterminatedString(t *testing.T) {
	l := New(`"unterminated`)
	tok := l.NextToken()
	if tok.Kind != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Kind)
	}
}

// TestCaseInsensitiveKeywords confirms keywords are recognized regardless of case
// while identifiers keep their original spelling in Literal.
func TestCaseInsensitiveKeywords(t *testing.T) {
	l := New("While endWhile")
	tok := l.NextToken()
	if tok.Kind != token.WHILE || tok.Literal != "While" {
		t.Fatalf("expected WHILE/%q, got %s/%q", "While", tok.Kind, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Kind != token.ENDWHILE || tok.Literal != "endWhile" {
		t.Fatalf("expected ENDWHILE/%q, got %s/%q", "endWhile", tok.Kind, tok.Literal)
	}
}
