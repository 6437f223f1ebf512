package lexer

import (
	"testing"

	"github.com/angel-lang/angel/internal/token"
)

type tok struct {
	typ    token.Type
	lexeme string
}

func collect(t *testing.T, input string) []tok {
	t.Helper()
	l := New(input)
	var out []tok
	for i := 0; i < 10000; i++ {
		next := l.NextToken()
		out = append(out, tok{next.Type, next.Lexeme})
		if next.Type == token.EOF {
			return out
		}
	}
	t.Fatalf("lexer did not terminate on %q", input)
	return nil
}

func expectTokens(t *testing.T, input string, want []tok) {
	t.Helper()
	got := collect(t, input)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d\ngot: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = {%v %q}, want {%v %q}",
				i, got[i].typ, got[i].lexeme, want[i].typ, want[i].lexeme)
		}
	}
}

func TestDeclarations(t *testing.T) {
	expectTokens(t, "let x: I8 = -5\n", []tok{
		{token.LET, "let"},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.IDENT, "I8"},
		{token.ASSIGN, "="},
		{token.MINUS, "-"},
		{token.INT, "5"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	})
}

func TestOperators(t *testing.T) {
	expectTokens(t, "a == b != c <= d >= e -> f += g", []tok{
		{token.IDENT, "a"},
		{token.EQ, "=="},
		{token.IDENT, "b"},
		{token.NEQ, "!="},
		{token.IDENT, "c"},
		{token.LE, "<="},
		{token.IDENT, "d"},
		{token.GE, ">="},
		{token.IDENT, "e"},
		{token.ARROW, "->"},
		{token.IDENT, "f"},
		{token.PLUS_ASSIGN, "+="},
		{token.IDENT, "g"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	})
}

func TestKeywords(t *testing.T) {
	expectTokens(t, "fun struct interface algebraic extension if elif else while for in is where and or as ref True False", []tok{
		{token.FUN, "fun"},
		{token.STRUCT, "struct"},
		{token.INTERFACE, "interface"},
		{token.ALGEBRAIC, "algebraic"},
		{token.EXTENSION, "extension"},
		{token.IF, "if"},
		{token.ELIF, "elif"},
		{token.ELSE, "else"},
		{token.WHILE, "while"},
		{token.FOR, "for"},
		{token.IN, "in"},
		{token.IS, "is"},
		{token.WHERE, "where"},
		{token.AND, "and"},
		{token.OR, "or"},
		{token.AS, "as"},
		{token.REF, "ref"},
		{token.TRUE, "True"},
		{token.FALSE, "False"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	})
}

func TestIndentation(t *testing.T) {
	input := "fun f():\n    if x:\n        return 1\n    return 2\n"
	expectTokens(t, input, []tok{
		{token.FUN, "fun"},
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.NEWLINE, "\\n"},
		{token.INDENT, ""},
		{token.IF, "if"},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.NEWLINE, "\\n"},
		{token.INDENT, ""},
		{token.RETURN, "return"},
		{token.INT, "1"},
		{token.NEWLINE, "\\n"},
		{token.DEDENT, ""},
		{token.RETURN, "return"},
		{token.INT, "2"},
		{token.NEWLINE, "\\n"},
		{token.DEDENT, ""},
		{token.EOF, ""},
	})
}

func TestBlankAndCommentLinesProduceNothing(t *testing.T) {
	input := "let a = 1\n\n// comment line\n    // indented comment\nlet b = 2\n"
	expectTokens(t, input, []tok{
		{token.LET, "let"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.INT, "1"},
		{token.NEWLINE, "\\n"},
		{token.LET, "let"},
		{token.IDENT, "b"},
		{token.ASSIGN, "="},
		{token.INT, "2"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	})
}

func TestTrailingCommentSkipped(t *testing.T) {
	expectTokens(t, "let a = 1 // meaning\n", []tok{
		{token.LET, "let"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.INT, "1"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	})
}

func TestBracketsSuppressNewlines(t *testing.T) {
	input := "f(\n    1,\n    2\n)\n"
	expectTokens(t, input, []tok{
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	})
}

func TestLiterals(t *testing.T) {
	expectTokens(t, `"hi\n" 'c' '\t' 3.14 42`, []tok{
		{token.STRING, "hi\n"},
		{token.CHAR, "c"},
		{token.CHAR, "\t"},
		{token.FLOAT, "3.14"},
		{token.INT, "42"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	})
}

func TestEmptyDictLiteral(t *testing.T) {
	expectTokens(t, "[:]", []tok{
		{token.LBRACKET, "["},
		{token.COLON, ":"},
		{token.RBRACKET, "]"},
		{token.NEWLINE, "\\n"},
		{token.EOF, ""},
	})
}

func TestMissingFinalNewline(t *testing.T) {
	expectTokens(t, "if x:\n    break", []tok{
		{token.IF, "if"},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.NEWLINE, "\\n"},
		{token.INDENT, ""},
		{token.BREAK, "break"},
		{token.NEWLINE, "\\n"},
		{token.DEDENT, ""},
		{token.EOF, ""},
	})
}

func TestBadIndentation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not a multiple of four", "if x:\n   return 1\n"},
		{"jump of two levels", "if x:\n        return 1\n"},
		{"dedent to unknown level", "if x:\n    if y:\n        break\n      break\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, got := range collect(t, tt.input) {
				if got.typ == token.ILLEGAL {
					return
				}
			}
			t.Errorf("no ILLEGAL token for %q", tt.input)
		})
	}
}

func TestUnterminatedString(t *testing.T) {
	got := collect(t, `let s = "oops`)
	found := false
	for _, tk := range got {
		if tk.typ == token.ILLEGAL {
			found = true
		}
	}
	if !found {
		t.Errorf("no ILLEGAL token for unterminated string")
	}
}

func TestPositions(t *testing.T) {
	l := New("let x = 1\nlet y = 2\n")
	var last token.Token
	for {
		tk := l.NextToken()
		if tk.Type == token.IDENT && tk.Lexeme == "y" {
			last = tk
			break
		}
		if tk.Type == token.EOF {
			t.Fatal("y not reached")
		}
	}
	if last.Line != 2 || last.Column != 5 {
		t.Errorf("y at %d:%d, want 2:5", last.Line, last.Column)
	}
}
