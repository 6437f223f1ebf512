package diagnostics

import (
	"strings"
	"testing"

	"github.com/angel-lang/angel/internal/token"
)

func TestErrorString(t *testing.T) {
	err := NewError(UndefinedName, token.Token{Line: 3, Column: 5}, "undefined name '%s'", "x")
	if got := err.Error(); got != "UndefinedName (line 3): undefined name 'x'" {
		t.Errorf("got %q", got)
	}
	bare := &Error{Code: SyntaxError, Message: "unexpected end of input"}
	if got := bare.Error(); got != "SyntaxError: unexpected end of input" {
		t.Errorf("got %q", got)
	}
}

func TestRenderPlain(t *testing.T) {
	err := NewError(TypeMismatch, token.Token{Line: 2, Column: 9}, "cannot assign String where I8 is expected")
	err.WithSource("let x: I8 = \"hi\"")
	got := err.Render(false)
	want := "TypeMismatch (line 2): cannot assign String where I8 is expected\n" +
		"    let x: I8 = \"hi\"\n" +
		"            ^"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderColor(t *testing.T) {
	err := NewError(SyntaxError, token.Token{Line: 1, Column: 1}, "unexpected token")
	got := err.Render(true)
	if !strings.HasPrefix(got, "\x1b[1m\x1b[31mSyntaxError\x1b[0m") {
		t.Errorf("code should be bold red: %q", got)
	}
	if strings.Count(got, "\x1b[0m") != 1 {
		t.Error("only the code is colored")
	}
}

func TestRenderCaretStaysInsideLine(t *testing.T) {
	err := &Error{Code: SyntaxError, Message: "m", Line: 1, Column: 40, SourceLine: "short"}
	if strings.Contains(err.Render(false), "^") {
		t.Error("caret beyond the source line must be suppressed")
	}
}
