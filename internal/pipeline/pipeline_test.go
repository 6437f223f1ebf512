package pipeline

import (
	"strings"
	"testing"

	"github.com/angel-lang/angel/internal/diagnostics"
)

func TestCompile(t *testing.T) {
	out, err := Compile("main.angel", `fun twice(x: I32) -> I32:
    return x * 2
print(twice(21))
`)
	if err != nil {
		t.Fatalf("compile failed: %s", err.Message)
	}
	for _, frag := range []string{"int main() {", "twice(21)", "std::int_fast32_t twice(std::int_fast32_t x) {"} {
		if !strings.Contains(out, frag) {
			t.Errorf("output missing %q", frag)
		}
	}
}

func TestCompileParseError(t *testing.T) {
	_, err := Compile("main.angel", "let = 5\n")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if err.Code != diagnostics.SyntaxError {
		t.Errorf("got code %v, want SyntaxError", err.Code)
	}
	if err.Line != 1 {
		t.Errorf("got line %d, want 1", err.Line)
	}
}

func TestCompileAnalysisError(t *testing.T) {
	_, err := Compile("main.angel", "print(missing)\n")
	if err == nil {
		t.Fatal("expected an analysis error")
	}
	if err.Code != diagnostics.UndefinedName {
		t.Errorf("got code %v, want UndefinedName", err.Code)
	}
}

func TestParseProcessorStampsFilePath(t *testing.T) {
	ctx := (&ParseProcessor{}).Process(&Context{FilePath: "app.angel", Source: "let x = 1\n"})
	if ctx.Err != nil {
		t.Fatalf("unexpected error: %s", ctx.Err.Message)
	}
	if ctx.Program == nil || ctx.Program.File != "app.angel" {
		t.Error("parsed program should carry the source file path")
	}
}

type recordingProcessor struct {
	ran bool
}

func (r *recordingProcessor) Process(ctx *Context) *Context {
	r.ran = true
	return ctx
}

func TestRunStopsAtFirstError(t *testing.T) {
	downstream := &recordingProcessor{}
	ctx := New(&ParseProcessor{}, downstream).Run(&Context{Source: "let = 5\n"})
	if ctx.Err == nil {
		t.Fatal("expected a parse error")
	}
	if downstream.ran {
		t.Error("stages after a failed one must not run")
	}
}

func TestStagesFillTheContext(t *testing.T) {
	ctx := New(
		&ParseProcessor{},
		&AnalyzeProcessor{},
		&MonomorphizeProcessor{},
		&GenerateProcessor{},
	).Run(&Context{FilePath: "main.angel", Source: "let x = 1\n"})
	if ctx.Err != nil {
		t.Fatalf("unexpected error: %s", ctx.Err.Message)
	}
	if ctx.Program == nil || ctx.Analysis == nil || ctx.Instances == nil || ctx.Output == "" {
		t.Error("every stage should populate its context slot")
	}
}
