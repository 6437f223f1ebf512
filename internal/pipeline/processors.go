package pipeline

import (
	"github.com/angel-lang/angel/internal/analyzer"
	"github.com/angel-lang/angel/internal/cppgen"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/mono"
	"github.com/angel-lang/angel/internal/parser"
	"github.com/angel-lang/angel/internal/token"
)

type ParseProcessor struct{}

func (pp *ParseProcessor) Process(ctx *Context) *Context {
	program, err := parser.Parse(ctx.Source)
	if err != nil {
		ctx.Err = err
		return ctx
	}
	program.File = ctx.FilePath
	ctx.Program = program
	return ctx
}

type AnalyzeProcessor struct{}

func (ap *AnalyzeProcessor) Process(ctx *Context) *Context {
	if ctx.Program == nil {
		ctx.Err = diagnostics.NewError(diagnostics.SyntaxError, token.Token{}, "nothing to analyze")
		return ctx
	}
	a := analyzer.New()
	a.SetSource(ctx.Source)
	result, err := a.Analyze(ctx.Program)
	if err != nil {
		ctx.Err = asDiagnostic(err)
		return ctx
	}
	ctx.Analysis = result
	return ctx
}

type MonomorphizeProcessor struct{}

func (mp *MonomorphizeProcessor) Process(ctx *Context) *Context {
	ctx.Instances = mono.Monomorphize(ctx.Analysis)
	return ctx
}

type GenerateProcessor struct{}

func (gp *GenerateProcessor) Process(ctx *Context) *Context {
	output, err := cppgen.New(ctx.Analysis, ctx.Instances).Generate()
	if err != nil {
		ctx.Err = asDiagnostic(err)
		return ctx
	}
	ctx.Output = output
	return ctx
}

func asDiagnostic(err error) *diagnostics.Error {
	if derr, ok := err.(*diagnostics.Error); ok {
		return derr
	}
	return &diagnostics.Error{Code: diagnostics.SyntaxError, Message: err.Error()}
}
