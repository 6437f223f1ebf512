// Package pipeline chains the compilation stages: parse, analyze,
// monomorphize, generate. The first stage error stops the run; nothing
// downstream sees a partial result.
package pipeline

import (
	"github.com/angel-lang/angel/internal/analyzer"
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/mono"
)

// Context carries one compilation's state between stages.
type Context struct {
	FilePath string
	Source   string

	Program   *ast.Program
	Analysis  *analyzer.Result
	Instances *mono.Set
	Output    string

	Err *diagnostics.Error
}

// Processor is one compilation stage.
type Processor interface {
	Process(ctx *Context) *Context
}

type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order, stopping at the first error.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if ctx.Err != nil {
			return ctx
		}
	}
	return ctx
}

// Compile runs the full source-to-target pipeline over one source text.
func Compile(filePath, source string) (string, *diagnostics.Error) {
	ctx := &Context{FilePath: filePath, Source: source}
	ctx = New(
		&ParseProcessor{},
		&AnalyzeProcessor{},
		&MonomorphizeProcessor{},
		&GenerateProcessor{},
	).Run(ctx)
	if ctx.Err != nil {
		return "", ctx.Err
	}
	return ctx.Output, nil
}
