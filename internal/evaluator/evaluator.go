// Package evaluator executes checked statements directly, backing the
// REPL. Values live in an environment chain; struct, algebraic and
// extension declarations register themselves so later calls can construct
// instances and dispatch methods without generated code.
package evaluator

import (
	"bufio"
	"io"
	"os"

	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/token"
)

type Evaluator struct {
	env        *Environment
	out        io.Writer
	in         *bufio.Reader
	algebraics map[string]*ast.AlgebraicDeclaration
	extensions map[string][]*ast.MethodDeclaration
	err        *diagnostics.Error
}

func New() *Evaluator {
	return &Evaluator{
		env:        NewEnvironment(),
		out:        os.Stdout,
		in:         bufio.NewReader(os.Stdin),
		algebraics: make(map[string]*ast.AlgebraicDeclaration),
		extensions: make(map[string][]*ast.MethodDeclaration),
	}
}

func (e *Evaluator) SetOutput(w io.Writer) { e.out = w }
func (e *Evaluator) SetInput(r io.Reader)  { e.in = bufio.NewReader(r) }

// Env exposes the global scope so the REPL can roll back declarations.
func (e *Evaluator) Env() *Environment { return e.env }

// Eval runs statements in the global scope and returns the value of the
// last expression statement, or Void.
func (e *Evaluator) Eval(stmts []ast.Statement) (Object, *diagnostics.Error) {
	e.err = nil
	var last Object = &Void{}
	for _, stmt := range stmts {
		obj := e.statement(stmt, e.env)
		if e.err != nil {
			return nil, e.err
		}
		if obj == nil {
			obj = &Void{}
		}
		switch obj.(type) {
		case *ReturnValue, *BreakSignal:
			return obj, nil
		}
		last = obj
	}
	return last, nil
}

func (e *Evaluator) errorf(tok token.Token, format string, args ...interface{}) Object {
	if e.err == nil {
		e.err = diagnostics.NewError(diagnostics.EvaluationError, tok, format, args...)
	}
	return nil
}

func (e *Evaluator) statement(stmt ast.Statement, env *Environment) Object {
	switch s := stmt.(type) {
	case *ast.Decl:
		return e.declStatement(s, env)
	case *ast.Assignment:
		return e.assignStatement(s, env)
	case *ast.ExpressionStatement:
		return e.expression(s.Expression, env)
	case *ast.If:
		return e.ifStatement(s, env)
	case *ast.IfLet:
		return e.ifLetStatement(s, env)
	case *ast.While:
		return e.whileStatement(s, env)
	case *ast.WhileLet:
		return e.whileLetStatement(s, env)
	case *ast.For:
		return e.forStatement(s, env)
	case *ast.Return:
		if s.Value == nil {
			return &ReturnValue{Value: &Void{}}
		}
		value := e.expression(s.Value, env)
		if value == nil {
			return nil
		}
		return &ReturnValue{Value: value}
	case *ast.Break:
		return &BreakSignal{}
	case *ast.FunctionDeclaration:
		env.Set(s.Name.Value, &Function{Name: s.Name.Value, Args: s.Args, Body: s.Body, Env: env})
		return &Void{}
	case *ast.StructDeclaration:
		env.Set(s.Name.Value, &Struct{Decl: s})
		return &Void{}
	case *ast.AlgebraicDeclaration:
		e.algebraics[s.Name.Value] = s
		env.Set(s.Name.Value, &Struct{Algebraic: s})
		return &Void{}
	case *ast.InterfaceDeclaration:
		return &Void{}
	case *ast.ExtensionDeclaration:
		e.extensions[s.Name.Value] = append(e.extensions[s.Name.Value], s.Methods...)
		return &Void{}
	default:
		return e.errorf(stmt.GetToken(), "cannot evaluate this statement")
	}
}

func (e *Evaluator) declStatement(s *ast.Decl, env *Environment) Object {
	if s.Value == nil {
		// Deferred write-once slot: the first assignment creates the value.
		return &Void{}
	}
	value := e.expression(s.Value, env)
	if value == nil {
		return nil
	}
	env.Set(s.Name.Value, value)
	return &Void{}
}

func (e *Evaluator) assignStatement(s *ast.Assignment, env *Environment) Object {
	value := e.expression(s.Value, env)
	if value == nil {
		return nil
	}
	if s.Operator != "=" {
		current := e.expression(s.Target, env)
		if current == nil {
			return nil
		}
		value = e.binaryValue(s.GetToken(), current, s.Operator[:1], value)
		if value == nil {
			return nil
		}
	}
	return e.writeTarget(s.Target, value, env)
}

func (e *Evaluator) writeTarget(target ast.Expression, value Object, env *Environment) Object {
	switch t := target.(type) {
	case *ast.Identifier:
		if !env.Update(t.Value, value) {
			env.Set(t.Value, value)
		}
		return &Void{}
	case *ast.FieldAccess:
		object := e.expression(t.Object, env)
		if object == nil {
			return nil
		}
		switch obj := object.(type) {
		case *Ref:
			if t.Field.Value != "value" {
				return e.errorf(t.GetToken(), "a reference cell only has 'value'")
			}
			obj.Value = value
			return &Void{}
		case *Instance:
			obj.Fields[t.Field.Value] = value
			return &Void{}
		}
		return e.errorf(t.GetToken(), "cannot assign to field '%s'", t.Field.Value)
	case *ast.Subscript:
		return e.writeSubscript(t, value, env)
	}
	return e.errorf(target.GetToken(), "cannot assign to this expression")
}

func (e *Evaluator) writeSubscript(t *ast.Subscript, value Object, env *Environment) Object {
	left := e.expression(t.Left, env)
	if left == nil {
		return nil
	}
	index := e.expression(t.Index, env)
	if index == nil {
		return nil
	}
	switch container := left.(type) {
	case *Vector:
		i, ok := index.(*Int)
		if !ok || !i.Value.IsInt64() || i.Value.Int64() < 0 || i.Value.Int64() >= int64(len(container.Elements)) {
			return e.errorf(t.GetToken(), "vector index out of range")
		}
		container.Elements[i.Value.Int64()] = value
		return &Void{}
	case *Dict:
		for i, key := range container.Keys {
			if objectEquals(key, index) {
				container.Values[i] = value
				return &Void{}
			}
		}
		container.Keys = append(container.Keys, index)
		container.Values = append(container.Values, value)
		return &Void{}
	}
	return e.errorf(t.GetToken(), "cannot subscript this value")
}

func (e *Evaluator) evalBlock(stmts []ast.Statement, env *Environment) Object {
	for _, stmt := range stmts {
		obj := e.statement(stmt, env)
		if obj == nil {
			return nil
		}
		switch obj.(type) {
		case *ReturnValue, *BreakSignal:
			return obj
		}
	}
	return &Void{}
}

func (e *Evaluator) condition(expr ast.Expression, env *Environment) (bool, bool) {
	value := e.expression(expr, env)
	if value == nil {
		return false, false
	}
	b, ok := value.(*Bool)
	if !ok {
		e.errorf(expr.GetToken(), "condition is not a Bool")
		return false, false
	}
	return b.Value, true
}

func (e *Evaluator) ifStatement(s *ast.If, env *Environment) Object {
	ok, valid := e.condition(s.Condition, env)
	if !valid {
		return nil
	}
	if ok {
		return e.evalBlock(s.Body, NewEnclosedEnvironment(env))
	}
	for _, clause := range s.Elifs {
		ok, valid = e.condition(clause.Condition, env)
		if !valid {
			return nil
		}
		if ok {
			return e.evalBlock(clause.Body, NewEnclosedEnvironment(env))
		}
	}
	if s.Else != nil {
		return e.evalBlock(s.Else, NewEnclosedEnvironment(env))
	}
	return &Void{}
}

func (e *Evaluator) ifLetStatement(s *ast.IfLet, env *Environment) Object {
	value := e.expression(s.Value, env)
	if value == nil {
		return nil
	}
	if some, ok := value.(*Some); ok {
		inner := NewEnclosedEnvironment(env)
		inner.Set(s.Name.Value, some.Inner)
		return e.evalBlock(s.Body, inner)
	}
	if s.Else != nil {
		return e.evalBlock(s.Else, NewEnclosedEnvironment(env))
	}
	return &Void{}
}

func (e *Evaluator) whileStatement(s *ast.While, env *Environment) Object {
	for {
		ok, valid := e.condition(s.Condition, env)
		if !valid {
			return nil
		}
		if !ok {
			return &Void{}
		}
		result := e.evalBlock(s.Body, NewEnclosedEnvironment(env))
		if result == nil {
			return nil
		}
		if _, broke := result.(*BreakSignal); broke {
			return &Void{}
		}
		if _, returned := result.(*ReturnValue); returned {
			return result
		}
	}
}

func (e *Evaluator) whileLetStatement(s *ast.WhileLet, env *Environment) Object {
	for {
		value := e.expression(s.Value, env)
		if value == nil {
			return nil
		}
		some, ok := value.(*Some)
		if !ok {
			return &Void{}
		}
		inner := NewEnclosedEnvironment(env)
		inner.Set(s.Name.Value, some.Inner)
		result := e.evalBlock(s.Body, inner)
		if result == nil {
			return nil
		}
		if _, broke := result.(*BreakSignal); broke {
			return &Void{}
		}
		if _, returned := result.(*ReturnValue); returned {
			return result
		}
	}
}

func (e *Evaluator) forStatement(s *ast.For, env *Environment) Object {
	container := e.expression(s.Container, env)
	if container == nil {
		return nil
	}
	var elements []Object
	switch c := container.(type) {
	case *Vector:
		elements = append(elements, c.Elements...)
	case *String:
		for _, r := range c.Value {
			elements = append(elements, &Char{Value: r})
		}
	default:
		return e.errorf(s.Container.GetToken(), "can only iterate over a vector or a string")
	}
	for _, element := range elements {
		inner := NewEnclosedEnvironment(env)
		inner.Set(s.Element.Value, element)
		result := e.evalBlock(s.Body, inner)
		if result == nil {
			return nil
		}
		if _, broke := result.(*BreakSignal); broke {
			return &Void{}
		}
		if _, returned := result.(*ReturnValue); returned {
			return result
		}
	}
	return &Void{}
}
