// Package analyzer performs semantic analysis: name resolution, type
// checking, conformance checking and variant narrowing. It walks the AST
// once, in source order, and stops at the first error.
package analyzer

import (
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/symbols"
	"github.com/angel-lang/angel/internal/typesystem"
)

// CallKind classifies what a call expression resolved to.
type CallKind int

const (
	CallFunction CallKind = iota
	CallInit
	CallMethod
	CallVariantCtor
	CallSharedMethod
	CallBuiltin
)

// CallInfo is the resolution record for one call expression.
type CallInfo struct {
	Kind CallKind
	Name string
	// Receiver type for methods, constructed type for inits and variant
	// constructors.
	Target typesystem.Type
	// Concrete bindings for the callee's type parameters, in declaration
	// order. Empty for non-generic callees.
	TypeArgs []typesystem.Type
}

// MemberKind classifies what a field access resolved to.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberVariant
	MemberSharedMethod
	MemberBuiltin
	MemberRefValue
)

// MemberRef is the resolution record for one field access.
type MemberRef struct {
	Kind   MemberKind
	Name   string
	Object typesystem.Type
}

// OperatorInfo records how a binary operator applies.
type OperatorInfo struct {
	// Method names the protocol method for operators rewritten onto
	// user-declared types, "" for native primitive operations.
	Method string
	// Negated marks != rewritten through __eq__ and >= / <= rewritten
	// through __lt__ / __gt__.
	Negated bool
}

// Result carries everything later stages need: the typed AST plus the
// resolution side tables.
type Result struct {
	Program   *ast.Program
	Types     map[ast.Node]typesystem.Type
	Calls     map[*ast.CallExpression]*CallInfo
	Members   map[*ast.FieldAccess]*MemberRef
	Operators map[*ast.BinaryExpression]*OperatorInfo
	// Casts maps a conversion to the zero-argument method implementing it,
	// "" for native numeric and string conversions.
	Casts    map[*ast.Cast]string
	Registry *typesystem.Registry
	Resolver *typesystem.Resolver

	// Declaration AST by type name, for the monomorphizer.
	StructDecls    map[string]*ast.StructDeclaration
	FunctionDecls  map[string]*ast.FunctionDeclaration
	ExtensionDecls map[string][]*ast.ExtensionDeclaration
}

// Analyzer walks one program.
type Analyzer struct {
	registry *typesystem.Registry
	resolver *typesystem.Resolver
	scope    *symbols.Scope
	result   *Result
	err      *diagnostics.Error

	// Context of the body currently being checked.
	selfType    typesystem.Type
	structName  string
	typeParams  []string
	returnType  typesystem.Type
	whereScope  []typesystem.WhereConstraint
	inLoop      bool
	sourceLines []string
}

// New creates an analyzer with a fresh registry and global scope.
func New() *Analyzer {
	registry := typesystem.NewRegistry()
	return &Analyzer{
		registry: registry,
		resolver: typesystem.NewResolver(registry),
		scope:    symbols.NewScope(symbols.GlobalScope, nil),
	}
}

// SetSource provides the source text so errors can echo the offending line.
func (a *Analyzer) SetSource(source string) {
	a.sourceLines = splitLines(source)
}

// Analyze checks the program and returns the resolution result, or the
// first error encountered.
func (a *Analyzer) Analyze(program *ast.Program) (*Result, error) {
	a.result = &Result{
		Program:        program,
		Types:          map[ast.Node]typesystem.Type{},
		Calls:          map[*ast.CallExpression]*CallInfo{},
		Members:        map[*ast.FieldAccess]*MemberRef{},
		Operators:      map[*ast.BinaryExpression]*OperatorInfo{},
		Casts:          map[*ast.Cast]string{},
		Registry:       a.registry,
		Resolver:       a.resolver,
		StructDecls:    map[string]*ast.StructDeclaration{},
		FunctionDecls:  map[string]*ast.FunctionDeclaration{},
		ExtensionDecls: map[string][]*ast.ExtensionDeclaration{},
	}
	for _, stmt := range program.Statements {
		a.statement(stmt)
		if a.err != nil {
			return nil, a.err
		}
	}
	return a.result, nil
}

func (a *Analyzer) errorf(code diagnostics.Code, node ast.TokenProvider, format string, args ...interface{}) {
	if a.err != nil {
		return
	}
	tok := node.GetToken()
	e := diagnostics.NewError(code, tok, format, args...)
	if tok.Line > 0 && tok.Line <= len(a.sourceLines) {
		e.WithSource(a.sourceLines[tok.Line-1])
	}
	a.err = e
}

func (a *Analyzer) failed() bool { return a.err != nil }

func (a *Analyzer) pushScope(t symbols.ScopeType) {
	a.scope = symbols.NewScope(t, a.scope)
}

func (a *Analyzer) popScope() {
	a.scope = a.scope.Parent()
}

func (a *Analyzer) setType(node ast.Node, t typesystem.Type) typesystem.Type {
	a.result.Types[node] = t
	return t
}

// resolveType lowers a source type expression to a semantic type. Names
// must resolve to a declared type, a primitive or a type parameter in
// scope.
func (a *Analyzer) resolveType(expr ast.TypeExpression) typesystem.Type {
	switch te := expr.(type) {
	case *ast.NamedType:
		return a.resolveNamedType(te)
	case *ast.VectorType:
		elem := a.resolveType(te.Element)
		if a.failed() {
			return nil
		}
		return typesystem.Vector{Element: elem}
	case *ast.DictType:
		key := a.resolveType(te.Key)
		if a.failed() {
			return nil
		}
		value := a.resolveType(te.Value)
		if a.failed() {
			return nil
		}
		return typesystem.Dict{Key: key, Value: value}
	case *ast.OptionalType:
		inner := a.resolveType(te.Inner)
		if a.failed() {
			return nil
		}
		return typesystem.Optional{Inner: inner}
	case *ast.RefType:
		inner := a.resolveType(te.Inner)
		if a.failed() {
			return nil
		}
		return typesystem.Ref{Inner: inner}
	}
	a.errorf(diagnostics.TypeMismatch, expr, "unsupported type expression '%s'", expr.TokenLiteral())
	return nil
}

func (a *Analyzer) resolveNamedType(te *ast.NamedType) typesystem.Type {
	for _, p := range a.typeParams {
		if te.Name == p {
			if len(te.Args) != 0 {
				a.errorf(diagnostics.GenericArityMismatch, te, "type parameter '%s' takes no type arguments", te.Name)
				return nil
			}
			return typesystem.Param{Name: te.Name}
		}
	}
	if p, ok := typesystem.PrimitiveByName(te.Name); ok {
		if len(te.Args) != 0 {
			a.errorf(diagnostics.GenericArityMismatch, te, "type '%s' takes no type arguments", te.Name)
			return nil
		}
		return p
	}
	if def, ok := a.registry.Structs[te.Name]; ok {
		if len(te.Args) != len(def.TypeParams) {
			a.errorf(diagnostics.GenericArityMismatch, te,
				"type '%s' expects %d type argument(s), got %d", te.Name, len(def.TypeParams), len(te.Args))
			return nil
		}
		args := make([]typesystem.Type, len(te.Args))
		for i, arg := range te.Args {
			args[i] = a.resolveType(arg)
			if a.failed() {
				return nil
			}
		}
		return typesystem.StructInstance{Name: te.Name, Args: args}
	}
	if _, ok := a.registry.Interfaces[te.Name]; ok {
		if len(te.Args) != 0 {
			a.errorf(diagnostics.GenericArityMismatch, te, "interface '%s' takes no type arguments", te.Name)
			return nil
		}
		return typesystem.InterfaceInstance{Name: te.Name}
	}
	if _, ok := a.registry.Algebraics[te.Name]; ok {
		if len(te.Args) != 0 {
			a.errorf(diagnostics.GenericArityMismatch, te, "type '%s' takes no type arguments", te.Name)
			return nil
		}
		return typesystem.AlgebraicInstance{Name: te.Name}
	}
	a.errorf(diagnostics.UndefinedName, te, "undefined type '%s'", te.Name)
	return nil
}

// assignable reports whether a value of type from can be stored where to is
// expected. Wrapping into an optional, widening a known variant to its
// algebraic type and satisfying an interface slot are the only implicit
// conversions.
func (a *Analyzer) assignable(from, to typesystem.Type) bool {
	if typesystem.Equal(from, to) {
		return true
	}
	if opt, ok := to.(typesystem.Optional); ok {
		if a.assignable(from, opt.Inner) {
			return true
		}
	}
	if alg, ok := from.(typesystem.AlgebraicInstance); ok && alg.Variant != "" {
		if typesystem.Equal(typesystem.AlgebraicInstance{Name: alg.Name}, to) {
			return true
		}
	}
	if iface, ok := to.(typesystem.InterfaceInstance); ok {
		if a.resolver.Conforms(from, iface.Name) {
			return true
		}
	}
	// Reading through a reference cell yields the referenced value.
	if ref, ok := from.(typesystem.Ref); ok {
		if a.assignable(ref.Inner, to) {
			return true
		}
	}
	return false
}

func splitLines(source string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			lines = append(lines, source[start:i])
			start = i + 1
		}
	}
	if start < len(source) {
		lines = append(lines, source[start:])
	}
	return lines
}
