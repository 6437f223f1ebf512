// Package symbols implements the lexically scoped symbol table used by the
// checker.
package symbols

import (
	"github.com/angel-lang/angel/internal/typesystem"
)

// ScopeType distinguishes the contexts a scope can open in.
type ScopeType int

const (
	GlobalScope ScopeType = iota
	FunctionScope
	StructScope
	BlockScope
)

// SymbolKind classifies what a name refers to.
type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	ConstantSymbol
	FunctionSymbol
	TypeSymbol
	FieldSymbol
	MethodSymbol
	ParameterSymbol
)

// Symbol is one named entity visible in some scope.
type Symbol struct {
	Name string
	Kind SymbolKind
	Type typesystem.Type

	// Constants declared without a value accept exactly one assignment.
	// HasValue tracks whether that slot is filled.
	HasValue bool

	// Narrowed holds the variant name a binding of algebraic type is
	// currently known to be, or "" when unknown.
	Narrowed string

	// Function-specific metadata.
	TypeParams []string
	Params     []typesystem.Type
	Return     typesystem.Type

	Line   int
	Column int
}

// Scope is one level of the lexical scope chain.
type Scope struct {
	Type    ScopeType
	parent  *Scope
	symbols map[string]*Symbol
	order   []string
}

// NewScope creates a scope nested inside parent. A nil parent makes it the
// global scope.
func NewScope(t ScopeType, parent *Scope) *Scope {
	return &Scope{Type: t, parent: parent, symbols: map[string]*Symbol{}}
}

// Parent returns the enclosing scope, nil for the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Define records a symbol in this scope. Returns false when the name is
// already taken here.
func (s *Scope) Define(sym *Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym.Name)
	return true
}

// Resolve looks a name up through the scope chain.
func (s *Scope) Resolve(name string) (*Symbol, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// ResolveLocal looks a name up in this scope only.
func (s *Scope) ResolveLocal(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Names returns the symbols defined directly in this scope, in definition
// order.
func (s *Scope) Names() []string { return append([]string(nil), s.order...) }

// InFunction reports whether the scope chain passes through a function.
func (s *Scope) InFunction() bool {
	for scope := s; scope != nil; scope = scope.parent {
		if scope.Type == FunctionScope {
			return true
		}
	}
	return false
}

// ClearNarrowing resets variant knowledge for every binding reachable from
// this scope. The checker calls it at loop boundaries.
func (s *Scope) ClearNarrowing(names []string) {
	for _, name := range names {
		if sym, ok := s.Resolve(name); ok {
			sym.Narrowed = ""
		}
	}
}
