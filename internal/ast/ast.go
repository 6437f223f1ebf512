package ast

import (
	"github.com/angel-lang/angel/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its
// primary token. This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// TypeExpression is a Node that names a type in source.
type TypeExpression interface {
	Node
	typeExpressionNode()
	GetToken() token.Token
}

// Program is the root node of every AST the parser produces.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// Decl represents a binding declaration.
// let x: I8 = 1 / var name = "lol" / var maybe: String?
type Decl struct {
	Token      token.Token // The 'let' or 'var' token
	IsConstant bool
	Name       *Identifier
	Type       TypeExpression // optional
	Value      Expression     // optional
}

func (d *Decl) statementNode()       {}
func (d *Decl) TokenLiteral() string { return d.Token.Lexeme }
func (d *Decl) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// Assignment represents writing to an assignable target.
// x = 1 / v[0] += 2 / self.balance -= amount
type Assignment struct {
	Token    token.Token // The operator token
	Target   Expression
	Operator string // "=", "+=", "-=", "*=", "/="
	Value    Expression
}

func (a *Assignment) statementNode()       {}
func (a *Assignment) TokenLiteral() string { return a.Token.Lexeme }
func (a *Assignment) GetToken() token.Token {
	if a == nil {
		return token.Token{}
	}
	return a.Token
}

// ExpressionStatement is a statement that consists of a single expression.
type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }

// ElifClause is one elif arm of a conditional.
type ElifClause struct {
	Token     token.Token // The 'elif' token
	Condition Expression
	Body      []Statement
}

// If represents a conditional with optional elif arms and else branch.
type If struct {
	Token     token.Token // The 'if' token
	Condition Expression
	Body      []Statement
	Elifs     []*ElifClause
	Else      []Statement
}

func (i *If) statementNode()       {}
func (i *If) TokenLiteral() string { return i.Token.Lexeme }
func (i *If) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

// IfLet binds the payload of an optional when it is present.
// if let realName = optionalName:
type IfLet struct {
	Token token.Token // The 'if' token
	Name  *Identifier
	Value Expression
	Body  []Statement
	Else  []Statement
}

func (il *IfLet) statementNode()       {}
func (il *IfLet) TokenLiteral() string { return il.Token.Lexeme }
func (il *IfLet) GetToken() token.Token {
	if il == nil {
		return token.Token{}
	}
	return il.Token
}

// While represents a condition-driven loop.
type While struct {
	Token     token.Token // The 'while' token
	Condition Expression
	Body      []Statement
}

func (w *While) statementNode()        {}
func (w *While) TokenLiteral() string  { return w.Token.Lexeme }
func (w *While) GetToken() token.Token { return w.Token }

// WhileLet drains an optional-producing expression, re-evaluating it after
// every iteration.
// while let n = getN(lol):
type WhileLet struct {
	Token token.Token // The 'while' token
	Name  *Identifier
	Value Expression
	Body  []Statement
}

func (wl *WhileLet) statementNode()        {}
func (wl *WhileLet) TokenLiteral() string  { return wl.Token.Lexeme }
func (wl *WhileLet) GetToken() token.Token { return wl.Token }

// For iterates over the elements of a container expression.
// for element in [1, 2, 3]:
type For struct {
	Token     token.Token // The 'for' token
	Element   *Identifier
	Container Expression
	Body      []Statement
}

func (f *For) statementNode()        {}
func (f *For) TokenLiteral() string  { return f.Token.Lexeme }
func (f *For) GetToken() token.Token { return f.Token }

// Return exits the enclosing function, optionally with a value.
type Return struct {
	Token token.Token // The 'return' token
	Value Expression  // optional
}

func (r *Return) statementNode()        {}
func (r *Return) TokenLiteral() string  { return r.Token.Lexeme }
func (r *Return) GetToken() token.Token { return r.Token }

// Break exits the enclosing loop.
type Break struct {
	Token token.Token // The 'break' token
}

func (b *Break) statementNode()        {}
func (b *Break) TokenLiteral() string  { return b.Token.Lexeme }
func (b *Break) GetToken() token.Token { return b.Token }

// Argument is one declared parameter of a function, method or init.
type Argument struct {
	Token token.Token // The parameter name token
	Name  string
	Type  TypeExpression
}

// FunctionDeclaration represents a top-level function.
// fun pass(s: String) -> String:
type FunctionDeclaration struct {
	Token      token.Token // The 'fun' token
	Name       *Identifier
	TypeParams []string
	Args       []*Argument
	ReturnType TypeExpression // nil means Void
	Body       []Statement
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Lexeme }
func (fd *FunctionDeclaration) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// FieldDeclaration represents a field inside a struct or interface body.
// isAdmin: Bool = False
type FieldDeclaration struct {
	Token token.Token // The field name token
	Name  string
	Type  TypeExpression
	Value Expression // optional default
}

func (fd *FieldDeclaration) statementNode()        {}
func (fd *FieldDeclaration) TokenLiteral() string  { return fd.Token.Lexeme }
func (fd *FieldDeclaration) GetToken() token.Token { return fd.Token }

// MethodDeclaration represents a method inside a struct, algebraic,
// interface or extension body. Interface methods have a nil body.
type MethodDeclaration struct {
	Token      token.Token // The 'fun' token
	Name       string
	Args       []*Argument
	ReturnType TypeExpression // nil means Void
	Body       []Statement
}

func (md *MethodDeclaration) statementNode()        {}
func (md *MethodDeclaration) TokenLiteral() string  { return md.Token.Lexeme }
func (md *MethodDeclaration) GetToken() token.Token { return md.Token }

// InitDeclaration represents a declared struct initializer.
// init(email: String):
type InitDeclaration struct {
	Token token.Token // The 'init' token
	Args  []*Argument
	Body  []Statement
}

func (id *InitDeclaration) statementNode()        {}
func (id *InitDeclaration) TokenLiteral() string  { return id.Token.Lexeme }
func (id *InitDeclaration) GetToken() token.Token { return id.Token }

// StructDeclaration represents a struct, possibly generic and possibly
// declaring interface conformances.
// struct MyPair(A, B) is Eq:
type StructDeclaration struct {
	Token      token.Token // The 'struct' token
	Name       *Identifier
	TypeParams []string
	Interfaces []*Identifier
	Fields     []*FieldDeclaration
	Inits      []*InitDeclaration
	Methods    []*MethodDeclaration
}

func (sd *StructDeclaration) statementNode()       {}
func (sd *StructDeclaration) TokenLiteral() string { return sd.Token.Lexeme }
func (sd *StructDeclaration) GetToken() token.Token {
	if sd == nil {
		return token.Token{}
	}
	return sd.Token
}

// InterfaceDeclaration represents an interface.
// interface E1 is E2:
type InterfaceDeclaration struct {
	Token   token.Token // The 'interface' token
	Name    *Identifier
	Extends []*Identifier
	Fields  []*FieldDeclaration
	Methods []*MethodDeclaration // bodies are nil
}

func (id *InterfaceDeclaration) statementNode()        {}
func (id *InterfaceDeclaration) TokenLiteral() string  { return id.Token.Lexeme }
func (id *InterfaceDeclaration) GetToken() token.Token { return id.Token }

// AlgebraicDeclaration represents an algebraic type with struct variants
// and optional shared methods.
type AlgebraicDeclaration struct {
	Token    token.Token // The 'algebraic' token
	Name     *Identifier
	Variants []*StructDeclaration
	Methods  []*MethodDeclaration
}

func (ad *AlgebraicDeclaration) statementNode()        {}
func (ad *AlgebraicDeclaration) TokenLiteral() string  { return ad.Token.Lexeme }
func (ad *AlgebraicDeclaration) GetToken() token.Token { return ad.Token }

// WhereConstraint requires a type parameter to conform to an interface.
// where A is Eq
type WhereConstraint struct {
	Token     token.Token // The parameter name token
	Param     string
	Interface string
}

// ExtensionDeclaration adds methods (and conformances) to an existing type.
// extension MyPair(A, B) is Eq where A is Eq and B is Eq:
type ExtensionDeclaration struct {
	Token      token.Token // The 'extension' token
	Name       *Identifier
	TypeParams []string
	Interfaces []*Identifier
	Where      []*WhereConstraint
	Methods    []*MethodDeclaration
}

func (ed *ExtensionDeclaration) statementNode()        {}
func (ed *ExtensionDeclaration) TokenLiteral() string  { return ed.Token.Lexeme }
func (ed *ExtensionDeclaration) GetToken() token.Token { return ed.Token }
