package ast

import (
	"github.com/angel-lang/angel/internal/token"
)

// Identifier represents a name reference.
type Identifier struct {
	Token token.Token // The identifier token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

// SelfExpression represents the receiver inside a method or init body.
type SelfExpression struct {
	Token token.Token // The 'self' token
}

func (se *SelfExpression) expressionNode()       {}
func (se *SelfExpression) TokenLiteral() string  { return se.Token.Lexeme }
func (se *SelfExpression) GetToken() token.Token { return se.Token }

// IntegerLiteral keeps the source digits; the checker decides the concrete
// type from context and range.
type IntegerLiteral struct {
	Token token.Token
	Value string
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }

// FloatLiteral keeps the source digits of a decimal literal.
type FloatLiteral struct {
	Token token.Token
	Value string
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }

// StringLiteral holds the unquoted string value.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }

// CharLiteral holds a single-quoted character.
type CharLiteral struct {
	Token token.Token
	Value rune
}

func (cl *CharLiteral) expressionNode()       {}
func (cl *CharLiteral) TokenLiteral() string  { return cl.Token.Lexeme }
func (cl *CharLiteral) GetToken() token.Token { return cl.Token }

// BoolLiteral represents True or False.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BoolLiteral) expressionNode()       {}
func (bl *BoolLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BoolLiteral) GetToken() token.Token { return bl.Token }

// VectorLiteral represents [1, 2, 3].
type VectorLiteral struct {
	Token    token.Token // The '[' token
	Elements []Expression
}

func (vl *VectorLiteral) expressionNode()       {}
func (vl *VectorLiteral) TokenLiteral() string  { return vl.Token.Lexeme }
func (vl *VectorLiteral) GetToken() token.Token { return vl.Token }

// DictLiteral represents ["a": 1, "b": 2]. Keys and Values run parallel in
// source order.
type DictLiteral struct {
	Token  token.Token // The '[' token
	Keys   []Expression
	Values []Expression
}

func (dl *DictLiteral) expressionNode()       {}
func (dl *DictLiteral) TokenLiteral() string  { return dl.Token.Lexeme }
func (dl *DictLiteral) GetToken() token.Token { return dl.Token }

// OptionalNone represents the absent optional value, Optional.None.
type OptionalNone struct {
	Token token.Token // The 'Optional' token
}

func (on *OptionalNone) expressionNode()       {}
func (on *OptionalNone) TokenLiteral() string  { return on.Token.Lexeme }
func (on *OptionalNone) GetToken() token.Token { return on.Token }

// OptionalSome wraps a value, Optional.Some(v).
type OptionalSome struct {
	Token token.Token // The 'Optional' token
	Value Expression
}

func (os *OptionalSome) expressionNode()       {}
func (os *OptionalSome) TokenLiteral() string  { return os.Token.Lexeme }
func (os *OptionalSome) GetToken() token.Token { return os.Token }

// BinaryExpression represents an infix operation.
type BinaryExpression struct {
	Token    token.Token // The operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Lexeme }
func (be *BinaryExpression) GetToken() token.Token {
	if be == nil {
		return token.Token{}
	}
	return be.Token
}

// CallExpression represents a call: function, initializer, method or
// variant constructor depending on what Function resolves to.
type CallExpression struct {
	Token    token.Token // The '(' token
	Function Expression
	Args     []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// FieldAccess represents dot access, e.g. obj.field or Color.Red.
type FieldAccess struct {
	Token  token.Token // The '.' token
	Object Expression
	Field  *Identifier
}

func (fa *FieldAccess) expressionNode()       {}
func (fa *FieldAccess) TokenLiteral() string  { return fa.Token.Lexeme }
func (fa *FieldAccess) GetToken() token.Token { return fa.Token }

// Subscript represents indexing, e.g. v[0] or d["key"].
type Subscript struct {
	Token token.Token // The '[' token
	Left  Expression
	Index Expression
}

func (s *Subscript) expressionNode()       {}
func (s *Subscript) TokenLiteral() string  { return s.Token.Lexeme }
func (s *Subscript) GetToken() token.Token { return s.Token }

// Cast represents a conversion, e.g. age as I16.
type Cast struct {
	Token  token.Token // The 'as' token
	Value  Expression
	Target TypeExpression
}

func (c *Cast) expressionNode()       {}
func (c *Cast) TokenLiteral() string  { return c.Token.Lexeme }
func (c *Cast) GetToken() token.Token { return c.Token }

// RefExpression takes a reference to a value, e.g. ref 1.
type RefExpression struct {
	Token token.Token // The 'ref' token
	Value Expression
}

func (re *RefExpression) expressionNode()       {}
func (re *RefExpression) TokenLiteral() string  { return re.Token.Lexeme }
func (re *RefExpression) GetToken() token.Token { return re.Token }
