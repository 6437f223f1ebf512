package ast

import (
	"strings"

	"github.com/angel-lang/angel/internal/token"
)

// NamedType references a declared or builtin type by name, with optional
// use-site type arguments: I8, User, Stack(I8), MyPair(A, String).
type NamedType struct {
	Token token.Token // The type name token
	Name  string
	Args  []TypeExpression
}

func (nt *NamedType) typeExpressionNode() {}
func (nt *NamedType) TokenLiteral() string {
	if len(nt.Args) == 0 {
		return nt.Name
	}
	parts := make([]string, len(nt.Args))
	for i, a := range nt.Args {
		parts[i] = a.TokenLiteral()
	}
	return nt.Name + "(" + strings.Join(parts, ", ") + ")"
}
func (nt *NamedType) GetToken() token.Token {
	if nt == nil {
		return token.Token{}
	}
	return nt.Token
}

// VectorType is the sequence type [T].
type VectorType struct {
	Token   token.Token // The '[' token
	Element TypeExpression
}

func (vt *VectorType) typeExpressionNode()   {}
func (vt *VectorType) TokenLiteral() string  { return "[" + vt.Element.TokenLiteral() + "]" }
func (vt *VectorType) GetToken() token.Token { return vt.Token }

// DictType is the mapping type [K: V].
type DictType struct {
	Token token.Token // The '[' token
	Key   TypeExpression
	Value TypeExpression
}

func (dt *DictType) typeExpressionNode() {}
func (dt *DictType) TokenLiteral() string {
	return "[" + dt.Key.TokenLiteral() + ": " + dt.Value.TokenLiteral() + "]"
}
func (dt *DictType) GetToken() token.Token { return dt.Token }

// OptionalType is the trailing-question type T?.
type OptionalType struct {
	Token token.Token // The '?' token
	Inner TypeExpression
}

func (ot *OptionalType) typeExpressionNode()   {}
func (ot *OptionalType) TokenLiteral() string  { return ot.Inner.TokenLiteral() + "?" }
func (ot *OptionalType) GetToken() token.Token { return ot.Token }

// RefType is the reference cell type ref T.
type RefType struct {
	Token token.Token // The 'ref' token
	Inner TypeExpression
}

func (rt *RefType) typeExpressionNode()   {}
func (rt *RefType) TokenLiteral() string  { return "ref " + rt.Inner.TokenLiteral() }
func (rt *RefType) GetToken() token.Token { return rt.Token }
