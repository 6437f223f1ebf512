package mono

import (
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/typesystem"
)

func (m *monomorphizer) walkStatements(stmts []ast.Statement, subst typesystem.Subst) {
	for _, stmt := range stmts {
		m.walkStatement(stmt, subst)
	}
}

func (m *monomorphizer) walkStatement(stmt ast.Statement, subst typesystem.Subst) {
	switch s := stmt.(type) {
	case *ast.Decl:
		if s.Value != nil {
			m.walkExpression(s.Value, subst)
		}
	case *ast.Assignment:
		m.walkExpression(s.Target, subst)
		m.walkExpression(s.Value, subst)
	case *ast.ExpressionStatement:
		m.walkExpression(s.Expression, subst)
	case *ast.If:
		m.walkExpression(s.Condition, subst)
		m.walkStatements(s.Body, subst)
		for _, elif := range s.Elifs {
			m.walkExpression(elif.Condition, subst)
			m.walkStatements(elif.Body, subst)
		}
		m.walkStatements(s.Else, subst)
	case *ast.IfLet:
		m.walkExpression(s.Value, subst)
		m.walkStatements(s.Body, subst)
		m.walkStatements(s.Else, subst)
	case *ast.While:
		m.walkExpression(s.Condition, subst)
		m.walkStatements(s.Body, subst)
	case *ast.WhileLet:
		m.walkExpression(s.Value, subst)
		m.walkStatements(s.Body, subst)
	case *ast.For:
		m.walkExpression(s.Container, subst)
		m.walkStatements(s.Body, subst)
	case *ast.Return:
		if s.Value != nil {
			m.walkExpression(s.Value, subst)
		}
	case *ast.FunctionDeclaration:
		// Generic functions specialize on demand; plain ones walk now.
		if len(s.TypeParams) == 0 {
			m.walkStatements(s.Body, subst)
		}
	case *ast.StructDeclaration:
		if len(s.TypeParams) == 0 {
			m.walkStructBodies(s, subst)
		}
	case *ast.AlgebraicDeclaration:
		for _, variant := range s.Variants {
			m.walkStructBodies(variant, subst)
		}
		for _, method := range s.Methods {
			m.walkStatements(method.Body, subst)
		}
	case *ast.ExtensionDeclaration:
		if len(s.TypeParams) == 0 {
			for _, method := range s.Methods {
				m.walkStatements(method.Body, subst)
			}
		}
	}
}

func (m *monomorphizer) walkStructBodies(sd *ast.StructDeclaration, subst typesystem.Subst) {
	for _, f := range sd.Fields {
		if f.Value != nil {
			m.walkExpression(f.Value, subst)
		}
	}
	for _, init := range sd.Inits {
		m.walkStatements(init.Body, subst)
	}
	for _, method := range sd.Methods {
		m.walkStatements(method.Body, subst)
	}
}

func (m *monomorphizer) walkExpression(expr ast.Expression, subst typesystem.Subst) {
	switch e := expr.(type) {
	case *ast.VectorLiteral:
		for _, elem := range e.Elements {
			m.walkExpression(elem, subst)
		}
	case *ast.DictLiteral:
		for i := range e.Keys {
			m.walkExpression(e.Keys[i], subst)
			m.walkExpression(e.Values[i], subst)
		}
	case *ast.OptionalSome:
		m.walkExpression(e.Value, subst)
	case *ast.BinaryExpression:
		m.walkExpression(e.Left, subst)
		m.walkExpression(e.Right, subst)
	case *ast.CallExpression:
		m.walkExpression(e.Function, subst)
		for _, arg := range e.Args {
			m.walkExpression(arg, subst)
		}
		m.visitCall(e, subst)
	case *ast.FieldAccess:
		m.walkExpression(e.Object, subst)
	case *ast.Subscript:
		m.walkExpression(e.Left, subst)
		m.walkExpression(e.Index, subst)
	case *ast.Cast:
		m.walkExpression(e.Value, subst)
	case *ast.RefExpression:
		m.walkExpression(e.Value, subst)
	}
}
