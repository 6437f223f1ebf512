package cppgen

import (
	"strings"

	"github.com/angel-lang/angel/internal/analyzer"
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/mono"
	"github.com/angel-lang/angel/internal/typesystem"
)

// expression renders an expression, hoisting any needed temporaries into b
// at the given depth.
func (g *Generator) expression(b *buf, depth int, expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Value
	case *ast.SelfExpression:
		if g.selfIsReceiver {
			return "(*this)"
		}
		return "self"
	case *ast.IntegerLiteral:
		return e.Value
	case *ast.FloatLiteral:
		return e.Value
	case *ast.StringLiteral:
		return cppQuoteString(e.Value)
	case *ast.CharLiteral:
		return cppQuoteChar(e.Value)
	case *ast.BoolLiteral:
		if e.Value {
			return "true"
		}
		return "false"
	case *ast.VectorLiteral:
		// A bare brace list only works in initializer position, so the
		// general case goes through a named temporary.
		tmp := g.newTmp()
		b.add(depth, g.cppType(g.typeOf(e))+" "+tmp+" = "+g.vectorBraces(b, depth, e)+";")
		return tmp
	case *ast.DictLiteral:
		return g.dictLiteral(b, depth, e)
	case *ast.OptionalNone:
		g.include("<optional>")
		return "std::nullopt"
	case *ast.OptionalSome:
		return g.expression(b, depth, e.Value)
	case *ast.BinaryExpression:
		return g.binary(b, depth, e)
	case *ast.CallExpression:
		return g.call(b, depth, e)
	case *ast.FieldAccess:
		return g.member(b, depth, e)
	case *ast.Subscript:
		left := g.objectExpr(b, depth, e.Left)
		return left + "[" + g.expression(b, depth, e.Index) + "]"
	case *ast.Cast:
		return g.cast(b, depth, e)
	case *ast.RefExpression:
		return g.ref(b, depth, e)
	}
	g.errorf("expression %T has no C++ form", expr)
	return ""
}

// expressionExpecting renders an expression and dereferences it when a
// plain value is wanted from a reference-typed source.
func (g *Generator) expressionExpecting(b *buf, depth int, expr ast.Expression, want typesystem.Type) string {
	s := g.expression(b, depth, expr)
	if _, wantRef := want.(typesystem.Ref); wantRef {
		return s
	}
	if _, isRef := g.typeOf(expr).(typesystem.Ref); isRef {
		return "*" + s
	}
	return s
}

func (g *Generator) vectorBraces(b *buf, depth int, e *ast.VectorLiteral) string {
	parts := make([]string, len(e.Elements))
	for i, elem := range e.Elements {
		parts[i] = g.expression(b, depth, elem)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (g *Generator) dictLiteral(b *buf, depth int, e *ast.DictLiteral) string {
	tmp := g.newTmp()
	b.add(depth, g.cppType(g.typeOf(e))+" "+tmp+";")
	for i := range e.Keys {
		key := g.expression(b, depth, e.Keys[i])
		value := g.expression(b, depth, e.Values[i])
		b.add(depth, tmp+"["+key+"] = "+value+";")
	}
	return tmp
}

func (g *Generator) binary(b *buf, depth int, e *ast.BinaryExpression) string {
	// Vector concatenation copies the left side and appends the right.
	if e.Operator == "+" {
		if _, isVector := g.typeOf(e).(typesystem.Vector); isVector {
			cpp := g.cppType(g.typeOf(e))
			left := g.newTmp()
			b.add(depth, cpp+" "+left+" = "+g.expression(b, depth, e.Left)+";")
			right := g.newTmp()
			b.add(depth, cpp+" "+right+" = "+g.expression(b, depth, e.Right)+";")
			b.add(depth, left+".insert("+left+".end(), "+right+".begin(), "+right+".end());")
			return left
		}
	}

	left := g.operand(b, depth, e.Left, e.Operator, false)
	right := g.operand(b, depth, e.Right, e.Operator, true)
	if info, ok := g.res.Operators[e]; ok && info.Negated {
		return "!(" + left + " " + baseOperator(e.Operator) + " " + right + ")"
	}
	return left + " " + cppOperator(e.Operator) + " " + right
}

func (g *Generator) operand(b *buf, depth int, expr ast.Expression, op string, rightSide bool) string {
	s := g.expressionExpecting(b, depth, expr, derefTarget(g.typeOf(expr)))
	child, ok := expr.(*ast.BinaryExpression)
	if !ok {
		return s
	}
	parentPrec := precedence(op)
	childPrec := precedence(child.Operator)
	if childPrec < parentPrec || (childPrec == parentPrec && rightSide && (op == "-" || op == "/")) {
		return "(" + s + ")"
	}
	return s
}

func cppOperator(op string) string {
	switch op {
	case "and":
		return "&&"
	case "or":
		return "||"
	}
	return op
}

// baseOperator is the method-backed operator a negated comparison wraps.
func baseOperator(op string) string {
	switch op {
	case "!=":
		return "=="
	case "<=":
		return ">"
	case ">=":
		return "<"
	}
	return op
}

func precedence(op string) int {
	switch op {
	case "or":
		return 1
	case "and":
		return 2
	case "==", "!=":
		return 3
	case "<", ">", "<=", ">=":
		return 4
	case "+", "-":
		return 5
	case "*", "/":
		return 6
	}
	return 7
}

func (g *Generator) call(b *buf, depth int, e *ast.CallExpression) string {
	info, ok := g.res.Calls[e]
	if !ok {
		g.errorf("unresolved call reached code generation")
		return ""
	}
	switch info.Kind {
	case analyzer.CallBuiltin:
		return g.builtinCall(b, depth, e, info)
	case analyzer.CallFunction:
		name := mono.InstanceName(info.Name, g.applyArgs(info.TypeArgs))
		return name + "(" + g.argList(b, depth, e.Args) + ")"
	case analyzer.CallInit:
		name := mono.InstanceName(info.Name, g.applyArgs(info.TypeArgs))
		return name + "(" + g.argList(b, depth, e.Args) + ")"
	case analyzer.CallVariantCtor:
		alg := info.Target.(typesystem.AlgebraicInstance)
		return variantClassName(alg.Name, alg.Variant) + "(" + g.argList(b, depth, e.Args) + ")"
	case analyzer.CallMethod:
		fa := e.Function.(*ast.FieldAccess)
		args := g.argList(b, depth, e.Args)
		if _, isSelf := fa.Object.(*ast.SelfExpression); isSelf && g.selfIsReceiver {
			return "this->" + methodCppName(info.Name) + "(" + args + ")"
		}
		obj := g.objectExpr(b, depth, fa.Object)
		return obj + "." + methodCppName(info.Name) + "(" + args + ")"
	case analyzer.CallSharedMethod:
		fa := e.Function.(*ast.FieldAccess)
		alg := info.Target.(typesystem.AlgebraicInstance)
		parts := []string{g.expression(b, depth, fa.Object)}
		for _, arg := range e.Args {
			parts = append(parts, g.expression(b, depth, arg))
		}
		return sharedMethodName(alg.Name, info.Name) + "(" + strings.Join(parts, ", ") + ")"
	}
	g.errorf("unsupported call kind")
	return ""
}

func (g *Generator) applyArgs(args []typesystem.Type) []typesystem.Type {
	applied := make([]typesystem.Type, len(args))
	for i, a := range args {
		applied[i] = typesystem.Apply(a, g.subst)
	}
	return applied
}

func (g *Generator) argList(b *buf, depth int, args []ast.Expression) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = g.expression(b, depth, arg)
	}
	return strings.Join(parts, ", ")
}

func (g *Generator) builtinCall(b *buf, depth int, e *ast.CallExpression, info *analyzer.CallInfo) string {
	switch info.Name {
	case analyzer.BuiltinPrint:
		return g.printCall(b, depth, e.Args[0])
	case analyzer.BuiltinRead:
		g.include("\"angel_builtins.h\"")
		return "__read(" + g.expression(b, depth, e.Args[0]) + ")"
	case analyzer.BuiltinAppend:
		fa := e.Function.(*ast.FieldAccess)
		obj := g.objectExpr(b, depth, fa.Object)
		return obj + ".push_back(" + g.expression(b, depth, e.Args[0]) + ")"
	case analyzer.BuiltinSplit:
		g.include("\"angel_string.h\"")
		fa := e.Function.(*ast.FieldAccess)
		obj := g.objectExpr(b, depth, fa.Object)
		return "__string_split_char(" + obj + ", " + g.expression(b, depth, e.Args[0]) + ")"
	}
	g.errorf("unknown builtin '%s'", info.Name)
	return ""
}

// printCall renders __print with the target conventions: sub-16-bit
// integers widen so they print as numbers, vectors stringify through the
// runtime helper, toString-capable types get a stream operator.
func (g *Generator) printCall(b *buf, depth int, arg ast.Expression) string {
	g.include("<iostream>")
	g.include("\"angel_builtins.h\"")
	t := g.typeOf(arg)
	rendered := g.expression(b, depth, arg)
	if _, isRef := t.(typesystem.Ref); isRef {
		rendered = "*" + rendered
		t = derefTarget(t)
	}
	switch tt := t.(type) {
	case typesystem.Primitive:
		if widened, ok := widenForPrint(tt); ok {
			return "__print((" + g.cppPrimitive(widened) + ")(" + rendered + "))"
		}
	case typesystem.Vector:
		g.include("\"angel_string.h\"")
		elem := tt.Element
		if p, ok := elem.(typesystem.Primitive); ok {
			if widened, ok := widenForPrint(p); ok {
				elem = widened
			}
		}
		return "__print(__vector_to_string<" + g.cppType(elem) + ">(" + rendered + "))"
	case typesystem.StructInstance:
		g.ensureStream(tt)
	}
	return "__print(" + rendered + ")"
}

func widenForPrint(p typesystem.Primitive) (typesystem.Primitive, bool) {
	switch p.Kind {
	case typesystem.I8:
		return typesystem.Primitive{Kind: typesystem.I16}, true
	case typesystem.U8:
		return typesystem.Primitive{Kind: typesystem.U16}, true
	}
	return p, false
}

func (g *Generator) member(b *buf, depth int, e *ast.FieldAccess) string {
	ref, ok := g.res.Members[e]
	if !ok {
		g.errorf("unresolved member '%s' reached code generation", e.Field.Value)
		return ""
	}
	switch ref.Kind {
	case analyzer.MemberBuiltin:
		obj := g.objectExpr(b, depth, e.Object)
		switch derefTarget(g.typeOf(e.Object)).(type) {
		case typesystem.Vector, typesystem.Dict:
			return obj + ".size()"
		}
		return obj + ".length()"
	case analyzer.MemberVariant:
		alg := ref.Object.(typesystem.AlgebraicInstance)
		return variantClassName(alg.Name, ref.Name) + "()"
	case analyzer.MemberRefValue:
		return "(*" + g.expression(b, depth, e.Object) + ")"
	}
	if _, isSelf := e.Object.(*ast.SelfExpression); isSelf && g.selfIsReceiver {
		return "this->" + e.Field.Value
	}
	obj := g.objectExpr(b, depth, e.Object)
	return obj + "." + e.Field.Value
}

// objectExpr renders a receiver: references dereference, variant-narrowed
// bindings unwrap through std::get, cast results parenthesize.
func (g *Generator) objectExpr(b *buf, depth int, obj ast.Expression) string {
	s := g.expression(b, depth, obj)
	t := g.typeOf(obj)
	if _, isRef := t.(typesystem.Ref); isRef {
		return "(*" + s + ")"
	}
	if alg, ok := t.(typesystem.AlgebraicInstance); ok && alg.Variant != "" && isStoredBinding(obj) {
		return "std::get<" + variantClassName(alg.Name, alg.Variant) + ">(" + s + ")"
	}
	if _, isCast := obj.(*ast.Cast); isCast {
		return "(" + s + ")"
	}
	return s
}

// isStoredBinding reports whether the expression reads a binding whose
// storage is the widened variant type, as opposed to a fresh construction.
func isStoredBinding(obj ast.Expression) bool {
	switch obj.(type) {
	case *ast.Identifier, *ast.FieldAccess, *ast.Subscript:
		return true
	}
	return false
}

func (g *Generator) cast(b *buf, depth int, e *ast.Cast) string {
	method, ok := g.res.Casts[e]
	if !ok {
		g.errorf("unresolved conversion reached code generation")
		return ""
	}
	value := g.expression(b, depth, e.Value)
	if method != "" {
		switch e.Value.(type) {
		case *ast.Identifier:
		default:
			value = "(" + value + ")"
		}
		return value + "." + method + "()"
	}
	target := g.typeOf(e)
	if p, isPrimitive := target.(typesystem.Primitive); isPrimitive && p.Kind == typesystem.String {
		if vp, sourcePrimitive := derefTarget(g.typeOf(e.Value)).(typesystem.Primitive); sourcePrimitive && vp.Kind != typesystem.String {
			g.include("<string>")
			return "std::to_string(" + value + ")"
		}
	}
	return "(" + g.cppType(target) + ")(" + value + ")"
}

func (g *Generator) ref(b *buf, depth int, e *ast.RefExpression) string {
	if isStoredBinding(e.Value) {
		return "&" + g.expression(b, depth, e.Value)
	}
	inner := derefTarget(g.typeOf(e))
	tmp := g.newTmp()
	b.add(depth, g.cppType(inner)+" "+tmp+" = "+g.expression(b, depth, e.Value)+";")
	return "&" + tmp
}

func derefTarget(t typesystem.Type) typesystem.Type {
	if ref, ok := t.(typesystem.Ref); ok {
		return ref.Inner
	}
	return t
}

func cppQuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		b.WriteString(escapeRune(r, '"'))
	}
	b.WriteByte('"')
	return b.String()
}

func cppQuoteChar(r rune) string {
	return "'" + escapeRune(r, '\'') + "'"
}

func escapeRune(r rune, quote rune) string {
	switch r {
	case quote:
		return "\\" + string(quote)
	case '\\':
		return "\\\\"
	case '\n':
		return "\\n"
	case '\t':
		return "\\t"
	case '\r':
		return "\\r"
	}
	return string(r)
}
