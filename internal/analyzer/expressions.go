package analyzer

import (
	"math/big"
	"strconv"

	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/symbols"
	"github.com/angel-lang/angel/internal/typesystem"
)

// expression types an expression. expected, when non-nil, is the type the
// surrounding context wants; literals use it to pick a concrete type.
func (a *Analyzer) expression(expr ast.Expression, expected typesystem.Type) typesystem.Type {
	if a.failed() {
		return nil
	}
	switch e := expr.(type) {
	case *ast.Identifier:
		return a.identifier(e)
	case *ast.SelfExpression:
		if a.selfType == nil {
			a.errorf(diagnostics.UndefinedName, e, "'self' outside of a method")
			return nil
		}
		return a.setType(e, a.selfType)
	case *ast.IntegerLiteral:
		return a.integerLiteral(e, expected)
	case *ast.FloatLiteral:
		return a.floatLiteral(e, expected)
	case *ast.StringLiteral:
		return a.setType(e, typesystem.Primitive{Kind: typesystem.String})
	case *ast.CharLiteral:
		return a.setType(e, typesystem.Primitive{Kind: typesystem.Char})
	case *ast.BoolLiteral:
		return a.setType(e, typesystem.Primitive{Kind: typesystem.Bool})
	case *ast.VectorLiteral:
		return a.vectorLiteral(e, expected)
	case *ast.DictLiteral:
		return a.dictLiteral(e, expected)
	case *ast.OptionalNone:
		if opt, ok := expected.(typesystem.Optional); ok {
			return a.setType(e, opt)
		}
		return a.setType(e, typesystem.Optional{Inner: untypedPointer()})
	case *ast.OptionalSome:
		var innerExpected typesystem.Type
		if opt, ok := expected.(typesystem.Optional); ok {
			innerExpected = opt.Inner
		}
		inner := a.expression(e.Value, innerExpected)
		if a.failed() {
			return nil
		}
		return a.setType(e, typesystem.Optional{Inner: widen(inner)})
	case *ast.BinaryExpression:
		return a.binaryExpression(e, expected)
	case *ast.CallExpression:
		return a.callExpression(e, expected)
	case *ast.FieldAccess:
		return a.fieldAccess(e)
	case *ast.Subscript:
		return a.subscript(e)
	case *ast.Cast:
		return a.castExpression(e)
	case *ast.RefExpression:
		inner := a.expression(e.Value, nil)
		if a.failed() {
			return nil
		}
		return a.setType(e, typesystem.Ref{Inner: widen(inner)})
	}
	a.errorf(diagnostics.SyntaxError, expr, "unexpected expression")
	return nil
}

func (a *Analyzer) identifier(e *ast.Identifier) typesystem.Type {
	sym, ok := a.scope.Resolve(e.Value)
	if !ok {
		a.errorf(diagnostics.UndefinedName, e, "undefined name '%s'", e.Value)
		return nil
	}
	if sym.Kind == symbols.TypeSymbol {
		a.errorf(diagnostics.TypeMismatch, e, "type '%s' used as a value", e.Value)
		return nil
	}
	t := sym.Type
	if alg, ok := t.(typesystem.AlgebraicInstance); ok && sym.Narrowed != "" {
		t = typesystem.AlgebraicInstance{Name: alg.Name, Variant: sym.Narrowed}
	}
	return a.setType(e, t)
}

func (a *Analyzer) integerLiteral(e *ast.IntegerLiteral, expected typesystem.Type) typesystem.Type {
	value, ok := new(big.Int).SetString(e.Value, 10)
	if !ok {
		a.errorf(diagnostics.SyntaxError, e, "malformed integer literal '%s'", e.Value)
		return nil
	}
	if p, ok := expected.(typesystem.Primitive); ok {
		if p.IsFiniteInt() {
			if !typesystem.IntegerFits(value, p) {
				lo, hi := typesystem.IntegerBounds(p)
				a.errorf(diagnostics.LiteralOutOfRange, e, "%s is not in range [%s; %s]", e.Value, lo, hi)
				return nil
			}
			return a.setType(e, p)
		}
		if p.IsFloat() {
			return a.setType(e, p)
		}
	}
	candidates := typesystem.IntegerCandidates(value)
	if len(candidates) == 0 {
		a.errorf(diagnostics.LiteralOutOfRange, e, "%s does not fit any integer type", e.Value)
		return nil
	}
	return a.setType(e, candidates[0])
}

func (a *Analyzer) floatLiteral(e *ast.FloatLiteral, expected typesystem.Type) typesystem.Type {
	value, err := strconv.ParseFloat(e.Value, 64)
	if err != nil {
		a.errorf(diagnostics.SyntaxError, e, "malformed float literal '%s'", e.Value)
		return nil
	}
	if p, ok := expected.(typesystem.Primitive); ok && p.IsFloat() {
		if !typesystem.FloatFits(value, p) {
			a.errorf(diagnostics.LiteralOutOfRange, e, "%s does not fit %s", e.Value, p)
			return nil
		}
		return a.setType(e, p)
	}
	candidates := typesystem.FloatCandidates(value)
	if len(candidates) == 0 {
		a.errorf(diagnostics.LiteralOutOfRange, e, "%s does not fit any float type", e.Value)
		return nil
	}
	return a.setType(e, candidates[0])
}

func (a *Analyzer) vectorLiteral(e *ast.VectorLiteral, expected typesystem.Type) typesystem.Type {
	var elemExpected typesystem.Type
	if v, ok := expected.(typesystem.Vector); ok {
		elemExpected = v.Element
	}
	if len(e.Elements) == 0 {
		if elemExpected == nil {
			elemExpected = untypedPointer()
		}
		return a.setType(e, typesystem.Vector{Element: elemExpected})
	}
	elemType := elemExpected
	if elemType == nil {
		elemType = commonLiteralType(e.Elements)
	}
	for _, elem := range e.Elements {
		got := a.expression(elem, elemType)
		if a.failed() {
			return nil
		}
		got = widen(got)
		if elemType == nil {
			elemType = got
		} else if !a.assignable(got, elemType) {
			a.errorf(diagnostics.TypeMismatch, elem, "vector element has type %s, expected %s", got, elemType)
			return nil
		}
	}
	return a.setType(e, typesystem.Vector{Element: elemType})
}

// untypedPointer is the element type of collections whose contents cannot
// be inferred, matching the void* the emitted C++ stores in them.
func untypedPointer() typesystem.Type {
	return typesystem.Ref{Inner: typesystem.Primitive{Kind: typesystem.Void}}
}

// commonLiteralType unifies untyped integer literals over the intersection
// of their candidate types, narrowest first, so [1, 260] infers I16 instead
// of pinning the element type to the first literal's own narrowest
// candidate. Nil when the elements are not all integer literals or no
// candidate fits them all; the caller falls back to first-element typing.
func commonLiteralType(elems []ast.Expression) typesystem.Type {
	var common []typesystem.Primitive
	for _, elem := range elems {
		lit, ok := elem.(*ast.IntegerLiteral)
		if !ok {
			return nil
		}
		value, ok := new(big.Int).SetString(lit.Value, 10)
		if !ok {
			return nil
		}
		candidates := typesystem.IntegerCandidates(value)
		if common == nil {
			common = candidates
			continue
		}
		var kept []typesystem.Primitive
		for _, p := range common {
			for _, q := range candidates {
				if p.Kind == q.Kind {
					kept = append(kept, p)
					break
				}
			}
		}
		common = kept
	}
	if len(common) == 0 {
		return nil
	}
	return common[0]
}

func (a *Analyzer) dictLiteral(e *ast.DictLiteral, expected typesystem.Type) typesystem.Type {
	var keyExpected, valueExpected typesystem.Type
	if d, ok := expected.(typesystem.Dict); ok {
		keyExpected, valueExpected = d.Key, d.Value
	}
	if len(e.Keys) == 0 {
		if keyExpected == nil {
			keyExpected, valueExpected = untypedPointer(), untypedPointer()
		}
		return a.setType(e, typesystem.Dict{Key: keyExpected, Value: valueExpected})
	}
	keyType, valueType := keyExpected, valueExpected
	if keyType == nil {
		keyType = commonLiteralType(e.Keys)
	}
	if valueType == nil {
		valueType = commonLiteralType(e.Values)
	}
	for i := range e.Keys {
		kt := a.expression(e.Keys[i], keyType)
		if a.failed() {
			return nil
		}
		if keyType == nil {
			keyType = widen(kt)
		} else if !a.assignable(kt, keyType) {
			a.errorf(diagnostics.TypeMismatch, e.Keys[i], "dictionary key has type %s, expected %s", kt, keyType)
			return nil
		}
		vt := a.expression(e.Values[i], valueType)
		if a.failed() {
			return nil
		}
		if valueType == nil {
			valueType = widen(vt)
		} else if !a.assignable(vt, valueType) {
			a.errorf(diagnostics.TypeMismatch, e.Values[i], "dictionary value has type %s, expected %s", vt, valueType)
			return nil
		}
	}
	return a.setType(e, typesystem.Dict{Key: keyType, Value: valueType})
}

func (a *Analyzer) binaryExpression(e *ast.BinaryExpression, expected typesystem.Type) typesystem.Type {
	if e.Operator == "and" || e.Operator == "or" {
		a.condition(e.Left)
		if a.failed() {
			return nil
		}
		a.condition(e.Right)
		if a.failed() {
			return nil
		}
		return a.setType(e, typesystem.Primitive{Kind: typesystem.Bool})
	}

	// Type the non-literal side first so the literal can adopt its type.
	var leftType, rightType typesystem.Type
	if isLiteral(e.Left) && !isLiteral(e.Right) {
		rightType = a.expression(e.Right, nil)
		if a.failed() {
			return nil
		}
		leftType = a.expression(e.Left, derefType(rightType))
	} else {
		var leftExpected typesystem.Type
		if isArithmetic(e.Operator) {
			leftExpected = expected
		}
		leftType = a.expression(e.Left, leftExpected)
		if a.failed() {
			return nil
		}
		rightType = a.expression(e.Right, derefType(leftType))
	}
	if a.failed() {
		return nil
	}
	result := a.binaryResult(e, e.Operator, leftType, rightType)
	if a.failed() {
		return nil
	}
	return a.setType(e, result)
}

// binaryResult applies the operator rules: native operations on primitives
// and containers, protocol method rewrites on declared types. node receives
// the operator record used by code generation.
func (a *Analyzer) binaryResult(node ast.TokenProvider, op string, leftType, rightType typesystem.Type) typesystem.Type {
	left := derefType(leftType)
	right := derefType(rightType)

	if lp, ok := left.(typesystem.Primitive); ok {
		rp, ok := right.(typesystem.Primitive)
		if !ok || lp.Kind != rp.Kind {
			a.errorf(diagnostics.TypeMismatch, node, "operator '%s' cannot apply to %s and %s", op, leftType, rightType)
			return nil
		}
		return a.primitiveOperator(node, op, lp)
	}

	if lv, ok := left.(typesystem.Vector); ok {
		if op == "+" && typesystem.Equal(left, right) {
			return lv
		}
		if op == "==" || op == "!=" {
			if typesystem.Equal(left, right) {
				return typesystem.Primitive{Kind: typesystem.Bool}
			}
		}
		a.errorf(diagnostics.TypeMismatch, node, "operator '%s' cannot apply to %s and %s", op, leftType, rightType)
		return nil
	}

	if lo, ok := left.(typesystem.Optional); ok {
		if op == "==" || op == "!=" {
			if typesystem.Equal(left, right) || a.assignable(right, lo) {
				return typesystem.Primitive{Kind: typesystem.Bool}
			}
		}
		a.errorf(diagnostics.TypeMismatch, node, "operator '%s' cannot apply to %s and %s", op, leftType, rightType)
		return nil
	}

	return a.protocolOperator(node, op, left, right)
}

func (a *Analyzer) primitiveOperator(node ast.TokenProvider, op string, p typesystem.Primitive) typesystem.Type {
	boolType := typesystem.Primitive{Kind: typesystem.Bool}
	switch op {
	case "==", "!=":
		return boolType
	case "<", ">", "<=", ">=":
		if p.Kind == typesystem.Bool || p.Kind == typesystem.Void {
			a.errorf(diagnostics.TypeMismatch, node, "operator '%s' cannot apply to %s", op, p)
			return nil
		}
		return boolType
	case "+":
		if p.IsFiniteInt() || p.IsFloat() || p.Kind == typesystem.String {
			return p
		}
	case "-", "*", "/":
		if p.IsFiniteInt() || p.IsFloat() {
			return p
		}
	}
	a.errorf(diagnostics.TypeMismatch, node, "operator '%s' cannot apply to %s", op, p)
	return nil
}

// protocolOperator rewrites an operator on a declared type onto its
// protocol method, gated by conformance to the matching builtin interface.
func (a *Analyzer) protocolOperator(node ast.TokenProvider, op string, left, right typesystem.Type) typesystem.Type {
	method, iface, ok := typesystem.OperatorMethod(op)
	if !ok {
		a.errorf(diagnostics.TypeMismatch, node, "operator '%s' cannot apply to %s", op, left)
		return nil
	}
	if !a.resolver.Conforms(left, iface) && !a.genericConforms(left, iface) {
		a.errorf(diagnostics.UnresolvedMember, node, "type %s has no member '%s'", left, method)
		return nil
	}
	tbl, ok := a.resolver.Table(left)
	var sig typesystem.MethodSig
	if ok {
		sig, ok = tbl.Method(method)
	}
	if !ok {
		a.errorf(diagnostics.UnresolvedMember, node, "type %s has no member '%s'", left, method)
		return nil
	}
	if len(sig.Params) != 1 || !a.assignable(right, sig.Params[0]) {
		a.errorf(diagnostics.TypeMismatch, node, "operator '%s' cannot apply to %s and %s", op, left, right)
		return nil
	}
	negated := op == "!=" || op == "<=" || op == ">="
	if be, isBinary := node.(*ast.BinaryExpression); isBinary {
		a.result.Operators[be] = &OperatorInfo{Method: method, Negated: negated}
	}
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return typesystem.Primitive{Kind: typesystem.Bool}
	}
	return sig.Return
}

// genericConforms treats a type parameter as conforming when a where clause
// of the enclosing extension requires it to.
func (a *Analyzer) genericConforms(t typesystem.Type, iface string) bool {
	p, ok := t.(typesystem.Param)
	if !ok {
		return false
	}
	for _, w := range a.whereScope {
		if w.Param == p.Name && w.Interface == iface {
			return true
		}
	}
	return false
}

func isLiteral(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.IntegerLiteral, *ast.FloatLiteral:
		return true
	}
	return false
}

func isArithmetic(op string) bool {
	switch op {
	case "+", "-", "*", "/":
		return true
	}
	return false
}

func derefType(t typesystem.Type) typesystem.Type {
	if ref, ok := t.(typesystem.Ref); ok {
		return ref.Inner
	}
	return t
}
