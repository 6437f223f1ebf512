package evaluator

import (
	"math/big"
	"strconv"

	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/token"
)

func (e *Evaluator) expression(expr ast.Expression, env *Environment) Object {
	switch x := expr.(type) {
	case *ast.Identifier:
		if obj, ok := env.Get(x.Value); ok {
			return obj
		}
		return e.errorf(x.Token, "undefined name '%s'", x.Value)
	case *ast.SelfExpression:
		if obj, ok := env.Get("self"); ok {
			return obj
		}
		return e.errorf(x.Token, "'self' is only available inside methods")
	case *ast.IntegerLiteral:
		value, ok := new(big.Int).SetString(x.Value, 10)
		if !ok {
			return e.errorf(x.Token, "malformed integer literal '%s'", x.Value)
		}
		return &Int{Value: value}
	case *ast.FloatLiteral:
		value, err := strconv.ParseFloat(x.Value, 64)
		if err != nil {
			return e.errorf(x.Token, "malformed decimal literal '%s'", x.Value)
		}
		return &Float{Value: value}
	case *ast.StringLiteral:
		return &String{Value: x.Value}
	case *ast.CharLiteral:
		return &Char{Value: x.Value}
	case *ast.BoolLiteral:
		return &Bool{Value: x.Value}
	case *ast.VectorLiteral:
		vector := &Vector{}
		for _, element := range x.Elements {
			value := e.expression(element, env)
			if value == nil {
				return nil
			}
			vector.Elements = append(vector.Elements, value)
		}
		return vector
	case *ast.DictLiteral:
		dict := &Dict{}
		for i := range x.Keys {
			key := e.expression(x.Keys[i], env)
			if key == nil {
				return nil
			}
			value := e.expression(x.Values[i], env)
			if value == nil {
				return nil
			}
			dict.Keys = append(dict.Keys, key)
			dict.Values = append(dict.Values, value)
		}
		return dict
	case *ast.OptionalNone:
		return &None{}
	case *ast.OptionalSome:
		inner := e.expression(x.Value, env)
		if inner == nil {
			return nil
		}
		return &Some{Inner: inner}
	case *ast.RefExpression:
		value := e.expression(x.Value, env)
		if value == nil {
			return nil
		}
		return &Ref{Value: value}
	case *ast.BinaryExpression:
		return e.binaryExpression(x, env)
	case *ast.CallExpression:
		return e.callExpression(x, env)
	case *ast.FieldAccess:
		return e.fieldAccess(x, env)
	case *ast.Subscript:
		return e.subscript(x, env)
	case *ast.Cast:
		return e.cast(x, env)
	default:
		return e.errorf(expr.GetToken(), "cannot evaluate this expression")
	}
}

func (e *Evaluator) binaryExpression(x *ast.BinaryExpression, env *Environment) Object {
	if x.Operator == "and" || x.Operator == "or" {
		left, valid := e.condition(x.Left, env)
		if !valid {
			return nil
		}
		if x.Operator == "and" && !left {
			return &Bool{Value: false}
		}
		if x.Operator == "or" && left {
			return &Bool{Value: true}
		}
		right, valid := e.condition(x.Right, env)
		if !valid {
			return nil
		}
		return &Bool{Value: right}
	}
	left := e.expression(x.Left, env)
	if left == nil {
		return nil
	}
	right := e.expression(x.Right, env)
	if right == nil {
		return nil
	}
	return e.binaryValue(x.Token, left, x.Operator, right)
}

// binaryValue applies an operator to evaluated operands. The negated
// comparisons reduce to their positive counterparts the same way the
// generated code does: a != b is !(a == b), a <= b is !(a > b).
func (e *Evaluator) binaryValue(tok token.Token, left Object, operator string, right Object) Object {
	switch operator {
	case "!=":
		result := e.binaryValue(tok, left, "==", right)
		return negate(result)
	case "<=":
		result := e.binaryValue(tok, left, ">", right)
		return negate(result)
	case ">=":
		result := e.binaryValue(tok, left, "<", right)
		return negate(result)
	}
	switch l := left.(type) {
	case *Int:
		if r, ok := right.(*Int); ok {
			return e.intOperation(tok, l, operator, r)
		}
	case *Float:
		if r, ok := right.(*Float); ok {
			return e.floatOperation(tok, l, operator, r)
		}
	case *String:
		if r, ok := right.(*String); ok {
			switch operator {
			case "+":
				return &String{Value: l.Value + r.Value}
			case "==":
				return &Bool{Value: l.Value == r.Value}
			case "<":
				return &Bool{Value: l.Value < r.Value}
			case ">":
				return &Bool{Value: l.Value > r.Value}
			}
		}
	case *Char:
		if r, ok := right.(*Char); ok && operator == "==" {
			return &Bool{Value: l.Value == r.Value}
		}
	case *Bool:
		if r, ok := right.(*Bool); ok && operator == "==" {
			return &Bool{Value: l.Value == r.Value}
		}
	case *Vector:
		if r, ok := right.(*Vector); ok {
			switch operator {
			case "+":
				joined := &Vector{}
				joined.Elements = append(joined.Elements, l.Elements...)
				joined.Elements = append(joined.Elements, r.Elements...)
				return joined
			case "==":
				return &Bool{Value: objectEquals(l, r)}
			}
		}
	case *None, *Some:
		if operator == "==" {
			return &Bool{Value: objectEquals(left, right)}
		}
	case *Instance:
		return e.operatorMethod(tok, l, operator, right)
	}
	return e.errorf(tok, "unsupported operand types for '%s'", operator)
}

func negate(result Object) Object {
	if result == nil {
		return nil
	}
	b := result.(*Bool)
	return &Bool{Value: !b.Value}
}

var operatorMethods = map[string]string{
	"+":  "__add__",
	"-":  "__sub__",
	"*":  "__mul__",
	"/":  "__div__",
	"==": "__eq__",
	"<":  "__lt__",
	">":  "__gt__",
}

func (e *Evaluator) operatorMethod(tok token.Token, left *Instance, operator string, right Object) Object {
	name, ok := operatorMethods[operator]
	if !ok {
		return e.errorf(tok, "unsupported operand types for '%s'", operator)
	}
	method := e.lookupMethod(left, name)
	if method == nil {
		return e.errorf(tok, "'%s' does not support '%s'", left.Decl.Name.Value, operator)
	}
	return e.invoke(tok, method, left, []Object{right})
}

func (e *Evaluator) intOperation(tok token.Token, l *Int, operator string, r *Int) Object {
	switch operator {
	case "+":
		return &Int{Value: new(big.Int).Add(l.Value, r.Value)}
	case "-":
		return &Int{Value: new(big.Int).Sub(l.Value, r.Value)}
	case "*":
		return &Int{Value: new(big.Int).Mul(l.Value, r.Value)}
	case "/":
		if r.Value.Sign() == 0 {
			return e.errorf(tok, "division by zero")
		}
		quotient, _ := new(big.Rat).SetFrac(l.Value, r.Value).Float64()
		return &Float{Value: quotient}
	case "==":
		return &Bool{Value: l.Value.Cmp(r.Value) == 0}
	case "<":
		return &Bool{Value: l.Value.Cmp(r.Value) < 0}
	case ">":
		return &Bool{Value: l.Value.Cmp(r.Value) > 0}
	}
	return e.errorf(tok, "unsupported operand types for '%s'", operator)
}

func (e *Evaluator) floatOperation(tok token.Token, l *Float, operator string, r *Float) Object {
	switch operator {
	case "+":
		return &Float{Value: l.Value + r.Value}
	case "-":
		return &Float{Value: l.Value - r.Value}
	case "*":
		return &Float{Value: l.Value * r.Value}
	case "/":
		if r.Value == 0 {
			return e.errorf(tok, "division by zero")
		}
		return &Float{Value: l.Value / r.Value}
	case "==":
		return &Bool{Value: l.Value == r.Value}
	case "<":
		return &Bool{Value: l.Value < r.Value}
	case ">":
		return &Bool{Value: l.Value > r.Value}
	}
	return e.errorf(tok, "unsupported operand types for '%s'", operator)
}

func objectEquals(a, b Object) bool {
	switch l := a.(type) {
	case *Int:
		r, ok := b.(*Int)
		return ok && l.Value.Cmp(r.Value) == 0
	case *Float:
		r, ok := b.(*Float)
		return ok && l.Value == r.Value
	case *String:
		r, ok := b.(*String)
		return ok && l.Value == r.Value
	case *Char:
		r, ok := b.(*Char)
		return ok && l.Value == r.Value
	case *Bool:
		r, ok := b.(*Bool)
		return ok && l.Value == r.Value
	case *None:
		_, ok := b.(*None)
		return ok
	case *Some:
		r, ok := b.(*Some)
		return ok && objectEquals(l.Inner, r.Inner)
	case *Vector:
		r, ok := b.(*Vector)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !objectEquals(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (e *Evaluator) subscript(x *ast.Subscript, env *Environment) Object {
	left := e.expression(x.Left, env)
	if left == nil {
		return nil
	}
	index := e.expression(x.Index, env)
	if index == nil {
		return nil
	}
	switch container := left.(type) {
	case *Vector:
		i, ok := index.(*Int)
		if !ok || !i.Value.IsInt64() || i.Value.Int64() < 0 || i.Value.Int64() >= int64(len(container.Elements)) {
			return e.errorf(x.Token, "vector index out of range")
		}
		return container.Elements[i.Value.Int64()]
	case *String:
		i, ok := index.(*Int)
		if !ok {
			return e.errorf(x.Token, "string index must be an integer")
		}
		runes := []rune(container.Value)
		if !i.Value.IsInt64() || i.Value.Int64() < 0 || i.Value.Int64() >= int64(len(runes)) {
			return e.errorf(x.Token, "string index out of range")
		}
		return &Char{Value: runes[i.Value.Int64()]}
	case *Dict:
		for i, key := range container.Keys {
			if objectEquals(key, index) {
				return container.Values[i]
			}
		}
		return e.errorf(x.Token, "key %s is not in the dictionary", index.Inspect())
	}
	return e.errorf(x.Token, "cannot subscript this value")
}

func (e *Evaluator) fieldAccess(x *ast.FieldAccess, env *Environment) Object {
	object := e.expression(x.Object, env)
	if object == nil {
		return nil
	}
	switch obj := object.(type) {
	case *Instance:
		if value, ok := obj.Fields[x.Field.Value]; ok {
			return value
		}
		return e.errorf(x.Token, "'%s' has no field '%s'", obj.Decl.Name.Value, x.Field.Value)
	case *Ref:
		if x.Field.Value == "value" {
			return obj.Value
		}
		return e.errorf(x.Token, "a reference cell only has 'value'")
	case *String:
		if x.Field.Value == "length" {
			return NewInt(int64(len([]rune(obj.Value))))
		}
	case *Vector:
		if x.Field.Value == "length" {
			return NewInt(int64(len(obj.Elements)))
		}
	case *Dict:
		if x.Field.Value == "length" {
			return NewInt(int64(len(obj.Keys)))
		}
	case *Struct:
		if obj.Algebraic != nil {
			return e.variantValue(x, obj.Algebraic)
		}
	}
	return e.errorf(x.Token, "cannot access '%s' on this value", x.Field.Value)
}

// variantValue resolves 'Color.Red' without a call: only variants with no
// fields can be used as bare values.
func (e *Evaluator) variantValue(x *ast.FieldAccess, ad *ast.AlgebraicDeclaration) Object {
	for _, variant := range ad.Variants {
		if variant.Name.Value != x.Field.Value {
			continue
		}
		if len(variant.Fields) > 0 {
			return e.errorf(x.Token, "variant '%s' has fields and must be constructed", x.Field.Value)
		}
		return &Instance{Decl: variant, Algebraic: ad.Name.Value, Fields: map[string]Object{}}
	}
	return e.errorf(x.Token, "'%s' has no variant '%s'", ad.Name.Value, x.Field.Value)
}

func (e *Evaluator) cast(x *ast.Cast, env *Environment) Object {
	value := e.expression(x.Value, env)
	if value == nil {
		return nil
	}
	target, ok := x.Target.(*ast.NamedType)
	if !ok {
		return e.errorf(x.Token, "cannot cast to this type")
	}
	switch v := value.(type) {
	case *Int:
		if target.Name == "String" {
			return &String{Value: v.Value.String()}
		}
		// Integer-to-integer casts keep the value; range is checked
		// statically.
		return v
	case *Instance:
		method := e.lookupMethod(v, "to"+target.Name)
		if method == nil {
			return e.errorf(x.Token, "'%s' has no conversion to %s", v.Decl.Name.Value, target.Name)
		}
		return e.invoke(x.Token, method, v, nil)
	}
	return e.errorf(x.Token, "cannot cast this value")
}
