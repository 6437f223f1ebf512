package evaluator

import (
	"fmt"
	"strings"

	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/token"
)

func (e *Evaluator) callExpression(x *ast.CallExpression, env *Environment) Object {
	if name, ok := x.Function.(*ast.Identifier); ok {
		switch name.Value {
		case "print":
			return e.printCall(x, env)
		case "read":
			return e.readCall(x, env)
		}
	}
	if fa, ok := x.Function.(*ast.FieldAccess); ok {
		return e.dotCall(x, fa, env)
	}
	callee := e.expression(x.Function, env)
	if callee == nil {
		return nil
	}
	args := e.evalArgs(x.Args, env)
	if args == nil && len(x.Args) > 0 {
		return nil
	}
	switch fn := callee.(type) {
	case *Function:
		return e.applyFunction(x.Token, fn, args)
	case *Struct:
		if fn.Algebraic != nil {
			return e.errorf(x.Token, "'%s' cannot be constructed directly", fn.Algebraic.Name.Value)
		}
		return e.construct(x.Token, fn.Decl, "", args)
	}
	return e.errorf(x.Token, "this value is not callable")
}

// dotCall resolves obj.method(...) and Algebraic.Variant(...) calls.
func (e *Evaluator) dotCall(x *ast.CallExpression, fa *ast.FieldAccess, env *Environment) Object {
	object := e.expression(fa.Object, env)
	if object == nil {
		return nil
	}
	if st, ok := object.(*Struct); ok && st.Algebraic != nil {
		args := e.evalArgs(x.Args, env)
		if args == nil && len(x.Args) > 0 {
			return nil
		}
		for _, variant := range st.Algebraic.Variants {
			if variant.Name.Value == fa.Field.Value {
				return e.construct(x.Token, variant, st.Algebraic.Name.Value, args)
			}
		}
		return e.errorf(x.Token, "'%s' has no variant '%s'", st.Algebraic.Name.Value, fa.Field.Value)
	}
	if result, handled := e.builtinMethod(x, fa, object, env); handled {
		return result
	}
	instance := unwrapInstance(object)
	if instance == nil {
		return e.errorf(x.Token, "cannot call '%s' on this value", fa.Field.Value)
	}
	method := e.lookupMethod(instance, fa.Field.Value)
	if method == nil {
		return e.errorf(x.Token, "'%s' has no method '%s'", instance.Decl.Name.Value, fa.Field.Value)
	}
	args := e.evalArgs(x.Args, env)
	if args == nil && len(x.Args) > 0 {
		return nil
	}
	return e.invoke(x.Token, method, instance, args)
}

func unwrapInstance(object Object) *Instance {
	if ref, ok := object.(*Ref); ok {
		object = ref.Value
	}
	instance, _ := object.(*Instance)
	return instance
}

// builtinMethod handles the container methods the language predefines.
func (e *Evaluator) builtinMethod(x *ast.CallExpression, fa *ast.FieldAccess, object Object, env *Environment) (Object, bool) {
	switch obj := object.(type) {
	case *Vector:
		if fa.Field.Value == "append" && len(x.Args) == 1 {
			value := e.expression(x.Args[0], env)
			if value == nil {
				return nil, true
			}
			obj.Elements = append(obj.Elements, value)
			return &Void{}, true
		}
	case *String:
		if fa.Field.Value == "split" && len(x.Args) == 1 {
			value := e.expression(x.Args[0], env)
			if value == nil {
				return nil, true
			}
			sep, ok := value.(*Char)
			if !ok {
				return e.errorf(x.Token, "split expects a Char separator"), true
			}
			parts := strings.Split(obj.Value, string(sep.Value))
			result := &Vector{}
			for _, part := range parts {
				result.Elements = append(result.Elements, &String{Value: part})
			}
			return result, true
		}
	}
	return nil, false
}

func (e *Evaluator) evalArgs(exprs []ast.Expression, env *Environment) []Object {
	args := make([]Object, 0, len(exprs))
	for _, expr := range exprs {
		value := e.expression(expr, env)
		if value == nil {
			return nil
		}
		args = append(args, value)
	}
	return args
}

func (e *Evaluator) applyFunction(tok token.Token, fn *Function, args []Object) Object {
	if len(args) != len(fn.Args) {
		return e.errorf(tok, "'%s' expects %d arguments, got %d", fn.Name, len(fn.Args), len(args))
	}
	inner := NewEnclosedEnvironment(fn.Env)
	for i, arg := range fn.Args {
		inner.Set(arg.Name, args[i])
	}
	result := e.evalBlock(fn.Body, inner)
	if result == nil {
		return nil
	}
	if rv, ok := result.(*ReturnValue); ok {
		return rv.Value
	}
	return &Void{}
}

// construct builds an instance from a declared init matching the arity,
// or from the synthesized constructor assigning public fields in
// declaration order with trailing defaults.
func (e *Evaluator) construct(tok token.Token, decl *ast.StructDeclaration, algebraic string, args []Object) Object {
	instance := &Instance{Decl: decl, Algebraic: algebraic, Fields: map[string]Object{}}
	for _, field := range decl.Fields {
		if field.Value == nil {
			continue
		}
		value := e.expression(field.Value, e.env)
		if value == nil {
			return nil
		}
		instance.Fields[field.Name] = value
	}
	for _, init := range decl.Inits {
		if len(init.Args) != len(args) {
			continue
		}
		inner := NewEnclosedEnvironment(e.env)
		inner.Set("self", instance)
		for i, arg := range init.Args {
			inner.Set(arg.Name, args[i])
		}
		if e.evalBlock(init.Body, inner) == nil {
			return nil
		}
		return instance
	}
	if len(decl.Inits) > 0 {
		return e.errorf(tok, "no initializer of '%s' takes %d arguments", decl.Name.Value, len(args))
	}
	var public []*ast.FieldDeclaration
	for _, field := range decl.Fields {
		if !strings.HasPrefix(field.Name, "_") {
			public = append(public, field)
		}
	}
	if len(args) > len(public) {
		return e.errorf(tok, "'%s' takes at most %d arguments, got %d", decl.Name.Value, len(public), len(args))
	}
	for i, field := range public {
		if i < len(args) {
			instance.Fields[field.Name] = args[i]
			continue
		}
		if _, ok := instance.Fields[field.Name]; !ok {
			return e.errorf(tok, "missing argument for field '%s' of '%s'", field.Name, decl.Name.Value)
		}
	}
	return instance
}

// lookupMethod searches the variant's own methods, the owning algebraic
// type's shared methods, and extension methods, in that order.
func (e *Evaluator) lookupMethod(instance *Instance, name string) *ast.MethodDeclaration {
	for _, method := range instance.Decl.Methods {
		if method.Name == name {
			return method
		}
	}
	if instance.Algebraic != "" {
		if ad, ok := e.algebraics[instance.Algebraic]; ok {
			for _, method := range ad.Methods {
				if method.Name == name {
					return method
				}
			}
		}
	}
	for _, method := range e.extensions[instance.Decl.Name.Value] {
		if method.Name == name {
			return method
		}
	}
	return nil
}

func (e *Evaluator) invoke(tok token.Token, method *ast.MethodDeclaration, instance *Instance, args []Object) Object {
	if len(args) != len(method.Args) {
		return e.errorf(tok, "'%s' expects %d arguments, got %d", method.Name, len(method.Args), len(args))
	}
	inner := NewEnclosedEnvironment(e.env)
	inner.Set("self", instance)
	for i, arg := range method.Args {
		inner.Set(arg.Name, args[i])
	}
	result := e.evalBlock(method.Body, inner)
	if result == nil {
		return nil
	}
	if rv, ok := result.(*ReturnValue); ok {
		return rv.Value
	}
	return &Void{}
}

func (e *Evaluator) printCall(x *ast.CallExpression, env *Environment) Object {
	if len(x.Args) != 1 {
		return e.errorf(x.Token, "print takes exactly one argument")
	}
	value := e.expression(x.Args[0], env)
	if value == nil {
		return nil
	}
	fmt.Fprintln(e.out, Render(value))
	return &Void{}
}

// Render is how printed and echoed values appear: strings and characters
// render raw, everything else through Inspect.
func Render(value Object) string {
	switch v := value.(type) {
	case *String:
		return v.Value
	case *Char:
		return string(v.Value)
	}
	return value.Inspect()
}

func (e *Evaluator) readCall(x *ast.CallExpression, env *Environment) Object {
	if len(x.Args) != 1 {
		return e.errorf(x.Token, "read takes exactly one argument")
	}
	prompt := e.expression(x.Args[0], env)
	if prompt == nil {
		return nil
	}
	p, ok := prompt.(*String)
	if !ok {
		return e.errorf(x.Token, "read expects a String prompt")
	}
	fmt.Fprint(e.out, p.Value)
	line, err := e.in.ReadString('\n')
	if err != nil && line == "" {
		return &String{Value: ""}
	}
	return &String{Value: strings.TrimRight(line, "\r\n")}
}
