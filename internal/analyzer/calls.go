package analyzer

import (
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/symbols"
	"github.com/angel-lang/angel/internal/typesystem"
)

// Builtin callables available in every scope.
const (
	BuiltinPrint  = "print"
	BuiltinRead   = "read"
	BuiltinAppend = "append"
	BuiltinSplit  = "split"
	BuiltinLength = "length"
	// RefValue is the single member of a reference cell.
	RefValue = "value"
)

func (a *Analyzer) callExpression(e *ast.CallExpression, expected typesystem.Type) typesystem.Type {
	switch callee := e.Function.(type) {
	case *ast.Identifier:
		switch callee.Value {
		case BuiltinPrint:
			return a.printCall(e)
		case BuiltinRead:
			return a.readCall(e)
		}
		sym, ok := a.scope.Resolve(callee.Value)
		if !ok {
			a.errorf(diagnostics.UndefinedName, callee, "undefined name '%s'", callee.Value)
			return nil
		}
		switch sym.Kind {
		case symbols.FunctionSymbol:
			return a.functionCall(e, callee.Value, sym, expected)
		case symbols.TypeSymbol:
			if _, isStruct := a.registry.Structs[callee.Value]; isStruct {
				return a.initCall(e, callee.Value, expected)
			}
			a.errorf(diagnostics.TypeMismatch, callee, "type '%s' cannot be constructed directly", callee.Value)
			return nil
		}
		a.errorf(diagnostics.TypeMismatch, callee, "'%s' is not callable", callee.Value)
		return nil
	case *ast.FieldAccess:
		if ident, ok := callee.Object.(*ast.Identifier); ok {
			if sym, found := a.scope.Resolve(ident.Value); found && sym.Kind == symbols.TypeSymbol {
				if _, isAlgebraic := a.registry.Algebraics[ident.Value]; isAlgebraic {
					return a.variantCall(e, callee, ident.Value)
				}
				a.errorf(diagnostics.UnresolvedMember, callee.Field, "type '%s' has no member '%s'", ident.Value, callee.Field.Value)
				return nil
			}
		}
		return a.methodCall(e, callee)
	}
	a.errorf(diagnostics.TypeMismatch, e, "expression is not callable")
	return nil
}

func (a *Analyzer) printCall(e *ast.CallExpression) typesystem.Type {
	if len(e.Args) != 1 {
		a.errorf(diagnostics.TypeMismatch, e, "'print' expects 1 argument, got %d", len(e.Args))
		return nil
	}
	t := a.expression(e.Args[0], nil)
	if a.failed() {
		return nil
	}
	if !a.printable(t) {
		a.errorf(diagnostics.TypeMismatch, e.Args[0], "value of type %s cannot be printed", t)
		return nil
	}
	a.result.Calls[e] = &CallInfo{Kind: CallBuiltin, Name: BuiltinPrint}
	return a.setType(e, typesystem.Primitive{Kind: typesystem.Void})
}

func (a *Analyzer) readCall(e *ast.CallExpression) typesystem.Type {
	stringType := typesystem.Primitive{Kind: typesystem.String}
	if len(e.Args) != 1 {
		a.errorf(diagnostics.TypeMismatch, e, "'read' expects 1 argument, got %d", len(e.Args))
		return nil
	}
	t := a.expression(e.Args[0], stringType)
	if a.failed() {
		return nil
	}
	if !typesystem.Equal(t, stringType) {
		a.errorf(diagnostics.TypeMismatch, e.Args[0], "'read' expects a String prompt, got %s", t)
		return nil
	}
	a.result.Calls[e] = &CallInfo{Kind: CallBuiltin, Name: BuiltinRead}
	return a.setType(e, stringType)
}

func (a *Analyzer) printable(t typesystem.Type) bool {
	switch tt := t.(type) {
	case typesystem.Primitive:
		return tt.Kind != typesystem.Void
	case typesystem.Vector:
		return a.printable(tt.Element)
	case typesystem.Ref:
		return a.printable(tt.Inner)
	case typesystem.Param:
		return a.genericConforms(tt, typesystem.InterfaceConvertibleToString)
	}
	return a.resolver.Conforms(t, typesystem.InterfaceConvertibleToString)
}

func (a *Analyzer) functionCall(e *ast.CallExpression, name string, sym *symbols.Symbol, expected typesystem.Type) typesystem.Type {
	if len(e.Args) != len(sym.Params) {
		a.errorf(diagnostics.TypeMismatch, e, "function '%s' expects %d argument(s), got %d", name, len(sym.Params), len(e.Args))
		return nil
	}
	subst := typesystem.Subst{}
	if expected != nil && len(sym.TypeParams) > 0 {
		typesystem.Match(sym.Return, expected, subst)
	}
	for i, arg := range e.Args {
		pattern := sym.Params[i]
		got := a.expression(arg, a.groundedExpectation(pattern, subst))
		if a.failed() {
			return nil
		}
		got = widen(derefIfNeeded(got, pattern))
		if !typesystem.Match(pattern, got, subst) {
			a.errorf(diagnostics.TypeMismatch, arg, "argument %d of '%s' has type %s, expected %s", i+1, name, got, typesystem.Apply(pattern, subst))
			return nil
		}
	}
	typeArgs := make([]typesystem.Type, 0, len(sym.TypeParams))
	for _, tp := range sym.TypeParams {
		bound, ok := subst[tp]
		if !ok {
			a.errorf(diagnostics.TypeMismatch, e, "cannot infer type parameter '%s' of '%s'", tp, name)
			return nil
		}
		typeArgs = append(typeArgs, bound)
	}
	a.result.Calls[e] = &CallInfo{Kind: CallFunction, Name: name, TypeArgs: typeArgs}
	return a.setType(e, typesystem.Apply(sym.Return, subst))
}

func (a *Analyzer) initCall(e *ast.CallExpression, name string, expected typesystem.Type) typesystem.Type {
	def := a.registry.Structs[name]
	subst := typesystem.Subst{}
	if want, ok := expected.(typesystem.StructInstance); ok && want.Name == name {
		for i, p := range def.TypeParams {
			if i < len(want.Args) {
				subst[p] = want.Args[i]
			}
		}
	}

	params, _, ok := a.selectInit(def, len(e.Args))
	if !ok {
		a.errorf(diagnostics.TypeMismatch, e, "no initializer of '%s' takes %d argument(s)", name, len(e.Args))
		return nil
	}
	if !a.matchArgs(e.Args, params, subst, name) {
		return nil
	}

	args := make([]typesystem.Type, 0, len(def.TypeParams))
	for _, tp := range def.TypeParams {
		bound, found := subst[tp]
		if !found {
			a.errorf(diagnostics.TypeMismatch, e, "cannot infer type argument '%s' of '%s'", tp, name)
			return nil
		}
		args = append(args, bound)
	}
	result := typesystem.StructInstance{Name: name, Args: args}
	a.result.Calls[e] = &CallInfo{Kind: CallInit, Name: name, Target: result, TypeArgs: args}
	return a.setType(e, result)
}

// selectInit picks the initializer accepting the given argument count.
// A struct with no declared initializers exposes the synthesized one taking
// the public fields in declaration order, with defaulted fields omissible
// from the tail; private fields fill from their defaults.
func (a *Analyzer) selectInit(def *typesystem.StructDef, argc int) ([]typesystem.Type, []bool, bool) {
	if len(def.Inits) == 0 {
		var params []typesystem.Type
		var defaults []bool
		for _, f := range def.Fields {
			if typesystem.IsPrivate(f.Name) {
				continue
			}
			params = append(params, f.Type)
			defaults = append(defaults, f.HasDefault)
		}
		required := len(params)
		for required > 0 && defaults[required-1] {
			required--
		}
		if argc >= required && argc <= len(params) {
			return params[:argc], defaults[:argc], true
		}
		return nil, nil, false
	}
	for _, init := range def.Inits {
		if len(init.Params) == argc {
			return init.Params, init.Defaults, true
		}
	}
	return nil, nil, false
}

func (a *Analyzer) matchArgs(args []ast.Expression, params []typesystem.Type, subst typesystem.Subst, name string) bool {
	for i, arg := range args {
		pattern := params[i]
		got := a.expression(arg, a.groundedExpectation(pattern, subst))
		if a.failed() {
			return false
		}
		got = widen(derefIfNeeded(got, pattern))
		if !typesystem.Match(pattern, got, subst) {
			a.errorf(diagnostics.TypeMismatch, arg, "argument %d of '%s' has type %s, expected %s", i+1, name, got, typesystem.Apply(pattern, subst))
			return false
		}
	}
	return true
}

// groundedExpectation applies the substitution to a parameter pattern and
// returns it as the argument's expected type only when no parameters remain
// free, so literals never adopt a placeholder.
func (a *Analyzer) groundedExpectation(pattern typesystem.Type, subst typesystem.Subst) typesystem.Type {
	applied := typesystem.Apply(pattern, subst)
	if len(typesystem.FreeParams(applied)) > 0 {
		return nil
	}
	return applied
}

func (a *Analyzer) variantCall(e *ast.CallExpression, fa *ast.FieldAccess, algName string) typesystem.Type {
	def := a.registry.Algebraics[algName]
	vdef, ok := def.Variant(fa.Field.Value)
	if !ok {
		a.errorf(diagnostics.UnresolvedMember, fa.Field, "type '%s' has no variant '%s'", algName, fa.Field.Value)
		return nil
	}
	params, _, ok := a.selectInit(vdef, len(e.Args))
	if !ok {
		a.errorf(diagnostics.TypeMismatch, e, "no initializer of '%s.%s' takes %d argument(s)", algName, vdef.Name, len(e.Args))
		return nil
	}
	if !a.matchArgs(e.Args, params, typesystem.Subst{}, algName+"."+vdef.Name) {
		return nil
	}
	result := typesystem.AlgebraicInstance{Name: algName, Variant: vdef.Name}
	a.result.Members[fa] = &MemberRef{Kind: MemberVariant, Name: vdef.Name, Object: typesystem.AlgebraicInstance{Name: algName}}
	a.setType(fa, result)
	a.result.Calls[e] = &CallInfo{Kind: CallVariantCtor, Name: vdef.Name, Target: result}
	return a.setType(e, result)
}

func (a *Analyzer) methodCall(e *ast.CallExpression, fa *ast.FieldAccess) typesystem.Type {
	objType := a.expression(fa.Object, nil)
	if a.failed() {
		return nil
	}
	objType = derefType(objType)
	name := fa.Field.Value

	if t, handled := a.builtinMethodCall(e, fa, objType); handled {
		return t
	}

	sig, ok := a.lookupMethod(objType, name)
	if !ok {
		a.errorf(diagnostics.UnresolvedMember, fa.Field, "type %s has no member '%s'", objType, name)
		return nil
	}
	if !a.memberVisible(name, objType) {
		a.errorf(diagnostics.PrivateMemberAccess, fa.Field, "member '%s' of type %s is private", name, objType)
		return nil
	}
	if len(e.Args) != len(sig.Params) {
		a.errorf(diagnostics.TypeMismatch, e, "method '%s' expects %d argument(s), got %d", name, len(sig.Params), len(e.Args))
		return nil
	}
	for i, arg := range e.Args {
		got := a.expression(arg, sig.Params[i])
		if a.failed() {
			return nil
		}
		if !a.assignable(got, sig.Params[i]) {
			a.errorf(diagnostics.TypeMismatch, arg, "argument %d of '%s' has type %s, expected %s", i+1, name, got, sig.Params[i])
			return nil
		}
	}

	kind := CallMethod
	memberKind := MemberMethod
	if alg, isAlgebraic := objType.(typesystem.AlgebraicInstance); isAlgebraic {
		if def, found := a.registry.Algebraics[alg.Name]; found {
			if _, shared := def.SharedMethod(name); shared {
				kind = CallSharedMethod
				memberKind = MemberSharedMethod
			}
		}
	}
	a.result.Members[fa] = &MemberRef{Kind: memberKind, Name: name, Object: objType}
	a.setType(fa, typesystem.Function{Params: sig.Params, Return: sig.Return})
	a.result.Calls[e] = &CallInfo{Kind: kind, Name: name, Target: objType}
	return a.setType(e, sig.Return)
}

// builtinMethodCall handles the container methods the runtime provides.
func (a *Analyzer) builtinMethodCall(e *ast.CallExpression, fa *ast.FieldAccess, objType typesystem.Type) (typesystem.Type, bool) {
	name := fa.Field.Value
	switch ot := objType.(type) {
	case typesystem.Vector:
		if name == BuiltinAppend {
			if len(e.Args) != 1 {
				a.errorf(diagnostics.TypeMismatch, e, "'append' expects 1 argument, got %d", len(e.Args))
				return nil, true
			}
			got := a.expression(e.Args[0], ot.Element)
			if a.failed() {
				return nil, true
			}
			if !a.assignable(got, ot.Element) {
				a.errorf(diagnostics.TypeMismatch, e.Args[0], "cannot append %s to %s", got, objType)
				return nil, true
			}
			a.result.Members[fa] = &MemberRef{Kind: MemberBuiltin, Name: name, Object: objType}
			a.result.Calls[e] = &CallInfo{Kind: CallBuiltin, Name: BuiltinAppend, Target: objType}
			return a.setType(e, typesystem.Primitive{Kind: typesystem.Void}), true
		}
	case typesystem.Primitive:
		if ot.Kind == typesystem.String && name == BuiltinSplit {
			charType := typesystem.Primitive{Kind: typesystem.Char}
			if len(e.Args) != 1 {
				a.errorf(diagnostics.TypeMismatch, e, "'split' expects 1 argument, got %d", len(e.Args))
				return nil, true
			}
			got := a.expression(e.Args[0], charType)
			if a.failed() {
				return nil, true
			}
			if !typesystem.Equal(got, charType) {
				a.errorf(diagnostics.TypeMismatch, e.Args[0], "'split' expects a Char separator, got %s", got)
				return nil, true
			}
			a.result.Members[fa] = &MemberRef{Kind: MemberBuiltin, Name: name, Object: objType}
			a.result.Calls[e] = &CallInfo{Kind: CallBuiltin, Name: BuiltinSplit, Target: objType}
			return a.setType(e, typesystem.Vector{Element: typesystem.Primitive{Kind: typesystem.String}}), true
		}
	}
	return nil, false
}

// lookupMethod resolves a method on any receiver the language allows:
// declared types through their member tables, interface-typed values
// through the interface definition, constrained type parameters through
// their where clauses.
func (a *Analyzer) lookupMethod(objType typesystem.Type, name string) (typesystem.MethodSig, bool) {
	if tbl, ok := a.resolver.Table(objType); ok {
		if sig, found := tbl.Method(name); found {
			return sig, true
		}
		return typesystem.MethodSig{}, false
	}
	if iface, ok := objType.(typesystem.InterfaceInstance); ok {
		return a.interfaceMethod(iface.Name, objType, name)
	}
	if p, ok := objType.(typesystem.Param); ok {
		for _, w := range a.whereScope {
			if w.Param != p.Name {
				continue
			}
			if sig, found := a.interfaceMethod(w.Interface, objType, name); found {
				return sig, true
			}
		}
	}
	return typesystem.MethodSig{}, false
}

func (a *Analyzer) interfaceMethod(ifaceName string, self typesystem.Type, name string) (typesystem.MethodSig, bool) {
	def, ok := a.registry.Interfaces[ifaceName]
	if !ok {
		return typesystem.MethodSig{}, false
	}
	for _, m := range def.Methods {
		if m.Name == name {
			sig := typesystem.MethodSig{Name: m.Name, Return: typesystem.ApplySelf(m.Return, self)}
			for _, p := range m.Params {
				sig.Params = append(sig.Params, typesystem.ApplySelf(p, self))
			}
			return sig, true
		}
	}
	for _, parent := range def.Extends {
		if sig, found := a.interfaceMethod(parent, self, name); found {
			return sig, true
		}
	}
	return typesystem.MethodSig{}, false
}

func (a *Analyzer) fieldAccess(fa *ast.FieldAccess) typesystem.Type {
	if ident, ok := fa.Object.(*ast.Identifier); ok {
		if sym, found := a.scope.Resolve(ident.Value); found && sym.Kind == symbols.TypeSymbol {
			return a.typeMember(fa, ident.Value)
		}
	}
	objType := a.expression(fa.Object, nil)
	if a.failed() {
		return nil
	}
	if ref, isRef := objType.(typesystem.Ref); isRef {
		if fa.Field.Value == RefValue {
			a.result.Members[fa] = &MemberRef{Kind: MemberRefValue, Name: RefValue, Object: objType}
			return a.setType(fa, ref.Inner)
		}
		objType = ref.Inner
	}
	name := fa.Field.Value

	if name == BuiltinLength {
		switch ot := objType.(type) {
		case typesystem.Primitive:
			if ot.Kind == typesystem.String {
				a.result.Members[fa] = &MemberRef{Kind: MemberBuiltin, Name: name, Object: objType}
				return a.setType(fa, typesystem.Primitive{Kind: typesystem.U64})
			}
		case typesystem.Vector, typesystem.Dict:
			a.result.Members[fa] = &MemberRef{Kind: MemberBuiltin, Name: name, Object: objType}
			return a.setType(fa, typesystem.Primitive{Kind: typesystem.U64})
		}
	}

	tbl, ok := a.resolver.Table(objType)
	if !ok {
		if iface, isInterface := objType.(typesystem.InterfaceInstance); isInterface {
			if ft, found := a.interfaceField(iface.Name, objType, name); found {
				a.result.Members[fa] = &MemberRef{Kind: MemberField, Name: name, Object: objType}
				return a.setType(fa, ft)
			}
		}
		a.errorf(diagnostics.UnresolvedMember, fa.Field, "type %s has no member '%s'", objType, name)
		return nil
	}
	field, found := tbl.Field(name)
	if !found {
		if _, isMethod := tbl.Method(name); isMethod {
			a.errorf(diagnostics.TypeMismatch, fa.Field, "method '%s' must be called", name)
			return nil
		}
		a.errorf(diagnostics.UnresolvedMember, fa.Field, "type %s has no member '%s'", objType, name)
		return nil
	}
	if !a.memberVisible(name, objType) {
		a.errorf(diagnostics.PrivateMemberAccess, fa.Field, "member '%s' of type %s is private", name, objType)
		return nil
	}
	a.result.Members[fa] = &MemberRef{Kind: MemberField, Name: name, Object: objType}
	return a.setType(fa, field.Type)
}

func (a *Analyzer) interfaceField(ifaceName string, self typesystem.Type, name string) (typesystem.Type, bool) {
	def, ok := a.registry.Interfaces[ifaceName]
	if !ok {
		return nil, false
	}
	for _, f := range def.Fields {
		if f.Name == name {
			return typesystem.ApplySelf(f.Type, self), true
		}
	}
	for _, parent := range def.Extends {
		if ft, found := a.interfaceField(parent, self, name); found {
			return ft, true
		}
	}
	return nil, false
}

// typeMember handles Name.member where Name is a declared type: only
// zero-field algebraic variants are values.
func (a *Analyzer) typeMember(fa *ast.FieldAccess, typeName string) typesystem.Type {
	def, isAlgebraic := a.registry.Algebraics[typeName]
	if !isAlgebraic {
		a.errorf(diagnostics.UnresolvedMember, fa.Field, "type '%s' has no member '%s'", typeName, fa.Field.Value)
		return nil
	}
	vdef, ok := def.Variant(fa.Field.Value)
	if !ok {
		a.errorf(diagnostics.UnresolvedMember, fa.Field, "type '%s' has no variant '%s'", typeName, fa.Field.Value)
		return nil
	}
	if len(vdef.Fields) > 0 {
		a.errorf(diagnostics.TypeMismatch, fa.Field, "variant '%s' carries fields and must be constructed", vdef.Name)
		return nil
	}
	a.result.Members[fa] = &MemberRef{Kind: MemberVariant, Name: vdef.Name, Object: typesystem.AlgebraicInstance{Name: typeName}}
	return a.setType(fa, typesystem.AlgebraicInstance{Name: typeName, Variant: vdef.Name})
}

func (a *Analyzer) memberVisible(name string, objType typesystem.Type) bool {
	if !typesystem.IsPrivate(name) {
		return true
	}
	switch ot := objType.(type) {
	case typesystem.StructInstance:
		return ot.Name == a.structName
	case typesystem.AlgebraicInstance:
		return ot.Name == a.structName
	}
	return false
}

func (a *Analyzer) subscript(s *ast.Subscript) typesystem.Type {
	leftType := a.expression(s.Left, nil)
	if a.failed() {
		return nil
	}
	leftType = derefType(leftType)
	switch lt := leftType.(type) {
	case typesystem.Vector:
		a.subscriptIndex(s.Index)
		if a.failed() {
			return nil
		}
		return a.setType(s, lt.Element)
	case typesystem.Dict:
		got := a.expression(s.Index, lt.Key)
		if a.failed() {
			return nil
		}
		if !a.assignable(got, lt.Key) {
			a.errorf(diagnostics.TypeMismatch, s.Index, "dictionary key has type %s, expected %s", got, lt.Key)
			return nil
		}
		return a.setType(s, lt.Value)
	case typesystem.Primitive:
		if lt.Kind == typesystem.String {
			a.subscriptIndex(s.Index)
			if a.failed() {
				return nil
			}
			return a.setType(s, typesystem.Primitive{Kind: typesystem.Char})
		}
	}
	a.errorf(diagnostics.TypeMismatch, s, "type %s is not subscriptable", leftType)
	return nil
}

func (a *Analyzer) subscriptIndex(index ast.Expression) {
	got := a.expression(index, typesystem.Primitive{Kind: typesystem.U64})
	if a.failed() {
		return
	}
	p, ok := derefType(got).(typesystem.Primitive)
	if !ok || !p.IsFiniteInt() {
		a.errorf(diagnostics.TypeMismatch, index, "subscript index must be an integer, got %s", got)
	}
}

func (a *Analyzer) castExpression(c *ast.Cast) typesystem.Type {
	valueType := a.expression(c.Value, nil)
	if a.failed() {
		return nil
	}
	valueType = derefType(valueType)
	target := a.resolveType(c.Target)
	if a.failed() {
		return nil
	}

	if typesystem.Equal(valueType, target) {
		a.result.Casts[c] = ""
		return a.setType(c, target)
	}
	if vp, ok := valueType.(typesystem.Primitive); ok {
		if tp, ok := target.(typesystem.Primitive); ok {
			vNumeric := vp.IsFiniteInt() || vp.IsFloat()
			tNumeric := tp.IsFiniteInt() || tp.IsFloat()
			if vNumeric && (tNumeric || tp.Kind == typesystem.String) {
				a.result.Casts[c] = ""
				return a.setType(c, target)
			}
		}
	}

	var matches []string
	if tbl, ok := a.resolver.Table(valueType); ok {
		for _, m := range tbl.Methods {
			if len(m.Params) == 0 && typesystem.Equal(m.Return, target) {
				matches = append(matches, m.Name)
			}
		}
	}
	switch len(matches) {
	case 0:
		a.errorf(diagnostics.TypeMismatch, c, "no conversion from %s to %s", valueType, target)
		return nil
	case 1:
		a.result.Casts[c] = matches[0]
		return a.setType(c, target)
	}
	a.errorf(diagnostics.AmbiguousConversion, c, "multiple conversions from %s to %s", valueType, target)
	return nil
}

// derefIfNeeded strips a reference only when the parameter itself is not a
// reference pattern.
func derefIfNeeded(got, pattern typesystem.Type) typesystem.Type {
	if _, wantRef := pattern.(typesystem.Ref); wantRef {
		return got
	}
	return derefType(got)
}
