package analyzer

import (
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/symbols"
	"github.com/angel-lang/angel/internal/typesystem"
)

func (a *Analyzer) functionDeclaration(fd *ast.FunctionDeclaration) {
	if _, exists := a.scope.ResolveLocal(fd.Name.Value); exists {
		a.errorf(diagnostics.DuplicateDefinition, fd, "name '%s' is already defined", fd.Name.Value)
		return
	}

	prevParams := a.typeParams
	a.typeParams = append(append([]string(nil), prevParams...), a.implicitTypeParams(fd)...)
	ownParams := a.typeParams[len(prevParams):]

	params := make([]typesystem.Type, len(fd.Args))
	for i, arg := range fd.Args {
		params[i] = a.resolveType(arg.Type)
		if a.failed() {
			a.typeParams = prevParams
			return
		}
	}
	var ret typesystem.Type = typesystem.Primitive{Kind: typesystem.Void}
	if fd.ReturnType != nil {
		ret = a.resolveType(fd.ReturnType)
		if a.failed() {
			a.typeParams = prevParams
			return
		}
	}

	fd.TypeParams = ownParams
	a.setType(fd, typesystem.Function{Params: params, Return: ret})
	a.scope.Define(&symbols.Symbol{
		Name:       fd.Name.Value,
		Kind:       symbols.FunctionSymbol,
		Type:       typesystem.Function{Params: params, Return: ret},
		TypeParams: ownParams,
		Params:     params,
		Return:     ret,
		Line:       fd.Token.Line,
		Column:     fd.Token.Column,
	})
	a.result.FunctionDecls[fd.Name.Value] = fd

	a.checkCallable(fd.Args, params, ret, fd.Body, nil, "")
	a.typeParams = prevParams
}

// implicitTypeParams collects signature type names that resolve to nothing
// declared. Such names become the function's generic parameters, in
// first-use order.
func (a *Analyzer) implicitTypeParams(fd *ast.FunctionDeclaration) []string {
	var params []string
	seen := map[string]bool{}
	var walk func(te ast.TypeExpression)
	walk = func(te ast.TypeExpression) {
		switch t := te.(type) {
		case *ast.NamedType:
			if len(t.Args) > 0 {
				for _, arg := range t.Args {
					walk(arg)
				}
				return
			}
			if a.typeNameKnown(t.Name) || seen[t.Name] {
				return
			}
			seen[t.Name] = true
			params = append(params, t.Name)
		case *ast.VectorType:
			walk(t.Element)
		case *ast.DictType:
			walk(t.Key)
			walk(t.Value)
		case *ast.OptionalType:
			walk(t.Inner)
		case *ast.RefType:
			walk(t.Inner)
		}
	}
	for _, arg := range fd.Args {
		walk(arg.Type)
	}
	if fd.ReturnType != nil {
		walk(fd.ReturnType)
	}
	return params
}

func (a *Analyzer) typeNameKnown(name string) bool {
	for _, p := range a.typeParams {
		if name == p {
			return true
		}
	}
	if _, ok := typesystem.PrimitiveByName(name); ok {
		return true
	}
	if _, ok := a.registry.Structs[name]; ok {
		return true
	}
	if _, ok := a.registry.Interfaces[name]; ok {
		return true
	}
	_, ok := a.registry.Algebraics[name]
	return ok
}

func (a *Analyzer) structDeclaration(sd *ast.StructDeclaration) {
	def := a.buildStructDef(sd, "")
	if a.failed() {
		return
	}
	if !a.registry.RegisterStruct(def) {
		a.errorf(diagnostics.DuplicateDefinition, sd, "type '%s' is already defined", sd.Name.Value)
		return
	}
	a.scope.Define(&symbols.Symbol{Name: sd.Name.Value, Kind: symbols.TypeSymbol})
	a.result.StructDecls[sd.Name.Value] = sd

	selfArgs := make([]typesystem.Type, len(sd.TypeParams))
	for i, p := range sd.TypeParams {
		selfArgs[i] = typesystem.Param{Name: p}
	}
	self := typesystem.StructInstance{Name: sd.Name.Value, Args: selfArgs}
	a.checkStructBodies(sd, def, self)
	if a.failed() {
		return
	}
	for _, iface := range sd.Interfaces {
		a.checkConformance(self, iface)
		if a.failed() {
			return
		}
	}
}

// buildStructDef lowers a struct declaration to its registry signature.
// Bodies are not checked here.
func (a *Analyzer) buildStructDef(sd *ast.StructDeclaration, algebraicParent string) *typesystem.StructDef {
	prevParams := a.typeParams
	a.typeParams = append(append([]string(nil), prevParams...), sd.TypeParams...)
	defer func() { a.typeParams = prevParams }()

	def := &typesystem.StructDef{
		Name:            sd.Name.Value,
		TypeParams:      sd.TypeParams,
		AlgebraicParent: algebraicParent,
	}
	for _, iface := range sd.Interfaces {
		if _, ok := a.registry.Interfaces[iface.Value]; !ok {
			a.errorf(diagnostics.UndefinedName, iface, "undefined interface '%s'", iface.Value)
			return nil
		}
		def.Interfaces = append(def.Interfaces, iface.Value)
	}
	for _, f := range sd.Fields {
		if _, dup := def.Field(f.Name); dup {
			a.errorf(diagnostics.DuplicateDefinition, f, "field '%s' is already defined", f.Name)
			return nil
		}
		ft := a.resolveType(f.Type)
		if a.failed() {
			return nil
		}
		a.setType(f, ft)
		def.Fields = append(def.Fields, typesystem.FieldSig{Name: f.Name, Type: ft, HasDefault: f.Value != nil})
	}
	for _, init := range sd.Inits {
		sig := typesystem.InitSig{}
		for _, arg := range init.Args {
			at := a.resolveType(arg.Type)
			if a.failed() {
				return nil
			}
			sig.Params = append(sig.Params, at)
			sig.Defaults = append(sig.Defaults, false)
		}
		def.Inits = append(def.Inits, sig)
	}
	// The synthesized initializer only takes public fields, so every
	// private field must be able to fill itself from a default.
	if len(sd.Inits) == 0 {
		for _, f := range def.Fields {
			if typesystem.IsPrivate(f.Name) && !f.HasDefault {
				a.errorf(diagnostics.PrivateFieldNotInitialized, sd,
					"private field '%s' of '%s' needs a default value or an initializer", f.Name, sd.Name.Value)
				return nil
			}
		}
	}
	for _, m := range sd.Methods {
		if _, dup := def.Method(m.Name); dup {
			a.errorf(diagnostics.DuplicateDefinition, m, "method '%s' is already defined", m.Name)
			return nil
		}
		sig, ok := a.methodSig(m)
		if !ok {
			return nil
		}
		def.Methods = append(def.Methods, sig)
	}
	return def
}

func (a *Analyzer) methodSig(m *ast.MethodDeclaration) (typesystem.MethodSig, bool) {
	sig := typesystem.MethodSig{Name: m.Name, Return: typesystem.Primitive{Kind: typesystem.Void}}
	for _, arg := range m.Args {
		at := a.resolveType(arg.Type)
		if a.failed() {
			return sig, false
		}
		sig.Params = append(sig.Params, at)
	}
	if m.ReturnType != nil {
		sig.Return = a.resolveType(m.ReturnType)
		if a.failed() {
			return sig, false
		}
	}
	return sig, true
}

func (a *Analyzer) checkStructBodies(sd *ast.StructDeclaration, def *typesystem.StructDef, self typesystem.Type) {
	prevParams := a.typeParams
	a.typeParams = append(append([]string(nil), prevParams...), sd.TypeParams...)
	prevSelf, prevStruct := a.selfType, a.structName
	a.selfType, a.structName = self, sd.Name.Value
	defer func() {
		a.typeParams = prevParams
		a.selfType, a.structName = prevSelf, prevStruct
	}()

	for _, f := range sd.Fields {
		if f.Value == nil {
			continue
		}
		ft, _ := def.Field(f.Name)
		got := a.expression(f.Value, ft.Type)
		if a.failed() {
			return
		}
		if !a.assignable(got, ft.Type) {
			a.errorf(diagnostics.TypeMismatch, f, "default value of field '%s' has type %s, expected %s", f.Name, got, ft.Type)
			return
		}
	}
	for _, init := range sd.Inits {
		params := make([]typesystem.Type, len(init.Args))
		for i, arg := range init.Args {
			params[i] = a.resolveType(arg.Type)
			if a.failed() {
				return
			}
		}
		a.setType(init, typesystem.Function{Params: params, Return: typesystem.Primitive{Kind: typesystem.Void}})
		a.checkCallable(init.Args, params, typesystem.Primitive{Kind: typesystem.Void}, init.Body, self, sd.Name.Value)
		if a.failed() {
			return
		}
	}
	for _, m := range sd.Methods {
		a.checkMethodBody(m, self, sd.Name.Value)
		if a.failed() {
			return
		}
	}
}

func (a *Analyzer) checkMethodBody(m *ast.MethodDeclaration, self typesystem.Type, structName string) {
	if m.Body == nil {
		return
	}
	params := make([]typesystem.Type, len(m.Args))
	for i, arg := range m.Args {
		params[i] = a.resolveType(arg.Type)
		if a.failed() {
			return
		}
	}
	var ret typesystem.Type = typesystem.Primitive{Kind: typesystem.Void}
	if m.ReturnType != nil {
		ret = a.resolveType(m.ReturnType)
		if a.failed() {
			return
		}
	}
	a.setType(m, typesystem.Function{Params: params, Return: ret})
	a.checkCallable(m.Args, params, ret, m.Body, self, structName)
}

// checkCallable checks a function, init or method body in a fresh function
// scope with the parameters bound.
func (a *Analyzer) checkCallable(args []*ast.Argument, params []typesystem.Type, ret typesystem.Type, body []ast.Statement, self typesystem.Type, structName string) {
	a.pushScope(symbols.FunctionScope)
	defer a.popScope()

	prevReturn := a.returnType
	prevSelf, prevStruct := a.selfType, a.structName
	a.returnType = ret
	if self != nil {
		a.selfType, a.structName = self, structName
	}
	defer func() {
		a.returnType = prevReturn
		a.selfType, a.structName = prevSelf, prevStruct
	}()

	for i, arg := range args {
		if !a.scope.Define(&symbols.Symbol{
			Name:     arg.Name,
			Kind:     symbols.ParameterSymbol,
			Type:     params[i],
			HasValue: true,
			Line:     arg.Token.Line,
			Column:   arg.Token.Column,
		}) {
			a.errorf(diagnostics.DuplicateDefinition, arg.Type, "parameter '%s' is already defined", arg.Name)
			return
		}
	}
	a.statements(body)
}

func (a *Analyzer) interfaceDeclaration(id *ast.InterfaceDeclaration) {
	def := &typesystem.InterfaceDef{Name: id.Name.Value}
	for _, parent := range id.Extends {
		if _, ok := a.registry.Interfaces[parent.Value]; !ok {
			a.errorf(diagnostics.UndefinedName, parent, "undefined interface '%s'", parent.Value)
			return
		}
		def.Extends = append(def.Extends, parent.Value)
	}
	for _, f := range id.Fields {
		ft := a.resolveType(f.Type)
		if a.failed() {
			return
		}
		def.Fields = append(def.Fields, typesystem.FieldSig{Name: f.Name, Type: ft})
	}
	for _, m := range id.Methods {
		sig, ok := a.methodSig(m)
		if !ok {
			return
		}
		def.Methods = append(def.Methods, sig)
	}
	if !a.registry.RegisterInterface(def) {
		a.errorf(diagnostics.DuplicateDefinition, id, "type '%s' is already defined", id.Name.Value)
		return
	}
	a.scope.Define(&symbols.Symbol{Name: id.Name.Value, Kind: symbols.TypeSymbol})
}

func (a *Analyzer) algebraicDeclaration(ad *ast.AlgebraicDeclaration) {
	def := &typesystem.AlgebraicDef{Name: ad.Name.Value}
	for _, variant := range ad.Variants {
		if _, dup := def.Variant(variant.Name.Value); dup {
			a.errorf(diagnostics.DuplicateDefinition, variant, "variant '%s' is already defined", variant.Name.Value)
			return
		}
		vdef := a.buildStructDef(variant, ad.Name.Value)
		if a.failed() {
			return
		}
		def.Variants = append(def.Variants, vdef)
	}
	for _, m := range ad.Methods {
		sig, ok := a.methodSig(m)
		if !ok {
			return
		}
		def.Methods = append(def.Methods, sig)
	}
	if !a.registry.RegisterAlgebraic(def) {
		a.errorf(diagnostics.DuplicateDefinition, ad, "type '%s' is already defined", ad.Name.Value)
		return
	}
	a.scope.Define(&symbols.Symbol{Name: ad.Name.Value, Kind: symbols.TypeSymbol})

	for _, variant := range ad.Variants {
		self := typesystem.AlgebraicInstance{Name: ad.Name.Value, Variant: variant.Name.Value}
		vdef, _ := def.Variant(variant.Name.Value)
		a.checkStructBodies(variant, vdef, self)
		if a.failed() {
			return
		}
	}
	for _, m := range ad.Methods {
		a.checkMethodBody(m, typesystem.AlgebraicInstance{Name: ad.Name.Value}, ad.Name.Value)
		if a.failed() {
			return
		}
	}
}

func (a *Analyzer) extensionDeclaration(ed *ast.ExtensionDeclaration) {
	structDef, isStruct := a.registry.Structs[ed.Name.Value]
	_, isAlgebraic := a.registry.Algebraics[ed.Name.Value]
	if !isStruct && !isAlgebraic {
		a.errorf(diagnostics.UndefinedName, ed.Name, "undefined type '%s'", ed.Name.Value)
		return
	}
	if isStruct && len(ed.TypeParams) != len(structDef.TypeParams) {
		a.errorf(diagnostics.GenericArityMismatch, ed,
			"type '%s' expects %d type parameter(s), got %d", ed.Name.Value, len(structDef.TypeParams), len(ed.TypeParams))
		return
	}

	def := &typesystem.ExtensionDef{Name: ed.Name.Value, TypeParams: ed.TypeParams}
	for _, iface := range ed.Interfaces {
		if _, ok := a.registry.Interfaces[iface.Value]; !ok {
			a.errorf(diagnostics.UndefinedName, iface, "undefined interface '%s'", iface.Value)
			return
		}
		def.Interfaces = append(def.Interfaces, iface.Value)
	}
	for _, w := range ed.Where {
		if !paramListed(ed.TypeParams, w.Param) {
			a.errorf(diagnostics.UndefinedName, ed, "undefined type parameter '%s' in where clause", w.Param)
			return
		}
		if _, ok := a.registry.Interfaces[w.Interface]; !ok {
			a.errorf(diagnostics.UndefinedName, ed, "undefined interface '%s'", w.Interface)
			return
		}
		def.Where = append(def.Where, typesystem.WhereConstraint{Param: w.Param, Interface: w.Interface})
	}

	prevParams := a.typeParams
	prevWhere := a.whereScope
	a.typeParams = append(append([]string(nil), prevParams...), ed.TypeParams...)
	a.whereScope = def.Where
	defer func() {
		a.typeParams = prevParams
		a.whereScope = prevWhere
	}()

	for _, m := range ed.Methods {
		sig, ok := a.methodSig(m)
		if !ok {
			return
		}
		def.Methods = append(def.Methods, sig)
	}
	a.registry.RegisterExtension(def)
	a.result.ExtensionDecls[ed.Name.Value] = append(a.result.ExtensionDecls[ed.Name.Value], ed)

	var self typesystem.Type
	if isStruct {
		args := make([]typesystem.Type, len(ed.TypeParams))
		for i, p := range ed.TypeParams {
			args[i] = typesystem.Param{Name: p}
		}
		self = typesystem.StructInstance{Name: ed.Name.Value, Args: args}
	} else {
		self = typesystem.AlgebraicInstance{Name: ed.Name.Value}
	}
	for _, m := range ed.Methods {
		a.checkMethodBody(m, self, ed.Name.Value)
		if a.failed() {
			return
		}
	}
	for _, iface := range ed.Interfaces {
		a.checkExtensionConformance(ed, def, iface.Value)
		if a.failed() {
			return
		}
	}
}

// checkConformance verifies a declared conformance structurally and reports
// the first missing member.
func (a *Analyzer) checkConformance(t typesystem.Type, iface *ast.Identifier) {
	def, ok := a.registry.Interfaces[iface.Value]
	if !ok {
		a.errorf(diagnostics.UndefinedName, iface, "undefined interface '%s'", iface.Value)
		return
	}
	if missing := a.resolver.MissingMembers(t, def); len(missing) > 0 {
		a.errorf(diagnostics.MissingInterfaceMember, iface,
			"type %s does not conform to '%s': missing member '%s'", t, iface.Value, missing[0])
	}
}

// checkExtensionConformance verifies that the struct plus the extension
// satisfy the advertised interface, assuming the where clause holds.
func (a *Analyzer) checkExtensionConformance(ed *ast.ExtensionDeclaration, ext *typesystem.ExtensionDef, iface string) {
	idef, ok := a.registry.Interfaces[iface]
	if !ok {
		a.errorf(diagnostics.UndefinedName, ed, "undefined interface '%s'", iface)
		return
	}
	structDef, isStruct := a.registry.Structs[ed.Name.Value]
	for _, want := range idef.Methods {
		found := false
		for _, m := range ext.Methods {
			if m.Name == want.Name && len(m.Params) == len(want.Params) {
				found = true
				break
			}
		}
		if !found && isStruct {
			if _, ok := structDef.Method(want.Name); ok {
				found = true
			}
		}
		if !found {
			a.errorf(diagnostics.MissingInterfaceMember, ed,
				"extension of '%s' does not conform to '%s': missing member '%s'", ed.Name.Value, iface, want.Name)
			return
		}
	}
}

func paramListed(params []string, name string) bool {
	for _, p := range params {
		if p == name {
			return true
		}
	}
	return false
}
