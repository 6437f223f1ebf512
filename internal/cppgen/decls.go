package cppgen

import (
	"strings"

	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/typesystem"
)

func (g *Generator) emitFunction(fd *ast.FunctionDeclaration) {
	if len(fd.TypeParams) == 0 {
		g.emitFunctionInstance(fd, fd.Name.Value, nil)
		return
	}
	for _, inst := range g.insts.Functions {
		if inst.Template == fd.Name.Value {
			g.emitFunctionInstance(fd, inst.Name, inst.Subst)
		}
	}
}

func (g *Generator) emitFunctionInstance(fd *ast.FunctionDeclaration, name string, subst typesystem.Subst) {
	prevSubst, prevSelf := g.subst, g.selfIsReceiver
	g.subst, g.selfIsReceiver = subst, false
	defer func() { g.subst, g.selfIsReceiver = prevSubst, prevSelf }()

	sig, ok := g.typeOf(fd).(typesystem.Function)
	if !ok {
		g.errorf("function '%s' has no signature", name)
		return
	}
	body := &buf{}
	body.add(0, g.cppType(sig.Return)+" "+name+"("+g.paramList(fd.Args, sig.Params)+") {")
	for _, stmt := range fd.Body {
		g.statement(body, 1, stmt)
	}
	body.add(0, "}")
	g.top = append(g.top, strings.Join(body.lines, "\n")+"\n")
}

func (g *Generator) paramList(args []*ast.Argument, params []typesystem.Type) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = g.cppType(params[i]) + " " + arg.Name
	}
	return strings.Join(parts, ", ")
}

func (g *Generator) emitStructInstances(sd *ast.StructDeclaration) {
	if len(sd.TypeParams) == 0 {
		g.emitClass(sd, sd.Name.Value, nil)
		return
	}
	for _, inst := range g.insts.Structs {
		if inst.Template == sd.Name.Value {
			g.emitClass(sd, inst.Name, inst.Subst)
		}
	}
}

func (g *Generator) emitClass(sd *ast.StructDeclaration, name string, subst typesystem.Subst) {
	prevSubst, prevSelf := g.subst, g.selfIsReceiver
	g.subst, g.selfIsReceiver = subst, true
	defer func() { g.subst, g.selfIsReceiver = prevSubst, prevSelf }()

	body := &buf{}
	body.add(0, "class "+name+" {")
	body.lines = append(body.lines, " public:")
	// With only private fields the synthesized constructor is itself
	// parameterless, so the empty one would collide with it.
	if len(sd.Inits) == 0 && (len(sd.Fields) == 0 || hasPublicField(sd)) {
		body.add(1, name+"() {}")
	}
	for _, f := range sd.Fields {
		body.add(1, g.cppType(g.typeOf(f))+" "+f.Name+";")
	}
	if len(sd.Inits) == 0 {
		g.emitSynthesizedCtor(body, sd, name)
	} else {
		for _, init := range sd.Inits {
			g.emitDeclaredCtor(body, sd, init, name)
		}
	}
	for _, m := range sd.Methods {
		g.emitMethod(body, m)
	}
	for _, ext := range g.res.ExtensionDecls[sd.Name.Value] {
		if !g.extensionApplies(ext, subst) {
			continue
		}
		for _, m := range ext.Methods {
			g.emitMethod(body, m)
		}
	}
	body.add(0, "};")
	g.top = append(g.top, strings.Join(body.lines, "\n")+"\n")
}

func hasPublicField(sd *ast.StructDeclaration) bool {
	for _, f := range sd.Fields {
		if !typesystem.IsPrivate(f.Name) {
			return true
		}
	}
	return false
}

// emitSynthesizedCtor emits the public-fields constructor, with defaulted
// fields rendered as C++ default arguments. Private fields are assigned
// from their declared defaults inside the body.
func (g *Generator) emitSynthesizedCtor(body *buf, sd *ast.StructDeclaration, name string) {
	if len(sd.Fields) == 0 {
		return
	}
	var parts []string
	for _, f := range sd.Fields {
		if typesystem.IsPrivate(f.Name) {
			continue
		}
		part := g.cppType(g.typeOf(f)) + " " + f.Name
		if f.Value != nil {
			scratch := &buf{}
			part += " = " + g.expression(scratch, 0, f.Value)
			if len(scratch.lines) > 0 {
				g.errorf("field '%s' default is too complex for a default argument", f.Name)
			}
		}
		parts = append(parts, part)
	}
	body.add(1, name+"("+strings.Join(parts, ", ")+") {")
	for _, f := range sd.Fields {
		if !typesystem.IsPrivate(f.Name) {
			body.add(2, "this->"+f.Name+" = "+f.Name+";")
			continue
		}
		scratch := &buf{}
		value := g.expression(scratch, 2, f.Value)
		body.lines = append(body.lines, scratch.lines...)
		body.add(2, "this->"+f.Name+" = "+value+";")
	}
	body.add(1, "}")
}

// emitDeclaredCtor emits one declared initializer. Defaulted fields the
// body never assigns are filled before the body runs.
func (g *Generator) emitDeclaredCtor(body *buf, sd *ast.StructDeclaration, init *ast.InitDeclaration, name string) {
	sig, ok := g.typeOf(init).(typesystem.Function)
	if !ok {
		g.errorf("initializer of '%s' has no signature", name)
		return
	}
	body.add(1, name+"("+g.paramList(init.Args, sig.Params)+") {")
	for _, f := range sd.Fields {
		if f.Value == nil || assignsField(init.Body, f.Name) {
			continue
		}
		inner := &buf{}
		value := g.expression(inner, 2, f.Value)
		body.lines = append(body.lines, inner.lines...)
		body.add(2, "this->"+f.Name+" = "+value+";")
	}
	for _, stmt := range init.Body {
		g.statement(body, 2, stmt)
	}
	body.add(1, "}")
}

func (g *Generator) emitMethod(body *buf, m *ast.MethodDeclaration) {
	if m.Body == nil {
		return
	}
	sig, ok := g.typeOf(m).(typesystem.Function)
	if !ok {
		g.errorf("method '%s' has no signature", m.Name)
		return
	}
	body.add(1, g.cppType(sig.Return)+" "+methodCppName(m.Name)+"("+g.paramList(m.Args, sig.Params)+") {")
	for _, stmt := range m.Body {
		g.statement(body, 2, stmt)
	}
	body.add(1, "}")
}

func (g *Generator) emitAlgebraic(ad *ast.AlgebraicDeclaration) {
	for _, variant := range ad.Variants {
		g.emitClass(variant, variantClassName(ad.Name.Value, variant.Name.Value), nil)
	}
	for _, m := range ad.Methods {
		g.emitSharedMethod(ad.Name.Value, m)
	}
	for _, ext := range g.res.ExtensionDecls[ad.Name.Value] {
		for _, m := range ext.Methods {
			g.emitSharedMethod(ad.Name.Value, m)
		}
	}
}

// emitSharedMethod emits a method shared by every variant as a free
// function taking the variant storage by value.
func (g *Generator) emitSharedMethod(algName string, m *ast.MethodDeclaration) {
	if m.Body == nil {
		return
	}
	prevSelf := g.selfIsReceiver
	g.selfIsReceiver = false
	defer func() { g.selfIsReceiver = prevSelf }()

	sig, ok := g.typeOf(m).(typesystem.Function)
	if !ok {
		g.errorf("method '%s' has no signature", m.Name)
		return
	}
	params := g.variantStorageType(algName) + " self"
	if rest := g.paramList(m.Args, sig.Params); rest != "" {
		params += ", " + rest
	}
	body := &buf{}
	body.add(0, g.cppType(sig.Return)+" "+sharedMethodName(algName, m.Name)+"("+params+") {")
	for _, stmt := range m.Body {
		g.statement(body, 1, stmt)
	}
	body.add(0, "}")
	g.top = append(g.top, strings.Join(body.lines, "\n")+"\n")
}

// extensionApplies re-checks the where clause against the concrete bindings
// of the class being emitted.
func (g *Generator) extensionApplies(ext *ast.ExtensionDeclaration, subst typesystem.Subst) bool {
	for _, w := range ext.Where {
		bound, ok := subst[w.Param]
		if !ok {
			return false
		}
		if !g.res.Resolver.Conforms(bound, w.Interface) {
			return false
		}
	}
	return true
}

func assignsField(body []ast.Statement, name string) bool {
	for _, stmt := range body {
		assign, ok := stmt.(*ast.Assignment)
		if !ok {
			continue
		}
		fa, ok := assign.Target.(*ast.FieldAccess)
		if !ok {
			continue
		}
		if _, isSelf := fa.Object.(*ast.SelfExpression); isSelf && fa.Field.Value == name {
			return true
		}
	}
	return false
}
