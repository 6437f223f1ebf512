// Package mono discovers every concrete instantiation of the program's
// generic declarations and assigns each one a deterministic specialized
// name. Discovery runs a worklist from the program's top level into the
// bodies of specialized templates, so the output order depends only on the
// source.
package mono

import (
	"strings"

	"github.com/angel-lang/angel/internal/analyzer"
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/typesystem"
)

// Instance is one concrete specialization of a generic template.
type Instance struct {
	Template string
	Args     []typesystem.Type
	Name     string
	IsFunc   bool
	// Subst binds the template's type parameters for body specialization.
	Subst typesystem.Subst
}

// Key identifies an instance by template and argument spelling.
type Key struct {
	Template string
	Args     string
}

// ArgsKey renders a type-argument list into its canonical key form.
func ArgsKey(args []typesystem.Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

// InstanceName derives the specialized target name from the template name
// and its concrete type arguments.
func InstanceName(template string, args []typesystem.Type) string {
	if len(args) == 0 {
		return template
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, template)
	for _, a := range args {
		parts = append(parts, typesystem.Mangle(a))
	}
	return strings.Join(parts, "__")
}

// Set holds the discovered instances in discovery order.
type Set struct {
	Functions []*Instance
	Structs   []*Instance

	byKey map[Key]*Instance
}

// Lookup finds the instance for a template and arguments, if discovered.
func (s *Set) Lookup(template string, args []typesystem.Type) (*Instance, bool) {
	inst, ok := s.byKey[Key{Template: template, Args: ArgsKey(args)}]
	return inst, ok
}

// Monomorphize walks the analysis result and collects every reachable
// generic instantiation.
func Monomorphize(res *analyzer.Result) *Set {
	m := &monomorphizer{
		res: res,
		set: &Set{byKey: map[Key]*Instance{}},
	}
	m.walkStatements(res.Program.Statements, nil)
	for len(m.queue) > 0 {
		inst := m.queue[0]
		m.queue = m.queue[1:]
		m.walkInstance(inst)
	}
	return m.set
}

type monomorphizer struct {
	res   *analyzer.Result
	set   *Set
	queue []*Instance
}

func (m *monomorphizer) record(template string, args []typesystem.Type, isFunc bool, params []string) {
	key := Key{Template: template, Args: ArgsKey(args)}
	if _, seen := m.set.byKey[key]; seen {
		return
	}
	subst := typesystem.Subst{}
	for i, p := range params {
		if i < len(args) {
			subst[p] = args[i]
		}
	}
	inst := &Instance{
		Template: template,
		Args:     args,
		Name:     InstanceName(template, args),
		IsFunc:   isFunc,
		Subst:    subst,
	}
	m.set.byKey[key] = inst
	if isFunc {
		m.set.Functions = append(m.set.Functions, inst)
	} else {
		m.set.Structs = append(m.set.Structs, inst)
	}
	m.queue = append(m.queue, inst)
}

// visitCall registers the instantiation a resolved call implies, with the
// enclosing instance's bindings applied to the type arguments.
func (m *monomorphizer) visitCall(call *ast.CallExpression, subst typesystem.Subst) {
	info, ok := m.res.Calls[call]
	if !ok || len(info.TypeArgs) == 0 {
		return
	}
	args := make([]typesystem.Type, len(info.TypeArgs))
	for i, a := range info.TypeArgs {
		args[i] = typesystem.Apply(a, subst)
	}
	if anyFree(args) {
		return
	}
	switch info.Kind {
	case analyzer.CallFunction:
		if fd, found := m.res.FunctionDecls[info.Name]; found {
			m.record(info.Name, args, true, fd.TypeParams)
		}
	case analyzer.CallInit:
		if sd, found := m.res.StructDecls[info.Name]; found {
			m.record(info.Name, args, false, sd.TypeParams)
		}
	}
}

// walkInstance descends into the specialized template's bodies to discover
// the instantiations they trigger in turn.
func (m *monomorphizer) walkInstance(inst *Instance) {
	if inst.IsFunc {
		if fd, ok := m.res.FunctionDecls[inst.Template]; ok {
			m.walkStatements(fd.Body, inst.Subst)
		}
		return
	}
	sd, ok := m.res.StructDecls[inst.Template]
	if !ok {
		return
	}
	for _, f := range sd.Fields {
		if f.Value != nil {
			m.walkExpression(f.Value, inst.Subst)
		}
	}
	for _, init := range sd.Inits {
		m.walkStatements(init.Body, inst.Subst)
	}
	for _, method := range sd.Methods {
		m.walkStatements(method.Body, inst.Subst)
	}
	for _, ext := range m.res.ExtensionDecls[inst.Template] {
		if !m.extensionApplies(ext, inst) {
			continue
		}
		for _, method := range ext.Methods {
			m.walkStatements(method.Body, inst.Subst)
		}
	}
}

// extensionApplies re-checks the extension's where clause against the
// instance's concrete arguments.
func (m *monomorphizer) extensionApplies(ext *ast.ExtensionDeclaration, inst *Instance) bool {
	bindings := typesystem.Subst{}
	for i, p := range ext.TypeParams {
		if i < len(inst.Args) {
			bindings[p] = inst.Args[i]
		}
	}
	for _, w := range ext.Where {
		bound, ok := bindings[w.Param]
		if !ok {
			return false
		}
		if !m.res.Resolver.Conforms(bound, w.Interface) {
			return false
		}
	}
	return true
}

func anyFree(args []typesystem.Type) bool {
	for _, a := range args {
		if len(typesystem.FreeParams(a)) > 0 {
			return true
		}
	}
	return false
}
