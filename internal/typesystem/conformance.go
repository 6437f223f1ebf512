package typesystem

// Builtin interfaces back the operator protocol: a binary operator on
// user-declared types resolves to the matching special method, and the
// declaring type must be registered as conforming for the operator to apply.
const (
	InterfaceEq                  = "Eq"
	InterfaceLt                  = "Lt"
	InterfaceGt                  = "Gt"
	InterfaceAddable             = "Addable"
	InterfaceSubtractable        = "Subtractable"
	InterfaceMultipliable        = "Multipliable"
	InterfaceDivisible           = "Divisible"
	InterfaceConvertibleToString = "ConvertibleToString"
)

const (
	MethodEq       = "__eq__"
	MethodLt       = "__lt__"
	MethodGt       = "__gt__"
	MethodAdd      = "__add__"
	MethodSub      = "__sub__"
	MethodMul      = "__mul__"
	MethodDiv      = "__div__"
	MethodToString = "toString"
)

var builtinInterfaces = []*InterfaceDef{
	{Name: InterfaceEq, Builtin: true, Methods: []MethodSig{
		{Name: MethodEq, Params: []Type{SelfType{}}, Return: Primitive{Kind: Bool}},
	}},
	{Name: InterfaceLt, Builtin: true, Methods: []MethodSig{
		{Name: MethodLt, Params: []Type{SelfType{}}, Return: Primitive{Kind: Bool}},
	}},
	{Name: InterfaceGt, Builtin: true, Methods: []MethodSig{
		{Name: MethodGt, Params: []Type{SelfType{}}, Return: Primitive{Kind: Bool}},
	}},
	{Name: InterfaceAddable, Builtin: true, Methods: []MethodSig{
		{Name: MethodAdd, Params: []Type{SelfType{}}, Return: SelfType{}},
	}},
	{Name: InterfaceSubtractable, Builtin: true, Methods: []MethodSig{
		{Name: MethodSub, Params: []Type{SelfType{}}, Return: SelfType{}},
	}},
	{Name: InterfaceMultipliable, Builtin: true, Methods: []MethodSig{
		{Name: MethodMul, Params: []Type{SelfType{}}, Return: SelfType{}},
	}},
	{Name: InterfaceDivisible, Builtin: true, Methods: []MethodSig{
		{Name: MethodDiv, Params: []Type{SelfType{}}, Return: SelfType{}},
	}},
	{Name: InterfaceConvertibleToString, Builtin: true, Methods: []MethodSig{
		{Name: MethodToString, Return: Primitive{Kind: String}},
	}},
}

// OperatorMethod maps a binary operator lexeme to its protocol method and
// the interface gating it.
func OperatorMethod(op string) (method, iface string, ok bool) {
	switch op {
	case "+":
		return MethodAdd, InterfaceAddable, true
	case "-":
		return MethodSub, InterfaceSubtractable, true
	case "*":
		return MethodMul, InterfaceMultipliable, true
	case "/":
		return MethodDiv, InterfaceDivisible, true
	case "==", "!=":
		return MethodEq, InterfaceEq, true
	case "<", ">=":
		return MethodLt, InterfaceLt, true
	case ">", "<=":
		return MethodGt, InterfaceGt, true
	}
	return "", "", false
}

// MemberTable is the resolved member surface of one concrete type: declared
// fields plus declared and extension methods whose constraints hold, with
// generic parameters substituted.
type MemberTable struct {
	Fields     []FieldSig
	Methods    []MethodSig
	Interfaces map[string]bool
}

// Field resolves a field by name.
func (t *MemberTable) Field(name string) (FieldSig, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSig{}, false
}

// Method resolves a method by name.
func (t *MemberTable) Method(name string) (MethodSig, bool) {
	for _, m := range t.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodSig{}, false
}

// Resolver memoizes member tables and conformance answers per concrete type.
type Resolver struct {
	registry *Registry
	tables   map[string]*MemberTable
}

// NewResolver creates a resolver over a populated registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry, tables: map[string]*MemberTable{}}
}

// Table builds (or returns the memoized) member table for a concrete type.
// Only struct and algebraic instances have declared members.
func (r *Resolver) Table(t Type) (*MemberTable, bool) {
	key := t.String()
	if tbl, ok := r.tables[key]; ok {
		return tbl, true
	}
	var tbl *MemberTable
	switch tt := t.(type) {
	case StructInstance:
		def, ok := r.registry.Structs[tt.Name]
		if !ok {
			return nil, false
		}
		tbl = r.buildStructTable(def, tt.Args, tt)
	case AlgebraicInstance:
		def, ok := r.registry.Algebraics[tt.Name]
		if !ok {
			return nil, false
		}
		tbl = r.buildAlgebraicTable(def, tt)
	default:
		return nil, false
	}
	r.tables[key] = tbl
	return tbl, true
}

func (r *Resolver) buildStructTable(def *StructDef, args []Type, self Type) *MemberTable {
	subst := Subst{}
	for i, p := range def.TypeParams {
		if i < len(args) {
			subst[p] = args[i]
		}
	}
	tbl := &MemberTable{Interfaces: map[string]bool{}}
	for _, f := range def.Fields {
		tbl.Fields = append(tbl.Fields, FieldSig{
			Name:       f.Name,
			Type:       ApplySelf(Apply(f.Type, subst), self),
			HasDefault: f.HasDefault,
		})
	}
	for _, m := range def.Methods {
		tbl.Methods = append(tbl.Methods, substMethod(m, subst, self))
	}
	for _, i := range def.Interfaces {
		tbl.Interfaces[i] = true
	}
	r.applyExtensions(def.Name, args, self, tbl)
	r.closeOverExtends(tbl)
	return tbl
}

func (r *Resolver) buildAlgebraicTable(def *AlgebraicDef, self AlgebraicInstance) *MemberTable {
	tbl := &MemberTable{Interfaces: map[string]bool{}}
	if self.Variant != "" {
		if v, ok := def.Variant(self.Variant); ok {
			for _, f := range v.Fields {
				tbl.Fields = append(tbl.Fields, FieldSig{Name: f.Name, Type: ApplySelf(f.Type, self), HasDefault: f.HasDefault})
			}
			for _, m := range v.Methods {
				tbl.Methods = append(tbl.Methods, substMethod(m, nil, self))
			}
		}
	}
	for _, m := range def.Methods {
		tbl.Methods = append(tbl.Methods, substMethod(m, nil, AlgebraicInstance{Name: def.Name}))
	}
	r.applyExtensions(def.Name, nil, self, tbl)
	r.closeOverExtends(tbl)
	return tbl
}

// applyExtensions folds in extension members whose where-clauses all hold.
// A failed constraint silently skips the extension, so its methods and
// interface conformances are simply absent from the table.
func (r *Resolver) applyExtensions(name string, args []Type, self Type, tbl *MemberTable) {
	var params []string
	if def, ok := r.registry.Structs[name]; ok {
		params = def.TypeParams
	}
	for _, ext := range r.registry.Extensions[name] {
		subst := Subst{}
		for i, p := range extParams(ext, params) {
			if i < len(args) {
				subst[p] = args[i]
			}
		}
		if !r.constraintsHold(ext.Where, subst) {
			continue
		}
		for _, m := range ext.Methods {
			tbl.Methods = append(tbl.Methods, substMethod(m, subst, self))
		}
		for _, i := range ext.Interfaces {
			tbl.Interfaces[i] = true
		}
	}
}

// extParams aligns the extension's parameter names with the declaring
// struct's positions, falling back to the struct's own names.
func extParams(ext *ExtensionDef, declared []string) []string {
	if len(ext.TypeParams) > 0 {
		return ext.TypeParams
	}
	return declared
}

func (r *Resolver) constraintsHold(where []WhereConstraint, subst Subst) bool {
	for _, c := range where {
		bound, ok := subst[c.Param]
		if !ok {
			return false
		}
		if !r.Conforms(bound, c.Interface) {
			return false
		}
	}
	return true
}

// closeOverExtends adds the transitive closure of interface extension
// relations to the conformance set.
func (r *Resolver) closeOverExtends(tbl *MemberTable) {
	changed := true
	for changed {
		changed = false
		for name := range tbl.Interfaces {
			def, ok := r.registry.Interfaces[name]
			if !ok {
				continue
			}
			for _, parent := range def.Extends {
				if !tbl.Interfaces[parent] {
					tbl.Interfaces[parent] = true
					changed = true
				}
			}
		}
	}
}

// Conforms reports whether t conforms to the named interface. Primitives
// conform natively to the builtin operator interfaces; declared types
// conform through their declaration or a satisfied extension.
func (r *Resolver) Conforms(t Type, iface string) bool {
	if p, ok := t.(Primitive); ok {
		return primitiveConforms(p, iface)
	}
	if tbl, ok := r.Table(t); ok {
		return tbl.Interfaces[iface]
	}
	return false
}

// MissingMembers lists the interface members t fails to provide, in
// interface declaration order. Empty means the structural check passes.
func (r *Resolver) MissingMembers(t Type, iface *InterfaceDef) []string {
	tbl, ok := r.Table(t)
	if !ok {
		var all []string
		for _, f := range iface.Fields {
			all = append(all, f.Name)
		}
		for _, m := range iface.Methods {
			all = append(all, m.Name)
		}
		return all
	}
	var missing []string
	for _, f := range iface.Fields {
		want := ApplySelf(f.Type, t)
		got, ok := tbl.Field(f.Name)
		if !ok || !Equal(got.Type, want) {
			missing = append(missing, f.Name)
		}
	}
	for _, m := range iface.Methods {
		got, ok := tbl.Method(m.Name)
		if !ok || !methodMatches(got, m, t) {
			missing = append(missing, m.Name)
		}
	}
	for _, parent := range iface.Extends {
		if pdef, ok := r.registry.Interfaces[parent]; ok {
			missing = append(missing, r.MissingMembers(t, pdef)...)
		}
	}
	return missing
}

func methodMatches(got, want MethodSig, self Type) bool {
	if len(got.Params) != len(want.Params) {
		return false
	}
	for i := range want.Params {
		if !Equal(got.Params[i], ApplySelf(want.Params[i], self)) {
			return false
		}
	}
	return Equal(got.Return, ApplySelf(want.Return, self))
}

func substMethod(m MethodSig, subst Subst, self Type) MethodSig {
	out := MethodSig{Name: m.Name, Return: ApplySelf(Apply(m.Return, subst), self)}
	for _, p := range m.Params {
		out.Params = append(out.Params, ApplySelf(Apply(p, subst), self))
	}
	return out
}

func primitiveConforms(p Primitive, iface string) bool {
	switch iface {
	case InterfaceEq:
		return true
	case InterfaceLt, InterfaceGt:
		return p.Kind != Bool && p.Kind != Void
	case InterfaceAddable:
		return p.IsFiniteInt() || p.IsFloat() || p.Kind == String
	case InterfaceSubtractable, InterfaceMultipliable, InterfaceDivisible:
		return p.IsFiniteInt() || p.IsFloat()
	case InterfaceConvertibleToString:
		return p.Kind != Void
	}
	return false
}
