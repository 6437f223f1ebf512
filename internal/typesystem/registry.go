package typesystem

import "strings"

// FieldSig describes a declared struct or interface field.
type FieldSig struct {
	Name       string
	Type       Type
	HasDefault bool
}

// MethodSig describes a declared method by signature.
type MethodSig struct {
	Name   string
	Params []Type
	Return Type
}

// InitSig describes a declared struct initializer.
type InitSig struct {
	Params []Type
	// Defaults[i] reports whether parameter i carries a default value and
	// may be omitted at the call site.
	Defaults []bool
}

// StructDef is a registered struct declaration.
type StructDef struct {
	Name       string
	TypeParams []string
	Interfaces []string
	Fields     []FieldSig
	Inits      []InitSig
	Methods    []MethodSig
	// Variant metadata when the struct is nested inside an algebraic type.
	AlgebraicParent string
}

// Field resolves a declared field by name.
func (s *StructDef) Field(name string) (FieldSig, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSig{}, false
}

// Method resolves a declared method by name.
func (s *StructDef) Method(name string) (MethodSig, bool) {
	for _, m := range s.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodSig{}, false
}

// InterfaceDef is a registered interface declaration.
type InterfaceDef struct {
	Name    string
	Extends []string
	Fields  []FieldSig
	Methods []MethodSig
	Builtin bool
}

// AlgebraicDef is a registered algebraic type declaration.
type AlgebraicDef struct {
	Name     string
	Variants []*StructDef
	// Methods shared by all variants.
	Methods []MethodSig
}

// Variant resolves a variant struct by name.
func (a *AlgebraicDef) Variant(name string) (*StructDef, bool) {
	for _, v := range a.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// SharedMethod resolves a method declared on the algebraic type itself.
func (a *AlgebraicDef) SharedMethod(name string) (MethodSig, bool) {
	for _, m := range a.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodSig{}, false
}

// WhereConstraint requires a type parameter to conform to an interface.
type WhereConstraint struct {
	Param     string
	Interface string
}

// ExtensionDef is a registered extension declaration.
type ExtensionDef struct {
	Name       string
	TypeParams []string
	Interfaces []string
	Where      []WhereConstraint
	Methods    []MethodSig
}

// Registry holds every declared type of a program in declaration order.
type Registry struct {
	Structs    map[string]*StructDef
	Interfaces map[string]*InterfaceDef
	Algebraics map[string]*AlgebraicDef
	Extensions map[string][]*ExtensionDef

	order []string
}

// NewRegistry returns a registry pre-populated with the builtin interfaces.
func NewRegistry() *Registry {
	r := &Registry{
		Structs:    map[string]*StructDef{},
		Interfaces: map[string]*InterfaceDef{},
		Algebraics: map[string]*AlgebraicDef{},
		Extensions: map[string][]*ExtensionDef{},
	}
	for _, def := range builtinInterfaces {
		r.Interfaces[def.Name] = def
	}
	return r
}

// RegisterStruct records a struct declaration. Returns false on redefinition.
func (r *Registry) RegisterStruct(def *StructDef) bool {
	if r.known(def.Name) {
		return false
	}
	r.Structs[def.Name] = def
	r.order = append(r.order, def.Name)
	return true
}

// RegisterInterface records an interface declaration.
func (r *Registry) RegisterInterface(def *InterfaceDef) bool {
	if r.known(def.Name) {
		return false
	}
	r.Interfaces[def.Name] = def
	r.order = append(r.order, def.Name)
	return true
}

// RegisterAlgebraic records an algebraic declaration.
func (r *Registry) RegisterAlgebraic(def *AlgebraicDef) bool {
	if r.known(def.Name) {
		return false
	}
	r.Algebraics[def.Name] = def
	r.order = append(r.order, def.Name)
	return true
}

// RegisterExtension appends an extension for its target type. Multiple
// extensions of one type are allowed.
func (r *Registry) RegisterExtension(def *ExtensionDef) {
	r.Extensions[def.Name] = append(r.Extensions[def.Name], def)
}

func (r *Registry) known(name string) bool {
	if _, ok := r.Structs[name]; ok {
		return true
	}
	if _, ok := r.Interfaces[name]; ok {
		return true
	}
	if _, ok := r.Algebraics[name]; ok {
		return true
	}
	_, ok := PrimitiveByName(name)
	return ok
}

// Names returns user-declared type names in declaration order.
func (r *Registry) Names() []string { return r.order }

// IsPrivate reports whether a member name is private to its declaring struct.
func IsPrivate(name string) bool { return strings.HasPrefix(name, "_") }
