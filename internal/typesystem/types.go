package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all Angel types.
//
// Primitives and containers compare structurally; struct, interface and
// algebraic types compare nominally by name plus type-argument list.
type Type interface {
	String() string
	typeNode()
}

// PrimitiveKind enumerates the builtin scalar types.
type PrimitiveKind int

const (
	I8 PrimitiveKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	String
	Char
	Bool
	Void
)

var primitiveNames = map[PrimitiveKind]string{
	I8: "I8", I16: "I16", I32: "I32", I64: "I64",
	U8: "U8", U16: "U16", U32: "U32", U64: "U64",
	F32: "F32", F64: "F64",
	String: "String", Char: "Char", Bool: "Bool", Void: "Void",
}

// Primitive is a builtin scalar type.
type Primitive struct {
	Kind PrimitiveKind
}

func (p Primitive) typeNode()      {}
func (p Primitive) String() string { return primitiveNames[p.Kind] }

// Bits reports the width of a finite integer type, 0 otherwise.
func (p Primitive) Bits() int {
	switch p.Kind {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32:
		return 32
	case I64, U64:
		return 64
	}
	return 0
}

// Signed reports whether the primitive is a signed integer type.
func (p Primitive) Signed() bool {
	switch p.Kind {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// IsFiniteInt reports whether the primitive is a bounded integer type.
func (p Primitive) IsFiniteInt() bool { return p.Bits() != 0 }

// IsFloat reports whether the primitive is a floating-point type.
func (p Primitive) IsFloat() bool { return p.Kind == F32 || p.Kind == F64 }

// PrimitiveByName resolves a builtin type name ("I8", "String", ...).
func PrimitiveByName(name string) (Primitive, bool) {
	for kind, n := range primitiveNames {
		if n == name {
			return Primitive{Kind: kind}, true
		}
	}
	return Primitive{}, false
}

// Vector is a growable sequence of one element type.
type Vector struct {
	Element Type
}

func (v Vector) typeNode()      {}
func (v Vector) String() string { return "[" + v.Element.String() + "]" }

// Dict is an ordered mapping from keys to values.
type Dict struct {
	Key   Type
	Value Type
}

func (d Dict) typeNode()      {}
func (d Dict) String() string { return "[" + d.Key.String() + ": " + d.Value.String() + "]" }

// Optional wraps a type that may be absent.
type Optional struct {
	Inner Type
}

func (o Optional) typeNode()      {}
func (o Optional) String() string { return o.Inner.String() + "?" }

// Ref is an aliasable mutable cell holding one value.
type Ref struct {
	Inner Type
}

func (r Ref) typeNode()      {}
func (r Ref) String() string { return "ref " + r.Inner.String() }

// Param is a generic type parameter in scope (e.g. A in struct Stack(A)).
type Param struct {
	Name string
}

func (p Param) typeNode()      {}
func (p Param) String() string { return p.Name }

// StructInstance is a nominal reference to a declared struct, possibly
// applied to concrete type arguments.
type StructInstance struct {
	Name string
	Args []Type
}

func (s StructInstance) typeNode() {}
func (s StructInstance) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(parts, ", "))
}

// InterfaceInstance is a nominal reference to a declared or builtin interface.
type InterfaceInstance struct {
	Name string
}

func (i InterfaceInstance) typeNode()      {}
func (i InterfaceInstance) String() string { return i.Name }

// AlgebraicInstance is a nominal reference to an algebraic type. Variant is
// set when the value is statically known to hold one specific variant
// (e.g. the type of the literal construction Color.Red(120)).
type AlgebraicInstance struct {
	Name    string
	Variant string
}

func (a AlgebraicInstance) typeNode() {}
func (a AlgebraicInstance) String() string {
	if a.Variant != "" {
		return a.Name + "." + a.Variant
	}
	return a.Name
}

// Function is the type of a callable.
type Function struct {
	Params []Type
	Return Type
}

func (f Function) typeNode() {}
func (f Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Return.String())
}

// SelfType stands for the implementing type inside interface signatures.
type SelfType struct{}

func (s SelfType) typeNode()      {}
func (s SelfType) String() string { return "Self" }

// Equal reports structural equality for primitives and containers and
// nominal equality for struct/interface/algebraic instances.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case Primitive:
		bt, ok := b.(Primitive)
		return ok && at.Kind == bt.Kind
	case Vector:
		bt, ok := b.(Vector)
		return ok && Equal(at.Element, bt.Element)
	case Dict:
		bt, ok := b.(Dict)
		return ok && Equal(at.Key, bt.Key) && Equal(at.Value, bt.Value)
	case Optional:
		bt, ok := b.(Optional)
		return ok && Equal(at.Inner, bt.Inner)
	case Ref:
		bt, ok := b.(Ref)
		return ok && Equal(at.Inner, bt.Inner)
	case Param:
		bt, ok := b.(Param)
		return ok && at.Name == bt.Name
	case StructInstance:
		bt, ok := b.(StructInstance)
		if !ok || at.Name != bt.Name || len(at.Args) != len(bt.Args) {
			return false
		}
		for i := range at.Args {
			if !Equal(at.Args[i], bt.Args[i]) {
				return false
			}
		}
		return true
	case InterfaceInstance:
		bt, ok := b.(InterfaceInstance)
		return ok && at.Name == bt.Name
	case AlgebraicInstance:
		bt, ok := b.(AlgebraicInstance)
		return ok && at.Name == bt.Name && at.Variant == bt.Variant
	case Function:
		bt, ok := b.(Function)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equal(at.Return, bt.Return)
	case SelfType:
		_, ok := b.(SelfType)
		return ok
	}
	return false
}

// Subst maps generic parameter names to concrete types.
type Subst map[string]Type

// Apply substitutes generic parameters in t according to s.
func Apply(t Type, s Subst) Type {
	if len(s) == 0 {
		return t
	}
	switch tt := t.(type) {
	case Param:
		if r, ok := s[tt.Name]; ok {
			return r
		}
		return tt
	case Vector:
		return Vector{Element: Apply(tt.Element, s)}
	case Dict:
		return Dict{Key: Apply(tt.Key, s), Value: Apply(tt.Value, s)}
	case Optional:
		return Optional{Inner: Apply(tt.Inner, s)}
	case Ref:
		return Ref{Inner: Apply(tt.Inner, s)}
	case StructInstance:
		args := make([]Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = Apply(a, s)
		}
		return StructInstance{Name: tt.Name, Args: args}
	case Function:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = Apply(p, s)
		}
		return Function{Params: params, Return: Apply(tt.Return, s)}
	}
	return t
}

// ApplySelf replaces Self with the implementing type.
func ApplySelf(t Type, self Type) Type {
	switch tt := t.(type) {
	case SelfType:
		return self
	case Vector:
		return Vector{Element: ApplySelf(tt.Element, self)}
	case Dict:
		return Dict{Key: ApplySelf(tt.Key, self), Value: ApplySelf(tt.Value, self)}
	case Optional:
		return Optional{Inner: ApplySelf(tt.Inner, self)}
	case Ref:
		return Ref{Inner: ApplySelf(tt.Inner, self)}
	case Function:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = ApplySelf(p, self)
		}
		return Function{Params: params, Return: ApplySelf(tt.Return, self)}
	}
	return t
}

// FreeParams collects generic parameter names referenced by t, in first-use
// order.
func FreeParams(t Type) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(Type)
	walk = func(t Type) {
		switch tt := t.(type) {
		case Param:
			if !seen[tt.Name] {
				seen[tt.Name] = true
				names = append(names, tt.Name)
			}
		case Vector:
			walk(tt.Element)
		case Dict:
			walk(tt.Key)
			walk(tt.Value)
		case Optional:
			walk(tt.Inner)
		case Ref:
			walk(tt.Inner)
		case StructInstance:
			for _, a := range tt.Args {
				walk(a)
			}
		case Function:
			for _, p := range tt.Params {
				walk(p)
			}
			walk(tt.Return)
		}
	}
	walk(t)
	return names
}

// Match unifies a declared type pattern (possibly containing Params) with a
// concrete type, extending the substitution. Returns false on shape or
// binding conflicts.
func Match(pattern, concrete Type, s Subst) bool {
	switch pt := pattern.(type) {
	case Param:
		if bound, ok := s[pt.Name]; ok {
			return Equal(bound, concrete)
		}
		s[pt.Name] = concrete
		return true
	case Vector:
		ct, ok := concrete.(Vector)
		return ok && Match(pt.Element, ct.Element, s)
	case Dict:
		ct, ok := concrete.(Dict)
		return ok && Match(pt.Key, ct.Key, s) && Match(pt.Value, ct.Value, s)
	case Optional:
		ct, ok := concrete.(Optional)
		return ok && Match(pt.Inner, ct.Inner, s)
	case Ref:
		ct, ok := concrete.(Ref)
		return ok && Match(pt.Inner, ct.Inner, s)
	case StructInstance:
		ct, ok := concrete.(StructInstance)
		if !ok || pt.Name != ct.Name || len(pt.Args) != len(ct.Args) {
			return false
		}
		for i := range pt.Args {
			if !Match(pt.Args[i], ct.Args[i], s) {
				return false
			}
		}
		return true
	case Function:
		ct, ok := concrete.(Function)
		if !ok || len(pt.Params) != len(ct.Params) {
			return false
		}
		for i := range pt.Params {
			if !Match(pt.Params[i], ct.Params[i], s) {
				return false
			}
		}
		return Match(pt.Return, ct.Return, s)
	}
	return Equal(pattern, concrete)
}

// Mangle produces the deterministic identifier fragment used when deriving
// specialized target names from type arguments.
func Mangle(t Type) string {
	switch tt := t.(type) {
	case Primitive:
		return tt.String()
	case Vector:
		return "Vector_" + Mangle(tt.Element)
	case Dict:
		return "Dict_" + Mangle(tt.Key) + "_" + Mangle(tt.Value)
	case Optional:
		return "Opt_" + Mangle(tt.Inner)
	case Ref:
		return "Ref_" + Mangle(tt.Inner)
	case StructInstance:
		name := tt.Name
		for _, a := range tt.Args {
			name += "_" + Mangle(a)
		}
		return name
	case AlgebraicInstance:
		return tt.Name
	}
	return strings.ReplaceAll(t.String(), " ", "")
}
