package typesystem

import (
	"math/big"
	"testing"
)

func TestPrimitiveProperties(t *testing.T) {
	tests := []struct {
		kind   PrimitiveKind
		name   string
		bits   int
		signed bool
	}{
		{I8, "I8", 8, true},
		{I64, "I64", 64, true},
		{U8, "U8", 8, false},
		{U64, "U64", 64, false},
		{F64, "F64", 0, false},
		{String, "String", 0, false},
	}
	for _, tt := range tests {
		p := Primitive{Kind: tt.kind}
		if p.String() != tt.name {
			t.Errorf("String() = %s, want %s", p.String(), tt.name)
		}
		if p.Bits() != tt.bits {
			t.Errorf("%s.Bits() = %d, want %d", tt.name, p.Bits(), tt.bits)
		}
		if p.Signed() != tt.signed {
			t.Errorf("%s.Signed() = %v", tt.name, p.Signed())
		}
	}
}

func TestIntegerCandidates(t *testing.T) {
	tests := []struct {
		value string
		first string
		count int
	}{
		{"1", "I8", 8},
		{"-1", "I8", 4},
		{"128", "I16", 7},
		{"200", "I16", 7},
		{"-129", "I16", 3},
		{"2147483648", "I64", 3},
		{"18446744073709551615", "U64", 1},
		{"18446744073709551616", "", 0},
		{"-9223372036854775809", "", 0},
	}
	for _, tt := range tests {
		value, _ := new(big.Int).SetString(tt.value, 10)
		got := IntegerCandidates(value)
		if len(got) != tt.count {
			t.Errorf("%s: %d candidates, want %d (%v)", tt.value, len(got), tt.count, got)
			continue
		}
		if tt.count > 0 && got[0].String() != tt.first {
			t.Errorf("%s: first candidate = %s, want %s", tt.value, got[0], tt.first)
		}
	}
}

func TestIntegerFits(t *testing.T) {
	if !IntegerFits(big.NewInt(-128), Primitive{Kind: I8}) {
		t.Error("-128 should fit I8")
	}
	if IntegerFits(big.NewInt(128), Primitive{Kind: I8}) {
		t.Error("128 should not fit I8")
	}
	if IntegerFits(big.NewInt(-1), Primitive{Kind: U8}) {
		t.Error("-1 should not fit U8")
	}
}

func TestTypeStrings(t *testing.T) {
	i8 := Primitive{Kind: I8}
	tests := []struct {
		typ  Type
		want string
	}{
		{Vector{Element: i8}, "[I8]"},
		{Dict{Key: Primitive{Kind: String}, Value: i8}, "[String: I8]"},
		{Optional{Inner: Primitive{Kind: String}}, "String?"},
		{Ref{Inner: i8}, "ref I8"},
		{StructInstance{Name: "Box", Args: []Type{i8}}, "Box(I8)"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	i8 := Primitive{Kind: I8}
	i16 := Primitive{Kind: I16}
	if !Equal(Vector{Element: i8}, Vector{Element: i8}) {
		t.Error("identical vectors should be equal")
	}
	if Equal(Vector{Element: i8}, Vector{Element: i16}) {
		t.Error("different element types should not be equal")
	}
	if !Equal(StructInstance{Name: "Box", Args: []Type{i8}}, StructInstance{Name: "Box", Args: []Type{i8}}) {
		t.Error("same instantiation should be equal")
	}
	if Equal(StructInstance{Name: "Box", Args: []Type{i8}}, StructInstance{Name: "Box", Args: []Type{i16}}) {
		t.Error("different instantiations should not be equal")
	}
}

func TestApply(t *testing.T) {
	subst := Subst{"T": Primitive{Kind: I8}}
	applied := Apply(Vector{Element: Param{Name: "T"}}, subst)
	if applied.String() != "[I8]" {
		t.Errorf("Apply = %s", applied)
	}
	nested := Apply(StructInstance{Name: "Box", Args: []Type{Optional{Inner: Param{Name: "T"}}}}, subst)
	if nested.String() != "Box(I8?)" {
		t.Errorf("Apply nested = %s", nested)
	}
}

func TestMangle(t *testing.T) {
	i8 := Primitive{Kind: I8}
	tests := []struct {
		typ  Type
		want string
	}{
		{i8, "I8"},
		{Vector{Element: i8}, "Vector_I8"},
		{Dict{Key: Primitive{Kind: String}, Value: i8}, "Dict_String_I8"},
		{Optional{Inner: i8}, "Opt_I8"},
		{Ref{Inner: i8}, "Ref_I8"},
		{StructInstance{Name: "Box", Args: []Type{Vector{Element: i8}}}, "Box_Vector_I8"},
	}
	for _, tt := range tests {
		if got := Mangle(tt.typ); got != tt.want {
			t.Errorf("Mangle = %s, want %s", got, tt.want)
		}
	}
}

func TestOperatorMethod(t *testing.T) {
	method, iface, ok := OperatorMethod("+")
	if !ok || method != MethodAdd || iface != InterfaceAddable {
		t.Errorf("+ resolved to %s / %s", method, iface)
	}
	if _, _, ok := OperatorMethod("and"); ok {
		t.Error("'and' has no protocol method")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if !r.RegisterStruct(&StructDef{Name: "User"}) {
		t.Fatal("first registration failed")
	}
	if r.RegisterStruct(&StructDef{Name: "User"}) {
		t.Error("duplicate struct accepted")
	}
	if r.RegisterInterface(&InterfaceDef{Name: "User"}) {
		t.Error("interface clashing with struct accepted")
	}
}

func TestBuiltinInterfacesRegistered(t *testing.T) {
	r := NewRegistry()
	resolver := NewResolver(r)
	i8 := Primitive{Kind: I8}
	if !resolver.Conforms(i8, InterfaceEq) {
		t.Error("I8 should conform to Eq")
	}
	if !resolver.Conforms(i8, InterfaceAddable) {
		t.Error("I8 should conform to Addable")
	}
	if resolver.Conforms(Primitive{Kind: Bool}, InterfaceAddable) {
		t.Error("Bool should not conform to Addable")
	}
}

func TestStructConformance(t *testing.T) {
	r := NewRegistry()
	boolType := Primitive{Kind: Bool}
	r.RegisterStruct(&StructDef{
		Name:       "Money",
		Interfaces: []string{InterfaceEq},
		Methods: []MethodSig{
			{Name: MethodEq, Params: []Type{SelfType{}}, Return: boolType},
		},
	})
	resolver := NewResolver(r)
	money := StructInstance{Name: "Money"}
	if !resolver.Conforms(money, InterfaceEq) {
		t.Error("Money should conform to Eq")
	}
	if resolver.Conforms(money, InterfaceLt) {
		t.Error("Money should not conform to Lt")
	}
}
