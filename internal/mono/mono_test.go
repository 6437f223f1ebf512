package mono

import (
	"testing"

	"github.com/angel-lang/angel/internal/analyzer"
	"github.com/angel-lang/angel/internal/parser"
	"github.com/angel-lang/angel/internal/typesystem"
)

func discover(t *testing.T, source string) *Set {
	t.Helper()
	program, perr := parser.Parse(source)
	if perr != nil {
		t.Fatalf("parse error: %s", perr)
	}
	a := analyzer.New()
	a.SetSource(source)
	res, err := a.Analyze(program)
	if err != nil {
		t.Fatalf("analyze error: %s", err)
	}
	return Monomorphize(res)
}

func structNames(set *Set) []string {
	names := make([]string, len(set.Structs))
	for i, inst := range set.Structs {
		names[i] = inst.Name
	}
	return names
}

func TestNonGenericProgramHasNoInstances(t *testing.T) {
	set := discover(t, "struct User:\n    email: String\nlet u = User(\"a\")\n")
	if len(set.Structs) != 0 || len(set.Functions) != 0 {
		t.Errorf("instances = %v / %v, want none", set.Structs, set.Functions)
	}
}

func TestStructInstantiations(t *testing.T) {
	source := `struct Box(T):
    item: T

let a = Box(1)
let b = Box("s")
let c = Box(2)
`
	set := discover(t, source)
	got := structNames(set)
	want := []string{"Box__I8", "Box__String"}
	if len(got) != len(want) {
		t.Fatalf("instances = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instance %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDiscoveryOrderIsSourceOrder(t *testing.T) {
	source := `struct Box(T):
    item: T

let s = Box("late")
let n = Box(1)
`
	set := discover(t, source)
	got := structNames(set)
	if len(got) != 2 || got[0] != "Box__String" || got[1] != "Box__I8" {
		t.Errorf("instances = %v", got)
	}
}

func TestGenericFunction(t *testing.T) {
	source := `fun first(items: [T]) -> T:
    return items[0]

let n = first([1, 2])
`
	set := discover(t, source)
	if len(set.Functions) != 1 {
		t.Fatalf("function instances = %v", set.Functions)
	}
	if set.Functions[0].Name != "first__I8" {
		t.Errorf("name = %s", set.Functions[0].Name)
	}
}

func TestTransitiveInstantiation(t *testing.T) {
	source := `struct Inner(T):
    item: T

fun wrap(value: T) -> Inner(T):
    return Inner(value)

let w = wrap(True)
`
	set := discover(t, source)
	boolType := typesystem.Primitive{Kind: typesystem.Bool}
	if _, ok := set.Lookup("Inner", []typesystem.Type{boolType}); !ok {
		t.Errorf("Inner(Bool) not discovered through wrap: %v", structNames(set))
	}
}

func TestInstanceNameMangling(t *testing.T) {
	vec := typesystem.Vector{Element: typesystem.Primitive{Kind: typesystem.I8}}
	if got := InstanceName("first", []typesystem.Type{vec}); got != "first__Vector_I8" {
		t.Errorf("vector arg name = %s", got)
	}
	if got := InstanceName("plain", nil); got != "plain" {
		t.Errorf("no-arg name = %s", got)
	}
}

func TestDeduplication(t *testing.T) {
	source := `struct Box(T):
    item: T

fun make(value: T) -> Box(T):
    return Box(value)

let a = make(1)
let b = make(2)
let c = Box(3)
`
	set := discover(t, source)
	if len(set.Structs) != 1 {
		t.Errorf("struct instances = %v, want one Box__I8", structNames(set))
	}
}
