package symbols

import (
	"testing"

	"github.com/angel-lang/angel/internal/typesystem"
)

func TestDefineAndResolve(t *testing.T) {
	global := NewScope(GlobalScope, nil)
	sym := &Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.Primitive{Kind: typesystem.I8}}
	if !global.Define(sym) {
		t.Fatal("first definition should succeed")
	}
	if global.Define(&Symbol{Name: "x", Kind: ConstantSymbol}) {
		t.Error("redefinition in the same scope must fail")
	}
	got, ok := global.Resolve("x")
	if !ok || got != sym {
		t.Error("Resolve should find the defined symbol")
	}
	if _, ok := global.Resolve("y"); ok {
		t.Error("unknown name should not resolve")
	}
}

func TestResolveWalksTheChain(t *testing.T) {
	global := NewScope(GlobalScope, nil)
	global.Define(&Symbol{Name: "outer", Kind: ConstantSymbol})
	block := NewScope(BlockScope, global)
	block.Define(&Symbol{Name: "inner", Kind: VariableSymbol})

	if _, ok := block.Resolve("outer"); !ok {
		t.Error("inner scope should see outer bindings")
	}
	if _, ok := global.Resolve("inner"); ok {
		t.Error("outer scope must not see inner bindings")
	}
	if _, ok := block.ResolveLocal("outer"); ok {
		t.Error("ResolveLocal must not walk the chain")
	}
}

func TestShadowing(t *testing.T) {
	global := NewScope(GlobalScope, nil)
	global.Define(&Symbol{Name: "x", Kind: ConstantSymbol})
	block := NewScope(BlockScope, global)
	inner := &Symbol{Name: "x", Kind: VariableSymbol}
	if !block.Define(inner) {
		t.Fatal("shadowing in a nested scope should succeed")
	}
	got, _ := block.Resolve("x")
	if got != inner {
		t.Error("the innermost definition wins")
	}
}

func TestNamesKeepDefinitionOrder(t *testing.T) {
	scope := NewScope(GlobalScope, nil)
	for _, name := range []string{"c", "a", "b"} {
		scope.Define(&Symbol{Name: name})
	}
	names := scope.Names()
	if len(names) != 3 || names[0] != "c" || names[1] != "a" || names[2] != "b" {
		t.Errorf("got %v, want definition order", names)
	}
}

func TestInFunction(t *testing.T) {
	global := NewScope(GlobalScope, nil)
	if global.InFunction() {
		t.Error("global scope is not inside a function")
	}
	fn := NewScope(FunctionScope, global)
	block := NewScope(BlockScope, fn)
	if !block.InFunction() {
		t.Error("a block inside a function body is inside a function")
	}
}

func TestClearNarrowing(t *testing.T) {
	global := NewScope(GlobalScope, nil)
	sym := &Symbol{Name: "c", Kind: VariableSymbol, Narrowed: "Red"}
	global.Define(sym)
	block := NewScope(BlockScope, global)
	block.ClearNarrowing([]string{"c", "missing"})
	if sym.Narrowed != "" {
		t.Error("narrowing should be erased through the chain")
	}
}
