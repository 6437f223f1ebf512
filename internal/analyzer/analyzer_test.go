package analyzer

import (
	"testing"

	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/parser"
)

func analyze(t *testing.T, source string) (*Result, *diagnostics.Error) {
	t.Helper()
	program, perr := parser.Parse(source)
	if perr != nil {
		t.Fatalf("parse error: %s", perr)
	}
	a := New()
	a.SetSource(source)
	res, err := a.Analyze(program)
	if err == nil {
		return res, nil
	}
	derr, ok := err.(*diagnostics.Error)
	if !ok {
		t.Fatalf("error is %T, not a diagnostic", err)
	}
	return nil, derr
}

func expectOK(t *testing.T, source string) *Result {
	t.Helper()
	res, err := analyze(t, source)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return res
}

func expectCode(t *testing.T, source string, code diagnostics.Code) {
	t.Helper()
	_, err := analyze(t, source)
	if err == nil {
		t.Fatalf("no error for:\n%s", source)
	}
	if err.Code != code {
		t.Fatalf("code = %s, want %s (message: %s)", err.Code, code, err.Message)
	}
}

func TestValidPrograms(t *testing.T) {
	sources := []string{
		"let x: I8 = 1\n",
		"var greeting = \"hi\"\ngreeting += \"!\"\n",
		"let scores: [I32] = [90, 85]\nprint(scores[0])\n",
		"let ages: [String: I8] = [\"a\": 1]\nprint(ages[\"a\"])\n",
		"var maybe: String? = Optional.Some(\"x\")\nmaybe = Optional.None\n",
		"fun double(n: I32) -> I32:\n    return n + n\nprint(double(4))\n",
		"let cell = ref 1\nprint(cell.value)\n",
		"let age = 100\nlet wide = age as I64\n",
	}
	for _, source := range sources {
		expectOK(t, source)
	}
}

func TestUndefinedName(t *testing.T) {
	expectCode(t, "print(nope)\n", diagnostics.UndefinedName)
	expectCode(t, "let x: Missing = 1\n", diagnostics.UndefinedName)
}

func TestDuplicateDefinition(t *testing.T) {
	expectCode(t, "let x = 1\nlet x = 2\n", diagnostics.DuplicateDefinition)
	expectCode(t, "struct A:\n    x: I8\nstruct A:\n    y: I8\n", diagnostics.DuplicateDefinition)
	expectCode(t, "fun f() -> I8:\n    return 1\nfun f() -> I8:\n    return 2\n", diagnostics.DuplicateDefinition)
}

func TestConstantReassignment(t *testing.T) {
	expectCode(t, "let x = 1\nx = 2\n", diagnostics.WriteToAlreadyAssignedConstant)
}

func TestDeferredConstantAssignedOnce(t *testing.T) {
	expectOK(t, "let x: I8\nx = 1\n")
	expectCode(t, "let x: I8\nx = 1\nx = 2\n", diagnostics.WriteToAlreadyAssignedConstant)
}

func TestLiteralRanges(t *testing.T) {
	expectOK(t, "let small: I8 = -128\n")
	expectCode(t, "let small: I8 = 128\n", diagnostics.LiteralOutOfRange)
	expectOK(t, "let big: U64 = 18446744073709551615\n")
	expectCode(t, "let big: U64 = 18446744073709551616\n", diagnostics.LiteralOutOfRange)
	expectCode(t, "let negative: U8 = -1\n", diagnostics.LiteralOutOfRange)
}

func TestTypeMismatch(t *testing.T) {
	expectCode(t, "let x: I8 = \"hi\"\n", diagnostics.TypeMismatch)
	expectCode(t, "let x = 1 + \"a\"\n", diagnostics.TypeMismatch)
	expectCode(t, "if 1:\n    print(\"no\")\n", diagnostics.TypeMismatch)
	expectCode(t, "fun f() -> I8:\n    return \"s\"\n", diagnostics.TypeMismatch)
}

func TestStructsAndMembers(t *testing.T) {
	base := `struct User:
    email: String
    _secret: I32 = 0

    fun greeting() -> String:
        return "hello, " + self.email

let u = User("a@b.c")
`
	expectOK(t, base+"print(u.greeting())\n")
	expectCode(t, base+"print(u.missing)\n", diagnostics.UnresolvedMember)
	expectCode(t, base+"print(u._secret)\n", diagnostics.PrivateMemberAccess)
}

func TestSynthesizedInitializerTakesPublicFieldsOnly(t *testing.T) {
	base := `struct Counter:
    _count: I8 = 0
    step: I8
`
	expectOK(t, base+"let c = Counter(5)\n")
	expectCode(t, base+"let c = Counter(99, 5)\n", diagnostics.TypeMismatch)
	expectCode(t, "struct Counter:\n    _count: I8\n", diagnostics.PrivateFieldNotInitialized)
}

func TestInterfaceConformance(t *testing.T) {
	ok := `interface Named:
    fun name() -> String

struct City is Named:
    title: String

    fun name() -> String:
        return self.title
`
	expectOK(t, ok)

	missing := `interface Named:
    fun name() -> String

struct City is Named:
    title: String
`
	expectCode(t, missing, diagnostics.MissingInterfaceMember)
}

func TestGenericArity(t *testing.T) {
	base := "struct Box(T):\n    item: T\n"
	expectOK(t, base+"let b = Box(1)\n")
	expectCode(t, base+"var b: Box(I8, I16)\n", diagnostics.GenericArityMismatch)
	expectCode(t, "var x: I8(I16)\n", diagnostics.GenericArityMismatch)
}

func TestAlgebraicNarrowing(t *testing.T) {
	source := `algebraic Shape:
    struct Dot
    struct Square:
        side: I32

let s = Shape.Square(4)
print(s.side)
`
	expectOK(t, source)

	bad := `algebraic Shape:
    struct Dot
    struct Square:
        side: I32

let s = Shape.Dot()
print(s.side)
`
	expectCode(t, bad, diagnostics.UnresolvedMember)
}

func TestExtensions(t *testing.T) {
	source := `struct Pair:
    first: I32
    second: I32

extension Pair:
    fun total() -> I32:
        return self.first + self.second

let p = Pair(1, 2)
print(p.total())
`
	expectOK(t, source)
	expectCode(t, "extension Ghost:\n    fun f() -> I8:\n        return 1\n", diagnostics.UndefinedName)
}

func TestExtensionConformance(t *testing.T) {
	base := `struct Money:
    amount: I32

`
	expectOK(t, base+`extension Money is Eq:
    fun __eq__(other: Money) -> Bool:
        return self.amount == other.amount

let same = Money(1) == Money(2)
`)
	expectCode(t, base+`extension Money is Eq:
    fun unrelated() -> I8:
        return 1
`, diagnostics.MissingInterfaceMember)
	expectCode(t, base+`extension Money is Sortable:
    fun unrelated() -> I8:
        return 1
`, diagnostics.UndefinedName)
}

func TestCasts(t *testing.T) {
	expectOK(t, "let age = 23\nlet s = age as String\n")
	expectCode(t, "let v = [1]\nlet s = v as String\n", diagnostics.TypeMismatch)
}

func TestCallResolution(t *testing.T) {
	res := expectOK(t, "fun id(n: I32) -> I32:\n    return n\nprint(id(1))\n")
	var kinds []CallKind
	for _, info := range res.Calls {
		kinds = append(kinds, info.Kind)
	}
	var functions, builtins int
	for _, k := range kinds {
		switch k {
		case CallFunction:
			functions++
		case CallBuiltin:
			builtins++
		}
	}
	if functions != 1 || builtins != 1 {
		t.Errorf("resolved %d function calls and %d builtin calls, want 1 and 1", functions, builtins)
	}
}

func TestOperatorRewrites(t *testing.T) {
	res := expectOK(t, `struct Money is Eq:
    amount: I32
    fun __eq__(other: Money) -> Bool:
        return self.amount == other.amount
let a = Money(1)
let b = Money(2)
let different = a != b
`)
	found := false
	for _, info := range res.Operators {
		if info.Method == "__eq__" && info.Negated {
			found = true
		}
	}
	if !found {
		t.Error("!= on an Eq type should rewrite through __eq__ and negate")
	}

	res = expectOK(t, "let a = 1 != 2\n")
	if len(res.Operators) != 0 {
		t.Error("primitive comparisons are native, not protocol rewrites")
	}
}

func TestReturnOutsideFunction(t *testing.T) {
	expectCode(t, "return 1\n", diagnostics.SyntaxError)
	expectOK(t, "fun one() -> I8:\n    return 1\n")
}

func TestUntypedEmptyCollectionsFallBackToPointers(t *testing.T) {
	expectOK(t, "let emptyVector = []\n")
	expectOK(t, "let emptyDict = [:]\n")
	expectOK(t, "let someOptional = Optional.None\n")
}

func TestVectorLiteralElementUnification(t *testing.T) {
	expectOK(t, "var v = [1, 260]\nlet n: I16 = v[0]\n")
	expectOK(t, "var v = [-1, 200]\nlet n: I16 = v[0]\n")
	expectCode(t, "var v = [1, \"x\"]\n", diagnostics.TypeMismatch)
}

func TestRefCells(t *testing.T) {
	expectOK(t, "let cell = ref 1\ncell.value = 5\nprint(cell.value)\n")
	expectCode(t, "let cell = ref 1\nprint(cell.item)\n", diagnostics.UnresolvedMember)
}

func TestBreakOutsideLoop(t *testing.T) {
	_, err := analyze(t, "break\n")
	if err == nil {
		t.Fatal("break outside loop should be rejected")
	}
}

func TestErrorCarriesSourceLine(t *testing.T) {
	_, err := analyze(t, "let a = 1\nlet b: I8 = 999\n")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Line != 2 {
		t.Errorf("line = %d, want 2", err.Line)
	}
	if err.SourceLine == "" {
		t.Error("source line not attached")
	}
}
