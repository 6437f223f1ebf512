package cppgen

import (
	"strings"
	"testing"

	"github.com/angel-lang/angel/internal/analyzer"
	"github.com/angel-lang/angel/internal/mono"
	"github.com/angel-lang/angel/internal/parser"
)

func generate(t *testing.T, input string) string {
	t.Helper()
	program, perr := parser.Parse(input)
	if perr != nil {
		t.Fatalf("parse error: %s", perr.Message)
	}
	a := analyzer.New()
	a.SetSource(input)
	res, err := a.Analyze(program)
	if err != nil {
		t.Fatalf("analysis error: %v", err)
	}
	insts := mono.Monomorphize(res)
	out, err := New(res, insts).Generate()
	if err != nil {
		t.Fatalf("generation error: %v", err)
	}
	return out
}

func wantContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, frag := range fragments {
		if !strings.Contains(out, frag) {
			t.Errorf("output missing %q:\n%s", frag, out)
		}
	}
}

func TestMainScaffolding(t *testing.T) {
	out := generate(t, "let x: I8 = 5\n")
	wantContains(t, out,
		"#include <cstdint>\n",
		"int main() {\n",
		"  std::int_fast8_t x = 5;\n",
		"  return 0;\n}\n",
	)
}

func TestDeclarations(t *testing.T) {
	out := generate(t, `let s = "hi"
var b = True
let f: F64 = 1.5
`)
	wantContains(t, out,
		`std::string s = "hi";`,
		"bool b = true;",
		"double f = 1.5;",
	)
}

func TestIncludesSortedSystemBeforeLocal(t *testing.T) {
	out := generate(t, `let s = "hi"
print(s)
let x = 1
print(x)
`)
	header := "#include <cstdint>\n#include <iostream>\n#include <string>\n#include \"angel_builtins.h\"\n"
	if !strings.HasPrefix(out, header) {
		t.Errorf("include block out of order:\n%s", out)
	}
}

func TestPrintWidensSmallIntegers(t *testing.T) {
	out := generate(t, "let x: I8 = 5\nprint(x)\n")
	wantContains(t, out, "__print((std::int_fast16_t)(x));")
}

func TestFunctionEmittedBeforeMain(t *testing.T) {
	out := generate(t, `fun add(a: I32, b: I32) -> I32:
    return a + b
let r = add(1, 2)
`)
	wantContains(t, out,
		"std::int_fast32_t add(std::int_fast32_t a, std::int_fast32_t b) {",
		"  return a + b;",
		"std::int_fast32_t r = add(1, 2);",
	)
	if strings.Index(out, "add(std::int_fast32_t a") > strings.Index(out, "int main()") {
		t.Error("function body emitted after main")
	}
}

func TestGenericStructSpecialization(t *testing.T) {
	out := generate(t, `struct Box(T):
    item: T
let b = Box(5)
`)
	wantContains(t, out, "class Box__I8 {", "Box__I8 b = Box__I8(5);")
	if strings.Contains(out, "template") {
		t.Error("specialized output must not contain C++ templates")
	}
}

func TestSynthesizedCtorSkipsPrivateFields(t *testing.T) {
	out := generate(t, `struct Counter:
    _count: I8 = 0
    step: I8
let c = Counter(5)
`)
	wantContains(t, out,
		"Counter(std::int_fast8_t step) {",
		"this->_count = 0;",
		"this->step = step;",
	)
}

func TestComparisonLowering(t *testing.T) {
	out := generate(t, `struct Money is Eq:
    amount: I32
    fun __eq__(other: Money) -> Bool:
        return self.amount == other.amount
let a = Money(1)
let b = Money(2)
let different = a != b
let ordered = 1 <= 2
`)
	wantContains(t, out,
		"bool operator==(Money other) {",
		"bool different = !(a == b);",
		"bool ordered = 1 <= 2;",
	)
}

func TestVectors(t *testing.T) {
	out := generate(t, "var v = [1, 2]\nv.append(3)\nlet n = v.length\n")
	wantContains(t, out,
		"#include <vector>",
		"std::vector<std::int_fast8_t> v = {1, 2};",
		"v.push_back(3);",
		"v.size()",
	)
}

func TestVectorLiteralHoistedOutsideInitializers(t *testing.T) {
	out := generate(t, "var v = [9]\nlet same = v == [9]\n")
	wantContains(t, out,
		"std::vector<std::int_fast8_t> v = {9};",
		"std::vector<std::int_fast8_t> tmp_0 = {9};",
		"bool same = v == tmp_0;",
	)
	if strings.Contains(out, "== {") {
		t.Errorf("brace list leaked outside an initializer:\n%s", out)
	}
}

func TestElifConditionHelpersRunInElseBranch(t *testing.T) {
	out := generate(t, `var v = [9]
if v == [1]:
    print("a")
elif v == [9]:
    print("b")
`)
	wantContains(t, out,
		"std::vector<std::int_fast8_t> tmp_0 = {1};",
		"if (v == tmp_0) {",
		"  } else {\n    std::vector<std::int_fast8_t> tmp_1 = {9};\n    if (v == tmp_1) {",
	)
}

func TestWhileConditionReevaluatedEachIteration(t *testing.T) {
	out := generate(t, `var v = [9]
while v == [9]:
    v.append(1)
`)
	wantContains(t, out,
		"  while (true) {\n    std::vector<std::int_fast8_t> tmp_0 = {9};\n    if (!(v == tmp_0)) {\n      break;\n    }",
	)
}

func TestVectorElementTypeWidensToFitAllLiterals(t *testing.T) {
	out := generate(t, "var v = [1, 260]\n")
	wantContains(t, out, "std::vector<std::int_fast16_t> v = {1, 260};")
}

func TestUntypedEmptiesLowerToVoidPointers(t *testing.T) {
	out := generate(t, "let emptyVector = []\nlet someOptional = Optional.None\n")
	wantContains(t, out,
		"std::vector<void*> emptyVector = {};",
		"std::optional<void*> someOptional = std::nullopt;",
	)
}

func TestEmptyDictDefaultConstructs(t *testing.T) {
	out := generate(t, "var d: [String: I32] = [:]\n")
	wantContains(t, out,
		"#include <map>",
		"std::map<std::string, std::int_fast32_t> d;",
	)
}

func TestOptionals(t *testing.T) {
	out := generate(t, `var x: I32? = Optional.None
x = Optional.Some(7)
if let v = x:
    print(v)
`)
	wantContains(t, out,
		"#include <optional>",
		"std::optional<std::int_fast32_t> x = std::nullopt;",
		"!= std::nullopt) {",
	)
}

func TestWhileAndIndentation(t *testing.T) {
	out := generate(t, `var i = 0
while i < 3:
    i += 1
`)
	wantContains(t, out,
		"  while (i < 3) {",
		"    i += 1;",
	)
}

func TestRefWritesThroughPointer(t *testing.T) {
	out := generate(t, `var x = 1
let r = ref x
r.value = 5
print(r.value)
`)
	wantContains(t, out, "std::int_fast8_t* r = &x;", "(*r) = 5;", "__print((std::int_fast16_t)((*r)));")
}

func TestDeterministicOutput(t *testing.T) {
	input := `struct Pair(A, B):
    first: A
    second: B
let p = Pair(1, "x")
print(p.first)
`
	program, perr := parser.Parse(input)
	if perr != nil {
		t.Fatalf("parse error: %s", perr.Message)
	}
	a := analyzer.New()
	a.SetSource(input)
	res, err := a.Analyze(program)
	if err != nil {
		t.Fatalf("analysis error: %v", err)
	}
	insts := mono.Monomorphize(res)
	first, err := New(res, insts).Generate()
	if err != nil {
		t.Fatalf("generation error: %v", err)
	}
	second, err := New(res, insts).Generate()
	if err != nil {
		t.Fatalf("generation error: %v", err)
	}
	if first != second {
		t.Error("two runs over the same analysis produced different output")
	}
}
