package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/angel-lang/angel/internal/parser"
)

func run(t *testing.T, e *Evaluator, input string) Object {
	t.Helper()
	program, perr := parser.Parse(input)
	if perr != nil {
		t.Fatalf("parse error: %s", perr)
	}
	value, err := e.Eval(program.Statements)
	if err != nil {
		t.Fatalf("eval error: %s", err)
	}
	return value
}

func evalInspect(t *testing.T, input string) string {
	t.Helper()
	return run(t, New(), input).Inspect()
}

func evalError(t *testing.T, input string) string {
	t.Helper()
	program, perr := parser.Parse(input)
	if perr != nil {
		t.Fatalf("parse error: %s", perr)
	}
	_, err := New().Eval(program.Statements)
	if err == nil {
		t.Fatalf("no error for %q", input)
	}
	return err.Message
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3\n", "7"},
		{"(1 + 2) * 3\n", "9"},
		{"10 - 4\n", "6"},
		{"7 / 2\n", "3.5"},
		{"6 / 3\n", "2"},
		{"1.5 + 2.25\n", "3.75"},
		{"-5 + 3\n", "-2"},
		{"18446744073709551615 + 1\n", "18446744073709551616"},
	}
	for _, tt := range tests {
		if got := evalInspect(t, tt.input); got != tt.want {
			t.Errorf("%q = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	msg := evalError(t, "1 / 0\n")
	if !strings.Contains(msg, "division by zero") {
		t.Errorf("message = %q", msg)
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 < 2\n", "True"},
		{"2 <= 2\n", "True"},
		{"3 >= 4\n", "False"},
		{"1 != 2\n", "True"},
		{"\"a\" < \"b\"\n", "True"},
		{"\"x\" == \"x\"\n", "True"},
		{"'a' == 'a'\n", "True"},
		{"True and False\n", "False"},
		{"True or False\n", "True"},
		{"[1, 2] == [1, 2]\n", "True"},
		{"[1, 2] != [2, 1]\n", "True"},
	}
	for _, tt := range tests {
		if got := evalInspect(t, tt.input); got != tt.want {
			t.Errorf("%q = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestVariables(t *testing.T) {
	input := "var x = 1\nx += 4\nx *= 2\nx\n"
	if got := evalInspect(t, input); got != "10" {
		t.Errorf("got %s, want 10", got)
	}
}

func TestIfElifElse(t *testing.T) {
	input := `let n = 5
var label = ""
if n < 0:
    label = "negative"
elif n == 0:
    label = "zero"
else:
    label = "positive"
label
`
	if got := evalInspect(t, input); got != "\"positive\"" {
		t.Errorf("got %s", got)
	}
}

func TestWhileWithBreak(t *testing.T) {
	input := `var total = 0
var i = 0
while True:
    if i == 5:
        break
    total += i
    i += 1
total
`
	if got := evalInspect(t, input); got != "10" {
		t.Errorf("got %s, want 10", got)
	}
}

func TestForOverVectorAndString(t *testing.T) {
	input := "var total = 0\nfor n in [1, 2, 3]:\n    total += n\ntotal\n"
	if got := evalInspect(t, input); got != "6" {
		t.Errorf("vector sum = %s", got)
	}

	input = "var count = 0\nfor c in \"abc\":\n    count += 1\ncount\n"
	if got := evalInspect(t, input); got != "3" {
		t.Errorf("string length = %s", got)
	}
}

func TestOptionals(t *testing.T) {
	input := `var result = "missing"
if let name = Optional.Some("angel"):
    result = name
result
`
	if got := evalInspect(t, input); got != "\"angel\"" {
		t.Errorf("got %s", got)
	}

	input = `var result = "missing"
if let name = Optional.None:
    result = name
else:
    result = "fallback"
result
`
	if got := evalInspect(t, input); got != "\"fallback\"" {
		t.Errorf("got %s", got)
	}
}

func TestWhileLet(t *testing.T) {
	input := `var budget = 3
fun take() -> I8?:
    if budget > 0:
        return Optional.Some(budget)
    return Optional.None
var seen = []
while let n = take():
    seen.append(n)
    budget -= 1
seen
`
	if got := evalInspect(t, input); got != "[3, 2, 1]" {
		t.Errorf("got %s", got)
	}
}

func TestFunctions(t *testing.T) {
	input := `fun factorial(n: I32) -> I32:
    if n <= 1:
        return 1
    return n * factorial(n - 1)
factorial(6)
`
	if got := evalInspect(t, input); got != "720" {
		t.Errorf("got %s, want 720", got)
	}
}

func TestStructWithInit(t *testing.T) {
	input := `struct User:
    email: String
    isAdmin: Bool = False

    init(email: String):
        self.email = email

    fun greeting() -> String:
        return "hello, " + self.email

let u = User("a@b.c")
u.greeting()
`
	if got := evalInspect(t, input); got != "\"hello, a@b.c\"" {
		t.Errorf("got %s", got)
	}
}

func TestSynthesizedConstructor(t *testing.T) {
	input := `struct Point:
    x: I32
    y: I32 = 0
    _tag: String = "p"

let a = Point(1, 2)
a.y
`
	if got := evalInspect(t, input); got != "2" {
		t.Errorf("both arguments: got %s", got)
	}

	input = `struct Point:
    x: I32
    y: I32 = 0

let b = Point(7)
b.y
`
	if got := evalInspect(t, input); got != "0" {
		t.Errorf("trailing default: got %s", got)
	}
}

func TestPrivateFieldFromDefault(t *testing.T) {
	input := `struct Counter:
    _count: I32 = 41

    fun bump() -> I32:
        self._count += 1
        return self._count

let c = Counter()
c.bump()
`
	if got := evalInspect(t, input); got != "42" {
		t.Errorf("got %s", got)
	}
}

func TestAlgebraic(t *testing.T) {
	input := `algebraic Shape:
    struct Dot
    struct Square:
        side: I32

    fun name() -> String:
        return "shape"

let s = Shape.Square(4)
s.side * 2
`
	if got := evalInspect(t, input); got != "8" {
		t.Errorf("variant field: got %s", got)
	}

	if msg := evalError(t, "algebraic Color:\n    struct Red\nColor(1)\n"); !strings.Contains(msg, "cannot be constructed directly") {
		t.Errorf("direct construction message = %q", msg)
	}
}

func TestSharedAlgebraicMethod(t *testing.T) {
	input := `algebraic Shape:
    struct Dot

    fun name() -> String:
        return "shape"

let d = Shape.Dot()
d.name()
`
	if got := evalInspect(t, input); got != "\"shape\"" {
		t.Errorf("got %s", got)
	}
}

func TestExtensionMethod(t *testing.T) {
	input := `struct Pair:
    first: I32
    second: I32

extension Pair:
    fun total() -> I32:
        return self.first + self.second

let p = Pair(3, 4)
p.total()
`
	if got := evalInspect(t, input); got != "7" {
		t.Errorf("got %s", got)
	}
}

func TestOperatorMethod(t *testing.T) {
	input := `struct Money:
    amount: I32

    fun __add__(other: Money) -> Money:
        return Money(self.amount + other.amount)

let total = Money(5) + Money(7)
total.amount
`
	if got := evalInspect(t, input); got != "12" {
		t.Errorf("got %s", got)
	}
}

func TestCollections(t *testing.T) {
	input := "var v = [1, 2]\nv.append(3)\nv[0] = 9\nv\n"
	if got := evalInspect(t, input); got != "[9, 2, 3]" {
		t.Errorf("vector: got %s", got)
	}

	input = "var d = [\"a\": 1]\nd[\"b\"] = 2\nd[\"a\"] = 10\nd.length\n"
	if got := evalInspect(t, input); got != "2" {
		t.Errorf("dict upsert: got %s", got)
	}

	input = "\"hello\".length\n"
	if got := evalInspect(t, input); got != "5" {
		t.Errorf("string length: got %s", got)
	}

	input = "\"a,b,c\".split(',')\n"
	if got := evalInspect(t, input); got != "[\"a\", \"b\", \"c\"]" {
		t.Errorf("split: got %s", got)
	}
}

func TestSubscriptErrors(t *testing.T) {
	if msg := evalError(t, "[1, 2][5]\n"); !strings.Contains(msg, "out of range") {
		t.Errorf("vector message = %q", msg)
	}
	if msg := evalError(t, "[\"a\": 1][\"b\"]\n"); !strings.Contains(msg, "not in the dictionary") {
		t.Errorf("dict message = %q", msg)
	}
}

func TestRefsShareTheCell(t *testing.T) {
	input := `let cell = ref 1
let alias = cell
alias.value = 5
cell.value
`
	if got := evalInspect(t, input); got != "5" {
		t.Errorf("got %s", got)
	}
}

func TestCasts(t *testing.T) {
	input := "let age = 23\nage as String\n"
	if got := evalInspect(t, input); got != "\"23\"" {
		t.Errorf("int to string: got %s", got)
	}

	input = `struct Temp:
    degrees: I32

    fun toString() -> String:
        return "temp"

let tmp = Temp(20)
tmp as String
`
	if got := evalInspect(t, input); got != "\"temp\"" {
		t.Errorf("instance conversion: got %s", got)
	}
}

func TestPrintRendersRaw(t *testing.T) {
	e := New()
	var out bytes.Buffer
	e.SetOutput(&out)
	run(t, e, "print(\"hi\")\nprint('x')\nprint([1, 2])\nprint(True)\n")
	want := "hi\nx\n[1, 2]\nTrue\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRead(t *testing.T) {
	e := New()
	var out bytes.Buffer
	e.SetOutput(&out)
	e.SetInput(strings.NewReader("World\n"))
	value := run(t, e, "read(\"Name: \")\n")
	if value.Inspect() != "\"World\"" {
		t.Errorf("read = %s", value.Inspect())
	}
	if out.String() != "Name: " {
		t.Errorf("prompt = %q", out.String())
	}
}

func TestUndefinedName(t *testing.T) {
	if msg := evalError(t, "nope\n"); !strings.Contains(msg, "undefined name") {
		t.Errorf("message = %q", msg)
	}
}

func TestConditionMustBeBool(t *testing.T) {
	if msg := evalError(t, "if 1:\n    print(\"no\")\n"); !strings.Contains(msg, "not a Bool") {
		t.Errorf("message = %q", msg)
	}
}

func TestEvalReturnsLastExpression(t *testing.T) {
	e := New()
	if got := run(t, e, "let a = 2\n").Inspect(); got != "Void" {
		t.Errorf("declaration result = %s", got)
	}
	if got := run(t, e, "a + 1\n").Inspect(); got != "3" {
		t.Errorf("expression result = %s", got)
	}
}

func TestEnvironmentRollback(t *testing.T) {
	e := New()
	run(t, e, "let keep = 1\nlet drop = 2\n")
	if !e.Env().Delete("drop") {
		t.Fatal("Delete returned false")
	}
	if _, ok := e.Env().Get("drop"); ok {
		t.Error("drop still defined")
	}
	if _, ok := e.Env().Get("keep"); !ok {
		t.Error("keep lost")
	}
}
