package parser

import (
	"testing"

	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/diagnostics"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %s", input, err)
	}
	return program
}

func parseOne(t *testing.T, input string) ast.Statement {
	t.Helper()
	program := parse(t, input)
	if len(program.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(program.Statements))
	}
	return program.Statements[0]
}

func expr(t *testing.T, input string) ast.Expression {
	t.Helper()
	stmt, ok := parseOne(t, input).(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("not an expression statement: %T", parseOne(t, input))
	}
	return stmt.Expression
}

func TestDecl(t *testing.T) {
	tests := []struct {
		input    string
		constant bool
		name     string
		hasType  bool
		hasValue bool
	}{
		{"let x: I8 = 1\n", true, "x", true, true},
		{"var name = \"lol\"\n", false, "name", false, true},
		{"var maybe: String?\n", false, "maybe", true, false},
	}
	for _, tt := range tests {
		decl, ok := parseOne(t, tt.input).(*ast.Decl)
		if !ok {
			t.Fatalf("%q: not a Decl", tt.input)
		}
		if decl.IsConstant != tt.constant {
			t.Errorf("%q: IsConstant = %v", tt.input, decl.IsConstant)
		}
		if decl.Name.Value != tt.name {
			t.Errorf("%q: name = %q", tt.input, decl.Name.Value)
		}
		if (decl.Type != nil) != tt.hasType {
			t.Errorf("%q: type presence = %v", tt.input, decl.Type != nil)
		}
		if (decl.Value != nil) != tt.hasValue {
			t.Errorf("%q: value presence = %v", tt.input, decl.Value != nil)
		}
	}
}

func TestDeclNeedsTypeOrValue(t *testing.T) {
	if _, err := Parse("let x\n"); err == nil {
		t.Fatal("expected error for declaration without type and value")
	}
}

func TestNegativeLiteralFolding(t *testing.T) {
	lit, ok := expr(t, "-5\n").(*ast.IntegerLiteral)
	if !ok {
		t.Fatalf("not an IntegerLiteral")
	}
	if lit.Value != "-5" {
		t.Errorf("Value = %q, want -5", lit.Value)
	}
	flt, ok := expr(t, "-2.5\n").(*ast.FloatLiteral)
	if !ok {
		t.Fatalf("not a FloatLiteral")
	}
	if flt.Value != "-2.5" {
		t.Errorf("Value = %q, want -2.5", flt.Value)
	}
}

func TestPrecedence(t *testing.T) {
	sum, ok := expr(t, "1 + 2 * 3\n").(*ast.BinaryExpression)
	if !ok || sum.Operator != "+" {
		t.Fatalf("top operator: got %v", sum)
	}
	product, ok := sum.Right.(*ast.BinaryExpression)
	if !ok || product.Operator != "*" {
		t.Fatalf("right operand should be the product")
	}

	cmp, ok := expr(t, "x == 1 + 2\n").(*ast.BinaryExpression)
	if !ok || cmp.Operator != "==" {
		t.Fatalf("comparison should bind loosest")
	}
	if _, ok := cmp.Right.(*ast.BinaryExpression); !ok {
		t.Fatalf("sum should be nested under comparison")
	}

	or, ok := expr(t, "a and b or c\n").(*ast.BinaryExpression)
	if !ok || or.Operator != "or" {
		t.Fatalf("or should bind loosest")
	}
	and, ok := or.Left.(*ast.BinaryExpression)
	if !ok || and.Operator != "and" {
		t.Fatalf("and should nest under or")
	}
}

func TestGroupedExpression(t *testing.T) {
	product, ok := expr(t, "(1 + 2) * 3\n").(*ast.BinaryExpression)
	if !ok || product.Operator != "*" {
		t.Fatalf("top operator should be *")
	}
	if _, ok := product.Left.(*ast.BinaryExpression); !ok {
		t.Fatalf("grouped sum should be the left operand")
	}
}

func TestCastBindsTighterThanProduct(t *testing.T) {
	product, ok := expr(t, "a * b as I8\n").(*ast.BinaryExpression)
	if !ok || product.Operator != "*" {
		t.Fatalf("top operator should be *")
	}
	cast, ok := product.Right.(*ast.Cast)
	if !ok {
		t.Fatalf("cast should nest under product")
	}
	named, ok := cast.Target.(*ast.NamedType)
	if !ok || named.Name != "I8" {
		t.Fatalf("cast target = %v", cast.Target)
	}
}

func TestOptionalSugar(t *testing.T) {
	if _, ok := expr(t, "Optional.None\n").(*ast.OptionalNone); !ok {
		t.Errorf("Optional.None not rewritten")
	}
	some, ok := expr(t, "Optional.Some(5)\n").(*ast.OptionalSome)
	if !ok {
		t.Fatalf("Optional.Some(5) not rewritten")
	}
	if _, ok := some.Value.(*ast.IntegerLiteral); !ok {
		t.Errorf("Some payload = %T", some.Value)
	}
}

func TestCollectionLiterals(t *testing.T) {
	vec, ok := expr(t, "[1, 2, 3]\n").(*ast.VectorLiteral)
	if !ok || len(vec.Elements) != 3 {
		t.Fatalf("vector literal: %v", vec)
	}
	empty, ok := expr(t, "[]\n").(*ast.VectorLiteral)
	if !ok || len(empty.Elements) != 0 {
		t.Fatalf("empty vector literal: %v", empty)
	}
	dict, ok := expr(t, "[\"a\": 1, \"b\": 2]\n").(*ast.DictLiteral)
	if !ok || len(dict.Keys) != 2 || len(dict.Values) != 2 {
		t.Fatalf("dict literal: %v", dict)
	}
	emptyDict, ok := expr(t, "[:]\n").(*ast.DictLiteral)
	if !ok || len(emptyDict.Keys) != 0 {
		t.Fatalf("empty dict literal: %v", emptyDict)
	}
}

func TestCallsAndAccess(t *testing.T) {
	call, ok := expr(t, "user.greet(1, 2)\n").(*ast.CallExpression)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("call: %v", call)
	}
	access, ok := call.Function.(*ast.FieldAccess)
	if !ok || access.Field.Value != "greet" {
		t.Fatalf("callee: %v", call.Function)
	}

	sub, ok := expr(t, "v[0]\n").(*ast.Subscript)
	if !ok {
		t.Fatalf("subscript not parsed")
	}
	if _, ok := sub.Index.(*ast.IntegerLiteral); !ok {
		t.Errorf("index = %T", sub.Index)
	}
}

func TestAssignment(t *testing.T) {
	tests := []struct {
		input    string
		operator string
	}{
		{"x = 1\n", "="},
		{"x += 1\n", "+="},
		{"v[0] -= 2\n", "-="},
		{"self.balance *= 2\n", "*="},
		{"d[\"k\"] /= 2\n", "/="},
	}
	for _, tt := range tests {
		assign, ok := parseOne(t, tt.input).(*ast.Assignment)
		if !ok {
			t.Fatalf("%q: not an Assignment", tt.input)
		}
		if assign.Operator != tt.operator {
			t.Errorf("%q: operator = %q", tt.input, assign.Operator)
		}
	}
}

func TestAssignmentTargetMustBeAssignable(t *testing.T) {
	if _, err := Parse("1 + 2 = 3\n"); err == nil {
		t.Fatal("expected error for non-assignable target")
	}
}

func TestFunctionDeclaration(t *testing.T) {
	input := "fun add(a: Int, b: Int) -> Int:\n    return a + b\n"
	fn, ok := parseOne(t, input).(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("not a FunctionDeclaration")
	}
	if fn.Name.Value != "add" {
		t.Errorf("name = %q", fn.Name.Value)
	}
	if len(fn.Args) != 2 || fn.Args[0].Name != "a" || fn.Args[1].Name != "b" {
		t.Errorf("args = %v", fn.Args)
	}
	if fn.ReturnType == nil {
		t.Errorf("return type missing")
	}
	if len(fn.Body) != 1 {
		t.Errorf("body has %d statements", len(fn.Body))
	}
}

func TestVoidFunction(t *testing.T) {
	input := "fun greet():\n    print(\"hi\")\n"
	fn, ok := parseOne(t, input).(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("not a FunctionDeclaration")
	}
	if fn.ReturnType != nil {
		t.Errorf("void function should have nil return type")
	}
}

func TestStructDeclaration(t *testing.T) {
	input := `struct User:
    email: String
    _id: I32 = 0

    init(email: String):
        self.email = email

    fun greeting() -> String:
        return self.email
`
	st, ok := parseOne(t, input).(*ast.StructDeclaration)
	if !ok {
		t.Fatalf("not a StructDeclaration")
	}
	if st.Name.Value != "User" {
		t.Errorf("name = %q", st.Name.Value)
	}
	if len(st.Fields) != 2 || st.Fields[1].Name != "_id" || st.Fields[1].Value == nil {
		t.Errorf("fields = %v", st.Fields)
	}
	if len(st.Inits) != 1 || len(st.Inits[0].Args) != 1 {
		t.Errorf("inits = %v", st.Inits)
	}
	if len(st.Methods) != 1 || st.Methods[0].Name != "greeting" {
		t.Errorf("methods = %v", st.Methods)
	}
}

func TestGenericStructWithConformances(t *testing.T) {
	input := "struct MyPair(A, B) is Eq:\n    first: A\n    second: B\n"
	st := parseOne(t, input).(*ast.StructDeclaration)
	if len(st.TypeParams) != 2 || st.TypeParams[0] != "A" {
		t.Errorf("type params = %v", st.TypeParams)
	}
	if len(st.Interfaces) != 1 || st.Interfaces[0].Value != "Eq" {
		t.Errorf("interfaces = %v", st.Interfaces)
	}
}

func TestInterfaceDeclaration(t *testing.T) {
	input := "interface Named is Show:\n    name: String\n    fun describe() -> String\n"
	iface, ok := parseOne(t, input).(*ast.InterfaceDeclaration)
	if !ok {
		t.Fatalf("not an InterfaceDeclaration")
	}
	if len(iface.Extends) != 1 || iface.Extends[0].Value != "Show" {
		t.Errorf("extends = %v", iface.Extends)
	}
	if len(iface.Fields) != 1 || iface.Fields[0].Name != "name" {
		t.Errorf("fields = %v", iface.Fields)
	}
	if len(iface.Methods) != 1 || iface.Methods[0].Body != nil {
		t.Errorf("interface method should have no body")
	}
}

func TestAlgebraicDeclaration(t *testing.T) {
	input := `algebraic Color:
    struct Red
    struct Custom:
        code: I32

    fun describe() -> String:
        return "color"
`
	alg, ok := parseOne(t, input).(*ast.AlgebraicDeclaration)
	if !ok {
		t.Fatalf("not an AlgebraicDeclaration")
	}
	if len(alg.Variants) != 2 {
		t.Fatalf("variants = %d", len(alg.Variants))
	}
	if alg.Variants[0].Name.Value != "Red" || len(alg.Variants[0].Fields) != 0 {
		t.Errorf("first variant = %v", alg.Variants[0])
	}
	if alg.Variants[1].Name.Value != "Custom" || len(alg.Variants[1].Fields) != 1 {
		t.Errorf("second variant = %v", alg.Variants[1])
	}
	if len(alg.Methods) != 1 {
		t.Errorf("shared methods = %d", len(alg.Methods))
	}
}

func TestExtensionDeclaration(t *testing.T) {
	input := "extension MyPair(A, B) is Eq where A is Eq and B is Eq:\n    fun swapped() -> MyPair(B, A):\n        return MyPair(self.second, self.first)\n"
	ext, ok := parseOne(t, input).(*ast.ExtensionDeclaration)
	if !ok {
		t.Fatalf("not an ExtensionDeclaration")
	}
	if len(ext.TypeParams) != 2 {
		t.Errorf("type params = %v", ext.TypeParams)
	}
	if len(ext.Where) != 2 || ext.Where[1].Param != "B" || ext.Where[1].Interface != "Eq" {
		t.Errorf("where = %v", ext.Where)
	}
	if len(ext.Methods) != 1 {
		t.Errorf("methods = %d", len(ext.Methods))
	}
}

func TestIfElifElse(t *testing.T) {
	input := `if a:
    return 1
elif b:
    return 2
elif c:
    return 3
else:
    return 4
`
	cond, ok := parseOne(t, input).(*ast.If)
	if !ok {
		t.Fatalf("not an If")
	}
	if len(cond.Elifs) != 2 {
		t.Errorf("elifs = %d", len(cond.Elifs))
	}
	if len(cond.Else) != 1 {
		t.Errorf("else body = %d", len(cond.Else))
	}
}

func TestIfLet(t *testing.T) {
	input := "if let name = maybeName:\n    print(name)\nelse:\n    print(\"none\")\n"
	cond, ok := parseOne(t, input).(*ast.IfLet)
	if !ok {
		t.Fatalf("not an IfLet")
	}
	if cond.Name.Value != "name" {
		t.Errorf("bound name = %q", cond.Name.Value)
	}
	if len(cond.Else) != 1 {
		t.Errorf("else body = %d", len(cond.Else))
	}
}

func TestWhileAndWhileLet(t *testing.T) {
	loop, ok := parseOne(t, "while x < 10:\n    x += 1\n").(*ast.While)
	if !ok {
		t.Fatalf("not a While")
	}
	if len(loop.Body) != 1 {
		t.Errorf("body = %d", len(loop.Body))
	}

	drain, ok := parseOne(t, "while let n = next():\n    print(n)\n").(*ast.WhileLet)
	if !ok {
		t.Fatalf("not a WhileLet")
	}
	if drain.Name.Value != "n" {
		t.Errorf("bound name = %q", drain.Name.Value)
	}
}

func TestForLoop(t *testing.T) {
	loop, ok := parseOne(t, "for element in [1, 2, 3]:\n    print(element)\n").(*ast.For)
	if !ok {
		t.Fatalf("not a For")
	}
	if loop.Element.Value != "element" {
		t.Errorf("element = %q", loop.Element.Value)
	}
	if _, ok := loop.Container.(*ast.VectorLiteral); !ok {
		t.Errorf("container = %T", loop.Container)
	}
}

func TestRefAndCast(t *testing.T) {
	ref, ok := expr(t, "ref counter\n").(*ast.RefExpression)
	if !ok {
		t.Fatalf("not a RefExpression")
	}
	if _, ok := ref.Value.(*ast.Identifier); !ok {
		t.Errorf("ref target = %T", ref.Value)
	}
}

func TestTypeExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"var a: [I8]\n", "[I8]"},
		{"var b: [String: I32]\n", "[String: I32]"},
		{"var c: String?\n", "String?"},
		{"var d: ref I32\n", "ref I32"},
		{"var e: Stack(I8)\n", "Stack(I8)"},
		{"var f: [I8?]\n", "[I8?]"},
	}
	for _, tt := range tests {
		decl := parseOne(t, tt.input).(*ast.Decl)
		if got := decl.Type.TokenLiteral(); got != tt.want {
			t.Errorf("%q: type = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []string{
		"fun add(a Int):\n    return a\n",
		"if:\n    return 1\n",
		"struct:\n    x: I8\n",
		"let = 5\n",
		"algebraic Empty:\n    fun only() -> I8:\n        return 1\n",
		"x !\n",
	}
	for _, input := range tests {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q): expected error", input)
			continue
		}
		if err.Code != diagnostics.SyntaxError {
			t.Errorf("Parse(%q): code = %s, want SyntaxError", input, err.Code)
		}
	}
}

func TestErrorPositions(t *testing.T) {
	_, err := Parse("let a = 1\nlet b =\n")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Line != 2 {
		t.Errorf("error line = %d, want 2", err.Line)
	}
}
