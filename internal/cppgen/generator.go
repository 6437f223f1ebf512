// Package cppgen lowers a checked program to C++. Generic declarations are
// emitted once per discovered instantiation under specialized names, so the
// output contains no templates. Emission is fully deterministic: the same
// analysis result always produces byte-identical output.
package cppgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/angel-lang/angel/internal/analyzer"
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/mono"
	"github.com/angel-lang/angel/internal/typesystem"
)

// Generator emits one translation unit.
type Generator struct {
	res   *analyzer.Result
	insts *mono.Set

	includes map[string]bool
	top      []string
	stream   []string
	streamed map[string]bool
	tmp      int
	err      error

	// Bindings of the instance currently being emitted.
	subst typesystem.Subst
	// True inside struct methods and inits, where self is the receiver
	// pointer. Shared algebraic methods take self by value.
	selfIsReceiver bool
}

// New creates a generator over an analysis result and its instantiations.
func New(res *analyzer.Result, insts *mono.Set) *Generator {
	return &Generator{
		res:      res,
		insts:    insts,
		includes: map[string]bool{},
		streamed: map[string]bool{},
	}
}

// Generate renders the whole translation unit.
func (g *Generator) Generate() (string, error) {
	main := &buf{}
	for _, stmt := range g.res.Program.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			g.emitFunction(s)
		case *ast.StructDeclaration:
			g.emitStructInstances(s)
		case *ast.AlgebraicDeclaration:
			g.emitAlgebraic(s)
		case *ast.InterfaceDeclaration, *ast.ExtensionDeclaration:
			// Interfaces are compile-time only; extension methods are
			// folded into their target's class body.
		default:
			g.statement(main, 1, stmt)
		}
		if g.err != nil {
			return "", g.err
		}
	}

	var out strings.Builder
	for _, inc := range g.sortedIncludes() {
		out.WriteString("#include " + inc + "\n")
	}
	for _, chunk := range g.top {
		out.WriteString(chunk)
	}
	for _, chunk := range g.stream {
		out.WriteString(chunk)
	}
	out.WriteString("int main() {\n")
	for _, line := range main.lines {
		out.WriteString(line + "\n")
	}
	out.WriteString("  return 0;\n")
	out.WriteString("}\n")
	return out.String(), nil
}

func (g *Generator) errorf(format string, args ...interface{}) {
	if g.err == nil {
		g.err = fmt.Errorf(format, args...)
	}
}

// sortedIncludes orders system headers alphabetically before the runtime
// headers.
func (g *Generator) sortedIncludes() []string {
	var system, local []string
	for inc := range g.includes {
		if strings.HasPrefix(inc, "\"") {
			local = append(local, inc)
		} else {
			system = append(system, inc)
		}
	}
	sort.Strings(system)
	sort.Strings(local)
	return append(system, local...)
}

func (g *Generator) include(name string) {
	g.includes[name] = true
}

func (g *Generator) newTmp() string {
	name := fmt.Sprintf("tmp_%d", g.tmp)
	g.tmp++
	return name
}

// typeOf returns a node's checked type with the current instance bindings
// applied.
func (g *Generator) typeOf(node ast.Node) typesystem.Type {
	t, ok := g.res.Types[node]
	if !ok {
		return nil
	}
	return typesystem.Apply(t, g.subst)
}

// cppType renders a semantic type as C++.
func (g *Generator) cppType(t typesystem.Type) string {
	switch tt := t.(type) {
	case typesystem.Primitive:
		return g.cppPrimitive(tt)
	case typesystem.Vector:
		g.include("<vector>")
		return "std::vector<" + g.cppType(tt.Element) + ">"
	case typesystem.Dict:
		g.include("<map>")
		return "std::map<" + g.cppType(tt.Key) + ", " + g.cppType(tt.Value) + ">"
	case typesystem.Optional:
		g.include("<optional>")
		return "std::optional<" + g.cppType(tt.Inner) + ">"
	case typesystem.Ref:
		return g.cppType(tt.Inner) + "*"
	case typesystem.StructInstance:
		return mono.InstanceName(tt.Name, tt.Args)
	case typesystem.AlgebraicInstance:
		return g.variantStorageType(tt.Name)
	case typesystem.Param:
		g.errorf("unbound type parameter '%s' reached code generation", tt.Name)
		return tt.Name
	case typesystem.InterfaceInstance:
		g.errorf("interface type '%s' has no runtime representation", tt.Name)
		return tt.Name
	}
	g.errorf("type %s has no C++ form", t)
	return t.String()
}

func (g *Generator) cppPrimitive(p typesystem.Primitive) string {
	switch p.Kind {
	case typesystem.I8, typesystem.I16, typesystem.I32, typesystem.I64,
		typesystem.U8, typesystem.U16, typesystem.U32, typesystem.U64:
		g.include("<cstdint>")
	case typesystem.String:
		g.include("<string>")
	}
	switch p.Kind {
	case typesystem.I8:
		return "std::int_fast8_t"
	case typesystem.I16:
		return "std::int_fast16_t"
	case typesystem.I32:
		return "std::int_fast32_t"
	case typesystem.I64:
		return "std::int_fast64_t"
	case typesystem.U8:
		return "std::uint_fast8_t"
	case typesystem.U16:
		return "std::uint_fast16_t"
	case typesystem.U32:
		return "std::uint_fast32_t"
	case typesystem.U64:
		return "std::uint_fast64_t"
	case typesystem.F32:
		return "float"
	case typesystem.F64:
		return "double"
	case typesystem.String:
		return "std::string"
	case typesystem.Char:
		return "char"
	case typesystem.Bool:
		return "bool"
	}
	return "void"
}

// variantStorageType renders the std::variant over every variant class of
// an algebraic type.
func (g *Generator) variantStorageType(name string) string {
	g.include("<variant>")
	def := g.res.Registry.Algebraics[name]
	parts := make([]string, len(def.Variants))
	for i, v := range def.Variants {
		parts[i] = variantClassName(name, v.Name)
	}
	return "std::variant<" + strings.Join(parts, ", ") + ">"
}

func variantClassName(alg, variant string) string {
	return alg + "_a_" + variant
}

func sharedMethodName(alg, method string) string {
	return alg + "_m_" + method
}

// methodCppName maps operator protocol methods onto native C++ operators.
func methodCppName(name string) string {
	switch name {
	case typesystem.MethodEq:
		return "operator=="
	case typesystem.MethodLt:
		return "operator<"
	case typesystem.MethodGt:
		return "operator>"
	case typesystem.MethodAdd:
		return "operator+"
	case typesystem.MethodSub:
		return "operator-"
	case typesystem.MethodMul:
		return "operator*"
	case typesystem.MethodDiv:
		return "operator/"
	}
	return name
}

// ensureStream emits the operator<< bridge for a toString-capable type the
// first time it is printed directly.
func (g *Generator) ensureStream(t typesystem.Type) {
	name := g.cppType(t)
	if g.streamed[name] {
		return
	}
	g.streamed[name] = true
	g.include("<iostream>")
	var b strings.Builder
	b.WriteString("std::ostream& operator<<(std::ostream& _arg1, " + name + "& _arg2) {\n")
	b.WriteString("  _arg1 << _arg2.toString();\n")
	b.WriteString("  return _arg1;\n")
	b.WriteString("}\n")
	g.stream = append(g.stream, b.String())
}

type buf struct {
	lines []string
}

func (b *buf) add(depth int, line string) {
	b.lines = append(b.lines, strings.Repeat("  ", depth)+line)
}

func (b *buf) empty() bool {
	return len(b.lines) == 0
}

func (b *buf) splice(other *buf) {
	b.lines = append(b.lines, other.lines...)
}
