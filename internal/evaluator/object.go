package evaluator

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/angel-lang/angel/internal/ast"
)

type ObjectType string

const (
	INT_OBJ      ObjectType = "INT"
	FLOAT_OBJ    ObjectType = "FLOAT"
	STRING_OBJ   ObjectType = "STRING"
	CHAR_OBJ     ObjectType = "CHAR"
	BOOL_OBJ     ObjectType = "BOOL"
	VECTOR_OBJ   ObjectType = "VECTOR"
	DICT_OBJ     ObjectType = "DICT"
	NONE_OBJ     ObjectType = "NONE"
	SOME_OBJ     ObjectType = "SOME"
	REF_OBJ      ObjectType = "REF"
	VOID_OBJ     ObjectType = "VOID"
	FUNCTION_OBJ ObjectType = "FUNCTION"
	BUILTIN_OBJ  ObjectType = "BUILTIN"
	STRUCT_OBJ   ObjectType = "STRUCT"
	VARIANT_OBJ  ObjectType = "VARIANT"
	INSTANCE_OBJ ObjectType = "INSTANCE"
	RETURN_OBJ   ObjectType = "RETURN"
	BREAK_OBJ    ObjectType = "BREAK"
)

// Object is a value produced while evaluating checked statements.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Int struct {
	Value *big.Int
}

func (i *Int) Type() ObjectType { return INT_OBJ }
func (i *Int) Inspect() string  { return i.Value.String() }

func NewInt(v int64) *Int { return &Int{Value: big.NewInt(v)} }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'f', -1, 64) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return "\"" + s.Value + "\"" }

type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType { return CHAR_OBJ }
func (c *Char) Inspect() string  { return "'" + string(c.Value) + "'" }

type Bool struct {
	Value bool
}

func (b *Bool) Type() ObjectType { return BOOL_OBJ }
func (b *Bool) Inspect() string {
	if b.Value {
		return "True"
	}
	return "False"
}

type Vector struct {
	Elements []Object
}

func (v *Vector) Type() ObjectType { return VECTOR_OBJ }
func (v *Vector) Inspect() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Dict keeps keys and values in insertion order so Inspect is stable.
type Dict struct {
	Keys   []Object
	Values []Object
}

func (d *Dict) Type() ObjectType { return DICT_OBJ }
func (d *Dict) Inspect() string {
	if len(d.Keys) == 0 {
		return "[:]"
	}
	parts := make([]string, len(d.Keys))
	for i := range d.Keys {
		parts[i] = d.Keys[i].Inspect() + ": " + d.Values[i].Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type None struct{}

func (n *None) Type() ObjectType { return NONE_OBJ }
func (n *None) Inspect() string  { return "Optional.None" }

type Some struct {
	Inner Object
}

func (s *Some) Type() ObjectType { return SOME_OBJ }
func (s *Some) Inspect() string  { return "Optional.Some(" + s.Inner.Inspect() + ")" }

// Ref is a shared cell: bindings copied from one another alias the same
// *Ref and observe each other's writes through it.
type Ref struct {
	Value Object
}

func (r *Ref) Type() ObjectType { return REF_OBJ }
func (r *Ref) Inspect() string  { return "ref " + r.Value.Inspect() }

type Void struct{}

func (v *Void) Type() ObjectType { return VOID_OBJ }
func (v *Void) Inspect() string  { return "Void" }

type Function struct {
	Name string
	Args []*ast.Argument
	Body []ast.Statement
	Env  *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "fun " + f.Name }

type Builtin struct {
	Name string
	Fn   func(args ...Object) Object
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin " + b.Name }

// Struct is a struct or algebraic declaration used as a value, e.g. as a
// constructor in a call or as the base of variant access.
type Struct struct {
	Decl      *ast.StructDeclaration
	Algebraic *ast.AlgebraicDeclaration
}

func (s *Struct) Type() ObjectType { return STRUCT_OBJ }
func (s *Struct) Inspect() string {
	if s.Algebraic != nil {
		return "algebraic " + s.Algebraic.Name.Value
	}
	return "struct " + s.Decl.Name.Value
}

// Instance is a constructed struct or variant value. For variants
// Algebraic carries the owning algebraic type's name.
type Instance struct {
	Decl      *ast.StructDeclaration
	Algebraic string
	Fields    map[string]Object
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string {
	name := i.Decl.Name.Value
	if i.Algebraic != "" {
		name = i.Algebraic + "." + name
	}
	var parts []string
	for _, f := range i.Decl.Fields {
		if v, ok := i.Fields[f.Name]; ok {
			parts = append(parts, f.Name+": "+v.Inspect())
		}
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// ReturnValue carries a function result up through nested statements.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// BreakSignal unwinds to the nearest enclosing loop.
type BreakSignal struct{}

func (bs *BreakSignal) Type() ObjectType { return BREAK_OBJ }
func (bs *BreakSignal) Inspect() string  { return "Break" }
