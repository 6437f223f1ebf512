package analyzer

import (
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/symbols"
	"github.com/angel-lang/angel/internal/typesystem"
)

func (a *Analyzer) statement(stmt ast.Statement) {
	if a.failed() {
		return
	}
	switch s := stmt.(type) {
	case *ast.Decl:
		a.declStatement(s)
	case *ast.Assignment:
		a.assignment(s)
	case *ast.ExpressionStatement:
		a.expression(s.Expression, nil)
	case *ast.If:
		a.ifStatement(s)
	case *ast.IfLet:
		a.ifLetStatement(s)
	case *ast.While:
		a.whileStatement(s)
	case *ast.WhileLet:
		a.whileLetStatement(s)
	case *ast.For:
		a.forStatement(s)
	case *ast.Return:
		a.returnStatement(s)
	case *ast.Break:
		if !a.inLoop {
			a.errorf(diagnostics.SyntaxError, s, "'break' outside of a loop")
		}
	case *ast.FunctionDeclaration:
		a.functionDeclaration(s)
	case *ast.StructDeclaration:
		a.structDeclaration(s)
	case *ast.InterfaceDeclaration:
		a.interfaceDeclaration(s)
	case *ast.AlgebraicDeclaration:
		a.algebraicDeclaration(s)
	case *ast.ExtensionDeclaration:
		a.extensionDeclaration(s)
	default:
		a.errorf(diagnostics.SyntaxError, stmt, "unexpected statement")
	}
}

func (a *Analyzer) statements(body []ast.Statement) {
	for _, stmt := range body {
		a.statement(stmt)
		if a.failed() {
			return
		}
	}
}

func (a *Analyzer) declStatement(d *ast.Decl) {
	if _, exists := a.scope.ResolveLocal(d.Name.Value); exists {
		a.errorf(diagnostics.DuplicateDefinition, d.Name, "name '%s' is already defined", d.Name.Value)
		return
	}

	var declared typesystem.Type
	if d.Type != nil {
		declared = a.resolveType(d.Type)
		if a.failed() {
			return
		}
	}

	var valueType typesystem.Type
	if d.Value != nil {
		valueType = a.expression(d.Value, declared)
		if a.failed() {
			return
		}
		if declared != nil && !a.assignable(valueType, declared) {
			a.errorf(diagnostics.TypeMismatch, d, "cannot assign %s to '%s' of type %s", valueType, d.Name.Value, declared)
			return
		}
	}
	if declared == nil {
		if valueType == nil {
			a.errorf(diagnostics.TypeMismatch, d, "declaration of '%s' needs a type or a value", d.Name.Value)
			return
		}
		declared = widen(valueType)
	}

	kind := symbols.VariableSymbol
	if d.IsConstant {
		kind = symbols.ConstantSymbol
	}
	sym := &symbols.Symbol{
		Name:     d.Name.Value,
		Kind:     kind,
		Type:     declared,
		HasValue: d.Value != nil,
		Line:     d.Name.Token.Line,
		Column:   d.Name.Token.Column,
	}
	if d.Value != nil {
		sym.Narrowed = variantOf(valueType)
	}
	a.scope.Define(sym)
	a.setType(d, declared)
}

func (a *Analyzer) assignment(s *ast.Assignment) {
	switch target := s.Target.(type) {
	case *ast.Identifier:
		a.assignToIdentifier(s, target)
	case *ast.FieldAccess:
		a.assignToField(s, target)
	case *ast.Subscript:
		a.assignToSubscript(s, target)
	default:
		a.errorf(diagnostics.SyntaxError, s, "expression is not assignable")
	}
}

func (a *Analyzer) assignToIdentifier(s *ast.Assignment, target *ast.Identifier) {
	sym, ok := a.scope.Resolve(target.Value)
	if !ok {
		a.errorf(diagnostics.UndefinedName, target, "undefined name '%s'", target.Value)
		return
	}
	if sym.Kind == symbols.ConstantSymbol {
		if sym.HasValue || s.Operator != "=" {
			a.errorf(diagnostics.WriteToAlreadyAssignedConstant, target, "cannot assign to constant '%s'", target.Value)
			return
		}
	}
	a.setType(target, sym.Type)
	valueType := a.checkAssignedValue(s, sym.Type)
	if a.failed() {
		return
	}
	sym.HasValue = true
	if a.inLoop {
		sym.Narrowed = ""
	} else {
		sym.Narrowed = variantOf(valueType)
	}
}

func (a *Analyzer) assignToField(s *ast.Assignment, target *ast.FieldAccess) {
	fieldType := a.expression(target, nil)
	if a.failed() {
		return
	}
	ref, ok := a.result.Members[target]
	if !ok || ref.Kind != MemberField && ref.Kind != MemberRefValue {
		a.errorf(diagnostics.UnresolvedMember, target, "member '%s' is not assignable", target.Field.Value)
		return
	}
	a.checkAssignedValue(s, fieldType)
}

func (a *Analyzer) assignToSubscript(s *ast.Assignment, target *ast.Subscript) {
	elemType := a.expression(target, nil)
	if a.failed() {
		return
	}
	a.checkAssignedValue(s, elemType)
}

// checkAssignedValue types the right-hand side, folding compound operators
// through the same rules as their binary forms.
func (a *Analyzer) checkAssignedValue(s *ast.Assignment, targetType typesystem.Type) typesystem.Type {
	valueType := a.expression(s.Value, targetType)
	if a.failed() {
		return nil
	}
	if s.Operator != "=" {
		op := s.Operator[:1]
		result := a.binaryResult(s, op, targetType, valueType)
		if a.failed() {
			return nil
		}
		valueType = result
	}
	if !a.assignable(valueType, targetType) {
		a.errorf(diagnostics.TypeMismatch, s, "cannot assign %s where %s is expected", valueType, targetType)
		return nil
	}
	return valueType
}

func (a *Analyzer) ifStatement(s *ast.If) {
	a.condition(s.Condition)
	if a.failed() {
		return
	}

	base := a.snapshotNarrowing()
	var outcomes []map[*symbols.Symbol]string

	a.pushScope(symbols.BlockScope)
	a.statements(s.Body)
	a.popScope()
	if a.failed() {
		return
	}
	outcomes = append(outcomes, a.snapshotNarrowing())
	a.restoreNarrowing(base)

	for _, elif := range s.Elifs {
		a.condition(elif.Condition)
		if a.failed() {
			return
		}
		a.pushScope(symbols.BlockScope)
		a.statements(elif.Body)
		a.popScope()
		if a.failed() {
			return
		}
		outcomes = append(outcomes, a.snapshotNarrowing())
		a.restoreNarrowing(base)
	}

	if s.Else != nil {
		a.pushScope(symbols.BlockScope)
		a.statements(s.Else)
		a.popScope()
		if a.failed() {
			return
		}
		outcomes = append(outcomes, a.snapshotNarrowing())
		a.restoreNarrowing(base)
	} else {
		// The fallthrough path keeps the knowledge from before the if.
		outcomes = append(outcomes, base)
	}
	a.mergeNarrowing(base, outcomes)
}

func (a *Analyzer) ifLetStatement(s *ast.IfLet) {
	valueType := a.expression(s.Value, nil)
	if a.failed() {
		return
	}
	opt, ok := valueType.(typesystem.Optional)
	if !ok {
		a.errorf(diagnostics.TypeMismatch, s, "'if let' needs an optional value, got %s", valueType)
		return
	}
	a.pushScope(symbols.BlockScope)
	a.scope.Define(&symbols.Symbol{
		Name:     s.Name.Value,
		Kind:     symbols.ConstantSymbol,
		Type:     opt.Inner,
		HasValue: true,
	})
	a.setType(s.Name, opt.Inner)
	a.statements(s.Body)
	a.popScope()
	if a.failed() {
		return
	}
	if s.Else != nil {
		a.pushScope(symbols.BlockScope)
		a.statements(s.Else)
		a.popScope()
	}
}

func (a *Analyzer) whileStatement(s *ast.While) {
	a.condition(s.Condition)
	if a.failed() {
		return
	}
	a.loopBody(func() { a.statements(s.Body) }, s.Body)
}

func (a *Analyzer) whileLetStatement(s *ast.WhileLet) {
	valueType := a.expression(s.Value, nil)
	if a.failed() {
		return
	}
	opt, ok := valueType.(typesystem.Optional)
	if !ok {
		a.errorf(diagnostics.TypeMismatch, s, "'while let' needs an optional value, got %s", valueType)
		return
	}
	a.loopBody(func() {
		a.scope.Define(&symbols.Symbol{
			Name:     s.Name.Value,
			Kind:     symbols.ConstantSymbol,
			Type:     opt.Inner,
			HasValue: true,
		})
		a.setType(s.Name, opt.Inner)
		a.statements(s.Body)
	}, s.Body)
}

func (a *Analyzer) forStatement(s *ast.For) {
	containerType := a.expression(s.Container, nil)
	if a.failed() {
		return
	}
	var elemType typesystem.Type
	switch ct := containerType.(type) {
	case typesystem.Vector:
		elemType = ct.Element
	case typesystem.Primitive:
		if ct.Kind == typesystem.String {
			elemType = typesystem.Primitive{Kind: typesystem.Char}
		}
	}
	if elemType == nil {
		a.errorf(diagnostics.TypeMismatch, s, "cannot iterate over %s", containerType)
		return
	}
	a.loopBody(func() {
		a.scope.Define(&symbols.Symbol{
			Name:     s.Element.Value,
			Kind:     symbols.ConstantSymbol,
			Type:     elemType,
			HasValue: true,
		})
		a.setType(s.Element, elemType)
		a.statements(s.Body)
	}, s.Body)
}

// loopBody checks a loop body in its own scope. Bindings reassigned inside
// the body lose variant knowledge before the body is checked, since a later
// iteration observes the previous iteration's writes.
func (a *Analyzer) loopBody(check func(), body []ast.Statement) {
	a.scope.ClearNarrowing(assignedNames(body))
	prevLoop := a.inLoop
	a.inLoop = true
	a.pushScope(symbols.BlockScope)
	check()
	a.popScope()
	a.inLoop = prevLoop
}

func (a *Analyzer) returnStatement(s *ast.Return) {
	if !a.scope.InFunction() {
		a.errorf(diagnostics.SyntaxError, s, "'return' outside of a function")
		return
	}
	expected := a.returnType
	if expected == nil {
		expected = typesystem.Primitive{Kind: typesystem.Void}
	}
	if s.Value == nil {
		if !typesystem.Equal(expected, typesystem.Primitive{Kind: typesystem.Void}) {
			a.errorf(diagnostics.TypeMismatch, s, "missing return value, expected %s", expected)
		}
		return
	}
	got := a.expression(s.Value, expected)
	if a.failed() {
		return
	}
	if !a.assignable(got, expected) {
		a.errorf(diagnostics.TypeMismatch, s, "cannot return %s, expected %s", got, expected)
	}
}

func (a *Analyzer) condition(expr ast.Expression) {
	t := a.expression(expr, typesystem.Primitive{Kind: typesystem.Bool})
	if a.failed() {
		return
	}
	if !typesystem.Equal(t, typesystem.Primitive{Kind: typesystem.Bool}) {
		a.errorf(diagnostics.TypeMismatch, expr, "condition must be Bool, got %s", t)
	}
}

// snapshotNarrowing captures the variant knowledge of every binding
// reachable from the current scope.
func (a *Analyzer) snapshotNarrowing() map[*symbols.Symbol]string {
	snap := map[*symbols.Symbol]string{}
	for scope := a.scope; scope != nil; scope = scope.Parent() {
		for _, name := range scope.Names() {
			if sym, ok := scope.ResolveLocal(name); ok {
				if _, seen := snap[sym]; !seen {
					snap[sym] = sym.Narrowed
				}
			}
		}
	}
	return snap
}

func (a *Analyzer) restoreNarrowing(snap map[*symbols.Symbol]string) {
	for sym, variant := range snap {
		sym.Narrowed = variant
	}
}

// mergeNarrowing keeps a variant known after a conditional only when every
// path through it agrees.
func (a *Analyzer) mergeNarrowing(base map[*symbols.Symbol]string, outcomes []map[*symbols.Symbol]string) {
	for sym := range base {
		merged := ""
		for i, outcome := range outcomes {
			variant, ok := outcome[sym]
			if !ok {
				variant = ""
			}
			if i == 0 {
				merged = variant
			} else if merged != variant {
				merged = ""
			}
		}
		sym.Narrowed = merged
	}
}

// assignedNames collects identifiers written anywhere in a statement list.
func assignedNames(body []ast.Statement) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(stmts []ast.Statement)
	walk = func(stmts []ast.Statement) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.Assignment:
				if ident, ok := s.Target.(*ast.Identifier); ok && !seen[ident.Value] {
					seen[ident.Value] = true
					names = append(names, ident.Value)
				}
			case *ast.If:
				walk(s.Body)
				for _, elif := range s.Elifs {
					walk(elif.Body)
				}
				walk(s.Else)
			case *ast.IfLet:
				walk(s.Body)
				walk(s.Else)
			case *ast.While:
				walk(s.Body)
			case *ast.WhileLet:
				walk(s.Body)
			case *ast.For:
				walk(s.Body)
			}
		}
	}
	walk(body)
	return names
}

func variantOf(t typesystem.Type) string {
	if alg, ok := t.(typesystem.AlgebraicInstance); ok {
		return alg.Variant
	}
	return ""
}

// widen strips the statically known variant when a binding's type is
// inferred from a variant constructor: the binding's declared type is the
// algebraic type, the variant lives in narrowing.
func widen(t typesystem.Type) typesystem.Type {
	if alg, ok := t.(typesystem.AlgebraicInstance); ok && alg.Variant != "" {
		return typesystem.AlgebraicInstance{Name: alg.Name}
	}
	return t
}
