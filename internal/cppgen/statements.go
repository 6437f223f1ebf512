package cppgen

import (
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/typesystem"
)

func (g *Generator) statement(b *buf, depth int, stmt ast.Statement) {
	if g.err != nil {
		return
	}
	switch s := stmt.(type) {
	case *ast.Decl:
		g.declStatement(b, depth, s)
	case *ast.Assignment:
		g.assignStatement(b, depth, s)
	case *ast.ExpressionStatement:
		expr := g.expression(b, depth, s.Expression)
		b.add(depth, expr+";")
	case *ast.If:
		g.ifStatement(b, depth, s)
	case *ast.IfLet:
		g.ifLetStatement(b, depth, s)
	case *ast.While:
		g.whileStatement(b, depth, s)
	case *ast.WhileLet:
		g.whileLetStatement(b, depth, s)
	case *ast.For:
		g.forStatement(b, depth, s)
	case *ast.Return:
		if s.Value == nil {
			b.add(depth, "return;")
			return
		}
		b.add(depth, "return "+g.expression(b, depth, s.Value)+";")
	case *ast.Break:
		b.add(depth, "break;")
	default:
		g.errorf("statement %T cannot appear here", stmt)
	}
}

func (g *Generator) declStatement(b *buf, depth int, s *ast.Decl) {
	t := g.typeOf(s)
	cpp := g.cppType(t)
	if s.Value == nil {
		b.add(depth, cpp+" "+s.Name.Value+";")
		return
	}
	// An empty dictionary literal is just default construction.
	if dl, ok := s.Value.(*ast.DictLiteral); ok && len(dl.Keys) == 0 {
		b.add(depth, cpp+" "+s.Name.Value+";")
		return
	}
	if vl, ok := s.Value.(*ast.VectorLiteral); ok {
		b.add(depth, cpp+" "+s.Name.Value+" = "+g.vectorBraces(b, depth, vl)+";")
		return
	}
	value := g.expressionExpecting(b, depth, s.Value, t)
	b.add(depth, cpp+" "+s.Name.Value+" = "+value+";")
}

func (g *Generator) assignStatement(b *buf, depth int, s *ast.Assignment) {
	target := g.assignTarget(b, depth, s)
	if vl, ok := s.Value.(*ast.VectorLiteral); ok && s.Operator == "=" {
		b.add(depth, target+" = "+g.vectorBraces(b, depth, vl)+";")
		return
	}
	value := g.expressionExpecting(b, depth, s.Value, g.typeOf(s.Target))
	b.add(depth, target+" "+s.Operator+" "+value+";")
}

// assignTarget renders the left-hand side, writing through a reference cell
// when a plain value is stored into a reference-typed binding.
func (g *Generator) assignTarget(b *buf, depth int, s *ast.Assignment) string {
	target := g.expression(b, depth, s.Target)
	targetType := g.typeOf(s.Target)
	if _, isRef := targetType.(typesystem.Ref); isRef {
		if _, valueIsRef := g.typeOf(s.Value).(typesystem.Ref); !valueIsRef {
			return "*" + target
		}
	}
	return target
}

// whileStatement re-evaluates the condition on every iteration. When the
// condition needs helper statements it cannot sit in the while header, so
// the loop becomes `while (true)` with a leading conditional break.
func (g *Generator) whileStatement(b *buf, depth int, s *ast.While) {
	scratch := &buf{}
	cond := g.expression(scratch, depth+1, s.Condition)
	if scratch.empty() {
		b.add(depth, "while ("+cond+") {")
	} else {
		b.add(depth, "while (true) {")
		b.splice(scratch)
		b.add(depth+1, "if (!("+cond+")) {")
		b.add(depth+2, "break;")
		b.add(depth+1, "}")
	}
	for _, inner := range s.Body {
		g.statement(b, depth+1, inner)
	}
	b.add(depth, "}")
}

// ifStatement keeps the flat `else if` chain as long as every condition is a
// plain expression. A condition that needs helper statements gets its own
// nested block inside the previous branch's else, so the helpers run only
// when the earlier conditions failed.
func (g *Generator) ifStatement(b *buf, depth int, s *ast.If) {
	cond := g.expression(b, depth, s.Condition)
	b.add(depth, "if ("+cond+") {")
	for _, inner := range s.Body {
		g.statement(b, depth+1, inner)
	}
	closes := 1
	for _, elif := range s.Elifs {
		scratch := &buf{}
		cond := g.expression(scratch, depth+1, elif.Condition)
		if scratch.empty() {
			b.add(depth, "} else if ("+cond+") {")
		} else {
			b.add(depth, "} else {")
			b.splice(scratch)
			b.add(depth+1, "if ("+cond+") {")
			depth++
			closes++
		}
		for _, inner := range elif.Body {
			g.statement(b, depth+1, inner)
		}
	}
	if s.Else != nil {
		b.add(depth, "} else {")
		for _, inner := range s.Else {
			g.statement(b, depth+1, inner)
		}
	}
	for ; closes > 0; closes-- {
		b.add(depth, "}")
		depth--
	}
}

func (g *Generator) ifLetStatement(b *buf, depth int, s *ast.IfLet) {
	tmp := g.newTmp()
	value := g.expression(b, depth, s.Value)
	b.add(depth, "auto "+tmp+" = "+value+";")
	b.add(depth, "if ("+tmp+" != std::nullopt) {")
	b.add(depth+1, g.cppType(g.typeOf(s.Name))+" "+s.Name.Value+" = *"+tmp+";")
	for _, inner := range s.Body {
		g.statement(b, depth+1, inner)
	}
	if s.Else != nil {
		b.add(depth, "} else {")
		for _, inner := range s.Else {
			g.statement(b, depth+1, inner)
		}
	}
	b.add(depth, "}")
}

// whileLetStatement drains an optional source, re-evaluating it at the end
// of every iteration.
func (g *Generator) whileLetStatement(b *buf, depth int, s *ast.WhileLet) {
	tmp := g.newTmp()
	value := g.expression(b, depth, s.Value)
	b.add(depth, "auto "+tmp+" = "+value+";")
	b.add(depth, "while ("+tmp+" != std::nullopt) {")
	b.add(depth+1, g.cppType(g.typeOf(s.Name))+" "+s.Name.Value+" = *"+tmp+";")
	for _, inner := range s.Body {
		g.statement(b, depth+1, inner)
	}
	refreshed := g.expression(b, depth+1, s.Value)
	b.add(depth+1, tmp+" = "+refreshed+";")
	b.add(depth, "}")
}

// forStatement hoists the container into a temporary so it is evaluated
// exactly once, then iterates it by iterator.
func (g *Generator) forStatement(b *buf, depth int, s *ast.For) {
	containerType := g.typeOf(s.Container)
	containerCpp := g.cppType(containerType)
	container := g.newTmp()
	value := g.expression(b, depth, s.Container)
	b.add(depth, containerCpp+" "+container+" = "+value+";")
	iter := g.newTmp()
	b.add(depth, "for ("+containerCpp+"::iterator "+iter+" = "+container+".begin(); "+iter+" != "+container+".end(); ++"+iter+") {")
	b.add(depth+1, g.cppType(g.typeOf(s.Element))+" "+s.Element.Value+" = *"+iter+";")
	for _, inner := range s.Body {
		g.statement(b, depth+1, inner)
	}
	b.add(depth, "}")
}
