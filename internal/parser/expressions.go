package parser

import (
	"unicode/utf8"

	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/token"
)

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// parseExpression implements operator-precedence parsing. curToken must
// be on the first token of the expression; it ends on the last one.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for precedence < p.peekPrecedence() {
		p.nextToken()
		left = p.parseInfix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.curToken.Type {
	case token.IDENT:
		return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	case token.SELF:
		return &ast.SelfExpression{Token: p.curToken}
	case token.INT:
		return &ast.IntegerLiteral{Token: p.curToken, Value: p.curToken.Lexeme}
	case token.FLOAT:
		return &ast.FloatLiteral{Token: p.curToken, Value: p.curToken.Lexeme}
	case token.STRING:
		return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Lexeme}
	case token.CHAR:
		return p.parseCharLiteral()
	case token.TRUE:
		return &ast.BoolLiteral{Token: p.curToken, Value: true}
	case token.FALSE:
		return &ast.BoolLiteral{Token: p.curToken, Value: false}
	case token.MINUS:
		return p.parseNegativeLiteral()
	case token.REF:
		return p.parseRefExpression()
	case token.LPAREN:
		return p.parseGroupedExpression()
	case token.LBRACKET:
		return p.parseVectorOrDictLiteral()
	default:
		p.errorf(p.curToken, "expected expression, got '%s'", p.curToken.Type)
		return nil
	}
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	switch p.curToken.Type {
	case token.LPAREN:
		return p.parseCallExpression(left)
	case token.LBRACKET:
		return p.parseSubscript(left)
	case token.DOT:
		return p.parseFieldAccess(left)
	case token.AS:
		return p.parseCast(left)
	default:
		return p.parseBinaryExpression(left)
	}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	expr := &ast.BinaryExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Type.String(),
	}
	precedence := precedences[p.curToken.Type]
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseCharLiteral() ast.Expression {
	value, _ := utf8.DecodeRuneInString(p.curToken.Lexeme)
	return &ast.CharLiteral{Token: p.curToken, Value: value}
}

// parseNegativeLiteral folds a leading minus into the literal digits, so
// the checker sees '-128' as one candidate for range checking.
func (p *Parser) parseNegativeLiteral() ast.Expression {
	minus := p.curToken
	switch p.peekToken.Type {
	case token.INT:
		p.nextToken()
		return &ast.IntegerLiteral{Token: minus, Value: "-" + p.curToken.Lexeme}
	case token.FLOAT:
		p.nextToken()
		return &ast.FloatLiteral{Token: minus, Value: "-" + p.curToken.Lexeme}
	}
	p.errorf(minus, "'-' must be followed by a number literal")
	return nil
}

func (p *Parser) parseRefExpression() ast.Expression {
	expr := &ast.RefExpression{Token: p.curToken}
	p.nextToken()
	expr.Value = p.parseExpression(PREFIX)
	if expr.Value == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

// parseVectorOrDictLiteral handles '[1, 2]', '["a": 1]' and the empty
// forms '[]' and '[:]'.
func (p *Parser) parseVectorOrDictLiteral() ast.Expression {
	bracket := p.curToken
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		return &ast.DictLiteral{Token: bracket}
	}
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return &ast.VectorLiteral{Token: bracket}
	}
	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	if p.peekTokenIs(token.COLON) {
		return p.parseDictLiteral(bracket, first)
	}
	vector := &ast.VectorLiteral{Token: bracket, Elements: []ast.Expression{first}}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		element := p.parseExpression(LOWEST)
		if element == nil {
			return nil
		}
		vector.Elements = append(vector.Elements, element)
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return vector
}

func (p *Parser) parseDictLiteral(bracket token.Token, firstKey ast.Expression) ast.Expression {
	dict := &ast.DictLiteral{Token: bracket}
	p.nextToken() // colon
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	dict.Keys = append(dict.Keys, firstKey)
	dict.Values = append(dict.Values, value)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value = p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		dict.Keys = append(dict.Keys, key)
		dict.Values = append(dict.Values, value)
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return dict
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Function: fn}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		p.nextToken()
		for {
			arg := p.parseExpression(LOWEST)
			if arg == nil {
				return nil
			}
			call.Args = append(call.Args, arg)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
			p.nextToken()
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}
	if some, ok := optionalSome(call); ok {
		return some
	}
	return call
}

// optionalSome rewrites 'Optional.Some(v)' into its dedicated node.
func optionalSome(call *ast.CallExpression) (ast.Expression, bool) {
	fa, ok := call.Function.(*ast.FieldAccess)
	if !ok || fa.Field.Value != "Some" {
		return nil, false
	}
	obj, ok := fa.Object.(*ast.Identifier)
	if !ok || obj.Value != "Optional" || len(call.Args) != 1 {
		return nil, false
	}
	return &ast.OptionalSome{Token: obj.Token, Value: call.Args[0]}, true
}

func (p *Parser) parseSubscript(left ast.Expression) ast.Expression {
	sub := &ast.Subscript{Token: p.curToken, Left: left}
	p.nextToken()
	sub.Index = p.parseExpression(LOWEST)
	if sub.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return sub
}

func (p *Parser) parseFieldAccess(object ast.Expression) ast.Expression {
	dot := p.curToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	if obj, ok := object.(*ast.Identifier); ok && obj.Value == "Optional" && p.curToken.Lexeme == "None" {
		return &ast.OptionalNone{Token: obj.Token}
	}
	return &ast.FieldAccess{
		Token:  dot,
		Object: object,
		Field:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
	}
}

func (p *Parser) parseCast(value ast.Expression) ast.Expression {
	cast := &ast.Cast{Token: p.curToken, Value: value}
	p.nextToken()
	cast.Target = p.parseTypeExpression()
	if cast.Target == nil {
		return nil
	}
	return cast
}
