package parser

import (
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/token"
)

// parseTypeExpression parses a type: a name with optional arguments,
// '[T]', '[K: V]' or 'ref T', with any number of trailing '?' markers.
// curToken must be on the first token of the type; it ends on the last.
func (p *Parser) parseTypeExpression() ast.TypeExpression {
	var inner ast.TypeExpression
	switch p.curToken.Type {
	case token.IDENT:
		inner = p.parseNamedType()
	case token.LBRACKET:
		inner = p.parseVectorOrDictType()
	case token.REF:
		inner = p.parseRefType()
	default:
		p.errorf(p.curToken, "expected type, got '%s'", p.curToken.Type)
		return nil
	}
	if inner == nil {
		return nil
	}
	for p.peekTokenIs(token.QUESTION) {
		p.nextToken()
		inner = &ast.OptionalType{Token: p.curToken, Inner: inner}
	}
	return inner
}

func (p *Parser) parseNamedType() ast.TypeExpression {
	named := &ast.NamedType{Token: p.curToken, Name: p.curToken.Lexeme}
	if !p.peekTokenIs(token.LPAREN) {
		return named
	}
	p.nextToken()
	p.nextToken()
	for {
		arg := p.parseTypeExpression()
		if arg == nil {
			return nil
		}
		named.Args = append(named.Args, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return named
}

func (p *Parser) parseVectorOrDictType() ast.TypeExpression {
	bracket := p.curToken
	p.nextToken()
	first := p.parseTypeExpression()
	if first == nil {
		return nil
	}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		value := p.parseTypeExpression()
		if value == nil {
			return nil
		}
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		return &ast.DictType{Token: bracket, Key: first, Value: value}
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return &ast.VectorType{Token: bracket, Element: first}
}

func (p *Parser) parseRefType() ast.TypeExpression {
	refToken := p.curToken
	p.nextToken()
	inner := p.parseTypeExpression()
	if inner == nil {
		return nil
	}
	return &ast.RefType{Token: refToken, Inner: inner}
}
