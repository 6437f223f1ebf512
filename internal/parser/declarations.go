package parser

import (
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/token"
)

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	fd := &ast.FunctionDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fd.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args, ok := p.parseArguments()
	if !ok {
		return nil
	}
	fd.Args = args
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fd.ReturnType = p.parseTypeExpression()
		if fd.ReturnType == nil {
			return nil
		}
	}
	fd.Body = p.parseBlock()
	if fd.Body == nil {
		return nil
	}
	return fd
}

// parseArguments consumes a '(name: Type, ...)' list. curToken must be on
// the opening parenthesis; it ends on the closing one.
func (p *Parser) parseArguments() ([]*ast.Argument, bool) {
	args := []*ast.Argument{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args, true
	}
	p.nextToken()
	for {
		if !p.curTokenIs(token.IDENT) {
			p.errorf(p.curToken, "expected parameter name, got '%s'", p.curToken.Type)
			return nil, false
		}
		arg := &ast.Argument{Token: p.curToken, Name: p.curToken.Lexeme}
		if !p.expectPeek(token.COLON) {
			return nil, false
		}
		p.nextToken()
		arg.Type = p.parseTypeExpression()
		if arg.Type == nil {
			return nil, false
		}
		args = append(args, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return args, true
}

func (p *Parser) parseStructDeclaration() *ast.StructDeclaration {
	sd := &ast.StructDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	sd.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, ok := p.parseNameList()
		if !ok {
			return nil
		}
		sd.TypeParams = params
	}
	if p.peekTokenIs(token.IS) {
		p.nextToken()
		sd.Interfaces = p.parseInterfaceList()
		if sd.Interfaces == nil {
			return nil
		}
	}
	// A struct may have an empty body: 'struct Marker' on its own line.
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) {
		return sd
	}
	if !p.parseStructBody(sd) {
		return nil
	}
	return sd
}

// parseStructBody fills fields, inits and methods from an indented body.
// curToken ends on the closing DEDENT.
func (p *Parser) parseStructBody(sd *ast.StructDeclaration) bool {
	if !p.expectPeek(token.COLON) {
		return false
	}
	if !p.expectPeek(token.NEWLINE) {
		return false
	}
	if !p.expectPeek(token.INDENT) {
		return false
	}
	p.nextToken()
	for !p.curTokenIs(token.DEDENT) && !p.curTokenIs(token.EOF) && p.err == nil {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
			continue
		case token.INIT:
			init := p.parseInitDeclaration()
			if init == nil {
				return false
			}
			sd.Inits = append(sd.Inits, init)
		case token.FUN:
			method := p.parseMethodDeclaration(true)
			if method == nil {
				return false
			}
			sd.Methods = append(sd.Methods, method)
		case token.IDENT:
			field := p.parseFieldDeclaration()
			if field == nil {
				return false
			}
			sd.Fields = append(sd.Fields, field)
		default:
			p.errorf(p.curToken, "expected field, init or method declaration, got '%s'", p.curToken.Type)
			return false
		}
		p.nextToken()
	}
	return p.err == nil
}

func (p *Parser) parseFieldDeclaration() *ast.FieldDeclaration {
	field := &ast.FieldDeclaration{Token: p.curToken, Name: p.curToken.Lexeme}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	field.Type = p.parseTypeExpression()
	if field.Type == nil {
		return nil
	}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		field.Value = p.parseExpression(LOWEST)
		if field.Value == nil {
			return nil
		}
	}
	return field
}

func (p *Parser) parseInitDeclaration() *ast.InitDeclaration {
	init := &ast.InitDeclaration{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args, ok := p.parseArguments()
	if !ok {
		return nil
	}
	init.Args = args
	init.Body = p.parseBlock()
	if init.Body == nil {
		return nil
	}
	return init
}

// parseMethodDeclaration parses 'fun name(args) -> T' followed by an
// indented body, or by nothing when withBody is false (interface
// requirements are signatures only).
func (p *Parser) parseMethodDeclaration(withBody bool) *ast.MethodDeclaration {
	md := &ast.MethodDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	md.Name = p.curToken.Lexeme
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args, ok := p.parseArguments()
	if !ok {
		return nil
	}
	md.Args = args
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		md.ReturnType = p.parseTypeExpression()
		if md.ReturnType == nil {
			return nil
		}
	}
	if !withBody {
		return md
	}
	md.Body = p.parseBlock()
	if md.Body == nil {
		return nil
	}
	return md
}

func (p *Parser) parseInterfaceDeclaration() ast.Statement {
	id := &ast.InterfaceDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	id.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.IS) {
		p.nextToken()
		id.Extends = p.parseInterfaceList()
		if id.Extends == nil {
			return nil
		}
	}
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) {
		return id
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !p.expectPeek(token.NEWLINE) {
		return nil
	}
	if !p.expectPeek(token.INDENT) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(token.DEDENT) && !p.curTokenIs(token.EOF) && p.err == nil {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
			continue
		case token.FUN:
			method := p.parseMethodDeclaration(false)
			if method == nil {
				return nil
			}
			id.Methods = append(id.Methods, method)
		case token.IDENT:
			field := p.parseFieldDeclaration()
			if field == nil {
				return nil
			}
			id.Fields = append(id.Fields, field)
		default:
			p.errorf(p.curToken, "expected field or method signature, got '%s'", p.curToken.Type)
			return nil
		}
		p.nextToken()
	}
	if p.err != nil {
		return nil
	}
	return id
}

func (p *Parser) parseAlgebraicDeclaration() ast.Statement {
	ad := &ast.AlgebraicDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	ad.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !p.expectPeek(token.NEWLINE) {
		return nil
	}
	if !p.expectPeek(token.INDENT) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(token.DEDENT) && !p.curTokenIs(token.EOF) && p.err == nil {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
			continue
		case token.STRUCT:
			variant := p.parseStructDeclaration()
			if variant == nil {
				return nil
			}
			ad.Variants = append(ad.Variants, variant)
		case token.FUN:
			method := p.parseMethodDeclaration(true)
			if method == nil {
				return nil
			}
			ad.Methods = append(ad.Methods, method)
		default:
			p.errorf(p.curToken, "expected variant or method declaration, got '%s'", p.curToken.Type)
			return nil
		}
		p.nextToken()
	}
	if p.err != nil {
		return nil
	}
	if len(ad.Variants) == 0 {
		p.errorf(ad.Token, "algebraic type '%s' needs at least one variant", ad.Name.Value)
		return nil
	}
	return ad
}

func (p *Parser) parseExtensionDeclaration() ast.Statement {
	ed := &ast.ExtensionDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	ed.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, ok := p.parseNameList()
		if !ok {
			return nil
		}
		ed.TypeParams = params
	}
	if p.peekTokenIs(token.IS) {
		p.nextToken()
		ed.Interfaces = p.parseInterfaceList()
		if ed.Interfaces == nil {
			return nil
		}
	}
	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		ed.Where = p.parseWhereClause()
		if ed.Where == nil {
			return nil
		}
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !p.expectPeek(token.NEWLINE) {
		return nil
	}
	if !p.expectPeek(token.INDENT) {
		return nil
	}
	p.nextToken()
	for !p.curTokenIs(token.DEDENT) && !p.curTokenIs(token.EOF) && p.err == nil {
		switch p.curToken.Type {
		case token.NEWLINE:
			p.nextToken()
			continue
		case token.FUN:
			method := p.parseMethodDeclaration(true)
			if method == nil {
				return nil
			}
			ed.Methods = append(ed.Methods, method)
		default:
			p.errorf(p.curToken, "expected method declaration, got '%s'", p.curToken.Type)
			return nil
		}
		p.nextToken()
	}
	if p.err != nil {
		return nil
	}
	return ed
}

// parseNameList consumes '(A, B)'. curToken must be on the opening
// parenthesis; it ends on the closing one.
func (p *Parser) parseNameList() ([]string, bool) {
	var names []string
	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		names = append(names, p.curToken.Lexeme)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return names, true
}

// parseInterfaceList consumes the names after 'is': 'is Eq, Hash'.
// curToken must be on 'is'; it ends on the last name.
func (p *Parser) parseInterfaceList() []*ast.Identifier {
	var interfaces []*ast.Identifier
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		interfaces = append(interfaces, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return interfaces
}

// parseWhereClause consumes 'where A is Eq and B is Eq'. curToken must be
// on 'where'; it ends on the last interface name.
func (p *Parser) parseWhereClause() []*ast.WhereConstraint {
	var constraints []*ast.WhereConstraint
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		wc := &ast.WhereConstraint{Token: p.curToken, Param: p.curToken.Lexeme}
		if !p.expectPeek(token.IS) {
			return nil
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		wc.Interface = p.curToken.Lexeme
		constraints = append(constraints, wc)
		if !p.peekTokenIs(token.AND) {
			break
		}
		p.nextToken()
	}
	return constraints
}
