// Package parser builds an AST from the token stream. Statements are
// terminated by NEWLINE tokens and nested bodies are delimited by
// INDENT/DEDENT, so the grammar never needs braces.
package parser

import (
	"github.com/angel-lang/angel/internal/ast"
	"github.com/angel-lang/angel/internal/diagnostics"
	"github.com/angel-lang/angel/internal/lexer"
	"github.com/angel-lang/angel/internal/token"
)

const (
	LOWEST int = iota
	OR
	AND
	COMPARISON // == != < > <= >=
	SUM        // + -
	PRODUCT    // * /
	CAST       // as
	PREFIX     // -x, ref x
	CALL       // f(x), v[i], obj.field
)

var precedences = map[token.Type]int{
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       COMPARISON,
	token.NEQ:      COMPARISON,
	token.LT:       COMPARISON,
	token.GT:       COMPARISON,
	token.LE:       COMPARISON,
	token.GE:       COMPARISON,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.STAR:     PRODUCT,
	token.SLASH:    PRODUCT,
	token.AS:       CAST,
	token.LPAREN:   CALL,
	token.LBRACKET: CALL,
	token.DOT:      CALL,
}

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	err *diagnostics.Error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Prime the two-token window straight from the lexer: the zero
	// value of token.Type is ILLEGAL, so nextToken cannot be used here.
	p.curToken = p.l.NextToken()
	p.peekToken = p.l.NextToken()
	if p.curToken.Type == token.ILLEGAL {
		p.errorf(p.curToken, "unexpected input: %s", p.curToken.Lexeme)
	}
	return p
}

// Parse tokenizes and parses a whole source text.
func Parse(input string) (*ast.Program, *diagnostics.Error) {
	return New(lexer.New(input)).ParseProgram()
}

func (p *Parser) ParseProgram() (*ast.Program, *diagnostics.Error) {
	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) && p.err == nil {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			break
		}
		program.Statements = append(program.Statements, stmt)
		p.nextToken()
	}
	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if p.curToken.Type == token.ILLEGAL && p.err == nil {
		p.errorf(p.curToken, "unexpected input: %s", p.curToken.Lexeme)
	}
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected '%s', got '%s'", t, p.peekToken.Type)
	return false
}

// errorf records the first syntax error; everything after it is noise.
func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	if p.err == nil {
		p.err = diagnostics.NewError(diagnostics.SyntaxError, tok, format, args...)
	}
}

// parseStatement leaves curToken on the last token of the statement:
// for simple statements the final expression token, for block statements
// the DEDENT closing their last body.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET, token.VAR:
		return p.parseDecl()
	case token.FUN:
		return p.parseFunctionDeclaration()
	case token.STRUCT:
		if sd := p.parseStructDeclaration(); sd != nil {
			return sd
		}
		return nil
	case token.INTERFACE:
		return p.parseInterfaceDeclaration()
	case token.ALGEBRAIC:
		return p.parseAlgebraicDeclaration()
	case token.EXTENSION:
		return p.parseExtensionDeclaration()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return &ast.Break{Token: p.curToken}
	default:
		return p.parseExpressionOrAssignment()
	}
}

func (p *Parser) parseDecl() ast.Statement {
	decl := &ast.Decl{Token: p.curToken, IsConstant: p.curTokenIs(token.LET)}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		decl.Type = p.parseTypeExpression()
		if decl.Type == nil {
			return nil
		}
	}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		decl.Value = p.parseExpression(LOWEST)
		if decl.Value == nil {
			return nil
		}
	}
	if decl.Type == nil && decl.Value == nil {
		p.errorf(decl.Token, "declaration of '%s' needs a type or a value", decl.Name.Value)
		return nil
	}
	return decl
}

func (p *Parser) parseExpressionOrAssignment() ast.Statement {
	first := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if op, ok := assignmentOperator(p.peekToken.Type); ok {
		if !assignable(expr) {
			p.errorf(p.peekToken, "cannot assign to this expression")
			return nil
		}
		p.nextToken()
		assign := &ast.Assignment{Token: p.curToken, Target: expr, Operator: op}
		p.nextToken()
		assign.Value = p.parseExpression(LOWEST)
		if assign.Value == nil {
			return nil
		}
		return assign
	}
	return &ast.ExpressionStatement{Token: first, Expression: expr}
}

func assignmentOperator(t token.Type) (string, bool) {
	switch t {
	case token.ASSIGN:
		return "=", true
	case token.PLUS_ASSIGN:
		return "+=", true
	case token.MINUS_ASSIGN:
		return "-=", true
	case token.STAR_ASSIGN:
		return "*=", true
	case token.SLASH_ASSIGN:
		return "/=", true
	}
	return "", false
}

func assignable(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.FieldAccess, *ast.Subscript:
		return true
	}
	return false
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.Return{Token: p.curToken}
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.EOF) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	ifToken := p.curToken
	if p.peekTokenIs(token.LET) {
		return p.parseIfLetStatement(ifToken)
	}
	p.nextToken()
	stmt := &ast.If{Token: ifToken}
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	for p.peekTokenIs(token.ELIF) {
		p.nextToken()
		clause := &ast.ElifClause{Token: p.curToken}
		p.nextToken()
		clause.Condition = p.parseExpression(LOWEST)
		if clause.Condition == nil {
			return nil
		}
		clause.Body = p.parseBlock()
		if clause.Body == nil {
			return nil
		}
		stmt.Elifs = append(stmt.Elifs, clause)
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		stmt.Else = p.parseBlock()
		if stmt.Else == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseIfLetStatement(ifToken token.Token) ast.Statement {
	p.nextToken() // let
	stmt := &ast.IfLet{Token: ifToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		stmt.Else = p.parseBlock()
		if stmt.Else == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	whileToken := p.curToken
	if p.peekTokenIs(token.LET) {
		p.nextToken() // let
		stmt := &ast.WhileLet{Token: whileToken}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
		stmt.Body = p.parseBlock()
		if stmt.Body == nil {
			return nil
		}
		return stmt
	}
	p.nextToken()
	stmt := &ast.While{Token: whileToken}
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.For{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Element = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Container = p.parseExpression(LOWEST)
	if stmt.Container == nil {
		return nil
	}
	stmt.Body = p.parseBlock()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseBlock consumes ': NEWLINE INDENT statements DEDENT' and leaves
// curToken on the DEDENT.
func (p *Parser) parseBlock() []ast.Statement {
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
	var stmts []ast.Statement
	for !p.curTokenIs(token.DEDENT) && !p.curTokenIs(token.EOF) && p.err == nil {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
		p.nextToken()
	}
	if p.err != nil {
		return nil
	}
	if len(stmts) == 0 {
		p.errorf(p.curToken, "expected at least one statement in block")
		return nil
	}
	return stmts
}
