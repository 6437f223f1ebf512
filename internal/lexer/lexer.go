// Package lexer tokenizes Angel source. The language is
// indentation-sensitive: line structure is reported through NEWLINE,
// INDENT and DEDENT tokens, with one indentation level being four spaces.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/angel-lang/angel/internal/token"
)

// IndentWidth is the number of spaces forming one indentation level.
const IndentWidth = 4

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int
	column       int

	indents     []int
	pending     []token.Token
	atLineStart bool
	brackets    int
	emittedEOF  bool
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0, indents: []int{0}, atLineStart: true}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) NextToken() token.Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}
	if l.atLineStart && l.brackets == 0 {
		if tok, ok := l.lineStart(); ok {
			return tok
		}
	}
	l.skipSpaces()

	switch l.ch {
	case 0:
		return l.endOfFile()
	case '\n':
		if l.brackets > 0 {
			l.readChar()
			return l.NextToken()
		}
		tok := l.simpleToken(token.NEWLINE, "\\n")
		l.readChar()
		l.atLineStart = true
		return tok
	case '=':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.EQ, "==")
		}
		return l.advanceToken(token.ASSIGN, "=")
	case '!':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.NEQ, "!=")
		}
		return l.advanceToken(token.ILLEGAL, "!")
	case '+':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.PLUS_ASSIGN, "+=")
		}
		return l.advanceToken(token.PLUS, "+")
	case '-':
		if l.peekChar() == '>' {
			return l.twoCharToken(token.ARROW, "->")
		}
		if l.peekChar() == '=' {
			return l.twoCharToken(token.MINUS_ASSIGN, "-=")
		}
		return l.advanceToken(token.MINUS, "-")
	case '*':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.STAR_ASSIGN, "*=")
		}
		return l.advanceToken(token.STAR, "*")
	case '/':
		if l.peekChar() == '/' {
			l.skipComment()
			return l.NextToken()
		}
		if l.peekChar() == '=' {
			return l.twoCharToken(token.SLASH_ASSIGN, "/=")
		}
		return l.advanceToken(token.SLASH, "/")
	case '<':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.LE, "<=")
		}
		return l.advanceToken(token.LT, "<")
	case '>':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.GE, ">=")
		}
		return l.advanceToken(token.GT, ">")
	case ':':
		return l.advanceToken(token.COLON, ":")
	case ',':
		return l.advanceToken(token.COMMA, ",")
	case '.':
		return l.advanceToken(token.DOT, ".")
	case '?':
		return l.advanceToken(token.QUESTION, "?")
	case '(':
		l.brackets++
		return l.advanceToken(token.LPAREN, "(")
	case ')':
		if l.brackets > 0 {
			l.brackets--
		}
		return l.advanceToken(token.RPAREN, ")")
	case '[':
		l.brackets++
		return l.advanceToken(token.LBRACKET, "[")
	case ']':
		if l.brackets > 0 {
			l.brackets--
		}
		return l.advanceToken(token.RBRACKET, "]")
	case '"':
		return l.readString()
	case '\'':
		return l.readCharLiteral()
	}

	if unicode.IsDigit(l.ch) {
		return l.readNumber()
	}
	if isIdentStart(l.ch) {
		return l.readIdentifier()
	}
	tok := l.simpleToken(token.ILLEGAL, string(l.ch))
	l.readChar()
	return tok
}

// lineStart measures indentation and queues INDENT/DEDENT tokens. Blank
// and comment-only lines produce nothing.
func (l *Lexer) lineStart() (token.Token, bool) {
	for {
		spaces := 0
		for l.ch == ' ' {
			spaces++
			l.readChar()
		}
		if l.ch == '\n' {
			l.readChar()
			continue
		}
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipComment()
			if l.ch == '\n' {
				l.readChar()
			}
			continue
		}
		if l.ch == 0 {
			return token.Token{}, false
		}
		l.atLineStart = false
		if spaces%IndentWidth != 0 {
			return l.simpleToken(token.ILLEGAL, "indentation is not a multiple of 4 spaces"), true
		}
		level := spaces / IndentWidth
		current := l.indents[len(l.indents)-1]
		if level > current {
			if level != current+1 {
				return l.simpleToken(token.ILLEGAL, "indentation jumps more than one level"), true
			}
			l.indents = append(l.indents, level)
			return l.simpleToken(token.INDENT, ""), true
		}
		for level < l.indents[len(l.indents)-1] {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, l.simpleToken(token.DEDENT, ""))
		}
		if level != l.indents[len(l.indents)-1] {
			return l.simpleToken(token.ILLEGAL, "inconsistent indentation"), true
		}
		if len(l.pending) > 0 {
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok, true
		}
		return token.Token{}, false
	}
}

func (l *Lexer) endOfFile() token.Token {
	if !l.emittedEOF {
		l.emittedEOF = true
		if !l.atLineStart {
			l.pending = append(l.pending, l.simpleToken(token.NEWLINE, "\\n"))
		}
		for len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, l.simpleToken(token.DEDENT, ""))
		}
		l.pending = append(l.pending, l.simpleToken(token.EOF, ""))
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}
	return l.simpleToken(token.EOF, "")
}

func (l *Lexer) skipSpaces() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) simpleToken(t token.Type, lexeme string) token.Token {
	return token.Token{Type: t, Lexeme: lexeme, Line: l.line, Column: l.column}
}

func (l *Lexer) advanceToken(t token.Type, lexeme string) token.Token {
	tok := l.simpleToken(t, lexeme)
	l.readChar()
	return tok
}

func (l *Lexer) twoCharToken(t token.Type, lexeme string) token.Token {
	tok := l.simpleToken(t, lexeme)
	l.readChar()
	l.readChar()
	return tok
}

func (l *Lexer) readString() token.Token {
	line, column := l.line, l.column
	l.readChar()
	var out []rune
	for l.ch != '"' && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
			out = append(out, unescape(l.ch))
		} else {
			out = append(out, l.ch)
		}
		l.readChar()
	}
	if l.ch != '"' {
		return token.Token{Type: token.ILLEGAL, Lexeme: "unterminated string", Line: line, Column: column}
	}
	l.readChar()
	return token.Token{Type: token.STRING, Lexeme: string(out), Line: line, Column: column}
}

func (l *Lexer) readCharLiteral() token.Token {
	line, column := l.line, l.column
	l.readChar()
	var value rune
	if l.ch == '\\' {
		l.readChar()
		value = unescape(l.ch)
	} else {
		value = l.ch
	}
	l.readChar()
	if l.ch != '\'' {
		return token.Token{Type: token.ILLEGAL, Lexeme: "unterminated character literal", Line: line, Column: column}
	}
	l.readChar()
	return token.Token{Type: token.CHAR, Lexeme: string(value), Line: line, Column: column}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return r
}

func (l *Lexer) readNumber() token.Token {
	line, column := l.line, l.column
	start := l.position
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	t := token.INT
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		t = token.FLOAT
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	return token.Token{Type: t, Lexeme: l.input[start:l.position], Line: line, Column: column}
}

func (l *Lexer) readIdentifier() token.Token {
	line, column := l.line, l.column
	start := l.position
	for isIdentStart(l.ch) || unicode.IsDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.LookupIdent(lexeme), Lexeme: lexeme, Line: line, Column: column}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
