package token

// Type identifies the lexical class of a token.
type Type int

const (
	ILLEGAL Type = iota
	EOF

	// Layout tokens produced by the indentation-sensitive lexer.
	NEWLINE
	INDENT
	DEDENT

	IDENT
	INT
	FLOAT
	STRING
	CHAR

	ASSIGN // =
	PLUS
	MINUS
	STAR
	SLASH
	EQ  // ==
	NEQ // !=
	LT
	GT
	LE
	GE
	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	ARROW // ->
	COLON
	COMMA
	DOT
	QUESTION // ? (optional type trailer)
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET

	LET
	VAR
	FUN
	INIT
	STRUCT
	INTERFACE
	ALGEBRAIC
	EXTENSION
	IF
	ELIF
	ELSE
	WHILE
	FOR
	IN
	RETURN
	BREAK
	IS
	WHERE
	AND
	OR
	AS
	REF
	SELF
	TRUE
	FALSE
)

var typeNames = map[Type]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	INDENT:  "INDENT",
	DEDENT:  "DEDENT",
	IDENT:   "IDENT",
	INT:     "INT",
	FLOAT:   "FLOAT",
	STRING:  "STRING",
	CHAR:    "CHAR",

	ASSIGN:       "=",
	PLUS:         "+",
	MINUS:        "-",
	STAR:         "*",
	SLASH:        "/",
	EQ:           "==",
	NEQ:          "!=",
	LT:           "<",
	GT:           ">",
	LE:           "<=",
	GE:           ">=",
	PLUS_ASSIGN:  "+=",
	MINUS_ASSIGN: "-=",
	STAR_ASSIGN:  "*=",
	SLASH_ASSIGN: "/=",
	ARROW:        "->",
	COLON:        ":",
	COMMA:        ",",
	DOT:          ".",
	QUESTION:     "?",
	LPAREN:       "(",
	RPAREN:       ")",
	LBRACKET:     "[",
	RBRACKET:     "]",

	LET:       "let",
	VAR:       "var",
	FUN:       "fun",
	INIT:      "init",
	STRUCT:    "struct",
	INTERFACE: "interface",
	ALGEBRAIC: "algebraic",
	EXTENSION: "extension",
	IF:        "if",
	ELIF:      "elif",
	ELSE:      "else",
	WHILE:     "while",
	FOR:       "for",
	IN:        "in",
	RETURN:    "return",
	BREAK:     "break",
	IS:        "is",
	WHERE:     "where",
	AND:       "and",
	OR:        "or",
	AS:        "as",
	REF:       "ref",
	SELF:      "self",
	TRUE:      "True",
	FALSE:     "False",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Token is a single lexeme with its source position.
type Token struct {
	Type   Type
	Lexeme string
	Line   int
	Column int
}

var keywords = map[string]Type{
	"let":       LET,
	"var":       VAR,
	"fun":       FUN,
	"init":      INIT,
	"struct":    STRUCT,
	"interface": INTERFACE,
	"algebraic": ALGEBRAIC,
	"extension": EXTENSION,
	"if":        IF,
	"elif":      ELIF,
	"else":      ELSE,
	"while":     WHILE,
	"for":       FOR,
	"in":        IN,
	"return":    RETURN,
	"break":     BREAK,
	"is":        IS,
	"where":     WHERE,
	"and":       AND,
	"or":        OR,
	"as":        AS,
	"ref":       REF,
	"self":      SELF,
	"True":      TRUE,
	"False":     FALSE,
}

// LookupIdent maps an identifier lexeme to its keyword type, or IDENT.
func LookupIdent(ident string) Type {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return IDENT
}
