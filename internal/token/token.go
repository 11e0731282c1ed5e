// Package token defines the lexical tokens produced by the MyPL lexer.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	// Literals and identifiers
	ID Kind = iota
	INT_VAL
	DOUBLE_VAL
	STRING_VAL
	BOOL_VAL
	NULL_VAL

	// Keywords
	STRUCT
	VOID
	INT_TYPE
	DOUBLE_TYPE
	BOOL_TYPE
	STRING_TYPE
	DICT
	ARRAY
	NEW
	IF
	ELSEIF
	ELSE
	WHILE
	FOR
	RETURN
	AND
	OR
	NOT

	// Punctuators
	DOT
	COMMA
	SEMICOLON
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE

	// Operators
	PLUS
	MINUS
	TIMES
	DIVIDE
	ASSIGN
	EQUAL
	NOT_EQUAL
	LESS
	LESS_EQ
	GREATER
	GREATER_EQ

	// Misc
	COMMENT
	EOS
)

var names = map[Kind]string{
	ID:          "ID",
	INT_VAL:     "INT_VAL",
	DOUBLE_VAL:  "DOUBLE_VAL",
	STRING_VAL:  "STRING_VAL",
	BOOL_VAL:    "BOOL_VAL",
	NULL_VAL:    "NULL_VAL",
	STRUCT:      "struct",
	VOID:        "void",
	INT_TYPE:    "int",
	DOUBLE_TYPE: "double",
	BOOL_TYPE:   "bool",
	STRING_TYPE: "string",
	DICT:        "dict",
	ARRAY:       "array",
	NEW:         "new",
	IF:          "if",
	ELSEIF:      "elseif",
	ELSE:        "else",
	WHILE:       "while",
	FOR:         "for",
	RETURN:      "return",
	AND:         "and",
	OR:          "or",
	NOT:         "not",
	DOT:         ".",
	COMMA:       ",",
	SEMICOLON:   ";",
	LPAREN:      "(",
	RPAREN:      ")",
	LBRACKET:    "[",
	RBRACKET:    "]",
	LBRACE:      "{",
	RBRACE:      "}",
	PLUS:        "+",
	MINUS:       "-",
	TIMES:       "*",
	DIVIDE:      "/",
	ASSIGN:      "=",
	EQUAL:       "==",
	NOT_EQUAL:   "!=",
	LESS:        "<",
	LESS_EQ:     "<=",
	GREATER:     ">",
	GREATER_EQ:  ">=",
	COMMENT:     "COMMENT",
	EOS:         "EOS",
}

// Keywords maps a reserved identifier to its Kind. Identifiers not present
// here are lexed as ID.
var Keywords = map[string]Kind{
	"struct": STRUCT,
	"void":   VOID,
	"int":    INT_TYPE,
	"double": DOUBLE_TYPE,
	"bool":   BOOL_TYPE,
	"string": STRING_TYPE,
	"dict":   DICT,
	"array":  ARRAY,
	"new":    NEW,
	"if":     IF,
	"elseif": ELSEIF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"return": RETURN,
	"and":    AND,
	"or":     OR,
	"not":    NOT,
	"true":   BOOL_VAL,
	"false":  BOOL_VAL,
	"null":   NULL_VAL,
}

// BaseTypes names the built-in scalar type keywords plus void, used by the
// parser to recognize a data_type production.
var BaseTypes = map[Kind]bool{
	INT_TYPE:    true,
	DOUBLE_TYPE: true,
	BOOL_TYPE:   true,
	STRING_TYPE: true,
	VOID:        true,
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Token is an immutable lexical token with its source position.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

func New(kind Kind, lexeme string, line, column int) Token {
	return Token{Kind: kind, Lexeme: lexeme, Line: line, Column: column}
}

func (t Token) String() string {
	if t.Lexeme != "" && t.Lexeme != t.Kind.String() {
		return fmt.Sprintf("%s(%s)", t.Kind, t.Lexeme)
	}
	return t.Kind.String()
}
