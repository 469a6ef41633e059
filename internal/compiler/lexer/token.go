package lexer

import "fmt"

// TokenType represents the type of a token in a declaration file
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_ERROR represents a lexical error encountered during scanning.
	TOKEN_ERROR

	// Keywords
	TOKEN_PACKAGE // package
	TOKEN_SCHEMA  // schema
	TOKEN_ENUM    // enum
	TOKEN_TYPE    // type
	TOKEN_DYN     // dyn
	TOKEN_ITER    // iter
	TOKEN_SELF    // Self

	// Literals
	TOKEN_IDENTIFIER
	TOKEN_INT_LITERAL
	TOKEN_FLOAT_LITERAL
	TOKEN_STRING_LITERAL
	TOKEN_TRUE
	TOKEN_FALSE

	// Punctuation
	TOKEN_AT           // @
	TOKEN_COLON        // :
	TOKEN_DOUBLE_COLON // ::
	TOKEN_COMMA        // ,
	TOKEN_LPAREN       // (
	TOKEN_RPAREN       // )
	TOKEN_LBRACE       // {
	TOKEN_RBRACE       // }
	TOKEN_MINUS        // -
	TOKEN_PLUS         // +
)

// TokenTypeNames maps token types to their display names
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:            "EOF",
	TOKEN_ERROR:          "ERROR",
	TOKEN_PACKAGE:        "PACKAGE",
	TOKEN_SCHEMA:         "SCHEMA",
	TOKEN_ENUM:           "ENUM",
	TOKEN_TYPE:           "TYPE",
	TOKEN_DYN:            "DYN",
	TOKEN_ITER:           "ITER",
	TOKEN_SELF:           "SELF",
	TOKEN_IDENTIFIER:     "IDENTIFIER",
	TOKEN_INT_LITERAL:    "INT_LITERAL",
	TOKEN_FLOAT_LITERAL:  "FLOAT_LITERAL",
	TOKEN_STRING_LITERAL: "STRING_LITERAL",
	TOKEN_TRUE:           "TRUE",
	TOKEN_FALSE:          "FALSE",
	TOKEN_AT:             "AT",
	TOKEN_COLON:          "COLON",
	TOKEN_DOUBLE_COLON:   "DOUBLE_COLON",
	TOKEN_COMMA:          "COMMA",
	TOKEN_LPAREN:         "LPAREN",
	TOKEN_RPAREN:         "RPAREN",
	TOKEN_LBRACE:         "LBRACE",
	TOKEN_RBRACE:         "RBRACE",
	TOKEN_MINUS:          "MINUS",
	TOKEN_PLUS:           "PLUS",
}

// String returns the string representation of a token type
func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token represents a single lexical token.
//
// Literal holds the unescaped text of string literals, the digits of numeric
// literals (underscores removed, width checks happen later) and the bool
// value of true/false.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s '%s' (%v) at %d:%d",
			t.Type.String(), t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s '%s' at %d:%d",
		t.Type.String(), t.Lexeme, t.Line, t.Column)
}

// Keywords maps reserved words to their token types
var Keywords = map[string]TokenType{
	"package": TOKEN_PACKAGE,
	"schema":  TOKEN_SCHEMA,
	"enum":    TOKEN_ENUM,
	"type":    TOKEN_TYPE,
	"dyn":     TOKEN_DYN,
	"iter":    TOKEN_ITER,
	"Self":    TOKEN_SELF,
	"true":    TOKEN_TRUE,
	"false":   TOKEN_FALSE,
}

// LexError represents an error encountered during lexical analysis
type LexError struct {
	Message string // Error message
	Line    int    // Line number where error occurred
	Column  int    // Column number where error occurred
	Lexeme  string // The problematic text
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("Lexical error at %d:%d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}
