// Package parser turns traitenum token streams into declaration trees.
// It uses recursive descent parsing with panic mode error recovery so that one
// malformed declaration does not hide errors in the ones that follow.
package parser

import (
	"fmt"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	"github.com/traitenum/traitenum/internal/compiler/lexer"
)

// ParseError represents an error encountered during parsing
type ParseError struct {
	Message  string
	Location ast.SourceLocation
	Token    lexer.Token
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %d:%d: %s (near '%s')",
		e.Location.Line, e.Location.Column, e.Message, e.Token.Lexeme)
}

// NewParseError creates a new parse error
func NewParseError(message string, token lexer.Token) ParseError {
	return ParseError{
		Message: message,
		Location: ast.SourceLocation{
			Line:   token.Line,
			Column: token.Column,
		},
		Token: token,
	}
}
