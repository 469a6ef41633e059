package parser

import (
	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
)

// ParseFile parses source and reports lexical and syntax errors as compiler
// errors attributed to file.
func ParseFile(file, source string) (*ast.Program, cerrors.ErrorList) {
	program, lexErrors, parseErrors := ParseSource(source)

	list := make(cerrors.ErrorList, 0, len(lexErrors)+len(parseErrors))
	for _, lexErr := range lexErrors {
		loc := ast.SourceLocation{Line: lexErr.Line, Column: lexErr.Column}
		list = append(list, cerrors.NewLexicalError(loc, lexErr.Message, lexErr.Lexeme))
	}
	for _, parseErr := range parseErrors {
		list = append(list, cerrors.NewSyntaxError(parseErr.Location, parseErr.Message, parseErr.Token.Lexeme))
	}

	return program, cerrors.AttachSource(list.WithFile(file), source)
}
