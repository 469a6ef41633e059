package errors

import (
	"fmt"
	"strings"

	"github.com/traitenum/traitenum/internal/compiler/ast"
)

// Syntax error codes (SYN001-099)
const (
	// ErrUnexpectedToken indicates an unexpected token was encountered
	ErrUnexpectedToken ErrorCode = "SYN001"
	// ErrExpectedToken indicates a specific token was expected but not found
	ErrExpectedToken ErrorCode = "SYN002"
	// ErrLexical indicates a character sequence that is not a token
	ErrLexical ErrorCode = "SYN003"
	// ErrMalformedAnnotation indicates an annotation whose arguments do not fit its grammar
	ErrMalformedAnnotation ErrorCode = "SYN004"
	// ErrWrongNamespace indicates a record annotation on a schema or vice versa
	ErrWrongNamespace ErrorCode = "SYN005"
	// ErrUnknownNamespace indicates an annotation outside the enumtrait and traitenum namespaces
	ErrUnknownNamespace ErrorCode = "SYN006"
	// ErrMultipleDefinitions indicates more than one definition annotation on a field
	ErrMultipleDefinitions ErrorCode = "SYN007"
	// ErrIdentifierMismatch indicates a schema identifier that does not name the schema
	ErrIdentifierMismatch ErrorCode = "SYN008"
	// ErrDuplicateDeclaration indicates a name declared twice in the same scope
	ErrDuplicateDeclaration ErrorCode = "SYN009"
	// ErrUnsupportedBounds indicates an associated type without exactly one bound
	ErrUnsupportedBounds ErrorCode = "SYN010"
)

// NewUnexpectedToken creates a SYN001 error
func NewUnexpectedToken(loc ast.SourceLocation, found, context string) *CompilerError {
	message := fmt.Sprintf("Unexpected token '%s'", found)
	if context != "" {
		message = fmt.Sprintf("Unexpected token '%s' in %s", found, context)
	}

	return newError(
		ErrUnexpectedToken,
		"unexpected_token",
		CategorySyntax,
		SeverityError,
		message,
		loc,
	)
}

// NewExpectedToken creates a SYN002 error
func NewExpectedToken(loc ast.SourceLocation, expected, found string) *CompilerError {
	return newError(
		ErrExpectedToken,
		"expected_token",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Expected '%s' but found '%s'", expected, found),
		loc,
	).WithExpected(expected).WithActual(found)
}

// NewSyntaxError wraps a parser message as a SYN002 error
func NewSyntaxError(loc ast.SourceLocation, message, near string) *CompilerError {
	err := newError(
		ErrExpectedToken,
		"syntax_error",
		CategorySyntax,
		SeverityError,
		message,
		loc,
	)
	if near != "" {
		err.WithActual(near)
	}
	return err
}

// NewLexicalError creates a SYN003 error
func NewLexicalError(loc ast.SourceLocation, message, near string) *CompilerError {
	err := newError(
		ErrLexical,
		"lexical_error",
		CategorySyntax,
		SeverityError,
		message,
		loc,
	)
	if near != "" {
		err.WithActual(near)
	}
	return err
}

// NewMalformedAnnotation creates a SYN004 error
func NewMalformedAnnotation(loc ast.SourceLocation, annotation, reason string) *CompilerError {
	return newError(
		ErrMalformedAnnotation,
		"malformed_annotation",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Malformed annotation %s: %s", annotation, reason),
		loc,
	).WithSuggestion("Settings are written as name(value), separated by commas").
		WithExamples(
			"@enumtrait::Num(preset(Serial), start(1), increment(1))",
			"@traitenum(name(\"first\"), parent(Parents::Alpha))",
		)
}

// NewWrongNamespace creates a SYN005 error
func NewWrongNamespace(loc ast.SourceLocation, annotation, expected string) *CompilerError {
	return newError(
		ErrWrongNamespace,
		"wrong_namespace",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Annotation %s cannot be used here", annotation),
		loc,
	).WithExpected("@" + expected).
		WithActual(annotation).
		WithSuggestion("Schemas and their fields use @enumtrait, enums and their records use @traitenum")
}

// NewUnknownNamespace creates a SYN006 error
func NewUnknownNamespace(loc ast.SourceLocation, annotation string) *CompilerError {
	return newError(
		ErrUnknownNamespace,
		"unknown_namespace",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Unknown annotation %s", annotation),
		loc,
	).WithSuggestion("Only @enumtrait and @traitenum annotations are recognized")
}

// NewMultipleDefinitions creates a SYN007 error
func NewMultipleDefinitions(loc ast.SourceLocation, field string, definitions []string) *CompilerError {
	return newError(
		ErrMultipleDefinitions,
		"multiple_definitions",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Field '%s' has more than one definition annotation: %s", field, strings.Join(definitions, ", ")),
		loc,
	).WithSuggestion("Merge the settings into a single definition annotation")
}

// NewIdentifierMismatch creates a SYN008 error
func NewIdentifierMismatch(loc ast.SourceLocation, identifier, name string) *CompilerError {
	return newError(
		ErrIdentifierMismatch,
		"identifier_mismatch",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Identifier %s does not name schema '%s'", identifier, name),
		loc,
	).WithExpected(fmt.Sprintf("an identifier ending in %s", name)).
		WithActual(identifier)
}

// NewDuplicateDeclaration creates a SYN009 error
func NewDuplicateDeclaration(loc ast.SourceLocation, kind, name string) *CompilerError {
	return newError(
		ErrDuplicateDeclaration,
		"duplicate_declaration",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Duplicate %s '%s'", kind, name),
		loc,
	).WithSuggestion(fmt.Sprintf("Rename or remove one of the %ss", kind))
}

// NewUnsupportedBounds creates a SYN010 error
func NewUnsupportedBounds(loc ast.SourceLocation, slot string, count int) *CompilerError {
	return newError(
		ErrUnsupportedBounds,
		"unsupported_bounds",
		CategorySyntax,
		SeverityError,
		fmt.Sprintf("Associated type '%s' must have exactly one schema bound, found %d", slot, count),
		loc,
	).WithExamples("type ChildType: family::ChildTrait")
}
