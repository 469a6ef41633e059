package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	"github.com/traitenum/traitenum/internal/model"
)

func TestErrorCodeUniqueness(t *testing.T) {
	codes := make(map[ErrorCode]string)

	groups := map[string][]ErrorCode{
		"syntax": {
			ErrUnexpectedToken, ErrExpectedToken, ErrLexical, ErrMalformedAnnotation,
			ErrWrongNamespace, ErrUnknownNamespace, ErrMultipleDefinitions,
			ErrIdentifierMismatch, ErrDuplicateDeclaration, ErrUnsupportedBounds,
		},
		"resolution": {
			ErrUnknownField, ErrDuplicateOverride, ErrDuplicateRelationTarget,
			ErrMissingValue, ErrMissingRelationTarget, ErrUnmatchedRelation,
			ErrUnmatchedSlot, ErrSchemaMismatch, ErrPresetOverflow, ErrNotARelation,
			ErrRecordRelation, ErrDuplicateRecord, ErrMissingSchema, ErrEmptyInstance,
			ErrModelNotFound, ErrUnreadableModel,
		},
		"validation": {
			ErrDefaultAndPreset, ErrSerialSettings, ErrSettingsWithoutSerial,
			ErrRelationSettings, ErrStaticDispatch, ErrIncompatibleDefinition,
			ErrNatureMismatch, ErrInvalidLiteral, ErrInvalidSetting, ErrInvalidReturnType,
		},
		"codegen": {
			ErrCodeGenFailed, ErrInvalidGoIdentifier, ErrUnsupportedDispatch,
			ErrUnsupportedNature, ErrFormatFailed, ErrGoReservedWord,
		},
	}

	prefixes := map[string]string{
		"syntax":     "SYN",
		"resolution": "RES",
		"validation": "VAL",
		"codegen":    "GEN",
	}

	for group, list := range groups {
		for _, code := range list {
			if prev, exists := codes[code]; exists {
				t.Errorf("Duplicate error code %s (previously used for %s)", code, prev)
			}
			codes[code] = group

			if !strings.HasPrefix(string(code), prefixes[group]) {
				t.Errorf("Code %s in group %s should start with %s", code, group, prefixes[group])
			}
		}
	}
}

func TestErrorJSONSerialization(t *testing.T) {
	loc := ast.SourceLocation{Line: 10, Column: 5}
	err := NewSchemaMismatch(loc, "family::Other", "family::ParentTrait")

	jsonStr, jsonErr := err.ToJSON()
	if jsonErr != nil {
		t.Fatalf("Failed to serialize error to JSON: %v", jsonErr)
	}

	var parsed CompilerError
	if unmarshalErr := json.Unmarshal([]byte(jsonStr), &parsed); unmarshalErr != nil {
		t.Fatalf("Failed to parse error JSON: %v", unmarshalErr)
	}

	if parsed.Code != ErrSchemaMismatch {
		t.Errorf("Expected code %s, got %s", ErrSchemaMismatch, parsed.Code)
	}
	if parsed.Type != "schema_mismatch" {
		t.Errorf("Expected type 'schema_mismatch', got '%s'", parsed.Type)
	}
	if parsed.Category != CategoryResolution {
		t.Errorf("Expected category %s, got %s", CategoryResolution, parsed.Category)
	}
	if parsed.Severity != SeverityError {
		t.Errorf("Expected severity %s, got %s", SeverityError, parsed.Severity)
	}
	if parsed.Location.Line != 10 || parsed.Location.Column != 5 {
		t.Errorf("Expected location 10:5, got %d:%d", parsed.Location.Line, parsed.Location.Column)
	}
	if parsed.Expected != "family::ParentTrait" {
		t.Errorf("Expected 'family::ParentTrait', got '%s'", parsed.Expected)
	}
	if parsed.Actual != "family::Other" {
		t.Errorf("Expected 'family::Other', got '%s'", parsed.Actual)
	}
}

func TestErrorListJSONSerialization(t *testing.T) {
	errors := ErrorList{
		NewMissingValue(ast.SourceLocation{Line: 5, Column: 10}, "name", "One"),
		NewUnknownField(ast.SourceLocation{Line: 12, Column: 3}, "nmae", "family::ChildTrait"),
	}

	jsonStr, jsonErr := errors.ToJSON()
	if jsonErr != nil {
		t.Fatalf("Failed to serialize error list to JSON: %v", jsonErr)
	}

	var parsed ErrorList
	if unmarshalErr := json.Unmarshal([]byte(jsonStr), &parsed); unmarshalErr != nil {
		t.Fatalf("Failed to parse error list JSON: %v", unmarshalErr)
	}

	if len(parsed) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(parsed))
	}
}

func TestErrorFormatting(t *testing.T) {
	loc := ast.SourceLocation{Line: 10, Column: 5}
	err := NewIdentifierMismatch(loc, "family::Other", "ParentTrait").
		WithFile("family.traitenum").
		WithContext("@enumtrait(family::Other)", []string{
			"",
			"@enumtrait(family::Other)",
			"schema ParentTrait {",
		})

	formatted := err.Format()

	if !strings.Contains(formatted, "Syntax Error") {
		t.Error("Formatted error should contain 'Syntax Error'")
	}
	if !strings.Contains(formatted, "family.traitenum") {
		t.Error("Formatted error should contain filename")
	}
	if !strings.Contains(formatted, "Line 10") {
		t.Error("Formatted error should contain line number")
	}
	if !strings.Contains(formatted, "Actual:   family::Other") {
		t.Error("Formatted error should contain actual identifier")
	}
	if !strings.Contains(formatted, " 10 |  @enumtrait(family::Other) ← ") {
		t.Errorf("Formatted error should mark the error line, got:\n%s", formatted)
	}
	if !strings.Contains(formatted, "docs/errors.md#SYN008") {
		t.Error("Formatted error should contain documentation reference")
	}
}

func TestErrorListFormatting(t *testing.T) {
	errors := ErrorList{
		NewMissingValue(ast.SourceLocation{Line: 5, Column: 10}, "name", "One"),
		NewStaticDispatch(ast.SourceLocation{Line: 12, Column: 3}, "parent"),
	}

	formatted := errors.Error()

	if !strings.Contains(formatted, "2 error(s)") {
		t.Error("Formatted error list should contain error count")
	}
	if !strings.Contains(formatted, "Resolution Error") {
		t.Error("Formatted error list should contain first error")
	}
	if !strings.Contains(formatted, "Validation Error") {
		t.Error("Formatted error list should contain second error")
	}
}

func TestErrorListErrorCount(t *testing.T) {
	errors := ErrorList{
		NewMissingValue(ast.SourceLocation{Line: 1, Column: 1}, "name", "One"),
		NewEmptyInstance(ast.SourceLocation{Line: 2, Column: 1}, "Kids"),
	}

	errCount, warnCount, infoCount := errors.ErrorCount()

	if errCount != 1 {
		t.Errorf("Expected 1 error, got %d", errCount)
	}
	if warnCount != 1 {
		t.Errorf("Expected 1 warning, got %d", warnCount)
	}
	if infoCount != 0 {
		t.Errorf("Expected 0 info, got %d", infoCount)
	}
}

func TestErrorListHasErrors(t *testing.T) {
	errorsWithError := ErrorList{
		NewMissingValue(ast.SourceLocation{Line: 1, Column: 1}, "name", "One"),
	}

	warningsOnly := ErrorList{
		NewEmptyInstance(ast.SourceLocation{Line: 2, Column: 1}, "Kids"),
	}

	if !errorsWithError.HasErrors() || errorsWithError.Err() == nil {
		t.Error("Expected HasErrors() to return true when list contains errors")
	}

	if warningsOnly.HasErrors() || warningsOnly.Err() != nil {
		t.Error("Expected HasErrors() to return false when list contains only warnings")
	}

	if !warningsOnly.HasWarnings() {
		t.Error("Expected HasWarnings() to return true")
	}
}

func TestErrorCategories(t *testing.T) {
	loc := ast.SourceLocation{Line: 1, Column: 1}
	tests := []struct {
		name     string
		err      *CompilerError
		category ErrorCategory
	}{
		{"Syntax error", NewUnexpectedToken(loc, "}", ""), CategorySyntax},
		{"Resolution error", NewUnmatchedSlot(loc, "ChildType"), CategoryResolution},
		{"Validation error", NewDefaultAndPreset(loc, "name"), CategoryValidation},
		{"Codegen error", NewUnsupportedDispatch(loc, "parent", "Static"), CategoryCodeGen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Expected category %s, got %s", tt.category, tt.err.Category)
			}
		})
	}
}

func TestFromModelError(t *testing.T) {
	loc := ast.SourceLocation{Line: 3, Column: 5}
	tests := []struct {
		err  error
		code ErrorCode
	}{
		{model.ErrDefaultAndPreset, ErrDefaultAndPreset},
		{model.ErrSerialStart, ErrSerialSettings},
		{model.ErrSerialIncrement, ErrSerialSettings},
		{model.ErrStartWithoutSerial, ErrSettingsWithoutSerial},
		{model.ErrMissingNature, ErrRelationSettings},
		{model.ErrMissingDispatch, ErrRelationSettings},
		{model.ErrStaticDispatch, ErrStaticDispatch},
		{fmt.Errorf("%w: iter dyn requires OneToMany", model.ErrNatureMismatch), ErrNatureMismatch},
		{fmt.Errorf("%w: Str", model.ErrIncompatibleDefinition), ErrIncompatibleDefinition},
		{fmt.Errorf("%w: 300 does not fit u8", model.ErrOutOfRange), ErrInvalidLiteral},
		{fmt.Errorf("%w: Fancy", model.ErrUnknownPreset), ErrInvalidSetting},
	}

	for _, tt := range tests {
		compiled := FromModelError(loc, "field", tt.err)
		if compiled.Code != tt.code {
			t.Errorf("%v: expected code %s, got %s", tt.err, tt.code, compiled.Code)
		}
		if !stderrors.Is(compiled, tt.err) {
			t.Errorf("%v: expected the model error to stay reachable", tt.err)
		}
		if compiled.Location != loc {
			t.Errorf("%v: expected location %v, got %v", tt.err, loc, compiled.Location)
		}
	}
}

func TestAttachSource(t *testing.T) {
	source := "schema S {\n    a str\n}"
	errors := ErrorList{
		NewUnexpectedToken(ast.SourceLocation{Line: 1, Column: 1}, "schema", ""),
		NewUnexpectedToken(ast.SourceLocation{Line: 2, Column: 7}, "str", ""),
		NewUnexpectedToken(ast.SourceLocation{Line: 9, Column: 1}, "x", ""),
	}

	AttachSource(errors, source)

	if got := errors[0].Context.SourceLines; got[0] != "" || got[1] != "schema S {" {
		t.Errorf("Unexpected context for first line: %q", got)
	}
	if got := errors[1].Context.SourceLines; got[0] != "schema S {" || got[2] != "}" {
		t.Errorf("Unexpected context for second line: %q", got)
	}
	if errors[2].Context != nil {
		t.Error("Expected no context outside the source")
	}
}

func TestWithMethods(t *testing.T) {
	loc := ast.SourceLocation{Line: 5, Column: 10}
	err := NewMissingValue(loc, "name", "One").
		WithFile("kids.traitenum").
		WithContext("One", []string{"    One"}).
		WithSuggestion("Add a preset").
		WithExamples("@enumtrait::Str(preset(Variant))", "@traitenum(name(\"one\"))")

	if err.File != "kids.traitenum" {
		t.Errorf("Expected file 'kids.traitenum', got '%s'", err.File)
	}
	if err.Context == nil {
		t.Fatal("Expected context to be set")
	}
	if err.Context.Current != "One" {
		t.Errorf("Expected current context 'One', got '%s'", err.Context.Current)
	}
	if err.Suggestion != "Add a preset" {
		t.Errorf("Expected suggestion 'Add a preset', got '%s'", err.Suggestion)
	}
	if len(err.Examples) != 2 {
		t.Errorf("Expected 2 examples, got %d", len(err.Examples))
	}
	if FormatCompact(err) != "kids.traitenum:5:10: error: Record 'One' has no value for field 'name' [RES303]" {
		t.Errorf("Unexpected compact format: %s", FormatCompact(err))
	}
}
