package parser

import (
	"strings"
	"testing"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	"github.com/traitenum/traitenum/internal/compiler/lexer"
)

// Helper function to create a parser from source code
func parseSource(t *testing.T, source string) (*ast.Program, []ParseError) {
	t.Helper()

	lex := lexer.New(source)
	tokens, lexErrors := lex.ScanTokens()

	if len(lexErrors) > 0 {
		t.Fatalf("Lexer errors: %v", lexErrors)
	}

	parser := New(tokens)
	return parser.Parse()
}

// TestParseSchema tests parsing a schema with a slot and annotated fields
func TestParseSchema(t *testing.T) {
	source := `package family

@enumtrait(family::ParentTrait)
schema ParentTrait {
    type ChildType: family::ChildTrait

    @enumtrait::Str(preset(Variant))
    name: str

    @enumtrait::Rel(nature(OneToMany), dispatch(Dynamic))
    children: iter dyn ChildType
}`

	program, errors := parseSource(t, source)

	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	if program.Package != "family" {
		t.Errorf("Expected package 'family', got '%s'", program.Package)
	}

	if len(program.Schemas) != 1 {
		t.Fatalf("Expected 1 schema, got %d", len(program.Schemas))
	}

	schema := program.Schemas[0]
	if schema.Name != "ParentTrait" {
		t.Errorf("Expected schema name 'ParentTrait', got '%s'", schema.Name)
	}

	if len(schema.Annotations) != 1 || schema.Annotations[0].Namespace() != "enumtrait" {
		t.Fatalf("Expected one @enumtrait annotation, got %v", schema.Annotations)
	}

	id, ok := schema.Annotations[0].Args[0].(*ast.PathNode)
	if !ok || id.String() != "family::ParentTrait" {
		t.Errorf("Expected identifier argument family::ParentTrait, got %#v", schema.Annotations[0].Args[0])
	}

	if len(schema.Types) != 1 {
		t.Fatalf("Expected 1 type slot, got %d", len(schema.Types))
	}

	slot := schema.Types[0]
	if slot.Name != "ChildType" || len(slot.Bounds) != 1 || slot.Bounds[0].String() != "family::ChildTrait" {
		t.Errorf("Unexpected slot: %s %v", slot.Name, slot.Bounds)
	}

	if len(schema.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(schema.Fields))
	}

	name := schema.Fields[0]
	if name.Name != "name" || name.Return.Shape != ast.ShapeNamed || name.Return.Path.String() != "str" {
		t.Errorf("Unexpected field: %s %s", name.Name, name.Return)
	}

	if name.Annotations[0].Name() != "Str" {
		t.Errorf("Expected Str definition, got '%s'", name.Annotations[0].Name())
	}

	preset, ok := name.Annotations[0].Args[0].(*ast.CallNode)
	if !ok || preset.Name != "preset" || len(preset.Args) != 1 {
		t.Fatalf("Expected preset(Variant), got %#v", name.Annotations[0].Args[0])
	}

	children := schema.Fields[1]
	if children.Return.Shape != ast.ShapeDynIter || children.Return.Path.String() != "ChildType" {
		t.Errorf("Expected iter dyn ChildType, got %s", children.Return)
	}

	if len(children.Annotations[0].Args) != 2 {
		t.Errorf("Expected 2 settings on children, got %d", len(children.Annotations[0].Args))
	}
}

// TestParseReturnShapes tests every return type form
func TestParseReturnShapes(t *testing.T) {
	source := `schema S {
    a: u32
    b: RPS
    c: other::RPS
    d: dyn ParentType
    e: iter dyn ChildType
    f: Self::Kind
}`

	program, errors := parseSource(t, source)

	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	tests := []struct {
		shape ast.ReturnShape
		text  string
	}{
		{ast.ShapeNamed, "u32"},
		{ast.ShapeNamed, "RPS"},
		{ast.ShapeNamed, "other::RPS"},
		{ast.ShapeDyn, "dyn ParentType"},
		{ast.ShapeDynIter, "iter dyn ChildType"},
		{ast.ShapeAssoc, "Self::Kind"},
	}

	fields := program.Schemas[0].Fields
	if len(fields) != len(tests) {
		t.Fatalf("Expected %d fields, got %d", len(tests), len(fields))
	}

	for i, tt := range tests {
		if fields[i].Return.Shape != tt.shape {
			t.Errorf("Field %s: expected shape %s, got %s", fields[i].Name, tt.shape, fields[i].Return.Shape)
		}
		if fields[i].Return.String() != tt.text {
			t.Errorf("Field %s: expected %q, got %q", fields[i].Name, tt.text, fields[i].Return.String())
		}
	}
}

// TestParseAnnotationValues tests literal, path and call arguments
func TestParseAnnotationValues(t *testing.T) {
	source := `schema S {
    @enumtrait::Num(default(-12), start(1.5), increment(2))
    a: i32
    @enumtrait::Str(default("hi"), preset(Variant, snake),)
    b: str
    @enumtrait::Bool(default(true))
    c: bool
    @enumtrait::Enum(default(RPS::Paper))
    d: RPS
}`

	program, errors := parseSource(t, source)

	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	fields := program.Schemas[0].Fields

	def := fields[0].Annotations[0].Args[0].(*ast.CallNode)
	lit := def.Args[0].(*ast.LiteralNode)
	if lit.Kind != ast.LiteralInt || lit.Text != "-12" {
		t.Errorf("Expected int literal -12, got %v %q", lit.Kind, lit.Text)
	}

	start := fields[0].Annotations[0].Args[1].(*ast.CallNode).Args[0].(*ast.LiteralNode)
	if start.Kind != ast.LiteralFloat || start.Text != "1.5" {
		t.Errorf("Expected float literal 1.5, got %v %q", start.Kind, start.Text)
	}

	str := fields[1].Annotations[0].Args[0].(*ast.CallNode).Args[0].(*ast.LiteralNode)
	if str.Kind != ast.LiteralString || str.Text != "hi" {
		t.Errorf("Expected string literal hi, got %v %q", str.Kind, str.Text)
	}

	preset := fields[1].Annotations[0].Args[1].(*ast.CallNode)
	if len(preset.Args) != 2 {
		t.Errorf("Expected 2 preset arguments, got %d", len(preset.Args))
	}

	if len(fields[1].Annotations[0].Args) != 2 {
		t.Errorf("Expected trailing comma to be ignored, got %d args", len(fields[1].Annotations[0].Args))
	}

	b := fields[2].Annotations[0].Args[0].(*ast.CallNode).Args[0].(*ast.LiteralNode)
	if b.Kind != ast.LiteralBool || !b.Bool {
		t.Errorf("Expected bool literal true, got %v %v", b.Kind, b.Bool)
	}

	variant := fields[3].Annotations[0].Args[0].(*ast.CallNode).Args[0].(*ast.PathNode)
	if variant.String() != "RPS::Paper" {
		t.Errorf("Expected path RPS::Paper, got %s", variant)
	}
}

// TestParseEnum tests enum declarations with relation and record annotations
func TestParseEnum(t *testing.T) {
	source := `@traitenum(parent(Parents::Alpha))
enum Kids: family::ChildTrait {
    @traitenum(name("first"))
    One
    Two,
    Three
}`

	program, errors := parseSource(t, source)

	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	if len(program.Enums) != 1 {
		t.Fatalf("Expected 1 enum, got %d", len(program.Enums))
	}

	enum := program.Enums[0]
	if enum.Name != "Kids" || enum.Schema.String() != "family::ChildTrait" {
		t.Errorf("Unexpected enum header: %s: %s", enum.Name, enum.Schema)
	}

	if len(enum.Annotations) != 1 || enum.Annotations[0].Namespace() != "traitenum" {
		t.Errorf("Expected one @traitenum annotation, got %v", enum.Annotations)
	}

	names := make([]string, 0, len(enum.Variants))
	for _, v := range enum.Variants {
		names = append(names, v.Name)
	}
	if strings.Join(names, ",") != "One,Two,Three" {
		t.Errorf("Expected records One,Two,Three, got %v", names)
	}

	if len(enum.Variants[0].Annotations) != 1 || len(enum.Variants[1].Annotations) != 0 {
		t.Errorf("Expected only the first record to be annotated")
	}

	if enum.Variants[0].Loc.Line != 4 {
		t.Errorf("Expected record One on line 4, got %d", enum.Variants[0].Loc.Line)
	}
}

// TestParseEnumWithoutSchema tests that the implemented schema is optional syntax
func TestParseEnumWithoutSchema(t *testing.T) {
	program, errors := parseSource(t, `enum RPS { Rock, Paper, Scissors }`)

	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	enum := program.Enums[0]
	if enum.Schema != nil {
		t.Errorf("Expected no schema, got %s", enum.Schema)
	}
	if len(enum.Variants) != 3 {
		t.Errorf("Expected 3 records, got %d", len(enum.Variants))
	}
}

// TestParseMultipleDeclarations tests a file holding schemas and enums
func TestParseMultipleDeclarations(t *testing.T) {
	source := `package family

schema ChildTrait {
    parent: dyn ParentType
    type ParentType: family::ParentTrait
}

enum Kids: family::ChildTrait { One }

@traitenum(children(Kids))
enum Parents: family::ParentTrait { Alpha }
`

	program, errors := parseSource(t, source)

	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	if len(program.Schemas) != 1 || len(program.Enums) != 2 {
		t.Fatalf("Expected 1 schema and 2 enums, got %d and %d", len(program.Schemas), len(program.Enums))
	}

	if len(program.Enums[1].Annotations) != 1 {
		t.Errorf("Expected annotation attached to Parents")
	}
}

// TestParseSlotBounds tests that several bounds are kept for the compiler to reject
func TestParseSlotBounds(t *testing.T) {
	program, errors := parseSource(t, `schema S {
    type A: x::One + x::Two
    type B
}`)

	if len(errors) > 0 {
		t.Fatalf("Parse errors: %v", errors)
	}

	types := program.Schemas[0].Types
	if len(types[0].Bounds) != 2 {
		t.Errorf("Expected 2 bounds, got %d", len(types[0].Bounds))
	}
	if len(types[1].Bounds) != 0 {
		t.Errorf("Expected no bounds, got %d", len(types[1].Bounds))
	}
}

// TestParseErrors tests error reporting
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{"missing name", "schema { }", "Expected schema name"},
		{"missing brace", "schema S name: str }", "Expected '{' after schema name"},
		{"missing colon", "schema S { name str }", "Expected ':' after field name"},
		{"iter without dyn", "schema S { a: iter X }", "Expected 'dyn' after 'iter'"},
		{"bad annotation", "schema S { @ 1 a: str }", "Expected annotation name"},
		{"unclosed annotation", "schema S { @enumtrait::Str(preset(Variant) a: str }", "Expected ')'"},
		{"bad value", "schema S { @enumtrait::Num(default(:)) a: u8 }", "Expected a value"},
		{"dangling annotation", "schema S { a: str @enumtrait::Str }", "Expected a field after annotations"},
		{"stray token", "field: str", "Expected 'schema' or 'enum'"},
		{"late package", "schema S { }\npackage p", "package clause"},
		{"annotated slot", "schema S { @enumtrait::Rel type A: x::B }", "not allowed on associated types"},
		{"unclosed enum", "enum E { A", "Expected '}' after enum body"},
		{"minus without number", "enum E { @traitenum(a(-x)) A }", "Expected a number after '-'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errors := parseSource(t, tt.source)

			if len(errors) == 0 {
				t.Fatalf("Expected errors for %q", tt.source)
			}

			found := false
			for _, err := range errors {
				if strings.Contains(err.Message, tt.message) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Expected error containing %q, got %v", tt.message, errors)
			}
		})
	}
}

// TestParseErrorRecovery tests that parsing continues after a broken declaration
func TestParseErrorRecovery(t *testing.T) {
	source := `schema Broken {
    name str
    ok: bool
}

schema Fine {
    value: u8
}`

	program, errors := parseSource(t, source)

	if len(errors) != 1 {
		t.Errorf("Expected exactly 1 error, got %d: %v", len(errors), errors)
	}

	if len(program.Schemas) != 2 {
		t.Fatalf("Expected 2 schemas, got %d", len(program.Schemas))
	}

	if len(program.Schemas[0].Fields) != 1 || program.Schemas[0].Fields[0].Name != "ok" {
		t.Errorf("Expected field 'ok' to survive recovery, got %v", program.Schemas[0].Fields)
	}
}

func TestParseSource(t *testing.T) {
	program, lexErrors, parseErrors := ParseSource("schema S { a: str $ }")

	if len(lexErrors) != 1 {
		t.Errorf("Expected 1 lexical error, got %d", len(lexErrors))
	}
	if len(parseErrors) != 0 {
		t.Errorf("Expected no parse errors, got %v", parseErrors)
	}
	if len(program.Schemas) != 1 {
		t.Errorf("Expected the schema to be parsed")
	}
}

func TestParseErrorString(t *testing.T) {
	err := NewParseError("boom", lexer.Token{Lexeme: "x", Line: 2, Column: 3})
	if err.Error() != "Parse error at 2:3: boom (near 'x')" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}
}

func TestParseFile(t *testing.T) {
	source := "schema S {\n    a str\n}"
	program, errs := ParseFile("s.traitenum", source)

	if program == nil {
		t.Fatal("Expected a program even with errors")
	}
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(errs))
	}
	if errs[0].File != "s.traitenum" || errs[0].Location.Line != 2 {
		t.Errorf("Unexpected error position %s:%d", errs[0].File, errs[0].Location.Line)
	}
	if errs[0].Context == nil || errs[0].Context.Current != "    a str" {
		t.Errorf("Expected source context to be attached, got %#v", errs[0].Context)
	}
	if !errs.HasErrors() || errs.Err() == nil {
		t.Error("Expected the list to report errors")
	}
}
