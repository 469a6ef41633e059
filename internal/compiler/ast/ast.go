// Package ast defines the declaration tree of traitenum source files.
// It provides structures for schemas, their fields and associated type slots,
// record-set enums and the annotations attached to all of them.
package ast

import (
	"strings"

	"github.com/traitenum/traitenum/internal/compiler/lexer"
)

// SourceLocation tracks the position of an AST node in source code
type SourceLocation struct {
	Line   int `json:"line"`   // Line number (1-indexed)
	Column int `json:"column"` // Column number (1-indexed)
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// Program is the root node of the AST: one declaration file
type Program struct {
	Package    string
	PackageLoc SourceLocation
	Schemas    []*SchemaDecl
	Enums      []*EnumDecl
}

func (p *Program) node() {}

// Location returns the source location of the program node in the AST.
func (p *Program) Location() SourceLocation {
	if p.Package != "" {
		return p.PackageLoc
	}
	if len(p.Schemas) > 0 {
		return p.Schemas[0].Loc
	}
	if len(p.Enums) > 0 {
		return p.Enums[0].Loc
	}
	return SourceLocation{Line: 1, Column: 1}
}

// SchemaDecl is a `schema Name { ... }` declaration
type SchemaDecl struct {
	Name        string
	Annotations []*Annotation
	Types       []*TypeSlotDecl
	Fields      []*FieldDecl
	Loc         SourceLocation
}

func (s *SchemaDecl) node() {}

// Location returns the source location of the schema declaration.
func (s *SchemaDecl) Location() SourceLocation {
	return s.Loc
}

// TypeSlotDecl is an associated type slot: `type ChildType: family::ChildTrait`
type TypeSlotDecl struct {
	Name   string
	Bounds []*PathNode
	Loc    SourceLocation
}

func (t *TypeSlotDecl) node() {}

// Location returns the source location of the type slot.
func (t *TypeSlotDecl) Location() SourceLocation {
	return t.Loc
}

// FieldDecl is a schema field: `name: str`
type FieldDecl struct {
	Name        string
	Return      *ReturnTypeNode
	Annotations []*Annotation
	Loc         SourceLocation
}

func (f *FieldDecl) node() {}

// Location returns the source location of the field.
func (f *FieldDecl) Location() SourceLocation {
	return f.Loc
}

// ReturnShape is the syntactic form of a field's return type
type ReturnShape int

const (
	// ShapeNamed is a primitive or a named type (str, u32, RPS, a::B)
	ShapeNamed ReturnShape = iota
	// ShapeDyn is `dyn X`
	ShapeDyn
	// ShapeDynIter is `iter dyn X`
	ShapeDynIter
	// ShapeAssoc is `Self::X`
	ShapeAssoc
)

func (s ReturnShape) String() string {
	switch s {
	case ShapeDyn:
		return "dyn"
	case ShapeDynIter:
		return "iter dyn"
	case ShapeAssoc:
		return "Self::"
	default:
		return "named"
	}
}

// ReturnTypeNode is a field's declared return type
type ReturnTypeNode struct {
	Shape ReturnShape
	Path  *PathNode
	Loc   SourceLocation
}

func (r *ReturnTypeNode) node() {}

// Location returns the source location of the return type.
func (r *ReturnTypeNode) Location() SourceLocation {
	return r.Loc
}

// String renders the return type as written.
func (r *ReturnTypeNode) String() string {
	switch r.Shape {
	case ShapeDyn:
		return "dyn " + r.Path.String()
	case ShapeDynIter:
		return "iter dyn " + r.Path.String()
	case ShapeAssoc:
		return "Self::" + r.Path.String()
	default:
		return r.Path.String()
	}
}

// EnumDecl is a record set: `enum Parents: family::ParentTrait { Alpha }`
type EnumDecl struct {
	Name        string
	Schema      *PathNode // nil when the implemented schema is not declared
	Annotations []*Annotation
	Variants    []*VariantDecl
	Loc         SourceLocation
}

func (e *EnumDecl) node() {}

// Location returns the source location of the enum declaration.
func (e *EnumDecl) Location() SourceLocation {
	return e.Loc
}

// VariantDecl is one record of an enum
type VariantDecl struct {
	Name        string
	Annotations []*Annotation
	Loc         SourceLocation
}

func (v *VariantDecl) node() {}

// Location returns the source location of the record.
func (v *VariantDecl) Location() SourceLocation {
	return v.Loc
}

// Annotation is `@path` or `@path(args...)`
type Annotation struct {
	Path      []string
	Args      []ValueNode
	HasParens bool
	Loc       SourceLocation
}

func (a *Annotation) node() {}

// Location returns the source location of the '@'.
func (a *Annotation) Location() SourceLocation {
	return a.Loc
}

// Namespace is the first path segment: enumtrait in @enumtrait::Str.
func (a *Annotation) Namespace() string {
	if len(a.Path) == 0 {
		return ""
	}
	return a.Path[0]
}

// Name is the path below the namespace: Str in @enumtrait::Str.
func (a *Annotation) Name() string {
	if len(a.Path) < 2 {
		return ""
	}
	return strings.Join(a.Path[1:], "::")
}

// String renders the annotation head as written.
func (a *Annotation) String() string {
	return "@" + strings.Join(a.Path, "::")
}

// ValueNode is an annotation argument
type ValueNode interface {
	Node
	valueNode()
}

// LiteralKind tags a LiteralNode
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
)

// LiteralNode is a number, string or bool. Text holds the unescaped string
// or the digits of a number, with a leading '-' when negated.
type LiteralNode struct {
	Kind LiteralKind
	Text string
	Bool bool
	Loc  SourceLocation
}

func (l *LiteralNode) node()      {}
func (l *LiteralNode) valueNode() {}

// Location returns the source location of the literal.
func (l *LiteralNode) Location() SourceLocation {
	return l.Loc
}

// PathNode is a `::` separated name such as Paper, RPS::Paper or family::ParentTrait
type PathNode struct {
	Segments []string
	Loc      SourceLocation
}

func (p *PathNode) node()      {}
func (p *PathNode) valueNode() {}

// Location returns the source location of the first segment.
func (p *PathNode) Location() SourceLocation {
	return p.Loc
}

// String joins the segments with '::'.
func (p *PathNode) String() string {
	return strings.Join(p.Segments, "::")
}

// CallNode is a setting such as preset(Serial) or name("first")
type CallNode struct {
	Name string
	Args []ValueNode
	Loc  SourceLocation
}

func (c *CallNode) node()      {}
func (c *CallNode) valueNode() {}

// Location returns the source location of the setting name.
func (c *CallNode) Location() SourceLocation {
	return c.Loc
}

// TokenLocation creates a SourceLocation from a lexer token
func TokenLocation(token lexer.Token) SourceLocation {
	return SourceLocation{
		Line:   token.Line,
		Column: token.Column,
	}
}
