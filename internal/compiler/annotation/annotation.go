// Package annotation interprets the @enumtrait and @traitenum annotations
// attached to declarations: namespace checks, name(value) settings and the
// conversion of setting arguments into model values.
package annotation

import (
	"fmt"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/model"
)

const (
	// SchemaNamespace prefixes annotations on schemas and their fields.
	SchemaNamespace = "enumtrait"
	// RecordNamespace prefixes annotations on enums and their records.
	RecordNamespace = "traitenum"
)

// Setting is one name(args...) argument of an annotation.
type Setting struct {
	Name string
	Args []ast.ValueNode
	Loc  ast.SourceLocation
}

// Arg returns the single argument of the setting.
func (s Setting) Arg() (ast.ValueNode, error) {
	if len(s.Args) != 1 {
		return nil, fmt.Errorf("%w: %s takes exactly one value, got %d", model.ErrInvalidLiteral, s.Name, len(s.Args))
	}
	return s.Args[0], nil
}

// CheckNamespace rejects annotations outside the expected namespace. Using
// the sibling namespace is reported as a misplaced annotation.
func CheckNamespace(a *ast.Annotation, expected string) *cerrors.CompilerError {
	switch a.Namespace() {
	case expected:
		return nil
	case SchemaNamespace, RecordNamespace:
		return cerrors.NewWrongNamespace(a.Loc, a.String(), expected)
	default:
		return cerrors.NewUnknownNamespace(a.Loc, a.String())
	}
}

// Settings returns the arguments of a as settings. Every argument must be a
// call such as preset(Serial).
func Settings(a *ast.Annotation) ([]Setting, *cerrors.CompilerError) {
	settings := make([]Setting, 0, len(a.Args))
	for _, arg := range a.Args {
		call, ok := arg.(*ast.CallNode)
		if !ok {
			return nil, cerrors.NewMalformedAnnotation(arg.Location(), a.String(),
				fmt.Sprintf("expected name(value), found %s", Describe(arg)))
		}
		settings = append(settings, Setting{Name: call.Name, Args: call.Args, Loc: call.Loc})
	}
	return settings, nil
}

// Describe renders a value node for error messages.
func Describe(node ast.ValueNode) string {
	switch n := node.(type) {
	case *ast.LiteralNode:
		switch n.Kind {
		case ast.LiteralString:
			return fmt.Sprintf("%q", n.Text)
		case ast.LiteralBool:
			return fmt.Sprintf("%t", n.Bool)
		default:
			return n.Text
		}
	case *ast.PathNode:
		return n.String()
	case *ast.CallNode:
		return n.Name + "(...)"
	default:
		return "value"
	}
}

// Qualify turns a written path into an identifier. A bare name is placed in
// pkg when pkg is set.
func Qualify(path *ast.PathNode, pkg string) model.Identifier {
	if len(path.Segments) == 1 && pkg != "" {
		return model.NewIdentifier([]string{pkg}, path.Segments[0])
	}
	return model.FromSegments(path.Segments)
}

// Name returns a single-segment path argument such as Serial or OneToMany.
func Name(node ast.ValueNode) (string, error) {
	path, ok := node.(*ast.PathNode)
	if !ok || len(path.Segments) != 1 {
		return "", fmt.Errorf("%w: expected a name, found %s", model.ErrInvalidLiteral, Describe(node))
	}
	return path.Segments[0], nil
}

// Identifier returns a path argument as an identifier.
func Identifier(node ast.ValueNode) (model.Identifier, error) {
	path, ok := node.(*ast.PathNode)
	if !ok {
		return model.Identifier{}, fmt.Errorf("%w: expected an identifier, found %s", model.ErrInvalidIdentifier, Describe(node))
	}
	return model.FromSegments(path.Segments), nil
}

// Number parses a numeric literal in the width of kind.
func Number(kind model.ReturnKind, node ast.ValueNode) (model.Value, error) {
	lit, ok := node.(*ast.LiteralNode)
	if !ok || (lit.Kind != ast.LiteralInt && lit.Kind != ast.LiteralFloat) {
		return model.Value{}, fmt.Errorf("%w: expected a %s literal, found %s", model.ErrInvalidLiteral, kind, Describe(node))
	}
	return model.ParseNumber(kind, lit.Text)
}

// Value converts node into a value of the field described by def. A bare
// name for an Enum or Type field is completed with the type's identifier, so
// Paper is accepted for RPS::Paper. Relation values must name a record.
func Value(def model.AttributeDefinition, node ast.ValueNode) (model.Value, error) {
	switch def.Kind {
	case model.DefBool:
		lit, ok := node.(*ast.LiteralNode)
		if !ok || lit.Kind != ast.LiteralBool {
			return model.Value{}, fmt.Errorf("%w: expected true or false, found %s", model.ErrInvalidLiteral, Describe(node))
		}
		return model.BoolValue(lit.Bool), nil
	case model.DefStr:
		lit, ok := node.(*ast.LiteralNode)
		if !ok || lit.Kind != ast.LiteralString {
			return model.Value{}, fmt.Errorf("%w: expected a string, found %s", model.ErrInvalidLiteral, Describe(node))
		}
		return model.StrValue(lit.Text), nil
	case model.DefNum:
		return Number(def.Num.Kind, node)
	case model.DefEnum:
		id, err := member(def.Enum.Identifier, node)
		if err != nil {
			return model.Value{}, err
		}
		return model.EnumVariantValue(id), nil
	case model.DefType:
		id, err := member(def.Type.Identifier, node)
		if err != nil {
			return model.Value{}, err
		}
		return model.TypeValue(id), nil
	case model.DefRel:
		id, err := Identifier(node)
		if err != nil {
			return model.Value{}, err
		}
		if _, err := id.Base(); err != nil {
			return model.Value{}, fmt.Errorf("%w: relation value %s must name a record as Enum::Record", model.ErrInvalidIdentifier, id)
		}
		return model.RelationValue(id), nil
	default:
		return model.Value{}, fmt.Errorf("%w: %s", model.ErrUnknownDefinition, def.Kind)
	}
}

func member(typeID model.Identifier, node ast.ValueNode) (model.Identifier, error) {
	id, err := Identifier(node)
	if err != nil {
		return model.Identifier{}, err
	}
	if len(id.Path) == 0 {
		return typeID.Child(id.Name), nil
	}
	return id, nil
}
