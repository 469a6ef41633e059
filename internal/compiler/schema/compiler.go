// Package schema compiles schema declarations into validated models. This is
// the first compiler phase: its only product consumed by the second phase is
// the serialized model.
package schema

import (
	"fmt"

	"github.com/traitenum/traitenum/internal/compiler/annotation"
	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/model"
)

// Compiler turns one schema declaration into a model.Schema
type Compiler struct {
	// Package qualifies bare names: the schema's own identifier and slot bounds
	pkg string

	decl   *ast.SchemaDecl
	schema *model.Schema

	// Declared slots not yet claimed by a relation, in declaration order
	partials []slot

	// Slots named by relation fields that failed to compile
	abandoned map[string]bool

	// Accumulated errors
	errors cerrors.ErrorList
}

type slot struct {
	partial model.AssociatedTypePartial
	loc     ast.SourceLocation
	claimed bool
}

// NewCompiler creates a compiler for declarations in package pkg
func NewCompiler(pkg string) *Compiler {
	return &Compiler{
		pkg:    pkg,
		errors: make(cerrors.ErrorList, 0),
	}
}

// Compile builds and validates the schema declared by decl. The schema is nil
// whenever the returned list holds an error.
func Compile(decl *ast.SchemaDecl, pkg string) (*model.Schema, cerrors.ErrorList) {
	return NewCompiler(pkg).Compile(decl)
}

// Compile is the main entry point for one declaration
func (c *Compiler) Compile(decl *ast.SchemaDecl) (*model.Schema, cerrors.ErrorList) {
	c.decl = decl
	c.partials = nil
	c.abandoned = make(map[string]bool)
	c.errors = make(cerrors.ErrorList, 0)

	c.schema = model.NewSchema(c.identifier())

	// First pass: type slots
	for _, typ := range decl.Types {
		c.collectSlot(typ)
	}

	// Second pass: fields
	seen := make(map[string]bool)
	for _, field := range decl.Fields {
		if seen[field.Name] {
			c.errors = append(c.errors, cerrors.NewDuplicateDeclaration(field.Loc, "field", field.Name))
			continue
		}
		seen[field.Name] = true
		method, ok := c.compileField(field)
		if !ok {
			if field.Return.Shape != ast.ShapeNamed && len(field.Return.Path.Segments) > 0 {
				c.abandoned[field.Return.Path.Segments[0]] = true
			}
			continue
		}
		c.schema.Methods = append(c.schema.Methods, method)
	}

	// Bijection between relations and slots
	c.matchRelations()

	if c.errors.HasErrors() {
		return nil, c.errors
	}
	return c.schema, c.errors
}

// identifier resolves the schema's identifier from its @enumtrait annotation,
// falling back to <package>::<Name>
func (c *Compiler) identifier() model.Identifier {
	fallback := model.NewIdentifier(nil, c.decl.Name)
	if c.pkg != "" {
		fallback = model.NewIdentifier([]string{c.pkg}, c.decl.Name)
	}

	var found *ast.Annotation
	for _, a := range c.decl.Annotations {
		if err := annotation.CheckNamespace(a, annotation.SchemaNamespace); err != nil {
			c.errors = append(c.errors, err)
			continue
		}
		if a.Name() != "" {
			c.errors = append(c.errors, cerrors.NewMalformedAnnotation(a.Loc, a.String(),
				"definition annotations belong on fields, a schema takes @enumtrait(identifier)"))
			continue
		}
		if found != nil {
			c.errors = append(c.errors, cerrors.NewMalformedAnnotation(a.Loc, a.String(),
				"the schema identifier is declared more than once"))
			continue
		}
		found = a
	}
	if found == nil {
		return fallback
	}

	if len(found.Args) != 1 {
		c.errors = append(c.errors, cerrors.NewMalformedAnnotation(found.Loc, found.String(),
			fmt.Sprintf("expected exactly one identifier, got %d arguments", len(found.Args))))
		return fallback
	}
	id, err := annotation.Identifier(found.Args[0])
	if err != nil {
		c.errors = append(c.errors, cerrors.NewMalformedAnnotation(found.Loc, found.String(), err.Error()))
		return fallback
	}
	if id.Name != c.decl.Name {
		c.errors = append(c.errors, cerrors.NewIdentifierMismatch(found.Loc, id.String(), c.decl.Name))
		return fallback
	}
	return id
}

// collectSlot records `type Name: Target` as an unclaimed partial
func (c *Compiler) collectSlot(typ *ast.TypeSlotDecl) {
	for _, existing := range c.partials {
		if existing.partial.Name == typ.Name {
			c.errors = append(c.errors, cerrors.NewDuplicateDeclaration(typ.Loc, "associated type", typ.Name))
			return
		}
	}
	if len(typ.Bounds) != 1 {
		c.errors = append(c.errors, cerrors.NewUnsupportedBounds(typ.Loc, typ.Name, len(typ.Bounds)))
		return
	}
	c.partials = append(c.partials, slot{
		partial: model.AssociatedTypePartial{
			Name:   typ.Name,
			Target: annotation.Qualify(typ.Bounds[0], c.pkg),
		},
		loc: typ.Loc,
	})
}

// compileField builds and validates the definition of one field
func (c *Compiler) compileField(field *ast.FieldDecl) (model.Method, bool) {
	kind, id, ok := c.returnKind(field)
	if !ok {
		return model.Method{}, false
	}

	definition, ok := c.definitionAnnotation(field)
	if !ok {
		return model.Method{}, false
	}

	name := ""
	if definition != nil {
		name = definition.Name()
	}
	def, err := model.Partial(name, kind, id)
	if err != nil {
		loc := field.Loc
		if definition != nil {
			loc = definition.Loc
		}
		compiled := cerrors.FromModelError(loc, field.Name, err)
		if compiled.Code == cerrors.ErrIncompatibleDefinition {
			compiled = cerrors.NewIncompatibleDefinition(loc, field.Name, name, field.Return.String()).WithCause(err)
		}
		c.errors = append(c.errors, compiled)
		return model.Method{}, false
	}

	if definition != nil {
		if !c.applySettings(field, definition, &def) {
			return model.Method{}, false
		}
	}

	method := model.Method{Name: field.Name, Return: kind, Definition: def}
	if err := method.Validate(); err != nil {
		loc := field.Loc
		if definition != nil {
			loc = definition.Loc
		}
		c.errors = append(c.errors, cerrors.FromModelError(loc, field.Name, err))
		return model.Method{}, false
	}
	return method, true
}

// returnKind maps the declared return type onto a ReturnKind and the type
// identifier the definition needs
func (c *Compiler) returnKind(field *ast.FieldDecl) (model.ReturnKind, *model.Identifier, bool) {
	ret := field.Return
	segments := ret.Path.Segments

	switch ret.Shape {
	case ast.ShapeNamed:
		if len(segments) == 1 {
			if kind, ok := model.PrimitiveKind(segments[0]); ok {
				return kind, nil, true
			}
		}
		id := model.FromSegments(segments)
		return model.ReturnType, &id, true
	case ast.ShapeDyn, ast.ShapeDynIter, ast.ShapeAssoc:
		if len(segments) != 1 {
			c.errors = append(c.errors, cerrors.NewInvalidReturnType(ret.Loc, field.Name, ret.String(),
				"relations name an associated type declared in the schema"))
			return 0, nil, false
		}
		id := model.NewIdentifier(nil, segments[0])
		kind := model.ReturnDyn
		switch ret.Shape {
		case ast.ShapeDynIter:
			kind = model.ReturnDynIter
		case ast.ShapeAssoc:
			kind = model.ReturnAssoc
		}
		return kind, &id, true
	default:
		c.errors = append(c.errors, cerrors.NewInvalidReturnType(ret.Loc, field.Name, ret.String(), "unknown return shape"))
		return 0, nil, false
	}
}

// definitionAnnotation returns the field's single @enumtrait::Kind annotation,
// or nil when the definition is inferred
func (c *Compiler) definitionAnnotation(field *ast.FieldDecl) (*ast.Annotation, bool) {
	ok := true
	var definitions []*ast.Annotation
	for _, a := range field.Annotations {
		if err := annotation.CheckNamespace(a, annotation.SchemaNamespace); err != nil {
			c.errors = append(c.errors, err)
			ok = false
			continue
		}
		if a.Name() == "" {
			c.errors = append(c.errors, cerrors.NewMalformedAnnotation(a.Loc, a.String(),
				"field annotations name a definition such as @enumtrait::Str"))
			ok = false
			continue
		}
		definitions = append(definitions, a)
	}
	if !ok {
		return nil, false
	}

	switch len(definitions) {
	case 0:
		return nil, true
	case 1:
		return definitions[0], true
	default:
		names := make([]string, len(definitions))
		for i, d := range definitions {
			names[i] = d.String()
		}
		c.errors = append(c.errors, cerrors.NewMultipleDefinitions(definitions[1].Loc, field.Name, names))
		return nil, false
	}
}

// applySettings applies every name(value) setting of the definition
// annotation to def
func (c *Compiler) applySettings(field *ast.FieldDecl, a *ast.Annotation, def *model.AttributeDefinition) bool {
	settings, malformed := annotation.Settings(a)
	if malformed != nil {
		c.errors = append(c.errors, malformed)
		return false
	}

	ok := true
	seen := make(map[string]bool)
	for _, setting := range settings {
		if seen[setting.Name] {
			c.errors = append(c.errors, cerrors.FromModelError(setting.Loc, field.Name,
				fmt.Errorf("%w: %s", model.ErrDuplicateSetting, setting.Name)))
			ok = false
			continue
		}
		seen[setting.Name] = true

		if err := applySetting(def, setting); err != nil {
			c.errors = append(c.errors, cerrors.FromModelError(setting.Loc, field.Name, err))
			ok = false
		}
	}
	return ok
}

// matchRelations claims one slot per relation field and reports both
// unmatched relations and unclaimed slots
func (c *Compiler) matchRelations() {
	for _, method := range c.schema.Relations() {
		name := method.Definition.Rel.Identifier.Name
		loc := c.fieldLocation(method.Name)

		var claimed *slot
		for i := range c.partials {
			if c.partials[i].partial.Name == name && !c.partials[i].claimed {
				claimed = &c.partials[i]
				break
			}
		}
		if claimed == nil {
			c.errors = append(c.errors, cerrors.NewUnmatchedRelation(loc, method.Name, name))
			continue
		}
		claimed.claimed = true
		c.schema.Types = append(c.schema.Types, claimed.partial.Finish(method))
	}

	for _, s := range c.partials {
		if !s.claimed && !c.abandoned[s.partial.Name] {
			c.errors = append(c.errors, cerrors.NewUnmatchedSlot(s.loc, s.partial.Name))
		}
	}
}

func (c *Compiler) fieldLocation(name string) ast.SourceLocation {
	for _, field := range c.decl.Fields {
		if field.Name == name {
			return field.Loc
		}
	}
	return c.decl.Loc
}
