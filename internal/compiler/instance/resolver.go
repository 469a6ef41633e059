// Package instance resolves enum declarations against compiled schemas. This
// is the second compiler phase: it reads a model, fills every record's
// values from overrides, defaults and presets, and checks relation targets.
package instance

import (
	stderrors "errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/traitenum/traitenum/internal/compiler/annotation"
	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/model"
)

// Resolver builds one model.Instance from an enum declaration
type Resolver struct {
	pkg    string
	schema *model.Schema

	decl     *ast.EnumDecl
	instance *model.Instance

	// Accumulated errors
	errors cerrors.ErrorList
}

// NewResolver creates a resolver for enums implementing schema, declared in
// package pkg
func NewResolver(schema *model.Schema, pkg string) *Resolver {
	return &Resolver{
		pkg:    pkg,
		schema: schema,
		errors: make(cerrors.ErrorList, 0),
	}
}

// Resolve resolves decl against schema. The instance is nil whenever the
// returned list holds an error; warnings may accompany a valid instance.
func Resolve(schema *model.Schema, decl *ast.EnumDecl, pkg string) (*model.Instance, cerrors.ErrorList) {
	return NewResolver(schema, pkg).Resolve(decl)
}

// Resolve is the main entry point for one declaration
func (r *Resolver) Resolve(decl *ast.EnumDecl) (*model.Instance, cerrors.ErrorList) {
	r.decl = decl
	r.errors = make(cerrors.ErrorList, 0)

	id := model.NewIdentifier(nil, decl.Name)
	if r.pkg != "" {
		id = model.NewIdentifier([]string{r.pkg}, decl.Name)
	}
	r.instance = model.NewInstance(id, r.schema.Identifier)

	if !r.checkSchema() {
		return nil, r.errors
	}

	r.resolveRelationTargets()

	seen := make(map[string]bool)
	ordinal := 0
	for _, variant := range decl.Variants {
		if seen[variant.Name] {
			r.errors = append(r.errors, cerrors.NewDuplicateRecord(variant.Loc, variant.Name, decl.Name))
			continue
		}
		seen[variant.Name] = true
		r.resolveVariant(variant, ordinal)
		ordinal++
	}

	r.checkRelations()

	if len(decl.Variants) == 0 {
		r.errors = append(r.errors, cerrors.NewEmptyInstance(decl.Loc, decl.Name))
	}

	if r.errors.HasErrors() {
		return nil, r.errors
	}
	return r.instance, r.errors
}

// checkSchema verifies the enum declares the schema the model describes
func (r *Resolver) checkSchema() bool {
	if r.decl.Schema == nil {
		r.errors = append(r.errors, cerrors.NewMissingSchema(r.decl.Loc, r.decl.Name))
		return false
	}
	written := model.FromSegments(r.decl.Schema.Segments)
	qualified := annotation.Qualify(r.decl.Schema, r.pkg)
	if !written.Equal(r.schema.Identifier) && !qualified.Equal(r.schema.Identifier) {
		r.errors = append(r.errors, cerrors.NewSchemaMismatch(r.decl.Schema.Loc, qualified.String(), r.schema.Identifier.String()))
		return false
	}
	return true
}

// recordSettings checks an annotation placed on the enum or a record and
// returns its settings
func (r *Resolver) recordSettings(a *ast.Annotation) ([]annotation.Setting, bool) {
	if err := annotation.CheckNamespace(a, annotation.RecordNamespace); err != nil {
		r.errors = append(r.errors, err)
		return nil, false
	}
	if a.Name() != "" {
		r.errors = append(r.errors, cerrors.NewMalformedAnnotation(a.Loc, a.String(),
			"records and enums take @traitenum(field(value), ...)"))
		return nil, false
	}
	settings, err := annotation.Settings(a)
	if err != nil {
		r.errors = append(r.errors, err)
		return nil, false
	}
	return settings, true
}

// resolveRelationTargets records the enumeration-level relation targets
func (r *Resolver) resolveRelationTargets() {
	for _, a := range r.decl.Annotations {
		settings, ok := r.recordSettings(a)
		if !ok {
			continue
		}
		for _, setting := range settings {
			method, found := r.schema.Method(setting.Name)
			if !found {
				r.errors = append(r.errors, cerrors.NewUnknownField(setting.Loc, setting.Name, r.schema.Identifier.String()))
				continue
			}
			if !method.Definition.IsRelation() {
				r.errors = append(r.errors, cerrors.NewNotARelation(setting.Loc, setting.Name))
				continue
			}
			if _, exists := r.instance.Relations[setting.Name]; exists {
				r.errors = append(r.errors, cerrors.NewDuplicateRelationTarget(setting.Loc, setting.Name, r.decl.Name))
				continue
			}
			arg, err := setting.Arg()
			if err != nil {
				r.errors = append(r.errors, cerrors.FromModelError(setting.Loc, setting.Name, err))
				continue
			}
			target, err := annotation.Identifier(arg)
			if err != nil {
				r.errors = append(r.errors, cerrors.FromModelError(setting.Loc, setting.Name, err))
				continue
			}
			if *method.Definition.Rel.Nature == model.OneToMany {
				// A one-to-many target names a whole enum, optionally package qualified
				if r.namesRecord(target) {
					r.errors = append(r.errors, cerrors.FromModelError(setting.Loc, setting.Name,
						fmt.Errorf("%w: %s names a record, one-to-many targets name an enum", model.ErrInvalidIdentifier, target)))
					continue
				}
			} else {
				// A one-to-one or many-to-one target names a single record
				if _, err := target.Base(); err != nil {
					r.errors = append(r.errors, cerrors.FromModelError(setting.Loc, setting.Name,
						fmt.Errorf("%w: %s must name a record as Enum::Record", model.ErrInvalidIdentifier, target)))
					continue
				}
			}
			r.instance.Relations[setting.Name] = target
		}
	}
}

// namesRecord reports whether target has the Enum::Record shape. Package
// qualifiers are Go package names, which start lowercase.
func (r *Resolver) namesRecord(target model.Identifier) bool {
	qualifier := target.Qualifier()
	if qualifier == "" || qualifier == r.pkg {
		return false
	}
	first, _ := utf8.DecodeRuneInString(qualifier)
	return unicode.IsUpper(first)
}

// resolveVariant parses the overrides of one record and fills the remaining
// fields from defaults and presets
func (r *Resolver) resolveVariant(decl *ast.VariantDecl, ordinal int) {
	variant := model.NewVariant(decl.Name)
	ok := true

	for _, a := range decl.Annotations {
		settings, valid := r.recordSettings(a)
		if !valid {
			ok = false
			continue
		}
		for _, setting := range settings {
			if !r.applyOverride(&variant, setting) {
				ok = false
			}
		}
	}

	for _, method := range r.schema.Methods {
		if _, set := variant.Values[method.Name]; set {
			continue
		}
		if !method.Definition.NeedsValue() {
			continue
		}
		value, source, found, err := method.Definition.DefaultOrPreset(decl.Name, ordinal)
		if err != nil {
			ok = false
			if stderrors.Is(err, model.ErrOutOfRange) {
				r.errors = append(r.errors, cerrors.NewPresetOverflow(decl.Loc, method.Name, decl.Name, err.Error()).WithCause(err))
			} else {
				r.errors = append(r.errors, cerrors.FromModelError(decl.Loc, method.Name, err))
			}
			continue
		}
		if !found {
			ok = false
			r.errors = append(r.errors, cerrors.NewMissingValue(decl.Loc, method.Name, decl.Name))
			continue
		}
		variant.Values[method.Name] = model.AttributeValue{Value: value, Source: source}
	}

	if ok {
		r.instance.Variants = append(r.instance.Variants, variant)
	}
}

// applyOverride type-checks one field(value) setting of a record
func (r *Resolver) applyOverride(variant *model.Variant, setting annotation.Setting) bool {
	method, found := r.schema.Method(setting.Name)
	if !found {
		r.errors = append(r.errors, cerrors.NewUnknownField(setting.Loc, setting.Name, r.schema.Identifier.String()))
		return false
	}
	if _, exists := variant.Values[setting.Name]; exists {
		r.errors = append(r.errors, cerrors.NewDuplicateOverride(setting.Loc, setting.Name, variant.Name))
		return false
	}
	def := method.Definition
	if def.IsRelation() && *def.Rel.Nature == model.OneToMany {
		r.errors = append(r.errors, cerrors.NewRecordRelation(setting.Loc, setting.Name, variant.Name))
		return false
	}

	arg, err := setting.Arg()
	if err != nil {
		r.errors = append(r.errors, cerrors.FromModelError(setting.Loc, setting.Name, err))
		return false
	}
	value, err := annotation.Value(def, arg)
	if err != nil {
		r.errors = append(r.errors, cerrors.FromModelError(setting.Loc, setting.Name, err))
		return false
	}

	source := model.SourceExplicit
	if def.IsRelation() {
		source = model.SourceRelation
	}
	variant.Values[setting.Name] = model.AttributeValue{Value: value, Source: source}
	return true
}

// checkRelations requires a target for every relation: one-to-many relations
// at the enumeration level, the others there or on every record
func (r *Resolver) checkRelations() {
	for _, method := range r.schema.Relations() {
		if _, ok := r.instance.Relations[method.Name]; ok {
			continue
		}
		if *method.Definition.Rel.Nature == model.OneToMany {
			r.errors = append(r.errors, cerrors.NewMissingRelationTarget(r.decl.Loc, method.Name, r.decl.Name))
			continue
		}
		for _, variant := range r.instance.Variants {
			if _, ok := variant.Value(method.Name); ok {
				continue
			}
			r.errors = append(r.errors, cerrors.NewMissingValue(r.variantLocation(variant.Name), method.Name, variant.Name).
				WithSuggestion("Set it on the record or declare the target above the enum").
				WithExamples(fmt.Sprintf("@traitenum(%s(OtherEnum::Record))", method.Name)))
		}
	}
}

func (r *Resolver) variantLocation(name string) ast.SourceLocation {
	for _, v := range r.decl.Variants {
		if v.Name == name {
			return v.Loc
		}
	}
	return r.decl.Loc
}
