package model

import "fmt"

// Schema is a compiled enumtrait: the validated fields every instance must
// populate. It is immutable once built.
type Schema struct {
	Identifier Identifier       `codec:"identifier" json:"identifier" yaml:"identifier"`
	Methods    []Method         `codec:"methods" json:"methods" yaml:"methods"`
	Types      []AssociatedType `codec:"types" json:"types" yaml:"types"`
}

// Method is one field of a schema.
type Method struct {
	Name       string              `codec:"name" json:"name" yaml:"name"`
	Return     ReturnKind          `codec:"return" json:"return" yaml:"return"`
	Definition AttributeDefinition `codec:"definition" json:"definition" yaml:"definition"`
}

// AssociatedType binds a relation field to the schema its records implement.
type AssociatedType struct {
	Name         string         `codec:"name" json:"name" yaml:"name"`
	RelationName string         `codec:"relation_name" json:"relation_name" yaml:"relation_name"`
	Target       Identifier     `codec:"target" json:"target" yaml:"target"`
	Nature       RelationNature `codec:"nature" json:"nature" yaml:"nature"`
}

// AssociatedTypePartial is a declared type slot not yet claimed by a relation.
type AssociatedTypePartial struct {
	Name   string
	Target Identifier
}

// Finish promotes the slot once relation claims it.
func (p AssociatedTypePartial) Finish(relation Method) AssociatedType {
	var nature RelationNature
	if relation.Definition.Rel != nil && relation.Definition.Rel.Nature != nil {
		nature = *relation.Definition.Rel.Nature
	}
	return AssociatedType{
		Name:         p.Name,
		RelationName: relation.Name,
		Target:       p.Target,
		Nature:       nature,
	}
}

// NewSchema builds an empty schema.
func NewSchema(id Identifier) *Schema {
	return &Schema{
		Identifier: id,
		Methods:    make([]Method, 0),
		Types:      make([]AssociatedType, 0),
	}
}

// Validate checks the definition and that a relation's nature agrees with its
// declared return shape.
func (m Method) Validate() error {
	if err := m.Definition.Validate(); err != nil {
		return err
	}
	if !m.Definition.IsRelation() {
		return nil
	}
	nature := *m.Definition.Rel.Nature
	switch m.Return {
	case ReturnDynIter:
		if nature != OneToMany {
			return fmt.Errorf("%w: iter dyn requires OneToMany, got %s", ErrNatureMismatch, nature)
		}
	case ReturnDyn:
		if nature == OneToMany {
			return fmt.Errorf("%w: dyn cannot be OneToMany", ErrNatureMismatch)
		}
	}
	return nil
}

// Method returns the field named name.
func (s *Schema) Method(name string) (*Method, bool) {
	for i := range s.Methods {
		if s.Methods[i].Name == name {
			return &s.Methods[i], true
		}
	}
	return nil, false
}

// RelationType returns the associated type claimed by the relation field.
func (s *Schema) RelationType(field string) (*AssociatedType, bool) {
	for i := range s.Types {
		if s.Types[i].RelationName == field {
			return &s.Types[i], true
		}
	}
	return nil, false
}

// Relations returns the relation fields in declaration order.
func (s *Schema) Relations() []Method {
	relations := make([]Method, 0)
	for _, m := range s.Methods {
		if m.Definition.IsRelation() {
			relations = append(relations, m)
		}
	}
	return relations
}

// Normalize replaces nil slices with empty ones so that decoded and freshly
// built schemas compare equal.
func (s *Schema) Normalize() {
	if s.Methods == nil {
		s.Methods = make([]Method, 0)
	}
	if s.Types == nil {
		s.Types = make([]AssociatedType, 0)
	}
	normalizeID(&s.Identifier)
	for i := range s.Methods {
		d := &s.Methods[i].Definition
		switch {
		case d.Enum != nil:
			normalizeID(&d.Enum.Identifier)
			normalizeIDPtr(d.Enum.Default)
		case d.Type != nil:
			normalizeID(&d.Type.Identifier)
			normalizeIDPtr(d.Type.Default)
		case d.Rel != nil:
			normalizeID(&d.Rel.Identifier)
		}
	}
	for i := range s.Types {
		normalizeID(&s.Types[i].Target)
	}
}

func normalizeID(id *Identifier) {
	if id.Path == nil {
		id.Path = make([]string, 0)
	}
}

func normalizeIDPtr(id *Identifier) {
	if id != nil {
		normalizeID(id)
	}
}
