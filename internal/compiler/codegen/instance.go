package codegen

import (
	"fmt"
	"strings"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/model"
)

// GenerateInstance emits the enum implementing schema for a resolved
// instance: the record constants, one accessor per field and an iterator
// type per one-to-many relation
func (g *Generator) GenerateInstance(schema *model.Schema, instance *model.Instance) ([]byte, error) {
	g.reset()
	if err := g.checkPackage(); err != nil {
		return nil, err
	}

	names, err := methodNames(schema)
	if err != nil {
		return nil, err
	}

	typeName := instance.Identifier.Name
	if err := g.checkRecords(instance); err != nil {
		return nil, err
	}

	g.generateEnum(instance)

	hasString := false
	for _, name := range names {
		if name == "String" {
			hasString = true
		}
	}
	if !hasString {
		g.writeLine("")
		g.generateString(instance)
	}

	for _, m := range schema.Methods {
		g.writeLine("")
		if err := g.generateAccessor(schema, instance, m, names[m.Name]); err != nil {
			return nil, err
		}
	}

	g.writeLine("")
	g.writeLine("var _ %s = %s(0)", g.typeRef(instance.Schema), typeName)

	return g.finish(fileName(typeName))
}

// checkRecords rejects records whose constants would collide
func (g *Generator) checkRecords(instance *model.Instance) error {
	seen := make(map[string]string, len(instance.Variants))
	for _, v := range instance.Variants {
		name := toGoFieldName(v.Name)
		if name == "" {
			return cerrors.NewInvalidGoIdentifier(ast.SourceLocation{}, v.Name, "not a valid record name")
		}
		if owner, exists := seen[name]; exists {
			return cerrors.NewInvalidGoIdentifier(ast.SourceLocation{}, v.Name,
				fmt.Sprintf("constant %s%s collides with record '%s'", instance.Identifier.Name, name, owner))
		}
		seen[name] = v.Name
	}
	return nil
}

func (g *Generator) constName(instance *model.Instance, record string) string {
	return instance.Identifier.Name + toGoFieldName(record)
}

// generateEnum writes the type, its constants and the Values function
func (g *Generator) generateEnum(instance *model.Instance) {
	typeName := instance.Identifier.Name

	g.writeLine("// %s implements %s.", typeName, instance.Schema)
	g.writeLine("type %s int", typeName)

	if len(instance.Variants) > 0 {
		g.writeLine("")
		g.writeLine("const (")
		g.indent++
		for i, v := range instance.Variants {
			if i == 0 {
				g.writeLine("%s %s = iota", g.constName(instance, v.Name), typeName)
			} else {
				g.writeLine("%s", g.constName(instance, v.Name))
			}
		}
		g.indent--
		g.writeLine(")")
	}

	consts := make([]string, len(instance.Variants))
	for i, v := range instance.Variants {
		consts[i] = g.constName(instance, v.Name)
	}
	g.writeLine("")
	g.writeLine("// %sValues returns every %s record in declaration order.", typeName, typeName)
	g.writeLine("func %sValues() []%s {", typeName, typeName)
	g.indent++
	g.writeLine("return []%s{%s}", typeName, strings.Join(consts, ", "))
	g.indent--
	g.writeLine("}")
}

// generateString writes a String method returning the record name
func (g *Generator) generateString(instance *model.Instance) {
	typeName := instance.Identifier.Name
	recv := receiverName(typeName)

	g.imports["strconv"] = true
	g.writeLine("// String returns the declared name of the record.")
	g.writeLine("func (%s %s) String() string {", recv, typeName)
	g.indent++
	g.writeLine("switch %s {", recv)
	for _, v := range instance.Variants {
		g.writeLine("case %s:", g.constName(instance, v.Name))
		g.indent++
		g.writeLine("return %q", v.Name)
		g.indent--
	}
	g.writeLine("}")
	g.writeLine("return %q + strconv.Itoa(int(%s)) + \")\"", typeName+"(", recv)
	g.indent--
	g.writeLine("}")
}

// generateAccessor writes the method for one schema field
func (g *Generator) generateAccessor(schema *model.Schema, instance *model.Instance, m model.Method, name string) error {
	returnType, err := g.returnType(schema, m)
	if err != nil {
		return err
	}

	if m.Definition.IsRelation() {
		rel := m.Definition.Rel
		if rel.Dispatch == nil || *rel.Dispatch != model.Dynamic {
			dispatch := "unset"
			if rel.Dispatch != nil {
				dispatch = rel.Dispatch.String()
			}
			return cerrors.NewUnsupportedDispatch(ast.SourceLocation{}, m.Name, dispatch)
		}
		switch *rel.Nature {
		case model.OneToMany:
			return g.generateIterAccessor(schema, instance, m, name, returnType)
		case model.ManyToOne, model.OneToOne:
			return g.generateRecordAccessor(instance, m, name, returnType)
		default:
			return cerrors.NewUnsupportedNature(ast.SourceLocation{}, m.Name, rel.Nature.String())
		}
	}

	return g.generateRecordAccessor(instance, m, name, returnType)
}

// generateRecordAccessor switches over the records, returning each record's
// value. A relation with an enumeration-level target returns it for every
// record without a value of its own.
func (g *Generator) generateRecordAccessor(instance *model.Instance, m model.Method, name, returnType string) error {
	typeName := instance.Identifier.Name
	recv := receiverName(typeName)

	fallback, hasFallback := instance.Relation(m.Name)

	cases := make([][2]string, 0, len(instance.Variants))
	for _, v := range instance.Variants {
		value, ok := v.Value(m.Name)
		if !ok {
			if m.Definition.IsRelation() && hasFallback {
				continue
			}
			return cerrors.NewCodeGenFailed(ast.SourceLocation{},
				fmt.Sprintf("record '%s' has no value for '%s'", v.Name, m.Name))
		}
		cases = append(cases, [2]string{g.constName(instance, v.Name), g.literal(value.Value)})
	}

	g.writeLine("// %s returns the %s of the record.", name, m.Name)
	g.writeLine("func (%s %s) %s() %s {", recv, typeName, name, returnType)
	g.indent++
	if len(cases) > 0 {
		g.writeLine("switch %s {", recv)
		for _, c := range cases {
			g.writeLine("case %s:", c[0])
			g.indent++
			g.writeLine("return %s", c[1])
			g.indent--
		}
		g.writeLine("}")
	}
	if hasFallback && m.Definition.IsRelation() {
		g.writeLine("return %s", g.memberRef(fallback))
	} else {
		g.imports["fmt"] = true
		g.writeLine("panic(fmt.Sprintf(\"%s: invalid %s value %%d\", int(%s)))", g.opts.Package, typeName, recv)
	}
	g.indent--
	g.writeLine("}")
	return nil
}

// generateIterAccessor returns a fresh iterator over the target enum's
// records, plus the iterator type itself
func (g *Generator) generateIterAccessor(schema *model.Schema, instance *model.Instance, m model.Method, name, returnType string) error {
	target, ok := instance.Relation(m.Name)
	if !ok {
		return cerrors.NewCodeGenFailed(ast.SourceLocation{},
			fmt.Sprintf("one-to-many relation '%s' has no target", m.Name))
	}
	assoc, ok := schema.RelationType(m.Name)
	if !ok {
		return cerrors.NewCodeGenFailed(ast.SourceLocation{},
			fmt.Sprintf("relation '%s' has no associated type", m.Name))
	}

	typeName := instance.Identifier.Name
	recv := receiverName(typeName)
	iterName := strings.ToLower(typeName[0:1]) + typeName[1:] + name + "Iterator"
	recordType := g.typeRef(target)
	itemType := g.typeRef(assoc.Target)

	g.writeLine("// %s returns a new iterator over the %s records.", name, target.Name)
	g.writeLine("func (%s %s) %s() %s {", recv, typeName, name, returnType)
	g.indent++
	g.writeLine("return &%s{records: %s()}", iterName, g.valuesRef(target))
	g.indent--
	g.writeLine("}")
	g.writeLine("")

	g.writeLine("// %s walks the %s records in declaration order.", iterName, target.Name)
	g.writeLine("type %s struct {", iterName)
	g.indent++
	g.writeLine("records []%s", recordType)
	g.writeLine("pos     int")
	g.indent--
	g.writeLine("}")
	g.writeLine("")

	g.writeLine("// Next returns the next record, or false once every record has been returned.")
	g.writeLine("func (it *%s) Next() (%s, bool) {", iterName, itemType)
	g.indent++
	g.writeLine("if it.pos >= len(it.records) {")
	g.indent++
	g.writeLine("return nil, false")
	g.indent--
	g.writeLine("}")
	g.writeLine("record := it.records[it.pos]")
	g.writeLine("it.pos++")
	g.writeLine("return record, true")
	g.indent--
	g.writeLine("}")
	return nil
}
