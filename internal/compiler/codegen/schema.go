package codegen

import (
	"fmt"
	"strconv"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/model"
)

// ModelConstName is the constant holding the serialized model of a schema
func ModelConstName(schema model.Identifier) string {
	return "TraitEnumModel" + schema.Name
}

// GenerateSchema emits the interface of a schema together with its
// serialized model
func (g *Generator) GenerateSchema(schema *model.Schema, modelData []byte) ([]byte, error) {
	g.reset()
	if err := g.checkPackage(); err != nil {
		return nil, err
	}

	names, err := methodNames(schema)
	if err != nil {
		return nil, err
	}

	if !g.opts.OmitModel {
		constName := ModelConstName(schema.Identifier)
		g.writeLine("// %s is the serialized model of %s.", constName, schema.Identifier)
		g.writeLine("const %s = %s", constName, strconv.Quote(string(modelData)))
		g.writeLine("")
	}

	g.writeLine("// %s is implemented by every enum declared against %s.", schema.Identifier.Name, schema.Identifier)
	g.writeLine("type %s interface {", schema.Identifier.Name)
	g.indent++
	for _, m := range schema.Methods {
		returnType, err := g.returnType(schema, m)
		if err != nil {
			return nil, err
		}
		g.writeLine("%s() %s", names[m.Name], returnType)
	}
	g.indent--
	g.writeLine("}")

	return g.finish(fileName(schema.Identifier.Name))
}

// returnType is the Go type an accessor for m returns
func (g *Generator) returnType(schema *model.Schema, m model.Method) (string, error) {
	switch m.Return {
	case model.ReturnType:
		id, _ := m.Definition.TargetIdentifier()
		return g.typeRef(id), nil
	case model.ReturnDyn, model.ReturnDynIter:
		assoc, ok := schema.RelationType(m.Name)
		if !ok {
			return "", cerrors.NewCodeGenFailed(ast.SourceLocation{},
				fmt.Sprintf("relation '%s' has no associated type", m.Name))
		}
		target := g.typeRef(assoc.Target)
		if m.Return == model.ReturnDynIter {
			g.imports[RuntimeImport] = true
			return fmt.Sprintf("runtime.Iterator[%s]", target), nil
		}
		return target, nil
	case model.ReturnAssoc:
		return "", cerrors.NewUnsupportedDispatch(ast.SourceLocation{}, m.Name, model.Static.String())
	default:
		if goType := m.Return.GoType(); goType != "" {
			return goType, nil
		}
		return "", cerrors.NewCodeGenFailed(ast.SourceLocation{},
			fmt.Sprintf("field '%s' has no Go type for %s", m.Name, m.Return))
	}
}

func fileName(typeName string) string {
	return typeName + ".go"
}
