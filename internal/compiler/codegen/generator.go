// Package codegen generates idiomatic Go code from compiled traitenum models.
// Schemas become interfaces carrying their serialized model; resolved
// instances become integer enums implementing those interfaces.
package codegen

import (
	"bytes"
	"fmt"
	"go/token"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/model"
	strutil "github.com/traitenum/traitenum/internal/util/strings"
)

// RuntimeImport is the package providing runtime.Iterator
const RuntimeImport = "github.com/traitenum/traitenum/pkg/runtime"

// Header opens every generated file
const Header = "// Code generated by traitenum. DO NOT EDIT."

// Options controls the generated package
type Options struct {
	// Package is the package clause of generated files
	Package string
	// Imports maps package qualifiers of identifiers outside Package to import paths
	Imports map[string]string
	// ResolveImports lets goimports look up qualifiers missing from Imports
	ResolveImports bool
	// OmitModel leaves the model constant out of schema files
	OmitModel bool
}

// Generator transforms models into Go code
type Generator struct {
	buf     *bytes.Buffer
	indent  int
	imports map[string]bool
	opts    Options
}

// NewGenerator creates a new code generator
func NewGenerator(opts Options) *Generator {
	return &Generator{
		buf:     &bytes.Buffer{},
		indent:  0,
		imports: make(map[string]bool),
		opts:    opts,
	}
}

// reset clears the generator state
func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]bool)
}

// writeLine writes a formatted line with proper indentation
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}

	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}

	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// checkPackage rejects package clauses Go cannot compile
func (g *Generator) checkPackage() error {
	pkg := g.opts.Package
	if token.IsKeyword(pkg) {
		return cerrors.NewGoReservedWord(ast.SourceLocation{}, pkg)
	}
	if !token.IsIdentifier(pkg) {
		return cerrors.NewInvalidGoIdentifier(ast.SourceLocation{}, pkg, "not a valid package name")
	}
	return nil
}

// finish assembles header, package clause, imports and body, then formats
// the result
func (g *Generator) finish(filename string) ([]byte, error) {
	body := g.buf.String()
	g.buf.Reset()
	g.indent = 0

	g.writeLine(Header)
	g.writeLine("")
	g.writeLine("package %s", g.opts.Package)
	g.writeLine("")
	if len(g.imports) > 0 {
		g.writeImports()
		g.writeLine("")
	}
	g.buf.WriteString(body)

	return format(filename, g.buf.Bytes(), g.opts.ResolveImports)
}

// writeImports writes the import block, stdlib first
func (g *Generator) writeImports() {
	g.writeLine("import (")
	g.indent++

	var stdlibImports []string
	var externalImports []string
	for imp := range g.imports {
		if strings.Contains(imp, ".") {
			externalImports = append(externalImports, imp)
		} else {
			stdlibImports = append(stdlibImports, imp)
		}
	}
	sort.Strings(stdlibImports)
	sort.Strings(externalImports)

	for _, imp := range stdlibImports {
		g.writeLine("%q", imp)
	}
	if len(stdlibImports) > 0 && len(externalImports) > 0 {
		g.writeLine("")
	}
	for _, imp := range externalImports {
		g.writeLine("%q", imp)
	}

	g.indent--
	g.writeLine(")")
}

// format runs goimports over generated source
func format(filename string, src []byte, resolve bool) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: !resolve,
	})
	if err != nil {
		return nil, cerrors.NewFormatFailed(ast.SourceLocation{}, filename, err)
	}
	return out, nil
}

// qualify prefixes name with its package qualifier when it lives outside the
// generated package
func (g *Generator) qualify(qualifier, name string) string {
	if qualifier == "" || qualifier == g.opts.Package {
		return name
	}
	if path, ok := g.opts.Imports[qualifier]; ok {
		g.imports[path] = true
	}
	return qualifier + "." + name
}

// typeRef renders a schema, enum or type identifier as a Go type
func (g *Generator) typeRef(id model.Identifier) string {
	return g.qualify(id.Qualifier(), id.Name)
}

// memberRef renders Enum::Record as the constant EnumRecord
func (g *Generator) memberRef(id model.Identifier) string {
	base, err := id.Base()
	if err != nil {
		return toGoFieldName(id.Name)
	}
	return g.qualify(base.Qualifier(), base.Name+toGoFieldName(id.Name))
}

// valuesRef renders the <Enum>Values function of an enum identifier
func (g *Generator) valuesRef(id model.Identifier) string {
	return g.qualify(id.Qualifier(), id.Name+"Values")
}

// literal renders a scalar value as a Go expression
func (g *Generator) literal(v model.Value) string {
	switch v.Kind {
	case model.ValueEnumVariant, model.ValueRelation, model.ValueType:
		if v.ID == nil {
			return ""
		}
		return g.memberRef(*v.ID)
	case model.ValueStr:
		return fmt.Sprintf("%q", v.Str)
	default:
		return v.String()
	}
}

// methodNames maps every field to its exported method name and rejects
// names that are not identifiers or that collide
func methodNames(schema *model.Schema) (map[string]string, error) {
	names := make(map[string]string, len(schema.Methods))
	owners := make(map[string]string, len(schema.Methods))
	for _, m := range schema.Methods {
		name := toGoFieldName(m.Name)
		if !token.IsIdentifier(name) {
			return nil, cerrors.NewInvalidGoIdentifier(ast.SourceLocation{}, m.Name, "not a valid method name")
		}
		if owner, exists := owners[name]; exists {
			return nil, cerrors.NewInvalidGoIdentifier(ast.SourceLocation{}, m.Name,
				fmt.Sprintf("method %s collides with field '%s'", name, owner))
		}
		owners[name] = m.Name
		names[m.Name] = name
	}
	return names, nil
}

// Common initialisms that should be all caps in Go
var initialisms = map[string]string{
	"id":    "ID",
	"url":   "URL",
	"uri":   "URI",
	"uuid":  "UUID",
	"api":   "API",
	"http":  "HTTP",
	"https": "HTTPS",
	"json":  "JSON",
	"xml":   "XML",
	"html":  "HTML",
	"css":   "CSS",
	"sql":   "SQL",
	"ip":    "IP",
	"tcp":   "TCP",
	"udp":   "UDP",
}

// toGoFieldName converts a field or record name to PascalCase
func toGoFieldName(name string) string {
	words := strutil.Words(name)
	for i, word := range words {
		if upper, ok := initialisms[strings.ToLower(word)]; ok {
			words[i] = upper
		} else {
			words[i] = strings.ToUpper(word[0:1]) + word[1:]
		}
	}
	return strings.Join(words, "")
}

// receiverName is the lower-cased first letter of a type name
func receiverName(typeName string) string {
	if typeName == "" {
		return "v"
	}
	r := strings.ToLower(typeName[0:1])
	if r == "_" {
		return "v"
	}
	return r
}
