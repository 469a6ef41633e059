package instance

import (
	"github.com/traitenum/traitenum/internal/compiler/ast"
	"github.com/traitenum/traitenum/internal/compiler/codegen"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/compiler/metadata"
	"github.com/traitenum/traitenum/internal/model"
)

// Options controls an instance build
type Options struct {
	Codegen codegen.Options
}

// Output is everything an instance build produces
type Output struct {
	Instance *model.Instance
	// Source is the generated enum implementing the schema
	Source []byte
}

// Build resolves decl against schema and generates its Go implementation.
// Names are qualified with opts.Codegen.Package.
func Build(schema *model.Schema, decl *ast.EnumDecl, opts Options) (*Output, cerrors.ErrorList) {
	resolved, errs := Resolve(schema, decl, opts.Codegen.Package)
	if errs.HasErrors() {
		return nil, errs
	}

	source, err := codegen.NewGenerator(opts.Codegen).GenerateInstance(schema, resolved)
	if err != nil {
		return nil, append(errs, cerrors.Anchor(err, decl.Loc))
	}

	return &Output{Instance: resolved, Source: source}, errs
}

// BuildFromModel decodes a model artifact and builds decl against it. This
// is the whole second phase: the artifact is its only link to the first.
func BuildFromModel(data []byte, decl *ast.EnumDecl, opts Options) (*Output, cerrors.ErrorList) {
	schema, err := metadata.Deserialize(data)
	if err != nil {
		name := decl.Name
		if decl.Schema != nil {
			name = decl.Schema.String()
		}
		return nil, cerrors.ErrorList{cerrors.NewUnreadableModel(decl.Loc, name, err)}
	}
	return Build(schema, decl, opts)
}
