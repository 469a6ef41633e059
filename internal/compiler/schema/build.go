package schema

import (
	"github.com/traitenum/traitenum/internal/compiler/ast"
	"github.com/traitenum/traitenum/internal/compiler/codegen"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/compiler/metadata"
	"github.com/traitenum/traitenum/internal/model"
)

// Options controls a schema build
type Options struct {
	// Compress zstd-compresses the model payload
	Compress bool
	Codegen  codegen.Options
}

// Output is everything a schema build produces
type Output struct {
	Schema *model.Schema
	// Model is the serialized schema, the only input of the second phase
	Model []byte
	// Source is the generated Go interface with the model embedded
	Source []byte
}

// Build compiles decl, serializes the model and generates the interface.
// Names are qualified with opts.Codegen.Package.
func Build(decl *ast.SchemaDecl, opts Options) (*Output, cerrors.ErrorList) {
	compiled, errs := Compile(decl, opts.Codegen.Package)
	if errs.HasErrors() {
		return nil, errs
	}

	data, err := metadata.Serialize(compiled, metadata.Options{Compress: opts.Compress})
	if err != nil {
		return nil, append(errs, cerrors.NewCodeGenFailed(decl.Loc, err.Error()).WithCause(err))
	}

	source, err := codegen.NewGenerator(opts.Codegen).GenerateSchema(compiled, data)
	if err != nil {
		return nil, append(errs, cerrors.Anchor(err, decl.Loc))
	}

	return &Output{Schema: compiled, Model: data, Source: source}, errs
}
