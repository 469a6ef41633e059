package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/model"
)

func path(segments ...string) *ast.PathNode {
	return &ast.PathNode{Segments: segments}
}

func lit(kind ast.LiteralKind, text string) *ast.LiteralNode {
	return &ast.LiteralNode{Kind: kind, Text: text, Bool: text == "true"}
}

func TestCheckNamespace(t *testing.T) {
	schemaAnnotation := &ast.Annotation{Path: []string{"enumtrait", "Str"}}
	recordAnnotation := &ast.Annotation{Path: []string{"traitenum"}}
	foreign := &ast.Annotation{Path: []string{"serde", "rename"}}

	assert.Nil(t, CheckNamespace(schemaAnnotation, SchemaNamespace))
	assert.Nil(t, CheckNamespace(recordAnnotation, RecordNamespace))

	err := CheckNamespace(recordAnnotation, SchemaNamespace)
	require.NotNil(t, err)
	assert.Equal(t, cerrors.ErrWrongNamespace, err.Code)

	err = CheckNamespace(foreign, RecordNamespace)
	require.NotNil(t, err)
	assert.Equal(t, cerrors.ErrUnknownNamespace, err.Code)
}

func TestSettings(t *testing.T) {
	a := &ast.Annotation{
		Path: []string{"enumtrait", "Num"},
		Args: []ast.ValueNode{
			&ast.CallNode{Name: "preset", Args: []ast.ValueNode{path("Serial")}},
			&ast.CallNode{Name: "start", Args: []ast.ValueNode{lit(ast.LiteralInt, "3")}},
		},
	}

	settings, err := Settings(a)
	require.Nil(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "preset", settings[0].Name)
	assert.Equal(t, "start", settings[1].Name)

	arg, argErr := settings[1].Arg()
	require.NoError(t, argErr)
	assert.Equal(t, "3", arg.(*ast.LiteralNode).Text)

	a.Args = append(a.Args, path("Variant"))
	_, err = Settings(a)
	require.NotNil(t, err)
	assert.Equal(t, cerrors.ErrMalformedAnnotation, err.Code)
}

func TestSettingArg(t *testing.T) {
	_, err := Setting{Name: "default"}.Arg()
	assert.ErrorIs(t, err, model.ErrInvalidLiteral)

	_, err = Setting{Name: "default", Args: []ast.ValueNode{path("A"), path("B")}}.Arg()
	assert.ErrorIs(t, err, model.ErrInvalidLiteral)
}

func TestQualify(t *testing.T) {
	assert.Equal(t, "family::ChildTrait", Qualify(path("ChildTrait"), "family").String())
	assert.Equal(t, "other::ChildTrait", Qualify(path("other", "ChildTrait"), "family").String())
	assert.Equal(t, "ChildTrait", Qualify(path("ChildTrait"), "").String())
}

func TestName(t *testing.T) {
	name, err := Name(path("OneToMany"))
	require.NoError(t, err)
	assert.Equal(t, "OneToMany", name)

	_, err = Name(path("a", "B"))
	assert.ErrorIs(t, err, model.ErrInvalidLiteral)

	_, err = Name(lit(ast.LiteralString, "x"))
	assert.ErrorIs(t, err, model.ErrInvalidLiteral)
}

func TestValue(t *testing.T) {
	rps := model.NewIdentifier(nil, "RPS")
	u8, _ := model.Partial("", model.ReturnU8, nil)
	enum, _ := model.Partial("", model.ReturnType, &rps)
	opaque, _ := model.Partial("Type", model.ReturnType, &rps)
	slot := model.NewIdentifier(nil, "ParentType")
	rel, _ := model.Partial("", model.ReturnDyn, &slot)
	str, _ := model.Partial("", model.ReturnStr, nil)
	flag, _ := model.Partial("", model.ReturnBool, nil)

	tests := []struct {
		name string
		def  model.AttributeDefinition
		node ast.ValueNode
		want string
		err  error
	}{
		{name: "bool", def: flag, node: lit(ast.LiteralBool, "true"), want: "true"},
		{name: "string", def: str, node: lit(ast.LiteralString, "hi"), want: `"hi"`},
		{name: "number", def: u8, node: lit(ast.LiteralInt, "255"), want: "255"},
		{name: "number out of range", def: u8, node: lit(ast.LiteralInt, "256"), err: model.ErrOutOfRange},
		{name: "float for integer", def: u8, node: lit(ast.LiteralFloat, "1.5"), err: model.ErrInvalidLiteral},
		{name: "bare enum member", def: enum, node: path("Rock"), want: "RPS::Rock"},
		{name: "qualified enum member", def: enum, node: path("RPS", "Paper"), want: "RPS::Paper"},
		{name: "type member", def: opaque, node: path("Scissors"), want: "RPS::Scissors"},
		{name: "relation", def: rel, node: path("Parents", "Alpha"), want: "Parents::Alpha"},
		{name: "relation without record", def: rel, node: path("Parents"), err: model.ErrInvalidIdentifier},
		{name: "string for bool", def: flag, node: lit(ast.LiteralString, "true"), err: model.ErrInvalidLiteral},
		{name: "name for string", def: str, node: path("hi"), err: model.ErrInvalidLiteral},
		{name: "literal for enum", def: enum, node: lit(ast.LiteralInt, "1"), err: model.ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Value(tt.def, tt.node)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, `"x"`, Describe(lit(ast.LiteralString, "x")))
	assert.Equal(t, "false", Describe(lit(ast.LiteralBool, "false")))
	assert.Equal(t, "a::B", Describe(path("a", "B")))
	assert.Equal(t, "preset(...)", Describe(&ast.CallNode{Name: "preset"}))
}
