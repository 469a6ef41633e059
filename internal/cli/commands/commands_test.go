package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/traitenum/traitenum/internal/model"
	"github.com/traitenum/traitenum/internal/store"
)

const familySchemas = `package family

schema ParentTrait {
    type ChildType: ChildTrait

    @enumtrait::Str(preset(Variant))
    name: str

    @enumtrait::Rel(nature(OneToMany), dispatch(Dynamic))
    children: iter dyn ChildType
}

schema ChildTrait {
    type ParentType: ParentTrait

    @enumtrait::Num(preset(Serial), start(3), increment(2))
    serial: u32

    parent: dyn ParentType
}
`

const familyEnums = `package family

@traitenum(children(Kids))
enum Parents: ParentTrait { Alpha }

@traitenum(parent(Parents::Alpha))
enum Kids: ChildTrait { One, Two }
`

const colorSchema = `package colors

schema Color {
    @enumtrait::Str(preset(Variant, snake))
    label: str

    @enumtrait::Bool(default(true))
    primary: bool
}
`

const colorEnum = `package colors

enum Colors: Color { Red, DarkGreen }
`

func writeFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command against the project in dir
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color", "-C", dir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func modelStore(t *testing.T, dir string) store.Store {
	t.Helper()
	models, err := store.NewFileStore(filepath.Join(dir, ".traitenum", "models"))
	require.NoError(t, err)
	t.Cleanup(func() { models.Close() })
	return models
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "traitenum", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "schema", "derive", "build", "watch", "inspect", "completion"} {
		assert.Contains(t, names, expected)
	}

	for _, flag := range []string{"json", "verbose", "project", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	defer func() { Version = "dev" }()

	stdout, _, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "traitenum version: 1.0.0-test")
	assert.Contains(t, stdout, "Go version: ")
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "family/schemas.traitenum", familySchemas)
	writeFile(t, dir, "family/enums.traitenum", familyEnums)

	stdout, _, err := execute(t, dir, "build")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Built 2 schema(s) and 2 enum(s)")
	assert.Contains(t, stdout, filepath.Join("family", "kids_traitenum.go"))
	assert.FileExists(t, filepath.Join(dir, "family", "parent_trait_traitenum.go"))

	ids, err := modelStore(t, dir).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestBuildCommand_Verbose(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "family/schemas.traitenum", familySchemas)
	writeFile(t, dir, "family/enums.traitenum", familyEnums)

	stdout, _, err := execute(t, dir, "build", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Build ID:")
	assert.Contains(t, stdout, "family::Kids")
	assert.Contains(t, stdout, "schema")
}

func TestBuildCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "colors/color.traitenum", colorSchema)

	_, _, err := execute(t, dir, "build", "--dry-run")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "colors", "color_traitenum.go"))
}

func TestBuildCommand_JSONErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "colors/colors.traitenum", colorEnum)

	stdout, _, err := execute(t, dir, "build", "--json")
	require.ErrorIs(t, err, ErrBuildFailed)

	var diagnostics []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &diagnostics))
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "RES314", diagnostics[0]["code"])
}

func TestBuildCommand_SyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "colors/colors.traitenum", "schema Color {\n    label str\n}\n")

	_, stderr, err := execute(t, dir, "build")
	require.ErrorIs(t, err, ErrBuildFailed)
	assert.Contains(t, stderr, "colors.traitenum")
}

func TestBuildCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "traitenum.yml", "store:\n  kind: etcd\n")

	_, stderr, err := execute(t, dir, "build")
	require.Error(t, err)
	assert.Contains(t, stderr, "CONFIGURATION ERROR")
}

func TestSchemaThenDerive(t *testing.T) {
	dir := t.TempDir()
	schemas := writeFile(t, dir, "family/schemas.traitenum", familySchemas)
	enums := writeFile(t, dir, "family/enums.traitenum", familyEnums)

	stdout, _, err := execute(t, dir, "schema", schemas)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Built 2 schema(s) and 0 enum(s)")
	assert.NoFileExists(t, filepath.Join(dir, "family", "kids_traitenum.go"))

	stdout, _, err = execute(t, dir, "derive", enums)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Built 0 schema(s) and 2 enum(s)")
	assert.FileExists(t, filepath.Join(dir, "family", "kids_traitenum.go"))
}

func TestDeriveCommand_ModelFile(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "colors/color.traitenum", colorSchema)
	enum := writeFile(t, dir, "colors/colors.traitenum", colorEnum)

	_, _, err := execute(t, dir, "schema", schema)
	require.NoError(t, err)

	data, err := modelStore(t, dir).Get(context.Background(), model.NewIdentifier([]string{"colors"}, "Color"))
	require.NoError(t, err)
	artifact := writeFile(t, t.TempDir(), "Color.tem", string(data))

	// A fresh project with no stored models
	other := t.TempDir()
	_, _, err = execute(t, other, "derive", "--model", artifact, enum)
	require.NoError(t, err)

	generated, err := os.ReadFile(filepath.Join(dir, "colors", "colors_traitenum.go"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), `"dark_green"`)
	assert.NoDirExists(t, filepath.Join(other, ".traitenum"))
}

func TestDeriveCommand_BadModelFile(t *testing.T) {
	dir := t.TempDir()
	enum := writeFile(t, dir, "colors/colors.traitenum", colorEnum)
	artifact := writeFile(t, dir, "Color.tem", "not a model")

	_, _, err := execute(t, dir, "derive", "--model", artifact, enum)
	assert.ErrorContains(t, err, "failed to read model")
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "family/schemas.traitenum", familySchemas)
	_, _, err := execute(t, dir, "build")
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		stdout, _, err := execute(t, dir, "inspect")
		require.NoError(t, err)
		assert.Contains(t, stdout, "IDENTIFIER")
		assert.Contains(t, stdout, "family::ChildTrait")
		assert.Contains(t, stdout, "family::ParentTrait")
	})

	t.Run("list json", func(t *testing.T) {
		stdout, _, err := execute(t, dir, "inspect", "--format", "json")
		require.NoError(t, err)
		var ids []string
		require.NoError(t, json.Unmarshal([]byte(stdout), &ids))
		assert.Equal(t, []string{"family::ChildTrait", "family::ParentTrait"}, ids)
	})

	t.Run("text", func(t *testing.T) {
		stdout, _, err := execute(t, dir, "inspect", "family::ChildTrait")
		require.NoError(t, err)
		assert.Contains(t, stdout, "serial")
		assert.Contains(t, stdout, "preset(Serial) start(3) increment(2)")
		assert.Contains(t, stdout, "ParentType")
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute(t, dir, "inspect", "family::ParentTrait", "--format", "json")
		require.NoError(t, err)
		var view modelView
		require.NoError(t, json.Unmarshal([]byte(stdout), &view))
		assert.Equal(t, "family::ParentTrait", view.Identifier)
		require.Len(t, view.Fields, 2)
		assert.Equal(t, "children", view.Fields[1].Name)
		assert.Equal(t, []string{"nature(OneToMany)", "dispatch(Dynamic)"}, view.Fields[1].Settings)
		require.Len(t, view.Types, 1)
		assert.Equal(t, "OneToMany", view.Types[0].Nature)
	})

	t.Run("yaml", func(t *testing.T) {
		stdout, _, err := execute(t, dir, "inspect", "family::ParentTrait", "-f", "yaml")
		require.NoError(t, err)
		var view modelView
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &view))
		assert.Equal(t, "family::ParentTrait", view.Identifier)
	})

	t.Run("dump", func(t *testing.T) {
		stdout, _, err := execute(t, dir, "inspect", "family::ParentTrait", "-f", "dump")
		require.NoError(t, err)
		assert.Contains(t, stdout, "model.Schema")
	})

	t.Run("not found", func(t *testing.T) {
		_, stderr, err := execute(t, dir, "inspect", "family::ParentTrai")
		assert.True(t, store.IsNotFound(err))
		assert.Contains(t, stderr, "MODEL NOT FOUND")
		assert.Contains(t, stderr, "family::ParentTrait")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, dir, "inspect", "--format", "xml")
		assert.ErrorContains(t, err, "unknown format")
	})
}

// answer replaces the model prompt with one returning choice
func answer(t *testing.T, choice string) *[]string {
	t.Helper()
	var offered []string
	previous := selectModel
	selectModel = func(message string, options []string) (string, error) {
		offered = options
		return choice, nil
	}
	t.Cleanup(func() { selectModel = previous })
	return &offered
}

func TestInspectCommand_Interactive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "family/schemas.traitenum", familySchemas)
	_, _, err := execute(t, dir, "build")
	require.NoError(t, err)

	t.Run("pick from all models", func(t *testing.T) {
		offered := answer(t, "family::ChildTrait")
		stdout, _, err := execute(t, dir, "inspect", "--interactive")
		require.NoError(t, err)
		assert.Equal(t, []string{"family::ChildTrait", "family::ParentTrait"}, *offered)
		assert.Contains(t, stdout, "preset(Serial) start(3) increment(2)")
	})

	t.Run("pick a close match", func(t *testing.T) {
		offered := answer(t, "family::ParentTrait")
		stdout, stderr, err := execute(t, dir, "inspect", "family::ParentTrai", "-i", "-f", "json")
		require.NoError(t, err)
		assert.Contains(t, *offered, "family::ParentTrait")
		assert.Empty(t, stderr)

		var view modelView
		require.NoError(t, json.Unmarshal([]byte(stdout), &view))
		assert.Equal(t, "family::ParentTrait", view.Identifier)
	})

	t.Run("no close match", func(t *testing.T) {
		offered := answer(t, "family::ParentTrait")
		_, stderr, err := execute(t, dir, "inspect", "zzz::Unrelated", "-i")
		assert.True(t, store.IsNotFound(err))
		assert.Nil(t, *offered)
		assert.Contains(t, stderr, "MODEL NOT FOUND")
	})
}

func TestInspectCommand_ModelFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "colors/color.traitenum", colorSchema)
	_, _, err := execute(t, dir, "build")
	require.NoError(t, err)

	data, err := modelStore(t, dir).Get(context.Background(), model.NewIdentifier([]string{"colors"}, "Color"))
	require.NoError(t, err)
	artifact := writeFile(t, dir, "Color.tem", string(data))

	stdout, _, err := execute(t, t.TempDir(), "inspect", "--model", artifact)
	require.NoError(t, err)
	assert.Contains(t, stdout, "colors::Color")
	assert.Contains(t, stdout, "default(true)")
}

func TestCompletionCommand(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "traitenum")
}
