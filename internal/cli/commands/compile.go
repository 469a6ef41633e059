package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/traitenum/traitenum/internal/compiler/metadata"
	"github.com/traitenum/traitenum/internal/store"
)

func newSchemaCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file>...",
		Short: "Compile schema declarations into models",
		Long: `Compile every schema declared in the given files.

Each schema is validated, its model is written to the configured store
and a Go interface is generated next to the declaration file. Enums in
the same files are compiled too, against the models already stored.`,
		Example: `  # Compile one declaration file
  traitenum schema family/schemas.traitenum

  # Report errors as JSON
  traitenum schema --json family/schemas.traitenum`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, opts, args, nil)
		},
	}
}

func newDeriveCommand(opts *options) *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "derive <file>...",
		Short: "Compile enums against their schema models",
		Long: `Compile every enum declared in the given files.

Each enum loads the model of the schema it names, resolves the value of
every field for every record and generates the accessors next to the
declaration file. Models come from the configured store, or from a single
model artifact with --model.`,
		Example: `  # Resolve against the project model store
  traitenum derive family/enums.traitenum

  # Resolve against a model artifact
  traitenum derive --model ParentTrait.tem family/enums.traitenum`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelPath == "" {
				return runFiles(cmd, opts, args, nil)
			}

			models, err := loadArtifact(cmd, modelPath)
			if err != nil {
				return err
			}
			return runFiles(cmd, opts, args, models)
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model artifact to resolve enums against")

	return cmd
}

// loadArtifact reads a model artifact into a store holding only that model
func loadArtifact(cmd *cobra.Command, path string) (store.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	schema, err := metadata.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}

	models := store.NewMemoryStore()
	if err := models.Put(cmd.Context(), schema.Identifier, data); err != nil {
		return nil, err
	}
	return models, nil
}

// runFiles builds the declarations of files. A nil models opens the
// configured store.
func runFiles(cmd *cobra.Command, opts *options, files []string, models store.Store) error {
	p, err := opts.openProject(cmd, models, false)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.system.BuildFiles(cmd.Context(), files)
	if err != nil {
		return err
	}
	p.logger.Debug("files compiled",
		zap.Strings("files", files),
		zap.Bool("success", result.Success),
	)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return opts.report(cmd, result, cwd)
}
