package commands

import (
	"github.com/spf13/cobra"
)

func newBuildCommand(opts *options) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile every schema and enum in the project",
		Long: `Compile every declaration file matched by the configured sources.

The build process:
  1. Discovery - find declaration files under the project root
  2. Parsing - parse changed files, reuse cached trees for the rest
  3. Schema phase - compile every schema and store its model
  4. Enum phase - compile every enum against the stored models
  5. Output - write generated Go files next to their declarations`,
		Example: `  # Build with default settings
  traitenum build

  # Build with verbose output and debug logs
  traitenum build --verbose

  # Check the project without writing generated files
  traitenum build --dry-run

  # Output errors in JSON format
  traitenum build --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.openProject(cmd, nil, dryRun)
			if err != nil {
				return err
			}
			defer p.Close()

			result, err := p.system.Build(cmd.Context())
			if err != nil {
				return err
			}
			return opts.report(cmd, result, p.cfg.Root)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build without writing generated files")

	return cmd
}
