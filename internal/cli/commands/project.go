package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/traitenum/traitenum/internal/cli/config"
	"github.com/traitenum/traitenum/internal/cli/ui"
	"github.com/traitenum/traitenum/internal/model"
	"github.com/traitenum/traitenum/internal/store"
	"github.com/traitenum/traitenum/internal/tooling/build"
)

// project is the configuration, model store and build system a command
// works with
type project struct {
	cfg    *config.Config
	models store.Store
	system *build.System
	logger *zap.Logger
}

func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFrom(o.dir)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), o.noColor))
		return nil, err
	}
	return cfg, nil
}

// openProject loads the configuration and opens the configured store, or
// uses models when it is not nil
func (o *options) openProject(cmd *cobra.Command, models store.Store, dryRun bool) (*project, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(o.verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if models == nil {
		models, err = store.Open(cfg.StoreConfig(), logger)
		if err != nil {
			logger.Sync()
			return nil, fmt.Errorf("failed to open model store: %w", err)
		}
	}

	opts := cfg.BuildOptions()
	opts.DryRun = dryRun
	system, err := build.NewSystem(opts, models, logger)
	if err != nil {
		models.Close()
		logger.Sync()
		return nil, err
	}

	return &project{cfg: cfg, models: models, system: system, logger: logger}, nil
}

func (p *project) Close() error {
	defer p.logger.Sync()
	return p.models.Close()
}

// report prints the diagnostics and summary of a build. It returns
// ErrBuildFailed when the build reported errors.
func (o *options) report(cmd *cobra.Command, result *build.BuildResult, root string) error {
	if o.json {
		if err := ui.WriteDiagnostics(cmd.OutOrStdout(), result.Errors, true, o.noColor); err != nil {
			return err
		}
	} else if err := ui.WriteDiagnostics(cmd.ErrOrStderr(), result.Errors, false, o.noColor); err != nil {
		return err
	}

	if !result.Success {
		errs, _, _ := result.Errors.ErrorCount()
		return fmt.Errorf("%w with %d error(s)", ErrBuildFailed, errs)
	}
	if o.json {
		return nil
	}

	out := cmd.OutOrStdout()
	ui.WriteSuccess(out, fmt.Sprintf("Built %d schema(s) and %d enum(s) in %s",
		len(result.Schemas), len(result.Enums), result.Duration.Round(time.Millisecond)), o.noColor)

	if o.verbose {
		fmt.Fprintln(out)
		summary := ui.NewSummary(out, o.noColor)
		summary.Add("Build ID", result.BuildID)
		summary.Add("Files parsed", result.FilesParsed)
		summary.Add("Cache hits", result.CacheHits)
		summary.Render()

		fmt.Fprintln(out)
		table := ui.NewTable(out, []ui.Column{
			{Title: "KIND", Style: ui.StyleMuted},
			{Title: "IDENTIFIER", Style: ui.StyleIdentifier},
		}, o.noColor)
		addIdentifiers(table, "schema", result.Schemas)
		addIdentifiers(table, "enum", result.Enums)
		table.Render()
	}

	if len(result.Generated) > 0 {
		fmt.Fprintln(out)
		for _, path := range result.Generated {
			fmt.Fprintf(out, "  %s\n", relativeTo(root, path))
		}
	}
	return nil
}

func addIdentifiers(table *ui.Table, kind string, ids []model.Identifier) {
	for _, id := range ids {
		table.AddRow(kind, id.String())
	}
}

func relativeTo(root, path string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(abs, path); err == nil {
		return rel
	}
	return path
}
