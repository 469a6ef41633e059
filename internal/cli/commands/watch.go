package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/traitenum/traitenum/internal/cli/ui"
	"github.com/traitenum/traitenum/internal/tooling/build"
	"github.com/traitenum/traitenum/internal/watch"
)

func newWatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the project whenever a declaration changes",
		Long: `Build the project, then watch its declaration files.

Every batch of changes rebuilds the changed files and the enums of every
schema they declare. Failed builds are reported and watching goes on.
Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.openProject(cmd, nil, false)
			if err != nil {
				return err
			}
			defer p.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ic := watch.NewIncrementalCompiler(p.system, watchReporter(cmd, opts, p.cfg.Root), p.logger)

			info := color.New(color.FgCyan)
			if opts.noColor {
				info.DisableColor()
			}
			info.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", p.cfg.Root)

			return watch.Run(ctx, p.cfg.WatchOptions(), ic, p.logger)
		},
	}
}

// watchReporter prints the outcome of every build watch mode runs
func watchReporter(cmd *cobra.Command, opts *options, root string) watch.Reporter {
	return func(changed []string, result *build.BuildResult, err error) {
		out := cmd.ErrOrStderr()
		stamp := time.Now().Format("15:04:05")

		if err != nil {
			ui.WriteError(out, ui.ErrorOptions{
				Level:   ui.ErrorLevelError,
				Context: "BUILD ERROR",
				Problem: err.Error(),
				NoColor: opts.noColor,
			})
			return
		}

		if len(changed) > 0 && opts.verbose {
			for _, path := range changed {
				fmt.Fprintf(out, "[%s] changed %s\n", stamp, relativeTo(root, path))
			}
		}
		if reportErr := opts.report(cmd, result, root); reportErr != nil {
			fmt.Fprintf(out, "[%s] %v\n", stamp, reportErr)
		}
	}
}
