package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/traitenum/traitenum/internal/tooling/build"
)

// Builder runs full and incremental project builds
type Builder interface {
	Build(ctx context.Context) (*build.BuildResult, error)
	IncrementalBuild(ctx context.Context, changed []string) (*build.BuildResult, error)
}

// Reporter receives the outcome of every build watch mode runs
type Reporter func(changed []string, result *build.BuildResult, err error)

// IncrementalCompiler handles incremental compilation of changed files
type IncrementalCompiler struct {
	builder  Builder
	reporter Reporter
	logger   *zap.Logger

	// Last successful compile time
	lastCompile time.Time
	mu          sync.Mutex
}

// NewIncrementalCompiler creates a new incremental compiler
func NewIncrementalCompiler(builder Builder, reporter Reporter, logger *zap.Logger) *IncrementalCompiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = func([]string, *build.BuildResult, error) {}
	}
	return &IncrementalCompiler{
		builder:  builder,
		reporter: reporter,
		logger:   logger,
	}
}

// InitialBuild builds the whole project once before watching starts
func (ic *IncrementalCompiler) InitialBuild(ctx context.Context) (*build.BuildResult, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	result, err := ic.builder.Build(ctx)
	ic.finish(nil, result, err)
	return result, err
}

// IncrementalBuild compiles only the changed files and their dependents
func (ic *IncrementalCompiler) IncrementalBuild(ctx context.Context, changed []string) (*build.BuildResult, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	ic.logger.Info("rebuilding", zap.Strings("changed", changed))
	result, err := ic.builder.IncrementalBuild(ctx, changed)
	ic.finish(changed, result, err)
	return result, err
}

func (ic *IncrementalCompiler) finish(changed []string, result *build.BuildResult, err error) {
	if err == nil && result != nil && result.Success {
		ic.lastCompile = time.Now()
	}
	ic.reporter(changed, result, err)
}

// LastCompile returns the time of the last successful build
func (ic *IncrementalCompiler) LastCompile() time.Time {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.lastCompile
}

// Run builds the project, then rebuilds it on every batch of changes until
// ctx is done. Failed builds are reported and watching goes on.
func Run(ctx context.Context, opts Options, ic *IncrementalCompiler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := ic.InitialBuild(ctx); err != nil {
		logger.Warn("initial build failed", zap.Error(err))
	}

	watcher, err := NewFileWatcher(opts, func(files []string) error {
		if _, err := ic.IncrementalBuild(ctx, files); err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
		return nil
	}, logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		watcher.Stop()
		return err
	}
	logger.Info("watching for changes", zap.String("root", opts.Root))

	<-ctx.Done()
	return watcher.Stop()
}
