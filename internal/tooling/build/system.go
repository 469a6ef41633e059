// Package build runs the two compiler phases over a project. Every schema
// is built first and its model put in the store; every enum is then built
// against the model its declaration names.
package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/traitenum/traitenum/internal/compiler/annotation"
	"github.com/traitenum/traitenum/internal/compiler/ast"
	"github.com/traitenum/traitenum/internal/compiler/cache"
	"github.com/traitenum/traitenum/internal/compiler/codegen"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/compiler/instance"
	"github.com/traitenum/traitenum/internal/compiler/schema"
	"github.com/traitenum/traitenum/internal/model"
	"github.com/traitenum/traitenum/internal/store"
	strutil "github.com/traitenum/traitenum/internal/util/strings"
)

// GeneratedSuffix ends the name of every generated file
const GeneratedSuffix = "_traitenum.go"

// BuildOptions configures the build process
type BuildOptions struct {
	// Root is the project directory source patterns are relative to
	Root    string
	Sources []string
	Exclude []string
	// Package is used for files without a package clause. The directory
	// name is used when it is empty too.
	Package        string
	Imports        map[string]string
	ResolveImports bool
	Compress       bool
	OmitModel      bool
	MaxJobs        int
	// DryRun builds everything without writing generated files
	DryRun bool
}

// DefaultBuildOptions returns sensible defaults
func DefaultBuildOptions() *BuildOptions {
	return &BuildOptions{
		Root:     ".",
		Sources:  []string{"**/*.traitenum"},
		Exclude:  []string{"vendor/**", ".git/**"},
		Compress: true,
		MaxJobs:  runtime.NumCPU(),
	}
}

// BuildResult contains information about the build
type BuildResult struct {
	BuildID     string
	Success     bool
	Duration    time.Duration
	FilesParsed int
	CacheHits   int
	Schemas     []model.Identifier
	Enums       []model.Identifier
	// Generated lists the files written, or that would be written on a dry run
	Generated []string
	// Errors holds the failure that stopped the build plus every warning
	Errors cerrors.ErrorList
}

// System coordinates the entire build process. Builds are serialized; the
// units of one phase run in parallel.
type System struct {
	options     *BuildOptions
	models      store.Store
	coordinator *cache.Coordinator
	logger      *zap.Logger
	mu          sync.Mutex
}

// NewSystem creates a new build system
func NewSystem(opts *BuildOptions, models store.Store, logger *zap.Logger) (*System, error) {
	if opts == nil {
		opts = DefaultBuildOptions()
	}
	if models == nil {
		return nil, fmt.Errorf("a model store is required")
	}
	if len(opts.Sources) == 0 {
		return nil, fmt.Errorf("no source patterns configured")
	}
	if opts.MaxJobs < 1 {
		opts.MaxJobs = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &System{
		options:     opts,
		models:      models,
		coordinator: cache.NewCoordinator(),
		logger:      logger,
	}, nil
}

// Options returns the options the system was created with
func (s *System) Options() *BuildOptions {
	return s.options
}

// unit is one declaration built by a phase
type unit struct {
	path string
	pkg  string
	decl *ast.SchemaDecl
	enum *ast.EnumDecl
}

// run is the state of one build
type run struct {
	id     string
	logger *zap.Logger
	result *BuildResult
	mu     sync.Mutex
}

func (r *run) record(errs cerrors.ErrorList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, err := range errs {
		if err.Severity != cerrors.SeverityError {
			r.result.Errors = append(r.result.Errors, err)
		}
	}
}

func (r *run) built(id model.Identifier, isSchema bool, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if isSchema {
		r.result.Schemas = append(r.result.Schemas, id)
	} else {
		r.result.Enums = append(r.result.Enums, id)
	}
	r.result.Generated = append(r.result.Generated, path)
}

// Build performs a full build of every source file
func (s *System) Build(ctx context.Context) (*BuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := FindSourceFiles(s.options.Root, s.options.Sources, s.options.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to find source files: %w", err)
	}
	s.coordinator.Forget(files)

	return s.build(ctx, files, nil)
}

// IncrementalBuild rebuilds the changed files and every file implementing
// a schema they declare. Models of untouched schemas come from the store.
func (s *System) IncrementalBuild(ctx context.Context, changed []string) (*BuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Dependents of deleted files are only known before Forget
	affected := s.coordinator.Affected(changed)

	files, err := FindSourceFiles(s.options.Root, s.options.Sources, s.options.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to find source files: %w", err)
	}
	s.coordinator.Forget(files)

	return s.build(ctx, files, func() []string {
		// New files have no edges until they are parsed
		return append(affected, s.coordinator.Affected(changed)...)
	})
}

// BuildFiles builds every declaration in files, ignoring the source
// patterns. Enums resolve their schemas against the models already stored.
func (s *System) BuildFiles(ctx context.Context, files []string) (*BuildResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(files) == 0 {
		return nil, fmt.Errorf("no files to build")
	}

	seen := make(map[string]bool, len(files))
	abs := make([]string, 0, len(files))
	for _, file := range files {
		path, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		if !seen[path] {
			seen[path] = true
			abs = append(abs, path)
		}
	}
	sort.Strings(abs)

	return s.build(ctx, abs, nil)
}

// build parses files and builds the targets, all of files when targets is nil
func (s *System) build(ctx context.Context, files []string, targets func() []string) (*BuildResult, error) {
	r := &run{
		id:     uuid.NewString(),
		result: &BuildResult{},
	}
	r.result.BuildID = r.id
	r.logger = s.logger.With(zap.String("build_id", r.id))

	start := time.Now()
	finish := func(success bool) *BuildResult {
		r.result.Success = success
		r.result.Duration = time.Since(start)
		sortIdentifiers(r.result.Schemas)
		sortIdentifiers(r.result.Enums)
		sort.Strings(r.result.Generated)

		fields := []zap.Field{
			zap.Duration("duration", r.result.Duration),
			zap.Int("schemas", len(r.result.Schemas)),
			zap.Int("enums", len(r.result.Enums)),
		}
		if success {
			r.logger.Info("build finished", fields...)
		} else {
			r.logger.Warn("build failed", append(fields, zap.Int("errors", len(r.result.Errors)))...)
		}
		return r.result
	}

	r.logger.Info("build started", zap.Int("files", len(files)))

	results, metrics := s.coordinator.ParseFiles(files)
	r.result.FilesParsed = metrics.TotalFiles
	r.result.CacheHits = metrics.CacheHits

	programs := make(map[string]*ast.Program, len(results))
	var syntax cerrors.ErrorList
	for _, res := range results {
		if res.Err != nil {
			return nil, res.Err
		}
		syntax = append(syntax, res.Diagnostics...)
		programs[res.Path] = res.Program
	}
	if syntax.HasErrors() {
		r.result.Errors = append(r.result.Errors, syntax...)
		return finish(false), nil
	}

	wanted := make(map[string]bool, len(files))
	if targets == nil {
		for _, file := range files {
			wanted[file] = true
		}
	} else {
		for _, file := range targets() {
			if _, ok := programs[file]; ok {
				wanted[file] = true
			}
		}
	}

	schemas, enums, duplicates := s.plan(files, programs, wanted)
	if duplicates.HasErrors() {
		r.result.Errors = append(r.result.Errors, duplicates...)
		return finish(false), nil
	}

	r.logger.Debug("build planned",
		zap.Int("targets", len(wanted)),
		zap.Int("schemas", len(schemas)),
		zap.Int("enums", len(enums)),
	)

	phases := []struct {
		name  string
		units []unit
		fn    func(context.Context, *run, unit) error
	}{
		{"schema", schemas, s.buildSchema},
		{"instance", enums, s.buildEnum},
	}
	for _, phase := range phases {
		if err := s.runPhase(ctx, r, phase.units, phase.fn); err != nil {
			var list cerrors.ErrorList
			if errors.As(err, &list) {
				// Warnings of the failed unit were recorded already
				for _, e := range list {
					if e.Severity == cerrors.SeverityError {
						r.result.Errors = append(r.result.Errors, e)
					}
				}
				return finish(false), nil
			}
			return nil, fmt.Errorf("%s phase: %w", phase.name, err)
		}
	}

	return finish(true), nil
}

// plan collects the units of both phases in file order and reports
// declarations sharing an identifier across the whole project
func (s *System) plan(files []string, programs map[string]*ast.Program, wanted map[string]bool) ([]unit, []unit, cerrors.ErrorList) {
	var schemas, enums []unit
	var errs cerrors.ErrorList
	declared := make(map[string]string)

	claim := func(kind, id, path string, loc ast.SourceLocation) bool {
		if _, exists := declared[id]; exists {
			errs = append(errs, cerrors.NewDuplicateDeclaration(loc, kind, id).WithFile(path))
			return false
		}
		declared[id] = path
		return true
	}

	for _, path := range files {
		program := programs[path]
		pkg := s.packageFor(path, program)

		for _, decl := range program.Schemas {
			id := cache.SchemaIdentifier(decl, pkg)
			if claim("schema", id, path, decl.Loc) && wanted[path] {
				schemas = append(schemas, unit{path: path, pkg: pkg, decl: decl})
			}
		}
		for _, decl := range program.Enums {
			id := annotation.Qualify(&ast.PathNode{Segments: []string{decl.Name}}, pkg).String()
			if claim("enum", id, path, decl.Loc) && wanted[path] {
				enums = append(enums, unit{path: path, pkg: pkg, enum: decl})
			}
		}
	}

	return schemas, enums, errs
}

// packageFor names the package generated next to path
func (s *System) packageFor(path string, program *ast.Program) string {
	if program.Package != "" {
		return program.Package
	}
	if s.options.Package != "" {
		return s.options.Package
	}
	return filepath.Base(filepath.Dir(path))
}

func (s *System) codegenOptions(pkg string) codegen.Options {
	return codegen.Options{
		Package:        pkg,
		Imports:        s.options.Imports,
		ResolveImports: s.options.ResolveImports,
		OmitModel:      s.options.OmitModel,
	}
}

// runPhase builds units in parallel. The first failure cancels the rest.
func (s *System) runPhase(ctx context.Context, r *run, units []unit, fn func(context.Context, *run, unit) error) error {
	p := pool.New().
		WithMaxGoroutines(s.options.MaxJobs).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for _, u := range units {
		u := u
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, r, u)
		})
	}
	return p.Wait()
}

func (s *System) buildSchema(ctx context.Context, r *run, u unit) error {
	start := time.Now()
	out, errs := schema.Build(u.decl, schema.Options{
		Compress: s.options.Compress,
		Codegen:  s.codegenOptions(u.pkg),
	})
	errs = errs.WithFile(u.path)
	r.record(errs)
	if errs.HasErrors() {
		return errs
	}

	id := out.Schema.Identifier
	if err := s.models.Put(ctx, id, out.Model); err != nil {
		return fmt.Errorf("failed to store model %s: %w", id, err)
	}

	path, err := s.write(u.path, u.decl.Name, out.Source)
	if err != nil {
		return err
	}
	r.built(id, true, path)

	r.logger.Debug("schema built",
		zap.String("file", u.path),
		zap.Stringer("identifier", id),
		zap.Int("model_bytes", len(out.Model)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (s *System) buildEnum(ctx context.Context, r *run, u unit) error {
	start := time.Now()
	data, err := s.lookupModel(ctx, u)
	if err != nil {
		return err
	}

	out, errs := instance.BuildFromModel(data, u.enum, instance.Options{
		Codegen: s.codegenOptions(u.pkg),
	})
	errs = errs.WithFile(u.path)
	r.record(errs)
	if errs.HasErrors() {
		return errs
	}

	path, err := s.write(u.path, u.enum.Name, out.Source)
	if err != nil {
		return err
	}
	r.built(out.Instance.Identifier, false, path)

	r.logger.Debug("enum built",
		zap.String("file", u.path),
		zap.Stringer("identifier", out.Instance.Identifier),
		zap.Stringer("schema", out.Instance.Schema),
		zap.Int("records", len(out.Instance.Variants)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// lookupModel fetches the model an enum declares, trying the qualified form
// of its schema reference before the written one
func (s *System) lookupModel(ctx context.Context, u unit) ([]byte, error) {
	decl := u.enum
	if decl.Schema == nil {
		return nil, cerrors.ErrorList{cerrors.NewMissingSchema(decl.Loc, decl.Name).WithFile(u.path)}
	}

	candidates := []model.Identifier{annotation.Qualify(decl.Schema, u.pkg)}
	if written := model.FromSegments(decl.Schema.Segments); !written.Equal(candidates[0]) {
		candidates = append(candidates, written)
	}

	for _, id := range candidates {
		data, err := s.models.Get(ctx, id)
		if err == nil {
			return data, nil
		}
		if !store.IsNotFound(err) {
			return nil, fmt.Errorf("failed to load model %s: %w", id, err)
		}
	}

	return nil, cerrors.ErrorList{
		cerrors.NewModelNotFound(decl.Loc, decl.Schema.String()).WithFile(u.path),
	}
}

// write places generated source next to the declaration file
func (s *System) write(source, name string, data []byte) (string, error) {
	path := OutputPath(source, name)
	if s.options.DryRun {
		return path, nil
	}
	if _, err := writeIfChanged(path, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// OutputPath is the generated file of declaration name in source
func OutputPath(source, name string) string {
	return filepath.Join(filepath.Dir(source), strutil.ToSnakeCase(name)+GeneratedSuffix)
}

func sortIdentifiers(ids []model.Identifier) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
