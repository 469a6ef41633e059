package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
	"github.com/traitenum/traitenum/internal/compiler/parser"
)

// ParseMetrics tracks performance metrics for one ParseFiles call
type ParseMetrics struct {
	TotalFiles      int
	CacheHits       int
	CacheMisses     int
	ParsingDuration time.Duration
	TotalDuration   time.Duration
	StartTime       time.Time
	EndTime         time.Time
}

// CacheHitRate returns the cache hit rate as a percentage
func (m *ParseMetrics) CacheHitRate() float64 {
	if m.TotalFiles == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(m.TotalFiles) * 100.0
}

// ParseResult is the outcome of parsing one file. Err is set when the file
// cannot be read; syntax errors are reported in Diagnostics.
type ParseResult struct {
	Path        string
	Program     *ast.Program
	Diagnostics cerrors.ErrorList
	Source      string
	Hash        string
	Err         error
	Cached      bool
}

// Coordinator parses declaration files through the AST cache and keeps the
// dependency graph current
type Coordinator struct {
	astCache *ASTCache
	depGraph *DependencyGraph
	hasher   *FileHasher

	// Every file parsed since the last Clear
	known map[string]bool

	metrics *ParseMetrics
	mu      sync.Mutex
}

// NewCoordinator creates a new parse coordinator
func NewCoordinator() *Coordinator {
	return &Coordinator{
		astCache: NewASTCache(),
		depGraph: NewDependencyGraph(),
		hasher:   NewFileHasher(),
		known:    make(map[string]bool),
		metrics:  &ParseMetrics{},
	}
}

// ParseFiles parses every path in parallel, reusing cached programs whose
// content hash is unchanged. Results keep the order of paths.
func (c *Coordinator) ParseFiles(paths []string) ([]*ParseResult, *ParseMetrics) {
	c.mu.Lock()
	c.metrics = &ParseMetrics{
		TotalFiles: len(paths),
		StartTime:  time.Now(),
	}
	c.mu.Unlock()

	results := iter.Map(paths, func(path *string) *ParseResult {
		return c.parseFile(*path)
	})

	c.mu.Lock()
	c.metrics.EndTime = time.Now()
	c.metrics.TotalDuration = c.metrics.EndTime.Sub(c.metrics.StartTime)
	metrics := *c.metrics
	c.mu.Unlock()

	return results, &metrics
}

// parseFile parses a single file with caching
func (c *Coordinator) parseFile(path string) *ParseResult {
	content, hash, err := c.hasher.ReadFile(path)
	if err != nil {
		return &ParseResult{
			Path: path,
			Err:  fmt.Errorf("failed to read %s: %w", path, err),
		}
	}

	if cached, hit := c.astCache.Lookup(path, hash); hit {
		c.mu.Lock()
		c.metrics.CacheHits++
		c.mu.Unlock()

		return &ParseResult{
			Path:        path,
			Program:     cached.Program,
			Diagnostics: cached.Diagnostics,
			Source:      string(content),
			Hash:        hash,
			Cached:      true,
		}
	}

	start := time.Now()
	program, diagnostics := parser.ParseFile(path, string(content))
	duration := time.Since(start)

	c.mu.Lock()
	c.metrics.CacheMisses++
	c.metrics.ParsingDuration += duration
	c.known[path] = true
	c.mu.Unlock()

	c.astCache.Set(path, hash, program, diagnostics)
	c.depGraph.BuildDependencies(path, program)

	return &ParseResult{
		Path:        path,
		Program:     program,
		Diagnostics: diagnostics,
		Source:      string(content),
		Hash:        hash,
	}
}

// InvalidateFile drops a file from the cache and returns it together with
// every file that implements a schema it declares
func (c *Coordinator) InvalidateFile(path string) []string {
	dependents := c.depGraph.GetTransitiveDependents(path)

	c.astCache.Invalidate(path)
	for _, dep := range dependents {
		c.astCache.Invalidate(dep)
	}

	return append([]string{path}, dependents...)
}

// Affected returns the changed files plus their transitive dependents,
// sorted and without duplicates
func (c *Coordinator) Affected(changed []string) []string {
	seen := make(map[string]bool)
	for _, path := range changed {
		seen[path] = true
		for _, dep := range c.depGraph.GetTransitiveDependents(path) {
			seen[dep] = true
		}
	}

	result := make([]string, 0, len(seen))
	for path := range seen {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Forget removes every trace of files no longer on disk
func (c *Coordinator) Forget(current []string) {
	c.astCache.Retain(current)

	wanted := make(map[string]bool, len(current))
	for _, path := range current {
		wanted[path] = true
	}

	c.mu.Lock()
	var gone []string
	for path := range c.known {
		if !wanted[path] {
			gone = append(gone, path)
			delete(c.known, path)
		}
	}
	c.mu.Unlock()

	for _, path := range gone {
		c.depGraph.RemoveFile(path)
	}
}

// Graph exposes the dependency graph
func (c *Coordinator) Graph() *DependencyGraph {
	return c.depGraph
}

// GetMetrics returns the metrics of the last ParseFiles call
func (c *Coordinator) GetMetrics() *ParseMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	metrics := *c.metrics
	return &metrics
}

// Clear clears all caches and the dependency graph
func (c *Coordinator) Clear() {
	c.astCache.InvalidateAll()
	c.depGraph.Clear()
	c.mu.Lock()
	c.known = make(map[string]bool)
	c.metrics = &ParseMetrics{}
	c.mu.Unlock()
}
