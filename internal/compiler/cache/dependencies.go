package cache

import (
	"sort"
	"sync"

	"github.com/traitenum/traitenum/internal/compiler/annotation"
	"github.com/traitenum/traitenum/internal/compiler/ast"
)

// FileDependency represents one declaration file in the graph
type FileDependency struct {
	Path string
	// Schemas holds the identifiers of the schemas declared in the file
	Schemas []string
	// Implements holds the schema identifiers the file's enums declare
	Implements []string
	DependsOn  []string // Files declaring schemas this file implements
	DependedBy []string // Files implementing schemas this file declares
}

// DependencyGraph tracks which files implement schemas declared elsewhere.
// A schema change has to re-derive every enum of its dependents.
type DependencyGraph struct {
	nodes map[string]*FileDependency
	// Declaring file of every schema identifier
	owners map[string]string
	mu     sync.RWMutex
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes:  make(map[string]*FileDependency),
		owners: make(map[string]string),
	}
}

// BuildDependencies records the schemas a parsed file declares and the ones
// its enums implement, then relinks the whole graph
func (dg *DependencyGraph) BuildDependencies(path string, program *ast.Program) {
	node := &FileDependency{Path: path}
	for _, schema := range program.Schemas {
		node.Schemas = append(node.Schemas, SchemaIdentifier(schema, program.Package))
	}
	for _, enum := range program.Enums {
		if enum.Schema == nil {
			continue
		}
		// The resolver accepts the written form as well as the qualified one
		written := enum.Schema.String()
		qualified := annotation.Qualify(enum.Schema, program.Package).String()
		node.Implements = appendUnique(node.Implements, qualified)
		node.Implements = appendUnique(node.Implements, written)
	}

	dg.mu.Lock()
	defer dg.mu.Unlock()

	dg.nodes[path] = node
	dg.relink()
}

// SchemaIdentifier is the identifier a schema declaration compiles to when
// its @enumtrait annotation is well formed
func SchemaIdentifier(decl *ast.SchemaDecl, pkg string) string {
	for _, a := range decl.Annotations {
		if a.Namespace() != annotation.SchemaNamespace || a.Name() != "" || len(a.Args) != 1 {
			continue
		}
		if path, ok := a.Args[0].(*ast.PathNode); ok {
			return path.String()
		}
	}
	return annotation.Qualify(&ast.PathNode{Segments: []string{decl.Name}}, pkg).String()
}

// relink recomputes every edge from the recorded declarations
func (dg *DependencyGraph) relink() {
	dg.owners = make(map[string]string)
	for path, node := range dg.nodes {
		for _, id := range node.Schemas {
			dg.owners[id] = path
		}
		node.DependsOn = node.DependsOn[:0]
		node.DependedBy = node.DependedBy[:0]
	}

	for path, node := range dg.nodes {
		for _, id := range node.Implements {
			owner, ok := dg.owners[id]
			if !ok || owner == path {
				continue
			}
			node.DependsOn = appendUnique(node.DependsOn, owner)
			dg.nodes[owner].DependedBy = appendUnique(dg.nodes[owner].DependedBy, path)
		}
	}
	for _, node := range dg.nodes {
		sort.Strings(node.DependsOn)
		sort.Strings(node.DependedBy)
	}
}

// Owner returns the file declaring the schema id
func (dg *DependencyGraph) Owner(id string) (string, bool) {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	path, ok := dg.owners[id]
	return path, ok
}

// GetDependencies returns the files that the given file depends on
func (dg *DependencyGraph) GetDependencies(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	if node, exists := dg.nodes[path]; exists {
		result := make([]string, len(node.DependsOn))
		copy(result, node.DependsOn)
		return result
	}
	return []string{}
}

// GetDependents returns the files that depend on the given file
func (dg *DependencyGraph) GetDependents(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	if node, exists := dg.nodes[path]; exists {
		result := make([]string, len(node.DependedBy))
		copy(result, node.DependedBy)
		return result
	}
	return []string{}
}

// GetTransitiveDependents returns all files that transitively depend on the
// given file, sorted
func (dg *DependencyGraph) GetTransitiveDependents(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	visited := map[string]bool{path: true}
	result := make([]string, 0)

	var visit func(string)
	visit = func(p string) {
		node, exists := dg.nodes[p]
		if !exists {
			return
		}
		for _, dependent := range node.DependedBy {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			result = append(result, dependent)
			visit(dependent)
		}
	}

	visit(path)
	sort.Strings(result)
	return result
}

// RemoveFile removes a file and its edges from the graph
func (dg *DependencyGraph) RemoveFile(path string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	if _, exists := dg.nodes[path]; exists {
		delete(dg.nodes, path)
		dg.relink()
	}
}

// Clear removes all entries from the dependency graph
func (dg *DependencyGraph) Clear() {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	dg.nodes = make(map[string]*FileDependency)
	dg.owners = make(map[string]string)
}

// Size returns the number of files in the graph
func (dg *DependencyGraph) Size() int {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	return len(dg.nodes)
}

func appendUnique(slice []string, item string) []string {
	for _, s := range slice {
		if s == item {
			return slice
		}
	}
	return append(slice, item)
}
