package cache

import (
	"sync"
	"time"

	"github.com/traitenum/traitenum/internal/compiler/ast"
	cerrors "github.com/traitenum/traitenum/internal/compiler/errors"
)

// CachedProgram is a parsed declaration file together with its diagnostics
type CachedProgram struct {
	Program     *ast.Program
	Diagnostics cerrors.ErrorList
	Hash        string
	Path        string
	CachedAt    time.Time
}

// ASTCache provides in-memory caching of parsed files for watch mode
type ASTCache struct {
	entries map[string]*CachedProgram
	mu      sync.RWMutex
}

// NewASTCache creates a new AST cache
func NewASTCache() *ASTCache {
	return &ASTCache{
		entries: make(map[string]*CachedProgram),
	}
}

// Get retrieves a cached file by path
func (ac *ASTCache) Get(path string) (*CachedProgram, bool) {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	entry, exists := ac.entries[path]
	return entry, exists
}

// Lookup returns the entry for path only if it was parsed from content with
// the given hash
func (ac *ASTCache) Lookup(path, hash string) (*CachedProgram, bool) {
	entry, exists := ac.Get(path)
	if !exists || entry.Hash != hash {
		return nil, false
	}
	return entry, true
}

// Set stores a parsed file
func (ac *ASTCache) Set(path, hash string, program *ast.Program, diagnostics cerrors.ErrorList) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.entries[path] = &CachedProgram{
		Program:     program,
		Diagnostics: diagnostics,
		Hash:        hash,
		Path:        path,
		CachedAt:    time.Now(),
	}
}

// Invalidate removes an entry from the cache
func (ac *ASTCache) Invalidate(path string) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	delete(ac.entries, path)
}

// InvalidateAll clears the entire cache
func (ac *ASTCache) InvalidateAll() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.entries = make(map[string]*CachedProgram)
}

// Size returns the number of cached entries
func (ac *ASTCache) Size() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	return len(ac.entries)
}

// Retain drops every entry whose path is not in keep, returning how many
// were dropped. Deleted source files leave the cache this way.
func (ac *ASTCache) Retain(keep []string) int {
	wanted := make(map[string]bool, len(keep))
	for _, path := range keep {
		wanted[path] = true
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()

	dropped := 0
	for path := range ac.entries {
		if !wanted[path] {
			delete(ac.entries, path)
			dropped++
		}
	}
	return dropped
}
