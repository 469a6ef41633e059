package build

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// FindSourceFiles returns the declaration files under root matching any of
// the source patterns and none of the exclude patterns. Paths are absolute
// and sorted.
func FindSourceFiles(root string, sources, exclude []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	fsys := os.DirFS(absRoot)
	seen := make(map[string]bool)
	files := make([]string, 0)

	for _, pattern := range sources {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid source pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to glob %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] || Excluded(match, exclude) {
				continue
			}
			seen[match] = true
			files = append(files, filepath.Join(absRoot, filepath.FromSlash(match)))
		}
	}

	sort.Strings(files)
	return files, nil
}

// Excluded reports whether a slash-separated path relative to the project
// root matches an exclude pattern
func Excluded(rel string, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// MatchesSource reports whether a slash-separated path relative to the
// project root is a declaration file
func MatchesSource(rel string, sources, exclude []string) bool {
	if Excluded(rel, exclude) {
		return false
	}
	for _, pattern := range sources {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// SourceDirs lists every directory holding one of files, the set watch mode
// subscribes to
func SourceDirs(files []string) []string {
	seen := make(map[string]bool)
	dirs := make([]string, 0)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// writeIfChanged writes data to path unless the file already holds it
func writeIfChanged(path string, data []byte) (bool, error) {
	current, err := os.ReadFile(path)
	if err == nil && string(current) == string(data) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if err := os.WriteFile(path, data, fs.FileMode(0o644)); err != nil {
		return false, err
	}
	return true, nil
}
