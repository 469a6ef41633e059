// Package cache keeps parsed declaration files between builds. Watch mode
// re-parses only files whose content changed and uses the dependency graph
// to find the enum files affected by a changed schema.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// ReadFile reads path and returns its content with the content hash, so a
// cache miss does not read the file twice
func (fh *FileHasher) ReadFile(path string) ([]byte, string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return content, fh.HashContent(content), nil
}

// HashContent computes a SHA-256 hash of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
