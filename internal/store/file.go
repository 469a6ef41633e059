package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/traitenum/traitenum/internal/model"
)

// FileExtension is the extension of model files
const FileExtension = ".tem"

// FileStore keeps one file per model in a directory
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a file store rooted at dir, creating it if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the models
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(id model.Identifier) string {
	return filepath.Join(f.dir, Key(id)+FileExtension)
}

// Put writes the model through a temporary file so readers never see a
// partial artifact
func (f *FileStore) Put(ctx context.Context, id model.Identifier, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, ".model-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), f.path(id)); err != nil {
		return fmt.Errorf("failed to store model %s: %w", id, err)
	}
	return nil
}

// Get reads the model file of id
func (f *FileStore) Get(ctx context.Context, id model.Identifier) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", id, err)
	}
	return data, nil
}

// List returns every model file in the directory
func (f *FileStore) List(ctx context.Context) ([]model.Identifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]model.Identifier, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, FileExtension) {
			continue
		}
		id, err := ParseKey(strings.TrimSuffix(name, FileExtension))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sortIdentifiers(ids)
	return ids, nil
}

// Delete removes the model file of id
func (f *FileStore) Delete(ctx context.Context, id model.Identifier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete model %s: %w", id, err)
	}
	return nil
}

// Close is a no-op
func (f *FileStore) Close() error {
	return nil
}

func sortIdentifiers(ids []model.Identifier) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
