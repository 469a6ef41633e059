// Package store keeps model artifacts between the two compiler phases. A
// schema build puts the serialized model under the schema's identifier; an
// instance build gets it back by the identifier its enum declares.
package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/traitenum/traitenum/internal/model"
)

// Store defines the interface for all model backends. Implementations are
// safe for concurrent use.
type Store interface {
	// Put stores the model artifact of a schema, replacing any previous one
	Put(ctx context.Context, id model.Identifier, data []byte) error

	// Get retrieves the model artifact of a schema
	Get(ctx context.Context, id model.Identifier) ([]byte, error)

	// List returns the identifiers of every stored model, sorted
	List(ctx context.Context) ([]model.Identifier, error)

	// Delete removes a model. Deleting a missing model is not an error.
	Delete(ctx context.Context, id model.Identifier) error

	// Close releases the backend
	Close() error
}

// ErrNotFound is returned when no model is stored under an identifier
type ErrNotFound struct {
	ID model.Identifier
}

func (e ErrNotFound) Error() string {
	return "model not found: " + e.ID.String()
}

// IsNotFound checks if an error is a missing model
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}

// Kind names a backend
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindRedis  Kind = "redis"
)

// Config selects and configures a backend
type Config struct {
	Kind Kind
	// Path is the directory of the file store or the database file of the
	// sqlite store
	Path  string
	Redis RedisConfig
}

// DefaultConfig stores models as files under .traitenum/models
func DefaultConfig() Config {
	return Config{
		Kind:  KindFile,
		Path:  ".traitenum/models",
		Redis: DefaultRedisConfig(),
	}
}

// Open creates the backend described by cfg
func Open(cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		s   Store
		err error
	)
	switch cfg.Kind {
	case KindFile, "":
		s, err = NewFileStore(cfg.Path)
	case KindSQLite:
		s, err = NewSQLiteStore(cfg.Path)
	case KindRedis:
		s, err = NewRedisStoreWithConfig(cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown model store %q (expected file, sqlite or redis)", cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s model store: %w", cfg.Kind, err)
	}

	logger.Debug("model store opened",
		zap.String("kind", string(cfg.Kind)),
		zap.String("path", cfg.Path),
	)
	return s, nil
}

// Key is the storage key of an identifier: its segments joined with '.'
func Key(id model.Identifier) string {
	return strings.Join(id.Segments(), ".")
}

// ParseKey reverses Key
func ParseKey(key string) (model.Identifier, error) {
	id, err := model.ParseIdentifier(strings.ReplaceAll(key, ".", model.PathSeparator))
	if err != nil {
		return model.Identifier{}, fmt.Errorf("invalid model key %q: %w", key, err)
	}
	return id, nil
}
