package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/traitenum/traitenum/internal/model"
)

// SQLStore keeps models in a traitenum_models table
type SQLStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a sqlite database file and ensures the
// models table exists
func NewSQLiteStore(path string) (*SQLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store requires a database path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := NewSQLStore(db)
	if err := s.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database. Call Initialize before first use.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Initialize ensures the traitenum_models table exists
func (s *SQLStore) Initialize(ctx context.Context) error {
	query := `
CREATE TABLE IF NOT EXISTS traitenum_models (
	identifier TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to initialize models table: %w", err)
	}
	return nil
}

// Put upserts the model of id
func (s *SQLStore) Put(ctx context.Context, id model.Identifier, data []byte) error {
	query := `
INSERT INTO traitenum_models (identifier, data, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(identifier) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, id.String(), data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store model %s: %w", id, err)
	}
	return nil
}

// Get reads the model of id
func (s *SQLStore) Get(ctx context.Context, id model.Identifier) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM traitenum_models WHERE identifier = ?`, id.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model %s: %w", id, err)
	}
	return data, nil
}

// List returns every stored identifier
func (s *SQLStore) List(ctx context.Context) ([]model.Identifier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identifier FROM traitenum_models ORDER BY identifier ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	ids := make([]model.Identifier, 0)
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan model identifier: %w", err)
		}
		id, err := model.ParseIdentifier(text)
		if err != nil {
			return nil, fmt.Errorf("stored model has a bad identifier: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating models: %w", err)
	}
	sortIdentifiers(ids)
	return ids, nil
}

// Delete removes the model of id
func (s *SQLStore) Delete(ctx context.Context, id model.Identifier) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM traitenum_models WHERE identifier = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete model %s: %w", id, err)
	}
	return nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
