// Package duckdb persists checkpoints in DuckDB so they outlive the
// process. A Store satisfies checkpoint.Store.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding checkpoint tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, "" for in-memory.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist. Timestamps are stored
// as Unix nanoseconds so scar ordering survives a round trip exactly.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS checkpoints (
			id VARCHAR PRIMARY KEY,
			block_id VARCHAR,
			label VARCHAR,
			created_ns BIGINT,
			raw VARCHAR,
			sequence_type VARCHAR,
			topology VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS checkpoint_scars (
			checkpoint_id VARCHAR,
			ord BIGINT,
			id VARCHAR,
			position BIGINT,
			kind VARCHAR,
			original VARCHAR,
			inserted VARCHAR,
			created_ns BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS checkpoint_features (
			checkpoint_id VARCHAR,
			ord BIGINT,
			id VARCHAR,
			name VARCHAR,
			type VARCHAR,
			start_ BIGINT,
			end_ BIGINT,
			strand BIGINT,
			color VARCHAR,
			metadata VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
