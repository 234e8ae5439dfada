// Package postgres provides a session document store backed by PostgreSQL
// through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pyiron/nodeflow/internal/core/document"
	"github.com/pyiron/nodeflow/pkg/serialization"
	"github.com/pyiron/nodeflow/pkg/validation"
)

// Store persists marshaled session documents in a single table.
type Store struct {
	pool      *pgxpool.Pool
	marshaler *serialization.Marshaler
	tableName string
}

// NewStore wraps an existing pool and prepares the sessions table.
func NewStore(ctx context.Context, pool *pgxpool.Pool, m *serialization.Marshaler) (*Store, error) {
	s := &Store{pool: pool, marshaler: m, tableName: "sessions"}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Connect opens a pool from a connection string and builds a store with the
// default marshaler.
func Connect(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	s, err := NewStore(ctx, pool, serialization.Default())
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// WithTableName overrides the default table name. Only alphanumerics and
// underscore are permitted to prevent SQL injection via identifiers.
func (s *Store) WithTableName(name string) *Store {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

func (s *Store) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		data BYTEA NOT NULL,
		codec TEXT NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL
	)`, s.tableName)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("creating table %s: %w", s.tableName, err)
	}
	return nil
}

// Save validates, marshals and upserts a document.
func (s *Store) Save(ctx context.Context, doc *document.SessionDoc) error {
	if doc == nil {
		return document.ErrNilDocument
	}
	if doc.ID == "" {
		return document.ErrInvalidDocumentID
	}
	if err := validation.ValidateSessionDoc(doc); err != nil {
		return err
	}
	data, err := s.marshaler.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling session document: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, data, codec, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data,
			codec = EXCLUDED.codec, saved_at = EXCLUDED.saved_at`, s.tableName)
	if _, err := s.pool.Exec(ctx, query, doc.ID, data, s.marshaler.CodecName(), time.Now().UTC()); err != nil {
		return fmt.Errorf("saving session document: %w", err)
	}
	return nil
}

// Load retrieves and unmarshals a document by ID.
func (s *Store) Load(ctx context.Context, id string) (*document.SessionDoc, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, s.tableName)
	var data []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, document.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session document: %w", err)
	}
	var doc document.SessionDoc
	if err := s.marshaler.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns stored document IDs ordered by save time, newest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s ORDER BY saved_at DESC`, s.tableName)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing session documents: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a document by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting session document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
