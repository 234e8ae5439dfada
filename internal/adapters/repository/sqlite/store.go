// Package sqlite provides a session document store backed by SQLite via
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pyiron/nodeflow/internal/core/document"
	"github.com/pyiron/nodeflow/pkg/serialization"
	"github.com/pyiron/nodeflow/pkg/validation"
)

// Store persists marshaled session documents in a single table.
type Store struct {
	db        *sql.DB
	marshaler *serialization.Marshaler
	tableName string
}

// Open opens (or creates) a SQLite database at path and prepares the
// sessions table. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	s := &Store{db: db, marshaler: serialization.Default(), tableName: "sessions"}
	if err := s.ensureTable(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing database handle. The table is created lazily
// on first save.
func NewStore(db *sql.DB, m *serialization.Marshaler) *Store {
	return &Store{db: db, marshaler: m, tableName: "sessions"}
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
		data BLOB NOT NULL,
		codec TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL
	)`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
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
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	data, err := s.marshaler.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling session document: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, data, codec, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data,
			codec = excluded.codec, saved_at = excluded.saved_at`, s.tableName)
	_, err = s.db.ExecContext(ctx, query, doc.ID, data, s.marshaler.CodecName(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving session document: %w", err)
	}
	return nil
}

// Load retrieves and unmarshals a document by ID.
func (s *Store) Load(ctx context.Context, id string) (*document.SessionDoc, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, s.tableName)
	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
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
	rows, err := s.db.QueryContext(ctx, query)
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
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.tableName)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting session document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
