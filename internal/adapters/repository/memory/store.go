// Package memory provides an in-memory session document store, suitable
// for tests and single-process hosts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pyiron/nodeflow/internal/core/document"
	"github.com/pyiron/nodeflow/pkg/serialization"
	"github.com/pyiron/nodeflow/pkg/validation"
)

// Store keeps marshaled documents in a map. It is safe for concurrent use.
// Documents pass through the marshaler even in memory, so callers get back
// an independent copy and serialization problems surface on Save rather
// than on a later file export.
type Store struct {
	mu        sync.RWMutex
	docs      map[string][]byte
	marshaler *serialization.Marshaler
}

// NewStore creates a store with the default marshaler.
func NewStore() *Store {
	return NewStoreWith(serialization.Default())
}

// NewStoreWith creates a store with a custom marshaler.
func NewStoreWith(m *serialization.Marshaler) *Store {
	return &Store{docs: map[string][]byte{}, marshaler: m}
}

// Save validates and stores a document under its ID.
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
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = data
	return nil
}

// Load retrieves a document by ID.
func (s *Store) Load(ctx context.Context, id string) (*document.SessionDoc, error) {
	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, document.ErrDocumentNotFound
	}
	var doc document.SessionDoc
	if err := s.marshaler.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns the stored document IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a document by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return document.ErrDocumentNotFound
	}
	delete(s.docs, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
