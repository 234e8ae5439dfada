// Package nodeflow is the public facade of the node-graph runtime: it
// re-exports the core types and wires a session together with the standard
// node library and a document store, so hosts do not import internal
// packages directly.
package nodeflow

import (
	"context"

	memoryrepo "github.com/pyiron/nodeflow/internal/adapters/repository/memory"
	"github.com/pyiron/nodeflow/internal/core/document"
	"github.com/pyiron/nodeflow/internal/core/dtype"
	"github.com/pyiron/nodeflow/internal/core/flow"
	"github.com/pyiron/nodeflow/internal/core/session"
	"github.com/pyiron/nodeflow/pkg/std"
)

// Re-export core types for convenience.
type (
	Session    = session.Session
	Script     = session.Script
	Registry   = session.Registry
	Flow       = flow.Flow
	Node       = flow.Node
	NodeClass  = flow.NodeClass
	Port       = flow.Port
	PortSpec   = flow.PortSpec
	Connection = flow.Connection
	DType      = dtype.DType
	SessionDoc = document.SessionDoc
	Store      = document.Store
)

// Port blueprint helpers.
var (
	DataPort = flow.DataPort
	ExecPort = flow.ExecPort
)

// NewSession creates a session with the standard node library registered
// under the "std" group.
func NewSession() (*Session, error) {
	s := session.New()
	for _, class := range std.Classes() {
		if err := s.RegisterNodeClass(class, "std"); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewMemoryStore returns the default in-memory document store, suitable for
// local usage and tests.
func NewMemoryStore() Store {
	return memoryrepo.NewStore()
}

// SaveSession serializes a session and persists it in the store.
func SaveSession(ctx context.Context, store Store, s *Session) error {
	return store.Save(ctx, s.Data())
}

// LoadSession retrieves a document by ID and rebuilds its scripts into the
// given session, whose registry resolves the node classes.
func LoadSession(ctx context.Context, store Store, s *Session, id string) error {
	doc, err := store.Load(ctx, id)
	if err != nil {
		return err
	}
	return s.Load(doc)
}
