package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pyiron/nodeflow/internal/adapters/repository/postgres"
	"github.com/pyiron/nodeflow/internal/adapters/repository/sqlite"
	"github.com/pyiron/nodeflow/internal/core/document"
	"github.com/pyiron/nodeflow/pkg/nodeflow"
	"github.com/pyiron/nodeflow/pkg/serialization"
)

// loadSessionFile reads a session document from disk and rebuilds it into a
// fresh session with the standard library registered. JSON files are plain;
// anything else is treated as the compact msgpack+zstd format.
func loadSessionFile(path string) (*nodeflow.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := serialization.Default()
	if filepath.Ext(path) == ".json" {
		m = serialization.NewMarshaler(serialization.JSONCodec{}, serialization.CompressionNone)
	}
	var doc document.SessionDoc
	if err := m.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}
	s, err := nodeflow.NewSession()
	if err != nil {
		return nil, err
	}
	if err := s.Load(&doc); err != nil {
		return nil, err
	}
	return s, nil
}

// openStore builds the document store selected by NODEFLOW_STORE.
func openStore(ctx context.Context) (nodeflow.Store, error) {
	switch os.Getenv("NODEFLOW_STORE") {
	case "", "memory":
		return nodeflow.NewMemoryStore(), nil
	case "sqlite":
		path := os.Getenv("NODEFLOW_SQLITE")
		if path == "" {
			path = "nodeflow.db"
		}
		return sqlite.Open(path)
	case "postgres":
		url := os.Getenv("NODEFLOW_PG_URL")
		if url == "" {
			return nil, fmt.Errorf("NODEFLOW_PG_URL is required for the postgres store")
		}
		return postgres.Connect(ctx, url)
	default:
		return nil, fmt.Errorf("unknown store %q", os.Getenv("NODEFLOW_STORE"))
	}
}
