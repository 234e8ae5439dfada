package document

import "context"

// Store persists session documents. Implementations live under
// internal/adapters/repository and must validate documents on save.
type Store interface {
	// Save stores a document under its ID, replacing any previous version.
	Save(ctx context.Context, doc *SessionDoc) error

	// Load retrieves a document by ID.
	Load(ctx context.Context, id string) (*SessionDoc, error)

	// List returns the stored document IDs.
	List(ctx context.Context) ([]string, error)

	// Delete removes a document by ID.
	Delete(ctx context.Context, id string) error

	// Close releases any underlying resources.
	Close() error
}
