package docsystem

import (
	"context"

	"collaboratex/internal/domain/models/docsystem"
)

// DocumentRepository defines data access operations for documents.
// Implementations never write owner_id after Create.
type DocumentRepository interface {
	// Create inserts a document and fills ID, CreatedAt and UpdatedAt
	Create(ctx context.Context, doc *docsystem.Document) error

	// GetByID retrieves a document by ID (no ownership filtering)
	GetByID(ctx context.Context, id string) (*docsystem.Document, error)

	// ListByOwner lists an owner's documents, most recently updated first
	ListByOwner(ctx context.Context, ownerID string) ([]docsystem.Document, error)

	// Update writes title, content, is_public and updated_at
	Update(ctx context.Context, doc *docsystem.Document) error

	// UpdateContent writes only doc.Content and doc.UpdatedAt
	UpdateContent(ctx context.Context, doc *docsystem.Document) error

	// Delete removes a document
	Delete(ctx context.Context, id string) error
}
