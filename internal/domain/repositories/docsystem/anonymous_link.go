package docsystem

import (
	"context"

	"collaboratex/internal/domain/models/docsystem"
)

// AnonymousLinkRepository defines data access operations for anonymous links
type AnonymousLinkRepository interface {
	// Create inserts a link and fills ID and CreatedAt.
	// Returns domain.ErrConflict if the access token already exists.
	Create(ctx context.Context, link *docsystem.AnonymousLink) error

	// GetByID retrieves a link by ID
	GetByID(ctx context.Context, id string) (*docsystem.AnonymousLink, error)

	// GetByToken retrieves a link by its access token
	GetByToken(ctx context.Context, token string) (*docsystem.AnonymousLink, error)

	// ListByDocument lists links for a document, newest first
	ListByDocument(ctx context.Context, documentID string) ([]docsystem.AnonymousLink, error)

	// Deactivate sets is_active = false. Deactivating an inactive link is not an error.
	Deactivate(ctx context.Context, id string) error

	// Delete removes a link
	Delete(ctx context.Context, id string) error

	// DeleteAllByDocument removes every link of a document
	DeleteAllByDocument(ctx context.Context, documentID string) error
}
