package docsystem

import (
	"context"

	"collaboratex/internal/domain/models"
	"collaboratex/internal/domain/models/docsystem"
)

// DocumentService is the only code path allowed to read or write documents.
// Every method re-resolves access through the AccessChecker.
type DocumentService interface {
	// CreateDocument creates a document owned by identity
	CreateDocument(ctx context.Context, identity *models.Identity, req *CreateDocumentRequest) (*docsystem.Document, error)

	// GetDocument requires read access (owner or a usable link token)
	GetDocument(ctx context.Context, identity *models.Identity, documentID, token string) (*docsystem.DocumentView, error)

	// ListDocuments lists the identity's own documents, most recently updated first
	ListDocuments(ctx context.Context, identity *models.Identity) ([]docsystem.DocumentListItem, error)

	// UpdateDocument requires write access; token holders may only change content
	UpdateDocument(ctx context.Context, identity *models.Identity, documentID, token string, req *UpdateDocumentRequest) (*docsystem.Document, error)

	// DeleteDocument is owner-only; tokens never authorize deletion
	DeleteDocument(ctx context.Context, identity *models.Identity, documentID string) error

	// GetDocumentByToken loads the document an anonymous link points to
	GetDocumentByToken(ctx context.Context, token string) (*docsystem.TokenDocument, error)

	// SaveDocumentByToken replaces content through an edit link
	SaveDocumentByToken(ctx context.Context, token, content string) (*docsystem.TokenDocument, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPublic bool   `json:"is_public"`
}

// UpdateDocumentRequest is a partial update. Nil fields are left unchanged.
// This is transport-agnostic; handlers map presence of owner_id into OwnerIDSet.
type UpdateDocumentRequest struct {
	Title      *string
	Content    *string
	IsPublic   *bool
	OwnerIDSet bool
}

// OnlyContent reports whether the request touches nothing but content.
func (r *UpdateDocumentRequest) OnlyContent() bool {
	return r.Title == nil && r.IsPublic == nil && !r.OwnerIDSet
}
