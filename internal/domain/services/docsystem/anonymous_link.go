package docsystem

import (
	"context"

	"collaboratex/internal/domain/models"
	"collaboratex/internal/domain/models/docsystem"
)

// AnonymousLinkService manages share links. All operations are owner-only.
type AnonymousLinkService interface {
	GenerateLink(ctx context.Context, identity *models.Identity, req *GenerateLinkRequest) (*GeneratedLink, error)

	ListLinks(ctx context.Context, identity *models.Identity, documentID string) ([]docsystem.AnonymousLink, error)

	// RevokeLink deactivates a link; revoking twice is not an error
	RevokeLink(ctx context.Context, identity *models.Identity, linkID string) error

	DeleteLink(ctx context.Context, identity *models.Identity, linkID string) error
}

// GenerateLinkRequest represents a link generation request
type GenerateLinkRequest struct {
	DocumentID    string               `json:"-"`
	Permission    docsystem.Permission `json:"permission"`
	ExpiresInDays *int                 `json:"expires_in_days"` // nil = never expires
}

// GeneratedLink is a new link plus its shareable URL
type GeneratedLink struct {
	Link *docsystem.AnonymousLink `json:"link"`
	URL  string                   `json:"url"`
}
