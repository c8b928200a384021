package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"collaboratex/internal/domain"
	"collaboratex/internal/domain/models"
	"collaboratex/internal/domain/models/docsystem"
	docsystemRepo "collaboratex/internal/domain/repositories/docsystem"
)

// OwnershipChecker implements services.AccessChecker.
// A caller may use a document if they own it or present a usable anonymous
// link for it. Collaborators are not consulted.
type OwnershipChecker struct {
	docRepo  docsystemRepo.DocumentRepository
	linkRepo docsystemRepo.AnonymousLinkRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewOwnershipChecker creates a new ownership checker. now defaults to time.Now.
func NewOwnershipChecker(
	docRepo docsystemRepo.DocumentRepository,
	linkRepo docsystemRepo.AnonymousLinkRepository,
	now func() time.Time,
	logger *slog.Logger,
) *OwnershipChecker {
	if now == nil {
		now = time.Now
	}
	return &OwnershipChecker{
		docRepo:  docRepo,
		linkRepo: linkRepo,
		now:      now,
		logger:   logger,
	}
}

// CanAccess returns the caller's access to a document.
//
// The document and, when a token is presented, the link are always both
// loaded so every outcome costs the same lookups.
func (c *OwnershipChecker) CanAccess(ctx context.Context, documentID string, identity *models.Identity, token string) (docsystem.Access, error) {
	doc, err := c.docRepo.GetByID(ctx, documentID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return docsystem.Access{}, fmt.Errorf("check document access: %w", err)
	}

	var link *docsystem.AnonymousLink
	if token != "" {
		link, err = c.linkRepo.GetByToken(ctx, token)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return docsystem.Access{}, fmt.Errorf("check link access: %w", err)
		}
	}

	if identity != nil && doc != nil && sameID(identity.ID, doc.OwnerID) {
		return docsystem.OwnerAccess, nil
	}

	if token != "" {
		if link != nil && doc != nil && link.Usable(c.now()) && sameID(link.DocumentID, doc.ID) {
			return link.Permission.Access(), nil
		}
		return docsystem.Access{}, fmt.Errorf("document %s: %w", documentID, domain.ErrLinkInvalidOrExpired)
	}

	if identity == nil {
		return docsystem.Access{}, fmt.Errorf("document %s: %w", documentID, domain.ErrUnauthorized)
	}

	c.logger.Debug("document access denied", "document_id", documentID, "user_id", identity.ID)
	return docsystem.Access{}, fmt.Errorf("document %s: %w", documentID, domain.ErrForbidden)
}

// ResolveToken returns the usable link for token and the document it grants.
// Unknown, revoked and expired tokens all yield domain.ErrLinkInvalidOrExpired.
func (c *OwnershipChecker) ResolveToken(ctx context.Context, token string) (*docsystem.AnonymousLink, *docsystem.Document, error) {
	if token == "" {
		return nil, nil, fmt.Errorf("resolve token: %w", domain.ErrLinkInvalidOrExpired)
	}

	link, err := c.linkRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("resolve token: %w", domain.ErrLinkInvalidOrExpired)
		}
		return nil, nil, fmt.Errorf("resolve token: %w", err)
	}
	if !link.Usable(c.now()) {
		return nil, nil, fmt.Errorf("resolve token: %w", domain.ErrLinkInvalidOrExpired)
	}

	doc, err := c.docRepo.GetByID(ctx, link.DocumentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("resolve token: %w", domain.ErrLinkInvalidOrExpired)
		}
		return nil, nil, fmt.Errorf("resolve token: %w", err)
	}

	return link, doc, nil
}

func sameID(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
