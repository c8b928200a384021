package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"collaboratex/internal/domain"
	"collaboratex/internal/domain/models"
	docsystem "collaboratex/internal/domain/models/docsystem"
	docsysRepo "collaboratex/internal/domain/repositories/docsystem"
	"collaboratex/internal/domain/services"
	docsysSvc "collaboratex/internal/domain/services/docsystem"
)

// maxTokenAttempts bounds retries after a token collision
const maxTokenAttempts = 3

// AnonymousPath is the page prefix anonymous link URLs live under
const AnonymousPath = "/editor/anon/"

// anonymousLinkService implements the AnonymousLinkService interface
type anonymousLinkService struct {
	linkRepo docsysRepo.AnonymousLinkRepository
	access   services.AccessChecker
	baseURL  string
	newToken func() (string, error)
	now      func() time.Time
	logger   *slog.Logger
}

// NewAnonymousLinkService creates a new anonymous link service.
// baseURL is the public origin share URLs are built on.
func NewAnonymousLinkService(
	linkRepo docsysRepo.AnonymousLinkRepository,
	access services.AccessChecker,
	baseURL string,
	now func() time.Time,
	logger *slog.Logger,
) docsysSvc.AnonymousLinkService {
	if now == nil {
		now = time.Now
	}
	return &anonymousLinkService{
		linkRepo: linkRepo,
		access:   access,
		baseURL:  strings.TrimRight(baseURL, "/"),
		newToken: GenerateAccessToken,
		now:      now,
		logger:   logger,
	}
}

// ShareURL builds the public URL for a link token.
func ShareURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + AnonymousPath + token
}

// GenerateLink creates a new link on a document the identity owns
func (s *anonymousLinkService) GenerateLink(ctx context.Context, identity *models.Identity, req *docsysSvc.GenerateLinkRequest) (*docsysSvc.GeneratedLink, error) {
	if identity == nil {
		return nil, fmt.Errorf("generate link: %w", domain.ErrUnauthorized)
	}
	if err := validateGenerateRequest(req); err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, identity, req.DocumentID); err != nil {
		return nil, err
	}

	now := s.now()
	link := &docsystem.AnonymousLink{
		DocumentID: req.DocumentID,
		Permission: req.Permission,
		CreatedBy:  identity.ID,
		CreatedAt:  now,
		IsActive:   true,
	}
	if req.ExpiresInDays != nil {
		expiresAt := now.Add(time.Duration(*req.ExpiresInDays) * 24 * time.Hour)
		link.ExpiresAt = &expiresAt
	}

	var err error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		if link.AccessToken, err = s.newToken(); err != nil {
			return nil, err
		}
		err = s.linkRepo.Create(ctx, link)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
		s.logger.Warn("access token collision, retrying", "attempt", attempt+1)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("anonymous link generated",
		"link_id", link.ID,
		"document_id", link.DocumentID,
		"permission", link.Permission,
		"expires_at", link.ExpiresAt,
	)

	return &docsysSvc.GeneratedLink{
		Link: link,
		URL:  ShareURL(s.baseURL, link.AccessToken),
	}, nil
}

// ListLinks lists a document's links, newest first
func (s *anonymousLinkService) ListLinks(ctx context.Context, identity *models.Identity, documentID string) ([]docsystem.AnonymousLink, error) {
	if identity == nil {
		return nil, fmt.Errorf("list links: %w", domain.ErrUnauthorized)
	}
	if err := s.requireOwner(ctx, identity, documentID); err != nil {
		return nil, err
	}
	return s.linkRepo.ListByDocument(ctx, documentID)
}

// RevokeLink deactivates a link. Revoking twice succeeds.
func (s *anonymousLinkService) RevokeLink(ctx context.Context, identity *models.Identity, linkID string) error {
	link, err := s.ownedLink(ctx, identity, linkID)
	if err != nil {
		return err
	}
	if err := s.linkRepo.Deactivate(ctx, link.ID); err != nil {
		return s.forbidMissing(err)
	}

	s.logger.Info("anonymous link revoked", "link_id", link.ID, "document_id", link.DocumentID)
	return nil
}

// DeleteLink removes a link
func (s *anonymousLinkService) DeleteLink(ctx context.Context, identity *models.Identity, linkID string) error {
	link, err := s.ownedLink(ctx, identity, linkID)
	if err != nil {
		return err
	}
	if err := s.linkRepo.Delete(ctx, link.ID); err != nil {
		return s.forbidMissing(err)
	}

	s.logger.Info("anonymous link deleted", "link_id", link.ID, "document_id", link.DocumentID)
	return nil
}

// ownedLink loads a link whose document the identity owns.
// Unknown ids and foreign links are indistinguishable.
func (s *anonymousLinkService) ownedLink(ctx context.Context, identity *models.Identity, linkID string) (*docsystem.AnonymousLink, error) {
	if identity == nil {
		return nil, fmt.Errorf("manage link: %w", domain.ErrUnauthorized)
	}

	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return nil, s.forbidMissing(err)
	}
	if err := s.requireOwner(ctx, identity, link.DocumentID); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *anonymousLinkService) requireOwner(ctx context.Context, identity *models.Identity, documentID string) error {
	access, err := s.access.CanAccess(ctx, documentID, identity, "")
	if err != nil {
		return err
	}
	if !access.Owner {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrForbidden)
	}
	return nil
}

func (s *anonymousLinkService) forbidMissing(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("link not found: %w", domain.ErrForbidden)
	}
	return err
}
