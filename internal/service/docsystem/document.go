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
	"collaboratex/internal/domain/repositories"
	docsysRepo "collaboratex/internal/domain/repositories/docsystem"
	"collaboratex/internal/domain/services"
	docsysSvc "collaboratex/internal/domain/services/docsystem"
	"collaboratex/internal/utils"
)

// defaultContent seeds documents created without content
const defaultContent = `\documentclass{article}
\usepackage[utf8]{inputenc}

\title{%s}
\begin{document}
\maketitle

\section{Introduction}

\end{document}
`

// latexEscaper escapes the title characters that are special in LaTeX
var latexEscaper = strings.NewReplacer(`&`, `\&`, `_`, `\_`)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo   docsysRepo.DocumentRepository
	linkRepo  docsysRepo.AnonymousLinkRepository
	access    services.AccessChecker
	txManager repositories.TransactionManager
	now       func() time.Time
	logger    *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo docsysRepo.DocumentRepository,
	linkRepo docsysRepo.AnonymousLinkRepository,
	access services.AccessChecker,
	txManager repositories.TransactionManager,
	now func() time.Time,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	if now == nil {
		now = time.Now
	}
	return &documentService{
		docRepo:   docRepo,
		linkRepo:  linkRepo,
		access:    access,
		txManager: txManager,
		now:       now,
		logger:    logger,
	}
}

// CreateDocument creates a document owned by identity
func (s *documentService) CreateDocument(ctx context.Context, identity *models.Identity, req *docsysSvc.CreateDocumentRequest) (*docsystem.Document, error) {
	if identity == nil {
		return nil, fmt.Errorf("create document: %w", domain.ErrUnauthorized)
	}
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	content := req.Content
	if content == "" {
		content = fmt.Sprintf(defaultContent, latexEscaper.Replace(req.Title))
	}

	now := s.now()
	doc := &docsystem.Document{
		Title:     req.Title,
		Content:   content,
		OwnerID:   identity.ID,
		IsPublic:  req.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"owner_id", doc.OwnerID,
	)

	return doc, nil
}

// GetDocument returns the document with the caller's access attached
func (s *documentService) GetDocument(ctx context.Context, identity *models.Identity, documentID, token string) (*docsystem.DocumentView, error) {
	access, err := s.access.CanAccess(ctx, documentID, identity, token)
	if err != nil {
		return nil, err
	}
	if !access.Read {
		return nil, fmt.Errorf("read document %s: %w", documentID, domain.ErrForbidden)
	}

	doc, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return &docsystem.DocumentView{Document: doc, Access: access}, nil
}

// ListDocuments lists the identity's own documents
func (s *documentService) ListDocuments(ctx context.Context, identity *models.Identity) ([]docsystem.DocumentListItem, error) {
	if identity == nil {
		return nil, fmt.Errorf("list documents: %w", domain.ErrUnauthorized)
	}

	docs, err := s.docRepo.ListByOwner(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	items := make([]docsystem.DocumentListItem, 0, len(docs))
	for i := range docs {
		item := docs[i].ListItem()
		item.WordCount = utils.CountWords(docs[i].Content)
		items = append(items, item)
	}
	return items, nil
}

// UpdateDocument applies a partial update. Last write wins.
func (s *documentService) UpdateDocument(ctx context.Context, identity *models.Identity, documentID, token string, req *docsysSvc.UpdateDocumentRequest) (*docsystem.Document, error) {
	if err := validateUpdateRequest(req); err != nil {
		return nil, err
	}

	access, err := s.access.CanAccess(ctx, documentID, identity, token)
	if err != nil {
		return nil, err
	}
	if !access.Write {
		return nil, fmt.Errorf("update document %s: %w", documentID, domain.ErrForbidden)
	}
	if !access.Owner && !req.OnlyContent() {
		return nil, fmt.Errorf("update document %s: link holders may only edit content: %w", documentID, domain.ErrForbidden)
	}

	doc, err := s.load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	if req.IsPublic != nil {
		doc.IsPublic = *req.IsPublic
	}
	doc.UpdatedAt = s.now()

	if req.OnlyContent() {
		err = s.docRepo.UpdateContent(ctx, doc)
	} else {
		err = s.docRepo.Update(ctx, doc)
	}
	if err != nil {
		return nil, s.mapMissing(err)
	}

	s.logger.Debug("document updated", "id", doc.ID, "owner", access.Owner)
	return doc, nil
}

// DeleteDocument removes the document and its anonymous links atomically
func (s *documentService) DeleteDocument(ctx context.Context, identity *models.Identity, documentID string) error {
	if identity == nil {
		return fmt.Errorf("delete document: %w", domain.ErrUnauthorized)
	}

	access, err := s.access.CanAccess(ctx, documentID, identity, "")
	if err != nil {
		return err
	}
	if !access.Owner {
		return fmt.Errorf("delete document %s: %w", documentID, domain.ErrForbidden)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.linkRepo.DeleteAllByDocument(txCtx, documentID); err != nil {
			return err
		}
		return s.docRepo.Delete(txCtx, documentID)
	})
	if err != nil {
		return s.mapMissing(err)
	}

	s.logger.Info("document deleted", "id", documentID, "owner_id", identity.ID)
	return nil
}

// GetDocumentByToken loads the document an anonymous link points to
func (s *documentService) GetDocumentByToken(ctx context.Context, token string) (*docsystem.TokenDocument, error) {
	link, doc, err := s.access.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return tokenDocument(link, doc), nil
}

// SaveDocumentByToken replaces the content through an edit link
func (s *documentService) SaveDocumentByToken(ctx context.Context, token, content string) (*docsystem.TokenDocument, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	link, doc, err := s.access.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !link.Permission.Access().Write {
		return nil, fmt.Errorf("save through view link: %w", domain.ErrForbidden)
	}

	doc.Content = content
	doc.UpdatedAt = s.now()
	if err := s.docRepo.UpdateContent(ctx, doc); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("save document: %w", domain.ErrLinkInvalidOrExpired)
		}
		return nil, err
	}

	return tokenDocument(link, doc), nil
}

// load fetches a document that the access check has already vouched for.
// A concurrent delete reads as forbidden, like any missing document.
func (s *documentService) load(ctx context.Context, documentID string) (*docsystem.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, s.mapMissing(err)
	}
	return doc, nil
}

func (s *documentService) mapMissing(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, domain.ErrForbidden)
	}
	return err
}

func tokenDocument(link *docsystem.AnonymousLink, doc *docsystem.Document) *docsystem.TokenDocument {
	return &docsystem.TokenDocument{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Content:    doc.Content,
		Permission: link.Permission,
		UpdatedAt:  doc.UpdatedAt,
	}
}
