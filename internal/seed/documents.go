package seed

import (
	"context"
	"fmt"
	"log/slog"

	"collaboratex/internal/domain/models"
	"collaboratex/internal/domain/models/docsystem"
	docsysSvc "collaboratex/internal/domain/services/docsystem"
)

// SampleDocument is one document the seeder creates
type SampleDocument struct {
	Title    string
	Content  string
	IsPublic bool
	// ShareAs, when set, also generates an anonymous link with that permission
	ShareAs docsystem.Permission
}

// Result lists what a seeding run created
type Result struct {
	Documents []*docsystem.Document
	ShareURLs []string
}

// DocumentSeeder creates sample documents for a user through the services,
// so seeded data passes the same validation as user input
type DocumentSeeder struct {
	docService  docsysSvc.DocumentService
	linkService docsysSvc.AnonymousLinkService
	logger      *slog.Logger
}

// NewDocumentSeeder creates a new document seeder
func NewDocumentSeeder(docService docsysSvc.DocumentService, linkService docsysSvc.AnonymousLinkService, logger *slog.Logger) *DocumentSeeder {
	return &DocumentSeeder{
		docService:  docService,
		linkService: linkService,
		logger:      logger,
	}
}

// Clear deletes every document owner has, links included
func (s *DocumentSeeder) Clear(ctx context.Context, owner *models.Identity) (int, error) {
	docs, err := s.docService.ListDocuments(ctx, owner)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		if err := s.docService.DeleteDocument(ctx, owner, doc.ID); err != nil {
			return 0, fmt.Errorf("clear %q: %w", doc.Title, err)
		}
	}
	return len(docs), nil
}

// Seed creates samples for owner. It stops at the first failure.
func (s *DocumentSeeder) Seed(ctx context.Context, owner *models.Identity, samples []SampleDocument) (*Result, error) {
	result := &Result{}
	for _, sample := range samples {
		doc, err := s.docService.CreateDocument(ctx, owner, &docsysSvc.CreateDocumentRequest{
			Title:    sample.Title,
			Content:  sample.Content,
			IsPublic: sample.IsPublic,
		})
		if err != nil {
			return result, fmt.Errorf("seed %q: %w", sample.Title, err)
		}
		result.Documents = append(result.Documents, doc)

		if sample.ShareAs == "" {
			continue
		}
		link, err := s.linkService.GenerateLink(ctx, owner, &docsysSvc.GenerateLinkRequest{
			DocumentID: doc.ID,
			Permission: sample.ShareAs,
		})
		if err != nil {
			return result, fmt.Errorf("share %q: %w", sample.Title, err)
		}
		result.ShareURLs = append(result.ShareURLs, link.URL)

		s.logger.Info("seeded shared document", "id", doc.ID, "permission", sample.ShareAs)
	}
	return result, nil
}

// DefaultSamples is the stock set of LaTeX documents
func DefaultSamples() []SampleDocument {
	return []SampleDocument{
		{
			Title: "Getting started",
			Content: `\documentclass{article}
\title{Getting started}
\begin{document}
\maketitle
\section{Introduction}
Edit this document and press Save.
Inline math looks like $e^{i\pi} + 1 = 0$.
\end{document}
`,
		},
		{
			Title: "Lecture notes: linear algebra",
			Content: `\documentclass{article}
\usepackage{amsmath}
\begin{document}
\section{Eigenvalues}
A scalar $\lambda$ is an eigenvalue of $A$ if
\begin{equation}
  A v = \lambda v, \quad v \neq 0.
\end{equation}
% TODO: add the characteristic polynomial
\end{document}
`,
			ShareAs: docsystem.PermissionView,
		},
		{
			Title: "Shared draft",
			Content: `\documentclass{article}
\begin{document}
\section{Draft}
Anyone with the edit link can change this text.
\begin{tabular}{ll}
  a & b \\
  c & d \\
\end{tabular}
\end{document}
`,
			ShareAs: docsystem.PermissionEdit,
		},
		{
			// Empty content is filled with the default template
			Title:    "Public template",
			IsPublic: true,
		},
	}
}
