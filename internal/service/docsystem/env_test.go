package docsystem

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"collaboratex/internal/domain/models"
	docsystem "collaboratex/internal/domain/models/docsystem"
	docsysSvc "collaboratex/internal/domain/services/docsystem"
	"collaboratex/internal/repository/memory"
	authsvc "collaboratex/internal/service/auth"
)

var (
	alice = &models.Identity{ID: "aaaaaaaa-0000-0000-0000-000000000001", Email: "alice@example.com"}
	bob   = &models.Identity{ID: "bbbbbbbb-0000-0000-0000-000000000002", Email: "bob@example.com"}
)

type testEnv struct {
	store *memory.Store
	docs  docsysSvc.DocumentService
	links docsysSvc.AnonymousLinkService
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store: memory.NewStore(),
		now:   time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	checker := authsvc.NewOwnershipChecker(env.store.Documents(), env.store.Links(), clock, logger)
	env.docs = NewDocumentService(env.store.Documents(), env.store.Links(), checker, memory.TxManager{}, clock, logger)
	env.links = NewAnonymousLinkService(env.store.Links(), checker, "https://latex.example.com/", clock, logger)
	return env
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func (e *testEnv) createDoc(t *testing.T, owner *models.Identity, title string) *docsystem.Document {
	t.Helper()
	doc, err := e.docs.CreateDocument(context.Background(), owner, &docsysSvc.CreateDocumentRequest{Title: title})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return doc
}

func (e *testEnv) generate(t *testing.T, owner *models.Identity, docID string, perm docsystem.Permission, days *int) *docsysSvc.GeneratedLink {
	t.Helper()
	link, err := e.links.GenerateLink(context.Background(), owner, &docsysSvc.GenerateLinkRequest{
		DocumentID:    docID,
		Permission:    perm,
		ExpiresInDays: days,
	})
	if err != nil {
		t.Fatalf("generate link: %v", err)
	}
	return link
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
