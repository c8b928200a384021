package docsystem

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"collaboratex/internal/domain"
	docsystem "collaboratex/internal/domain/models/docsystem"
	docsysSvc "collaboratex/internal/domain/services/docsystem"
)

func TestCreateThenGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.createDoc(t, alice, "My Thesis")
	if created.OwnerID != alice.ID {
		t.Errorf("owner = %s, want %s", created.OwnerID, alice.ID)
	}
	if !strings.Contains(created.Content, `\title{My Thesis}`) {
		t.Errorf("empty content should get the template, got %q", created.Content)
	}

	view, err := env.docs.GetDocument(ctx, alice, created.ID, "")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if view.Title != "My Thesis" || view.OwnerID != alice.ID || view.Content != created.Content {
		t.Errorf("round trip mismatch: %+v", view.Document)
	}
	if view.Access != docsystem.OwnerAccess {
		t.Errorf("access = %+v, want owner", view.Access)
	}
}

func TestCreateDocument_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		identity bool
		title    string
		wantErr  error
	}{
		{"anonymous", false, "Valid title", domain.ErrUnauthorized},
		{"too short", true, "ab", domain.ErrValidation},
		{"only spaces", true, "     ", domain.ErrValidation},
		{"too long", true, strings.Repeat("a", 101), domain.ErrValidation},
		{"invalid characters", true, "Title <script>", domain.ErrValidation},
		{"accented ok", true, "Relatório Técnico", nil},
		{"punctuation ok", true, "Notes: week 1 (draft) & more", nil},
		{"hundred runes ok", true, strings.Repeat("é", 100), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := alice
			if !tt.identity {
				id = nil
			}
			_, err := env.docs.CreateDocument(context.Background(), id, &docsysSvc.CreateDocumentRequest{Title: tt.title})
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNonOwnerIsDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Private notes")

	if _, err := env.docs.GetDocument(ctx, bob, doc.ID, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("get: got %v, want ErrForbidden", err)
	}
	_, err := env.docs.UpdateDocument(ctx, bob, doc.ID, "", &docsysSvc.UpdateDocumentRequest{Content: strPtr("hijack")})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("update: got %v, want ErrForbidden", err)
	}
	if err := env.docs.DeleteDocument(ctx, bob, doc.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("delete: got %v, want ErrForbidden", err)
	}
	if _, err := env.docs.GetDocument(ctx, nil, doc.ID, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous get: got %v, want ErrUnauthorized", err)
	}
	if _, err := env.docs.GetDocument(ctx, bob, "does-not-exist", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("missing document: got %v, want ErrForbidden", err)
	}

	view, err := env.docs.GetDocument(ctx, alice, doc.ID, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Content != doc.Content {
		t.Errorf("document changed by denied calls: %q", view.Content)
	}
}

func TestListDocuments_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createDoc(t, alice, "First doc")
	env.advance(time.Minute)
	env.createDoc(t, alice, "Second doc")
	env.advance(time.Minute)
	env.createDoc(t, bob, "Bob doc")
	env.advance(time.Minute)

	if _, err := env.docs.UpdateDocument(ctx, alice, first.ID, "", &docsysSvc.UpdateDocumentRequest{Content: strPtr("bump")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	items, err := env.docs.ListDocuments(ctx, alice)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d documents, want 2", len(items))
	}
	if items[0].Title != "First doc" || items[1].Title != "Second doc" {
		t.Errorf("unexpected order: %s, %s", items[0].Title, items[1].Title)
	}
	if items[0].WordCount != 1 {
		t.Errorf("word count of %q = %d, want 1", items[0].Title, items[0].WordCount)
	}

	if _, err := env.docs.ListDocuments(ctx, nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous list: got %v", err)
	}
}

func TestUpdateDocument_OwnerIDIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Immutable owner")

	_, err := env.docs.UpdateDocument(ctx, alice, doc.ID, "", &docsysSvc.UpdateDocumentRequest{
		Title:      strPtr("Changed title"),
		OwnerIDSet: true,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}

	view, err := env.docs.GetDocument(ctx, alice, doc.ID, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Title != "Immutable owner" || view.OwnerID != alice.ID {
		t.Errorf("rejected patch was partially applied: %+v", view.Document)
	}
}

func TestUpdateDocument_OwnerFieldsAndTimestamp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Draft")
	env.advance(time.Hour)

	updated, err := env.docs.UpdateDocument(ctx, alice, doc.ID, "", &docsysSvc.UpdateDocumentRequest{
		Title:    strPtr("  Final  "),
		IsPublic: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Final" || !updated.IsPublic || updated.Content != doc.Content {
		t.Errorf("unexpected update result: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(env.now) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, env.now)
	}

	tests := []struct {
		name string
		req  *docsysSvc.UpdateDocumentRequest
	}{
		{"empty patch", &docsysSvc.UpdateDocumentRequest{}},
		{"bad title", &docsysSvc.UpdateDocumentRequest{Title: strPtr("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.docs.UpdateDocument(ctx, alice, doc.ID, "", tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdateDocument_LastWriteWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Shared draft")
	edit := env.generate(t, alice, doc.ID, docsystem.PermissionEdit, nil)

	if _, err := env.docs.UpdateDocument(ctx, alice, doc.ID, "", &docsysSvc.UpdateDocumentRequest{Content: strPtr("owner version")}); err != nil {
		t.Fatalf("owner save: %v", err)
	}
	env.advance(time.Second)
	if _, err := env.docs.SaveDocumentByToken(ctx, edit.Link.AccessToken, "anonymous version"); err != nil {
		t.Fatalf("anonymous save: %v", err)
	}

	view, err := env.docs.GetDocument(ctx, alice, doc.ID, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Content != "anonymous version" {
		t.Errorf("content = %q, want the later write", view.Content)
	}
}

func TestUpdateDocument_TokenHolderMayOnlyEditContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Shared")
	edit := env.generate(t, alice, doc.ID, docsystem.PermissionEdit, nil)
	view := env.generate(t, alice, doc.ID, docsystem.PermissionView, nil)

	tests := []struct {
		name    string
		token   string
		req     *docsysSvc.UpdateDocumentRequest
		wantErr error
	}{
		{"edit link content", edit.Link.AccessToken, &docsysSvc.UpdateDocumentRequest{Content: strPtr("new body")}, nil},
		{"edit link title", edit.Link.AccessToken, &docsysSvc.UpdateDocumentRequest{Title: strPtr("Renamed doc")}, domain.ErrForbidden},
		{"edit link visibility", edit.Link.AccessToken, &docsysSvc.UpdateDocumentRequest{IsPublic: boolPtr(true)}, domain.ErrForbidden},
		{"view link content", view.Link.AccessToken, &docsysSvc.UpdateDocumentRequest{Content: strPtr("nope")}, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.docs.UpdateDocument(ctx, nil, doc.ID, tt.token, tt.req)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := env.docs.DeleteDocument(ctx, nil, doc.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous delete: got %v", err)
	}
}

func TestDeleteDocument_RemovesLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Doomed")
	link := env.generate(t, alice, doc.ID, docsystem.PermissionView, nil)

	if err := env.docs.DeleteDocument(ctx, alice, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.docs.GetDocument(ctx, alice, doc.ID, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("deleted document: got %v, want ErrForbidden", err)
	}
	if _, err := env.docs.GetDocumentByToken(ctx, link.Link.AccessToken); !errors.Is(err, domain.ErrLinkInvalidOrExpired) {
		t.Errorf("link of deleted document: got %v", err)
	}
	if _, err := env.store.Links().GetByID(ctx, link.Link.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("link row survived delete: %v", err)
	}
	if err := env.docs.DeleteDocument(ctx, alice, doc.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("second delete: got %v", err)
	}
}

func TestTokenAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Public draft")
	view := env.generate(t, alice, doc.ID, docsystem.PermissionView, nil)
	edit := env.generate(t, alice, doc.ID, docsystem.PermissionEdit, intPtr(1))

	got, err := env.docs.GetDocumentByToken(ctx, view.Link.AccessToken)
	if err != nil {
		t.Fatalf("GetDocumentByToken: %v", err)
	}
	if got.DocumentID != doc.ID || got.Permission != docsystem.PermissionView {
		t.Errorf("unexpected token document %+v", got)
	}

	if _, err := env.docs.SaveDocumentByToken(ctx, view.Link.AccessToken, "x"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("save through view link: got %v, want ErrForbidden", err)
	}

	saved, err := env.docs.SaveDocumentByToken(ctx, edit.Link.AccessToken, "edited")
	if err != nil {
		t.Fatalf("save through edit link: %v", err)
	}
	if saved.Content != "edited" || saved.Permission != docsystem.PermissionEdit {
		t.Errorf("unexpected save result %+v", saved)
	}

	env.advance(24*time.Hour + time.Second)
	if _, err := env.docs.SaveDocumentByToken(ctx, edit.Link.AccessToken, "late"); !errors.Is(err, domain.ErrLinkInvalidOrExpired) {
		t.Errorf("save after expiry: got %v, want ErrLinkInvalidOrExpired", err)
	}
	if _, err := env.docs.GetDocumentByToken(ctx, edit.Link.AccessToken); !errors.Is(err, domain.ErrLinkInvalidOrExpired) {
		t.Errorf("read after expiry: got %v, want ErrLinkInvalidOrExpired", err)
	}

	owned, err := env.docs.GetDocument(ctx, alice, doc.ID, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if owned.Content != "edited" {
		t.Errorf("expired save leaked through: %q", owned.Content)
	}
}
