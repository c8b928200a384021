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

func TestGenerateLink(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDoc(t, alice, "Shared paper")

	gen := env.generate(t, alice, doc.ID, docsystem.PermissionEdit, intPtr(7))
	link := gen.Link

	if !strings.HasPrefix(gen.URL, "https://latex.example.com/editor/anon/") ||
		!strings.HasSuffix(gen.URL, "/"+link.AccessToken) {
		t.Errorf("unexpected URL %s", gen.URL)
	}
	if len(link.AccessToken) != 43 {
		t.Errorf("token length = %d, want 43 (32 bytes base64url)", len(link.AccessToken))
	}
	if !link.IsActive || link.CreatedBy != alice.ID || link.DocumentID != doc.ID {
		t.Errorf("unexpected link %+v", link)
	}
	if link.ExpiresAt == nil || !link.ExpiresAt.Equal(env.now.Add(7*24*time.Hour)) {
		t.Errorf("ExpiresAt = %v, want now+7d", link.ExpiresAt)
	}

	forever := env.generate(t, alice, doc.ID, docsystem.PermissionView, nil)
	if forever.Link.ExpiresAt != nil {
		t.Errorf("nil expiry must mean never, got %v", forever.Link.ExpiresAt)
	}
	if forever.Link.AccessToken == link.AccessToken {
		t.Error("tokens must be unique")
	}
}

func TestGenerateLink_Rejections(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDoc(t, alice, "Shared paper")

	tests := []struct {
		name    string
		req     *docsysSvc.GenerateLinkRequest
		caller  bool
		owner   bool
		wantErr error
	}{
		{"anonymous caller", &docsysSvc.GenerateLinkRequest{DocumentID: doc.ID, Permission: "view"}, false, false, domain.ErrUnauthorized},
		{"non-owner", &docsysSvc.GenerateLinkRequest{DocumentID: doc.ID, Permission: "view"}, true, false, domain.ErrForbidden},
		{"unknown permission", &docsysSvc.GenerateLinkRequest{DocumentID: doc.ID, Permission: "admin"}, true, true, domain.ErrValidation},
		{"missing permission", &docsysSvc.GenerateLinkRequest{DocumentID: doc.ID}, true, true, domain.ErrValidation},
		{"zero days", &docsysSvc.GenerateLinkRequest{DocumentID: doc.ID, Permission: "view", ExpiresInDays: intPtr(0)}, true, true, domain.ErrValidation},
		{"negative days", &docsysSvc.GenerateLinkRequest{DocumentID: doc.ID, Permission: "view", ExpiresInDays: intPtr(-3)}, true, true, domain.ErrValidation},
		{"too many days", &docsysSvc.GenerateLinkRequest{DocumentID: doc.ID, Permission: "view", ExpiresInDays: intPtr(366)}, true, true, domain.ErrValidation},
		{"missing document", &docsysSvc.GenerateLinkRequest{DocumentID: "nope", Permission: "view"}, true, true, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := alice
			if !tt.owner {
				caller = bob
			}
			if !tt.caller {
				caller = nil
			}
			_, err := env.links.GenerateLink(context.Background(), caller, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListLinks_NewestFirstAndOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Shared paper")

	older := env.generate(t, alice, doc.ID, docsystem.PermissionView, nil)
	env.advance(time.Minute)
	newer := env.generate(t, alice, doc.ID, docsystem.PermissionEdit, nil)

	links, err := env.links.ListLinks(ctx, alice, doc.ID)
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if len(links) != 2 || links[0].ID != newer.Link.ID || links[1].ID != older.Link.ID {
		t.Errorf("unexpected order: %+v", links)
	}

	if _, err := env.links.ListLinks(ctx, bob, doc.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-owner list: got %v", err)
	}
}

func TestRevokeLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Shared paper")
	gen := env.generate(t, alice, doc.ID, docsystem.PermissionEdit, nil)

	if err := env.links.RevokeLink(ctx, bob, gen.Link.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-owner revoke: got %v", err)
	}
	if _, err := env.docs.GetDocumentByToken(ctx, gen.Link.AccessToken); err != nil {
		t.Fatalf("link unusable before revoke: %v", err)
	}

	if err := env.links.RevokeLink(ctx, alice, gen.Link.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := env.links.RevokeLink(ctx, alice, gen.Link.ID); err != nil {
		t.Errorf("second revoke must succeed, got %v", err)
	}

	_, revokedErr := env.docs.GetDocumentByToken(ctx, gen.Link.AccessToken)
	_, unknownErr := env.docs.GetDocumentByToken(ctx, "never-issued")
	if !errors.Is(revokedErr, domain.ErrLinkInvalidOrExpired) || !errors.Is(unknownErr, domain.ErrLinkInvalidOrExpired) {
		t.Fatalf("revoked=%v unknown=%v", revokedErr, unknownErr)
	}
	if revokedErr.Error() != unknownErr.Error() {
		t.Errorf("revoked and unknown tokens are distinguishable: %q vs %q", revokedErr, unknownErr)
	}

	links, _ := env.links.ListLinks(ctx, alice, doc.ID)
	if len(links) != 1 || links[0].IsActive {
		t.Errorf("revoked link should remain listed as inactive: %+v", links)
	}
}

func TestDeleteLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doc := env.createDoc(t, alice, "Shared paper")
	gen := env.generate(t, alice, doc.ID, docsystem.PermissionView, nil)

	if err := env.links.DeleteLink(ctx, bob, gen.Link.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-owner delete: got %v", err)
	}
	if err := env.links.DeleteLink(ctx, alice, gen.Link.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.links.DeleteLink(ctx, alice, gen.Link.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("deleting a gone link: got %v, want ErrForbidden", err)
	}
	if err := env.links.RevokeLink(ctx, alice, "unknown-id"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("unknown link id: got %v, want ErrForbidden", err)
	}
	if _, err := env.docs.GetDocumentByToken(ctx, gen.Link.AccessToken); !errors.Is(err, domain.ErrLinkInvalidOrExpired) {
		t.Errorf("deleted link still resolves: %v", err)
	}
}

func TestShareURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"https://a.example.com", "https://a.example.com/editor/anon/tok"},
		{"https://a.example.com/", "https://a.example.com/editor/anon/tok"},
	}
	for _, tt := range tests {
		if got := ShareURL(tt.base, "tok"); got != tt.want {
			t.Errorf("ShareURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestGenerateAccessToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := GenerateAccessToken()
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Errorf("token %q is not URL-safe", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}
