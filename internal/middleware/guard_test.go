package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"collaboratex/internal/config"
	"collaboratex/internal/domain"
	"collaboratex/internal/domain/models"
	"collaboratex/internal/httputil"
	"collaboratex/internal/session"
)

type fakeResolver struct {
	identity *models.Identity
	err      error
	calls    int
	store    *session.CredentialStore
}

func (f *fakeResolver) Resolve(_ context.Context, _ session.TokenSource) (*session.Resolution, error) {
	f.calls++
	if f.err != nil {
		return &session.Resolution{}, f.err
	}
	return &session.Resolution{Identity: f.identity}, nil
}

func (f *fakeResolver) Store() *session.CredentialStore { return f.store }

func newFakeResolver(identity *models.Identity, err error) *fakeResolver {
	return &fakeResolver{
		identity: identity,
		err:      err,
		store:    session.NewCredentialStore("test", time.Hour, false),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRoutes(t *testing.T) *config.RouteTable {
	t.Helper()
	routes, err := config.LoadRoutes()
	if err != nil {
		t.Fatalf("LoadRoutes: %v", err)
	}
	return routes
}

// echoIdentity writes the context identity id, or "anon".
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id := httputil.GetUserID(r)
	if id == "" {
		id = "anon"
	}
	io.WriteString(w, id)
})

func TestGuard(t *testing.T) {
	alice := &models.Identity{ID: "alice", Email: "alice@example.com"}

	tests := []struct {
		name         string
		target       string
		identity     *models.Identity
		resolveErr   error
		wantStatus   int
		wantLocation string
		wantBody     string
		wantResolved bool
	}{
		{
			name:         "anonymous on protected page goes to login",
			target:       "/dashboard",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/auth/login?redirectedFrom=%2Fdashboard",
			wantResolved: true,
		},
		{
			name:         "return target keeps the query",
			target:       "/editor?id=abc",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/auth/login?redirectedFrom=%2Feditor%3Fid%3Dabc",
			wantResolved: true,
		},
		{
			name:         "signed in on protected page passes with identity",
			target:       "/editor/x",
			identity:     alice,
			wantStatus:   http.StatusOK,
			wantBody:     "alice",
			wantResolved: true,
		},
		{
			name:         "signed in on login page goes home",
			target:       "/auth/login",
			identity:     alice,
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/dashboard",
			wantResolved: true,
		},
		{
			name:         "anonymous on login page passes",
			target:       "/auth/register",
			wantStatus:   http.StatusOK,
			wantBody:     "anon",
			wantResolved: true,
		},
		{
			name:         "resolution failure fails closed",
			target:       "/profile",
			identity:     alice,
			resolveErr:   domain.ErrUpstreamUnavailable,
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/auth/login?redirectedFrom=%2Fprofile",
			wantResolved: true,
		},
		{
			name:         "public anonymous editor is not resolved",
			target:       "/editor/anon/tok",
			wantStatus:   http.StatusOK,
			wantBody:     "anon",
			wantResolved: false,
		},
		{
			name:         "paths outside the matcher are not resolved",
			target:       "/",
			identity:     alice,
			wantStatus:   http.StatusOK,
			wantBody:     "anon",
			wantResolved: false,
		},
		{
			name:         "prefix match respects segments",
			target:       "/editorial",
			wantStatus:   http.StatusOK,
			wantBody:     "anon",
			wantResolved: false,
		},
	}

	routes := testRoutes(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := newFakeResolver(tt.identity, tt.resolveErr)
			h := Guard(routes, resolver, testLogger())(echoIdentity)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantLocation != "" && rec.Header().Get("Location") != tt.wantLocation {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.wantLocation)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if got := resolver.calls > 0; got != tt.wantResolved {
				t.Errorf("resolved = %v, want %v", got, tt.wantResolved)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	routes := testRoutes(t)

	tests := []struct {
		path      string
		anonymous bool
		want      Decision
	}{
		{"/dashboard", true, DecisionRedirectLogin},
		{"/dashboard/sub", true, DecisionRedirectLogin},
		{"/dashboard", false, DecisionAllow},
		{"/auth/login", false, DecisionRedirectHome},
		{"/auth/login", true, DecisionAllow},
		{"/auth/verification", false, DecisionAllow},
		{"/auth/verification", true, DecisionAllow},
	}

	for _, tt := range tests {
		if got := decide(routes, tt.path, tt.anonymous); got != tt.want {
			t.Errorf("decide(%q, anonymous=%v) = %q, want %q", tt.path, tt.anonymous, got, tt.want)
		}
	}
}

func TestLoginRedirect_RoundTrips(t *testing.T) {
	routes := testRoutes(t)

	loc := LoginRedirect(routes, "/editor?id=1&x=2")
	u, err := url.Parse(loc)
	if err != nil {
		t.Fatalf("parse %q: %v", loc, err)
	}
	if u.Path != "/auth/login" {
		t.Errorf("path = %q, want /auth/login", u.Path)
	}
	if got := u.Query().Get("redirectedFrom"); got != "/editor?id=1&x=2" {
		t.Errorf("redirectedFrom = %q", got)
	}
}

func TestAPIAuth(t *testing.T) {
	alice := &models.Identity{ID: "alice"}

	t.Run("identity stored in context", func(t *testing.T) {
		resolver := newFakeResolver(alice, nil)
		rec := httptest.NewRecorder()
		APIAuth(resolver, testLogger())(echoIdentity).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))

		if rec.Body.String() != "alice" {
			t.Errorf("body = %q, want alice", rec.Body.String())
		}
	})

	t.Run("resolution failure recorded and request continues", func(t *testing.T) {
		resolver := newFakeResolver(nil, domain.ErrUpstreamUnavailable)
		var recorded error
		h := APIAuth(resolver, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorded = httputil.GetResolveError(r)
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if !errors.Is(recorded, domain.ErrUpstreamUnavailable) {
			t.Errorf("resolve error = %v, want upstream unavailable", recorded)
		}
	})

	t.Run("anonymous link and non-api routes skip resolution", func(t *testing.T) {
		resolver := newFakeResolver(alice, nil)
		h := APIAuth(resolver, testLogger())(echoIdentity)

		for _, target := range []string{"/api/anon/tok", "/health", "/dashboard"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			if rec.Body.String() != "anon" {
				t.Errorf("%s: body = %q, want anon", target, rec.Body.String())
			}
		}
		if resolver.calls != 0 {
			t.Errorf("resolver called %d times, want 0", resolver.calls)
		}
	})
}
