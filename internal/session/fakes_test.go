package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"collaboratex/internal/domain"
	"collaboratex/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeIdentity is an in-memory identity service keyed by access token.
type fakeIdentity struct {
	users     map[string]*models.Identity // access token -> user
	refreshes map[string]string           // refresh token -> new access token
	passwords map[string]string           // email -> password
	down      bool

	gotVerifier  string
	signOutCalls int
	refreshCalls int
	getUserCalls int
	recovered    []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		users:     map[string]*models.Identity{},
		refreshes: map[string]string{},
		passwords: map[string]string{},
	}
}

func (f *fakeIdentity) session(access string, id *models.Identity) *models.AuthResult {
	f.users[access] = id
	return &models.AuthResult{
		Identity: id,
		Credentials: &models.Credentials{
			AccessToken:  access,
			RefreshToken: "refresh-" + access,
			ExpiresAt:    time.Now().Add(time.Hour),
		},
	}
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*models.AuthResult, error) {
	if f.down {
		return nil, domain.ErrUpstreamUnavailable
	}
	if f.passwords[email] != password {
		return nil, fmt.Errorf("sign in: %w", domain.ErrUnauthorized)
	}
	return f.session("access-"+email, &models.Identity{ID: "id-" + email, Email: email}), nil
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password string) (*models.Identity, error) {
	f.passwords[email] = password
	return &models.Identity{ID: "id-" + email, Email: email}, nil
}

func (f *fakeIdentity) SignOut(_ context.Context, accessToken string) error {
	f.signOutCalls++
	if f.down {
		return domain.ErrUpstreamUnavailable
	}
	delete(f.users, accessToken)
	return nil
}

func (f *fakeIdentity) GetUser(_ context.Context, accessToken string) (*models.Identity, error) {
	f.getUserCalls++
	if f.down {
		return nil, fmt.Errorf("get user: %w", domain.ErrUpstreamUnavailable)
	}
	id, ok := f.users[accessToken]
	if !ok {
		return nil, fmt.Errorf("get user: %w", domain.ErrUnauthorized)
	}
	return id, nil
}

func (f *fakeIdentity) ExchangeCode(_ context.Context, code, codeVerifier string) (*models.AuthResult, error) {
	f.gotVerifier = codeVerifier
	if code != "good-code" {
		return nil, fmt.Errorf("exchange code: %w", domain.ErrUnauthorized)
	}
	return f.session("access-oauth", &models.Identity{ID: "id-oauth", Email: "oauth@example.com"}), nil
}

func (f *fakeIdentity) Refresh(_ context.Context, refreshToken string) (*models.AuthResult, error) {
	f.refreshCalls++
	if f.down {
		return nil, fmt.Errorf("refresh: %w", domain.ErrUpstreamUnavailable)
	}
	access, ok := f.refreshes[refreshToken]
	if !ok {
		return nil, fmt.Errorf("refresh: %w", domain.ErrUnauthorized)
	}
	delete(f.refreshes, refreshToken)
	return f.session(access, &models.Identity{ID: "id-refreshed", Email: "r@example.com"}), nil
}

func (f *fakeIdentity) Recover(_ context.Context, email, redirectTo string) error {
	if f.down {
		return fmt.Errorf("recover: %w", domain.ErrUpstreamUnavailable)
	}
	f.recovered = append(f.recovered, email+" "+redirectTo)
	return nil
}

func (f *fakeIdentity) AuthorizeURL(provider, redirectTo, codeChallenge string) string {
	return "https://id.example.com/authorize?provider=" + provider + "&code_challenge=" + codeChallenge
}

// fakeVerifier reports tokens listed in expired as locally expired and
// rejects tokens listed in forged.
type fakeVerifier struct {
	expired map[string]bool
	forged  map[string]bool
}

func (v *fakeVerifier) VerifyToken(token string) (*models.SupabaseClaims, error) {
	if v.forged[token] || v.expired[token] {
		return nil, fmt.Errorf("verify token: %w", domain.ErrUnauthorized)
	}
	claims := &models.SupabaseClaims{Role: "authenticated", Email: "claims@example.com"}
	claims.Subject = "sub-" + token
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	return claims, nil
}
func (v *fakeVerifier) Expired(token string) bool { return v.expired[token] }
func (v *fakeVerifier) Close() error              { return nil }

type harness struct {
	identity *fakeIdentity
	verifier *fakeVerifier
	store    *CredentialStore
	hub      *Hub
	resolver *Resolver
	events   []Event
}

func newHarness() *harness {
	h := &harness{
		identity: newFakeIdentity(),
		verifier: &fakeVerifier{expired: map[string]bool{}, forged: map[string]bool{}},
		store:    NewCredentialStore("abcd", 24*time.Hour, false),
		hub:      NewHub(testLogger),
	}
	pub, err := h.hub.Publisher()
	if err != nil {
		panic(err)
	}
	h.hub.Subscribe(func(e Event) { h.events = append(h.events, e) })
	h.resolver = NewResolver(h.identity, h.verifier, h.store, pub, testLogger)
	return h
}

// requestWithCookies builds a request carrying the cookies a response set.
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			req.AddCookie(c)
		}
	}
	return req
}

func requestWithCredentials(store *CredentialStore, creds *models.Credentials) *http.Request {
	rec := httptest.NewRecorder()
	if err := store.write(rec, creds); err != nil {
		panic(err)
	}
	return requestWithCookies(rec)
}
