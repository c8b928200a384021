package session

import (
	"net/http"
	"strings"

	"collaboratex/internal/domain/models"
)

// TokenSource yields the credentials a request presents.
type TokenSource interface {
	Credentials() *models.Credentials
	// Persistent reports whether refreshed credentials can be written back.
	Persistent() bool
}

type cookieSource struct {
	store *CredentialStore
	r     *http.Request
}

func (s cookieSource) Credentials() *models.Credentials { return s.store.Read(s.r) }
func (s cookieSource) Persistent() bool                 { return true }

// CookieSource reads credentials from the auth cookie (page requests).
func CookieSource(store *CredentialStore, r *http.Request) TokenSource {
	return cookieSource{store: store, r: r}
}

type bearerSource struct {
	token string
}

func (s bearerSource) Credentials() *models.Credentials {
	if s.token == "" {
		return nil
	}
	return &models.Credentials{AccessToken: s.token}
}

func (s bearerSource) Persistent() bool { return false }

// BearerSource reads an access token from the Authorization header (API clients).
func BearerSource(r *http.Request) TokenSource {
	return bearerSource{token: BearerToken(r)}
}

// RequestSource prefers a bearer token and falls back to the cookie.
func RequestSource(store *CredentialStore, r *http.Request) TokenSource {
	if token := BearerToken(r); token != "" {
		return bearerSource{token: token}
	}
	return cookieSource{store: store, r: r}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
