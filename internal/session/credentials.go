package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"collaboratex/internal/domain/models"
)

const (
	fallbackCookieName = "sb-auth-token"
	verifierSuffix     = "-code-verifier"
	verifierMaxAge     = 10 * time.Minute
)

// CookieName returns the auth cookie name for a project: sb-<ref>-auth-token.
func CookieName(projectRef string) string {
	if projectRef == "" {
		return fallbackCookieName
	}
	return "sb-" + projectRef + "-auth-token"
}

// CredentialStore keeps session credentials in an HttpOnly cookie.
// Only the Resolver writes or clears it.
type CredentialStore struct {
	name   string
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

// NewCredentialStore creates a cookie-backed credential store.
// maxAge bounds the cookie lifetime; the refresh token decides the real horizon.
func NewCredentialStore(projectRef string, maxAge time.Duration, secure bool) *CredentialStore {
	return &CredentialStore{
		name:   CookieName(projectRef),
		maxAge: maxAge,
		secure: secure,
		now:    time.Now,
	}
}

// Name is the auth cookie name.
func (s *CredentialStore) Name() string { return s.name }

// Read returns the stored credentials, or nil when there are none.
// A cookie that does not decode is treated as absent.
func (s *CredentialStore) Read(r *http.Request) *models.Credentials {
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return nil
	}
	creds, err := decodeCredentials(c.Value)
	if err != nil {
		return nil
	}
	return creds
}

func (s *CredentialStore) write(w http.ResponseWriter, creds *models.Credentials) error {
	value, err := encodeCredentials(creds)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(s.name, value, s.maxAge))
	return nil
}

func (s *CredentialStore) clear(w http.ResponseWriter) {
	c := s.cookie(s.name, "", 0)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// writeVerifier stores the PKCE code verifier for the OAuth round trip.
func (s *CredentialStore) writeVerifier(w http.ResponseWriter, verifier string) {
	http.SetCookie(w, s.cookie(s.name+verifierSuffix, verifier, verifierMaxAge))
}

// takeVerifier returns the PKCE code verifier and clears its cookie.
func (s *CredentialStore) takeVerifier(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(s.name + verifierSuffix)
	if err != nil {
		return ""
	}
	expired := s.cookie(s.name+verifierSuffix, "", 0)
	expired.MaxAge = -1
	http.SetCookie(w, expired)
	return c.Value
}

func (s *CredentialStore) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		c.MaxAge = int(maxAge.Seconds())
		c.Expires = s.now().Add(maxAge)
	}
	return c
}

func encodeCredentials(creds *models.Credentials) (string, error) {
	data, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("encode credentials: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decodeCredentials(value string) (*models.Credentials, error) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("decode credentials: missing access token")
	}
	return &creds, nil
}
