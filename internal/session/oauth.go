package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
)

// StartOAuth stores a fresh PKCE verifier and returns the identity service
// URL the browser should be sent to.
func (s *Resolver) StartOAuth(w http.ResponseWriter, provider, redirectTo string) (string, error) {
	verifier, err := newCodeVerifier()
	if err != nil {
		return "", err
	}
	s.store.writeVerifier(w, verifier)
	return s.identity.AuthorizeURL(provider, redirectTo, codeChallenge(verifier)), nil
}

func newCodeVerifier() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// codeChallenge is the S256 transform of a PKCE verifier.
func codeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
