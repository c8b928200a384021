package docsystem

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// accessTokenBytes is the entropy of an anonymous link token
const accessTokenBytes = 32

// GenerateAccessToken returns a URL-safe random token for an anonymous link.
func GenerateAccessToken() (string, error) {
	b := make([]byte, accessTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
