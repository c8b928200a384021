package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"collaboratex/internal/httputil"
)

// anonymousTokenHeader carries an anonymous link token on /api/documents calls
const anonymousTokenHeader = "X-Anonymous-Token"

// pathUUID reads a path parameter and checks it is a UUID.
// Writes a 400 and returns false when it is not.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		httputil.RespondError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid "+name+" format")
		return "", false
	}
	return id.String(), true
}

// anonymousToken returns the link token presented alongside an API call
func anonymousToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(anonymousTokenHeader))
}

// safeRedirect returns target if it is a local path, otherwise fallback.
// Rejects absolute URLs, protocol-relative "//host" and backslash tricks.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return fallback
	}
	if strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	// browsers drop tabs and newlines, so "/\t/host" would become "//host"
	for i := 0; i < len(target); i++ {
		if target[i] < 0x20 || target[i] == 0x7f {
			return fallback
		}
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}
