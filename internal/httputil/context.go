package httputil

import (
	"context"
	"net/http"

	"collaboratex/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	identityKey     contextKey = "identity"
	sessionKey      contextKey = "session"
	resolveErrorKey contextKey = "resolveError"
)

// WithIdentity adds the resolved identity to the request context
func WithIdentity(r *http.Request, identity *models.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, identity)
	return r.WithContext(ctx)
}

// GetIdentity retrieves the identity from context; nil means anonymous
func GetIdentity(r *http.Request) *models.Identity {
	identity, _ := r.Context().Value(identityKey).(*models.Identity)
	return identity
}

// GetUserID returns the identity's id, or "" for anonymous requests
func GetUserID(r *http.Request) string {
	if identity := GetIdentity(r); identity != nil {
		return identity.ID
	}
	return ""
}

// WithSession adds the display view of the caller's session to the request context
func WithSession(r *http.Request, sess *models.Session) *http.Request {
	ctx := context.WithValue(r.Context(), sessionKey, sess)
	return r.WithContext(ctx)
}

// GetSession retrieves the session view, or nil when none was resolved
func GetSession(r *http.Request) *models.Session {
	sess, _ := r.Context().Value(sessionKey).(*models.Session)
	return sess
}

// WithResolveError records that the session could not be resolved
// (identity service unreachable). The request continues as anonymous.
func WithResolveError(r *http.Request, err error) *http.Request {
	ctx := context.WithValue(r.Context(), resolveErrorKey, err)
	return r.WithContext(ctx)
}

// GetResolveError returns the error recorded by WithResolveError, if any
func GetResolveError(r *http.Request) error {
	err, _ := r.Context().Value(resolveErrorKey).(error)
	return err
}
