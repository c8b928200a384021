package domain

import "errors"

// Sentinel errors shared by every layer. Wrap with fmt.Errorf("...: %w", err)
// and match with errors.Is().
var (
	// ErrUnauthorized means no verified identity was presented (NotAuthenticated).
	ErrUnauthorized = errors.New("not authenticated")

	// ErrForbidden means an identity or token was presented but does not grant
	// the requested permission (NotAuthorized). Also returned for documents that
	// do not exist so callers cannot discover which ids exist.
	ErrForbidden = errors.New("not authorized")

	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")

	// ErrLinkInvalidOrExpired covers unknown, revoked and expired anonymous
	// links. The reason is never distinguished to the caller.
	ErrLinkInvalidOrExpired = errors.New("invalid or expired link")

	// ErrUpstreamUnavailable means the identity service or the database could
	// not be reached. Distinct from resolving to an anonymous caller.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
