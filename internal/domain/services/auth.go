package services

import (
	"context"

	"collaboratex/internal/domain/models"
	"collaboratex/internal/domain/models/docsystem"
)

// AccessChecker decides what an identity or an anonymous token may do with a document.
//
// Every negative outcome collapses to one of two errors: domain.ErrLinkInvalidOrExpired
// when a presented token is not usable, domain.ErrForbidden otherwise. A missing
// document is reported as forbidden, never as not found.
type AccessChecker interface {
	// CanAccess checks identity ownership first, then the presented token.
	// identity may be nil (anonymous); token may be empty.
	CanAccess(ctx context.Context, documentID string, identity *models.Identity, token string) (docsystem.Access, error)

	// ResolveToken returns the usable link and its document for a bearer token.
	ResolveToken(ctx context.Context, token string) (*docsystem.AnonymousLink, *docsystem.Document, error)
}

// IdentityService is the managed identity backend (GoTrue).
//
// Errors wrap domain.ErrUnauthorized for rejected credentials or tokens,
// domain.ErrValidation for malformed input and domain.ErrUpstreamUnavailable
// for transport failures.
type IdentityService interface {
	SignIn(ctx context.Context, email, password string) (*models.AuthResult, error)

	// SignUp registers a user; the identity service sends the verification email
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)

	SignOut(ctx context.Context, accessToken string) error

	// GetUser verifies accessToken with a live round trip
	GetUser(ctx context.Context, accessToken string) (*models.Identity, error)

	// ExchangeCode trades an OAuth authorization code (PKCE) for a session
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*models.AuthResult, error)

	Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error)

	// Recover sends a password reset email that links back to redirectTo
	Recover(ctx context.Context, email, redirectTo string) error

	// AuthorizeURL is where the browser goes to start an OAuth sign-in
	AuthorizeURL(provider, redirectTo, codeChallenge string) string
}
