package auth

import "collaboratex/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// The middleware stays agnostic to how keys are fetched.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Expired reports whether the token is well-signed but past its exp claim.
	// The session resolver uses it to refresh before the live verification call.
	Expired(tokenString string) bool

	// Close releases any resources held by the verifier.
	Close() error
}
