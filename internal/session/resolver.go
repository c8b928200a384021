package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"collaboratex/internal/auth"
	"collaboratex/internal/domain"
	"collaboratex/internal/domain/models"
	"collaboratex/internal/domain/services"
)

// Resolution is the outcome of resolving a request's session.
// A nil Identity is the anonymous caller.
type Resolution struct {
	Identity    *models.Identity
	Credentials *models.Credentials
	// Session is read from the verified access token; display only
	Session *models.Session
	// Refreshed is set when the access token was rotated during resolution
	Refreshed bool
	// stale means the presented credentials are dead and the cookie should go
	stale      bool
	persistent bool
	store      *CredentialStore
}

// Anonymous reports whether no identity was resolved.
func (r *Resolution) Anonymous() bool {
	return r == nil || r.Identity == nil
}

// Commit writes rotated credentials back to the cookie, or clears a dead one.
// It is a no-op for bearer sources and unchanged sessions.
func (r *Resolution) Commit(w http.ResponseWriter) error {
	if r == nil || !r.persistent || r.store == nil {
		return nil
	}
	switch {
	case r.Refreshed && r.Credentials != nil:
		return r.store.write(w, r.Credentials)
	case r.stale:
		r.store.clear(w)
	}
	return nil
}

// Resolver turns presented credentials into a verified identity and owns every
// change to the credential store.
type Resolver struct {
	identity services.IdentityService
	verifier auth.JWTVerifier
	store    *CredentialStore
	pub      *Publisher
	logger   *slog.Logger
}

// NewResolver creates a resolver. pub must be the hub's only publisher.
func NewResolver(
	identity services.IdentityService,
	verifier auth.JWTVerifier,
	store *CredentialStore,
	pub *Publisher,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		identity: identity,
		verifier: verifier,
		store:    store,
		pub:      pub,
		logger:   logger,
	}
}

// Store returns the credential store the resolver writes to.
func (s *Resolver) Store() *CredentialStore { return s.store }

// Resolve verifies the credentials src presents. "No session" is never an
// error; only an unreachable identity service is (domain.ErrUpstreamUnavailable).
func (s *Resolver) Resolve(ctx context.Context, src TokenSource) (*Resolution, error) {
	res := &Resolution{persistent: src.Persistent(), store: s.store}

	creds := src.Credentials()
	if creds == nil || creds.AccessToken == "" {
		return res, nil
	}
	res.Credentials = creds

	if s.verifier.Expired(creds.AccessToken) {
		if creds.RefreshToken == "" {
			res.stale = true
			return res, nil
		}
		return s.refresh(ctx, res)
	}

	// Forged or wrong-role tokens stop here without a call to the identity service
	claims, err := s.verifier.VerifyToken(creds.AccessToken)
	if err != nil {
		s.logger.Debug("access token failed local verification", "error", err)
		res.stale = true
		return res, nil
	}

	identity, err := s.identity.GetUser(ctx, creds.AccessToken)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return res, fmt.Errorf("resolve session: %w", err)
		}
		s.logger.Debug("session rejected by identity service", "error", err)
		res.stale = true
		return res, nil
	}

	res.Identity = identity
	res.Session = sessionView(claims)
	return res, nil
}

func sessionView(claims *models.SupabaseClaims) *models.Session {
	if claims == nil {
		return nil
	}
	sess := claims.Session()
	return &sess
}

func (s *Resolver) refresh(ctx context.Context, res *Resolution) (*Resolution, error) {
	result, err := s.identity.Refresh(ctx, res.Credentials.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return res, fmt.Errorf("refresh session: %w", err)
		}
		s.logger.Debug("refresh token rejected", "error", err)
		res.stale = true
		return res, nil
	}

	res.Identity = result.Identity
	res.Credentials = result.Credentials
	res.Refreshed = true
	if result.Credentials != nil {
		if claims, err := s.verifier.VerifyToken(result.Credentials.AccessToken); err == nil {
			res.Session = sessionView(claims)
		}
	}
	s.pub.Publish(EventTokenRefreshed, result.Identity)
	return res, nil
}

// SignIn authenticates with email and password and stores the new session.
func (s *Resolver) SignIn(ctx context.Context, w http.ResponseWriter, email, password string) (*models.Identity, error) {
	result, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(w, result)
}

// SignUp registers a user. No session is stored until the email is verified.
func (s *Resolver) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	identity, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(EventUserSignedUp, identity)
	return identity, nil
}

// RequestPasswordReset sends a reset email. The session is not touched.
func (s *Resolver) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	return s.identity.Recover(ctx, email, redirectTo)
}

// SignOut revokes the presented session and clears the cookie. The cookie is
// cleared even if the identity service cannot be reached.
func (s *Resolver) SignOut(ctx context.Context, w http.ResponseWriter, src TokenSource, who *models.Identity) error {
	var err error
	if creds := src.Credentials(); creds != nil && creds.AccessToken != "" {
		if err = s.identity.SignOut(ctx, creds.AccessToken); err != nil {
			s.logger.Warn("remote sign-out failed", "error", err)
		}
	}
	s.store.clear(w)
	s.pub.Publish(EventSignedOut, who)

	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return err
	}
	return nil
}

// ExchangeCode completes an OAuth sign-in using the verifier stored by StartOAuth.
func (s *Resolver) ExchangeCode(ctx context.Context, w http.ResponseWriter, r *http.Request, code string) (*models.Identity, error) {
	verifier := s.store.takeVerifier(w, r)
	if verifier == "" {
		return nil, fmt.Errorf("exchange code: missing code verifier: %w", domain.ErrUnauthorized)
	}
	result, err := s.identity.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return nil, err
	}
	return s.establish(w, result)
}

func (s *Resolver) establish(w http.ResponseWriter, result *models.AuthResult) (*models.Identity, error) {
	if err := s.store.write(w, result.Credentials); err != nil {
		return nil, err
	}
	s.pub.Publish(EventSignedIn, result.Identity)
	return result.Identity, nil
}
