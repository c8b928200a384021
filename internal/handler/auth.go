package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"collaboratex/internal/config"
	"collaboratex/internal/domain"
	"collaboratex/internal/domain/models"
	"collaboratex/internal/httputil"
	"collaboratex/internal/session"
)

// SessionManager is the part of session.Resolver that changes auth state.
type SessionManager interface {
	SignIn(ctx context.Context, w http.ResponseWriter, email, password string) (*models.Identity, error)
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context, w http.ResponseWriter, src session.TokenSource, who *models.Identity) error
	ExchangeCode(ctx context.Context, w http.ResponseWriter, r *http.Request, code string) (*models.Identity, error)
	StartOAuth(w http.ResponseWriter, provider, redirectTo string) (string, error)
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
	Store() *session.CredentialStore
}

// AuthHandler handles the JSON auth endpoints
type AuthHandler struct {
	sessions SessionManager
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions SessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// credentialsRequest is the sign-in and registration payload
type credentialsRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (c *credentialsRequest) normalize() {
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
}

// validateSignIn only checks presence; the identity service judges the rest
func (c *credentialsRequest) validateSignIn() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required),
	)
	return wrapValidation(err)
}

func (c *credentialsRequest) validateSignUp() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password,
			validation.Required,
			validation.RuneLength(config.MinPasswordLength, 0).Error(fmt.Sprintf("must be at least %d characters", config.MinPasswordLength)),
		),
		validation.Field(&c.ConfirmPassword,
			validation.When(c.ConfirmPassword != "", validation.In(c.Password).Error("passwords do not match")),
		),
	)
	return wrapValidation(err)
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
}

// Login signs in with email and password and sets the session cookie
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.normalize()
	if err := req.validateSignIn(); err != nil {
		handleError(w, r, err)
		return
	}

	identity, err := h.sessions.SignIn(r.Context(), w, req.Email, req.Password)
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    identity,
	})
}

// Register creates an account; the session starts after email verification
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.normalize()
	if err := req.validateSignUp(); err != nil {
		handleError(w, r, err)
		return
	}

	identity, err := h.sessions.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":               true,
		"user":                  identity,
		"verification_required": true,
	})
}

// Logout ends the session and clears the cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	src := session.RequestSource(h.sessions.Store(), r)
	if err := h.sessions.SignOut(r.Context(), w, src, httputil.GetIdentity(r)); err != nil {
		// The cookie is cleared either way
		h.logger.Warn("sign-out not confirmed by identity service", "error", err)
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Me returns the caller's identity
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r)
	if identity == nil {
		handleError(w, r, domain.ErrUnauthorized)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, identity)
}

// respondAuthError hides the identity service's reason for a rejected sign-in
func (h *AuthHandler) respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		h.logger.Error("identity service unavailable", "error", err)
		handleError(w, r, err)
	default:
		handleError(w, r, err)
	}
}
