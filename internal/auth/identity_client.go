package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"collaboratex/internal/domain"
	"collaboratex/internal/domain/models"
)

// IdentityClient talks to the GoTrue REST API under <supabase-url>/auth/v1.
// It implements services.IdentityService.
type IdentityClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// NewIdentityClient creates a client for the identity service.
// anonKey is the project's public API key, sent as the apikey header.
func NewIdentityClient(supabaseURL, anonKey string, timeout time.Duration, logger *slog.Logger) *IdentityClient {
	return &IdentityClient{
		baseURL: strings.TrimRight(supabaseURL, "/") + "/auth/v1",
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now:    time.Now,
		logger: logger,
	}
}

// AuthError is a rejection returned by the identity service.
// It wraps domain.ErrUnauthorized or domain.ErrValidation.
type AuthError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.kind }

// gotrueUser is the user object returned by /user, /signup and inside sessions
type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// gotrueSession is the /token response
type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         *gotrueUser `json:"user"`
}

// gotrueError covers both error shapes GoTrue has used
type gotrueError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

// SignIn exchanges email and password for a session.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (*models.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var sess gotrueSession
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &sess); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return c.authResult(&sess)
}

// SignUp registers a user. With email confirmation enabled GoTrue returns the
// bare user and sends the verification email itself.
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	body := map[string]string{"email": email, "password": password}

	// Either a user object or {user, session} depending on autoconfirm
	var resp struct {
		gotrueUser
		User *gotrueUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", "", body, &resp); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	user := &resp.gotrueUser
	if resp.User != nil {
		user = resp.User
	}
	if user.ID == "" {
		return nil, fmt.Errorf("sign up: response without user: %w", domain.ErrUpstreamUnavailable)
	}
	return &models.Identity{ID: user.ID, Email: user.Email}, nil
}

// SignOut revokes the session of accessToken on this device only.
func (c *IdentityClient) SignOut(ctx context.Context, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, "/logout?scope=local", accessToken, nil, nil); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// GetUser verifies accessToken against the identity service.
func (c *IdentityClient) GetUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	var user gotrueUser
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("get user: empty id: %w", domain.ErrUnauthorized)
	}
	return &models.Identity{ID: user.ID, Email: user.Email}, nil
}

// ExchangeCode completes a PKCE OAuth flow.
func (c *IdentityClient) ExchangeCode(ctx context.Context, code, codeVerifier string) (*models.AuthResult, error) {
	body := map[string]string{"auth_code": code, "code_verifier": codeVerifier}
	var sess gotrueSession
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=pkce", "", body, &sess); err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return c.authResult(&sess)
}

// Refresh trades a refresh token for a new session. Refresh tokens are single use.
func (c *IdentityClient) Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	body := map[string]string{"refresh_token": refreshToken}
	var sess gotrueSession
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &sess); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return c.authResult(&sess)
}

// Recover asks the identity service to email a password reset link that
// returns the user to redirectTo.
func (c *IdentityClient) Recover(ctx context.Context, email, redirectTo string) error {
	path := "/recover"
	if redirectTo != "" {
		path += "?" + url.Values{"redirect_to": {redirectTo}}.Encode()
	}
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, path, "", body, nil); err != nil {
		return fmt.Errorf("recover: %w", err)
	}
	return nil
}

// AuthorizeURL returns the URL that starts an OAuth sign-in with provider.
func (c *IdentityClient) AuthorizeURL(provider, redirectTo, codeChallenge string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	if codeChallenge != "" {
		q.Set("code_challenge", codeChallenge)
		q.Set("code_challenge_method", "s256")
	}
	return c.baseURL + "/authorize?" + q.Encode()
}

func (c *IdentityClient) authResult(sess *gotrueSession) (*models.AuthResult, error) {
	if sess.AccessToken == "" || sess.User == nil || sess.User.ID == "" {
		return nil, fmt.Errorf("incomplete session in response: %w", domain.ErrUpstreamUnavailable)
	}

	expiresAt := c.now().Add(time.Duration(sess.ExpiresIn) * time.Second)
	if sess.ExpiresAt > 0 {
		expiresAt = time.Unix(sess.ExpiresAt, 0)
	}

	return &models.AuthResult{
		Identity: &models.Identity{ID: sess.User.ID, Email: sess.User.Email},
		Credentials: &models.Credentials{
			AccessToken:  sess.AccessToken,
			RefreshToken: sess.RefreshToken,
			ExpiresAt:    expiresAt,
		},
	}, nil
}

// do performs one round trip. 4xx responses become *AuthError; transport
// failures and 5xx become domain.ErrUpstreamUnavailable.
func (c *IdentityClient) do(ctx context.Context, method, path, bearer string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("identity service unreachable", "path", path, "error", err)
		return fmt.Errorf("%s %s: %v: %w", method, path, err, domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %v: %w", err, domain.ErrUpstreamUnavailable)
	}

	if resp.StatusCode >= 500 {
		c.logger.Warn("identity service error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}
	if resp.StatusCode >= 400 {
		return parseAuthError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	return nil
}

func parseAuthError(status int, data []byte) error {
	var ge gotrueError
	_ = json.Unmarshal(data, &ge)

	msg := firstNonEmpty(ge.ErrorDescription, ge.Msg, ge.Message, ge.Error, http.StatusText(status))
	code := firstNonEmpty(ge.ErrorCode, ge.Error)

	kind := domain.ErrUnauthorized
	if status == http.StatusUnprocessableEntity || (status == http.StatusBadRequest && code != "invalid_grant") {
		kind = domain.ErrValidation
	}
	return &AuthError{Status: status, Code: code, Message: msg, kind: kind}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsAuthError reports whether err is a rejection from the identity service.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
