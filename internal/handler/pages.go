package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"collaboratex/internal/config"
	"collaboratex/internal/domain"
	"collaboratex/internal/domain/models/docsystem"
	docsysSvc "collaboratex/internal/domain/services/docsystem"
	"collaboratex/internal/httputil"
	"collaboratex/internal/session"
	"collaboratex/internal/web"
)

// callbackErrorCode is set on the login page when an OAuth exchange fails
const callbackErrorCode = "auth_callback_error"

// AuthActivity is the display-only record of recent auth events.
type AuthActivity interface {
	Snapshot(identityID string) (session.Event, bool)
}

// PageHandler serves the server-rendered pages
type PageHandler struct {
	render        *web.Renderer
	docService    docsysSvc.DocumentService
	sessions      SessionManager
	activity      AuthActivity
	routes        *config.RouteTable
	providers     []string
	callbackURL   string
	resetRedirect string // where password reset emails send the user
	logger        *slog.Logger
}

// NewPageHandler creates a new page handler. publicBaseURL is used to build
// the OAuth callback and password reset URLs.
func NewPageHandler(
	render *web.Renderer,
	docService docsysSvc.DocumentService,
	sessions SessionManager,
	activity AuthActivity,
	routes *config.RouteTable,
	providers []string,
	publicBaseURL string,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		render:        render,
		docService:    docService,
		sessions:      sessions,
		activity:      activity,
		routes:        routes,
		providers:     providers,
		callbackURL:   strings.TrimRight(publicBaseURL, "/") + "/auth/callback",
		resetRedirect: strings.TrimRight(publicBaseURL, "/") + routes.LoginPath,
		logger:        logger,
	}
}

// Landing renders the home page
// GET /
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "landing", web.Page{Identity: httputil.GetIdentity(r)})
}

// LoginPage renders the sign-in form
// GET /auth/login
func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var msg string
	if q.Get("error") == callbackErrorCode {
		msg = "Sign-in with the provider failed. Please try again."
	}
	h.renderLogin(w, http.StatusOK, msg, "", q.Get(h.routes.ReturnParam))
}

// LoginSubmit signs in from the form and returns the caller to where they were going
// POST /auth/login
func (h *PageHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, http.StatusBadRequest, "Invalid form submission", "", "")
		return
	}
	req := credentialsRequest{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	req.normalize()
	returnTo := r.PostForm.Get(h.routes.ReturnParam)

	if err := req.validateSignIn(); err != nil {
		h.renderLogin(w, http.StatusUnprocessableEntity, "Enter a valid email and password", req.Email, returnTo)
		return
	}

	if _, err := h.sessions.SignIn(r.Context(), w, req.Email, req.Password); err != nil {
		status, msg := h.authFailure(err)
		h.renderLogin(w, status, msg, req.Email, returnTo)
		return
	}

	http.Redirect(w, r, safeRedirect(returnTo, h.routes.HomePath), http.StatusSeeOther)
}

func (h *PageHandler) renderLogin(w http.ResponseWriter, status int, msg, email, returnTo string) {
	h.render.Render(w, status, "login", web.Page{
		Title: "Sign in",
		Error: msg,
		Data: web.LoginForm{
			Email:          email,
			RedirectedFrom: returnTo,
			Providers:      h.providers,
		},
	})
}

// RegisterPage renders the registration form
// GET /auth/register
func (h *PageHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, http.StatusOK, "", "")
}

// RegisterSubmit creates the account and sends the caller to the verification notice
// POST /auth/register
func (h *PageHandler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, http.StatusBadRequest, "Invalid form submission", "")
		return
	}
	req := credentialsRequest{
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}
	req.normalize()

	if err := req.validateSignUp(); err != nil {
		h.renderRegister(w, http.StatusUnprocessableEntity, strings.TrimSuffix(err.Error(), ": "+domain.ErrValidation.Error()), req.Email)
		return
	}

	if _, err := h.sessions.SignUp(r.Context(), req.Email, req.Password); err != nil {
		status, msg := h.authFailure(err)
		if errors.Is(err, domain.ErrValidation) {
			msg = "That email or password was not accepted"
		}
		h.renderRegister(w, status, msg, req.Email)
		return
	}

	http.Redirect(w, r, "/auth/verification", http.StatusSeeOther)
}

func (h *PageHandler) renderRegister(w http.ResponseWriter, status int, msg, email string) {
	h.render.Render(w, status, "register", web.Page{
		Title: "Register",
		Error: msg,
		Data:  web.RegisterForm{Email: email, MinPassword: config.MinPasswordLength},
	})
}

// ResetPasswordPage renders the password reset request form
// GET /auth/reset-password
func (h *PageHandler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.renderResetPassword(w, http.StatusOK, "", web.ResetPasswordForm{})
}

// ResetPasswordSubmit asks the identity service to email a reset link. The
// reply is the same whether or not the address has an account.
// POST /auth/reset-password
func (h *PageHandler) ResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderResetPassword(w, http.StatusBadRequest, "Invalid form submission", web.ResetPasswordForm{})
		return
	}
	email := strings.TrimSpace(strings.ToLower(r.PostForm.Get("email")))
	form := web.ResetPasswordForm{Email: email}

	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		h.renderResetPassword(w, http.StatusUnprocessableEntity, "Enter a valid email address", form)
		return
	}

	err := h.sessions.RequestPasswordReset(r.Context(), email, h.resetRedirect)
	switch {
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		h.logger.Error("identity service unavailable", "error", err)
		h.renderResetPassword(w, http.StatusServiceUnavailable, "The sign-in service is unavailable. Please try again shortly.", form)
		return
	case err != nil:
		h.logger.Warn("password reset request rejected", "error", err)
	}

	form.Sent = true
	h.renderResetPassword(w, http.StatusOK, "", form)
}

func (h *PageHandler) renderResetPassword(w http.ResponseWriter, status int, msg string, form web.ResetPasswordForm) {
	h.render.Render(w, status, "reset_password", web.Page{
		Title: "Reset password",
		Error: msg,
		Data:  form,
	})
}

// VerificationPage tells a new user to confirm their email
// GET /auth/verification
func (h *PageHandler) VerificationPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "verification", web.Page{Title: "Verify your email"})
}

// authFailure turns a sign-in or sign-up error into an inline form message
func (h *PageHandler) authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		h.logger.Error("identity service unavailable", "error", err)
		return http.StatusServiceUnavailable, "The sign-in service is unavailable. Please try again shortly."
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "Invalid email or password"
	default:
		h.logger.Error("unexpected auth failure", "error", err)
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

// OAuthStart sends the browser to the identity service for a provider sign-in
// GET /auth/oauth/{provider}
func (h *PageHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	if !slices.Contains(h.providers, provider) {
		h.render.RenderPanel(w, http.StatusNotFound, nil, web.Panel{
			Heading:   "Unknown sign-in provider",
			Message:   "This sign-in method is not available.",
			LinkHref:  h.routes.LoginPath,
			LinkLabel: "Back to sign in",
		})
		return
	}

	target, err := h.sessions.StartOAuth(w, provider, h.callbackURL)
	if err != nil {
		h.logger.Error("failed to start oauth sign-in", "provider", provider, "error", err)
		http.Redirect(w, r, h.loginWithError(), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Callback completes an OAuth sign-in
// GET /auth/callback
func (h *PageHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, h.routes.HomePath, http.StatusSeeOther)
		return
	}

	if _, err := h.sessions.ExchangeCode(r.Context(), w, r, code); err != nil {
		h.logger.Warn("oauth code exchange failed", "error", err)
		http.Redirect(w, r, h.loginWithError(), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.routes.HomePath, http.StatusSeeOther)
}

func (h *PageHandler) loginWithError() string {
	return h.routes.LoginPath + "?" + url.Values{"error": {callbackErrorCode}}.Encode()
}

// LogoutSubmit signs out and returns to the login page
// POST /auth/logout
func (h *PageHandler) LogoutSubmit(w http.ResponseWriter, r *http.Request) {
	src := session.CookieSource(h.sessions.Store(), r)
	if err := h.sessions.SignOut(r.Context(), w, src, httputil.GetIdentity(r)); err != nil {
		h.logger.Warn("sign-out not confirmed by identity service", "error", err)
	}
	http.Redirect(w, r, h.routes.LoginPath, http.StatusSeeOther)
}

// Dashboard lists the caller's documents
// GET /dashboard
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r)
	docs, err := h.docService.ListDocuments(r.Context(), identity)
	if err != nil {
		h.renderLoadError(w, r, err)
		return
	}

	h.render.Render(w, http.StatusOK, "dashboard", web.Page{
		Title:    "Dashboard",
		Identity: identity,
		Data:     web.DashboardView{Documents: docs},
	})
}

// Profile shows the signed-in identity
// GET /profile
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r)
	if identity == nil {
		h.renderLoadError(w, r, domain.ErrUnauthorized)
		return
	}
	view := web.ProfileView{Session: httputil.GetSession(r)}
	if e, ok := h.activity.Snapshot(identity.ID); ok {
		view.LastEvent, view.LastEventAt = string(e.Type), e.At
	}
	h.render.Render(w, http.StatusOK, "profile", web.Page{Title: "Profile", Identity: identity, Data: view})
}

// Editor opens a document for its owner
// GET /editor?id=
func (h *PageHandler) Editor(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r)
	id := r.URL.Query().Get("id")
	if _, err := uuid.Parse(id); err != nil {
		h.render.RenderPanel(w, http.StatusBadRequest, identity, web.Panel{
			Heading:   "No document selected",
			Message:   "Open a document from your dashboard.",
			LinkHref:  h.routes.HomePath,
			LinkLabel: "Back to dashboard",
		})
		return
	}

	view, err := h.docService.GetDocument(r.Context(), identity, id, "")
	if err != nil {
		h.renderLoadError(w, r, err)
		return
	}

	apiPath := "/api/documents/" + url.PathEscape(view.ID)
	h.render.Render(w, http.StatusOK, "editor", web.Page{
		Title:    view.Title,
		Identity: identity,
		Data: web.EditorView{
			Title:      view.Title,
			Content:    view.Content,
			ReadOnly:   !view.Access.Write,
			Owner:      view.Access.Owner,
			SaveURL:    apiPath,
			SaveMethod: http.MethodPatch,
			LinksURL:   apiPath + "/links",
		},
	})
}

// AnonEditor opens a document through an anonymous link
// GET /editor/anon/{token}
func (h *PageHandler) AnonEditor(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	doc, err := h.docService.GetDocumentByToken(r.Context(), token)
	if err != nil {
		h.renderLoadError(w, r, err)
		return
	}

	h.render.Render(w, http.StatusOK, "editor", web.Page{
		Title: doc.Title,
		Data: web.EditorView{
			Title:      doc.Title,
			Content:    doc.Content,
			ReadOnly:   doc.Permission != docsystem.PermissionEdit,
			SaveURL:    "/api/anon/" + url.PathEscape(token),
			SaveMethod: http.MethodPut,
		},
	})
}

// renderLoadError renders a full-page message with a way out instead of a
// broken page.
func (h *PageHandler) renderLoadError(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := errorStatus(err)
	panel := web.Panel{
		Heading:   http.StatusText(status),
		Message:   detail,
		LinkHref:  h.routes.HomePath,
		LinkLabel: "Back to dashboard",
	}

	switch {
	case errors.Is(err, domain.ErrLinkInvalidOrExpired):
		panel.Heading = linkErrorDetail
		panel.Message = "Ask the document owner for a new link."
		panel.LinkHref, panel.LinkLabel = "/", "Go to the home page"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		panel.Heading = "Temporarily unavailable"
		panel.LinkHref, panel.LinkLabel = r.URL.RequestURI(), "Try again"
	case status == http.StatusInternalServerError:
		h.logger.Error("page load failed", "path", r.URL.Path, "user_id", httputil.GetUserID(r), "error", err)
	}

	h.render.RenderPanel(w, status, httputil.GetIdentity(r), panel)
}
