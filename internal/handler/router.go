package handler

import (
	"net/http"
)

// Routes groups the handlers registered on the mux.
type Routes struct {
	Pages     *PageHandler
	Auth      *AuthHandler
	Documents *DocumentHandler
	Links     *AnonymousLinkHandler
	Anon      *AnonHandler
	Editor    *EditorHandler
	Health    *HealthHandler

	// AnonLimit wraps the anonymous link endpoints (per-IP rate limiting)
	AnonLimit func(http.Handler) http.Handler
	// Metrics is served on /metrics when set
	Metrics http.Handler
}

// NewMux registers every route (Go 1.22+ method and wildcard patterns).
func (rt *Routes) NewMux() *http.ServeMux {
	mux := http.NewServeMux()

	limit := rt.AnonLimit
	if limit == nil {
		limit = func(h http.Handler) http.Handler { return h }
	}

	// Health and metrics
	mux.HandleFunc("GET /health", rt.Health.HealthCheck)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	// Pages
	mux.HandleFunc("GET /{$}", rt.Pages.Landing)
	mux.HandleFunc("GET /auth/login", rt.Pages.LoginPage)
	mux.HandleFunc("POST /auth/login", rt.Pages.LoginSubmit)
	mux.HandleFunc("GET /auth/register", rt.Pages.RegisterPage)
	mux.HandleFunc("POST /auth/register", rt.Pages.RegisterSubmit)
	mux.HandleFunc("GET /auth/verification", rt.Pages.VerificationPage)
	mux.HandleFunc("GET /auth/reset-password", rt.Pages.ResetPasswordPage)
	mux.HandleFunc("POST /auth/reset-password", rt.Pages.ResetPasswordSubmit)
	mux.HandleFunc("GET /auth/oauth/{provider}", rt.Pages.OAuthStart)
	mux.HandleFunc("GET /auth/callback", rt.Pages.Callback)
	mux.HandleFunc("POST /auth/logout", rt.Pages.LogoutSubmit)
	mux.HandleFunc("GET /dashboard", rt.Pages.Dashboard)
	mux.HandleFunc("GET /profile", rt.Pages.Profile)
	mux.HandleFunc("GET /editor", rt.Pages.Editor)
	mux.Handle("GET /editor/anon/{token}", limit(http.HandlerFunc(rt.Pages.AnonEditor)))

	// Auth API
	mux.HandleFunc("POST /api/auth/login", rt.Auth.Login)
	mux.HandleFunc("POST /api/auth/register", rt.Auth.Register)
	mux.HandleFunc("POST /api/auth/logout", rt.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", rt.Auth.Me)

	// Document routes
	mux.HandleFunc("GET /api/documents", rt.Documents.ListDocuments)
	mux.HandleFunc("POST /api/documents", rt.Documents.CreateDocument)
	mux.HandleFunc("GET /api/documents/{id}", rt.Documents.GetDocument)
	mux.HandleFunc("PATCH /api/documents/{id}", rt.Documents.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", rt.Documents.DeleteDocument)

	// Anonymous link management (owner only)
	mux.HandleFunc("GET /api/documents/{id}/links", rt.Links.ListLinks)
	mux.HandleFunc("POST /api/documents/{id}/links", rt.Links.GenerateLink)
	mux.HandleFunc("POST /api/links/{id}/revoke", rt.Links.RevokeLink)
	mux.HandleFunc("DELETE /api/links/{id}", rt.Links.DeleteLink)

	// Anonymous link access (token only)
	mux.Handle("GET /api/anon/{token}", limit(http.HandlerFunc(rt.Anon.GetDocument)))
	mux.Handle("PUT /api/anon/{token}", limit(http.HandlerFunc(rt.Anon.SaveDocument)))

	// Editor language definitions
	mux.HandleFunc("GET /api/editor/languages", rt.Editor.ListLanguages)
	mux.HandleFunc("GET /api/editor/languages/{id}", rt.Editor.GetLanguage)

	return mux
}
