package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"collaboratex/internal/config"
	"collaboratex/internal/httputil"
	"collaboratex/internal/metrics"
	"collaboratex/internal/session"
)

// SessionResolver is the part of session.Resolver the middleware needs.
type SessionResolver interface {
	Resolve(ctx context.Context, src session.TokenSource) (*session.Resolution, error)
	Store() *session.CredentialStore
}

// Decision is the outcome of the route guard for one request.
type Decision string

const (
	DecisionPass          Decision = "pass"   // path outside the matcher, nothing resolved
	DecisionPublic        Decision = "public" // public page, nothing resolved
	DecisionAllow         Decision = "allow"
	DecisionRedirectLogin Decision = "redirect_login"
	DecisionRedirectHome  Decision = "redirect_home"
)

// classify decides what can be decided before resolving a session.
// It returns DecisionAllow when the session has to be resolved first.
func classify(routes *config.RouteTable, path string) Decision {
	if !config.MatchAny(path, routes.Matcher) {
		return DecisionPass
	}
	if config.MatchAny(path, routes.Public) {
		return DecisionPublic
	}
	return DecisionAllow
}

// decide applies the guard rules once the caller is known.
func decide(routes *config.RouteTable, path string, anonymous bool) Decision {
	switch {
	case anonymous && config.MatchAny(path, routes.Protected):
		return DecisionRedirectLogin
	case !anonymous && config.MatchAny(path, routes.AuthEntry):
		return DecisionRedirectHome
	default:
		return DecisionAllow
	}
}

// LoginRedirect builds the login URL that returns the caller to target.
func LoginRedirect(routes *config.RouteTable, target string) string {
	q := url.Values{}
	q.Set(routes.ReturnParam, target)
	return routes.LoginPath + "?" + q.Encode()
}

// Guard protects page routes. Anonymous callers on protected pages are sent to
// the login page, signed-in callers on sign-in pages are sent home. A session
// that cannot be resolved is treated as anonymous.
func Guard(routes *config.RouteTable, resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if d := classify(routes, path); d != DecisionAllow {
				metrics.GuardDecisions.WithLabelValues(string(d)).Inc()
				next.ServeHTTP(w, r)
				return
			}

			res, err := resolver.Resolve(r.Context(), session.CookieSource(resolver.Store(), r))
			if err != nil {
				logger.Warn("session resolution failed, continuing as anonymous",
					"path", path,
					"error", err,
				)
				metrics.SessionResolveFailures.Inc()
				res = nil
			}

			if res != nil {
				if err := res.Commit(w); err != nil {
					logger.Error("failed to write session cookie", "error", err)
				}
			}

			d := decide(routes, path, res.Anonymous())
			metrics.GuardDecisions.WithLabelValues(string(d)).Inc()

			switch d {
			case DecisionRedirectLogin:
				target := path
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, LoginRedirect(routes, target), http.StatusSeeOther)
				return
			case DecisionRedirectHome:
				http.Redirect(w, r, routes.HomePath, http.StatusSeeOther)
				return
			}

			if !res.Anonymous() {
				r = httputil.WithIdentity(r, res.Identity)
				if res.Session != nil {
					r = httputil.WithSession(r, res.Session)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
