package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"collaboratex/internal/httputil"
	"collaboratex/internal/metrics"
	"collaboratex/internal/session"
)

const (
	apiPrefix     = "/api/"
	apiAnonPrefix = "/api/anon/"
)

// APIAuth resolves the caller of /api routes from a bearer token or the session
// cookie and stores the identity in the request context. It never rejects or
// redirects: handlers decide what an anonymous caller may do. When the identity
// service is unreachable the error is recorded in the context instead.
func APIAuth(resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Anonymous link routes authorize by token alone
			if !strings.HasPrefix(r.URL.Path, apiPrefix) || strings.HasPrefix(r.URL.Path, apiAnonPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			res, err := resolver.Resolve(r.Context(), session.RequestSource(resolver.Store(), r))
			if err != nil {
				logger.Warn("api session resolution failed",
					"path", r.URL.Path,
					"error", err,
				)
				metrics.SessionResolveFailures.Inc()
				next.ServeHTTP(w, httputil.WithResolveError(r, err))
				return
			}

			if err := res.Commit(w); err != nil {
				logger.Error("failed to write session cookie", "error", err)
			}
			if !res.Anonymous() {
				r = httputil.WithIdentity(r, res.Identity)
			}
			next.ServeHTTP(w, r)
		})
	}
}
