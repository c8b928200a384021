package handler

import (
	"errors"
	"net/http"

	"collaboratex/internal/domain"
	"collaboratex/internal/httputil"
)

// linkErrorDetail is the only thing an anonymous link holder learns about a
// link that does not work.
const linkErrorDetail = "Invalid or expired link"

// errorStatus maps a domain error to its HTTP status and a safe detail message
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrLinkInvalidOrExpired):
		return http.StatusNotFound, linkErrorDetail
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "you do not have access to this document"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable, please retry"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// handleError converts domain errors to HTTP responses. An unauthenticated
// caller whose session could not be resolved gets 503 instead of 401.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrUnauthorized) && httputil.GetResolveError(r) != nil {
		err = httputil.GetResolveError(r)
	}

	status, detail := errorStatus(err)
	httputil.RespondError(w, status, detail)
}
