package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "collaboratex/internal/domain/services/docsystem"
	"collaboratex/internal/httputil"
)

// AnonymousLinkHandler handles share link management for document owners
type AnonymousLinkHandler struct {
	linkService docsysSvc.AnonymousLinkService
	logger      *slog.Logger
}

// NewAnonymousLinkHandler creates a new anonymous link handler
func NewAnonymousLinkHandler(linkService docsysSvc.AnonymousLinkService, logger *slog.Logger) *AnonymousLinkHandler {
	return &AnonymousLinkHandler{
		linkService: linkService,
		logger:      logger,
	}
}

// ListLinks lists a document's links, newest first
// GET /api/documents/{id}/links
func (h *AnonymousLinkHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	links, err := h.linkService.ListLinks(r.Context(), httputil.GetIdentity(r), documentID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, links)
}

// GenerateLink creates a new anonymous link
// POST /api/documents/{id}/links
func (h *AnonymousLinkHandler) GenerateLink(w http.ResponseWriter, r *http.Request) {
	documentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req docsysSvc.GenerateLinkRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.DocumentID = documentID

	link, err := h.linkService.GenerateLink(r.Context(), httputil.GetIdentity(r), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, link)
}

// RevokeLink deactivates a link
// POST /api/links/{id}/revoke
func (h *AnonymousLinkHandler) RevokeLink(w http.ResponseWriter, r *http.Request) {
	linkID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.linkService.RevokeLink(r.Context(), httputil.GetIdentity(r), linkID); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteLink removes a link
// DELETE /api/links/{id}
func (h *AnonymousLinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	linkID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.linkService.DeleteLink(r.Context(), httputil.GetIdentity(r), linkID); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
