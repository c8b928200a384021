package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "collaboratex/internal/domain/services/docsystem"
	"collaboratex/internal/httputil"
)

// AnonHandler serves documents to anonymous link holders. The token in the
// path is the only credential; any session is ignored.
type AnonHandler struct {
	docService docsysSvc.DocumentService
	logger     *slog.Logger
}

// NewAnonHandler creates a new anonymous link document handler
func NewAnonHandler(docService docsysSvc.DocumentService, logger *slog.Logger) *AnonHandler {
	return &AnonHandler{
		docService: docService,
		logger:     logger,
	}
}

type saveContentBody struct {
	Content *string `json:"content"`
}

// GetDocument returns the linked document
// GET /api/anon/{token}
func (h *AnonHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docService.GetDocumentByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// SaveDocument replaces the content through an edit link
// PUT /api/anon/{token}
func (h *AnonHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	var body saveContentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Content == nil {
		httputil.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	doc, err := h.docService.SaveDocumentByToken(r.Context(), r.PathValue("token"), *body.Content)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}
