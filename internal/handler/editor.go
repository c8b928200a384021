package handler

import (
	"log/slog"
	"net/http"

	"collaboratex/internal/editor"
	"collaboratex/internal/httputil"
)

// EditorHandler serves syntax definitions for the browser editor
type EditorHandler struct {
	registry *editor.Registry
	logger   *slog.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(registry *editor.Registry, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{
		registry: registry,
		logger:   logger,
	}
}

// ListLanguages lists the available editor languages
// GET /api/editor/languages
func (h *EditorHandler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.List())
}

// GetLanguage returns a language's tokenizer and editor options
// GET /api/editor/languages/{id}
func (h *EditorHandler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	httputil.RespondJSON(w, http.StatusOK, lang)
}
