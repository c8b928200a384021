// Package web renders the server-side pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"collaboratex/internal/domain/models"
	"collaboratex/internal/domain/models/docsystem"
)

//go:embed templates/*.html
var templateFiles embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives.
type Page struct {
	Title    string
	Identity *models.Identity
	// Error is shown inline above forms
	Error string
	Data  any
}

// Panel is a full-page message with a way out, used when a page cannot load.
type Panel struct {
	Heading   string
	Message   string
	LinkHref  string
	LinkLabel string
}

// Renderer executes named pages inside the shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	return newRenderer(templateFiles, logger)
}

func newRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	files, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	funcs := template.FuncMap{
		"initial": func(email string) string {
			if email == "" {
				return "?"
			}
			return strings.ToUpper(string([]rune(email)[:1]))
		},
	}

	r := &Renderer{pages: make(map[string]*template.Template), logger: logger}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the named page with the given status. The page is executed
// into a buffer first so a template error never leaves a partial response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	t, ok := r.pages[name]
	if !ok {
		r.logger.Error("unknown page template", "page", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		r.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// RenderPanel renders the full-page message template.
func (r *Renderer) RenderPanel(w http.ResponseWriter, status int, identity *models.Identity, panel Panel) {
	r.Render(w, status, "panel", Page{Title: panel.Heading, Identity: identity, Data: panel})
}

// LoginForm backs the login page.
type LoginForm struct {
	Email          string
	RedirectedFrom string
	Providers      []string
}

// RegisterForm backs the registration page.
type RegisterForm struct {
	Email       string
	MinPassword int
}

// ResetPasswordForm backs the password reset page. Sent switches to the confirmation.
type ResetPasswordForm struct {
	Email string
	Sent  bool
}

// DashboardView lists the caller's documents.
type DashboardView struct {
	Documents []docsystem.DocumentListItem
}

// ProfileView adds the current session and the last auth event to the profile page.
type ProfileView struct {
	Session     *models.Session
	LastEvent   string
	LastEventAt time.Time
}

// EditorView backs both the owner editor and the anonymous link editor.
type EditorView struct {
	Title    string
	Content  string
	ReadOnly bool
	Owner    bool
	// SaveURL and SaveMethod are where the page sends content changes
	SaveURL    string
	SaveMethod string
	LinksURL   string
}
