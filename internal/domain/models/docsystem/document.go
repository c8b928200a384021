package docsystem

import (
	"time"
)

// Document is a LaTeX source owned by a single identity.
// OwnerID is set at creation and never changes.
type Document struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"` // LaTeX source
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	IsPublic  bool      `json:"is_public" db:"is_public"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentListItem is the dashboard view of a document (no content).
type DocumentListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	IsPublic  bool      `json:"is_public"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListItem strips the content. WordCount is left for the caller to fill.
func (d *Document) ListItem() DocumentListItem {
	return DocumentListItem{
		ID:        d.ID,
		Title:     d.Title,
		OwnerID:   d.OwnerID,
		IsPublic:  d.IsPublic,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Collaborator mirrors the document_collaborators table.
// Not consulted by access checks yet.
type Collaborator struct {
	ID                string    `json:"id" db:"id"`
	DocumentID        string    `json:"document_id" db:"document_id"`
	UserID            string    `json:"user_id" db:"user_id"`
	Permission        string    `json:"permission" db:"permission"`
	CanShareAnonymous bool      `json:"can_share_anonymous" db:"can_share_anonymous"`
	CanShareWithUsers bool      `json:"can_share_with_users" db:"can_share_with_users"`
	SharedAt          time.Time `json:"shared_at" db:"shared_at"`
}

// DocumentView is a document together with what the caller may do with it.
type DocumentView struct {
	*Document
	Access Access `json:"access"`
}
