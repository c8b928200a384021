package docsystem

import (
	"time"
)

// Permission granted by an anonymous link.
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

// Access returns the access a link with this permission grants.
func (p Permission) Access() Access {
	switch p {
	case PermissionEdit:
		return Access{Read: true, Write: true}
	case PermissionView:
		return Access{Read: true}
	default:
		return Access{}
	}
}

// Access is the outcome of an ownership check.
// Owner is only set for the document owner and is what deletion requires.
type Access struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
	Owner bool `json:"owner"`
}

// OwnerAccess is the full access of the document owner.
var OwnerAccess = Access{Read: true, Write: true, Owner: true}

// AnonymousLink grants Permission on one document to whoever holds AccessToken.
//
// Lifecycle: Active -> Revoked (IsActive=false) or Active -> Expired (now >= ExpiresAt).
// Both are terminal; a new link is always a new row.
type AnonymousLink struct {
	ID          string     `json:"id" db:"id"`
	DocumentID  string     `json:"document_id" db:"document_id"`
	AccessToken string     `json:"access_token" db:"access_token"`
	Permission  Permission `json:"permission" db:"permission"`
	CreatedBy   string     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at" db:"expires_at"` // NULL = never expires
	IsActive    bool       `json:"is_active" db:"is_active"`
}

// Usable reports whether the link still grants access at now.
func (l *AnonymousLink) Usable(now time.Time) bool {
	if !l.IsActive {
		return false
	}
	if l.ExpiresAt != nil && !now.Before(*l.ExpiresAt) {
		return false
	}
	return true
}

// TokenDocument is what an anonymous link holder sees.
type TokenDocument struct {
	DocumentID string     `json:"document_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Permission Permission `json:"permission"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
