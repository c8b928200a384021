// Package memory holds map-backed repositories with the same contracts as
// the Postgres ones. Service and handler tests run against it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"collaboratex/internal/domain"
	models "collaboratex/internal/domain/models/docsystem"
	"collaboratex/internal/domain/repositories"

	"github.com/google/uuid"
)

// Store keeps documents and links. Err, when set, is returned by every call.
type Store struct {
	mu    sync.Mutex
	docs  map[string]models.Document
	links map[string]models.AnonymousLink
	order map[string]int64
	seq   int64

	Err error

	// Lookup counters
	DocumentLookups int
	TokenLookups    int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs:  make(map[string]models.Document),
		links: make(map[string]models.AnonymousLink),
		order: make(map[string]int64),
	}
}

// Documents returns the store's DocumentRepository view.
func (s *Store) Documents() *DocumentRepository { return &DocumentRepository{s: s} }

// Links returns the store's AnonymousLinkRepository view.
func (s *Store) Links() *AnonymousLinkRepository { return &AnonymousLinkRepository{s: s} }

// TxManager runs fn directly; the store has no rollback.
type TxManager struct{}

// ExecTx implements repositories.TransactionManager.
func (TxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

// DocumentRepository implements docsystem.DocumentRepository.
type DocumentRepository struct{ s *Store }

func (r *DocumentRepository) Create(_ context.Context, doc *models.Document) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	doc.ID = uuid.NewString()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}
	s.docs[doc.ID] = *doc
	return nil
}

func (r *DocumentRepository) GetByID(_ context.Context, id string) (*models.Document, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DocumentLookups++
	if s.Err != nil {
		return nil, s.Err
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("get document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Document, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	docs := []models.Document{}
	for _, d := range s.docs {
		if d.OwnerID == ownerID {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UpdatedAt.After(docs[j].UpdatedAt) })
	return docs, nil
}

func (r *DocumentRepository) Update(_ context.Context, doc *models.Document) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.docs[doc.ID]
	if !ok {
		return fmt.Errorf("update document %s: %w", doc.ID, domain.ErrNotFound)
	}
	stored.Title = doc.Title
	stored.Content = doc.Content
	stored.IsPublic = doc.IsPublic
	stored.UpdatedAt = doc.UpdatedAt
	s.docs[doc.ID] = stored
	return nil
}

func (r *DocumentRepository) UpdateContent(_ context.Context, doc *models.Document) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.docs[doc.ID]
	if !ok {
		return fmt.Errorf("update document %s: %w", doc.ID, domain.ErrNotFound)
	}
	stored.Content = doc.Content
	stored.UpdatedAt = doc.UpdatedAt
	s.docs[doc.ID] = stored
	return nil
}

func (r *DocumentRepository) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("delete document %s: %w", id, domain.ErrNotFound)
	}
	delete(s.docs, id)
	return nil
}

// AnonymousLinkRepository implements docsystem.AnonymousLinkRepository.
type AnonymousLinkRepository struct{ s *Store }

func (r *AnonymousLinkRepository) Create(_ context.Context, link *models.AnonymousLink) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, l := range s.links {
		if l.AccessToken == link.AccessToken {
			return fmt.Errorf("create anonymous link: %w", domain.ErrConflict)
		}
	}
	link.ID = uuid.NewString()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}
	s.seq++
	s.order[link.ID] = s.seq
	s.links[link.ID] = *link
	return nil
}

func (r *AnonymousLinkRepository) GetByID(_ context.Context, id string) (*models.AnonymousLink, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	l, ok := s.links[id]
	if !ok {
		return nil, fmt.Errorf("get anonymous link %s: %w", id, domain.ErrNotFound)
	}
	return &l, nil
}

func (r *AnonymousLinkRepository) GetByToken(_ context.Context, token string) (*models.AnonymousLink, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TokenLookups++
	if s.Err != nil {
		return nil, s.Err
	}
	for _, l := range s.links {
		if l.AccessToken == token {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("get anonymous link by token: %w", domain.ErrNotFound)
}

func (r *AnonymousLinkRepository) ListByDocument(_ context.Context, documentID string) ([]models.AnonymousLink, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	links := []models.AnonymousLink{}
	for _, l := range s.links {
		if l.DocumentID == documentID {
			links = append(links, l)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if !links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].CreatedAt.After(links[j].CreatedAt)
		}
		return s.order[links[i].ID] > s.order[links[j].ID]
	})
	return links, nil
}

func (r *AnonymousLinkRepository) Deactivate(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	l, ok := s.links[id]
	if !ok {
		return fmt.Errorf("revoke anonymous link %s: %w", id, domain.ErrNotFound)
	}
	l.IsActive = false
	s.links[id] = l
	return nil
}

func (r *AnonymousLinkRepository) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.links[id]; !ok {
		return fmt.Errorf("delete anonymous link %s: %w", id, domain.ErrNotFound)
	}
	delete(s.links, id)
	return nil
}

func (r *AnonymousLinkRepository) DeleteAllByDocument(_ context.Context, documentID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for id, l := range s.links {
		if l.DocumentID == documentID {
			delete(s.links, id)
		}
	}
	return nil
}
