package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"collaboratex/internal/domain"
	models "collaboratex/internal/domain/models/docsystem"
	docsysRepo "collaboratex/internal/domain/repositories/docsystem"
	"collaboratex/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAnonymousLinkRepository implements the AnonymousLinkRepository interface
type PostgresAnonymousLinkRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewAnonymousLinkRepository creates a new anonymous link repository
func NewAnonymousLinkRepository(config *postgres.RepositoryConfig) docsysRepo.AnonymousLinkRepository {
	return &PostgresAnonymousLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const linkColumns = `id, document_id, access_token, permission, created_by, created_at, expires_at, is_active`

func scanLink(row pgx.Row) (*models.AnonymousLink, error) {
	var link models.AnonymousLink
	err := row.Scan(
		&link.ID,
		&link.DocumentID,
		&link.AccessToken,
		&link.Permission,
		&link.CreatedBy,
		&link.CreatedAt,
		&link.ExpiresAt,
		&link.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Create inserts a link
func (r *PostgresAnonymousLinkRepository) Create(ctx context.Context, link *models.AnonymousLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, access_token, permission, created_by, created_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, r.tables.AnonymousLinks)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		link.DocumentID,
		link.AccessToken,
		link.Permission,
		link.CreatedBy,
		link.CreatedAt,
		link.ExpiresAt,
		link.IsActive,
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("create anonymous link: %w", domain.ErrConflict)
		}
		return postgres.WrapQueryError("create anonymous link", err)
	}

	return nil
}

// GetByID retrieves a link by ID
func (r *PostgresAnonymousLinkRepository) GetByID(ctx context.Context, id string) (*models.AnonymousLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, linkColumns, r.tables.AnonymousLinks)

	link, err := scanLink(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.WrapQueryError(fmt.Sprintf("get anonymous link %s", id), err)
	}
	return link, nil
}

// GetByToken retrieves a link by its access token. The token is never logged.
func (r *PostgresAnonymousLinkRepository) GetByToken(ctx context.Context, token string) (*models.AnonymousLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE access_token = $1`, linkColumns, r.tables.AnonymousLinks)

	link, err := scanLink(postgres.GetExecutor(ctx, r.pool).QueryRow(ctx, query, token))
	if err != nil {
		return nil, postgres.WrapQueryError("get anonymous link by token", err)
	}
	return link, nil
}

// ListByDocument lists links for a document, newest first
func (r *PostgresAnonymousLinkRepository) ListByDocument(ctx context.Context, documentID string) ([]models.AnonymousLink, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE document_id = $1
		ORDER BY created_at DESC
	`, linkColumns, r.tables.AnonymousLinks)

	rows, err := postgres.GetExecutor(ctx, r.pool).Query(ctx, query, documentID)
	if err != nil {
		return nil, postgres.WrapQueryError("list anonymous links", err)
	}
	defer rows.Close()

	links := []models.AnonymousLink{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan anonymous link: %w", err)
		}
		links = append(links, *link)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.WrapQueryError("iterate anonymous links", err)
	}

	return links, nil
}

// Deactivate revokes a link. Revoking an already inactive link succeeds.
func (r *PostgresAnonymousLinkRepository) Deactivate(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET is_active = false WHERE id = $1`, r.tables.AnonymousLinks)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return postgres.WrapQueryError(fmt.Sprintf("revoke anonymous link %s", id), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("revoke anonymous link %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a link
func (r *PostgresAnonymousLinkRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.AnonymousLinks)

	result, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return postgres.WrapQueryError(fmt.Sprintf("delete anonymous link %s", id), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete anonymous link %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteAllByDocument removes every link of a document
func (r *PostgresAnonymousLinkRepository) DeleteAllByDocument(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.AnonymousLinks)

	if _, err := postgres.GetExecutor(ctx, r.pool).Exec(ctx, query, documentID); err != nil {
		return postgres.WrapQueryError("delete anonymous links of document", err)
	}
	return nil
}
