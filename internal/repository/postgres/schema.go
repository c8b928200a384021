package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaStatements returns the DDL for every table, parents first.
// Statements are idempotent so the seed command can run repeatedly.
func SchemaStatements(t *TableNames) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			title text NOT NULL,
			content text NOT NULL DEFAULT '',
			owner_id uuid NOT NULL,
			is_public boolean NOT NULL DEFAULT false,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`, t.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_owner_updated_idx ON %s (owner_id, updated_at DESC)`,
			t.Documents, t.Documents),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			document_id uuid NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			access_token text NOT NULL UNIQUE,
			permission text NOT NULL CHECK (permission IN ('view', 'edit')),
			created_by uuid NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			expires_at timestamptz,
			is_active boolean NOT NULL DEFAULT true
		)`, t.AnonymousLinks, t.Documents),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_document_idx ON %s (document_id, created_at DESC)`,
			t.AnonymousLinks, t.AnonymousLinks),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			document_id uuid NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
			user_id uuid NOT NULL,
			permission text NOT NULL CHECK (permission IN ('view', 'edit')),
			can_share_anonymous boolean NOT NULL DEFAULT false,
			can_share_with_users boolean NOT NULL DEFAULT false,
			shared_at timestamptz NOT NULL DEFAULT now(),
			UNIQUE (document_id, user_id)
		)`, t.DocumentCollaborators, t.Documents),
	}
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, t *TableNames) error {
	for _, stmt := range SchemaStatements(t) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// DropTables drops every table with the given names. Used by scripts only.
func DropTables(ctx context.Context, pool *pgxpool.Pool, t *TableNames) error {
	for _, table := range t.All() {
		if _, err := pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
