package postgres

import (
	"context"
	"errors"
	"fmt"

	"collaboratex/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	return false
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgInvalidTextError checks for a malformed uuid or similar cast failure
func IsPgInvalidTextError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 22P02 = invalid_text_representation
		return pgErr.Code == "22P02"
	}
	return false
}

// IsConnectionError reports failures to reach the database at all.
func IsConnectionError(err error) bool {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// WrapQueryError maps driver errors to domain sentinels.
// Missing rows and malformed ids both read as domain.ErrNotFound.
func WrapQueryError(op string, err error) error {
	switch {
	case IsPgNoRowsError(err), IsPgInvalidTextError(err):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case IsConnectionError(err):
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUpstreamUnavailable)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
