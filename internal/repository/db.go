package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the repositories use. pgx.Tx and pgxmock satisfy it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	// ErrConflict signals a unique constraint violation on a non-user table.
	ErrConflict = errors.New("record already exists")
	// ErrReferenceNotFound signals that a referenced row does not exist.
	ErrReferenceNotFound = errors.New("referenced record not found")
)

// DuplicateFieldError reports which unique user field collided.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func pgErrorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// translateWriteError turns constraint violations into repository errors and wraps everything else.
func translateWriteError(op string, err error) error {
	code, _ := pgErrorCode(err)
	switch code {
	case pgUniqueViolation:
		return fmt.Errorf("failed to %s: %w", op, ErrConflict)
	case pgForeignKeyViolation:
		return fmt.Errorf("failed to %s: %w", op, ErrReferenceNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
