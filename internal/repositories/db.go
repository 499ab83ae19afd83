package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/common"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock's pool satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// translateError maps driver errors onto the common error taxonomy.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return fmt.Errorf("%s: %w: %s", op, common.ErrConflict, pgErr.ConstraintName)
		case pgErr.Code == "23503":
			return &common.ValidationError{Fields: map[string]string{"parent": "referenced parent does not exist"}}
		case pgErr.Code == "23502":
			return common.NewValidationError(pgErr.ColumnName, "is required")
		case pgErr.Code == "23514" || strings.HasPrefix(pgErr.Code, "22"):
			field := pgErr.ColumnName
			if field == "" {
				field = "request"
			}
			return common.NewValidationError(field, "is invalid")
		}
	}
	return common.Unavailable(op, err)
}

// expectOneRow turns a zero-row update or delete into ErrNotFound.
func expectOneRow(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return translateError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}
	return nil
}
