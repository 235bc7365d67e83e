package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the repositories use. pgxmock's
// PgxPoolIface satisfies it too, which is what the repository tests run
// against.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ErrDuplicate is the non-SQL equivalent of a unique violation, returned
// by stores that enforce uniqueness without a database.
var ErrDuplicate = errors.New("duplicate row")

// IsUniqueViolation reports whether err is a uniqueness conflict: either a
// PostgreSQL unique constraint violation (SQLSTATE 23505) or ErrDuplicate.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
