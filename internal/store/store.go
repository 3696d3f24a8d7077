// Package store provides database access methods for the club blog. Each
// store struct wraps a *sql.DB and exposes typed, context-aware query
// methods. Reads that find nothing return (nil, nil).
package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate reports a unique constraint violation (slug, name, email).
	ErrDuplicate = errors.New("store: duplicate value")
	// ErrMissingReference reports a foreign key pointing at a missing row.
	ErrMissingReference = errors.New("store: referenced row does not exist")
)

// Postgres SQLSTATE codes mapped to sentinel errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// wrapErr wraps a driver error with the operation name, translating
// constraint violations into the package sentinels.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrMissingReference, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
