package usecase

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// violates reports whether err is a PostgreSQL error with the given SQLSTATE
// on a constraint whose name contains constraint, case-insensitively
func violates(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraint))
}

func isDuplicateKeyError(err error, constraint string) bool {
	return violates(err, pgUniqueViolation, constraint)
}

func isForeignKeyError(err error, constraint string) bool {
	return violates(err, pgForeignKeyViolation, constraint)
}
