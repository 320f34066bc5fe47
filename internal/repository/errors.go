package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate reports a unique constraint violation.
	ErrDuplicate = errors.New("duplicate value")
	// ErrReferenced reports a row that other rows still point at.
	ErrReferenced = errors.New("row is still referenced")
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// constraintError turns constraint violations a caller can provoke into
// ErrDuplicate or ErrReferenced; any other error is returned unchanged.
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return errors.Join(ErrDuplicate, err)
	case foreignKeyViolation:
		return errors.Join(ErrReferenced, err)
	}
	return err
}
