package relational

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/servicepulse/datalayer/domain"
)

// Postgres error codes this adapter cares about.
const (
	pgUndefinedTable      = "42P01"
	pgUndefinedColumn     = "42703"
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// classify maps a driver error to the layer's taxonomy. A missing table or
// column means the live schema lags the application code: that is the typed
// ErrModelMissing signal the degraded-mode policy branches on. Constraint
// violations and everything else stay fatal.
func classify(kind, op string, err error) error {
	if err == nil {
		return nil
	}

	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedTable, pgUndefinedColumn:
			return domain.WrapError(domain.ErrCodeModelMissing,
				fmt.Sprintf("model %s not present in live schema", kind), err)
		case pgUniqueViolation:
			return domain.WrapError(domain.ErrCodeConflict,
				fmt.Sprintf("%s %s conflicts with an existing row", op, kind), err)
		case pgForeignKeyViolation, pgNotNullViolation, pgCheckViolation:
			return domain.WrapError(domain.ErrCodeInvalid,
				fmt.Sprintf("%s %s violates a constraint", op, kind), err)
		}
	}

	return domain.WrapError(domain.ErrCodeInternal,
		fmt.Sprintf("%s %s failed", op, kind), err)
}
