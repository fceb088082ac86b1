package relational

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// WithTx executes fn inside a single relational transaction. Any error from
// fn rolls the transaction back, is logged, and is re-thrown unchanged.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classify("transaction", "begin", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Warn("transaction rollback failed", zap.Error(rbErr))
		}
		s.logger.Error("transaction aborted", zap.Error(err))
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("transaction", "commit", err)
	}
	return nil
}
