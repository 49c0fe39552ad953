package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// execAffectingOne runs a statement that must touch exactly one row.
// Zero rows affected returns sql.ErrNoRows and constraint violations are
// mapped by mapConstraintError.
func execAffectingOne(ctx context.Context, db sqlx.ExecerContext, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapConstraintError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
