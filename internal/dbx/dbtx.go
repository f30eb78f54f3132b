// Package dbx holds the database/sql helpers shared by the record and
// session repositories.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cbsr/biobank/internal/common"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxFunc runs against the transaction handle passed to it.
type TxFunc func(ctx context.Context, tx DBTX) error

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back on an error or a panic; the panic is rethrown.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFunc) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}

// WithSerializableTx is WithTx at serializable isolation. A serialization
// failure reported by Postgres means a concurrent writer changed the same
// records, so it surfaces as common.ErrVersionConflict.
func WithSerializableTx(ctx context.Context, db *sql.DB, fn TxFunc) error {
	err := WithTx(ctx, db, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
	if IsSerializationFailure(err) {
		return fmt.Errorf("%w: %v", common.ErrVersionConflict, err)
	}
	return err
}

// IsSerializationFailure reports whether err carries SQLSTATE 40001.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure
}
