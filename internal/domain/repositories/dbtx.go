package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so repositories run
// unchanged inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs fn in one transaction; fn's error rolls back.
// Drive services run permission check and mutation inside one ExecTx call so a
// concurrent revoke cannot land between them. Nested calls join the outer transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

type txContextKey struct{}

// SetTx stores a transaction in the context
func SetTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// GetTx retrieves the transaction from the context, nil when absent
func GetTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx
}

type inTxContextKey struct{}

// MarkInTx flags ctx as running inside a transaction. Used by non-pgx
// transaction managers so repositories can still ask InTx.
func MarkInTx(ctx context.Context) context.Context {
	return context.WithValue(ctx, inTxContextKey{}, true)
}

// InTx reports whether ctx carries an active transaction
func InTx(ctx context.Context) bool {
	if GetTx(ctx) != nil {
		return true
	}
	marked, _ := ctx.Value(inTxContextKey{}).(bool)
	return marked
}

type writeIntentContextKey struct{}

// WithWriteIntent marks that the transaction is about to delete or rewrite the
// rows it reads next, so PostgreSQL repositories take FOR UPDATE instead of a
// shared lock. Lock order is always resource row before grant rows.
func WithWriteIntent(ctx context.Context) context.Context {
	return context.WithValue(ctx, writeIntentContextKey{}, true)
}

// HasWriteIntent reports whether WithWriteIntent marked ctx
func HasWriteIntent(ctx context.Context) bool {
	intent, _ := ctx.Value(writeIntentContextKey{}).(bool)
	return intent
}
