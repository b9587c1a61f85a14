package database

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB / *sql.Tx the query methods need.
// Keeping it an interface lets callers run queries inside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New wraps a database handle in a Queries value
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries bundles all typed database operations
type Queries struct {
	db DBTX
}

// WithTx returns a Queries bound to the given transaction
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
