package database

import (
	"context"
	"database/sql"
)

// Row abstracts *sql.Row and pgx.Row.
type Row interface {
	Scan(dest ...any) error
}

// Rows abstracts *sql.Rows and pgx.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Result is the outcome of an Exec call.
type Result interface {
	RowsAffected() (int64, error)
}

// Executor runs queries. Both connections and transactions implement it,
// so repositories never care which one they were handed.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Transaction is an Executor with commit and rollback.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection is a database handle that can open transactions.
type Connection interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
	Ping(ctx context.Context) error
	Driver() Driver
}

type sqlResult struct{ res sql.Result }

func (r sqlResult) RowsAffected() (int64, error) { return r.res.RowsAffected() }

// WrapSQLResult adapts a database/sql result.
func WrapSQLResult(res sql.Result) Result { return sqlResult{res: res} }

type sqlRows struct{ rows *sql.Rows }

func (r sqlRows) Next() bool              { return r.rows.Next() }
func (r sqlRows) Scan(dest ...any) error  { return r.rows.Scan(dest...) }
func (r sqlRows) Close() error            { return r.rows.Close() }
func (r sqlRows) Err() error              { return r.rows.Err() }

// WrapSQLRows adapts database/sql rows.
func WrapSQLRows(rows *sql.Rows) Rows { return sqlRows{rows: rows} }
