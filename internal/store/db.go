package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database access layer for the database-backed settings
// manager. Both *sql.DB and *sql.Tx satisfy it, so a manager can run against
// a plain connection or inside a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
