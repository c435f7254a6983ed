// Package sqlstore implements the relational backend once, over database/sql.
// Engine differences are isolated behind the Dialect interface.
package sqlstore

import (
	"database/sql"
	"io/fs"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Dialect describes what differs between relational engines. Queries handed
// to a Dialect use "?" placeholders; Rebind converts them when needed.
type Dialect interface {
	// Name identifies the engine ("sqlite", "postgres").
	Name() string
	// DriverName is the database/sql driver name.
	DriverName() string
	// Rebind rewrites "?" placeholders into the engine's native syntax.
	Rebind(query string) string
	// InsertReturningID runs an INSERT and returns the generated id column.
	InsertReturningID(q Querier, query string, args ...any) (int64, error)
	TableExists(q Querier, table string) (bool, error)
	ColumnExists(q Querier, table, column string) (bool, error)
	// IsUniqueViolation reports whether err came from a unique constraint.
	IsUniqueViolation(err error) bool
	// IsForeignKeyViolation reports whether err came from a foreign key constraint.
	IsForeignKeyViolation(err error) bool
	// Migrations returns the dialect's migration files rooted at ".".
	Migrations() (fs.FS, error)
}
