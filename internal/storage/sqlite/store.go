// Package sqlite provides the embedded relational backend on modernc.org/sqlite.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/storage/sqlstore"
	"github.com/julianstephens/habitlit/migrations"
)

// Dialect is the SQLite flavor of sqlstore.Dialect.
type Dialect struct{}

var _ sqlstore.Dialect = Dialect{}

func (Dialect) Name() string       { return constants.BackendSQLite }
func (Dialect) DriverName() string { return "sqlite" }

// Rebind is the identity: SQLite accepts "?" natively.
func (Dialect) Rebind(query string) string { return query }

func (Dialect) InsertReturningID(q sqlstore.Querier, query string, args ...any) (int64, error) {
	res, err := q.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// TableExists is case-insensitive to match SQLite's identifier rules.
func (Dialect) TableExists(q sqlstore.Querier, table string) (bool, error) {
	var count int
	row := q.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name COLLATE NOCASE = ?", table)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (Dialect) ColumnExists(q sqlstore.Querier, table, column string) (bool, error) {
	var count int
	row := q.QueryRow("SELECT count(*) FROM pragma_table_info(?) WHERE name = ?", table, column)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (Dialect) IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

func (Dialect) IsForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			strings.Contains(sqliteErr.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}

func (Dialect) Migrations() (fs.FS, error) {
	return fs.Sub(migrations.FS, "sqlite")
}

// uriPath escapes the characters SQLite's URI parser treats specially.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// FileDSN builds a "file:" URI for path with the given query parameters.
func FileDSN(path string, params url.Values) string {
	dsn := "file:" + uriPath.Replace(path)
	if len(params) > 0 {
		dsn += "?" + params.Encode()
	}
	return dsn
}

// New opens (creating if needed) the database file at path and brings its
// schema up to date.
func New(path string) (*sqlstore.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", constants.SQLiteBusyTimeoutMs))
	params.Add("_pragma", "foreign_keys(1)")
	db, err := sql.Open(Dialect{}.DriverName(), FileDSN(path, params))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := sqlstore.New(db, Dialect{}, path)
	if err := store.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}
