package sql

import (
	"errors"
	"fmt"

	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/sqlxplus/dialect"
)

// ErrUnsupportedDialect is returned for operations the dialect does not support.
var ErrUnsupportedDialect = errors.New("dialect/sql: unsupported dialect")

// Inspector returns an Atlas schema inspector connected to the driver's
// database. Opening the inspector queries the server version.
func (d *Driver) Inspector() (schema.Inspector, error) {
	var (
		insp schema.Inspector
		err  error
	)
	switch d.Dialect() {
	case dialect.SQLite:
		insp, err = sqlite.Open(d.db)
	case dialect.MySQL:
		insp, err = mysql.Open(d.db)
	case dialect.Postgres:
		insp, err = postgres.Open(d.db)
	default:
		return nil, fmt.Errorf("%w: %q has no schema inspector", ErrUnsupportedDialect, d.Dialect())
	}
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: open inspector: %w", err)
	}
	return insp, nil
}

// DefaultSchema returns the schema name inspected when none is given.
// SQLite names its primary database "main"; other dialects resolve the
// connection's current schema from an empty name.
func DefaultSchema(d string) string {
	if dialect.Normalize(d) == dialect.SQLite {
		return "main"
	}
	return ""
}
