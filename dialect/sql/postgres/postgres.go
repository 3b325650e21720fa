// Package postgres links the lib/pq driver and opens sqlxplus drivers for it.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/syssam/sqlxplus/dialect"
	sqldriver "github.com/syssam/sqlxplus/dialect/sql"
)

// Open opens a PostgreSQL database from a URL or key/value connection string.
func Open(dsn string) (*sqldriver.Driver, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connector: %w", err)
	}
	return sqldriver.OpenDB(dialect.Postgres, sql.OpenDB(connector)), nil
}

// IsUniqueViolation reports if err is a PostgreSQL unique_violation error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505"
}
