// Package mysql links the MySQL driver and opens sqlxplus drivers for it.
package mysql

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/syssam/sqlxplus/dialect"
	sqldriver "github.com/syssam/sqlxplus/dialect/sql"
)

// Open opens a MySQL database from a go-sql-driver DSN. Time columns are
// always parsed into time.Time so inserted and selected values round-trip.
func Open(dsn string) (*sqldriver.Driver, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse dsn: %w", err)
	}
	return OpenConfig(cfg)
}

// OpenConfig opens a MySQL database from a driver configuration.
func OpenConfig(cfg *mysql.Config) (*sqldriver.Driver, error) {
	cfg = cfg.Clone()
	cfg.ParseTime = true
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: connector: %w", err)
	}
	return sqldriver.OpenDB(dialect.MySQL, sql.OpenDB(connector)), nil
}
