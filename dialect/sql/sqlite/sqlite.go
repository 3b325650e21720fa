// Package sqlite links the pure-Go SQLite driver and opens sqlxplus drivers
// for it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/syssam/sqlxplus/dialect"
	sqldriver "github.com/syssam/sqlxplus/dialect/sql"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Open opens a SQLite database. In-memory databases live per connection, so
// the pool of in-memory sources is limited to a single connection.
func Open(dsn string) (*sqldriver.Driver, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}
	return sqldriver.OpenDB(dialect.SQLite, db), nil
}

// OpenContext opens a SQLite database and verifies the connection.
func OpenContext(ctx context.Context, dsn string) (*sqldriver.Driver, error) {
	drv, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := drv.DB().PingContext(ctx); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return drv, nil
}

// isMemory reports whether dsn names an in-memory database, either by the
// ":memory:" path or by the mode=memory URI parameter.
func isMemory(dsn string) bool {
	path, query, _ := strings.Cut(strings.TrimPrefix(dsn, "sqlite://"), "?")
	if strings.TrimPrefix(path, "file:") == ":memory:" {
		return true
	}
	q, err := url.ParseQuery(query)
	return err == nil && q.Get("mode") == "memory"
}
