package sqlxplus

import (
	"context"

	"github.com/syssam/sqlxplus/dialect/sql"
)

// Version is the library version.
const Version = "0.3.0"

type (
	// Insertable is a record that can be written with a single INSERT.
	// InsertValues must return one value per column, in column order.
	Insertable interface {
		TableName() string
		InsertColumns() []string
		InsertValues() []any
	}

	// DialectBound is implemented by records generated for one dialect.
	// Inserting them through an executor of another dialect fails with a
	// DialectMismatchError.
	DialectBound interface {
		InsertDialect() string
	}

	// Executor runs statements that return no rows. It is implemented by
	// *sql.Driver, *sql.Tx, *sql.Session, *sql.StatsDriver and *sql.DebugDriver.
	Executor interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		Dialect() string
	}

	// Querier runs statements that return rows.
	Querier interface {
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
		Dialect() string
	}

	// acquirer is implemented by connection pools. Bulk inserts through an
	// acquirer run all chunks on one pinned connection.
	acquirer interface {
		Acquire(ctx context.Context) (*sql.Session, error)
	}
)
