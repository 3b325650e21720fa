package sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/sqlxplus/dialect"
)

// DialectBuilder prefixes all root builders with a dialect.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a new DialectBuilder with the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: dialect.Normalize(name)}
}

// Insert creates an InsertBuilder for the configured dialect.
//
//	Dialect(dialect.Postgres).
//		Insert("users").Columns("age").Values(1)
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	b := Insert(table)
	b.dialect = d.dialect
	return b
}

// InsertBuilder builds an INSERT statement.
type InsertBuilder struct {
	dialect   string
	table     string
	columns   []string
	values    [][]any
	defaults  bool
	returning []string
}

// Insert creates a builder for the `INSERT INTO` statement using
// question-mark placeholders.
//
//	Insert("users").
//		Columns("name", "age").
//		Values("a8m", 10).
//		Values("foo", 20)
func Insert(table string) *InsertBuilder { return &InsertBuilder{table: table} }

// Columns appends columns to the INSERT statement.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values appends a row of values to the INSERT statement.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Default sets the default values clause based on the dialect type.
func (i *InsertBuilder) Default() *InsertBuilder {
	i.defaults = true
	return i
}

// Returning adds the `RETURNING` clause to the insert statement.
// It is rendered as an OUTPUT clause on SQL Server and ignored on MySQL.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// Table returns the target table of the statement.
func (i *InsertBuilder) Table() string { return i.table }

// Rows returns the number of value rows added to the statement.
func (i *InsertBuilder) Rows() int { return len(i.values) }

// ErrEmptyInsert is reported by InsertBuilder.Err for statements with no
// columns or no value rows outside of Default.
var ErrEmptyInsert = errors.New("dialect/sql: insert has no columns or values")

// Err reports whether Query renders a valid statement. It fails when the
// builder has no columns, has columns but no value rows, or has a row whose
// width differs from the column list. Statements built with Default and no
// columns are always valid.
func (i *InsertBuilder) Err() error {
	switch {
	case i.defaults && len(i.columns) == 0:
		return nil
	case len(i.columns) == 0, len(i.values) == 0:
		return fmt.Errorf("insert into %s: %w", i.table, ErrEmptyInsert)
	}
	for n, row := range i.values {
		if len(row) != len(i.columns) {
			return fmt.Errorf("dialect/sql: insert into %s: row %d has %d values for %d columns", i.table, n+1, len(row), len(i.columns))
		}
	}
	return nil
}

// Query returns the statement and its arguments in column order. The
// statement is only valid SQL when Err returns nil.
func (i *InsertBuilder) Query() (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(i.table)
	if i.defaults && len(i.columns) == 0 {
		i.writeOutput(&b)
		if i.dialect == dialect.MySQL {
			b.WriteString(" VALUES ()")
		} else {
			b.WriteString(" DEFAULT VALUES")
		}
		i.writeReturning(&b)
		return b.String(), nil
	}
	b.WriteString(" (")
	b.WriteString(strings.Join(i.columns, ","))
	b.WriteByte(')')
	i.writeOutput(&b)
	b.WriteString(" VALUES ")
	b.WriteString(dialect.BulkPlaceholders(i.dialect, len(i.values), len(i.columns), 1))
	i.writeReturning(&b)
	args := make([]any, 0, len(i.values)*len(i.columns))
	for _, row := range i.values {
		args = append(args, row...)
	}
	return b.String(), args
}

func (i *InsertBuilder) writeOutput(b *strings.Builder) {
	if len(i.returning) == 0 || i.dialect != dialect.MSSQL {
		return
	}
	b.WriteString(" OUTPUT ")
	for j, c := range i.returning {
		if j > 0 {
			b.WriteByte(',')
		}
		b.WriteString("INSERTED.")
		b.WriteString(c)
	}
}

func (i *InsertBuilder) writeReturning(b *strings.Builder) {
	if len(i.returning) == 0 {
		return
	}
	switch i.dialect {
	case dialect.Postgres, dialect.SQLite:
		b.WriteString(" RETURNING ")
		b.WriteString(strings.Join(i.returning, ","))
	}
}
