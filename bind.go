package sqlxplus

import (
	"context"

	"github.com/syssam/sqlxplus/dialect/sql"
)

// Query is a statement with its positional arguments.
//
//	sqlxplus.NewQuery("INSERT INTO user (name, password) VALUES (?, ?)").
//		BindMulti("fuga", "password5").
//		Exec(ctx, tx)
type Query struct {
	sql  string
	args []any
}

// NewQuery returns a Query for the given statement.
func NewQuery(query string) *Query {
	return &Query{sql: query}
}

// Bind appends an argument.
func (q *Query) Bind(v any) *Query {
	q.args = append(q.args, v)
	return q
}

// BindWith binds v through fn.
func (q *Query) BindWith(v any, fn func(*Query, any) *Query) *Query {
	return fn(q, v)
}

// BindMulti appends the arguments in order.
func (q *Query) BindMulti(vs ...any) *Query {
	q.args = append(q.args, vs...)
	return q
}

// BindMultiWith binds every element of vs through fn.
func (q *Query) BindMultiWith(vs []any, fn func(*Query, any) *Query) *Query {
	for _, v := range vs {
		q = fn(q, v)
	}
	return q
}

// BindFields appends the insert values of a record.
func (q *Query) BindFields(v Insertable) *Query {
	return q.BindMulti(v.InsertValues()...)
}

// BindMultiFields appends the insert values of every record.
func (q *Query) BindMultiFields(vs ...Insertable) *Query {
	for _, v := range vs {
		q = q.BindFields(v)
	}
	return q
}

// BindSlice appends every element of vs.
func BindSlice[T any](q *Query, vs []T) *Query {
	for _, v := range vs {
		q.args = append(q.args, v)
	}
	return q
}

// BindRecords appends the insert values of every record.
func BindRecords[T Insertable](q *Query, vs []T) *Query {
	for _, v := range vs {
		q = q.BindFields(v)
	}
	return q
}

// SQL returns the statement.
func (q *Query) SQL() string { return q.sql }

// Args returns a copy of the bound arguments.
func (q *Query) Args() []any {
	return append([]any(nil), q.args...)
}

// Exec runs the statement on ex.
func (q *Query) Exec(ctx context.Context, ex Executor) (sql.Result, error) {
	return ex.ExecContext(ctx, q.sql, q.args...)
}

// Query runs the statement on ex and returns its rows.
func (q *Query) Query(ctx context.Context, ex Querier) (*sql.Rows, error) {
	return ex.QueryContext(ctx, q.sql, q.args...)
}

// QueryRow runs the statement on ex and returns its first row. Scanning the
// row reports sql.ErrNoRows when nothing matched.
func (q *Query) QueryRow(ctx context.Context, ex Querier) *sql.Row {
	return ex.QueryRowContext(ctx, q.sql, q.args...)
}
