package sqlxplus

import (
	"context"
	"errors"
	"slices"

	"github.com/syssam/sqlxplus/dialect"
	"github.com/syssam/sqlxplus/dialect/sql"
)

// Insert writes a single record:
//
//	INSERT INTO {table} ({columns}) VALUES ({placeholders})
func Insert(ctx context.Context, ex Executor, v Insertable) (sql.Result, error) {
	d := ex.Dialect()
	table := v.TableName()
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := checkDialect(d, table, v); err != nil {
		return nil, err
	}
	cols := v.InsertColumns()
	values, err := rowValues(table, cols, v)
	if err != nil {
		return nil, err
	}
	query, args := sql.Dialect(d).Insert(table).Columns(cols...).Values(values...).Query()
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, &InsertError{Table: table, Err: err}
	}
	return res, nil
}

// BulkInsert writes values into the table of the first value, using the
// default chunk size.
func BulkInsert[T Insertable](ctx context.Context, ex Executor, values []T) ([]sql.Result, error) {
	if len(values) == 0 {
		return []sql.Result{}, nil
	}
	return BulkInsertWithTableName(ctx, ex, values[0].TableName(), values)
}

// BulkInsertWithTableName writes values into table, using the default
// chunk size.
func BulkInsertWithTableName[T Insertable](ctx context.Context, ex Executor, table string, values []T) ([]sql.Result, error) {
	if len(values) == 0 {
		return []sql.Result{}, nil
	}
	return BulkInsertWithTableNameAndChunkSize(ctx, ex, table, DefaultChunkSize(ex.Dialect(), len(values[0].InsertColumns())), values)
}

// BulkInsertWithChunkSize writes values into the table of the first value,
// at most chunkSize records per statement.
func BulkInsertWithChunkSize[T Insertable](ctx context.Context, ex Executor, chunkSize int, values []T) ([]sql.Result, error) {
	if chunkSize < 1 {
		return nil, ErrInvalidChunkSize
	}
	if len(values) == 0 {
		return []sql.Result{}, nil
	}
	return BulkInsertWithTableNameAndChunkSize(ctx, ex, values[0].TableName(), chunkSize, values)
}

// BulkInsertWithTableNameAndChunkSize writes values into table with one
// multi-row INSERT per chunk of at most chunkSize records. It returns one
// result per executed chunk, in order. The column list is taken from the
// first value, and every other value must report the same columns in the
// same order.
//
// When ex is a connection pool, all chunks run on one pooled connection.
// A failing chunk stops the operation; the results of the chunks executed
// before it are returned along with an InsertError.
func BulkInsertWithTableNameAndChunkSize[T Insertable](ctx context.Context, ex Executor, table string, chunkSize int, values []T) (_ []sql.Result, rerr error) {
	if chunkSize < 1 {
		return nil, ErrInvalidChunkSize
	}
	if len(values) == 0 {
		return []sql.Result{}, nil
	}
	if err := checkTable(table); err != nil {
		return nil, err
	}
	d := ex.Dialect()
	cols := values[0].InsertColumns()
	rows := make([][]any, len(values))
	for i, v := range values {
		if err := checkDialect(d, table, v); err != nil {
			return nil, err
		}
		row, err := rowValues(table, cols, v)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	if a, ok := ex.(acquirer); ok {
		s, err := a.Acquire(ctx)
		if err != nil {
			return nil, &InsertError{Table: table, Err: err}
		}
		defer func() { rerr = errors.Join(rerr, s.Close()) }()
		ex = s
	}
	results := make([]sql.Result, 0, (len(rows)+chunkSize-1)/chunkSize)
	for chunk, start := 1, 0; start < len(rows); chunk, start = chunk+1, start+chunkSize {
		end := min(start+chunkSize, len(rows))
		b := sql.Dialect(d).Insert(table).Columns(cols...)
		for _, row := range rows[start:end] {
			b.Values(row...)
		}
		query, args := b.Query()
		res, err := ex.ExecContext(ctx, query, args...)
		if err != nil {
			return results, &InsertError{Table: table, Chunk: chunk, Err: err}
		}
		results = append(results, res)
	}
	return results, nil
}

// DefaultChunkSize returns the number of records per statement that keeps a
// bulk insert of the given column count within the dialect's
// bind-parameter budget. It is never less than 1.
func DefaultChunkSize(d string, columns int) int {
	if columns < 1 {
		return dialect.MaxParams(d)
	}
	return max(dialect.MaxParams(d)/columns, 1)
}

func checkTable(table string) error {
	if table == "" {
		return ErrEmptyTable
	}
	return nil
}

func checkDialect(d, table string, v Insertable) error {
	b, ok := v.(DialectBound)
	if !ok {
		return nil
	}
	if want := dialect.Normalize(b.InsertDialect()); want != "" && want != dialect.Normalize(d) {
		return &DialectMismatchError{Table: table, Record: want, Executor: d}
	}
	return nil
}

// rowValues returns the values of v checked against the column list.
func rowValues(table string, cols []string, v Insertable) ([]any, error) {
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}
	if got := v.InsertColumns(); !slices.Equal(got, cols) {
		return nil, &ColumnMismatchError{Table: table, Want: cols, Got: got}
	}
	values := v.InsertValues()
	if len(values) != len(cols) {
		return nil, &ColumnMismatchError{Table: table, Columns: len(cols), Values: len(values)}
	}
	return values, nil
}
