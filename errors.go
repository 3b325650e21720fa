package sqlxplus

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for insert operations.
var (
	// ErrNoColumns is returned when a record has no insert columns.
	ErrNoColumns = errors.New("sqlxplus: record has no insert columns")

	// ErrInvalidChunkSize is returned when a bulk insert is given a chunk
	// size smaller than 1.
	ErrInvalidChunkSize = errors.New("sqlxplus: chunk size must be positive")

	// ErrEmptyTable is returned when the target table name is empty.
	ErrEmptyTable = errors.New("sqlxplus: empty table name")

	// ErrDialectMismatch is matched by DialectMismatchError.
	ErrDialectMismatch = errors.New("sqlxplus: dialect mismatch")

	// ErrColumnMismatch is matched by ColumnMismatchError.
	ErrColumnMismatch = errors.New("sqlxplus: record columns mismatch")
)

// ColumnMismatchError is returned when a record reports a different number
// of values than columns, or when a record of a bulk insert has columns
// other than those of the first record. Want and Got are set in the latter
// case.
type ColumnMismatchError struct {
	Table   string
	Columns int
	Values  int
	Want    []string // Columns of the first record
	Got     []string // Columns of the mismatching record
}

// Error returns the error string.
func (e *ColumnMismatchError) Error() string {
	if e.Want != nil || e.Got != nil {
		return fmt.Sprintf("sqlxplus: %s: record columns (%s) do not match (%s)",
			e.Table, strings.Join(e.Got, ","), strings.Join(e.Want, ","))
	}
	return fmt.Sprintf("sqlxplus: %s: %d columns but %d values", e.Table, e.Columns, e.Values)
}

// Is reports whether the target error matches ColumnMismatchError.
func (e *ColumnMismatchError) Is(err error) bool {
	return err == ErrColumnMismatch
}

// DialectMismatchError is returned when a record bound to one dialect is
// inserted through an executor of another.
type DialectMismatchError struct {
	Table    string
	Record   string // Dialect the record was generated for
	Executor string // Dialect of the executor
}

// Error returns the error string.
func (e *DialectMismatchError) Error() string {
	return fmt.Sprintf("sqlxplus: %s is bound to %s but the executor is %s", e.Table, e.Record, e.Executor)
}

// Is reports whether the target error matches DialectMismatchError.
// This allows errors.Is(err, ErrDialectMismatch) to return true.
func (e *DialectMismatchError) Is(err error) bool {
	return err == ErrDialectMismatch
}

// IsDialectMismatch returns true if the error is a DialectMismatchError.
func IsDialectMismatch(err error) bool {
	if err == nil {
		return false
	}
	var e *DialectMismatchError
	return errors.As(err, &e) || errors.Is(err, ErrDialectMismatch)
}

// InsertError wraps a failed INSERT statement with the table and the
// 1-based number of the chunk that failed. Chunk is 0 for statements that
// are not part of a bulk insert.
type InsertError struct {
	Table string
	Chunk int
	Err   error
}

// Error returns the error string.
func (e *InsertError) Error() string {
	if e.Chunk == 0 {
		return fmt.Sprintf("sqlxplus: insert into %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("sqlxplus: insert into %s (chunk %d): %v", e.Table, e.Chunk, e.Err)
}

// Unwrap returns the underlying error.
func (e *InsertError) Unwrap() error {
	return e.Err
}

// IsInsertError returns true if the error is an InsertError.
func IsInsertError(err error) bool {
	if err == nil {
		return false
	}
	var e *InsertError
	return errors.As(err, &e)
}

// NotInsertableError is returned when a value cannot be reflected into a
// record.
type NotInsertableError struct {
	Type string
}

// Error returns the error string.
func (e *NotInsertableError) Error() string {
	return fmt.Sprintf("sqlxplus: %s is not insertable: only structs can be insertable", e.Type)
}

// IsNotInsertable returns true if the error is a NotInsertableError.
func IsNotInsertable(err error) bool {
	if err == nil {
		return false
	}
	var e *NotInsertableError
	return errors.As(err, &e)
}

// TableNotFoundError is returned by Verify when the target table does not
// exist in the inspected schema.
type TableNotFoundError struct {
	Table  string
	Schema string
}

// Error returns the error string.
func (e *TableNotFoundError) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("sqlxplus: table %s.%s not found", e.Schema, e.Table)
	}
	return fmt.Sprintf("sqlxplus: table %s not found", e.Table)
}

// IsTableNotFound returns true if the error is a TableNotFoundError.
func IsTableNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *TableNotFoundError
	return errors.As(err, &e)
}

// MissingColumnsError is returned by Verify when insert columns are absent
// from the target table.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

// Error returns the error string.
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("sqlxplus: table %s is missing columns: %s", e.Table, strings.Join(e.Columns, ", "))
}

// IsMissingColumns returns true if the error is a MissingColumnsError.
func IsMissingColumns(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingColumnsError
	return errors.As(err, &e)
}
