package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/syssam/sqlxplus/dialect"
)

// ErrNoRows is returned by Row.Scan when the query selected no rows.
var ErrNoRows = sql.ErrNoRows

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// escapeStringValue escapes a string value for safe use in SQL.
// It escapes both single quotes (by doubling) and backslashes (for MySQL compatibility).
func escapeStringValue(s string) string {
	if !strings.ContainsAny(s, `'\`) {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return s
}

// Driver is a dialect-aware wrapper of a database/sql connection pool.
type Driver struct {
	Conn
	db *sql.DB
}

// NewDriver creates a new Driver with the given database handle and dialect.
func NewDriver(dialect string, db *sql.DB) *Driver {
	return &Driver{Conn: Conn{ExecQuerier: db, dialect: dialect}, db: db}
}

// Open wraps the database/sql.Open method and returns a Driver whose dialect
// is derived from the driver name.
func Open(driverName, source string) (*Driver, error) {
	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return NewDriver(driverName, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, db)
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// Tx starts and returns a transaction.
func (d *Driver) Tx(ctx context.Context) (*Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{
		Conn: Conn{ExecQuerier: tx, dialect: d.dialect},
		tx:   tx,
	}, nil
}

// Acquire pins a single connection of the pool. Statements issued through the
// returned Session run on that connection until Close is called. Session
// variables set through WithVar are reset when the Session is closed.
func (d *Driver) Acquire(ctx context.Context) (*Session, error) {
	c, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: acquire connection: %w", err)
	}
	return &Session{
		Conn:   Conn{ExecQuerier: c, dialect: d.dialect, resets: &resetList{}},
		closer: c.Close,
	}, nil
}

// Close closes the underlying connection pool.
func (d *Driver) Close() error { return d.db.Close() }

// Tx is a transaction bound to a dialect.
type Tx struct {
	Conn
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error { return t.tx.Commit() }

// Rollback aborts the transaction.
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// Session is a single pooled connection bound to a dialect.
type Session struct {
	Conn
	closer func() error
}

// Close resets the session variables set on the connection and returns it
// to the pool.
func (s *Session) Close() error {
	var err error
	if stmts := s.resets.take(); len(stmts) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, q := range stmts {
			if _, rerr := s.ExecQuerier.ExecContext(ctx, q); rerr != nil {
				err = fmt.Errorf("dialect/sql: reset session vars: %w", rerr)
				break
			}
		}
	}
	if s.closer != nil {
		err = errors.Join(err, s.closer())
	}
	return err
}

// resetList holds the statements that restore the variables set on a pinned
// connection.
type resetList struct {
	mu    sync.Mutex
	stmts []string
}

func (r *resetList) add(stmts []string) {
	if r == nil || len(stmts) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range stmts {
		if !slices.Contains(r.stmts, q) {
			r.stmts = append(r.stmts, q)
		}
	}
}

func (r *resetList) take() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stmts := r.stmts
	r.stmts = nil
	return stmts
}

// ctxVarsKey is the key used for attaching and reading the context variables.
type ctxVarsKey struct{}

// sessionVars holds sessions/transactions variables to set before every statement.
type sessionVars struct {
	vars []struct{ k, v string }
}

// WithVar returns a new context that holds the session variable to be executed before every query.
func WithVar(ctx context.Context, name, value string) context.Context {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	sv.vars = append(sv.vars, struct {
		k, v string
	}{
		k: name,
		v: value,
	})
	return context.WithValue(ctx, ctxVarsKey{}, sv)
}

// VarFromContext returns the session variable value from the context.
func VarFromContext(ctx context.Context, name string) (string, bool) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	for _, s := range sv.vars {
		if s.k == name {
			return s.v, true
		}
	}
	return "", false
}

// WithIntVar calls WithVar with the string representation of the value.
func WithIntVar(ctx context.Context, name string, value int) context.Context {
	return WithVar(ctx, name, strconv.Itoa(value))
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn binds an ExecQuerier to a dialect.
type Conn struct {
	ExecQuerier
	dialect string
	resets  *resetList // nil unless the connection is pinned by a Session
}

// Dialect returns the normalized dialect name of the connection.
func (c Conn) Dialect() string {
	return dialect.Normalize(c.dialect)
}

// ExecContext executes a statement that returns no rows.
func (c Conn) ExecContext(ctx context.Context, query string, args ...any) (_ Result, rerr error) {
	ex, cf, err := c.maySetVars(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: exec: set session vars: %w", err)
	}
	if cf != nil {
		defer func() { rerr = errors.Join(rerr, cf()) }()
	}
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: exec: %w", err)
	}
	return res, nil
}

// QueryContext executes a query that returns rows. The returned rows must be
// closed to release the underlying connection.
func (c Conn) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	ex, cf, err := c.maySetVars(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: set session vars: %w", err)
	}
	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		if cf != nil {
			err = errors.Join(err, cf())
		}
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	if cf != nil {
		return &Rows{rowsWithCloser{rows, cf}}, nil
	}
	return &Rows{rows}, nil
}

// QueryRowContext executes a query that is expected to return at most one row.
func (c Conn) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	rows, err := c.QueryContext(ctx, query, args...)
	return &Row{rows: rows, err: err}
}

// maySetVars sets the session variables before executing a query.
func (c Conn) maySetVars(ctx context.Context) (ExecQuerier, func() error, error) {
	sv, _ := ctx.Value(ctxVarsKey{}).(sessionVars)
	if len(sv.vars) == 0 {
		return c.ExecQuerier, nil, nil
	}
	var (
		ex    ExecQuerier  // Underlying ExecQuerier.
		cf    func() error // Close function.
		reset []string     // Reset variables.
		seen  = make(map[string]struct{}, len(sv.vars))
	)
	switch e := c.ExecQuerier.(type) {
	case *sql.DB:
		conn, err := e.Conn(ctx)
		if err != nil {
			return nil, nil, err
		}
		ex, cf = conn, conn.Close
	default:
		// Transactions and pinned connections already run on a single session.
		ex = e
	}
	for _, s := range sv.vars {
		if !isValidIdentifier(s.k) {
			if cf != nil {
				_ = cf()
			}
			return nil, nil, fmt.Errorf("invalid session variable name: %q", s.k)
		}
		if _, ok := seen[s.k]; !ok {
			switch c.Dialect() {
			case dialect.Postgres:
				reset = append(reset, fmt.Sprintf("RESET %s", s.k))
			case dialect.MySQL:
				reset = append(reset, fmt.Sprintf("SET %s = NULL", s.k))
			}
			seen[s.k] = struct{}{}
		}
		escapedValue := escapeStringValue(s.v)
		if _, err := ex.ExecContext(ctx, fmt.Sprintf("SET %s = '%s'", s.k, escapedValue)); err != nil {
			if cf != nil {
				err = errors.Join(err, cf())
			} else {
				c.resets.add(reset)
			}
			return nil, nil, err
		}
	}
	// Variables set on a pinned connection are reset by Session.Close.
	if cf == nil {
		c.resets.add(reset)
	}
	// Variables set on a pooled connection are reset before it returns to
	// the pool. The cleanup outlives a canceled statement context.
	if cls := cf; cf != nil && len(reset) > 0 {
		cf = func() error {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, q := range reset {
				if _, err := ex.ExecContext(cleanupCtx, q); err != nil {
					return errors.Join(err, cls())
				}
			}
			return cls()
		}
	}
	return ex, cf, nil
}

type (
	// Rows wraps the sql.Rows to avoid locks copy.
	Rows struct{ ColumnScanner }
	// Result is an alias to sql.Result.
	Result = sql.Result
	// NullBool is an alias to sql.NullBool.
	NullBool = sql.NullBool
	// NullInt64 is an alias to sql.NullInt64.
	NullInt64 = sql.NullInt64
	// NullString is an alias to sql.NullString.
	NullString = sql.NullString
	// NullFloat64 is an alias to sql.NullFloat64.
	NullFloat64 = sql.NullFloat64
	// NullTime represents a time.Time that may be null.
	NullTime = sql.NullTime
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*sql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}

// rowsWithCloser wraps the ColumnScanner interface with a custom Close hook.
type rowsWithCloser struct {
	ColumnScanner
	closer func() error
}

// Close closes the underlying ColumnScanner and calls the custom closer.
func (r rowsWithCloser) Close() error {
	err := r.ColumnScanner.Close()
	return errors.Join(err, r.closer())
}

// Row is the result of QueryRowContext.
type Row struct {
	rows *Rows
	err  error
}

// Err returns the error, if any, that was encountered while running the query.
func (r *Row) Err() error { return r.err }

// Scan copies the columns of the first row into dest and closes the rows.
// It returns ErrNoRows if the query selected no rows.
func (r *Row) Scan(dest ...any) (rerr error) {
	if r.err != nil {
		return r.err
	}
	defer func() { rerr = errors.Join(rerr, r.rows.Close()) }()
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return err
		}
		return ErrNoRows
	}
	return r.rows.Scan(dest...)
}
