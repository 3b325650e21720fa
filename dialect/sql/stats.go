package sql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// QueryStats holds statement execution statistics.
type QueryStats struct {
	// TotalQueries is the total number of queries executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of exec statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of statement errors.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of statement statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the average statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is a function called when a slow statement is detected.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver wraps a Driver with statement statistics collection.
type StatsDriver struct {
	*Driver
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow statement detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback function for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow statements to the given logger, or to the
// default logger when l is nil.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		l.WarnContext(ctx, "slow query detected", "duration", duration, "query", query, "args", len(args))
	})
}

// NewStatsDriver wraps a Driver with statistics collection.
//
//	drv, _ := sql.Open("postgres", dsn)
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
//	sqlxplus.BulkInsert(ctx, stats, users)
//	fmt.Println(stats.QueryStats().Stats())
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:        drv,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the underlying QueryStats for reading statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// QueryContext executes a query and records statistics.
func (d *StatsDriver) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	start := time.Now()
	rows, err := d.Driver.QueryContext(ctx, query, args...)
	d.record(ctx, query, args, start, err, true)
	return rows, err
}

// ExecContext executes a statement and records statistics.
func (d *StatsDriver) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	start := time.Now()
	res, err := d.Driver.ExecContext(ctx, query, args...)
	d.record(ctx, query, args, start, err, false)
	return res, err
}

// QueryRowContext executes a single-row query and records statistics.
func (d *StatsDriver) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	rows, err := d.QueryContext(ctx, query, args...)
	return &Row{rows: rows, err: err}
}

func (d *StatsDriver) record(ctx context.Context, query string, args []any, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		d.stats.TotalQueries.Add(1)
	} else {
		d.stats.TotalExecs.Add(1)
	}
	d.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	hook := d.slowHook
	d.mu.RUnlock()

	if duration > threshold {
		d.stats.SlowQueries.Add(1)
		if hook != nil {
			hook(ctx, query, args, duration)
		}
	}
}

// Tx starts a transaction that also records statistics.
func (d *StatsDriver) Tx(ctx context.Context) (*Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options that also records statistics.
func (d *StatsDriver) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	tx, err := d.Driver.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	tx.ExecQuerier = &statsExecQuerier{ExecQuerier: tx.ExecQuerier, driver: d}
	return tx, nil
}

// Acquire pins a pooled connection whose statements also record statistics.
func (d *StatsDriver) Acquire(ctx context.Context) (*Session, error) {
	s, err := d.Driver.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.ExecQuerier = &statsExecQuerier{ExecQuerier: s.ExecQuerier, driver: d}
	return s, nil
}

// statsExecQuerier records statistics for statements issued on a
// transaction or a pinned connection.
type statsExecQuerier struct {
	ExecQuerier
	driver *StatsDriver
}

func (s *statsExecQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := s.ExecQuerier.ExecContext(ctx, query, args...)
	s.driver.record(ctx, query, args, start, err, false)
	return res, err
}

func (s *statsExecQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := s.ExecQuerier.QueryContext(ctx, query, args...)
	s.driver.record(ctx, query, args, start, err, true)
	return rows, err
}

// DebugDriver wraps a Driver with debug logging.
type DebugDriver struct {
	*Driver
	log *slog.Logger
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger statements are written to.
func DebugWithLogger(l *slog.Logger) DebugOption {
	return func(d *DebugDriver) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDebugDriver wraps a Driver with debug logging.
//
//	drv, _ := sql.Open("sqlite", "file:ent?mode=memory")
//	debug := sql.NewDebugDriver(drv, sql.DebugWithLogger(logger))
func NewDebugDriver(drv *Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Driver: drv,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// QueryContext executes a query and logs it.
func (d *DebugDriver) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	d.log.DebugContext(ctx, "query", "sql", query, "args", args)
	return d.Driver.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement and logs it.
func (d *DebugDriver) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	d.log.DebugContext(ctx, "exec", "sql", query, "args", args)
	return d.Driver.ExecContext(ctx, query, args...)
}

// QueryRowContext executes a single-row query and logs it.
func (d *DebugDriver) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	rows, err := d.QueryContext(ctx, query, args...)
	return &Row{rows: rows, err: err}
}

// Tx starts a transaction with debug logging.
func (d *DebugDriver) Tx(ctx context.Context) (*Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options and debug logging.
func (d *DebugDriver) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	d.log.DebugContext(ctx, "begin transaction")
	tx, err := d.Driver.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	tx.ExecQuerier = &debugExecQuerier{ExecQuerier: tx.ExecQuerier, log: d.log, prefix: "tx "}
	return tx, nil
}

// Acquire pins a pooled connection whose statements are also logged.
func (d *DebugDriver) Acquire(ctx context.Context) (*Session, error) {
	s, err := d.Driver.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.ExecQuerier = &debugExecQuerier{ExecQuerier: s.ExecQuerier, log: d.log, prefix: "session "}
	return s, nil
}

type debugExecQuerier struct {
	ExecQuerier
	log    *slog.Logger
	prefix string
}

func (q *debugExecQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q.log.DebugContext(ctx, q.prefix+"exec", "sql", query, "args", args)
	return q.ExecQuerier.ExecContext(ctx, query, args...)
}

func (q *debugExecQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	q.log.DebugContext(ctx, q.prefix+"query", "sql", query, "args", args)
	return q.ExecQuerier.QueryContext(ctx, query, args...)
}

// OpenWithStats opens a database connection with statistics collection enabled.
//
//	drv, stats, err := sql.OpenWithStats("postgres", dsn,
//	    sql.WithSlowThreshold(100*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
func OpenWithStats(driverName, source string, opts ...StatsOption) (*StatsDriver, *QueryStats, error) {
	drv, err := Open(driverName, source)
	if err != nil {
		return nil, nil, err
	}
	statsDriver := NewStatsDriver(drv, opts...)
	return statsDriver, statsDriver.QueryStats(), nil
}
