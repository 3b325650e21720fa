package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlxplus/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db),
		WithSlowThreshold(time.Hour),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	assert.Equal(t, time.Hour, drv.SlowThreshold())

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM users").WillReturnError(errors.New("locked"))

	_, err = drv.ExecContext(context.Background(), "INSERT INTO users (name) VALUES (?)", "a8m")
	require.NoError(t, err)
	rows, err := drv.QueryContext(context.Background(), "SELECT id FROM users")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	_, err = drv.ExecContext(context.Background(), "DELETE FROM users")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	s := drv.QueryStats().Stats()
	assert.EqualValues(t, 2, s.TotalExecs)
	assert.EqualValues(t, 1, s.TotalQueries)
	assert.EqualValues(t, 1, s.Errors)
	assert.EqualValues(t, 0, s.SlowQueries)
	assert.Empty(t, slow)
	assert.Contains(t, s.String(), "queries=1 execs=2")

	drv.QueryStats().Reset()
	assert.Zero(t, drv.QueryStats().Stats().TotalExecs)
	assert.Zero(t, StatsSnapshot{}.AvgQueryDuration())
}

func TestStatsDriverSlowQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.Postgres, db),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	drv.SetSlowThreshold(0)
	mock.ExpectExec("INSERT INTO users").
		WillDelayFor(time.Millisecond).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err = drv.ExecContext(context.Background(), "INSERT INTO users (name) VALUES ($1)", "a8m")
	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT INTO users (name) VALUES ($1)"}, slow)
	assert.EqualValues(t, 1, drv.QueryStats().Stats().SlowQueries)
}

func TestStatsDriverTxAndSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := NewStatsDriver(OpenDB(dialect.MySQL, db))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO t").WillReturnResult(sqlmock.NewResult(2, 1))

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	_, err = tx.ExecContext(context.Background(), "INSERT INTO t (a) VALUES (?)", 1)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	s, err := drv.Acquire(context.Background())
	require.NoError(t, err)
	_, err = s.ExecContext(context.Background(), "INSERT INTO t (a) VALUES (?)", 2)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, mock.ExpectationsWereMet())
	assert.EqualValues(t, 2, drv.QueryStats().Stats().TotalExecs)
	assert.Equal(t, dialect.MySQL, tx.Dialect())
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewDebugDriver(OpenDB(dialect.SQLite, db), DebugWithLogger(logger))

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	_, err = drv.ExecContext(context.Background(), "INSERT INTO users (name) VALUES (?)", "a8m")
	require.NoError(t, err)
	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	_, err = tx.ExecContext(context.Background(), "INSERT INTO users (name) VALUES (?)", "nati")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())

	out := buf.String()
	assert.Contains(t, out, "msg=exec")
	assert.Contains(t, out, `msg="begin transaction"`)
	assert.Contains(t, out, `msg="tx exec"`)
	assert.Contains(t, out, "INSERT INTO users")
}
