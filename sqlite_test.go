package sqlxplus_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlxplus"
	"github.com/syssam/sqlxplus/dialect/sql"
	"github.com/syssam/sqlxplus/dialect/sql/sqlite"
)

const userTable = `
CREATE TABLE user (
	id          INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	password    TEXT NOT NULL,
	created_at  DATETIME
)`

func setupUsers(ctx context.Context, ex sqlxplus.Executor) error {
	if _, err := ex.ExecContext(ctx, userTable); err != nil {
		return err
	}
	if _, err := sqlxplus.BulkInsert(ctx, ex, []userInsert{
		{Name: "aaabbb", Password: "password1", CreatedAt: createdAt},
		{Name: "heyheyhey", Password: "password2", CreatedAt: createdAt},
		{Name: "xxxSHINICHIxxx", Password: "password3", CreatedAt: createdAt},
	}); err != nil {
		return err
	}
	if _, err := sqlxplus.Insert(ctx, ex, userInsert{Name: "hoge", Password: "password4", CreatedAt: createdAt}); err != nil {
		return err
	}
	_, err := sqlxplus.NewQuery("INSERT INTO user (name, password) VALUES (?, ?)").
		BindMulti("fuga", "password5").
		Exec(ctx, ex)
	return err
}

func userID(ctx context.Context, t *testing.T, q sqlxplus.Querier, name, password string) int64 {
	t.Helper()
	var (
		id  int64
		got string
	)
	err := sqlxplus.NewQuery("SELECT id, name FROM user WHERE name = ? AND password = ?").
		BindMulti(name, password).
		QueryRow(ctx, q).
		Scan(&id, &got)
	require.NoError(t, err)
	assert.Equal(t, name, got)
	return id
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	drv, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer drv.Close()

	err = sql.WithTx(ctx, drv, func(ctx context.Context, tx *sql.Tx) error {
		if err := setupUsers(ctx, tx); err != nil {
			return err
		}
		if _, err := sqlxplus.BulkInsert(ctx, tx, []userInsert{{Name: "hoge1.5", Password: "password4", CreatedAt: createdAt}}); err != nil {
			return err
		}
		_, err := sqlxplus.Insert(ctx, tx, userInsert{Name: "hoge1.6", Password: "password4", CreatedAt: createdAt})
		return err
	})
	require.NoError(t, err)

	_, err = sqlxplus.Insert(ctx, drv, userInsert{Name: "hoge1.7", Password: "password4", CreatedAt: createdAt})
	require.NoError(t, err)
	_, err = sqlxplus.BulkInsert(ctx, drv, []userInsert{{Name: "hoge1.8", Password: "password4", CreatedAt: createdAt}})
	require.NoError(t, err)

	assert.EqualValues(t, 3, userID(ctx, t, drv, "xxxSHINICHIxxx", "password3"))
	assert.EqualValues(t, 4, userID(ctx, t, drv, "hoge", "password4"))
	assert.EqualValues(t, 9, userID(ctx, t, drv, "hoge1.8", "password4"))

	err = sqlxplus.NewQuery("SELECT id FROM user WHERE name = ?").Bind("nobody").QueryRow(ctx, drv).Scan(new(int64))
	require.ErrorIs(t, err, sql.ErrNoRows)

	var count int
	require.NoError(t, drv.QueryRowContext(ctx, "SELECT COUNT(*) FROM user").Scan(&count))
	assert.Equal(t, 9, count)
}

func TestSQLiteChunkedRollback(t *testing.T) {
	ctx := context.Background()
	drv, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer drv.Close()
	_, err = drv.ExecContext(ctx, userTable)
	require.NoError(t, err)

	err = sql.WithTx(ctx, drv, func(ctx context.Context, tx *sql.Tx) error {
		// The third chunk repeats a unique name.
		_, err := sqlxplus.BulkInsertWithChunkSize(ctx, tx, 2, users("a", "b", "c", "d", "a"))
		return err
	})
	require.Error(t, err)
	var ie *sqlxplus.InsertError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 3, ie.Chunk)

	var count int
	require.NoError(t, drv.QueryRowContext(ctx, "SELECT COUNT(*) FROM user").Scan(&count))
	assert.Zero(t, count)
}

func TestSQLiteRecords(t *testing.T) {
	ctx := context.Background()
	drv, err := sqlite.Open("file:" + filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer drv.Close()
	_, err = drv.ExecContext(ctx, `CREATE TABLE user (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, password TEXT NOT NULL)`)
	require.NoError(t, err)

	rs, err := sqlxplus.ReflectAll([]userRow{{Name: "a", Password: "p"}, {Name: "b", Password: "q"}})
	require.NoError(t, err)
	results, err := sqlxplus.BulkInsert(ctx, drv, rs)
	require.NoError(t, err)
	require.Len(t, results, 1)
	n, err := results[0].RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	insp, err := drv.Inspector()
	require.NoError(t, err)
	require.NoError(t, sqlxplus.Verify(ctx, insp, sql.DefaultSchema(drv.Dialect()), rs[0]))
	assert.True(t, sqlxplus.IsTableNotFound(sqlxplus.Verify(ctx, insp, sql.DefaultSchema(drv.Dialect()), rs[0].As("missing"))))
}
