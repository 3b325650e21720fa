// Package sqlxplus generates and executes INSERT statements for Go structs
// on top of database/sql.
//
// A record implements Insertable, either by hand, through the sqlxplus code
// generator, or at runtime with Reflect:
//
//	//sqlxplus:insertable sqlite user
//	type UserInsert struct {
//		Name      string    `db:"name"`
//		Password  string    `db:"password"`
//		CreatedAt time.Time `db:"created_at"`
//	}
//
// Records are inserted through any Executor:
//
//	drv, err := sqlite.Open("file:app.db")
//	res, err := sqlxplus.Insert(ctx, drv, UserInsert{Name: "a8m"})
//	// INSERT INTO user (name,password,created_at) VALUES (?,?,?)
//
//	results, err := sqlxplus.BulkInsert(ctx, drv, users)
//	// INSERT INTO user (name,password,created_at) VALUES (?,?,?),(?,?,?),...
//
// Bulk inserts are split into chunks so that a statement never exceeds the
// dialect's bind-parameter budget. Placeholders follow the executor's
// dialect: "?" on SQLite and MySQL, "$n" on PostgreSQL, "@pn" on SQL Server.
//
// NewQuery collects arguments for hand-written statements:
//
//	row := sqlxplus.NewQuery("SELECT id FROM user WHERE name = ? AND password = ?").
//		BindMulti("hoge", "password4").
//		QueryRow(ctx, drv)
package sqlxplus
