// Package sql binds database/sql handles to a dialect and builds the INSERT
// statements issued by sqlxplus.
//
// # Drivers
//
// A Driver wraps a *sql.DB and remembers its dialect. Transactions (Tx) and
// pinned connections (Session) carry the same dialect, so every executor
// knows which placeholder style to render:
//
//	drv, err := sql.Open("sqlite", "file:app.db")
//	tx, err := drv.Tx(ctx)
//	s, err := drv.Acquire(ctx)
//	defer s.Close()
//
// Session variables attached with WithVar are set before every statement and
// reset before the connection returns to the pool.
//
// # Insert Builder
//
//	query, args := sql.Dialect(dialect.Postgres).
//		Insert("users").
//		Columns("name", "age").
//		Values("a8m", 10).
//		Values("nati", 20).
//		Returning("id").
//		Query()
//	// INSERT INTO users (name,age) VALUES ($1,$2),($3,$4) RETURNING id
//
// # Instrumentation
//
// StatsDriver counts statements, errors and slow statements. DebugDriver
// logs every statement through log/slog at debug level. Both keep counting
// or logging on transactions and pinned sessions they start.
package sql
