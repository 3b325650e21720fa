// Package dialect names the SQL backends supported by sqlxplus and renders
// their bind-parameter placeholders.
//
// # Supported Dialects
//
//   - SQLite: SQLite database
//   - MySQL: MySQL/MariaDB database
//   - Postgres: PostgreSQL database
//   - MSSQL: Microsoft SQL Server
//
// Each dialect is identified by a constant string:
//
//	dialect.SQLite   = "sqlite"
//	dialect.MySQL    = "mysql"
//	dialect.Postgres = "postgres"
//	dialect.MSSQL    = "mssql"
//
// # Placeholders
//
// SQLite and MySQL use positional question marks, PostgreSQL uses numbered
// dollar parameters and SQL Server uses numbered @p parameters:
//
//	dialect.Placeholders(dialect.SQLite, 3, 1)   // ?,?,?
//	dialect.Placeholders(dialect.Postgres, 3, 4) // $4,$5,$6
//	dialect.Placeholders(dialect.MSSQL, 2, 1)    // @p1,@p2
//
// Multi-row VALUES lists are rendered by BulkPlaceholders, which keeps the
// numbering running across rows:
//
//	dialect.BulkPlaceholders(dialect.Postgres, 2, 2, 1) // ($1,$2),($3,$4)
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver glue and the INSERT builder
//   - dialect/sql/sqlite, dialect/sql/mysql, dialect/sql/postgres,
//     dialect/sql/mssql: backend openers that link the matching driver
package dialect
