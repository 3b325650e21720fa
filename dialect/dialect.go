package dialect

import (
	"strconv"
	"strings"
)

// Dialect names.
const (
	SQLite   = "sqlite"
	MySQL    = "mysql"
	Postgres = "postgres"
	MSSQL    = "mssql"
)

// DefaultMaxParams is the bind-parameter budget of a single statement used
// when sizing bulk-insert chunks.
const DefaultMaxParams = 30000

// mssqlMaxParams stays under the 2100 parameter ceiling of SQL Server.
const mssqlMaxParams = 2000

var aliases = map[string]string{
	"sqlite3":    SQLite,
	"pgx":        Postgres,
	"postgresql": Postgres,
	"sqlserver":  MSSQL,
	"mariadb":    MySQL,
}

// Names returns the supported dialect names.
func Names() []string {
	return []string{SQLite, MySQL, Postgres, MSSQL}
}

// Valid reports if name is one of the supported dialects.
func Valid(name string) bool {
	switch name {
	case SQLite, MySQL, Postgres, MSSQL:
		return true
	}
	return false
}

// Normalize maps a database/sql driver name to its dialect. Wrapped driver
// names carrying a dialect prefix (e.g. "postgres-otel") resolve to that
// dialect. Unknown names are returned as-is.
func Normalize(name string) string {
	if Valid(name) {
		return name
	}
	if d, ok := aliases[name]; ok {
		return d
	}
	for _, d := range Names() {
		if strings.HasPrefix(name, d) {
			return d
		}
	}
	for alias, d := range aliases {
		if strings.HasPrefix(name, alias) {
			return d
		}
	}
	return name
}

// Numbered reports if the dialect uses numbered placeholders.
func Numbered(d string) bool {
	return d == Postgres || d == MSSQL
}

// MaxParams returns the per-statement bind-parameter budget for d.
func MaxParams(d string) int {
	if d == MSSQL {
		return mssqlMaxParams
	}
	return DefaultMaxParams
}

// Placeholders returns num comma separated placeholders for d. The start
// argument is the first parameter number for numbered dialects and is
// ignored by the others. A start below 1 means 1.
func Placeholders(d string, num, start int) string {
	var b strings.Builder
	writePlaceholders(&b, d, num, start)
	return b.String()
}

// BulkPlaceholders returns rows parenthesized groups of cols placeholders,
// e.g. "(?,?),(?,?)". Numbered dialects continue counting across groups.
func BulkPlaceholders(d string, rows, cols, start int) string {
	if start < 1 {
		start = 1
	}
	var b strings.Builder
	b.Grow(rows * (cols*3 + 3))
	b.WriteByte('(')
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString("),(")
		}
		writePlaceholders(&b, d, cols, start+i*cols)
	}
	b.WriteByte(')')
	return b.String()
}

func writePlaceholders(b *strings.Builder, d string, num, start int) {
	if start < 1 {
		start = 1
	}
	for i := 0; i < num; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		switch d {
		case Postgres:
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(start + i))
		case MSSQL:
			b.WriteString("@p")
			b.WriteString(strconv.Itoa(start + i))
		default:
			b.WriteByte('?')
		}
	}
}
