// Package naming derives column and table names from Go identifiers.
package naming

import (
	"go/token"
	"go/types"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
)

// Snake converts a Go identifier to snake_case. Acronyms stay together:
// "HTTPCode" becomes "http_code" and "UserIDs" becomes "user_ids".
func Snake(s string) string {
	if s == "" {
		return ""
	}
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range rs {
		if unicode.IsUpper(r) && i > 0 {
			prev := rs[i-1]
			switch {
			case unicode.IsLower(prev) || unicode.IsDigit(prev):
				b.WriteByte('_')
			case unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]) && !pluralSuffix(rs, i+1):
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// pluralSuffix reports if rs[i] is a trailing "s" of an acronym, as in "IDs".
func pluralSuffix(rs []rune, i int) bool {
	return i == len(rs)-1 && rs[i] == 's'
}

// Table returns the default table name of a Go type: the pluralized
// snake_case form of its name.
func Table(typeName string) string {
	return inflect.Pluralize(Snake(typeName))
}

// Receiver returns the initials of a type name, used as its method receiver:
// "UserQuery" becomes "uq" and "HTTPClient" becomes "hc". Initials that form
// a keyword or a predeclared identifier are cut to the first letter.
func Receiver(typeName string) string {
	typeName = strings.TrimLeft(typeName, "[]*0123456789")
	var b strings.Builder
	for _, part := range strings.Split(Snake(typeName), "_") {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	name := b.String()
	switch {
	case name == "":
		return "r"
	case token.IsKeyword(name), types.Universe.Lookup(name) != nil:
		return name[:1]
	}
	return name
}
