package database

import (
	"fmt"
	"strings"
)

// Driver identifies a database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

func (d Driver) String() string { return string(d) }

// DetectDriver infers the backend from a connection string.
// An empty URL means zero-config local SQLite.
func DetectDriver(url string) Driver {
	if url == "" {
		return DriverSQLite
	}
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// Rebind rewrites "?" placeholders to the driver's native form.
// SQLite queries pass through untouched; PostgreSQL gets $1..$n.
// Literal question marks inside quoted strings are not supported,
// repository queries do not use them.
func Rebind(d Driver, query string) string {
	if d != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
