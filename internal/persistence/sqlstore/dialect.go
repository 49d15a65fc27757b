package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

type dialect struct {
	driver string
	// numbered placeholders ($1, $2, ...) instead of "?"
	numbered bool
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite, "sqlite3":
		return dialect{driver: DriverSQLite}, nil
	case DriverPostgres, "postgresql", "pgx":
		return dialect{driver: DriverPostgres, numbered: true}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// rebind rewrites "?" placeholders for drivers that number them. Queries in
// this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
