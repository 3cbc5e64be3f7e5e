// Package catalog holds the SQL text used by the loaders, the stores and the
// report command.
//
// Statements are written once and rendered per Dialect so that placeholder
// syntax ($1 / ? / @p1) and identifier quoting stay in one place. Rendering a
// single-row insert yields the classic static template; multi-row rendering
// exists for batched loads.
package catalog

import (
	"fmt"
	"strings"
)

// Dialect selects placeholder and quoting rules for a backend.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
	SQLServer
)

// ParseDialect maps a storage kind onto a Dialect.
//
// Accepted spellings mirror the storage registry: "postgres"/"postgresql",
// "sqlite", "mssql"/"sqlserver".
func ParseDialect(kind string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "mssql", "sqlserver":
		return SQLServer, nil
	default:
		return 0, fmt.Errorf("catalog: unsupported dialect %q", kind)
	}
}

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	case SQLServer:
		return "mssql"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Placeholder returns the n-th (1-based) bind parameter marker.
func (d Dialect) Placeholder(n int) string {
	switch d {
	case SQLite:
		return "?"
	case SQLServer:
		return fmt.Sprintf("@p%d", n)
	default:
		return fmt.Sprintf("$%d", n)
	}
}

// Ident quotes a single identifier. Column names such as "time", "year" and
// "level" collide with keywords on at least one backend, so everything is
// quoted.
func (d Dialect) Ident(name string) string {
	if d == SQLServer {
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// MaxParams is the number of bind parameters a single statement may carry,
// kept a little under each backend's hard limit.
func (d Dialect) MaxParams() int {
	switch d {
	case SQLServer:
		return 2000
	case SQLite:
		return 32000
	default:
		return 65000
	}
}
