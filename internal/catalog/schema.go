package catalog

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Schema returns the statements that drop and recreate the five tables for d,
// in execution order.
func Schema(d Dialect) ([]string, error) {
	var name string
	switch d {
	case Postgres:
		name = "schema/postgres.sql"
	case SQLite:
		name = "schema/sqlite.sql"
	case SQLServer:
		name = "schema/sqlserver.sql"
	default:
		return nil, fmt.Errorf("catalog: no schema for %s", d)
	}

	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", name, err)
	}
	return splitStatements(string(raw)), nil
}

// splitStatements splits a script on ';'. The embedded scripts never contain
// semicolons inside literals.
func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
