// Package report runs the read-only analysis queries over a loaded database
// and renders them as tables.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sparkify/internal/catalog"
	"sparkify/internal/storage"
)

// Result is one analysis with its rows, values as returned by the driver.
type Result struct {
	Analysis catalog.Analysis
	Rows     [][]any
}

// Run executes every analysis for the store's dialect and ends the read
// transaction.
func Run(ctx context.Context, st storage.Store) ([]Result, error) {
	analyses := catalog.Analyses(st.Dialect())
	out := make([]Result, 0, len(analyses))

	for _, a := range analyses {
		rows, err := query(ctx, st, a)
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", a.Name, err)
		}
		out = append(out, Result{Analysis: a, Rows: rows})
	}
	if err := st.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func query(ctx context.Context, st storage.Store, a catalog.Analysis) ([][]any, error) {
	rows, err := st.Query(ctx, a.SQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(a.Columns))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Render writes each result as a titled table. Integers and floats are
// grouped by thousands.
func Render(w io.Writer, results []Result) error {
	p := message.NewPrinter(language.English)

	for i, r := range results {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}

		cells := make([][]string, 0, len(r.Rows))
		for _, row := range r.Rows {
			line := make([]string, len(row))
			for j, v := range row {
				line[j] = formatValue(p, v)
			}
			cells = append(cells, line)
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(r.Analysis.Columns...).
			Rows(cells...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		if _, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(r.Analysis.Title), t.String()); err != nil {
			return err
		}
		if len(r.Rows) == 0 {
			if _, err := io.WriteString(w, "(no rows)\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatValue(p *message.Printer, v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return p.Sprintf("%d", x)
	case int32:
		return p.Sprintf("%d", x)
	case int:
		return p.Sprintf("%d", x)
	case float64:
		return p.Sprintf("%.2f", x)
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
