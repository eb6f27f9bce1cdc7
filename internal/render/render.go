// Package render turns query results into terminal output. The table, json,
// csv and markdown forms are for the CLI's --output flag; Grid is the plain
// fixed-width form used in interactive previews.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/askdb-labs/askdb/internal/sqlexec"
)

// Formats accepted by Render.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

// Render writes the result in the requested format. Unknown formats fall
// back to the table form.
func Render(w io.Writer, res *sqlexec.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, res)
	case FormatCSV:
		return renderCSV(w, res)
	case "md", FormatMarkdown:
		return renderMarkdown(w, res)
	case FormatPlain:
		_, err := fmt.Fprintln(w, Grid(res))
		return err
	default:
		return renderTable(w, res)
	}
}

var rowCountPrinter = message.NewPrinter(language.English)

// RowCountSuffix renders the row count trailer with grouped thousands,
// e.g. "(1,234 rows)".
func RowCountSuffix(n int) string {
	return rowCountPrinter.Sprintf("(%d rows)", n)
}

func renderTable(w io.Writer, res *sqlexec.Result) error {
	if res.RowCount == 0 {
		_, _ = fmt.Fprintln(w, RowCountSuffix(0))
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, row := range res.Rows {
		out := make(table.Row, len(res.Columns))
		for i := range res.Columns {
			out[i] = formatValue(cellAt(row, i))
		}
		t.AppendRow(out)
	}

	t.Render()
	_, _ = fmt.Fprintln(w, RowCountSuffix(res.RowCount))
	return nil
}

func renderJSON(w io.Writer, res *sqlexec.Result) error {
	results := make([]map[string]any, 0, len(res.Rows))
	for _, row := range res.Rows {
		obj := make(map[string]any, len(res.Columns))
		for i, col := range res.Columns {
			obj[col] = cellAt(row, i)
		}
		results = append(results, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, res *sqlexec.Result) error {
	_, _ = fmt.Fprintln(w, strings.Join(res.Columns, ","))

	for _, row := range res.Rows {
		values := make([]string, len(res.Columns))
		for i := range res.Columns {
			values[i] = escapeCSV(formatValue(cellAt(row, i)))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, res *sqlexec.Result) error {
	if res.RowCount == 0 {
		_, _ = fmt.Fprintln(w, RowCountSuffix(0))
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(res.Columns, " | "))

	seps := make([]string, len(res.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range res.Rows {
		values := make([]string, len(res.Columns))
		for i := range res.Columns {
			values[i] = formatValue(cellAt(row, i))
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

func cellAt(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
