package render

import (
	"strings"

	"github.com/askdb-labs/askdb/internal/sqlexec"
)

// Grid renders the result as a plain fixed-width text table: a header row, a
// dash separator, then one line per row. Column width is the larger of the
// header and the widest cell in that column, measured over the whole result.
// NULLs render as NULL. No borders, no truncation; the caller decides what
// terminal real estate to spend.
func Grid(res *sqlexec.Result) string {
	if res == nil || len(res.Columns) == 0 {
		return "No results"
	}

	widths := make([]int, len(res.Columns))
	for i, col := range res.Columns {
		widths[i] = len(col)
	}

	cells := make([][]string, len(res.Rows))
	for r, row := range res.Rows {
		cells[r] = make([]string, len(res.Columns))
		for i := range res.Columns {
			s := formatValue(cellAt(row, i))
			cells[r][i] = s
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	var b strings.Builder
	writeGridLine(&b, res.Columns, widths)
	b.WriteByte('\n')

	seps := make([]string, len(res.Columns))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	writeGridLine(&b, seps, widths)

	for _, row := range cells {
		b.WriteByte('\n')
		writeGridLine(&b, row, widths)
	}

	return b.String()
}

func writeGridLine(b *strings.Builder, cells []string, widths []int) {
	var line strings.Builder
	for i, cell := range cells {
		if i > 0 {
			line.WriteString("  ")
		}
		line.WriteString(cell)
		if pad := widths[i] - len(cell); pad > 0 {
			line.WriteString(strings.Repeat(" ", pad))
		}
	}
	b.WriteString(strings.TrimRight(line.String(), " "))
}
