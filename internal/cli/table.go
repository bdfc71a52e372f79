package cli

import (
	"strings"
)

// Table formats rows under headers with columns sized to their widest cell.
// The last column is never padded, so it may hold ANSI escape sequences.
type Table struct {
	headers []string
	rows    [][]string
	padding int
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		padding: 2,
	}
}

// AddRow adds a row, padded or truncated to the header count.
func (t *Table) AddRow(row []string) {
	fitted := make([]string, len(t.headers))
	copy(fitted, row)
	t.rows = append(t.rows, fitted)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	t.writeRow(&b, t.headers, widths)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	t.writeRow(&b, sep, widths)
	for _, row := range t.rows {
		t.writeRow(&b, row, widths)
	}
	return b.String()
}

func (t *Table) writeRow(b *strings.Builder, cells []string, widths []int) {
	gap := strings.Repeat(" ", t.padding)
	last := len(cells) - 1
	for i, cell := range cells {
		b.WriteString(cell)
		if i == last {
			break
		}
		b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
		b.WriteString(gap)
	}
	b.WriteString("\n")
}
