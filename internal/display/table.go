package display

import (
	"fmt"
	"strings"
)

// Table renders an aligned text table. Rows can carry a style.
type Table struct {
	headers []string
	rows    [][]string
	styles  map[int]func(string) string
}

// NewTable creates a new table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		styles:  make(map[int]func(string) string),
	}
}

// AddRow appends a row and returns its index.
func (t *Table) AddRow(values ...string) int {
	t.rows = append(t.rows, values)
	return len(t.rows) - 1
}

// Style renders row idx (0-based) with style, e.g. Accent or Current.
func (t *Table) Style(idx int, style func(string) string) {
	t.styles[idx] = style
}

// Render produces the formatted table with a two-space indent.
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
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		if style, ok := t.styles[i]; ok {
			line = style(line)
		}
		sb.WriteString("  " + line + "\n")
	}

	return sb.String()
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = fmt.Sprintf("%-*s", w, cell)
	}
	// Trailing padding would make highlighted rows wider than the header.
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
