package tui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ellipsis marks truncated cells.
const ellipsis = "…"

// columnGap separates table columns.
const columnGap = "  "

// Table renders rows with columns aligned by display width, so wide
// characters and styled cells line up.
type Table struct {
	headers []string
	rows    [][]string
	max     map[int]int
	styles  *TableStyles
}

// NewTable creates a table with the given column headers. Headers are shown
// upper-cased.
func NewTable(headers ...string) *Table {
	upper := cases.Upper(language.English)
	hs := make([]string, len(headers))
	for i, h := range headers {
		hs[i] = upper.String(h)
	}
	return &Table{
		headers: hs,
		max:     map[int]int{},
		styles:  NewTableStyles(),
	}
}

// MaxWidth truncates column col to width display cells.
func (t *Table) MaxWidth(col, width int) *Table {
	t.max[col] = width
	return t
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = t.truncate(i, cells[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) truncate(col int, cell string) string {
	limit, ok := t.max[col]
	if !ok || limit <= 0 || lipgloss.Width(cell) <= limit {
		return cell
	}
	// Styled cells are never truncated; only plain text can be cut safely.
	if strings.Contains(cell, "\x1b[") {
		return cell
	}
	return runewidth.Truncate(cell, limit, ellipsis)
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

// Render writes the table to w. A table without headers writes nothing.
func (t *Table) Render(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}
	widths := t.widths()

	parts := make([]string, len(t.headers))
	for i, h := range t.headers {
		parts[i] = t.styles.Header.Render(pad(h, widths[i]))
	}
	writeLine(w, parts)

	for _, row := range t.rows {
		for i, cell := range row {
			parts[i] = t.styles.Cell.Render(pad(cell, widths[i]))
		}
		writeLine(w, parts)
	}
}

func writeLine(w io.Writer, parts []string) {
	_, _ = io.WriteString(w, strings.TrimRight(strings.Join(parts, columnGap), " ")+"\n")
}

// pad right-pads s with spaces to width display cells. ANSI sequences in s
// take no width.
func pad(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
