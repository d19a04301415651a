package cli

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// visibleLen is the printed width of s, ignoring color sequences.
func visibleLen(s string) int {
	return utf8.RuneCountInString(ansiSeq.ReplaceAllString(s, ""))
}

// Table buffers rows and prints them column-aligned under a header and a
// dash divider. Colored cells are aligned by their visible width.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
	empty   string
}

// NewTable creates a table writing to out with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	return &Table{out: out, headers: headers}
}

// WithEmpty sets the line Flush prints when no rows were added. Without it
// an empty table prints nothing.
func (t *Table) WithEmpty(msg string) *Table {
	t.empty = msg
	return t
}

// Row adds a row. Missing cells are blank; extra cells are dropped.
func (t *Table) Row(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows added.
func (t *Table) Len() int { return len(t.rows) }

// Flush prints the table.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		if t.empty != "" {
			fmt.Fprintln(t.out, t.empty)
		}
		return
	}

	widths := make([]int, len(t.headers))
	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleLen(h)
		dividers[i] = strings.Repeat("-", len(h))
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if n := visibleLen(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	t.line(widths, t.headers)
	t.line(widths, dividers)
	for _, row := range t.rows {
		t.line(widths, row)
	}
}

func (t *Table) line(widths []int, cells []string) {
	var b strings.Builder
	for i, cell := range cells {
		b.WriteString(cell)
		if i == len(cells)-1 {
			break
		}
		b.WriteString(strings.Repeat(" ", widths[i]-visibleLen(cell)+2))
	}
	fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
}
