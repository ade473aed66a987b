// Package table provides the raw tabular structure exchanged between feed
// collaborators and the reconciliation core. Cells are strings; an empty
// cell is a missing value.
package table

import (
	"fmt"
	"strings"
)

// Table is an ordered set of named columns and string rows.
type Table struct {
	name    string
	columns []string
	rows    [][]string
	index   map[string]int
}

// New creates a table. Headers are trimmed of whitespace and a UTF-8 BOM.
// Rows shorter than the header are padded; longer rows are truncated.
func New(name string, columns []string, rows ...[]string) *Table {
	t := &Table{
		name:    name,
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		c = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
		t.columns[i] = c
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	t.rows = make([][]string, 0, len(rows))
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

// Name returns the table's source name, usually a file name.
func (t *Table) Name() string {
	return t.name
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Columns returns a copy of the column headers.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether a column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Index returns the position of a column.
func (t *Table) Index(col string) (int, bool) {
	i, ok := t.index[col]
	return i, ok
}

// Missing returns the requested columns that are not present, in order.
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Append adds a row, normalizing its width to the header.
func (t *Table) Append(row []string) {
	r := make([]string, len(t.columns))
	copy(r, row)
	t.rows = append(t.rows, r)
}

// Row returns a copy of the row at i.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Value returns the trimmed cell at row i in column col, or "" if absent.
func (t *Table) Value(i int, col string) string {
	c, ok := t.index[col]
	if !ok || i < 0 || i >= len(t.rows) {
		return ""
	}
	return strings.TrimSpace(t.rows[i][c])
}

// Column returns the trimmed values of one column.
func (t *Table) Column(col string) []string {
	out := make([]string, len(t.rows))
	for i := range t.rows {
		out[i] = t.Value(i, col)
	}
	return out
}

// Records returns the rows as column-keyed maps.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.rows))
	for i, r := range t.rows {
		rec := make(map[string]string, len(t.columns))
		for c, name := range t.columns {
			rec[name] = r[c]
		}
		out[i] = rec
	}
	return out
}

// Rows returns a deep copy of all rows.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Concat stacks tables row-wise over the union of their columns, in
// first-seen order. The result must hold exactly the sum of input rows.
func Concat(name string, tables ...*Table) (*Table, error) {
	var columns []string
	seen := make(map[string]bool)
	expected := 0
	for _, t := range tables {
		if t == nil {
			continue
		}
		expected += t.Len()
		for _, c := range t.columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	out := New(name, columns)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, r := range t.rows {
			row := make([]string, len(columns))
			for c, col := range t.columns {
				row[out.index[col]] = r[c]
			}
			out.rows = append(out.rows, row)
		}
	}

	if out.Len() != expected {
		return nil, fmt.Errorf("concat %s: got %d rows, expected %d", name, out.Len(), expected)
	}
	return out, nil
}
