package generic

import (
	"sort"
	"strings"
)

// =============================================================================
// TABLE - A homogeneous record set keyed by field name
// =============================================================================

// Table is a raw record set as read from an adapter: a header naming the
// fields and rows of text values in header order. Field order is not part
// of the contract; lookups go through the header.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table. Column names are trimmed.
func NewTable(name string, columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}
	t := &Table{Name: name, Columns: cols, Rows: rows}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, seen := t.index[c]; !seen {
			t.index[c] = i
		}
	}
}

// Has reports whether the table carries the named field.
func (t *Table) Has(column string) bool {
	if t.index == nil {
		t.buildIndex()
	}
	_, ok := t.index[column]
	return ok
}

// Require fails with a MissingColumnError listing every absent field, sorted.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingColumnError{RecordSet: t.Name, Missing: missing}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Value returns the field of row i, or "" when the field is absent or the
// row is short.
func (t *Table) Value(i int, column string) string {
	if t.index == nil {
		t.buildIndex()
	}
	c, ok := t.index[column]
	if !ok || c >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][c]
}

// Lookup is Value with a presence flag distinguishing an absent field from
// an empty one.
func (t *Table) Lookup(i int, column string) (string, bool) {
	if !t.Has(column) {
		return "", false
	}
	return t.Value(i, column), true
}
