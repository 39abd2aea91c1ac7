// Package tabular provides loading, modeling and normalization of the
// heterogeneous event/today tables the prediction pipeline consumes.
package tabular

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind classifies a column's storage representation.
type Kind int

const (
	// KindString holds raw text cells.
	KindString Kind = iota
	// KindNumeric holds float64 cells with a null mask.
	KindNumeric
	// KindInteger holds integral float64 cells with a null mask.
	KindInteger
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumeric:
		return "numeric"
	case KindInteger:
		return "integer"
	default:
		return "unknown"
	}
}

// Column is a single named column. Exactly one of Floats/Strings carries the
// cells, selected by Kind; Nulls marks missing cells in either representation.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
	Nulls   []bool
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	return len(c.Nulls)
}

// IsNumeric reports whether the column carries numeric cells.
func (c *Column) IsNumeric() bool {
	return c.Kind == KindNumeric || c.Kind == KindInteger
}

// AllNull reports whether every cell in the column is missing.
func (c *Column) AllNull() bool {
	for _, isNull := range c.Nulls {
		if !isNull {
			return false
		}
	}
	return true
}

// FloatAt returns the numeric value at row i and whether it is present.
func (c *Column) FloatAt(i int) (float64, bool) {
	if c.Nulls[i] || !c.IsNumeric() {
		return 0, false
	}
	return c.Floats[i], true
}

// StringAt returns a display representation of the cell at row i. Missing
// cells render as the empty string.
func (c *Column) StringAt(i int) string {
	if c.Nulls[i] {
		return ""
	}
	switch c.Kind {
	case KindString:
		return c.Strings[i]
	case KindInteger:
		return strconv.FormatInt(int64(c.Floats[i]), 10)
	default:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	}
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Floats != nil {
		out.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Strings != nil {
		out.Strings = append([]string(nil), c.Strings...)
	}
	out.Nulls = append([]bool(nil), c.Nulls...)
	return out
}

// Table is an ordered collection of named columns with a dense 0-based row
// index. Column names may collide on ingestion; Normalize rejects collisions
// before any downstream stage runs.
type Table struct {
	cols  []Column
	index map[string]int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// AddColumn appends a column. When the name already exists the first
// occurrence keeps the index; duplicate detection is the normalizer's job.
func (t *Table) AddColumn(c Column) {
	if _, exists := t.index[c.Name]; !exists {
		t.index[c.Name] = len(t.cols)
	}
	t.cols = append(t.cols, c)
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Col returns the first column with the given name.
func (t *Table) Col(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.cols[i], true
}

// ColumnAt returns the column at position i.
func (t *Table) ColumnAt(i int) *Column {
	return &t.cols[i]
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// NumericColumns returns the names of all numeric columns in table order.
func (t *Table) NumericColumns() []string {
	var names []string
	for i := range t.cols {
		if t.cols[i].IsNumeric() {
			names = append(names, t.cols[i].Name)
		}
	}
	return names
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := NewTable()
	for i := range t.cols {
		out.AddColumn(t.cols[i].Clone())
	}
	return out
}

// DuplicateColumns returns the sorted set of column names that appear more
// than once.
func (t *Table) DuplicateColumns() []string {
	seen := make(map[string]int)
	for i := range t.cols {
		seen[t.cols[i].Name]++
	}
	var dupes []string
	for name, n := range seen {
		if n > 1 {
			dupes = append(dupes, name)
		}
	}
	sort.Strings(dupes)
	return dupes
}

// ValueCount is a single bucket of a value-counts summary.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts summarizes the distinct values of a column, including a "<null>"
// bucket for missing cells, ordered by descending count then value.
func (t *Table) ValueCounts(name string) ([]ValueCount, error) {
	col, ok := t.Col(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		key := "<null>"
		if !col.Nulls[i] {
			key = col.StringAt(i)
		}
		counts[key]++
	}
	out := make([]ValueCount, 0, len(counts))
	for value, n := range counts {
		out = append(out, ValueCount{Value: value, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// RowMap renders row i as a column-name to display-string map. Used for the
// raw-row debug traces.
func (t *Table) RowMap(i int) map[string]string {
	row := make(map[string]string, len(t.cols))
	for j := range t.cols {
		row[t.cols[j].Name] = t.cols[j].StringAt(i)
	}
	return row
}

// FindRows returns the indices of rows whose named column equals value.
func (t *Table) FindRows(name, value string) []int {
	col, ok := t.Col(name)
	if !ok {
		return nil
	}
	var rows []int
	for i := 0; i < col.Len(); i++ {
		if !col.Nulls[i] && col.StringAt(i) == value {
			rows = append(rows, i)
		}
	}
	return rows
}
