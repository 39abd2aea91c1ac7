package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// missingTokens are cell values treated as null on top of the empty string.
var missingTokens = map[string]struct{}{
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
	"none": {},
}

func isMissingToken(s string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok || strings.TrimSpace(s) == ""
}

// Normalize returns a cleaned copy of the table: fully-null columns are
// dropped, string columns that parse numerically are converted, and float
// columns whose non-null values are all integral are narrowed to integer
// kind. Duplicate column names are a fatal error reported with the offending
// names; the normalizer never guesses which duplicate to keep. The input
// table is not modified.
func Normalize(t *Table) (*Table, error) {
	if dupes := t.DuplicateColumns(); len(dupes) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateColumns, strings.Join(dupes, ", "))
	}

	out := NewTable()
	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		if col.AllNull() {
			continue
		}
		out.AddColumn(normalizeColumn(col))
	}
	if out.NumCols() == 0 || out.NumRows() == 0 {
		return nil, ErrEmptyTable
	}
	return out, nil
}

func normalizeColumn(col *Column) Column {
	c := col.Clone()
	if c.Kind == KindString {
		if converted, ok := toNumeric(&c); ok {
			c = converted
		}
	}
	if c.Kind == KindNumeric && allIntegral(&c) {
		c.Kind = KindInteger
	}
	return c
}

// toNumeric converts a string column when every non-null cell parses as a
// float. Ambiguous columns are left untouched; there is no best-effort
// coercion of individual cells.
func toNumeric(c *Column) (Column, bool) {
	floats := make([]float64, c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.Nulls[i] {
			continue
		}
		raw := strings.TrimSpace(c.Strings[i])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Column{}, false
		}
		floats[i] = v
	}
	return Column{
		Name:   c.Name,
		Kind:   KindNumeric,
		Floats: floats,
		Nulls:  append([]bool(nil), c.Nulls...),
	}, true
}

func allIntegral(c *Column) bool {
	for i := 0; i < c.Len(); i++ {
		if c.Nulls[i] {
			continue
		}
		v := c.Floats[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}
