package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the table as delimited text with a header row. Missing
// cells are written as empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	row := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j := 0; j < t.NumCols(); j++ {
			row[j] = t.ColumnAt(j).StringAt(i)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
