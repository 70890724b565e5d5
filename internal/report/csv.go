package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the report rows as CSV.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(r.Rows()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
