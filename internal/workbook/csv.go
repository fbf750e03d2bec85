package workbook

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/albapepper/scoracle-sheets/internal/match"
)

// WriteCSV writes a header row and the grid as CSV. Missing values are
// empty fields.
func WriteCSV(w io.Writer, columns []string, grid [][]match.Value) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(columns))
	for _, values := range grid {
		for i := range record {
			record[i] = ""
			if i < len(values) {
				record[i] = values[i].Text()
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
