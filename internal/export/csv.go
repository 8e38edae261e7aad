package export

import (
	"fmt"
	"io"
	"strings"
)

// WriteCSV renders the table as CSV with every value quoted
// unconditionally. encoding/csv only quotes on demand, hence the
// hand-rolled writer.
func WriteCSV(w io.Writer, t Table) error {
	var sb strings.Builder

	writeLine := func(cells []string) error {
		sb.Reset()
		for i, c := range cells {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('"')
			sb.WriteString(strings.ReplaceAll(c, `"`, `""`))
			sb.WriteByte('"')
		}
		sb.WriteByte('\n')
		_, err := io.WriteString(w, sb.String())
		return err
	}

	if err := writeLine(t.Header()); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for i, row := range t.Rows {
		cells := make([]string, len(t.Fields))
		for j, f := range t.Fields {
			cells[j] = cellString(row, f)
		}
		if err := writeLine(cells); err != nil {
			return fmt.Errorf("csv row %d: %w", i+1, err)
		}
	}
	return nil
}
