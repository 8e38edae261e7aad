package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Report"

// WriteXLSX renders the table as an Excel workbook with the shared cell
// semantics plus bold header, autofilter and heuristic column widths.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	for i, h := range t.Header() {
		cell := fmt.Sprintf("%s1", colName(i+1))
		if err := f.SetCellStr(reportSheet, cell, h); err != nil {
			return fmt.Errorf("xlsx: set %s: %w", cell, err)
		}
	}
	for r, row := range t.Rows {
		for c, field := range t.Fields {
			cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
			if err := f.SetCellStr(reportSheet, cell, cellString(row, field)); err != nil {
				return fmt.Errorf("xlsx: set %s: %w", cell, err)
			}
		}
	}

	if err := applyDefaultFormatting(f, reportSheet); err != nil {
		return fmt.Errorf("xlsx: format: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}
