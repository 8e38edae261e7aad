package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the table as a landscape A4 PDF, repeating the styled
// header row on every page. Certificate-path cells show the fixed link
// label instead of the raw path.
func WritePDF(w io.Writer, t Table) error {
	if len(t.Fields) == 0 {
		return fmt.Errorf("pdf: no fields to render")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	pageW, pageH := pdf.GetPageSize()
	const margin = 10.0
	const rowH = 7.0
	colW := (pageW - 2*margin) / float64(len(t.Fields))

	header := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(41, 83, 140)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetXY(margin, margin)
		for _, h := range t.Header() {
			pdf.CellFormat(colW, rowH, clip(pdf, h, colW), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(rowH)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	header()

	for _, row := range t.Rows {
		if pdf.GetY()+rowH > pageH-margin {
			pdf.AddPage()
			header()
		}
		pdf.SetX(margin)
		for _, f := range t.Fields {
			pdf.CellFormat(colW, rowH, clip(pdf, displayCell(row, f), colW), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(rowH)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return nil
}

// clip trims cell text to the column width, appending an ellipsis.
func clip(pdf *gofpdf.Fpdf, s string, w float64) string {
	const pad = 2.0
	if pdf.GetStringWidth(s) <= w-pad {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > w-pad {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
