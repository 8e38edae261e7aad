package export

import (
	"fmt"
	"io"

	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"

	"github.com/achievo/achievement-portal/internal/fields"
)

// WriteDocx renders the table as a Word document. Certificate cells are
// hyperlinks to the stored path but display the fixed link label.
func WriteDocx(w io.Writer, t Table) error {
	if len(t.Fields) == 0 {
		return fmt.Errorf("docx: no fields to render")
	}

	doc := document.New()

	title := doc.AddParagraph()
	run := title.AddRun()
	run.Properties().SetBold(true)
	run.Properties().SetSize(14 * measurement.Point)
	run.AddText("Achievement Report")

	table := doc.AddTable()
	table.Properties().SetWidthPercent(100)
	borders := table.Properties().Borders()
	borders.SetAll(wml.ST_BorderSingle, color.Auto, 0.5*measurement.Point)

	hdr := table.AddRow()
	for _, h := range t.Header() {
		cell := hdr.AddCell()
		p := cell.AddParagraph()
		r := p.AddRun()
		r.Properties().SetBold(true)
		r.AddText(h)
	}

	for _, row := range t.Rows {
		tr := table.AddRow()
		for _, f := range t.Fields {
			p := tr.AddCell().AddParagraph()
			raw := cellString(row, f)
			if raw != MissingCell && fields.IsCertificateField(f) {
				hl := p.AddHyperLink()
				hl.SetTarget(raw)
				r := hl.AddRun()
				r.Properties().SetStyle("Hyperlink")
				r.AddText(CertificateLabel)
				continue
			}
			p.AddRun().AddText(raw)
		}
	}

	if err := doc.Save(w); err != nil {
		return fmt.Errorf("docx: %w", err)
	}
	return nil
}
