package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// Document is one submission ready to be rendered.
type Document struct {
	Title       string
	Summary     []LabeledValue
	Fields      []LabeledValue
	Responsible string
	GeneratedAt time.Time
}

var compressPDF = true

// WritePDF renders doc as an A4 report: a summary block, one section per
// field with links for attached files, and a footer carrying the page
// number and the responsible party.
func WritePDF(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compressPDF)
	pdf.SetTitle(doc.Title, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(110, 110, 110)
		if doc.Responsible != "" {
			pdf.CellFormat(120, 10, tr("Responsável: "+doc.Responsible), "", 0, "L", false, 0, "")
		} else {
			pdf.CellFormat(120, 10, "", "", 0, "L", false, 0, "")
		}
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d/{nb}", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(doc.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	for _, s := range doc.Summary {
		pdf.CellFormat(40, 5, tr(s.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, tr(s.Value), "", 1, "L", false, 0, "")
	}
	if !doc.GeneratedAt.IsZero() {
		pdf.CellFormat(40, 5, tr("Gerado em"), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, doc.GeneratedAt.In(Location).Format(DateLayout), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, f := range doc.Fields {
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 6, tr(f.Label), "B", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		value := f.Value
		if value == "" {
			value = "-"
		}
		pdf.MultiCell(0, 6, tr(value), "", "L", false)
		pdf.SetTextColor(0, 70, 160)
		for _, l := range f.Links {
			name := l.Name
			if name == "" {
				name = l.URL
			}
			pdf.CellFormat(0, 5, tr(name), "", 1, "L", false, 0, l.URL)
		}
		pdf.Ln(2)
	}

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.Output(w)
}
