package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pos/backend/internal/domain/report"
)

// SalesReport is the content of the PDF sales report
type SalesReport struct {
	Title       string
	Period      report.Period
	Summary     report.SalesSummary
	Lines       []report.SalesReportLine
	GeneratedAt time.Time
}

type pdfColumn struct {
	title string
	width float64
	align string
}

var salesColumns = []pdfColumn{
	{"Date", 32, "C"},
	{"Kind", 20, "C"},
	{"Item", 52, "L"},
	{"Qty", 14, "R"},
	{"Price", 24, "R"},
	{"Total", 24, "R"},
	{"Profit", 24, "R"},
}

// RenderSalesPDF renders the sales report as an A4 portrait PDF
func RenderSalesPDF(r SalesReport, f *Formatter) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Title, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	// Period.To is exclusive
	to := r.Period.To.Add(-time.Nanosecond)
	pdf.CellFormat(0, 7, fmt.Sprintf("Date Range: %s to %s", f.Date(r.Period.From), f.Date(to)), "", 1, "L", false, 0, "")
	if !r.GeneratedAt.IsZero() {
		pdf.CellFormat(0, 7, "Generated: "+f.DateTime(r.GeneratedAt), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 11)
	summary := [][2]string{
		{"Sales", f.Integer(r.Summary.SaleCount)},
		{"Items Sold", f.Integer(r.Summary.ItemsSold)},
		{"Revenue", f.Money(r.Summary.Revenue)},
		{"Profit", f.Money(r.Summary.Profit)},
	}
	for _, kv := range summary {
		pdf.CellFormat(40, 7, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	writeHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range salesColumns {
			pdf.CellFormat(c.width, 8, c.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, l := range r.Lines {
		if pdf.GetY()+7 > pageHeight-bottom-10 {
			pdf.AddPage()
			writeHeader()
		}
		cells := []string{
			f.DateTime(l.SoldAt),
			f.Label(l.Kind),
			truncate(l.ItemName, 30),
			f.Integer(l.Amount),
			f.Money(l.SoldPrice),
			f.Money(l.TotalPrice),
			f.Money(l.Profit),
		}
		for i, c := range salesColumns {
			pdf.CellFormat(c.width, 7, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(r.Lines) == 0 {
		pdf.CellFormat(0, 8, "No sales in this period", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
